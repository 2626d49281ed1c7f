package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters(nil, &out, WARN)

	l.Debug("TEST", "hidden debug")
	l.Info("TEST", "hidden info")
	l.Warn("TEST", "shown warn")
	l.Error("TEST", "shown error")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "shown warn", entry.Message)
	assert.Equal(t, "logger_test.go", entry.File)
}

func TestCategoryIsUppercased(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters(nil, &out, DEBUG)

	l.LogAllocation("CREATE", "res-1", "ev-1", "allocated")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "ALLOCATION", entry.Category)
	assert.Contains(t, entry.Message, "resource=res-1 event=ev-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}

func TestDiscardWritesNothing(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Error("TEST", "dropped") })
}
