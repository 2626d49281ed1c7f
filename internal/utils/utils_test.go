package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2030-01-05T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 5, 8, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseTimestamp("2030-01-05 10:00")
	assert.Error(t, err)
}

func TestParseRangeBounds(t *testing.T) {
	start, err := ParseRangeStart("2030-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 5, 0, 0, 0, 0, time.UTC), start)

	end, err := ParseRangeEnd("2030-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 6, 0, 0, 0, 0, time.UTC), end, "end date is inclusive")

	exact, err := ParseRangeEnd("2030-01-05T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 5, 12, 30, 0, 0, time.UTC), exact)

	_, err = ParseRangeStart("05/01/2030")
	assert.Error(t, err)
}

func TestWriteJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusTeapot, ErrorResponse("nope", "detail")))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "detail", body["error"])
	assert.NotContains(t, body, "data")
}
