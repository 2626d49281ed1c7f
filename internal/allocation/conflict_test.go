package allocation

import (
	"testing"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2030, time.March, 1, hour, minute, 0, 0, time.UTC)
}

func booking(id string, start, end time.Time) models.Booking {
	return models.Booking{EventID: id, EventTitle: "Event " + id, StartTime: start, EndTime: end}
}

func TestWindowValidate(t *testing.T) {
	_, err := NewWindow(at(9, 0), at(10, 0))
	assert.NoError(t, err)

	_, err = NewWindow(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, apperr.ErrInvalidWindow, "zero-length window")

	_, err = NewWindow(at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, apperr.ErrInvalidWindow, "reversed window")
}

func TestNewWindowNormalisesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	w, err := NewWindow(time.Date(2030, 3, 1, 11, 0, 0, 0, zone), time.Date(2030, 3, 1, 12, 0, 0, 0, zone))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.True(t, w.Start.Equal(at(9, 0)))
}

func TestOverlaps(t *testing.T) {
	base := Window{Start: at(9, 0), End: at(10, 0)}

	tests := []struct {
		name  string
		other Window
		want  bool
	}{
		{"touching after", Window{at(10, 0), at(11, 0)}, false},
		{"touching before", Window{at(8, 0), at(9, 0)}, false},
		{"partial overlap", Window{at(9, 30), at(10, 30)}, true},
		{"contained", Window{at(9, 15), at(9, 45)}, true},
		{"containing", Window{at(8, 0), at(11, 0)}, true},
		{"identical", Window{at(9, 0), at(10, 0)}, true},
		{"disjoint", Window{at(12, 0), at(13, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap is symmetric")
		})
	}
}

func TestFirstConflict(t *testing.T) {
	bookings := []models.Booking{
		booking("a", at(8, 0), at(9, 0)),
		booking("b", at(9, 30), at(10, 30)),
		booking("c", at(9, 45), at(11, 0)),
	}
	w := Window{Start: at(9, 0), End: at(10, 0)}

	got, found := FirstConflict(w, bookings, "")
	require.True(t, found)
	assert.Equal(t, "b", got.EventID, "first in store order wins")

	got, found = FirstConflict(w, bookings, "b")
	require.True(t, found)
	assert.Equal(t, "c", got.EventID, "excluded event is skipped")

	_, found = FirstConflict(Window{Start: at(11, 0), End: at(12, 0)}, bookings, "")
	assert.False(t, found)

	_, found = FirstConflict(w, nil, "")
	assert.False(t, found)
}

func TestResultFor(t *testing.T) {
	b := booking("x", at(9, 0), at(10, 0))

	res := resultFor(b, true)
	require.True(t, res.HasConflict)
	assert.Equal(t, "x", res.Conflicting.EventID)
	assert.Equal(t, "Event x", res.Conflicting.EventTitle)
	assert.True(t, res.Conflicting.End.Equal(at(10, 0)))

	assert.Equal(t, ConflictResult{}, resultFor(models.Booking{}, false))
}
