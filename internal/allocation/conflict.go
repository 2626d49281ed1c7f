// Package allocation is the resource allocation engine: the conflict
// detector, the authorization policy and the manager that commits
// allocations without ever double-booking a resource.
package allocation

import (
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalises both ends to UTC and validates the result.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: start.UTC(), End: end.UTC()}
	return w, w.Validate()
}

// Validate rejects windows where start is not strictly before end,
// zero-length windows included.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return &apperr.InvalidWindowError{Start: w.Start, End: w.End}
	}
	return nil
}

// Overlaps uses half-open semantics: windows that only touch do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func bookingWindow(b models.Booking) Window {
	return Window{Start: b.StartTime, End: b.EndTime}
}

// FirstConflict returns the first booking, in the given order, whose window
// overlaps w. Bookings of excludeEventID are ignored.
func FirstConflict(w Window, bookings []models.Booking, excludeEventID string) (models.Booking, bool) {
	for _, b := range bookings {
		if excludeEventID != "" && b.EventID == excludeEventID {
			continue
		}
		if w.Overlaps(bookingWindow(b)) {
			return b, true
		}
	}
	return models.Booking{}, false
}

// ConflictResult is the outcome of a conflict check. Conflicting is nil when
// the window is free.
type ConflictResult struct {
	HasConflict bool                     `json:"has_conflict"`
	Conflicting *apperr.ConflictingEvent `json:"conflicting,omitempty"`
}

func resultFor(b models.Booking, found bool) ConflictResult {
	if !found {
		return ConflictResult{}
	}
	c := conflictingEvent(b)
	return ConflictResult{HasConflict: true, Conflicting: &c}
}

func conflictingEvent(b models.Booking) apperr.ConflictingEvent {
	return apperr.ConflictingEvent{
		EventID:    b.EventID,
		EventTitle: b.EventTitle,
		Start:      b.StartTime,
		End:        b.EndTime,
	}
}

func conflictError(resourceID string, b models.Booking) error {
	return &apperr.ConflictError{ResourceID: resourceID, Conflicting: conflictingEvent(b)}
}
