// Package analytics aggregates allocations into per-resource utilization
// summaries. It only reads.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/store"
)

// ResourceUtilization is one row of the utilization report.
type ResourceUtilization struct {
	ResourceID string  `json:"resource_id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Hours      float64 `json:"hours"`
	Bookings   int     `json:"bookings"`
	Upcoming   int     `json:"upcoming"`
}

// Range bounds the report. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether the whole window [start, end) falls inside the range.
func (r Range) Contains(start, end time.Time) bool {
	if r.From != nil && start.Before(*r.From) {
		return false
	}
	if r.To != nil && end.After(*r.To) {
		return false
	}
	return true
}

func (r Range) validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return apperr.InvalidInput("end_date", "must not be before start_date")
	}
	return nil
}

type Reporter struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewReporter(st *store.Store, log *logger.Logger) *Reporter {
	return &Reporter{store: st, log: log, now: time.Now}
}

// WithClock replaces the reporter's notion of now.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// ReportUtilization returns one row per resource, ordered by name. Hours and
// bookings count allocations whose event lies within rng; upcoming counts
// allocations whose event has not started yet, regardless of rng.
func (r *Reporter) ReportUtilization(ctx context.Context, rng Range) ([]ResourceUtilization, error) {
	if err := rng.validate(); err != nil {
		return nil, err
	}

	q := r.store.Queries()
	resources, err := q.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := q.AllBookings(ctx)
	if err != nil {
		return nil, err
	}

	report := summarize(resources, bookings, rng, r.now().UTC())
	r.log.Debug("ANALYTICS", fmt.Sprintf("Utilization report: %d resources, %d allocations scanned",
		len(resources), len(bookings)))
	return report, nil
}

func summarize(resources []models.Resource, bookings []models.Booking, rng Range, now time.Time) []ResourceUtilization {
	type totals struct {
		duration time.Duration
		bookings int
		upcoming int
	}
	byResource := make(map[string]*totals, len(resources))
	for _, res := range resources {
		byResource[res.ID] = &totals{}
	}

	for _, b := range bookings {
		t, ok := byResource[b.ResourceID]
		if !ok {
			continue
		}
		if rng.Contains(b.StartTime, b.EndTime) {
			t.duration += b.EndTime.Sub(b.StartTime)
			t.bookings++
		}
		if b.StartTime.After(now) {
			t.upcoming++
		}
	}

	report := make([]ResourceUtilization, 0, len(resources))
	for _, res := range resources {
		t := byResource[res.ID]
		report = append(report, ResourceUtilization{
			ResourceID: res.ID,
			Name:       res.Name,
			Type:       res.Type,
			Hours:      roundHours(t.duration),
			Bookings:   t.bookings,
			Upcoming:   t.upcoming,
		})
	}
	return report
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
