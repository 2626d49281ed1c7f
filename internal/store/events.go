package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Event listing sort keys.
const (
	SortByStartTime = "start_time"
	SortByCreatedAt = "created_at"
	SortByTitle     = "title"
)

var sortColumns = map[string]string{
	SortByStartTime: "e.start_time",
	SortByCreatedAt: "e.created_at",
	SortByTitle:     "e.title",
}

// EventFilter narrows and orders ListEvents. Zero values mean "no filter".
type EventFilter struct {
	Category   string
	Location   string
	Organizer  string
	StartFrom  *time.Time
	StartTo    *time.Time
	ActiveOnly bool
	SortBy     string
	Descending bool
	Page       int
	PerPage    int
}

// Normalize clamps paging and falls back to start_time ordering for an
// unknown sort key.
func (f *EventFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = SortByStartTime
	}
}

type EventPage struct {
	Events  []models.Event `json:"events"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

// ---------------- EVENTS ----------------

func (q *Queries) InsertEvent(ctx context.Context, event *models.Event) error {
	_, err := q.db.NewInsert().Model(event).Exec(ctx)
	return storeErr("insert event", err)
}

func (q *Queries) EventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := q.db.NewSelect().
		Model(&event).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get event", "event", id, err)
	}
	return &event, nil
}

// LockEvent reads the event row and, where the dialect supports it, holds a
// row lock on it until the surrounding transaction ends. Paths that read an
// event's window or capacity and then write based on it go through here.
func (q *Queries) LockEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	sel := q.db.NewSelect().
		Model(&event).
		Where("e.id = ?", id).
		Limit(1)
	if q.SupportsRowLocks() {
		sel = sel.For("UPDATE")
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, notFoundOr("lock event", "event", id, err)
	}
	return &event, nil
}

// UpdateEvent → write the mutable event fields
func (q *Queries) UpdateEvent(ctx context.Context, event *models.Event) error {
	res, err := q.db.NewUpdate().
		Model(event).
		Column("title", "description", "location", "category", "start_time", "end_time",
			"is_active", "max_attendees", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return apperr.Store("update event", err)
	}
	n, err := rowsAffected("update event", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("event", event.ID)
	}
	return nil
}

func (q *Queries) DeleteEvent(ctx context.Context, id string) error {
	res, err := q.db.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperr.Store("delete event", err)
	}
	n, err := rowsAffected("delete event", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("event", id)
	}
	return nil
}

// ListEvents returns one page of events matching the filter together with
// the total match count.
func (q *Queries) ListEvents(ctx context.Context, f EventFilter) (*EventPage, error) {
	f.Normalize()

	events := make([]models.Event, 0)
	sel := q.db.NewSelect().Model(&events)

	if f.ActiveOnly {
		sel = sel.Where("e.is_active = ?", true)
	}
	if f.Category != "" {
		sel = sel.Where("e.category = ?", f.Category)
	}
	if f.Location != "" {
		sel = sel.Where("LOWER(e.location) LIKE ?", likePattern(f.Location))
	}
	if f.Organizer != "" {
		sel = sel.
			Join("JOIN users AS org ON org.id = e.owner_id").
			Where("LOWER(org.username) LIKE ?", likePattern(f.Organizer))
	}
	if f.StartFrom != nil {
		sel = sel.Where("e.start_time >= ?", f.StartFrom.UTC())
	}
	if f.StartTo != nil {
		sel = sel.Where("e.start_time <= ?", f.StartTo.UTC())
	}

	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	sel = sel.
		OrderExpr(sortColumns[f.SortBy] + " " + dir).
		OrderExpr("e.id ASC").
		Limit(f.PerPage).
		Offset((f.Page - 1) * f.PerPage)

	total, err := sel.ScanAndCount(ctx)
	if err != nil {
		return nil, apperr.Store("list events", err)
	}

	pages := 0
	if total > 0 {
		pages = (total + f.PerPage - 1) / f.PerPage
	}
	return &EventPage{
		Events:  events,
		Total:   total,
		Page:    f.Page,
		PerPage: f.PerPage,
		Pages:   pages,
	}, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// ---------------- ATTENDEES ----------------

// ReserveSeat increments the attendee counter when the event is active and
// below capacity. It reports false when no seat could be taken.
func (q *Queries) ReserveSeat(ctx context.Context, eventID string) (bool, error) {
	res, err := q.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("current_attendees = current_attendees + 1").
		Where("id = ?", eventID).
		Where("is_active = ?", true).
		Where("(max_attendees IS NULL OR current_attendees < max_attendees)").
		Exec(ctx)
	if err != nil {
		return false, apperr.Store("reserve seat", err)
	}
	n, err := rowsAffected("reserve seat", res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseSeat decrements the attendee counter without going below zero.
func (q *Queries) ReleaseSeat(ctx context.Context, eventID string) error {
	_, err := q.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("current_attendees = current_attendees - 1").
		Where("id = ?", eventID).
		Where("current_attendees > 0").
		Exec(ctx)
	return storeErr("release seat", err)
}

// InsertAttendee adds a registration. A second registration of the same user
// for the same event is ErrAlreadyRegistered.
func (q *Queries) InsertAttendee(ctx context.Context, a *models.EventAttendee) error {
	_, err := q.db.NewInsert().Model(a).Exec(ctx)
	if isUniqueViolation(err) {
		return fmt.Errorf("event %s: %w", a.EventID, apperr.ErrAlreadyRegistered)
	}
	return storeErr("insert attendee", err)
}

func (q *Queries) AttendeeFor(ctx context.Context, userID, eventID string) (*models.EventAttendee, error) {
	var a models.EventAttendee
	err := q.db.NewSelect().
		Model(&a).
		Where("ea.user_id = ?", userID).
		Where("ea.event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get registration", "registration", userID+"/"+eventID, err)
	}
	return &a, nil
}

func (q *Queries) DeleteAttendee(ctx context.Context, id string) error {
	_, err := q.db.NewDelete().
		Model((*models.EventAttendee)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return storeErr("delete attendee", err)
}

func (q *Queries) DeleteAttendeesForEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*models.EventAttendee)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("delete event attendees", err)
	}
	return rowsAffected("delete event attendees", res)
}

func (q *Queries) ListAttendees(ctx context.Context, eventID string) ([]models.AttendeeView, error) {
	out := make([]models.AttendeeView, 0)
	err := q.db.NewSelect().
		TableExpr("event_attendees AS ea").
		ColumnExpr("ea.id AS registration_id").
		ColumnExpr("ea.user_id").
		ColumnExpr("u.username").
		ColumnExpr("ea.registered_at").
		Join("JOIN users AS u ON u.id = ea.user_id").
		Where("ea.event_id = ?", eventID).
		OrderExpr("ea.registered_at ASC, ea.id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, apperr.Store("list attendees", err)
	}
	return out, nil
}
