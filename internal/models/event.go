package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a named activity occupying the half-open window [StartTime, EndTime).
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID               string    `bun:"id,pk" json:"id"`
	Title            string    `bun:"title,notnull" json:"title"`
	Description      string    `bun:"description" json:"description"`
	Location         string    `bun:"location" json:"location"`
	Category         string    `bun:"category" json:"category"`
	StartTime        time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime          time.Time `bun:"end_time,notnull" json:"end_time"`
	OwnerID          *string   `bun:"owner_id" json:"owner_id"`
	IsActive         bool      `bun:"is_active,notnull" json:"is_active"`
	MaxAttendees     *int      `bun:"max_attendees" json:"max_attendees"`
	CurrentAttendees int       `bun:"current_attendees,notnull" json:"current_attendees"`
	CreatedAt        time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// HasCapacity reports whether another attendee fits.
func (e *Event) HasCapacity() bool {
	return e.MaxAttendees == nil || e.CurrentAttendees < *e.MaxAttendees
}

type EventAttendee struct {
	bun.BaseModel `bun:"table:event_attendees,alias:ea"`

	ID           string    `bun:"id,pk" json:"id"`
	UserID       string    `bun:"user_id,notnull,unique:uq_event_attendee" json:"user_id"`
	EventID      string    `bun:"event_id,notnull,unique:uq_event_attendee" json:"event_id"`
	RegisteredAt time.Time `bun:"registered_at,notnull" json:"registered_at"`
}

// AttendeeView is a registration joined with the registered user's name.
type AttendeeView struct {
	RegistrationID string    `bun:"registration_id" json:"registration_id"`
	UserID         string    `bun:"user_id" json:"user_id"`
	Username       string    `bun:"username" json:"username"`
	RegisteredAt   time.Time `bun:"registered_at" json:"registered_at"`
}
