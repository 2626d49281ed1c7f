package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Allocation commits a resource to an event for the event's full window.
type Allocation struct {
	bun.BaseModel `bun:"table:event_resource_allocations,alias:a"`

	ID         string    `bun:"id,pk" json:"id"`
	EventID    string    `bun:"event_id,notnull" json:"event_id"`
	ResourceID string    `bun:"resource_id,notnull" json:"resource_id"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Booking is an allocation resolved to the window of its event.
type Booking struct {
	AllocationID string    `bun:"allocation_id"`
	ResourceID   string    `bun:"resource_id"`
	EventID      string    `bun:"event_id"`
	EventTitle   string    `bun:"event_title"`
	StartTime    time.Time `bun:"start_time"`
	EndTime      time.Time `bun:"end_time"`
}

// AllocationView is an allocation joined with its event and resource for listings.
type AllocationView struct {
	AllocationID     string    `bun:"allocation_id" json:"allocation_id"`
	EventID          string    `bun:"event_id" json:"event_id"`
	EventTitle       string    `bun:"event_title" json:"event_title"`
	EventStart       time.Time `bun:"event_start" json:"event_start"`
	EventEnd         time.Time `bun:"event_end" json:"event_end"`
	EventDescription string    `bun:"event_description" json:"event_description"`
	ResourceID       string    `bun:"resource_id" json:"resource_id"`
	ResourceName     string    `bun:"resource_name" json:"resource_name"`
	ResourceType     string    `bun:"resource_type" json:"resource_type"`
}
