package models

import "time"

// AllocationMessage is published when an allocation is created or removed.
type AllocationMessage struct {
	AllocationID string    `json:"allocation_id"`
	EventID      string    `json:"event_id"`
	ResourceID   string    `json:"resource_id"`
	ActorID      string    `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// CascadeMessage is published when an event or resource is deleted together
// with its dependent allocations.
type CascadeMessage struct {
	EntityID           string    `json:"entity_id"`
	RemovedAllocations int       `json:"removed_allocations"`
	RemovedAttendees   int       `json:"removed_attendees"`
	ActorID            string    `json:"actor_id"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// UserDeletedMessage is consumed from the identity service.
type UserDeletedMessage struct {
	UserID string `json:"user_id"`
}
