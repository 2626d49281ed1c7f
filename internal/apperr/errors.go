// Package apperr defines the error taxonomy shared by the allocation engine
// and the services built around it. Every error kind matches a sentinel via
// errors.Is, and the typed variants carry the ids and values a caller needs
// to build its own message.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidWindow     = errors.New("invalid time window")
	ErrConflict          = errors.New("resource conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrStoreFailure      = errors.New("store failure")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventUnavailable  = errors.New("event unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
)

// NotFoundError reports a referenced entity id that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidWindowError reports a window where start is not strictly before end.
type InvalidWindowError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid time window [%s, %s): start must be before end",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *InvalidWindowError) Is(target error) bool { return target == ErrInvalidWindow }

// ConflictingEvent identifies the already-booked event that overlaps a candidate window.
type ConflictingEvent struct {
	EventID    string    `json:"conflicting_event_id"`
	EventTitle string    `json:"conflicting_event_title"`
	Start      time.Time `json:"conflict_start"`
	End        time.Time `json:"conflict_end"`
}

// ConflictError is returned when allocating would double-book a resource.
type ConflictError struct {
	ResourceID  string
	Conflicting ConflictingEvent
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s already booked by event %s [%s, %s)",
		e.ResourceID, e.Conflicting.EventID,
		e.Conflicting.Start.Format(time.RFC3339), e.Conflicting.End.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ForbiddenError is returned when the authorization policy denies a mutation.
type ForbiddenError struct {
	ActorID string
	EventID string
}

func (e *ForbiddenError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("actor %s is not allowed to perform this operation", e.ActorID)
	}
	return fmt.Sprintf("actor %s may not modify event %s", e.ActorID, e.EventID)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func Forbidden(actorID, eventID string) error {
	return &ForbiddenError{ActorID: actorID, EventID: eventID}
}

// StoreError wraps a transaction, query or commit failure. The operation
// it belongs to never took effect.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

func (e *StoreError) Unwrap() error { return e.Err }

func Store(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// InvalidInputError reports a malformed request field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func InvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
