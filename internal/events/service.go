// Package events manages events and attendee registrations.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/allocation"
	"ms-booking/internal/apperr"
	"ms-booking/internal/config"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
)

const maxTitleLength = 200

type CreateInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MaxAttendees *int      `json:"max_attendees"`
}

// UpdateInput is a patch: nil fields are left unchanged.
type UpdateInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	Category     *string    `json:"category"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	MaxAttendees *int       `json:"max_attendees"`
	IsActive     *bool      `json:"is_active"`
}

type Service struct {
	store       *store.Store
	allocations *allocation.Manager
	publisher   kafka.Publisher
	topics      config.TopicConfig
	log         *logger.Logger
	now         func() time.Time
}

func NewService(st *store.Store, allocations *allocation.Manager, publisher kafka.Publisher, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{
		store:       st,
		allocations: allocations,
		publisher:   publisher,
		topics:      topics,
		log:         log,
		now:         time.Now,
	}
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.InvalidInput("title", "required")
	}
	if len(title) > maxTitleLength {
		return apperr.InvalidInput("title", fmt.Sprintf("at most %d characters", maxTitleLength))
	}
	return nil
}

func validateCapacity(limit *int) error {
	if limit != nil && *limit < 0 {
		return apperr.InvalidInput("max_attendees", "must not be negative")
	}
	return nil
}

// Create stores a new active event owned by the actor.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Event, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	w, err := allocation.NewWindow(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validateCapacity(in.MaxAttendees); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ownerID := actor.UserID
	event := &models.Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Location:     in.Location,
		Category:     in.Category,
		StartTime:    w.Start,
		EndTime:      w.End,
		OwnerID:      &ownerID,
		IsActive:     true,
		MaxAttendees: in.MaxAttendees,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if _, err := q.UserByID(ctx, actor.UserID); err != nil {
			return err
		}
		return q.InsertEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("EVENT", fmt.Sprintf("Event %s created by %s", event.ID, actor.UserID))
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.store.Queries().EventByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter store.EventFilter) (*store.EventPage, error) {
	return s.store.Queries().ListEvents(ctx, filter)
}

// Update patches an event. Moving the window re-checks every allocation of
// the event for conflicts before anything is written.
func (s *Service) Update(ctx context.Context, actor models.Actor, id string, in UpdateInput) (*models.Event, error) {
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if err := validateCapacity(in.MaxAttendees); err != nil {
		return nil, err
	}

	current, err := s.store.Queries().EventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := allocation.Authorize(actor, current); err != nil {
		return nil, err
	}

	var updated *models.Event
	apply := func(ctx context.Context, q *store.Queries) error {
		e, err := q.LockEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := allocation.Authorize(actor, e); err != nil {
			return err
		}

		applyPatch(e, in)
		if err := (allocation.Window{Start: e.StartTime, End: e.EndTime}).Validate(); err != nil {
			return err
		}
		if e.MaxAttendees != nil && *e.MaxAttendees < e.CurrentAttendees {
			return apperr.InvalidInput("max_attendees",
				fmt.Sprintf("%d attendees are already registered", e.CurrentAttendees))
		}
		e.UpdatedAt = s.now().UTC()

		if err := q.UpdateEvent(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	}

	if in.StartTime == nil && in.EndTime == nil {
		err = s.store.InTx(ctx, apply)
	} else {
		start, end := current.StartTime, current.EndTime
		if in.StartTime != nil {
			start = *in.StartTime
		}
		if in.EndTime != nil {
			end = *in.EndTime
		}
		w, werr := allocation.NewWindow(start, end)
		if werr != nil {
			return nil, werr
		}
		in.StartTime, in.EndTime = &w.Start, &w.End
		err = s.allocations.Reschedule(ctx, id, w, apply)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("EVENT", fmt.Sprintf("Event %s updated by %s", id, actor.UserID))
	return updated, nil
}

func applyPatch(e *models.Event, in UpdateInput) {
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Location != nil {
		e.Location = *in.Location
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.StartTime != nil {
		e.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		e.EndTime = in.EndTime.UTC()
	}
	if in.MaxAttendees != nil {
		limit := *in.MaxAttendees
		e.MaxAttendees = &limit
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
}

// Delete removes the event together with its allocations and registrations.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	var removedAllocs, removedAttendees int64
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		e, err := q.EventByID(ctx, id)
		if err != nil {
			return err
		}
		if err := allocation.Authorize(actor, e); err != nil {
			return err
		}

		if removedAllocs, err = q.DeleteAllocationsForEvent(ctx, id); err != nil {
			return err
		}
		if removedAttendees, err = q.DeleteAttendeesForEvent(ctx, id); err != nil {
			return err
		}
		return q.DeleteEvent(ctx, id)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			s.log.LogSecurity("EVENT_DELETE_DENIED", err.Error())
		}
		return err
	}

	s.log.Info("EVENT", fmt.Sprintf("Event %s deleted by %s (%d allocations, %d registrations)",
		id, actor.UserID, removedAllocs, removedAttendees))
	kafka.PublishAfterCommit(ctx, s.publisher, s.log, s.topics.EventDeleted, id, models.CascadeMessage{
		EntityID:           id,
		RemovedAllocations: int(removedAllocs),
		RemovedAttendees:   int(removedAttendees),
		ActorID:            actor.UserID,
		OccurredAt:         s.now().UTC(),
	})
	return nil
}
