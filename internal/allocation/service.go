package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/config"
	"ms-booking/internal/kafka"
	"ms-booking/internal/lock"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
)

const rescheduleAttempts = 3

var errAllocationsChanged = errors.New("event allocations changed while waiting for locks")

type Manager struct {
	store     *store.Store
	locks     lock.Locker
	publisher kafka.Publisher
	topics    config.TopicConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewManager(st *store.Store, locks lock.Locker, publisher kafka.Publisher, topics config.TopicConfig, log *logger.Logger) *Manager {
	return &Manager{
		store:     st,
		locks:     locks,
		publisher: publisher,
		topics:    topics,
		log:       log,
		now:       time.Now,
	}
}

// CheckConflict reports whether [start, end) overlaps any booking of the
// resource. It never writes.
func (m *Manager) CheckConflict(ctx context.Context, resourceID string, start, end time.Time) (ConflictResult, error) {
	w, err := NewWindow(start, end)
	if err != nil {
		return ConflictResult{}, err
	}

	q := m.store.Queries()
	if _, err := q.ResourceByID(ctx, resourceID); err != nil {
		return ConflictResult{}, err
	}
	bookings, err := q.ResourceBookings(ctx, resourceID)
	if err != nil {
		return ConflictResult{}, err
	}
	return resultFor(FirstConflict(w, bookings, "")), nil
}

// Allocate binds the resource to the event for the event's whole window.
// The conflict check and the insert run under the resource lock and in one
// transaction, so concurrent callers cannot both book overlapping windows.
func (m *Manager) Allocate(ctx context.Context, eventID, resourceID string, actor models.Actor) (*models.Allocation, error) {
	alloc, err := m.allocateLocked(ctx, eventID, resourceID)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			m.log.LogAllocation("CONFLICT", resourceID, eventID, err.Error())
		}
		return nil, err
	}

	m.log.LogAllocation("CREATE", resourceID, eventID, fmt.Sprintf("allocation %s by %s", alloc.ID, actor.UserID))
	kafka.PublishAfterCommit(ctx, m.publisher, m.log, m.topics.AllocationCreated, alloc.ID, models.AllocationMessage{
		AllocationID: alloc.ID,
		EventID:      alloc.EventID,
		ResourceID:   alloc.ResourceID,
		ActorID:      actor.UserID,
		OccurredAt:   alloc.CreatedAt,
	})
	return alloc, nil
}

func (m *Manager) allocateLocked(ctx context.Context, eventID, resourceID string) (*models.Allocation, error) {
	release, err := m.locks.Acquire(ctx, lock.ResourceKey(resourceID))
	if err != nil {
		return nil, apperr.Store("acquire resource lock", err)
	}
	defer release()

	var alloc *models.Allocation
	err = m.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		// The event row lock keeps a concurrent reschedule from moving the
		// window after it was checked here.
		event, err := q.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if _, err := q.LockResource(ctx, resourceID); err != nil {
			return err
		}

		w := Window{Start: event.StartTime, End: event.EndTime}
		if err := w.Validate(); err != nil {
			return err
		}

		bookings, err := q.ResourceBookings(ctx, resourceID)
		if err != nil {
			return err
		}
		if b, found := FirstConflict(w, bookings, ""); found {
			return conflictError(resourceID, b)
		}

		alloc = &models.Allocation{
			ID:         uuid.NewString(),
			EventID:    eventID,
			ResourceID: resourceID,
			CreatedAt:  m.now().UTC(),
		}
		return q.InsertAllocation(ctx, alloc)
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// Deallocate removes an allocation. Allocations whose event no longer exists
// are orphans and may be removed by anyone; otherwise the policy applies.
func (m *Manager) Deallocate(ctx context.Context, allocationID string, actor models.Actor) error {
	var removed *models.Allocation
	err := m.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		a, err := q.AllocationByID(ctx, allocationID)
		if err != nil {
			return err
		}

		event, err := q.EventByID(ctx, a.EventID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			m.log.Warn("ALLOCATION", fmt.Sprintf("Removing orphaned allocation %s (event %s is gone)", a.ID, a.EventID))
		case err != nil:
			return err
		default:
			if err := Authorize(actor, event); err != nil {
				return err
			}
		}

		if err := q.DeleteAllocation(ctx, a.ID); err != nil {
			return err
		}
		removed = a
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			m.log.LogSecurity("DEALLOCATE_DENIED", err.Error())
		}
		return err
	}

	m.log.LogAllocation("DELETE", removed.ResourceID, removed.EventID, fmt.Sprintf("allocation %s by %s", removed.ID, actor.UserID))
	kafka.PublishAfterCommit(ctx, m.publisher, m.log, m.topics.AllocationRemoved, removed.ID, models.AllocationMessage{
		AllocationID: removed.ID,
		EventID:      removed.EventID,
		ResourceID:   removed.ResourceID,
		ActorID:      actor.UserID,
		OccurredAt:   m.now().UTC(),
	})
	return nil
}

// ListForOwner lists the allocations of events the actor owns.
func (m *Manager) ListForOwner(ctx context.Context, actor models.Actor) ([]models.AllocationView, error) {
	return m.store.Queries().AllocationsForOwner(ctx, actor.UserID)
}

// Reschedule moves an event to w while holding the lock of every resource
// allocated to it and the event row itself. apply runs in the same
// transaction, and only after no allocation of the event would overlap
// another booking at the new window.
func (m *Manager) Reschedule(ctx context.Context, eventID string, w Window, apply func(ctx context.Context, q *store.Queries) error) error {
	if err := w.Validate(); err != nil {
		return err
	}

	for attempt := 0; attempt < rescheduleAttempts; attempt++ {
		allocs, err := m.store.Queries().AllocationsForEvent(ctx, eventID)
		if err != nil {
			return err
		}
		locked := make(map[string]bool, len(allocs))
		keys := make([]string, 0, len(allocs))
		for _, a := range allocs {
			locked[a.ResourceID] = true
			keys = append(keys, lock.ResourceKey(a.ResourceID))
		}

		release, err := lock.AcquireAll(ctx, m.locks, keys)
		if err != nil {
			return apperr.Store("acquire resource locks", err)
		}

		err = m.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
			// Allocations made before this lock are committed and visible
			// below; later ones wait for it and see the new window.
			if _, err := q.LockEvent(ctx, eventID); err != nil {
				return err
			}
			current, err := q.AllocationsForEvent(ctx, eventID)
			if err != nil {
				return err
			}
			for _, a := range current {
				if !locked[a.ResourceID] {
					return errAllocationsChanged
				}
				if _, err := q.LockResource(ctx, a.ResourceID); err != nil {
					return err
				}
				bookings, err := q.ResourceBookings(ctx, a.ResourceID)
				if err != nil {
					return err
				}
				if b, found := FirstConflict(w, bookings, eventID); found {
					return conflictError(a.ResourceID, b)
				}
			}
			return apply(ctx, q)
		})
		release()

		if errors.Is(err, errAllocationsChanged) {
			m.log.Debug("ALLOCATION", fmt.Sprintf("Allocations of event %s changed, retrying reschedule", eventID))
			continue
		}
		return err
	}
	return apperr.Store("reschedule event", errAllocationsChanged)
}
