package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
	"ms-booking/internal/store"
	"ms-booking/internal/store/storetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTxCommits(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	id := uuid.NewString()

	err := s.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		return q.InsertResource(ctx, &models.Resource{ID: id, Name: "Room A", Type: "room", CreatedAt: time.Now().UTC()})
	})
	require.NoError(t, err)

	r, err := s.Queries().ResourceByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Room A", r.Name)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	id := uuid.NewString()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if err := q.InsertResource(ctx, &models.Resource{ID: id, Name: "Room A", Type: "room", CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Queries().ResourceByID(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	id := uuid.NewString()

	assert.Panics(t, func() {
		_ = s.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
			_ = q.InsertResource(ctx, &models.Resource{ID: id, Name: "Room A", Type: "room", CreatedAt: time.Now().UTC()})
			panic("unexpected")
		})
	})

	_, err := s.Queries().ResourceByID(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMissingRowsAreNotFound(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	q := s.Queries()

	_, err := q.EventByID(ctx, "missing")
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "event", nf.Entity)
	assert.Equal(t, "missing", nf.ID)

	_, err = q.AllocationByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, q.DeleteResource(ctx, "missing"), apperr.ErrNotFound)
	assert.ErrorIs(t, q.DeleteUser(ctx, "missing"), apperr.ErrNotFound)
}

func TestAllocationRequiresExistingRows(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	r := storetest.Resource(t, s, "Room A", "room")

	err := s.Queries().InsertAllocation(ctx, &models.Allocation{
		ID:         uuid.NewString(),
		EventID:    "no-such-event",
		ResourceID: r.ID,
		CreatedAt:  time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperr.ErrStoreFailure)
}

func TestEventTimesRoundTripInUTC(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	start := storetest.At(1, 10, 0)
	end := storetest.At(1, 12, 30)
	e := storetest.Event(t, s, "Standup", start, end, nil)

	got, err := s.Queries().EventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(start), "start %s", got.StartTime)
	assert.True(t, got.EndTime.Equal(end), "end %s", got.EndTime)
	assert.Nil(t, got.OwnerID)
	assert.Nil(t, got.MaxAttendees)
}

func TestResourceBookingsOrderedByStart(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	r := storetest.Resource(t, s, "Room A", "room")
	other := storetest.Resource(t, s, "Room B", "room")

	late := storetest.Event(t, s, "Late", storetest.At(2, 14, 0), storetest.At(2, 15, 0), nil)
	early := storetest.Event(t, s, "Early", storetest.At(2, 9, 0), storetest.At(2, 10, 0), nil)
	elsewhere := storetest.Event(t, s, "Elsewhere", storetest.At(2, 9, 0), storetest.At(2, 10, 0), nil)

	storetest.Allocation(t, s, late.ID, r.ID)
	storetest.Allocation(t, s, early.ID, r.ID)
	storetest.Allocation(t, s, elsewhere.ID, other.ID)

	bookings, err := s.Queries().ResourceBookings(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "Early", bookings[0].EventTitle)
	assert.Equal(t, "Late", bookings[1].EventTitle)
	assert.True(t, bookings[0].StartTime.Equal(storetest.At(2, 9, 0)))
}

func TestAllocationsForOwner(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	alice := storetest.User(t, s, "alice", false)
	bob := storetest.User(t, s, "bob", false)
	r := storetest.Resource(t, s, "Projector", "equipment")

	mine := storetest.Event(t, s, "Mine", storetest.At(3, 9, 0), storetest.At(3, 10, 0), &alice.ID)
	theirs := storetest.Event(t, s, "Theirs", storetest.At(3, 11, 0), storetest.At(3, 12, 0), &bob.ID)
	a := storetest.Allocation(t, s, mine.ID, r.ID)
	storetest.Allocation(t, s, theirs.ID, r.ID)

	views, err := s.Queries().AllocationsForOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, a.ID, views[0].AllocationID)
	assert.Equal(t, "Mine", views[0].EventTitle)
	assert.Equal(t, "Projector", views[0].ResourceName)
	assert.Equal(t, "equipment", views[0].ResourceType)
}

func TestReserveSeatRespectsCapacity(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	e := storetest.Event(t, s, "Workshop", storetest.At(4, 9, 0), storetest.At(4, 10, 0), nil)
	one := 1
	e.MaxAttendees = &one
	require.NoError(t, s.Queries().UpdateEvent(ctx, e))

	ok, err := s.Queries().ReserveSeat(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Queries().ReserveSeat(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok, "event is full")

	require.NoError(t, s.Queries().ReleaseSeat(ctx, e.ID))
	require.NoError(t, s.Queries().ReleaseSeat(ctx, e.ID))

	got, err := s.Queries().EventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentAttendees, "counter never drops below zero")
}

func TestReserveSeatRejectsInactiveEvent(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	e := storetest.Event(t, s, "Cancelled", storetest.At(4, 9, 0), storetest.At(4, 10, 0), nil)
	e.IsActive = false
	require.NoError(t, s.Queries().UpdateEvent(ctx, e))

	ok, err := s.Queries().ReserveSeat(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveUserRegistrationsReleasesSeats(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, s, "carol", false)
	e := storetest.Event(t, s, "Talk", storetest.At(5, 9, 0), storetest.At(5, 10, 0), nil)

	ok, err := s.Queries().ReserveSeat(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Queries().InsertAttendee(ctx, &models.EventAttendee{
		ID: uuid.NewString(), UserID: u.ID, EventID: e.ID, RegisteredAt: time.Now().UTC(),
	}))

	n, err := s.Queries().RemoveUserRegistrations(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Queries().EventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentAttendees)

	_, err = s.Queries().AttendeeFor(ctx, u.ID, e.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearEventOwnership(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, s, "dave", false)
	e := storetest.Event(t, s, "Owned", storetest.At(6, 9, 0), storetest.At(6, 10, 0), &u.ID)

	n, err := s.Queries().ClearEventOwnership(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Queries().EventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OwnerID)
}

func TestCascadeDeletes(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	r := storetest.Resource(t, s, "Room A", "room")
	e1 := storetest.Event(t, s, "One", storetest.At(7, 9, 0), storetest.At(7, 10, 0), nil)
	e2 := storetest.Event(t, s, "Two", storetest.At(7, 11, 0), storetest.At(7, 12, 0), nil)
	storetest.Allocation(t, s, e1.ID, r.ID)
	storetest.Allocation(t, s, e2.ID, r.ID)

	n, err := s.Queries().DeleteAllocationsForEvent(ctx, e1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Queries().DeleteAllocationsForResource(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	bookings, err := s.Queries().AllBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestLockEventInsideTx(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	e := storetest.Event(t, s, "Locked", storetest.At(1, 9, 0), storetest.At(1, 10, 0), nil)

	err := s.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		got, err := q.LockEvent(ctx, e.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, e.ID, got.ID)
		assert.True(t, got.StartTime.Equal(e.StartTime))

		_, err = q.LockEvent(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestDuplicateAttendeeIsAlreadyRegistered(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, s, "guest", false)
	e := storetest.Event(t, s, "Meetup", storetest.At(1, 9, 0), storetest.At(1, 10, 0), nil)

	insert := func() error {
		return s.Queries().InsertAttendee(ctx, &models.EventAttendee{
			ID:           uuid.NewString(),
			UserID:       u.ID,
			EventID:      e.ID,
			RegisteredAt: time.Now().UTC(),
		})
	}
	require.NoError(t, insert())

	err := insert()
	assert.ErrorIs(t, err, apperr.ErrAlreadyRegistered)
	assert.NotErrorIs(t, err, apperr.ErrStoreFailure)
}
