// Package storetest builds throwaway in-memory stores and fixtures for tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"ms-booking/internal/database"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// New opens an in-memory SQLite database with the full schema.
func New(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err, "open in-memory database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.CreateSchema(ctx, db), "create schema")
	return store.New(db)
}

// At builds a UTC timestamp on a fixed day, for readable windows in tests.
func At(day, hour, minute int) time.Time {
	return time.Date(2030, time.January, day, hour, minute, 0, 0, time.UTC)
}

func User(t testing.TB, s *store.Store, username string, admin bool) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "x",
		IsAdmin:      admin,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.Queries().InsertUser(context.Background(), u))
	return u
}

// Event inserts an active event. ownerID may be nil.
func Event(t testing.TB, s *store.Store, title string, start, end time.Time, ownerID *string) *models.Event {
	t.Helper()
	now := time.Now().UTC()
	e := &models.Event{
		ID:        uuid.NewString(),
		Title:     title,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		OwnerID:   ownerID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Queries().InsertEvent(context.Background(), e))
	return e
}

func Resource(t testing.TB, s *store.Store, name, kind string) *models.Resource {
	t.Helper()
	r := &models.Resource{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Queries().InsertResource(context.Background(), r))
	return r
}

func Allocation(t testing.TB, s *store.Store, eventID, resourceID string) *models.Allocation {
	t.Helper()
	a := &models.Allocation{
		ID:         uuid.NewString(),
		EventID:    eventID,
		ResourceID: resourceID,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Queries().InsertAllocation(context.Background(), a))
	return a
}
