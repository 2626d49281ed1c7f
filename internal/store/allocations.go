package store

import (
	"context"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

// ---------------- ALLOCATIONS ----------------

func (q *Queries) InsertAllocation(ctx context.Context, a *models.Allocation) error {
	_, err := q.db.NewInsert().Model(a).Exec(ctx)
	return storeErr("insert allocation", err)
}

func (q *Queries) AllocationByID(ctx context.Context, id string) (*models.Allocation, error) {
	var a models.Allocation
	err := q.db.NewSelect().
		Model(&a).
		Where("a.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get allocation", "allocation", id, err)
	}
	return &a, nil
}

func (q *Queries) DeleteAllocation(ctx context.Context, id string) error {
	res, err := q.db.NewDelete().
		Model((*models.Allocation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperr.Store("delete allocation", err)
	}
	n, err := rowsAffected("delete allocation", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("allocation", id)
	}
	return nil
}

func (q *Queries) DeleteAllocationsForEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*models.Allocation)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("delete event allocations", err)
	}
	return rowsAffected("delete event allocations", res)
}

func (q *Queries) DeleteAllocationsForResource(ctx context.Context, resourceID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*models.Allocation)(nil)).
		Where("resource_id = ?", resourceID).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("delete resource allocations", err)
	}
	return rowsAffected("delete resource allocations", res)
}

func (q *Queries) AllocationsForEvent(ctx context.Context, eventID string) ([]models.Allocation, error) {
	out := make([]models.Allocation, 0)
	err := q.db.NewSelect().
		Model(&out).
		Where("a.event_id = ?", eventID).
		OrderExpr("a.resource_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Store("list event allocations", err)
	}
	return out, nil
}

// ResourceBookings resolves every allocation of a resource to its event
// window, ordered by (start_time, event_id). Allocations whose event row is
// gone are not returned.
func (q *Queries) ResourceBookings(ctx context.Context, resourceID string) ([]models.Booking, error) {
	out := make([]models.Booking, 0)
	err := q.db.NewSelect().
		TableExpr("event_resource_allocations AS a").
		ColumnExpr("a.id AS allocation_id").
		ColumnExpr("a.resource_id").
		ColumnExpr("a.event_id").
		ColumnExpr("e.title AS event_title").
		ColumnExpr("e.start_time").
		ColumnExpr("e.end_time").
		Join("JOIN events AS e ON e.id = a.event_id").
		Where("a.resource_id = ?", resourceID).
		OrderExpr("e.start_time ASC, e.id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, apperr.Store("list resource bookings", err)
	}
	return out, nil
}

// AllBookings resolves every allocation whose event and resource both exist.
func (q *Queries) AllBookings(ctx context.Context) ([]models.Booking, error) {
	out := make([]models.Booking, 0)
	err := q.db.NewSelect().
		TableExpr("event_resource_allocations AS a").
		ColumnExpr("a.id AS allocation_id").
		ColumnExpr("a.resource_id").
		ColumnExpr("a.event_id").
		ColumnExpr("e.title AS event_title").
		ColumnExpr("e.start_time").
		ColumnExpr("e.end_time").
		Join("JOIN events AS e ON e.id = a.event_id").
		Join("JOIN resources AS r ON r.id = a.resource_id").
		OrderExpr("a.resource_id ASC, e.start_time ASC, e.id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, apperr.Store("list bookings", err)
	}
	return out, nil
}

// AllocationsForOwner lists allocations of events owned by the user, most
// recent event first.
func (q *Queries) AllocationsForOwner(ctx context.Context, ownerID string) ([]models.AllocationView, error) {
	out := make([]models.AllocationView, 0)
	err := q.db.NewSelect().
		TableExpr("event_resource_allocations AS a").
		ColumnExpr("a.id AS allocation_id").
		ColumnExpr("e.id AS event_id").
		ColumnExpr("e.title AS event_title").
		ColumnExpr("e.start_time AS event_start").
		ColumnExpr("e.end_time AS event_end").
		ColumnExpr("e.description AS event_description").
		ColumnExpr("r.id AS resource_id").
		ColumnExpr("r.name AS resource_name").
		ColumnExpr("r.type AS resource_type").
		Join("JOIN events AS e ON e.id = a.event_id").
		Join("JOIN resources AS r ON r.id = a.resource_id").
		Where("e.owner_id = ?", ownerID).
		OrderExpr("e.start_time DESC, a.id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, apperr.Store("list owner allocations", err)
	}
	return out, nil
}
