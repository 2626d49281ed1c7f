package store

import (
	"context"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

// ---------------- RESOURCES ----------------

func (q *Queries) InsertResource(ctx context.Context, r *models.Resource) error {
	_, err := q.db.NewInsert().Model(r).Exec(ctx)
	return storeErr("insert resource", err)
}

func (q *Queries) ResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	var r models.Resource
	err := q.db.NewSelect().
		Model(&r).
		Where("r.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get resource", "resource", id, err)
	}
	return &r, nil
}

// LockResource reads the resource row and, where the dialect supports it,
// holds a row lock on it until the surrounding transaction ends.
func (q *Queries) LockResource(ctx context.Context, id string) (*models.Resource, error) {
	var r models.Resource
	sel := q.db.NewSelect().
		Model(&r).
		Where("r.id = ?", id).
		Limit(1)
	if q.SupportsRowLocks() {
		sel = sel.For("UPDATE")
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, notFoundOr("lock resource", "resource", id, err)
	}
	return &r, nil
}

func (q *Queries) ListResources(ctx context.Context) ([]models.Resource, error) {
	out := make([]models.Resource, 0)
	err := q.db.NewSelect().
		Model(&out).
		OrderExpr("r.name ASC, r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Store("list resources", err)
	}
	return out, nil
}

func (q *Queries) UpdateResource(ctx context.Context, r *models.Resource) error {
	res, err := q.db.NewUpdate().
		Model(r).
		Column("name", "type").
		WherePK().
		Exec(ctx)
	if err != nil {
		return apperr.Store("update resource", err)
	}
	n, err := rowsAffected("update resource", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("resource", r.ID)
	}
	return nil
}

func (q *Queries) DeleteResource(ctx context.Context, id string) error {
	res, err := q.db.NewDelete().
		Model((*models.Resource)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperr.Store("delete resource", err)
	}
	n, err := rowsAffected("delete resource", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("resource", id)
	}
	return nil
}
