// Package store is the entity store: bun-backed reads and writes over users,
// events, resources, allocations and attendee registrations. Every mutation
// that spans rows goes through InTx so it commits or rolls back as a unit.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ms-booking/internal/apperr"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const uniqueViolation = pq.ErrorCode("23505")

type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Queries returns a query set bound to the database itself, outside of any
// transaction. Use it for reads only.
func (s *Store) Queries() *Queries {
	return &Queries{db: s.db}
}

// InTx runs fn inside a transaction. A nil return commits; an error or a panic
// rolls back. Errors returned by fn come back unchanged so callers can match
// domain errors with errors.Is.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, q *Queries) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &Queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, apperr.Store("rollback transaction", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Store("commit transaction", err)
	}
	return nil
}

// Queries holds every store operation, bound to either the database or a
// transaction.
type Queries struct {
	db bun.IDB
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available.
func (q *Queries) SupportsRowLocks() bool {
	return q.db.Dialect().Name() == dialect.PG
}

func notFoundOr(op, entity, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Store(op, err)
}

// isUniqueViolation reports a unique constraint failure on PostgreSQL
// (SQLSTATE 23505) or SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Store(op, err)
}

func rowsAffected(op string, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store(op, fmt.Errorf("rows affected: %w", err))
	}
	return n, nil
}
