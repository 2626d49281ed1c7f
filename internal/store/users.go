package store

import (
	"context"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

// ---------------- USERS ----------------

func (q *Queries) InsertUser(ctx context.Context, user *models.User) error {
	_, err := q.db.NewInsert().Model(user).Exec(ctx)
	return storeErr("insert user", err)
}

func (q *Queries) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := q.db.NewSelect().
		Model(&user).
		Where("u.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get user", "user", id, err)
	}
	return &user, nil
}

func (q *Queries) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := q.db.NewSelect().
		Model(&user).
		Where("u.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get user by username", "user", username, err)
	}
	return &user, nil
}

func (q *Queries) UsernameTaken(ctx context.Context, username string) (bool, error) {
	exists, err := q.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, apperr.Store("check username", err)
	}
	return exists, nil
}

func (q *Queries) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := q.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", hash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperr.Store("update password", err)
	}
	n, err := rowsAffected("update password", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (q *Queries) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	_, err := q.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_admin = ?", isAdmin).
		Where("id = ?", id).
		Exec(ctx)
	return storeErr("set admin flag", err)
}

// DeleteUser → remove the user row; NotFound when nothing was deleted
func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperr.Store("delete user", err)
	}
	n, err := rowsAffected("delete user", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

// ClearEventOwnership leaves the user's events in place without an owner.
func (q *Queries) ClearEventOwnership(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("owner_id = NULL").
		Where("owner_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("clear event ownership", err)
	}
	return rowsAffected("clear event ownership", res)
}

// RemoveUserRegistrations deletes every registration of the user and gives
// the seats back to the events.
func (q *Queries) RemoveUserRegistrations(ctx context.Context, userID string) (int, error) {
	var eventIDs []string
	err := q.db.NewSelect().
		Model((*models.EventAttendee)(nil)).
		Column("event_id").
		Where("ea.user_id = ?", userID).
		Scan(ctx, &eventIDs)
	if err != nil {
		return 0, apperr.Store("list user registrations", err)
	}
	if len(eventIDs) == 0 {
		return 0, nil
	}

	_, err = q.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("current_attendees = CASE WHEN current_attendees > 0 THEN current_attendees - 1 ELSE 0 END").
		Where("id IN (?)", bun.In(eventIDs)).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("release user seats", err)
	}

	_, err = q.db.NewDelete().
		Model((*models.EventAttendee)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, apperr.Store("delete user registrations", err)
	}
	return len(eventIDs), nil
}
