// Package users handles accounts: registration, password checks, credential
// rotation and deletion.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 150
	minPasswordLength = 8
)

type Service struct {
	store *store.Store
	log   *logger.Logger
	cost  int
	now   func() time.Time
}

func NewService(st *store.Store, log *logger.Logger) *Service {
	return &Service{
		store: st,
		log:   log,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// WithHashCost overrides the bcrypt cost, e.g. bcrypt.MinCost in tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

func validateCredentials(username, password string) error {
	if n := len(username); n < minUsernameLength || n > maxUsernameLength {
		return apperr.InvalidInput("username",
			fmt.Sprintf("must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.InvalidInput("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > 72 {
		return apperr.InvalidInput("password", "must be at most 72 bytes")
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Register creates a regular account.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.create(ctx, strings.TrimSpace(username), password, false)
}

func (s *Service) create(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      admin,
		CreatedAt:    s.now().UTC(),
	}
	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		taken, err := q.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return apperr.InvalidInput("username", "already taken")
		}
		return q.InsertUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("USER", fmt.Sprintf("User %s registered (admin=%t)", user.ID, admin))
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Queries().UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.LogSecurity("LOGIN_FAILED", fmt.Sprintf("unknown user %q", username))
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for %s", user.ID))
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.Queries().UserByID(ctx, id)
}

// RotatePassword replaces the actor's password after checking the current one.
func (s *Service) RotatePassword(ctx context.Context, actor models.Actor, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.store.Queries().UserByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		s.log.LogSecurity("PASSWORD_ROTATION_DENIED", user.ID)
		return apperr.ErrUnauthorized
	}

	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.store.Queries().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info("USER", fmt.Sprintf("Password rotated for %s", user.ID))
	return nil
}

// Delete removes a user. Their events stay without an owner and their
// registrations are released, all in one transaction. Users may delete
// themselves; admins may delete anyone.
func (s *Service) Delete(ctx context.Context, actor models.Actor, userID string) error {
	if !actor.IsAdmin && actor.UserID != userID {
		return apperr.Forbidden(actor.UserID, "")
	}
	return s.Remove(ctx, userID)
}

// Remove deletes a user without an authorization check. It is the handler
// for deletions announced by the identity service.
func (s *Service) Remove(ctx context.Context, userID string) error {
	var orphaned int64
	var released int
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if _, err := q.UserByID(ctx, userID); err != nil {
			return err
		}
		var err error
		if orphaned, err = q.ClearEventOwnership(ctx, userID); err != nil {
			return err
		}
		if released, err = q.RemoveUserRegistrations(ctx, userID); err != nil {
			return err
		}
		return q.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info("USER", fmt.Sprintf("User %s deleted (%d events left ownerless, %d registrations released)",
		userID, orphaned, released))
	return nil
}

// EnsureAdmin makes sure an admin account with the given name exists,
// creating it or promoting an existing user.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	existing, err := s.store.Queries().UserByUsername(ctx, username)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.store.Queries().SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, err
			}
			existing.IsAdmin = true
			s.log.Info("USER", fmt.Sprintf("User %s promoted to admin", existing.ID))
		}
		return existing, nil
	case errors.Is(err, apperr.ErrNotFound):
		return s.create(ctx, username, password, true)
	default:
		return nil, err
	}
}

// HandleUserDeleted applies a deletion announced by the identity service.
// Users already gone are treated as done.
func (s *Service) HandleUserDeleted(ctx context.Context, msg models.UserDeletedMessage) error {
	err := s.Remove(ctx, msg.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Debug("USER", fmt.Sprintf("User %s already removed", msg.UserID))
		return nil
	}
	return err
}
