package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// UserLookup resolves verified identities to local accounts.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Middleware requires a bearer token accepted by one of the verifiers and
// stores the resolved actor in the request context. Admin rights come from
// the account, never from the token.
func Middleware(users UserLookup, log *logger.Logger, verifiers ...TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractTokenFromRequest(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			identity, err := verify(r.Context(), raw, verifiers)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				unauthorized(w, "invalid token")
				return
			}

			user, err := resolve(r.Context(), users, identity)
			if err != nil {
				if !errors.Is(err, apperr.ErrNotFound) {
					log.Error("AUTH", fmt.Sprintf("Failed to resolve user %s: %v", identity.Subject, err))
				}
				unauthorized(w, "unknown user")
				return
			}

			ctx := WithActor(r.Context(), models.Actor{UserID: user.ID, IsAdmin: user.IsAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(ctx context.Context, raw string, verifiers []TokenVerifier) (Identity, error) {
	err := ErrInvalidToken
	for _, v := range verifiers {
		identity, verr := v.Verify(ctx, raw)
		if verr == nil {
			return identity, nil
		}
		err = verr
	}
	return Identity{}, err
}

func resolve(ctx context.Context, users UserLookup, identity Identity) (*models.User, error) {
	user, err := users.UserByID(ctx, identity.Subject)
	if errors.Is(err, apperr.ErrNotFound) && identity.Username != "" {
		return users.UserByUsername(ctx, identity.Username)
	}
	return user, err
}

func unauthorized(w http.ResponseWriter, reason string) {
	utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", reason))
}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor stored by Middleware.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// Session is what a successful login returns.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}
