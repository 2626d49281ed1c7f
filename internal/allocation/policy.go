package allocation

import (
	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

// CanMutate reports whether actor may change or delete the event and its
// allocations. Events without an owner are admin-only.
func CanMutate(actor models.Actor, event *models.Event) bool {
	if actor.IsAdmin {
		return true
	}
	return event.OwnerID != nil && *event.OwnerID == actor.UserID
}

func Authorize(actor models.Actor, event *models.Event) error {
	if !CanMutate(actor, event) {
		return apperr.Forbidden(actor.UserID, event.ID)
	}
	return nil
}

func RequireAdmin(actor models.Actor) error {
	if !actor.IsAdmin {
		return apperr.Forbidden(actor.UserID, "")
	}
	return nil
}
