package events

import (
	"context"
	"errors"
	"fmt"

	"ms-booking/internal/allocation"
	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const passSize = 256

// Register signs the actor up for the event, taking one seat.
func (s *Service) Register(ctx context.Context, actor models.Actor, eventID string) (*models.EventAttendee, error) {
	var attendee *models.EventAttendee
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if _, err := q.EventByID(ctx, eventID); err != nil {
			return err
		}

		_, err := q.AttendeeFor(ctx, actor.UserID, eventID)
		switch {
		case err == nil:
			return fmt.Errorf("event %s: %w", eventID, apperr.ErrAlreadyRegistered)
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}

		ok, err := q.ReserveSeat(ctx, eventID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("event %s is inactive or full: %w", eventID, apperr.ErrEventUnavailable)
		}

		attendee = &models.EventAttendee{
			ID:           uuid.NewString(),
			UserID:       actor.UserID,
			EventID:      eventID,
			RegisteredAt: s.now().UTC(),
		}
		return q.InsertAttendee(ctx, attendee)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("EVENT", fmt.Sprintf("User %s registered for event %s", actor.UserID, eventID))
	return attendee, nil
}

// Unregister gives the actor's seat back.
func (s *Service) Unregister(ctx context.Context, actor models.Actor, eventID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		a, err := q.AttendeeFor(ctx, actor.UserID, eventID)
		if err != nil {
			return err
		}
		if err := q.DeleteAttendee(ctx, a.ID); err != nil {
			return err
		}
		return q.ReleaseSeat(ctx, eventID)
	})
	if err != nil {
		return err
	}

	s.log.Info("EVENT", fmt.Sprintf("User %s unregistered from event %s", actor.UserID, eventID))
	return nil
}

// Attendees lists registrations. Only the owner or an admin may see them.
func (s *Service) Attendees(ctx context.Context, actor models.Actor, eventID string) ([]models.AttendeeView, error) {
	q := s.store.Queries()
	e, err := q.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := allocation.Authorize(actor, e); err != nil {
		return nil, err
	}
	return q.ListAttendees(ctx, eventID)
}

// PassPayload is the text a registration pass encodes.
func PassPayload(eventID, registrationID string) string {
	return fmt.Sprintf("event:%s:attendee:%s", eventID, registrationID)
}

// Pass renders the actor's registration as a PNG QR code.
func (s *Service) Pass(ctx context.Context, actor models.Actor, eventID string) ([]byte, error) {
	a, err := s.store.Queries().AttendeeFor(ctx, actor.UserID, eventID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(PassPayload(eventID, a.ID), qrcode.Medium, passSize)
	if err != nil {
		return nil, fmt.Errorf("encode registration pass: %w", err)
	}
	return png, nil
}
