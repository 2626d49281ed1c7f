package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ms-booking/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.NotFound("event", "e1"), http.StatusNotFound},
		{&apperr.InvalidWindowError{}, http.StatusBadRequest},
		{apperr.InvalidInput("title", "required"), http.StatusBadRequest},
		{apperr.ErrEventUnavailable, http.StatusBadRequest},
		{&apperr.ConflictError{ResourceID: "r1"}, http.StatusConflict},
		{apperr.ErrAlreadyRegistered, http.StatusConflict},
		{apperr.Forbidden("u1", "e1"), http.StatusForbidden},
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.Store("commit", errors.New("disk full")), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("resource", "r1")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), tt.err.Error())
	}
}

func TestErrorBodyHidesStoreCause(t *testing.T) {
	body := ErrorBody("Allocation failed", apperr.Store("commit", errors.New("pq: secret detail")))
	assert.NotContains(t, body.Error, "secret")
	assert.False(t, body.Success)
}

func TestErrorBodyCarriesConflict(t *testing.T) {
	err := &apperr.ConflictError{
		ResourceID:  "r1",
		Conflicting: apperr.ConflictingEvent{EventID: "e9", EventTitle: "Standup"},
	}
	body := ErrorBody("Allocation failed", err)
	assert.Equal(t, err.Conflicting, body.Data)
}
