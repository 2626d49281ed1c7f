package utils

import (
	"errors"
	"net/http"

	"ms-booking/internal/apperr"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidWindow), errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrEventUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody builds the envelope for err. Store failures never expose their
// cause; conflicts carry the conflicting event in data.
func ErrorBody(message string, err error) APIResponse {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		return ErrorResponse(message, "internal error, the operation did not take effect")
	}

	body := ErrorResponse(message, err.Error())
	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		body.Data = conflict.Conflicting
	}
	return body
}
