package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ms-booking/internal/apperr"
	"ms-booking/internal/auth"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

func (h *Handler) ok(w http.ResponseWriter, status int, message string, data interface{}) {
	if err := utils.WriteJSON(w, status, utils.SuccessResponse(message, data)); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Failed to write response: %v", err))
	}
}

// fail writes the error envelope. Unexpected failures are logged with the
// request id; their cause stays out of the response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := utils.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s %s [%s]: %s: %v",
			r.Method, r.URL.Path, middleware.GetReqID(r.Context()), message, err))
	}
	utils.WriteJSON(w, status, utils.ErrorBody(message, err))
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.InvalidInput("body", err.Error())
	}
	return nil
}

// actor returns the caller resolved by the auth middleware.
func actor(r *http.Request) models.Actor {
	a, _ := auth.ActorFrom(r.Context())
	return a
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.InvalidInput(key, "must be an integer")
	}
	return n, nil
}

func queryBool(r *http.Request, key string, def bool) (bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperr.InvalidInput(key, "must be true or false")
	}
	return b, nil
}
