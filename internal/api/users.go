package api

import (
	"net/http"

	"ms-booking/internal/auth"

	"github.com/go-chi/chi/v5"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	user, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, "Registration failed", err)
		return
	}
	h.ok(w, http.StatusCreated, "Account created", user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, "Invalid username or password", err)
		return
	}

	token, expires, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.fail(w, r, "Login failed", err)
		return
	}
	h.ok(w, http.StatusOK, "Logged in", auth.Session{Token: token, ExpiresAt: expires, User: user})
}

func (h *Handler) RotatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordChange
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if err := h.Users.RotatePassword(r.Context(), actor(r), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, "Password change failed", err)
		return
	}
	h.ok(w, http.StatusOK, "Password changed", nil)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), actor(r), chi.URLParam(r, "userId")); err != nil {
		h.fail(w, r, "Could not delete user", err)
		return
	}
	h.ok(w, http.StatusOK, "User deleted", nil)
}
