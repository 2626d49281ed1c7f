// Package api exposes the booking services over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"ms-booking/internal/allocation"
	analytics_api "ms-booking/internal/analytics/api"
	"ms-booking/internal/auth"
	"ms-booking/internal/events"
	"ms-booking/internal/logger"
	"ms-booking/internal/resources"
	"ms-booking/internal/users"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler holds the services the routes delegate to.
type Handler struct {
	Events      *events.Service
	Resources   *resources.Service
	Allocations *allocation.Manager
	Users       *users.Service
	Reports     *analytics_api.Handler
	Tokens      *auth.HMACTokens
	Logger      *logger.Logger
}

// Router builds the chi router. Routes under authenticate require a bearer
// token.
func (h *Handler) Router(authenticate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		r.Post("/auth/register", h.RegisterUser)
		r.Post("/auth/login", h.Login)
		r.Get("/events", h.ListEvents)
		r.Get("/events/{eventId}", h.GetEvent)
		r.Get("/resources", h.ListResources)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/events", h.CreateEvent)
			r.Put("/events/{eventId}", h.UpdateEvent)
			r.Delete("/events/{eventId}", h.DeleteEvent)
			r.Post("/events/{eventId}/register", h.RegisterForEvent)
			r.Post("/events/{eventId}/unregister", h.UnregisterFromEvent)
			r.Get("/events/{eventId}/pass", h.GetPass)
			r.Get("/events/{eventId}/attendees", h.ListAttendees)
			r.Post("/events/{eventId}/allocate-resource", h.AllocateResource)

			r.Get("/allocations", h.ListAllocations)
			r.Delete("/allocations/{allocationId}", h.DeleteAllocation)

			h.Reports.RegisterRoutes(r)
			r.Post("/resources", h.CreateResource)
			r.Get("/resources/{resourceId}", h.GetResource)
			r.Put("/resources/{resourceId}", h.UpdateResource)
			r.Delete("/resources/{resourceId}", h.DeleteResource)
			r.Get("/resources/{resourceId}/conflicts", h.CheckConflict)

			r.Put("/users/me/password", h.RotatePassword)
			r.Delete("/users/{userId}", h.DeleteUser)
		})
	})

	h.Logger.Info("ROUTER", "Routes registered under /api")
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprint(status), time.Since(start).String())
	})
}
