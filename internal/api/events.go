package api

import (
	"net/http"
	"strings"

	"ms-booking/internal/apperr"
	"ms-booking/internal/events"
	"ms-booking/internal/store"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		h.fail(w, r, "Invalid event filter", err)
		return
	}

	page, err := h.Events.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "Failed to list events", err)
		return
	}
	h.ok(w, http.StatusOK, "Events", page)
}

func parseEventFilter(r *http.Request) (store.EventFilter, error) {
	q := r.URL.Query()
	f := store.EventFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Location:   strings.TrimSpace(q.Get("location")),
		Organizer:  strings.TrimSpace(q.Get("organizer")),
		SortBy:     q.Get("sort_by"),
		Descending: strings.EqualFold(q.Get("order"), "desc"),
	}

	var err error
	if f.ActiveOnly, err = queryBool(r, "active_only", true); err != nil {
		return f, err
	}
	if f.Page, err = queryInt(r, "page"); err != nil {
		return f, err
	}
	if f.PerPage, err = queryInt(r, "per_page"); err != nil {
		return f, err
	}
	if s := q.Get("start_date"); s != "" {
		from, err := utils.ParseRangeStart(s)
		if err != nil {
			return f, apperr.InvalidInput("start_date", err.Error())
		}
		f.StartFrom = &from
	}
	if s := q.Get("end_date"); s != "" {
		to, err := utils.ParseRangeEnd(s)
		if err != nil {
			return f, apperr.InvalidInput("end_date", err.Error())
		}
		f.StartTo = &to
	}
	return f, nil
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.Get(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, "Event not available", err)
		return
	}
	h.ok(w, http.StatusOK, "Event", event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in events.CreateInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	event, err := h.Events.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, "Could not create event", err)
		return
	}
	h.ok(w, http.StatusCreated, "Event created", event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in events.UpdateInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	event, err := h.Events.Update(r.Context(), actor(r), chi.URLParam(r, "eventId"), in)
	if err != nil {
		h.fail(w, r, "Could not update event", err)
		return
	}
	h.ok(w, http.StatusOK, "Event updated", event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Delete(r.Context(), actor(r), chi.URLParam(r, "eventId")); err != nil {
		h.fail(w, r, "Could not delete event", err)
		return
	}
	h.ok(w, http.StatusOK, "Event deleted", nil)
}

func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	registration, err := h.Events.Register(r.Context(), actor(r), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, "Registration failed", err)
		return
	}
	h.ok(w, http.StatusCreated, "Registered for event", registration)
}

func (h *Handler) UnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Unregister(r.Context(), actor(r), chi.URLParam(r, "eventId")); err != nil {
		h.fail(w, r, "Unregistration failed", err)
		return
	}
	h.ok(w, http.StatusOK, "Unregistered from event", nil)
}

func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	png, err := h.Events.Pass(r.Context(), actor(r), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, "Pass not available", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.Events.Attendees(r.Context(), actor(r), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, "Could not list attendees", err)
		return
	}
	h.ok(w, http.StatusOK, "Attendees", attendees)
}
