package api

import (
	"net/http"

	"ms-booking/internal/resources"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	list, err := h.Resources.List(r.Context())
	if err != nil {
		h.fail(w, r, "Could not list resources", err)
		return
	}
	h.ok(w, http.StatusOK, "Resources", list)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.Resources.Get(r.Context(), chi.URLParam(r, "resourceId"))
	if err != nil {
		h.fail(w, r, "Resource not available", err)
		return
	}
	h.ok(w, http.StatusOK, "Resource", res)
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var in resources.Input
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	res, err := h.Resources.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, "Could not create resource", err)
		return
	}
	h.ok(w, http.StatusCreated, "Resource created", res)
}

func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var in resources.Input
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	res, err := h.Resources.Update(r.Context(), actor(r), chi.URLParam(r, "resourceId"), in)
	if err != nil {
		h.fail(w, r, "Could not update resource", err)
		return
	}
	h.ok(w, http.StatusOK, "Resource updated", res)
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.Resources.Delete(r.Context(), actor(r), chi.URLParam(r, "resourceId")); err != nil {
		h.fail(w, r, "Could not delete resource", err)
		return
	}
	h.ok(w, http.StatusOK, "Resource deleted", nil)
}
