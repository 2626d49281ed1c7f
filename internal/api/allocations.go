package api

import (
	"net/http"
	"strings"

	"ms-booking/internal/apperr"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type allocateRequest struct {
	ResourceID string `json:"resource_id"`
}

func (h *Handler) AllocateResource(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ResourceID) == "" {
		h.fail(w, r, "Invalid request body", apperr.InvalidInput("resource_id", "required"))
		return
	}

	alloc, err := h.Allocations.Allocate(r.Context(), chi.URLParam(r, "eventId"), req.ResourceID, actor(r))
	if err != nil {
		h.fail(w, r, "Allocation failed", err)
		return
	}
	h.ok(w, http.StatusCreated, "Resource allocated", alloc)
}

func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	views, err := h.Allocations.ListForOwner(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, "Could not list allocations", err)
		return
	}
	h.ok(w, http.StatusOK, "Allocations", views)
}

func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Allocations.Deallocate(r.Context(), chi.URLParam(r, "allocationId"), actor(r)); err != nil {
		h.fail(w, r, "Could not remove allocation", err)
		return
	}
	h.ok(w, http.StatusOK, "Allocation removed", nil)
}

func (h *Handler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := utils.ParseTimestamp(q.Get("start_time"))
	if err != nil {
		h.fail(w, r, "Invalid window", apperr.InvalidInput("start_time", err.Error()))
		return
	}
	end, err := utils.ParseTimestamp(q.Get("end_time"))
	if err != nil {
		h.fail(w, r, "Invalid window", apperr.InvalidInput("end_time", err.Error()))
		return
	}

	result, err := h.Allocations.CheckConflict(r.Context(), chi.URLParam(r, "resourceId"), start, end)
	if err != nil {
		h.fail(w, r, "Conflict check failed", err)
		return
	}
	h.ok(w, http.StatusOK, "Conflict check", result)
}
