package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/complaint"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type complaintsHandler struct {
	service *complaint.Service
	logger  *slog.Logger
}

func (h *complaintsHandler) Register(r chi.Router) {
	r.Route("/complaints", func(r chi.Router) {
		r.With(middleware.RequireRole(roleCitizen)).Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Put("/{id}", h.handleUpdate)
	})
}

func (h *complaintsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[complaint.CreateInput](w, r)
	if !ok {
		return
	}
	c, err := h.service.Create(ctx, input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "complaint created",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_number", c.ComplaintNumber,
	)
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *complaintsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, complaints)
}

func (h *complaintsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *complaintsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[complaint.UpdateInput](w, r)
	if !ok {
		return
	}
	c, err := h.service.Update(ctx, chi.URLParam(r, "id"), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "complaint updated",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_number", c.ComplaintNumber,
		"status", c.Status,
	)
	shared.WriteJSON(w, http.StatusOK, c)
}
