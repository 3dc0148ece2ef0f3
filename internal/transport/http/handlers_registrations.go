package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/platform/middleware"
	"panchayat/internal/registration"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type registrationsHandler struct {
	service *registration.Service
	logger  *slog.Logger
}

func (h *registrationsHandler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Use(middleware.RequireRole(roleAdmin))
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleDecide)
	})
}

func (h *registrationsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, requests)
}

func (h *registrationsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, req)
}

func (h *registrationsHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decision, ok := shared.Decode[registration.Decision](w, r)
	if !ok {
		return
	}
	req, err := h.service.Decide(ctx, chi.URLParam(r, "id"), decision)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "registration reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", req.ID,
		"status", req.Status,
	)
	shared.WriteJSON(w, http.StatusOK, req)
}
