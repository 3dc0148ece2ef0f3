package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/certificate"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type certificatesHandler struct {
	service *certificate.Service
	logger  *slog.Logger
}

func (h *certificatesHandler) Register(r chi.Router) {
	r.Route("/certificates", func(r chi.Router) {
		r.With(middleware.RequireRole(roleCitizen)).Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Put("/{id}", h.handleUpdate)
	})
}

func (h *certificatesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[certificate.CreateInput](w, r)
	if !ok {
		return
	}
	cert, err := h.service.Create(ctx, input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "certificate application created",
		"request_id", requestcontext.RequestID(ctx),
		"application_number", cert.ApplicationNumber,
	)
	shared.WriteJSON(w, http.StatusCreated, cert)
}

func (h *certificatesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	certs, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, certs)
}

func (h *certificatesHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cert)
}

func (h *certificatesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[certificate.UpdateInput](w, r)
	if !ok {
		return
	}
	cert, err := h.service.Update(ctx, chi.URLParam(r, "id"), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "certificate updated",
		"request_id", requestcontext.RequestID(ctx),
		"application_number", cert.ApplicationNumber,
		"status", cert.Status,
	)
	shared.WriteJSON(w, http.StatusOK, cert)
}
