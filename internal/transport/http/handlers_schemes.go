package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/platform/middleware"
	"panchayat/internal/scheme"
	"panchayat/internal/transport/http/shared"
)

type schemesHandler struct {
	service *scheme.Service
	logger  *slog.Logger
}

func (h *schemesHandler) Register(r chi.Router) {
	r.Route("/schemes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(roleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(roleAdmin)).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireRole(roleAdmin)).Delete("/{id}", h.handleDelete)
	})
}

func (h *schemesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, schemes)
}

func (h *schemesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[scheme.CreateInput](w, r)
	if !ok {
		return
	}
	s, err := h.service.Create(r.Context(), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, s)
}

func (h *schemesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[scheme.UpdateInput](w, r)
	if !ok {
		return
	}
	s, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, s)
}

func (h *schemesHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Scheme deleted successfully"})
}
