package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/platform/middleware"
	"panchayat/internal/settings"
	"panchayat/internal/transport/http/shared"
)

type settingsHandler struct {
	service *settings.Service
	logger  *slog.Logger
}

func (h *settingsHandler) Register(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Use(middleware.RequireRole(roleAdmin))
		r.Get("/", h.handleGet)
		r.Put("/", h.handleUpdate)
	})
}

func (h *settingsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	values, err := h.service.Get(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, values)
}

func (h *settingsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	values, ok := shared.Decode[map[string]any](w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), values); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Settings updated successfully",
		"settings": values,
	})
}
