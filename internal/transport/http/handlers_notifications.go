package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/notification"
	"panchayat/internal/transport/http/shared"
)

type notificationsHandler struct {
	service *notification.Service
	logger  *slog.Logger
}

func (h *notificationsHandler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleInbox)
		r.Put("/{id}/read", h.handleMarkRead)
		r.Post("/mark-all-read", h.handleMarkAllRead)
	})
}

func (h *notificationsHandler) handleInbox(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.Inbox(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, notifications)
}

func (h *notificationsHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, n)
}

func (h *notificationsHandler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context()); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
