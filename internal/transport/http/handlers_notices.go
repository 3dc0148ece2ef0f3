package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/notice"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type noticesHandler struct {
	service *notice.Service
	logger  *slog.Logger
}

func (h *noticesHandler) Register(r chi.Router) {
	r.Route("/notices", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(roleAdmin)).Post("/global", h.handleBroadcast)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(roleAdmin, roleClerk)).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireRole(roleAdmin)).Delete("/{id}", h.handleDelete)
	})
}

func (h *noticesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	notices, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, notices)
}

func (h *noticesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[notice.CreateInput](w, r)
	if !ok {
		return
	}
	n, err := h.service.Create(r.Context(), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, n)
}

func (h *noticesHandler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := shared.Decode[notice.BroadcastInput](w, r)
	if !ok {
		return
	}
	n, err := h.service.Broadcast(ctx, input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "global notice broadcast",
		"request_id", requestcontext.RequestID(ctx),
		"notice_id", n.ID,
	)
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Global notice broadcast successfully",
		"notice":  n,
	})
}

func (h *noticesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	input, ok := shared.Decode[notice.UpdateInput](w, r)
	if !ok {
		return
	}
	n, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, n)
}

func (h *noticesHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notice deleted successfully"})
}
