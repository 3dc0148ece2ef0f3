package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/search"
	"panchayat/internal/transport/http/shared"
)

type searchHandler struct {
	service *search.Service
	logger  *slog.Logger
}

func (h *searchHandler) Register(r chi.Router) {
	r.Get("/search", h.handleSearch)
}

func (h *searchHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := h.service.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}
