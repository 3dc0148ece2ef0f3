package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panchayat/internal/dashboard"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/transport/http/shared"
	"panchayat/pkg/requestcontext"
)

type dashboardHandler struct {
	service *dashboard.Service
	logger  *slog.Logger
}

func (h *dashboardHandler) Register(r chi.Router) {
	staff := middleware.RequireRole(roleAdmin, roleClerk)
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(staff)
		r.Get("/summary", h.handleSummary)
		r.Get("/performance", h.handlePerformance)
		r.Get("/system-integrity", h.handleSystemIntegrity)
		r.Get("/export", h.handleExport)
	})
	r.With(staff).Get("/reports/summary", h.handleReport)
}

func (h *dashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *dashboardHandler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.service.Performance(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, perf)
}

func (h *dashboardHandler) handleSystemIntegrity(w http.ResponseWriter, r *http.Request) {
	integrity, err := h.service.SystemIntegrity(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, integrity)
}

func (h *dashboardHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	export, err := h.service.ExportAnalytics(ctx, format)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "analytics exported",
		"request_id", requestcontext.RequestID(ctx),
		"format", format,
		"bytes", len(export.Body),
	)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Body)
}

func (h *dashboardHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}
