package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"panchayat/internal/auth"
	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/dashboard"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/notification"
	"panchayat/internal/platform/metrics"
	"panchayat/internal/platform/middleware"
	"panchayat/internal/registration"
	"panchayat/internal/scheme"
	"panchayat/internal/search"
	"panchayat/internal/settings"
	"panchayat/internal/transport/http/shared"
)

const (
	roleAdmin   = string(identity.RoleAdmin)
	roleClerk   = string(identity.RoleClerk)
	roleCitizen = string(identity.RoleCitizen)
)

// Deps carries every service the router needs. main wires it once.
type Deps struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Registry      prometheus.Gatherer
	Tokens        middleware.TokenValidator
	Deactivation  middleware.DeactivationChecker
	Auth          *auth.Service
	Users         *identity.Service
	Registrations *registration.Service
	Certificates  *certificate.Service
	Complaints    *complaint.Service
	Schemes       *scheme.Service
	Notices       *notice.Service
	Notifications *notification.Service
	Dashboard     *dashboard.Service
	Search        *search.Service
	Settings      *settings.Service
}

// NewRouter assembles the full API surface. Auth endpoints are public;
// everything else sits behind token validation and per-route role guards.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Welcome to Gram Panchayat API",
			"status":  "running",
			"version": "2.0.0",
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	requireAuth := middleware.RequireAuth(d.Tokens, d.Deactivation, d.Logger)

	authH := &authHandler{service: d.Auth, logger: d.Logger}
	usersH := &usersHandler{users: d.Users, certificates: d.Certificates, complaints: d.Complaints, logger: d.Logger}
	citizensH := &citizensHandler{users: d.Users, certificates: d.Certificates, complaints: d.Complaints, logger: d.Logger}
	registrationsH := &registrationsHandler{service: d.Registrations, logger: d.Logger}
	certificatesH := &certificatesHandler{service: d.Certificates, logger: d.Logger}
	complaintsH := &complaintsHandler{service: d.Complaints, logger: d.Logger}
	schemesH := &schemesHandler{service: d.Schemes, logger: d.Logger}
	noticesH := &noticesHandler{service: d.Notices, logger: d.Logger}
	notificationsH := &notificationsHandler{service: d.Notifications, logger: d.Logger}
	dashboardH := &dashboardHandler{service: d.Dashboard, logger: d.Logger}
	searchH := &searchHandler{service: d.Search, logger: d.Logger}
	settingsH := &settingsHandler{service: d.Settings, logger: d.Logger}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", authH.handleLogin)
		api.Post("/auth/register", authH.handleRegister)

		api.Group(func(protected chi.Router) {
			protected.Use(requireAuth)

			protected.Get("/auth/me", authH.handleMe)

			usersH.Register(protected)
			citizensH.Register(protected)
			registrationsH.Register(protected)
			certificatesH.Register(protected)
			complaintsH.Register(protected)
			schemesH.Register(protected)
			noticesH.Register(protected)
			notificationsH.Register(protected)
			dashboardH.Register(protected)
			searchH.Register(protected)
			settingsH.Register(protected)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		shared.WriteJSON(w, http.StatusNotFound, map[string]string{
			"detail": "Route " + req.Method + " " + req.URL.Path + " not found",
		})
	})

	return r
}
