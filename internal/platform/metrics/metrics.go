package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsTotal              *prometheus.CounterVec
	RegistrationsSubmitted   prometheus.Counter
	UsersMaterialized        prometheus.Counter
	CertificatesCreated      prometheus.Counter
	ComplaintsCreated        prometheus.Counter
	NotificationsCreated     prometheus.Counter
	NotificationFanoutErrors prometheus.Counter
	RequestDuration          *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on reg. Tests pass a
// private registry so parallel packages do not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panchayat_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		RegistrationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_registrations_submitted_total",
			Help: "Registration requests submitted",
		}),
		UsersMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_users_materialized_total",
			Help: "Citizen users created from approved registrations",
		}),
		CertificatesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_certificates_created_total",
			Help: "Certificate applications submitted",
		}),
		ComplaintsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_complaints_created_total",
			Help: "Complaints submitted",
		}),
		NotificationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_notifications_created_total",
			Help: "Inbox notifications created by workflow transitions",
		}),
		NotificationFanoutErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "panchayat_notification_fanout_errors_total",
			Help: "Notification creations that failed and were dropped",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "panchayat_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}
