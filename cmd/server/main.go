package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"panchayat/internal/auth"
	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/dashboard"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/notification"
	"panchayat/internal/platform/config"
	"panchayat/internal/platform/httpserver"
	"panchayat/internal/platform/logger"
	"panchayat/internal/platform/metrics"
	"panchayat/internal/platform/middleware"
	platformredis "panchayat/internal/platform/redis"
	"panchayat/internal/platform/sequence"
	"panchayat/internal/registration"
	"panchayat/internal/revenue"
	"panchayat/internal/scheme"
	"panchayat/internal/search"
	"panchayat/internal/settings"
	httptransport "panchayat/internal/transport/http"
)

// deactivationList joins the two sides of the soft-delete marker: the user
// service writes entries, the auth middleware reads them.
type deactivationList interface {
	identity.Deactivator
	middleware.DeactivationChecker
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var (
		userStore     identity.Store
		regStore      registration.Store
		certStore     certificate.Store
		compStore     complaint.Store
		schemeStore   scheme.Store
		noticeStore   notice.Store
		notifStore    notification.Store
		settingsStore settings.Store
		revenueStore  revenue.Store
		numbers       sequence.Allocator
	)

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}

		userStore = identity.NewPostgres(db)
		regStore = registration.NewPostgres(db)
		certStore = certificate.NewPostgres(db)
		compStore = complaint.NewPostgres(db)
		schemeStore = scheme.NewPostgres(db)
		noticeStore = notice.NewPostgres(db)
		notifStore = notification.NewPostgres(db)
		settingsStore = settings.NewPostgres(db)
		revenueStore = revenue.NewPostgres(db)
		numbers = sequence.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		userStore = identity.NewMemoryStore()
		regStore = registration.NewMemoryStore()
		certStore = certificate.NewMemoryStore()
		compStore = complaint.NewMemoryStore()
		schemeStore = scheme.NewMemoryStore()
		noticeStore = notice.NewMemoryStore()
		notifStore = notification.NewMemoryStore()
		settingsStore = settings.NewMemoryStore()
		revenueStore = revenue.NewMemoryStore()
		numbers = sequence.NewMemoryAllocator()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}

	var deactivation deactivationList
	if redisClient != nil {
		defer redisClient.Close()
		deactivation = auth.NewRedisDeactivationList(redisClient.Client)
		log.Info("using redis deactivation list")
	} else {
		deactivation = auth.NewMemoryDeactivationList()
	}

	tokens := auth.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	notifications := notification.NewService(notifStore, log, m)
	authService := auth.NewService(userStore, regStore, tokens, m)
	users := identity.NewService(userStore, deactivation, cfg.TokenTTL, log)
	registrations := registration.NewService(regStore, userStore, notifications, m)
	certificates := certificate.NewService(certStore, userStore, numbers, notifications, m)
	complaints := complaint.NewService(compStore, userStore, numbers, notifications, m)
	schemes := scheme.NewService(schemeStore, userStore)
	notices := notice.NewService(noticeStore, userStore)
	settingsService := settings.NewService(settingsStore)
	dashboardService := dashboard.NewService(
		userStore, certStore, compStore, schemeStore, regStore, revenueStore,
		compStore, certStore, schemeStore, revenueStore, noticeStore,
	)
	searchService := search.NewService(userStore, schemeStore, compStore, certStore, noticeStore)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:        log,
		Metrics:       m,
		Registry:      reg,
		Tokens:        tokens,
		Deactivation:  deactivation,
		Auth:          authService,
		Users:         users,
		Registrations: registrations,
		Certificates:  certificates,
		Complaints:    complaints,
		Schemes:       schemes,
		Notices:       notices,
		Notifications: notifications,
		Dashboard:     dashboardService,
		Search:        searchService,
		Settings:      settingsService,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting gram panchayat API", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
