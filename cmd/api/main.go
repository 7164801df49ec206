package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/clinic-api/internal/handler/audit"
	billingHandler "github.com/jwalitptl/clinic-api/internal/handler/billing"
	doctorHandler "github.com/jwalitptl/clinic-api/internal/handler/doctor"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	nurseHandler "github.com/jwalitptl/clinic-api/internal/handler/nurse"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	promHandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	visitHandler "github.com/jwalitptl/clinic-api/internal/handler/visit"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	appointmentService "github.com/jwalitptl/clinic-api/internal/service/appointment"
	auditService "github.com/jwalitptl/clinic-api/internal/service/audit"
	billingService "github.com/jwalitptl/clinic-api/internal/service/billing"
	eventService "github.com/jwalitptl/clinic-api/internal/service/event"
	patientService "github.com/jwalitptl/clinic-api/internal/service/patient"
	scheduleService "github.com/jwalitptl/clinic-api/internal/service/schedule"
	staffService "github.com/jwalitptl/clinic-api/internal/service/staff"
	visitService "github.com/jwalitptl/clinic-api/internal/service/visit"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	}).With("service", "clinic-api")
	appLogger.SetGlobal()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics("clinic", registry)

	// Initialize repositories
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	visitRepo := postgres.NewVisitRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	nurseRepo := postgres.NewNurseRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Initialize services
	auditSvc := auditService.NewService(auditRepo)
	patientSvc := patientService.NewService(patientRepo, auditSvc, appLogger.With("component", "patient"))
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, cfg.Billing, auditSvc, appLogger.With("component", "appointment"))
	visitSvc := visitService.NewService(visitRepo, patientRepo)
	staffSvc := staffService.NewService(doctorRepo, nurseRepo, staffService.CacheConfig{
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})
	scheduleSvc := scheduleService.NewService(staffSvc)
	billingSvc := billingService.NewService(billingRepo, appointmentRepo, patientRepo, auditSvc, appMetrics, appLogger.With("component", "billing"))

	// Events are written to the outbox and published by the worker
	eventTracker := event.NewEventTrackerMiddleware(eventService.NewOutboxRecorder(outboxRepo))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(router.Handlers{
		Health:      health.NewHandler(map[string]health.Pinger{"database": db}),
		Audit:       auditHandler.NewHandler(auditSvc),
		Nurse:       nurseHandler.NewHandler(staffSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Visit:       visitHandler.NewHandler(visitSvc),
		Doctor:      doctorHandler.NewHandler(staffSvc, scheduleSvc),
		Billing:     billingHandler.NewHandler(billingSvc),
		Metrics:     promHandler.New(registry).Handler(),
	}, eventTracker, appMetrics, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
