package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fieldstack/messaging-registration/internal/platform/config"
	"github.com/fieldstack/messaging-registration/internal/platform/database"
	"github.com/fieldstack/messaging-registration/internal/platform/logger"
	"github.com/fieldstack/messaging-registration/internal/platform/messagebroker"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/notifier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/app"
	authmw "github.com/fieldstack/messaging-registration/internal/registration_service/middleware"
	"github.com/fieldstack/messaging-registration/internal/registration_service/repository/postgres"
	transporthttp "github.com/fieldstack/messaging-registration/internal/registration_service/transport/http"
)

const (
	serviceName     = "registration-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	log.Info("Starting service...")

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		log.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("Database connection pool initialized")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, log, serviceName)
	if err != nil {
		log.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	log.Info("NATS connection initialized")

	// Repositories and adapters.
	settingsRepo := postgres.NewPgRegistrationSettingsRepository(dbPool, log)
	companyDirectory := postgres.NewPgCompanyDirectory(dbPool, log)
	carrierClient := carrier.NewHTTPClient(log, cfg.CarrierAPIBaseURL, cfg.CarrierAPIKey, nil)
	verificationNotifier := notifier.NewNATSNotifier(natsClient, log)

	// Workflow components.
	poller := app.NewApprovalPoller(cfg.PollInterval(), log)
	brandRegistrar := app.NewBrandRegistrar(carrierClient, poller, cfg.ApprovalTimeout(), log)
	campaignRegistrar := app.NewCampaignRegistrar(carrierClient, poller, cfg.ApprovalTimeout(), log)
	tollFreeRegistrar := app.NewTollFreeRegistrar(carrierClient, log)
	orchestrator := app.NewOrchestrator(companyDirectory, settingsRepo, brandRegistrar, campaignRegistrar, tollFreeRegistrar, verificationNotifier, log)

	// Registration jobs run on the consumer, off the HTTP request path:
	// the approval waits can block for up to two polling windows.
	consumer := app.NewNATSConsumer(orchestrator, natsClient, log)
	sub, err := natsClient.QueueSubscribe(app.NATSRegistrationJobSubject, app.NATSRegistrationQueueGroup, func(msg *nats.Msg) {
		consumer.HandleRegistrationJob(mainCtx, msg.Subject, msg.Data)
	})
	if err != nil {
		log.Error("Failed to subscribe to registration jobs", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sub.Unsubscribe() }()
	log.Info("Subscribed to registration jobs", "subject", app.NATSRegistrationJobSubject)

	// HTTP API.
	router := chi.NewRouter()
	router.Use(chi_middleware.RequestID)
	router.Use(chi_middleware.RealIP)
	router.Use(chi_middleware.Recoverer)
	router.Get("/healthz", transporthttp.HealthzHandler)

	registrationHandler := transporthttp.NewRegistrationHandler(natsClient, settingsRepo, log)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret, log))
		registrationHandler.RegisterRoutes(r)
	})

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		log.Info("HTTP API listening", "port", cfg.HTTPPort)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("Metrics endpoint listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutdown signal received, stopping servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("API server shutdown failed", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Service stopped")
}
