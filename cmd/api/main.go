// Package main is the entry point for the car reservation API server.
// Its sole responsibility is wiring dependencies together and starting the
// HTTP server and the outbox relay. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/car-reservation/internal/config"
	"github.com/pkordes/car-reservation/internal/events"
	"github.com/pkordes/car-reservation/internal/handler"
	"github.com/pkordes/car-reservation/internal/metrics"
	"github.com/pkordes/car-reservation/internal/middleware"
	"github.com/pkordes/car-reservation/internal/repo"
	"github.com/pkordes/car-reservation/internal/service"
	"github.com/pkordes/car-reservation/migrations"
	"github.com/pkordes/car-reservation/spec"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			return err
		}
	}

	// --- Metrics ----------------------------------------------------------
	var (
		recorder     service.Recorder
		relayRec     events.Recorder
		metricsRoute http.Handler
		m            *metrics.Metrics
	)
	if cfg.MetricsEnabled {
		m = metrics.New()
		recorder, relayRec, metricsRoute = m, m, m.Handler()
	}

	// --- Services ---------------------------------------------------------
	cars := repo.NewCarRepo(pool)
	opts := service.Options{SaveAttempts: cfg.SaveAttempts, Recorder: recorder}
	srv := handler.NewServer(
		service.NewCarService(cars, opts),
		service.NewReservationService(cars, repo.NewReservationRepo(pool), opts),
		service.NewProfileService(repo.NewProfileRepo(pool)),
		logger,
	)

	// --- Event relay ------------------------------------------------------
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	relay := events.NewRelay(repo.NewOutboxRepo(pool), publisher, logger, events.RelayOptions{
		Interval: cfg.OutboxPollInterval,
		Recorder: relayRec,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → MaxBodySize.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	if m != nil {
		r.Use(middleware.NewMetricsHandler(m))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	auth := middleware.NewAuthenticator(cfg.JWTSecret)
	if !auth.Enabled() {
		slog.Warn("JWT_SECRET not set; API authorization is disabled")
	}
	r.Mount("/", handler.NewRouter(srv, handler.RouterOptions{
		Auth:    auth,
		Metrics: metricsRoute,
		OpenAPI: spec.OpenAPI,
	}))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox relay: %w", err)
		}
		return nil
	})
	// Graceful shutdown: on signal (or a failed sibling), give in-flight
	// requests up to 15 seconds to complete before forcefully closing.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	results, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

// newPublisher picks RabbitMQ when AMQP_URL is set and the log otherwise.
func newPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		slog.Info("AMQP_URL not set; domain events will be logged")
		return events.NewLogPublisher(logger), nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	slog.Info("publishing domain events to RabbitMQ", "exchange", cfg.AMQPExchange)
	return p, nil
}
