// Command opsplane runs the operations control plane for the agent fleet:
// the task board, cost ledger, tier manager, policy monitor and the
// read-only connector sync view.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/OpsPlane/internal/adapter/connectorcache"
	ophttp "github.com/Strob0t/OpsPlane/internal/adapter/http"
	opnats "github.com/Strob0t/OpsPlane/internal/adapter/nats"
	"github.com/Strob0t/OpsPlane/internal/adapter/otel"
	"github.com/Strob0t/OpsPlane/internal/adapter/postgres"
	"github.com/Strob0t/OpsPlane/internal/adapter/ristretto"
	"github.com/Strob0t/OpsPlane/internal/adapter/ws"
	"github.com/Strob0t/OpsPlane/internal/config"
	"github.com/Strob0t/OpsPlane/internal/logger"
	"github.com/Strob0t/OpsPlane/internal/middleware"
	"github.com/Strob0t/OpsPlane/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"default_tier", cfg.Tier.Default,
	)

	ctx := context.Background()

	// --- Observability ---
	shutdownOtel, err := otel.Init(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := opnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	cache, err := ristretto.New(cfg.Cache.MaxBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	syncRegistry := connectorcache.New(postgres.NewSyncRegistry(store), cache, cfg.Cache.SyncStatusTTL)

	tierSvc, err := service.NewTierService(cfg.Tier.Default)
	if err != nil {
		return fmt.Errorf("tier: %w", err)
	}
	boardSvc := service.NewTaskBoardService(store, queue, hub, metrics)
	costSvc := service.NewCostService(store, tierSvc, metrics)
	monitorSvc := service.NewPolicyMonitorService(boardSvc, syncRegistry, costSvc, queue, hub, metrics, cfg.Monitor)

	// --- HTTP ---
	handlers := &ophttp.Handlers{
		Board:     boardSvc,
		Costs:     costSvc,
		Tiers:     tierSvc,
		Monitor:   monitorSvc,
		Sync:      syncRegistry,
		Hub:       hub,
		Queue:     queue,
		StartedAt: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(ophttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(ophttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	ophttp.MountRoutes(r, handlers, cfg.Monitor.CronSecret)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
