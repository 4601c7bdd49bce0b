// FraudLens - Fraud scoring backend for the transaction dashboard.
// Copyright (c) 2025 fraudlens.dev
// Licensed under the Apache License 2.0

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

	"github.com/fraudlens/fraudlens/internal/alerts"
	"github.com/fraudlens/fraudlens/internal/api"
	"github.com/fraudlens/fraudlens/internal/bus"
	"github.com/fraudlens/fraudlens/internal/cache"
	"github.com/fraudlens/fraudlens/internal/demo"
	"github.com/fraudlens/fraudlens/internal/domain"
	"github.com/fraudlens/fraudlens/internal/ingest"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/fraudlens/fraudlens/internal/scoring"
	"github.com/fraudlens/fraudlens/internal/store"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("FRAUDLENS_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting fraudlens",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("FRAUDLENS_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"model_url", cfg.Scorer.ModelURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Store
	storeImpl, err := store.New(cfg.Store)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer storeImpl.Close()
	slog.Info("store initialized", "driver", cfg.Store.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize scorers: remote model preferred, heuristic fallback
	remote := model.NewClient(cfg.Scorer)
	fallback := scoring.NewHeuristic()
	slog.Info("scorers initialized", "model_url", cfg.Scorer.ModelURL)

	// Initialize Ingestion Service
	svc := ingest.NewService(storeImpl, remote, fallback, busImpl, cacheImpl)

	// Initialize Alerts Watcher
	watcher, err := alerts.NewWatcher(cfg.Alerts)
	if err != nil {
		slog.Error("failed to initialize alerts watcher", "error", err)
		os.Exit(1)
	}
	if err := watcher.Start(ctx, busImpl); err != nil {
		slog.Error("failed to start alerts watcher", "error", err)
		os.Exit(1)
	}
	slog.Info("alerts watcher started", "expression", cfg.Alerts.Expression)

	// Demo generator backs the dashboard feeds while the store is empty
	gen := demo.NewGenerator(uint64(time.Now().UnixNano()))

	// Initialize Server
	srv := api.NewServer(cfg.Server, storeImpl, cacheImpl, svc, gen, watcher, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("fraudlens is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop the watcher first so no alerts arrive during drain
	if err := watcher.Stop(); err != nil {
		slog.Error("failed to stop alerts watcher", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("fraudlens shutdown complete")
}

// applyEnvOverrides lets single settings be changed without a Pro/Community
// tier switch.
func applyEnvOverrides(cfg *domain.Config) {
	if v := os.Getenv("FRAUDLENS_MODEL_URL"); v != "" {
		cfg.Scorer.ModelURL = v
	}
	if v := os.Getenv("FRAUDLENS_STORE_PATH"); v != "" {
		cfg.Store.FilePath = v
	}
	if v := os.Getenv("FRAUDLENS_ALERT_EXPRESSION"); v != "" {
		cfg.Alerts.Expression = v
	}
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║              🔍 FRAUDLENS                 ║")
	fmt.Println("  ║       Fraud Scoring Dashboard API         ║")
	fmt.Println("  ║      Every transaction, scored.           ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /predict             - Score and store a transaction")
	fmt.Println("    GET  /recent-transactions - Paginated transaction listing")
	fmt.Println("    GET  /visualization-data  - Full collection for charts")
	fmt.Println("    GET  /alerts              - Recent high-risk alerts")
	fmt.Println("    GET  /health              - Health check")
	fmt.Println()
}
