// Package main is the entry point for the catalog API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"catalog/src/app/server"
	"catalog/src/infra/config"
	"catalog/src/infra/db"
	"catalog/src/infra/logger"
	"catalog/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"env", cfg.Server.Environment,
		"log_level", cfg.Log.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize database connection; an unreachable database stops startup
	database, err := db.New(ctx, cfg.Database, registry, log)
	if err != nil {
		log.Error("database connection failed", "error", err)
		return err
	}
	defer func() {
		_ = database.Shutdown(context.Background())
	}()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, cfg.Database.DSN(), log); err != nil {
			return err
		}
	}

	// Initialize repositories
	srv := server.New(cfg, log, server.Dependencies{
		Products: repo.NewProductRepository(database, logger.WithComponent(log, "repo")),
		Database: repo.NewStatusRepository(database),
		Gatherer: registry,
	})

	// Run blocks until shutdown signal is received
	err = srv.Run(ctx)
	if err == nil {
		log.Info("received shutdown signal")
	}
	return err
}
