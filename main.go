package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/peladaclub/rachao/internal/archive"
	"github.com/peladaclub/rachao/internal/config"
	"github.com/peladaclub/rachao/internal/database"
	server "github.com/peladaclub/rachao/internal/http"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/notifier/slack"
	"github.com/peladaclub/rachao/internal/persistence"
	"github.com/peladaclub/rachao/internal/progression"
	"github.com/peladaclub/rachao/internal/roster"
	"github.com/peladaclub/rachao/internal/session"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	rosterStore := roster.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	arc, err := archive.New(cfg.ProjectID, metricsSvc)
	if err != nil {
		log.Fatalf("Failed to initialize archive publisher: %s", err)
	}
	defer arc.Close()

	engine := session.New(
		cfg.SessionKey,
		rosterStore,
		persistence.New(db),
		arc,
		notifier,
		metricsSvc,
		progression.New(rosterStore),
		session.WithDryRun(cfg.DryRun),
	)
	resumed, err := engine.Resume()
	if err != nil {
		log.Error("Failed to resume session snapshot", "error", err)
	} else if resumed {
		log.Info("Resumed session from snapshot", "key", cfg.SessionKey, "phase", engine.Phase())
	}

	s := server.NewServer(
		engine,
		rosterStore,
		metricsSvc,
		metrics.New(db),
		metricsHandler,
		cfg,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		engine.Clock().Stop()

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
