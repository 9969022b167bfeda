package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minitex/ipregister/internal/api"
	"github.com/minitex/ipregister/internal/config"
	"github.com/minitex/ipregister/internal/core"
	"github.com/minitex/ipregister/internal/db"
	"github.com/minitex/ipregister/internal/export"
	"github.com/minitex/ipregister/internal/logging"
	"github.com/minitex/ipregister/internal/mail"
	"github.com/minitex/ipregister/internal/metrics"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", cfg.MigrationsDir).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	mailer := mail.NewSMTPMailer(cfg)

	var exporter core.Exporter
	if cfg.ExportRepoDir != "" {
		exporter = export.NewGitExporter(cfg, core.NewRangeService(pool))
		logger.Info().Str("repo", cfg.ExportRepoDir).Str("file", cfg.ExportFile).
			Msg("access-list export enabled")
	}

	srv := api.NewServer(logger, pool, mailer, exporter, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting ipregister API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
