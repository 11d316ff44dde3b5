package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/api"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/auth"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/config"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/events/hub"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/storage"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/storage/postgres"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/transfer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store interfaces.LedgerStore
	var directory interfaces.Directory
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to reach database", "err", err)
			os.Exit(1)
		}

		pg := postgres.NewStore(db)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "err", err)
			os.Exit(1)
		}
		store, directory = pg, pg
	} else {
		logger.Warn("no database configured, using in-memory store")
		mem := memory.NewStore()
		store, directory = mem, mem
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	} else {
		logger.Warn("no kafka brokers configured, using in-process feed")
		publisher = hub.NewHub()
	}
	published := storage.NewPublishingStore(store, publisher, cfg.KafkaTopic, logger)

	verifier := auth.NewVerifier([]byte(cfg.JWTSecret))
	transfers := transfer.NewService(published, verifier, directory, cfg.CallTimeout, logger)

	server := api.NewServer(transfers, published, verifier, logger)
	if cfg.MetricsEnabled {
		server.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
