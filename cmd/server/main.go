package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docnorm/internal/api"
	"github.com/dgallion1/docnorm/internal/config"
	"github.com/dgallion1/docnorm/internal/docstore"
	"github.com/dgallion1/docnorm/internal/normalize"
	"github.com/dgallion1/docnorm/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients and engine.
	store := docstore.NewClient(cfg.DocstoreURL, cfg.DocstoreAPIKey)
	engine := normalize.New(log)

	// Initialize migration pipeline.
	orch := pipeline.NewOrchestrator(cfg, engine, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(engine, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so no handler can submit into a closing queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		store.Close()
	}()

	log.Info("starting docnorm", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
