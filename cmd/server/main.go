package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/financaspro/financas/internal/api"
	"github.com/financaspro/financas/internal/config"
	"github.com/financaspro/financas/internal/finance"
	"github.com/financaspro/financas/internal/logging"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/tools"
	"github.com/financaspro/financas/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to run the server on")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host to bind the server to")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path of the SQLite database file")
	flag.Parse()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := tracing.InitTracing(ctx, cfg.OTELServiceName, cfg.OTELEndpoint, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown error", "err", err)
		}
	}()

	st := store.Open(store.Options{Path: cfg.DBPath, Logger: logger})
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "err", err)
		}
	}()

	readyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = st.Ready(readyCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}

	svc := finance.NewService(st, finance.WithLogger(logger))
	if err := svc.EnsureHistory(ctx, svc.Today()); err != nil {
		logger.Warn("failed to seed portfolio history", "err", err)
	}

	registry := tools.NewRegistry(cfg, svc, tracer)
	handler := middleware.Compress(5)(api.NewRouter(api.Options{
		Store:    st,
		Service:  svc,
		Registry: registry,
		Logger:   logger,
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "db", cfg.DBPath, "tools", len(registry.Tools()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
