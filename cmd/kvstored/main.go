package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackpad/kvstore/internal/config"
	"github.com/stackpad/kvstore/internal/events"
	"github.com/stackpad/kvstore/internal/logger"
	"github.com/stackpad/kvstore/internal/server"
	"github.com/stackpad/kvstore/internal/store"
)

const version = "0.2.0"

func main() {
	var configPath string
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "kvstored",
		Short:         "HTTP key-value store with pluggable storage backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the key-value store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, debug)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Path to configuration file")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logs")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func runServe(configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
	slog.Info("Config loaded", "storage_type", cfg.Storage.Type, "addr", cfg.Server.Addr)

	backend, err := store.New(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("Failed to close backend", "err", err)
		}
	}()

	var emitter server.EventEmitter
	if cfg.NATS.URL != "" {
		natsEmitter, err := events.NewEmitter(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return err
		}
		defer natsEmitter.Close()
		emitter = natsEmitter
		slog.Info("Event emitter connected", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
	}

	mux := http.NewServeMux()
	server.New(version, backend, emitter).Register(mux)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("Server is running... Press Ctrl+C to stop", "addr", cfg.Server.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
