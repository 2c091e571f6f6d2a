// Command ledgerd serves the asset ledger over HTTP. Storage, blob driver
// and listen address come from ASSETLEDGER_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetledger/internal/adapters/registryapi"
	"assetledger/internal/blob"
	"assetledger/internal/core"
	"assetledger/pkg/domain"
)

const (
	envListen = "ASSETLEDGER_LISTEN"
	envAdmin  = "ASSETLEDGER_ADMIN_ACCOUNT"

	defaultListen   = ":8080"
	shutdownTimeout = 10 * time.Second
)

type config struct {
	Listen string
	Admin  domain.AccountID
}

func loadConfig() (config, error) {
	cfg := config{Listen: os.Getenv(envListen)}
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	raw := os.Getenv(envAdmin)
	if raw == "" {
		return config{}, fmt.Errorf("%s required (64 hex characters)", envAdmin)
	}
	admin, err := domain.ParseAccountID(raw)
	if err != nil {
		return config{}, fmt.Errorf("%s: %w", envAdmin, err)
	}
	if admin.IsZero() {
		return config{}, fmt.Errorf("%s must not be the zero account", envAdmin)
	}
	cfg.Admin = admin
	return cfg, nil
}

// slogAdapter bridges *slog.Logger onto the service logger interface.
type slogAdapter struct {
	inner *slog.Logger
}

func (l slogAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l slogAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l slogAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l slogAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func newMux(handler *registryapi.Handler, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := core.OpenPersistentStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	blobs, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	events := core.NewEventRecorder(0)
	svc := core.NewService(store, cfg.Admin,
		core.WithEventSink(events),
		core.WithMetricsRecorder(metrics),
		core.WithLogger(slogAdapter{inner: logger}),
	)
	handler := &registryapi.Handler{Service: svc, Blobs: blobs, Events: events}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newMux(handler, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledgerd listening", "addr", cfg.Listen, "blob_driver", string(blobs.Driver()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("ledgerd failed", "error", err)
		os.Exit(1)
	}
}
