// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sp00kydogz/CuadernoCLI/internal/api"
	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/index"
	"github.com/sp00kydogz/CuadernoCLI/internal/mcpserver"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
	"github.com/sp00kydogz/CuadernoCLI/internal/sse"
	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
	"github.com/sp00kydogz/CuadernoCLI/internal/store"
)

const indexEventThrottle = 2 * time.Second

// OpenService wires storage and the index store for the configured notebook.
// The root must already exist.
func OpenService(cfg *Config, logger *slog.Logger, extra ...noteservice.Option) (*noteservice.Service, error) {
	fs, err := storage.NewFS(cfg.Notebook.Root, storage.WithWorkers(cfg.Notebook.ScanWorkers))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	opts := []noteservice.Option{
		noteservice.WithLogger(logger),
		noteservice.WithSummary(cfg.Notebook.IncludeSummary),
		noteservice.WithAutoReindex(cfg.Notebook.AutoReindex),
	}
	opts = append(opts, extra...)

	return noteservice.NewService(fs, store.ForPath(cfg.Notebook.ResolvedIndexPath()), opts...), nil
}

// Run starts the HTTP server with the given options. It reindexes once at
// startup and, when enabled, keeps the index current with a file watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notebook_root", cfg.Notebook.Root),
		slog.String("index_path", cfg.Notebook.ResolvedIndexPath()),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(indexEventThrottle)
	defer broker.Close()

	svc, err := OpenService(cfg, logger, noteservice.WithNotifier(broker))
	if err != nil {
		return err
	}

	// Initial reindex. A failure leaves any stored index in place.
	if _, err := svc.Reindex(ctx); err != nil {
		logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.LoadIndex(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			return index.Watch(gCtx, svc.Root(), cfg.Watch.Debounce, logger, func(ctx context.Context) error {
				_, err := svc.Reindex(ctx)
				return err
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{withLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	svc, err := OpenService(app.config, app.logger)
	if err != nil {
		return err
	}
	if _, err := svc.LoadIndex(ctx); errors.Is(err, apperr.ErrNotFound) {
		if _, err := svc.Reindex(ctx); err != nil {
			app.logger.Warn("initial reindex failed", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("MCP server starting", slog.String("notebook_root", svc.Root()))
	return mcpserver.New(svc, app.version).ServeStdio()
}
