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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/content"
	"github.com/starford/dagaz/internal/httpapi"
	"github.com/starford/dagaz/internal/i18n"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/pagegen"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/search"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/watcher"
)

// buildFacade constructs the content stack shared by every frontend.
func buildFacade(cfg *Config, logger *slog.Logger) (*content.Facade, *i18n.Bundle, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Content.Dir, indexstore.PostsDir), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create posts dir: %w", err)
	}

	files, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	bundle, err := i18n.NewBundle(cfg.Site.DefaultLanguage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init i18n: %w", err)
	}

	renderer := render.NewGoldmark()

	store, err := indexstore.New(files, cfg.Content.CacheDir, cfg.Site.BaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	searcher := search.NewBuilder(cfg.Content.CacheDir, renderer, logger)

	pages, err := pagegen.New(files, cfg.Content.CacheDir, cfg.Content.SiteDir, cfg.Site.BaseURL, renderer, bundle, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init page generator: %w", err)
	}

	return content.New(store, searcher, pages, renderer, files, logger), bundle, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("cache_dir", cfg.Content.CacheDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	facade, bundle, err := buildFacade(cfg, logger)
	if err != nil {
		return err
	}

	// Prime the index; a missing artifact triggers the first-time rebuild.
	if _, err := facade.Index(); err != nil {
		logger.Warn("initial index load failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := httpapi.NewRouter(facade, bundle, cfg.Site.PostsPerPage,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Posts-directory watcher: debounced full rebuilds + change events.
	if cfg.Watch.Enabled {
		postsRoot := filepath.Join(cfg.Content.Dir, indexstore.PostsDir)
		g.Go(func() error {
			if err := watcher.Watch(gCtx, facade, postsRoot, cfg.Watch.Debounce(), logger, func(kind, path string) {
				broker.PublishChange(kind, path)
			}); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Rebuild runs a one-shot index rebuild and exits. It backs the CLI
// rebuild command the admin tooling calls after bulk file edits.
func Rebuild(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	facade, _, err := buildFacade(cfg, logger)
	if err != nil {
		return err
	}
	return facade.RebuildAll()
}

// ServeMCP runs the MCP stdio server over the content facade.
func ServeMCP(cfg *Config) error {
	// MCP uses stdout for the protocol; logs must go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	facade, _, err := buildFacade(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := facade.Index(); err != nil {
		logger.Warn("initial index load failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(facade).ServeStdio()
}
