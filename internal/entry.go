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

	"github.com/hunchagency/dotupdate/internal/airtable"
	"github.com/hunchagency/dotupdate/internal/api"
	"github.com/hunchagency/dotupdate/internal/auditlog"
	"github.com/hunchagency/dotupdate/internal/extract"
	"github.com/hunchagency/dotupdate/internal/llm"
	"github.com/hunchagency/dotupdate/internal/mcpserver"
	"github.com/hunchagency/dotupdate/internal/prompt"
	"github.com/hunchagency/dotupdate/internal/sse"
	"github.com/hunchagency/dotupdate/internal/updateservice"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// stdio transport, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("airtable_base", cfg.Airtable.BaseID),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Local update history (optional).
	var audit *auditlog.Store
	if cfg.Audit.Path != "" {
		var err error
		audit, err = auditlog.Open(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("init audit log: %w", err)
		}
		defer audit.Close()
	}

	// Classifier prompt.
	prompts, err := prompt.NewLoader(cfg.Prompt.Path, logger)
	if err != nil {
		return fmt.Errorf("init prompt loader: %w", err)
	}

	// Classifier provider.
	provider, err := llm.NewProvider(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("init llm provider: %w", err)
	}

	// Record store.
	store := airtable.NewClient(airtable.Config{
		APIKey:        cfg.Airtable.APIKey,
		BaseURL:       cfg.Airtable.BaseURL,
		BaseID:        cfg.Airtable.BaseID,
		ProjectsTable: cfg.Airtable.ProjectsTable,
		UpdatesTable:  cfg.Airtable.UpdatesTable,
		Timeout:       cfg.Airtable.Timeout,
	})

	extractor := extract.NewExtractor(provider, prompts, cfg.Pipeline.MaxFacts, logger)

	// MCP stdio mode replaces the HTTP server entirely.
	if app.mcpMode {
		svc := updateservice.NewService(extractor, store, audit, nil, logger)
		logger.Info("Starting MCP stdio server")
		return mcpserver.New(svc, audit).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker()

	svc := updateservice.NewService(extractor, store, audit, broker, logger)
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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Hot reload of the prompt file.
	if cfg.Prompt.Watch && cfg.Prompt.Path != "" {
		g.Go(func() error {
			if err := prompts.Watch(gCtx); err != nil {
				logger.Warn("prompt watch stopped", slog.String("error", err.Error()))
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
		broker.Close()

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
