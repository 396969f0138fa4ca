// Package app initializes and orchestrates the main components of the
// review API. It ties the configuration, the HTTP server and its
// collaborators together.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/server"
)

// App holds the main application components.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	server *server.Server
	logger *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, logger *slog.Logger) *App {
	logger.Info("code review API initialized",
		"llm_provider", cfg.AI.LLMProvider,
		"generator_model", cfg.AI.GeneratorModel,
		"ollama_host", cfg.AI.OllamaHost,
		"review_workers", cfg.Review.Workers,
		"db_driver", cfg.Database.Driver)

	return &App{
		ctx:    ctx,
		cfg:    cfg,
		server: srv,
		logger: logger,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (a *App) Start() error {
	a.logger.Info("starting code review API",
		"server_port", a.cfg.Server.Port,
		"allowed_origin", a.cfg.Server.AllowedOrigin)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the HTTP server, letting in-flight reviews finish.
// Database connections are released by the injector's cleanup function.
func (a *App) Stop() error {
	a.logger.Info("shutting down code review API")

	if err := a.server.Stop(); err != nil {
		a.logger.Error("code review API stopped with errors", "error", err)
		return err
	}

	a.logger.Info("code review API stopped successfully")
	return nil
}
