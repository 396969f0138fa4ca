// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/code-review-api/internal/app"
	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/github"
	"github.com/sevigo/code-review-api/internal/review"
	"github.com/sevigo/code-review-api/internal/server"
	"github.com/sevigo/code-review-api/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerConfig := provideLoggerConfig(cfg)
	writer := provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, writer)

	store, cleanup, err := provideStore(cfg, slogLogger)
	if err != nil {
		return nil, nil, err
	}

	client, err := github.NewServiceClient(ctx, cfg, slogLogger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create github client: %w", err)
	}

	policy, err := provideReviewPolicy(cfg, slogLogger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load review policy: %w", err)
	}

	llm, err := provideInferenceClient(ctx, cfg, slogLogger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	promptManager, err := review.NewPromptManager()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	fetcher := provideFetcher(client, policy, slogLogger)
	modelProvider := provideModelProvider(cfg)
	reviewer := provideReviewer(fetcher, llm, promptManager, modelProvider, policy, slogLogger)
	orchestrator := provideOrchestrator(cfg, client, reviewer, slogLogger)

	authService := provideAuthService(cfg, store, slogLogger)
	clientFactory := provideClientFactory(cfg, slogLogger)

	router := server.NewRouter(cfg, authService, orchestrator, store, clientFactory, slogLogger)
	httpServer := server.NewServer(ctx, cfg, router, slogLogger)
	application := app.NewApp(ctx, cfg, httpServer, slogLogger)

	return application, cleanup, nil
}

// InitializeReviewer wires the review pipeline for an already loaded config.
func InitializeReviewer(ctx context.Context, cfg *config.Config) (*review.Orchestrator, error) {
	loggerConfig := provideLoggerConfig(cfg)
	writer := provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, writer)

	client, err := github.NewServiceClient(ctx, cfg, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}
	policy, err := provideReviewPolicy(cfg, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to load review policy: %w", err)
	}
	llm, err := provideInferenceClient(ctx, cfg, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}
	promptManager, err := review.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	fetcher := provideFetcher(client, policy, slogLogger)
	modelProvider := provideModelProvider(cfg)
	reviewer := provideReviewer(fetcher, llm, promptManager, modelProvider, policy, slogLogger)
	return provideOrchestrator(cfg, client, reviewer, slogLogger), nil
}

// InitializeStore opens the configured store.
func InitializeStore(cfg *config.Config) (storage.Store, func(), error) {
	loggerConfig := provideLoggerConfig(cfg)
	writer := provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, writer)

	store, cleanup, err := provideStore(cfg, slogLogger)
	if err != nil {
		return nil, nil, err
	}
	return store, cleanup, nil
}
