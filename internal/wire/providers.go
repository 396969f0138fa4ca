package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/code-review-api/internal/app"
	"github.com/sevigo/code-review-api/internal/auth"
	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/db"
	"github.com/sevigo/code-review-api/internal/github"
	"github.com/sevigo/code-review-api/internal/inference"
	"github.com/sevigo/code-review-api/internal/logger"
	"github.com/sevigo/code-review-api/internal/review"
	"github.com/sevigo/code-review-api/internal/server"
	"github.com/sevigo/code-review-api/internal/storage"
)

// LoggingSet builds the application logger from the configuration.
var LoggingSet = wire.NewSet(
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
)

// ReviewSet builds the pull request review pipeline.
var ReviewSet = wire.NewSet(
	review.NewPromptManager,
	github.NewServiceClient,
	provideInferenceClient,
	provideModelProvider,
	provideReviewPolicy,
	provideFetcher,
	provideReviewer,
	provideOrchestrator,
	wire.Bind(new(core.FileFetcher), new(*review.Fetcher)),
	wire.Bind(new(core.FileReviewer), new(*review.Reviewer)),
	wire.Bind(new(core.PullRequestReviewer), new(*review.Orchestrator)),
)

var AppSet = wire.NewSet(
	LoggingSet,
	ReviewSet,
	app.NewApp,
	server.NewServer,
	server.NewRouter,
	config.LoadConfig,
	provideStore,
	provideClientFactory,
	provideAuthService,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

// provideLogWriter returns nil for file output so the logger opens the
// configured file itself.
func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		return nil
	default:
		return os.Stdout
	}
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	return logger.NewLogger(loggerConfig, writer)
}

func provideStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory store, users and review history are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}

	conn, cleanup, err := db.NewDatabase(&cfg.Database, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to connect to database: %w", err)
	}
	return storage.NewStore(conn.DB), cleanup, nil
}

func provideInferenceClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (inference.Client, error) {
	switch cfg.AI.LLMProvider {
	case "ollama":
		return inference.NewOllamaClient(inference.OllamaConfig{
			Host:        cfg.AI.OllamaHost,
			Model:       cfg.AI.GeneratorModel,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     cfg.AI.Timeout,
		}, inference.NewHTTPClient(), logger), nil
	case "goframe":
		model, err := ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithHTTPClient(inference.NewHTTPClient()),
			ollama.WithModel(cfg.AI.GeneratorModel),
			ollama.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama model: %w", err)
		}
		return inference.NewModelClient(model, cfg.AI.Timeout), nil
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set in environment for gemini provider")
		}
		model, err := gemini.New(ctx,
			gemini.WithModel(cfg.AI.GeneratorModel),
			gemini.WithAPIKey(cfg.AI.GeminiAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini model: %w", err)
		}
		return inference.NewModelClient(model, cfg.AI.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.AI.LLMProvider)
	}
}

func provideModelProvider(cfg *config.Config) review.ModelProvider {
	if cfg.AI.LLMProvider == "gemini" {
		return review.GeminiProvider
	}
	return review.DefaultProvider
}

func provideReviewPolicy(cfg *config.Config, logger *slog.Logger) (*core.ReviewPolicy, error) {
	policy, err := config.LoadReviewPolicy(cfg.Review.PolicyFile, cfg.Review.MaxLines)
	if err != nil {
		if errors.Is(err, config.ErrPolicyNotFound) {
			logger.Warn("review policy file not found, using defaults", "path", cfg.Review.PolicyFile)
			return policy, nil
		}
		return nil, err
	}
	return policy, nil
}

func provideClientFactory(cfg *config.Config, logger *slog.Logger) github.ClientFactory {
	return github.NewClientFactory(cfg.GitHub.APIURL, logger)
}

func provideAuthService(cfg *config.Config, store storage.Store, logger *slog.Logger) *auth.Service {
	return auth.NewService(
		store,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewTokenIssuer(cfg.Auth.JWTSecret),
		cfg.Auth.TokenExpiry,
		logger,
	)
}

func provideFetcher(client github.Client, policy *core.ReviewPolicy, logger *slog.Logger) *review.Fetcher {
	return review.NewFetcher(client, policy.MaxLines, logger)
}

func provideReviewer(
	fetcher core.FileFetcher,
	llm inference.Client,
	prompts *review.PromptManager,
	provider review.ModelProvider,
	policy *core.ReviewPolicy,
	logger *slog.Logger,
) *review.Reviewer {
	return review.NewReviewer(fetcher, llm, prompts, provider, policy, logger)
}

func provideOrchestrator(cfg *config.Config, client github.Client, reviewer core.FileReviewer, logger *slog.Logger) *review.Orchestrator {
	return review.NewOrchestrator(client, reviewer, cfg.Review.Workers, logger)
}
