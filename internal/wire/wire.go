//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/code-review-api/internal/app"
	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/review"
	"github.com/sevigo/code-review-api/internal/storage"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}

func InitializeReviewer(ctx context.Context, cfg *config.Config) (*review.Orchestrator, error) {
	wire.Build(LoggingSet, ReviewSet)
	return &review.Orchestrator{}, nil
}

func InitializeStore(cfg *config.Config) (storage.Store, func(), error) {
	wire.Build(LoggingSet, provideStore)
	return nil, nil, nil
}
