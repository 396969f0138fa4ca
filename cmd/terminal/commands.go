package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/storage"
	"github.com/sevigo/code-review-api/internal/wire"
)

func initializePipelineCmd(cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		reviewer, err := wire.InitializeReviewer(ctx, cfg)
		if err != nil {
			return pipelineReadyMsg{err: fmt.Errorf("failed to initialize reviewer: %w", err)}
		}

		store, cleanup, err := wire.InitializeStore(cfg)
		if err != nil {
			return pipelineReadyMsg{err: fmt.Errorf("failed to open store: %w", err)}
		}

		return pipelineReadyMsg{reviewer: reviewer, store: store, cleanup: cleanup}
	}
}

func reviewPullRequestCmd(reviewer core.PullRequestReviewer, store storage.Store, req core.ReviewRequest) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		result, err := reviewer.ReviewPullRequest(ctx, req)
		if err != nil {
			return reviewCompleteMsg{request: req, err: err}
		}

		saveErr := store.SaveReview(ctx, &core.Review{
			RepoFullName: result.Repo,
			PRNumber:     result.PRNumber,
			HeadSHA:      result.HeadSHA,
			Reviews:      result.Messages(),
		})
		return reviewCompleteMsg{request: req, result: result, saveErr: saveErr}
	}
}

func loadHistoryCmd(store storage.Store, req core.ReviewRequest) tea.Cmd {
	return func() tea.Msg {
		review, err := store.GetLatestReviewForPR(context.Background(), req.Repo, req.PRNumber)
		return historyLoadedMsg{request: req, review: review, err: err}
	}
}
