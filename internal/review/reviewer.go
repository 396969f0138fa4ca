package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/inference"
)

// Reviewer reviews a single changed file: fetch, then prompt the model.
type Reviewer struct {
	fetcher      core.FileFetcher
	llm          inference.Client
	prompts      *PromptManager
	provider     ModelProvider
	instructions []string
	logger       *slog.Logger
}

// NewReviewer creates a Reviewer. Instructions are appended to every prompt.
func NewReviewer(fetcher core.FileFetcher, llm inference.Client, prompts *PromptManager, provider ModelProvider, policy *core.ReviewPolicy, logger *slog.Logger) *Reviewer {
	if policy == nil {
		policy = core.DefaultReviewPolicy()
	}
	return &Reviewer{
		fetcher:      fetcher,
		llm:          llm,
		prompts:      prompts,
		provider:     provider,
		instructions: policy.Instructions,
		logger:       logger,
	}
}

// ReviewFile maps one changed file to exactly one outcome. Files that are too
// large or cannot be fetched never reach the model.
func (r *Reviewer) ReviewFile(ctx context.Context, repo string, file core.ChangedFile) (outcome core.ReviewOutcome) {
	fetchDone := false
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic while reviewing file", "repo", repo, "file", file.Filename, "fetched", fetchDone, "panic", p)
			reason := fmt.Sprintf("internal error: %v", p)
			if !fetchDone {
				outcome = core.FetchFailedOutcome(file.Filename, reason)
				return
			}
			outcome = core.InferenceFailed(file.Filename, reason)
		}
	}()

	fetched := r.fetcher.Fetch(ctx, repo, file.Ref, file.Filename)
	fetchDone = true
	switch fetched.Status {
	case core.FetchStatusTooLarge:
		return core.SkippedTooLarge(file.Filename)
	case core.FetchStatusFailed:
		return core.FetchFailedOutcome(file.Filename, fetched.Reason)
	}

	prompt, err := r.prompts.Render(FileReviewPrompt, r.provider, FileReviewData{
		Filename:     file.Filename,
		Content:      fetched.Content.Text,
		Instructions: r.instructions,
	})
	if err != nil {
		return core.InferenceFailed(file.Filename, fmt.Sprintf("render prompt: %v", err))
	}

	completion, err := r.llm.Generate(ctx, prompt).Unpack()
	if err != nil {
		r.logger.Warn("inference failed", "repo", repo, "file", file.Filename, "error", err)
		return core.InferenceFailed(file.Filename, err.Error())
	}

	if completion.Source == inference.SourceRawFallback {
		r.logger.Warn("inference reply had no known text field, using raw payload", "repo", repo, "file", file.Filename)
	}
	return core.Reviewed(file.Filename, completion.Text)
}
