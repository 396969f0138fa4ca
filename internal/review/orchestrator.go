package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/github"
)

// DefaultWorkers is the number of files reviewed concurrently per request.
const DefaultWorkers = 4

// ErrListing is returned when the pull request or its file list cannot be
// resolved. No file is reviewed in that case.
var ErrListing = errors.New("failed to list pull request files")

// Orchestrator fans the changed files of a pull request out to a bounded
// pool of workers and collects one outcome per file.
type Orchestrator struct {
	client   github.Client
	reviewer core.FileReviewer
	workers  int
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
// If workers is 0 or negative, it defaults to DefaultWorkers.
func NewOrchestrator(client github.Client, reviewer core.FileReviewer, workers int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{
		client:   client,
		reviewer: reviewer,
		workers:  workers,
		logger:   logger,
	}
}

// fileResult is what a worker reports back for a finished file.
type fileResult struct {
	filename string
	outcome  core.ReviewOutcome
}

// ReviewPullRequest lists the changed files of the pull request and reviews
// each of them. Only listing failures are returned as errors.
func (o *Orchestrator) ReviewPullRequest(ctx context.Context, req core.ReviewRequest) (*core.PullRequestReview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	owner, name := req.Split()

	o.logger.Info("listing pull request files", "repo", req.Repo, "pr", req.PRNumber)
	pr, err := o.client.GetPullRequest(ctx, owner, name, req.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}
	headSHA := pr.GetHead().GetSHA()
	if headSHA == "" {
		return nil, fmt.Errorf("%w: PR %d has no valid head SHA", ErrListing, req.PRNumber)
	}

	names, err := o.client.GetChangedFiles(ctx, owner, name, req.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}
	files := github.ChangedFiles(names, headSHA)

	start := time.Now()
	outcomes := o.dispatch(ctx, req.Repo, files)

	review := &core.PullRequestReview{
		Repo:     req.Repo,
		PRNumber: req.PRNumber,
		HeadSHA:  headSHA,
		Outcomes: outcomes,
	}
	o.logger.Info("pull request review aggregated",
		"repo", req.Repo,
		"pr", req.PRNumber,
		"files", len(files),
		"reviewed", review.Counts()[core.OutcomeReviewed],
		"duration", time.Since(start).Round(time.Millisecond))
	return review, nil
}

// dispatch runs the reviewer over files and blocks until every file has
// an outcome. The calling goroutine is the only writer of the result map.
func (o *Orchestrator) dispatch(ctx context.Context, repo string, files []core.ChangedFile) map[string]core.ReviewOutcome {
	outcomes := make(map[string]core.ReviewOutcome, len(files))
	if len(files) == 0 {
		return outcomes
	}

	// Dispatched files run to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	jobQueue := make(chan core.ChangedFile, len(files))
	for _, f := range files {
		jobQueue <- f
	}
	close(jobQueue)

	results := make(chan fileResult)
	var g errgroup.Group
	for i := range min(o.workers, len(files)) {
		g.Go(func() error {
			o.startWorker(ctx, i, repo, jobQueue, results)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		outcomes[res.filename] = res.outcome
	}
	return outcomes
}

// startWorker reviews files from the queue until it is drained.
func (o *Orchestrator) startWorker(ctx context.Context, workerID int, repo string, jobQueue <-chan core.ChangedFile, results chan<- fileResult) {
	for file := range jobQueue {
		o.logger.Debug("worker reviewing file", "worker_id", workerID, "repo", repo, "file", file.Filename)

		outcome := o.reviewer.ReviewFile(ctx, repo, file)
		if outcome.Kind != core.OutcomeReviewed {
			o.logger.Info("file not reviewed",
				"repo", repo,
				"file", file.Filename,
				"kind", outcome.Kind,
				"reason", outcome.Reason)
		}
		results <- fileResult{filename: file.Filename, outcome: outcome}
	}
}
