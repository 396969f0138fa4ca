package core

import (
	"context"
)

// FileFetcher retrieves the contents of a single file at a given commit and
// classifies it. Implementations never return an error; failures are encoded
// in the returned FetchResult.
type FileFetcher interface {
	Fetch(ctx context.Context, repo, ref, filename string) FetchResult
}

// FileReviewer turns one changed file into exactly one ReviewOutcome.
// Implementations must not panic or block forever on a single bad input.
type FileReviewer interface {
	ReviewFile(ctx context.Context, repo string, file ChangedFile) ReviewOutcome
}

// PullRequestReviewer reviews every changed file of a pull request.
// It returns an error only when the pull request itself cannot be resolved;
// per-file failures are recorded in the returned review.
type PullRequestReviewer interface {
	ReviewPullRequest(ctx context.Context, req ReviewRequest) (*PullRequestReview, error)
}
