package main

import (
	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/storage"
)

// Indicates that the review pipeline and the store are ready.
type pipelineReadyMsg struct {
	reviewer core.PullRequestReviewer
	store    storage.Store
	cleanup  func()
	err      error
}

// Indicates that a pull request review has completed.
type reviewCompleteMsg struct {
	request core.ReviewRequest
	result  *core.PullRequestReview
	saveErr error
	err     error
}

type historyLoadedMsg struct {
	request core.ReviewRequest
	review  *core.Review
	err     error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
