package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/github"
	"github.com/sevigo/code-review-api/internal/storage"
)

const saveTimeout = 10 * time.Second

// ReviewHandler runs pull request reviews and serves their history.
type ReviewHandler struct {
	reviewer core.PullRequestReviewer
	store    storage.Store
	maxBytes int64
	logger   *slog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewer core.PullRequestReviewer, store storage.Store, maxBytes int64, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewer: reviewer,
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

type reviewResponse struct {
	Status   string            `json:"status"`
	Repo     string            `json:"repo"`
	PRNumber int               `json:"pr_number"`
	Reviews  map[string]string `json:"reviews"`
}

// ReviewPR handles POST /review-pr. Per-file failures are part of a 200
// response; only request-level failures produce an error status.
func (h *ReviewHandler) ReviewPR(w http.ResponseWriter, r *http.Request) {
	var req core.ReviewRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reviewer.ReviewPullRequest(r.Context(), req)
	if err != nil {
		h.logger.Warn("pull request review failed", "repo", req.Repo, "pr", req.PRNumber, "error", err)
		detail := err.Error()
		if _, msg, ok := github.UpstreamError(err); ok && msg != "" {
			detail = msg
		}
		writeError(w, http.StatusBadRequest, detail)
		return
	}

	messages := result.Messages()
	h.saveHistory(r.Context(), result, messages)

	writeJSON(w, http.StatusOK, reviewResponse{
		Status:   "success",
		Repo:     req.Repo,
		PRNumber: req.PRNumber,
		Reviews:  messages,
	})
}

// saveHistory records the review. Failures are logged and never surface.
func (h *ReviewHandler) saveHistory(ctx context.Context, result *core.PullRequestReview, messages map[string]string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	record := &core.Review{
		RepoFullName: result.Repo,
		PRNumber:     result.PRNumber,
		HeadSHA:      result.HeadSHA,
		Reviews:      messages,
	}
	if err := h.store.SaveReview(ctx, record); err != nil {
		h.logger.Error("failed to save review history", "repo", result.Repo, "pr", result.PRNumber, "error", err)
		return
	}
	h.logger.Debug("review history saved", "id", record.ID, "repo", result.Repo, "pr", result.PRNumber)
}

// Latest handles GET /reviews/latest?repo=owner/name&pr_number=N.
func (h *ReviewHandler) Latest(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	prNumber, err := strconv.Atoi(r.URL.Query().Get("pr_number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "pr_number must be an integer")
		return
	}
	if err := (core.ReviewRequest{Repo: repo, PRNumber: prNumber}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.store.GetLatestReviewForPR(r.Context(), repo, prNumber)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, review)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "No review found for this pull request")
	default:
		h.logger.Error("failed to load review history", "repo", repo, "pr", prNumber, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
