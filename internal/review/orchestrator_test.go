package review

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/mocks"
)

func prWithHead(sha string) *gh.PullRequest {
	return &gh.PullRequest{Head: &gh.PullRequestBranch{SHA: gh.Ptr(sha)}}
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "acme", "widgets", 42).Return(prWithHead("deadbeef"), nil)
	client.EXPECT().GetChangedFiles(gomock.Any(), "acme", "widgets", 42).Return([]string{"A.go", "B.png", "C.go"}, nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", "A.go", "deadbeef").Return(linesOf(1200), nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", "B.png", "deadbeef").Return(nil, errors.New("404 Not Found"))
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", "C.go", "deadbeef").Return(linesOf(50), nil)

	llm := &stubLLM{text: "looks good"}
	pm, err := NewPromptManager()
	require.NoError(t, err)
	reviewer := NewReviewer(NewFetcher(client, 0, discardLogger()), llm, pm, DefaultProvider, nil, discardLogger())
	orch := NewOrchestrator(client, reviewer, 4, discardLogger())

	review, err := orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 42})
	require.NoError(t, err)

	assert.Equal(t, "deadbeef", review.HeadSHA)
	assert.Equal(t, map[string]string{
		"A.go":  "# File too large to analyze",
		"B.png": "# File could not be fetched (binary or deleted)",
		"C.go":  "looks good",
	}, review.Messages())
	assert.Equal(t, int32(1), llm.calls.Load())
}

func TestOrchestrator_ListingFailures(t *testing.T) {
	t.Run("unknown pull request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().GetPullRequest(gomock.Any(), "acme", "widgets", 9).Return(nil, errors.New("404 Not Found"))

		orch := NewOrchestrator(client, &countingReviewer{}, 4, discardLogger())
		_, err := orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 9})

		require.ErrorIs(t, err, ErrListing)
		assert.Contains(t, err.Error(), "404 Not Found")
	})

	t.Run("file listing fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().GetPullRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(prWithHead("sha"), nil)
		client.EXPECT().GetChangedFiles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("401 Bad credentials"))

		reviewer := &countingReviewer{}
		orch := NewOrchestrator(client, reviewer, 4, discardLogger())
		_, err := orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 1})

		require.ErrorIs(t, err, ErrListing)
		assert.Zero(t, reviewer.calls.Load())
	})

	t.Run("missing head sha", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().GetPullRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(&gh.PullRequest{}, nil)

		orch := NewOrchestrator(client, &countingReviewer{}, 4, discardLogger())
		_, err := orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 1})
		require.ErrorIs(t, err, ErrListing)
	})

	t.Run("invalid request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		orch := NewOrchestrator(mocks.NewMockClient(ctrl), &countingReviewer{}, 4, discardLogger())

		_, err := orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "widgets", PRNumber: 1})
		require.ErrorIs(t, err, core.ErrInvalidRequest)

		_, err = orch.ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 0})
		require.ErrorIs(t, err, core.ErrInvalidRequest)
	})
}

// countingReviewer tracks how many reviews are in flight at once.
type countingReviewer struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	ctxErrs  atomic.Int32
}

func (c *countingReviewer) ReviewFile(ctx context.Context, _ string, file core.ChangedFile) core.ReviewOutcome {
	c.calls.Add(1)
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		seen := c.maxSeen.Load()
		if n <= seen || c.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(c.delay)
	if ctx.Err() != nil {
		c.ctxErrs.Add(1)
	}
	return core.Reviewed(file.Filename, "ok")
}

func TestOrchestrator_BoundsConcurrency(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("file%02d.go", i)
	}
	client := &fakeGitHub{headSHA: "sha", files: files}
	reviewer := &countingReviewer{delay: 20 * time.Millisecond}

	review, err := NewOrchestrator(client, reviewer, 4, discardLogger()).
		ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 3})
	require.NoError(t, err)

	assert.Len(t, review.Outcomes, 10)
	assert.Equal(t, int32(10), reviewer.calls.Load())
	assert.LessOrEqual(t, reviewer.maxSeen.Load(), int32(4))
	assert.Positive(t, reviewer.maxSeen.Load())
}

func TestOrchestrator_IgnoresCallerCancellation(t *testing.T) {
	client := &fakeGitHub{headSHA: "sha", files: []string{"a.go", "b.go", "c.go"}}
	reviewer := &countingReviewer{delay: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(t.Context())
	orch := NewOrchestrator(client, reviewer, 2, discardLogger())

	done := make(chan *core.PullRequestReview)
	go func() {
		review, err := orch.ReviewPullRequest(ctx, core.ReviewRequest{Repo: "acme/widgets", PRNumber: 3})
		assert.NoError(t, err)
		done <- review
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	review := <-done
	assert.Len(t, review.Outcomes, 3)
	assert.Zero(t, reviewer.ctxErrs.Load())
}

func TestOrchestrator_EmptyPullRequest(t *testing.T) {
	client := &fakeGitHub{headSHA: "sha"}
	review, err := NewOrchestrator(client, &countingReviewer{}, 4, discardLogger()).
		ReviewPullRequest(t.Context(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 1})

	require.NoError(t, err)
	assert.NotNil(t, review.Outcomes)
	assert.Empty(t, review.Outcomes)
}

// TestOneOutcomePerFile verifies that every changed file yields exactly one
// outcome regardless of file count, worker count, or file sizes.
func TestOneOutcomePerFile(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 25).Draw(rt, "files")
		workers := rapid.IntRange(1, 8).Draw(rt, "workers")

		files := make([]string, n)
		contents := make(map[string][]byte, n)
		expectInference := 0
		for i := range files {
			files[i] = fmt.Sprintf("dir/file_%d.go", i)
			lines := rapid.IntRange(0, 1500).Draw(rt, "lines")
			contents[files[i]] = linesOf(lines)
			if lines <= core.DefaultMaxLines {
				expectInference++
			}
		}

		client := &fakeGitHub{headSHA: "sha", files: files, contents: contents}
		llm := &stubLLM{text: "ok"}
		reviewer := NewReviewer(NewFetcher(client, 0, discardLogger()), llm, pm, DefaultProvider, nil, discardLogger())

		review, err := NewOrchestrator(client, reviewer, workers, discardLogger()).
			ReviewPullRequest(context.Background(), core.ReviewRequest{Repo: "acme/widgets", PRNumber: 1})
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		// PROPERTY: exactly one outcome per changed file.
		if len(review.Outcomes) != n {
			rt.Fatalf("got %d outcomes, want %d", len(review.Outcomes), n)
		}
		for _, f := range files {
			if _, ok := review.Outcomes[f]; !ok {
				rt.Fatalf("missing outcome for %s", f)
			}
		}

		// PROPERTY: oversized files never reach the model.
		if got := int(llm.calls.Load()); got != expectInference {
			rt.Fatalf("got %d inference calls, want %d", got, expectInference)
		}
	})
}
