package review

import (
	"context"
	"errors"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/inference"
	"github.com/sevigo/code-review-api/mocks"
)

func newTestReviewer(t *testing.T, fetcher core.FileFetcher, llm inference.Client, policy *core.ReviewPolicy) *Reviewer {
	t.Helper()
	pm, err := NewPromptManager()
	require.NoError(t, err)
	return NewReviewer(fetcher, llm, pm, DefaultProvider, policy, discardLogger())
}

func TestReviewer_ReviewFile(t *testing.T) {
	fetcher := &stubFetcher{results: map[string]core.FetchResult{
		"big.go":    core.FetchTooLarge("big.go", 1200),
		"gone.go":   core.FetchFailed("gone.go", "retrieve: 404"),
		"small.go":  core.FetchOK(core.FileContent{Filename: "small.go", Text: "package main\n", Lines: 1}),
		"broken.go": core.FetchOK(core.FileContent{Filename: "broken.go", Text: "package broken\n", Lines: 1}),
	}}

	tests := []struct {
		name      string
		file      string
		llm       *stubLLM
		wantKind  core.OutcomeKind
		wantText  string
		wantCalls int32
	}{
		{
			name:      "too large never reaches inference",
			file:      "big.go",
			llm:       &stubLLM{text: "unused"},
			wantKind:  core.OutcomeSkippedTooLarge,
			wantText:  core.TooLargeMessage,
			wantCalls: 0,
		},
		{
			name:      "fetch failure never reaches inference",
			file:      "gone.go",
			llm:       &stubLLM{text: "unused"},
			wantKind:  core.OutcomeFetchFailed,
			wantText:  core.FetchFailedMessage,
			wantCalls: 0,
		},
		{
			name:      "reviewed",
			file:      "small.go",
			llm:       &stubLLM{text: "looks good"},
			wantKind:  core.OutcomeReviewed,
			wantText:  "looks good",
			wantCalls: 1,
		},
		{
			name:      "inference failure carries upstream text",
			file:      "broken.go",
			llm:       &stubLLM{err: &inference.APIError{StatusCode: 500, Body: "model crashed"}},
			wantKind:  core.OutcomeInferenceFailed,
			wantText:  "# Review failed: Ollama API error: model crashed",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReviewer(t, fetcher, tt.llm, nil)
			got := r.ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: tt.file, Ref: "sha1"})

			assert.Equal(t, tt.file, got.Filename)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Message())
			assert.Equal(t, tt.wantCalls, tt.llm.calls.Load())
		})
	}
}

func TestReviewer_PromptContents(t *testing.T) {
	fetcher := &stubFetcher{results: map[string]core.FetchResult{
		"pkg/util.go": core.FetchOK(core.FileContent{Filename: "pkg/util.go", Text: "package util\n", Lines: 1}),
	}}

	t.Run("default prompt", func(t *testing.T) {
		llm := &stubLLM{text: "ok"}
		newTestReviewer(t, fetcher, llm, nil).ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "pkg/util.go"})

		require.Len(t, llm.prompts, 1)
		assert.Equal(t,
			"Review the following code in `pkg/util.go`. Identify bugs,generate the corrected code, give improvements, and optimizations:\n\npackage util\n",
			llm.prompts[0])
	})

	t.Run("policy instructions", func(t *testing.T) {
		llm := &stubLLM{text: "ok"}
		policy := &core.ReviewPolicy{Instructions: []string{"Focus on error handling.", "Be brief."}}
		newTestReviewer(t, fetcher, llm, policy).ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "pkg/util.go"})

		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "optimizations:\n- Focus on error handling.\n- Be brief.\n\npackage util\n")
	})
}

func TestReviewer_WithMockInference(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mocks.NewMockInferenceClient(ctrl)
	llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(fn.Err[inference.Completion](errors.New("connection refused"))).
		Times(2)

	fetcher := &stubFetcher{results: map[string]core.FetchResult{
		"a.go": core.FetchOK(core.FileContent{Filename: "a.go", Text: "package a\n", Lines: 1}),
	}}
	r := newTestReviewer(t, fetcher, llm, nil)

	// Same input twice against a stable upstream yields the same kind.
	first := r.ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "a.go"})
	second := r.ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "a.go"})

	assert.Equal(t, core.OutcomeInferenceFailed, first.Kind)
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, "connection refused", first.Reason)
}

type panickingFetcher struct{}

func (panickingFetcher) Fetch(context.Context, string, string, string) core.FetchResult {
	panic("boom")
}

type panickingLLM struct{}

func (panickingLLM) Generate(context.Context, string) fn.Result[inference.Completion] {
	panic("model exploded")
}

func TestReviewer_RecoversFromPanic(t *testing.T) {
	t.Run("during fetch", func(t *testing.T) {
		llm := &stubLLM{}
		r := newTestReviewer(t, panickingFetcher{}, llm, nil)
		got := r.ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "a.go"})

		assert.Equal(t, core.OutcomeFetchFailed, got.Kind)
		assert.Equal(t, "a.go", got.Filename)
		assert.Contains(t, got.Reason, "boom")
		assert.Equal(t, core.FetchFailedMessage, got.Message())
		assert.Zero(t, llm.calls.Load())
	})

	t.Run("during inference", func(t *testing.T) {
		fetcher := &stubFetcher{results: map[string]core.FetchResult{
			"a.go": core.FetchOK(core.FileContent{Filename: "a.go", Text: "package a\n", Lines: 1}),
		}}
		r := newTestReviewer(t, fetcher, panickingLLM{}, nil)
		got := r.ReviewFile(t.Context(), "acme/widgets", core.ChangedFile{Filename: "a.go"})

		assert.Equal(t, core.OutcomeInferenceFailed, got.Kind)
		assert.Contains(t, got.Reason, "model exploded")
	})
}
