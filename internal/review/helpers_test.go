package review

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	gh "github.com/google/go-github/v73/github"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/inference"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func linesOf(n int) []byte {
	return []byte(strings.Repeat("x := 1\n", n))
}

// stubLLM records prompts and answers every call with the same result.
type stubLLM struct {
	calls   atomic.Int32
	text    string
	err     error
	mu      sync.Mutex
	prompts []string
}

func (s *stubLLM) Generate(_ context.Context, prompt string) fn.Result[inference.Completion] {
	s.calls.Add(1)
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.err != nil {
		return fn.Err[inference.Completion](s.err)
	}
	return fn.Ok(inference.Completion{Text: s.text, Source: inference.SourceDirect})
}

// stubFetcher returns canned results keyed by filename.
type stubFetcher struct {
	results map[string]core.FetchResult
}

func (s *stubFetcher) Fetch(_ context.Context, _, _, filename string) core.FetchResult {
	if r, ok := s.results[filename]; ok {
		return r
	}
	return core.FetchFailed(filename, "not found")
}

// fakeGitHub serves a single pull request with a fixed file list.
type fakeGitHub struct {
	headSHA  string
	files    []string
	contents map[string][]byte
}

func (f *fakeGitHub) GetPullRequest(_ context.Context, _, _ string, number int) (*gh.PullRequest, error) {
	return &gh.PullRequest{
		Number: gh.Ptr(number),
		Head:   &gh.PullRequestBranch{SHA: gh.Ptr(f.headSHA)},
	}, nil
}

func (f *fakeGitHub) GetChangedFiles(_ context.Context, _, _ string, _ int) ([]string, error) {
	return f.files, nil
}

func (f *fakeGitHub) GetFileContent(_ context.Context, _, _, path, _ string) ([]byte, error) {
	if c, ok := f.contents[path]; ok {
		return c, nil
	}
	return []byte("package main\n"), nil
}

func (f *fakeGitHub) ListUserRepositories(_ context.Context) ([]*gh.Repository, error) {
	return nil, nil
}
