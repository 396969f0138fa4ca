// Package review implements the per-file review pipeline and the pull
// request fan-out built on top of it.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/github"
)

// Fetcher reads changed files from GitHub and classifies them.
type Fetcher struct {
	client   github.Client
	maxLines int
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher. A non-positive maxLines selects core.DefaultMaxLines.
func NewFetcher(client github.Client, maxLines int, logger *slog.Logger) *Fetcher {
	if maxLines <= 0 {
		maxLines = core.DefaultMaxLines
	}
	return &Fetcher{client: client, maxLines: maxLines, logger: logger}
}

// Fetch retrieves filename at ref. Files with more than maxLines newlines are
// reported as too large; retrieval errors and non-text content are reported
// as failures.
func (f *Fetcher) Fetch(ctx context.Context, repo, ref, filename string) core.FetchResult {
	owner, name, err := core.SplitRepo(repo)
	if err != nil {
		return core.FetchFailed(filename, err.Error())
	}

	raw, err := f.client.GetFileContent(ctx, owner, name, filename, ref)
	if err != nil {
		f.logger.Warn("could not fetch file", "repo", repo, "file", filename, "ref", ref, "error", err)
		return core.FetchFailed(filename, fmt.Sprintf("retrieve: %v", err))
	}

	if !utf8.Valid(raw) {
		f.logger.Warn("file is not valid UTF-8 text", "repo", repo, "file", filename)
		return core.FetchFailed(filename, "content is not valid UTF-8 text")
	}

	text := string(raw)
	lines := strings.Count(text, "\n")
	if lines > f.maxLines {
		f.logger.Info("skipping large file", "repo", repo, "file", filename, "lines", lines, "max_lines", f.maxLines)
		return core.FetchTooLarge(filename, lines)
	}

	return core.FetchOK(core.FileContent{Filename: filename, Text: text, Lines: lines})
}
