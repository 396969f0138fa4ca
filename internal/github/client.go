// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/code-review-api/internal/core"
)

// ErrNotAFile is returned when a content path resolves to a directory.
var ErrNotAFile = errors.New("path is not a file")

// Client defines a set of operations for interacting with the GitHub API,
// focusing on pull requests, file contents, and the authenticated user.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]string, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	ListUserRepositories(ctx context.Context) ([]*github.Repository, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
// An empty baseURL targets api.github.com; otherwise it points at an
// Enterprise (or test) API root.
func NewPATClient(ctx context.Context, token, baseURL string, logger *slog.Logger) (Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client, err := withBaseURL(github.NewClient(tc), baseURL)
	if err != nil {
		return nil, err
	}
	return &gitHubClient{client: client, logger: logger}, nil
}

func withBaseURL(client *github.Client, baseURL string) (*github.Client, error) {
	if baseURL == "" {
		return client, nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	client.BaseURL = u
	return client, nil
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetChangedFiles retrieves the names of files modified in a pull request.
// It handles pagination automatically to ensure all files are fetched
// from the GitHub API, which returns a maximum of 100 files per page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var allFiles []string
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, file := range files {
			allFiles = append(allFiles, file.GetFilename())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// GetFileContent retrieves the decoded contents of a file at the given ref.
func (g *gitHubClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		g.logger.Debug("failed to get file contents", "owner", owner, "repo", repo, "path", path, "ref", ref, "error", err)
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// ListUserRepositories lists the first page of repositories visible to the
// authenticated user.
func (g *gitHubClient) ListUserRepositories(ctx context.Context) ([]*github.Repository, error) {
	repos, _, err := g.client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		g.logger.Error("failed to list user repositories", "error", err)
		return nil, err
	}
	return repos, nil
}

// UpstreamError extracts the HTTP status and message GitHub returned with
// err. It reports false when err did not come from a GitHub API response.
func UpstreamError(err error) (int, string, bool) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode, ghErr.Message, true
	}
	return http.StatusBadGateway, "", false
}

// UpstreamResponse returns the error body GitHub sent with err, if any.
func UpstreamResponse(err error) (*github.ErrorResponse, bool) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr, true
	}
	return nil, false
}

// ClientFactory builds clients authenticated as a particular user.
type ClientFactory interface {
	ForToken(ctx context.Context, token string) (Client, error)
}

type patClientFactory struct {
	baseURL string
	logger  *slog.Logger
}

// NewClientFactory returns a factory producing PAT clients against baseURL.
func NewClientFactory(baseURL string, logger *slog.Logger) ClientFactory {
	return &patClientFactory{baseURL: baseURL, logger: logger}
}

// ForToken implements ClientFactory.
func (f *patClientFactory) ForToken(ctx context.Context, token string) (Client, error) {
	return NewPATClient(ctx, token, f.baseURL, f.logger)
}

// ChangedFiles pins the listed filenames to the head commit.
func ChangedFiles(names []string, headSHA string) []core.ChangedFile {
	files := make([]core.ChangedFile, 0, len(names))
	for _, name := range names {
		files = append(files, core.ChangedFile{Filename: name, Ref: headSHA})
	}
	return files
}
