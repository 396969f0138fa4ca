// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/code-review-api/internal/config"
)

// NewServiceClient creates the client the review pipeline uses. It prefers a
// GitHub App installation when one is configured and falls back to the
// service token otherwise.
func NewServiceClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	if cfg.GitHub.AppID != 0 {
		return NewInstallationClient(cfg, logger)
	}
	if cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("no GitHub credentials configured")
	}
	logger.Info("using GitHub personal access token")
	return NewPATClient(ctx, cfg.GitHub.Token, cfg.GitHub.APIURL, logger)
}

// NewInstallationClient creates a GitHub client that is authenticated as a
// specific application installation. Installation tokens are refreshed by
// the transport as they expire.
func NewInstallationClient(cfg *config.Config, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub installation client",
		"app_id", cfg.GitHub.AppID,
		"installation_id", cfg.GitHub.InstallationID)

	privateKey, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHub.PrivateKeyPath, err)
	}

	transport, err := ghinstallation.New(http.DefaultTransport, cfg.GitHub.AppID, cfg.GitHub.InstallationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	if cfg.GitHub.APIURL != "" {
		transport.BaseURL = cfg.GitHub.APIURL
	}

	client, err := withBaseURL(github.NewClient(&http.Client{Transport: transport}), cfg.GitHub.APIURL)
	if err != nil {
		return nil, err
	}
	return NewGitHubClient(client, logger), nil
}
