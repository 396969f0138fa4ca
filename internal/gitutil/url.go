// Package gitutil parses the ways a user can name a pull request on the
// command line.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sevigo/code-review-api/internal/core"
)

var (
	prURLRegex       = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)
	shortTargetRegex = regexp.MustCompile(`^([^/\s]+/[^/#\s]+)#(\d+)$`)
)

// ParsePullRequestURL parses a GitHub Pull Request URL and extracts the owner, repo, and PR number.
// Supported format: https://github.com/{owner}/{repo}/pull/{number}
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	url = strings.TrimSuffix(url, "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	prNumber, err = strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number '%s': %w", matches[3], err)
	}
	return matches[1], matches[2], prNumber, nil
}

// ParseTarget builds a review request from command arguments. Accepted forms:
//
//	https://github.com/owner/name/pull/12
//	owner/name#12
//	owner/name 12
func ParseTarget(args []string) (core.ReviewRequest, error) {
	var req core.ReviewRequest
	switch len(args) {
	case 1:
		if m := shortTargetRegex.FindStringSubmatch(args[0]); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return req, fmt.Errorf("invalid PR number '%s': %w", m[2], err)
			}
			req = core.ReviewRequest{Repo: m[1], PRNumber: n}
			break
		}
		owner, repo, n, err := ParsePullRequestURL(args[0])
		if err != nil {
			return req, err
		}
		req = core.ReviewRequest{Repo: owner + "/" + repo, PRNumber: n}
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return req, fmt.Errorf("invalid PR number '%s': %w", args[1], err)
		}
		req = core.ReviewRequest{Repo: args[0], PRNumber: n}
	default:
		return req, fmt.Errorf("expected a PR URL, owner/name#number, or owner/name and number; got %d arguments", len(args))
	}

	if err := req.Validate(); err != nil {
		return core.ReviewRequest{}, err
	}
	return req, nil
}
