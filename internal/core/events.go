// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned when an inbound review request is malformed.
var ErrInvalidRequest = errors.New("invalid review request")

// ReviewRequest identifies the pull request a caller wants reviewed.
type ReviewRequest struct {
	Repo     string `json:"repo"`
	PRNumber int    `json:"pr_number"`
}

// Validate checks that the repository is in "owner/name" form and that the
// pull request number is positive.
func (r ReviewRequest) Validate() error {
	if _, _, err := SplitRepo(r.Repo); err != nil {
		return err
	}
	if r.PRNumber <= 0 {
		return fmt.Errorf("%w: pull request number must be positive, got: %d", ErrInvalidRequest, r.PRNumber)
	}
	return nil
}

// Split returns the owner and repository name. It assumes Validate succeeded.
func (r ReviewRequest) Split() (owner, name string) {
	owner, name, _ = SplitRepo(r.Repo)
	return owner, name
}

// SplitRepo splits an "owner/name" repository identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: repository must be in owner/name form, got: %q", ErrInvalidRequest, repo)
	}
	return parts[0], parts[1], nil
}
