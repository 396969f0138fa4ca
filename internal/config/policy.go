package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/code-review-api/internal/core"
)

var (
	ErrPolicyNotFound = errors.New("review policy file not found")
	ErrPolicyParsing  = errors.New("review policy parsing failed")
)

// LoadReviewPolicy reads a YAML review policy. An empty path yields the
// default policy; a missing file yields the default policy and ErrPolicyNotFound.
// maxLines, when positive, is used unless the file sets max_lines itself.
func LoadReviewPolicy(path string, maxLines int) (*core.ReviewPolicy, error) {
	policy := core.DefaultReviewPolicy()
	if maxLines > 0 {
		policy.MaxLines = maxLines
	}
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to read review policy %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyParsing, err)
	}
	if policy.MaxLines <= 0 {
		return nil, fmt.Errorf("%w: max_lines must be positive, got %d", ErrPolicyParsing, policy.MaxLines)
	}
	return policy, nil
}
