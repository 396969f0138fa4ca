package core

// DefaultMaxLines is the largest file, in lines, that is sent for review.
const DefaultMaxLines = 1000

// ReviewPolicy represents the structure of the optional review policy file.
type ReviewPolicy struct {
	// Files with more lines than this are skipped.
	MaxLines int `yaml:"max_lines"`

	// Custom instructions appended to the review prompt.
	Instructions []string `yaml:"instructions"`
}

// DefaultReviewPolicy returns a policy with default values.
func DefaultReviewPolicy() *ReviewPolicy {
	return &ReviewPolicy{
		MaxLines:     DefaultMaxLines,
		Instructions: []string{},
	}
}
