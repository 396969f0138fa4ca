package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/code-review-api/internal/core"
)

// FormatMarkdown renders an aggregated review as a Markdown document with an
// outcome table followed by one section per file, sorted by filename.
func FormatMarkdown(review *core.PullRequestReview) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### 📝 Code Review: %s#%d\n\n", review.Repo, review.PRNumber)
	if review.HeadSHA != "" {
		fmt.Fprintf(&sb, "Head: `%s`\n\n", review.HeadSHA)
	}

	if len(review.Outcomes) == 0 {
		sb.WriteString("No changed files.\n")
		return sb.String()
	}

	counts := review.Counts()
	sb.WriteString("| Outcome | Count |\n")
	sb.WriteString("|---------|-------|\n")

	// Order matters: reviewed first, then the skip and failure kinds.
	order := []core.OutcomeKind{
		core.OutcomeReviewed,
		core.OutcomeSkippedTooLarge,
		core.OutcomeFetchFailed,
		core.OutcomeInferenceFailed,
	}
	for _, kind := range order {
		if count := counts[kind]; count > 0 {
			fmt.Fprintf(&sb, "| %s %s | %d |\n", outcomeEmoji(kind), kind, count)
		}
	}

	names := make([]string, 0, len(review.Outcomes))
	for name := range review.Outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		outcome := review.Outcomes[name]
		fmt.Fprintf(&sb, "\n---\n#### %s `%s`\n\n", outcomeEmoji(outcome.Kind), name)
		sb.WriteString(strings.TrimSpace(outcome.Message()))
		sb.WriteString("\n")
	}

	return sb.String()
}

func outcomeEmoji(kind core.OutcomeKind) string {
	switch kind {
	case core.OutcomeReviewed:
		return "✅"
	case core.OutcomeSkippedTooLarge:
		return "⏭️"
	case core.OutcomeFetchFailed:
		return "⚠️"
	case core.OutcomeInferenceFailed:
		return "🔴"
	default:
		return "❔"
	}
}
