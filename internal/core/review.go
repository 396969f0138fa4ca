package core

import "time"

// ChangedFile is a file touched by a pull request, pinned to the commit it
// should be read at.
type ChangedFile struct {
	Filename string
	Ref      string
}

// FileContent is the decoded text of a fetched file.
type FileContent struct {
	Filename string
	Text     string
	Lines    int
}

// FetchStatus classifies the result of fetching a file.
type FetchStatus int

const (
	FetchStatusOK FetchStatus = iota
	FetchStatusTooLarge
	FetchStatusFailed
)

// FetchResult is the tagged result of a fetch. Only one of Content or Reason
// is meaningful, depending on Status.
type FetchResult struct {
	Status  FetchStatus
	Content FileContent
	Reason  string
}

// FetchOK wraps successfully fetched content.
func FetchOK(content FileContent) FetchResult {
	return FetchResult{Status: FetchStatusOK, Content: content}
}

// FetchTooLarge reports that a file exceeded the line limit.
func FetchTooLarge(filename string, lines int) FetchResult {
	return FetchResult{
		Status:  FetchStatusTooLarge,
		Content: FileContent{Filename: filename, Lines: lines},
	}
}

// FetchFailed reports that a file could not be retrieved or decoded.
func FetchFailed(filename, reason string) FetchResult {
	return FetchResult{
		Status:  FetchStatusFailed,
		Content: FileContent{Filename: filename},
		Reason:  reason,
	}
}

// OutcomeKind enumerates the possible results of reviewing one file.
type OutcomeKind string

const (
	OutcomeReviewed        OutcomeKind = "reviewed"
	OutcomeSkippedTooLarge OutcomeKind = "skipped_too_large"
	OutcomeFetchFailed     OutcomeKind = "fetch_failed"
	OutcomeInferenceFailed OutcomeKind = "inference_failed"
)

const (
	TooLargeMessage    = "# File too large to analyze"
	FetchFailedMessage = "# File could not be fetched (binary or deleted)"
	inferencePrefix    = "# Review failed: "
)

// ReviewOutcome is the result of reviewing a single file.
type ReviewOutcome struct {
	Filename string
	Kind     OutcomeKind
	// Text holds the model output for OutcomeReviewed.
	Text string
	// Reason holds the diagnostic for fetch and inference failures.
	Reason string
}

// Reviewed builds a successful outcome.
func Reviewed(filename, text string) ReviewOutcome {
	return ReviewOutcome{Filename: filename, Kind: OutcomeReviewed, Text: text}
}

// SkippedTooLarge builds the outcome for files over the line limit.
func SkippedTooLarge(filename string) ReviewOutcome {
	return ReviewOutcome{Filename: filename, Kind: OutcomeSkippedTooLarge}
}

// FetchFailedOutcome builds the outcome for files that could not be fetched.
func FetchFailedOutcome(filename, reason string) ReviewOutcome {
	return ReviewOutcome{Filename: filename, Kind: OutcomeFetchFailed, Reason: reason}
}

// InferenceFailed builds the outcome for files whose model call failed.
func InferenceFailed(filename, reason string) ReviewOutcome {
	return ReviewOutcome{Filename: filename, Kind: OutcomeInferenceFailed, Reason: reason}
}

// Message renders the outcome as the text returned to API clients.
func (o ReviewOutcome) Message() string {
	switch o.Kind {
	case OutcomeReviewed:
		return o.Text
	case OutcomeSkippedTooLarge:
		return TooLargeMessage
	case OutcomeFetchFailed:
		return FetchFailedMessage
	case OutcomeInferenceFailed:
		return inferencePrefix + o.Reason
	default:
		return ""
	}
}

// PullRequestReview is the aggregated result of reviewing a pull request.
type PullRequestReview struct {
	Repo     string
	PRNumber int
	HeadSHA  string
	Outcomes map[string]ReviewOutcome
}

// Messages flattens the outcomes into filename -> response text.
func (r *PullRequestReview) Messages() map[string]string {
	out := make(map[string]string, len(r.Outcomes))
	for name, o := range r.Outcomes {
		out[name] = o.Message()
	}
	return out
}

// Counts tallies outcomes by kind.
func (r *PullRequestReview) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, o := range r.Outcomes {
		counts[o.Kind]++
	}
	return counts
}

// Review represents a completed pull request review stored in the database.
type Review struct {
	ID           int64             `json:"id" db:"id"`
	RepoFullName string            `json:"repo" db:"repo_full_name"`
	PRNumber     int               `json:"pr_number" db:"pr_number"`
	HeadSHA      string            `json:"head_sha" db:"head_sha"`
	Reviews      map[string]string `json:"reviews" db:"-"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}
