// Package inference talks to the language model that reviews source files.
package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Source records how the review text was extracted from the model's reply.
type Source int

const (
	// SourceDirect means the payload carried a top-level "response" field.
	SourceDirect Source = iota
	// SourceNested means the text came from results[0].content.
	SourceNested
	// SourceRawFallback means no known field matched and the whole payload
	// was stringified.
	SourceRawFallback
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceNested:
		return "nested"
	case SourceRawFallback:
		return "raw_fallback"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Completion is the text produced by the model for one prompt.
type Completion struct {
	Text   string
	Source Source
}

var (
	// ErrTransport wraps network failures reaching the model endpoint.
	ErrTransport = errors.New("inference transport error")
	// ErrMalformedPayload is returned when a successful reply is not JSON.
	ErrMalformedPayload = errors.New("malformed inference payload")
)

// APIError is returned when the endpoint answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "Ollama API error: " + e.Body
}

// Client generates a review for a single prompt. A failed call is final;
// callers must not expect retries.
//
//go:generate mockgen -destination=../../mocks/mock_inference_client.go -package=mocks -mock_names=Client=MockInferenceClient . Client
type Client interface {
	Generate(ctx context.Context, prompt string) fn.Result[Completion]
}
