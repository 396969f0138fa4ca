package inference

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/sevigo/goframe/llms"
)

// ModelClient adapts a goframe model so hosted providers can stand in for
// the local endpoint.
type ModelClient struct {
	model   llms.Model
	timeout time.Duration
}

// NewModelClient wraps model. A zero timeout disables the per-call bound.
func NewModelClient(model llms.Model, timeout time.Duration) *ModelClient {
	return &ModelClient{model: model, timeout: timeout}
}

// Generate calls the wrapped model with the prompt.
func (c *ModelClient) Generate(ctx context.Context, prompt string) fn.Result[Completion] {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.model.Call(ctx, prompt)
	if err != nil {
		return fn.Err[Completion](err)
	}
	return fn.Ok(Completion{Text: text, Source: SourceDirect})
}
