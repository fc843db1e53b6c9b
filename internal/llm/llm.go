// Package llm defines the narrow contract the quiz pipeline needs from a remote
// language model: one prompt in, one text completion out.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion is returned by providers when the model answered without any text.
var ErrEmptyCompletion = errors.New("model returned no content")

// Request is a single user-role completion request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
	// JSON asks providers that support it to constrain the output to JSON.
	JSON bool
}

// Completer sends a prompt to a remote model and returns its textual completion.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// WithTimeout bounds every call made through c. A non-positive d returns c unchanged.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Complete(ctx, req)
	})
}
