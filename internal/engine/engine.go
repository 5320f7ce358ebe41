package engine

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by backends that cannot perform an operation,
// such as pulling models from a hosted OpenAI-compatible endpoint.
var ErrUnsupported = errors.New("operation not supported by backend")

// ErrUnavailable marks a chat call that produced no usable output: the
// backend is disabled, unreachable, timed out or answered with nothing.
var ErrUnavailable = errors.New("text generation unavailable")

// Chatter is the narrow interface the question generator and the responder
// depend on.
type Chatter interface {
	// Chat sends messages to the given model and returns the assistant's response.
	Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error)
}

// Engine abstracts a text-generation backend (Ollama or any
// OpenAI-compatible server).
type Engine interface {
	Chatter

	// Name identifies the backend in logs and metrics.
	Name() string

	// IsRunning reports whether the backend is reachable.
	IsRunning(ctx context.Context) bool

	// ListModels returns the names of all available models.
	ListModels(ctx context.Context) ([]string, error)

	// HasModel reports whether the given model name is available.
	HasModel(ctx context.Context, name string) bool

	// PullModel downloads a model. The optional callback receives progress updates.
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}
