// Package responder phrases screening replies, through a chat model when one
// is available and through fixed templates otherwise.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/talentscout/internal/engine"
)

const defaultTimeout = 30 * time.Second

var errDisabled = fmt.Errorf("%w: no backend configured", engine.ErrUnavailable)

// Reply is a rendered message. Fallback is set when the templates produced
// it, and Err then says why (always wrapping engine.ErrUnavailable).
type Reply struct {
	Text     string
	Fallback bool
	Err      error
}

// Responder renders replies. The zero chatter means template-only mode.
type Responder struct {
	chatter engine.Chatter
	model   string
	timeout time.Duration
}

// New creates a Responder. A nil chatter renders every reply from templates.
func New(chatter engine.Chatter, model string, timeout time.Duration) *Responder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Responder{chatter: chatter, model: model, timeout: timeout}
}

// Respond renders the reply for p. Model failures, timeouts and blank output
// are logged and replaced by the templated fallback.
func (r *Responder) Respond(ctx context.Context, p Prompt) Reply {
	if r.chatter == nil {
		return Reply{Text: Fallback(p), Fallback: true, Err: errDisabled}
	}

	text, err := r.chat(ctx, p)
	if err != nil {
		slog.Warn("reply generation failed", "step", p.Step, "error", err)
		return Reply{Text: Fallback(p), Fallback: true, Err: fmt.Errorf("%w: %v", engine.ErrUnavailable, err)}
	}
	return Reply{Text: text}
}

func (r *Responder) chat(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.chatter.Chat(ctx, r.model, BuildMessages(p), engine.Options{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   300,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("empty reply from model %s", r.model)
	}
	return text, nil
}
