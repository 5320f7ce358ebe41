// Package questions produces the technical questions asked after the
// candidate's details are collected.
package questions

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/kalambet/talentscout/internal/engine"
	"github.com/kalambet/talentscout/internal/techstack"
)

// Count is the number of questions every screening asks.
const Count = 5

const defaultTimeout = 30 * time.Second

var errDisabled = fmt.Errorf("%w: no backend configured", engine.ErrUnavailable)

// minQuestionLen is the length a parsed line must exceed to count as a question.
const minQuestionLen = 20

// Source records where a question set came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a generated question set. Questions always holds Count entries.
// Err is set for fallback results and wraps engine.ErrUnavailable.
type Result struct {
	Questions []string `json:"questions"`
	Source    Source   `json:"source"`
	Err       error    `json:"-"`
}

// Generator asks a chat model for questions and falls back to a fixed table.
type Generator struct {
	chatter engine.Chatter
	model   string
	timeout time.Duration
}

// NewGenerator creates a Generator. A nil chatter disables model generation.
func NewGenerator(chatter engine.Chatter, model string, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{chatter: chatter, model: model, timeout: timeout}
}

// Generate returns exactly Count questions for techStack. Any model failure
// (error, timeout, too few usable lines) yields the deterministic fallback.
func (g *Generator) Generate(ctx context.Context, techStack string) Result {
	err := errDisabled
	if g.chatter != nil {
		var qs []string
		if qs, err = g.fromModel(ctx, techStack); err == nil {
			return Result{Questions: qs, Source: SourceModel}
		}
		slog.Warn("question generation failed", "error", err)
	}
	return Result{
		Questions: Fallback(techstack.Parse(techStack)),
		Source:    SourceFallback,
		Err:       err,
	}
}

func (g *Generator) fromModel(ctx context.Context, techStack string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.chatter.Chat(ctx, g.model, BuildPrompt(techStack), engine.Options{
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}

	qs := ParseQuestions(raw)
	if len(qs) < Count {
		return nil, fmt.Errorf("%w: model returned %d usable questions, want %d", engine.ErrUnavailable, len(qs), Count)
	}
	return qs[:Count], nil
}

var (
	numberingRe = regexp.MustCompile(`^\d+[.):]\s*`)
	bulletRe    = regexp.MustCompile(`^[-•*]\s*`)
)

// ParseQuestions splits model output into questions, stripping numbering and
// bullets and dropping lines of minQuestionLen characters or fewer.
func ParseQuestions(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = numberingRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "")
		if len([]rune(line)) > minQuestionLen {
			out = append(out, line)
		}
	}
	return out
}
