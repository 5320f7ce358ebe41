package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/techstack"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// progressLine renders the candidate's progress, e.g. "Question 2 of 5 [#----]".
// It is empty at the greeting and after an exit before any question.
func progressLine(snap screening.Snapshot) string {
	switch {
	case snap.Step == screening.StepCollectingInfo:
		return fmt.Sprintf("Details %d of %d [%s]", snap.FieldCursor, len(screening.Fields), bar(snap.FieldCursor, len(screening.Fields)))
	case snap.TotalQuestions == 0:
		return ""
	case snap.IsComplete:
		return fmt.Sprintf("Answered %d of %d [%s]", snap.QuestionCursor, snap.TotalQuestions, bar(snap.QuestionCursor, snap.TotalQuestions))
	}
	return fmt.Sprintf("Question %d of %d [%s]", snap.QuestionCursor+1, snap.TotalQuestions, bar(snap.QuestionCursor, snap.TotalQuestions))
}

func bar(done, total int) string {
	return strings.Repeat("#", done) + strings.Repeat("-", total-done)
}

// printSummary writes the collected details and the categorized tech stack.
func printSummary(w io.Writer, snap screening.Snapshot) {
	fmt.Fprintln(w, colorize(colorBold, "Candidate summary"))
	for _, f := range screening.Fields {
		v, ok := snap.CollectedData[f]
		if !ok || f == screening.TechStack {
			continue
		}
		fmt.Fprintf(w, "  %-18s %s\n", f.Label()+":", v)
	}

	cats := techstack.Categorize(snap.CollectedData[screening.TechStack])
	if cats.IsEmpty() {
		return
	}
	fmt.Fprintln(w, colorize(colorBold, "Tech stack"))
	for _, g := range cats.Groups() {
		fmt.Fprintf(w, "  %-18s %s\n", g.Label+":", strings.Join(g.Items, ", "))
	}
}
