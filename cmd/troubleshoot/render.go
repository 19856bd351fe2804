package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"net-troubleshooter/internal/domain"
	"net-troubleshooter/internal/session"
)

var (
	passColor   = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	headerColor = color.New(color.FgCyan, color.Bold)
	detailColor = color.New(color.Faint)
)

// statusLabel renders a check status with its color.
func statusLabel(status domain.CheckStatus) string {
	switch status {
	case domain.CheckStatusPass:
		return passColor.Sprint("PASS")
	case domain.CheckStatusFail:
		return failColor.Sprint("FAIL")
	case domain.CheckStatusWarning:
		return warnColor.Sprint("WARN")
	default:
		return string(status)
	}
}

// serviceLabel renders a quick-status service state with its color.
func serviceLabel(status string) string {
	switch strings.ToLower(status) {
	case "online", "healthy":
		return passColor.Sprint(status)
	case "degraded":
		return warnColor.Sprint(status)
	default:
		return failColor.Sprint(status)
	}
}

// renderOutcome prints one target's results, failure, and summary.
func renderOutcome(w io.Writer, outcome targetOutcome) {
	fmt.Fprintf(w, "%s\n", headerColor.Sprintf("== %s ==", outcome.target))

	if failure := outcome.state.Run.Failure; failure != nil {
		fmt.Fprintf(w, "%s %s: %s\n", failColor.Sprint("run failed"), failure.Kind, failure.Message)
		return
	}

	for _, result := range outcome.state.Results {
		fmt.Fprintf(w, "  %s  %s: %s\n", statusLabel(result.Status), result.CheckName, result.Message)
		if result.FixSuggestion != "" {
			fmt.Fprintf(w, "        %s\n", detailColor.Sprintf("fix: %s", result.FixSuggestion))
		}
		for _, command := range result.Commands {
			fmt.Fprintf(w, "        %s\n", detailColor.Sprintf("$ %s", command))
		}
	}

	summary := outcome.state.Summary
	fmt.Fprintf(w, "  %s, %s, %s (%d checks)\n",
		passColor.Sprintf("%d passed", summary.Passed),
		failColor.Sprintf("%d failed", summary.Failed),
		warnColor.Sprintf("%d warnings", summary.Warnings),
		summary.Total)

	for _, path := range outcome.saved {
		fmt.Fprintf(w, "  saved %s\n", path)
	}
}

// renderJSON emits final session states keyed by target.
func renderJSON(w io.Writer, outcomes []targetOutcome) error {
	states := make(map[string]session.State, len(outcomes))
	for _, outcome := range outcomes {
		states[outcome.target] = outcome.state
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(states)
}
