package domain

import (
	"fmt"
	"strings"
)

// CheckStatus is the outcome of a single diagnostic check.
type CheckStatus string

const (
	CheckStatusPass    CheckStatus = "PASS"
	CheckStatusFail    CheckStatus = "FAIL"
	CheckStatusWarning CheckStatus = "WARNING"
)

// ParseCheckStatus maps a wire status string onto a known check status.
// Matching is case-insensitive and accepts WARN as an alias for WARNING.
func ParseCheckStatus(raw string) (CheckStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(CheckStatusPass):
		return CheckStatusPass, nil
	case string(CheckStatusFail):
		return CheckStatusFail, nil
	case string(CheckStatusWarning), "WARN":
		return CheckStatusWarning, nil
	default:
		return "", fmt.Errorf("unknown check status %q", raw)
	}
}

// CheckResult is one diagnostic test outcome as shown to the user.
type CheckResult struct {
	CheckName     string      `json:"checkName"`
	Status        CheckStatus `json:"status"`
	Message       string      `json:"message"`
	FixSuggestion string      `json:"fixSuggestion,omitempty"`
	Commands      []string    `json:"commands,omitempty"`
}

// Summary counts check outcomes for a completed run.
type Summary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Total    int `json:"total"`
}

// Add counts one check outcome into the summary.
func (s *Summary) Add(status CheckStatus) {
	switch status {
	case CheckStatusPass:
		s.Passed++
	case CheckStatusFail:
		s.Failed++
	case CheckStatusWarning:
		s.Warnings++
	}
	s.Total++
}

// TallyResults computes summary counts as a pure function of a result sequence.
func TallyResults(results []CheckResult) Summary {
	var s Summary
	for _, r := range results {
		s.Add(r.Status)
	}
	return s
}
