package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidMode is returned when a mode string is not a known diagnosis mode.
var ErrInvalidMode = errors.New("invalid diagnosis mode")

// Mode selects how much detail a diagnosis run asks the backend for.
type Mode string

const (
	ModeBeginner Mode = "beginner"
	ModeExpert   Mode = "expert"
)

// ParseMode normalizes a user-supplied mode string, defaulting empty to beginner.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModeBeginner):
		return ModeBeginner, nil
	case string(ModeExpert):
		return ModeExpert, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

// Request identifies one diagnosis: the target under test and the mode.
type Request struct {
	Target string `json:"target"`
	Mode   Mode   `json:"mode"`
}

// RunStatus tracks the lifecycle of a single diagnosis run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// FailureKind classifies why a run reached the failed state.
type FailureKind string

const (
	// FailureNetwork covers transport errors, timeouts, and non-2xx responses.
	FailureNetwork FailureKind = "network"
	// FailureBadResponse covers 2xx payloads that fail normalization.
	FailureBadResponse FailureKind = "bad_response"
)

// Failure records the terminal error of a failed run.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Run stores the identity, request, and lifecycle state of one diagnosis attempt.
type Run struct {
	ID          int64      `json:"id"`
	Request     Request    `json:"request"`
	Status      RunStatus  `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Failure     *Failure   `json:"failure,omitempty"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	BackendURL     string `json:"backendUrl"`
	Mode           string `json:"mode"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Timeout converts the configured seconds into a duration for HTTP clients.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}
