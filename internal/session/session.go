package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/domain"
)

// ErrTargetRequired is returned when a run is started with an empty target.
var ErrTargetRequired = errors.New("diagnosis target is required")

// ErrNoDiagnosis is returned when an artifact is requested before any run completed.
var ErrNoDiagnosis = errors.New("no diagnosis has completed")

// ErrDiagnosisRunning is returned when an artifact is requested mid-run.
var ErrDiagnosisRunning = errors.New("diagnosis is still running")

// ErrArtifactUnavailable wraps artifact fetch failures.
var ErrArtifactUnavailable = errors.New("artifact unavailable")

// Diagnoser issues diagnosis and artifact requests against the backend.
type Diagnoser interface {
	Diagnose(ctx context.Context, req domain.Request) ([]byte, error)
	FetchArtifact(ctx context.Context, req domain.Request, kind domain.ArtifactKind) (domain.Artifact, error)
}

// RunHandle correlates a started run with its completion signal.
type RunHandle struct {
	ID   int64
	Done <-chan struct{}
}

// State is a point-in-time snapshot for the rendering layer. Results hold the
// most recent successfully applied result set; ResultsRunID names the run that
// produced them, which differs from Run.ID after a failed re-run.
type State struct {
	Run          domain.Run           `json:"run"`
	Results      []domain.CheckResult `json:"results"`
	Summary      domain.Summary       `json:"summary"`
	FixScript    string               `json:"fixScript,omitempty"`
	ResultsRunID int64                `json:"resultsRunId"`
}

// Session is the single authority for current diagnosis state. Overlapping
// runs are resolved by a monotonically increasing run identifier: only the
// response belonging to the newest run may mutate state, regardless of
// arrival order.
type Session struct {
	diagnoser Diagnoser
	events    *EventBus
	notify    func(Event)

	mu           sync.RWMutex
	seq          int64
	run          domain.Run
	results      []domain.CheckResult
	summary      domain.Summary
	fixScript    string
	resultsRunID int64
}

// New creates an idle session. notify, when non-nil, receives every published
// event in addition to the internal event buffer.
func New(d Diagnoser, notify func(Event)) *Session {
	return &Session{
		diagnoser: d,
		events:    NewEventBus(1000),
		notify:    notify,
		run:       domain.Run{Status: domain.RunStatusIdle},
	}
}

// Start validates the request and launches a new diagnosis run. Starting
// while a run is in flight supersedes it: the older run's response is
// discarded when it eventually arrives.
func (s *Session) Start(req domain.Request) (RunHandle, error) {
	target := strings.TrimSpace(req.Target)
	if target == "" {
		return RunHandle{}, ErrTargetRequired
	}
	mode, err := domain.ParseMode(string(req.Mode))
	if err != nil {
		return RunHandle{}, err
	}
	req = domain.Request{Target: target, Mode: mode}

	now := time.Now().UTC()
	s.mu.Lock()
	if !isValidTransition(s.run.Status, domain.RunStatusRunning) {
		status := s.run.Status
		s.mu.Unlock()
		return RunHandle{}, fmt.Errorf("invalid transition: %s -> %s", status, domain.RunStatusRunning)
	}
	s.seq++
	id := s.seq
	if s.run.Status == domain.RunStatusRunning {
		logrus.Debugf("session: run %d supersedes run %d", id, s.run.ID)
	}
	s.run = domain.Run{
		ID:        id,
		Request:   req,
		Status:    domain.RunStatusRunning,
		StartedAt: &now,
	}
	s.mu.Unlock()

	s.publish(Event{
		RunID:   id,
		Type:    EventTypeStatus,
		Status:  domain.RunStatusRunning,
		Message: "diagnosis started for " + target,
	})

	done := make(chan struct{})
	go s.runDiagnosis(id, req, done)
	return RunHandle{ID: id, Done: done}, nil
}

// Cancel abandons the active run: its identifier is marked stale so a late
// response is discarded, and the session view returns to idle. The in-flight
// transport call is not aborted; the backend contract offers no cancellation
// signal, so the bounded client timeout settles it. No-op when idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	if !isValidTransition(s.run.Status, domain.RunStatusIdle) {
		s.mu.Unlock()
		return
	}
	id := s.run.ID
	s.run = domain.Run{Status: domain.RunStatusIdle}
	s.mu.Unlock()

	logrus.Infof("session: run %d cancelled", id)
	s.publish(Event{
		RunID:   id,
		Type:    EventTypeStatus,
		Status:  domain.RunStatusIdle,
		Message: "diagnosis cancelled",
	})
}

// Artifact fetches a downloadable byproduct scoped to the most recent run's
// request. Valid only once the latest run reached a terminal state; never
// retried and never mutates run state.
func (s *Session) Artifact(ctx context.Context, kind domain.ArtifactKind) (domain.Artifact, error) {
	s.mu.RLock()
	run := s.run
	s.mu.RUnlock()

	switch run.Status {
	case domain.RunStatusRunning:
		return domain.Artifact{}, ErrDiagnosisRunning
	case domain.RunStatusIdle:
		return domain.Artifact{}, ErrNoDiagnosis
	}

	artifact, err := s.diagnoser.FetchArtifact(ctx, run.Request, kind)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %v", ErrArtifactUnavailable, err)
	}
	return artifact, nil
}

// State returns a snapshot of the current run and the exposed result set.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Run:          s.run,
		Results:      append([]domain.CheckResult(nil), s.results...),
		Summary:      s.summary,
		FixScript:    s.fixScript,
		ResultsRunID: s.resultsRunID,
	}
}

// Events returns all events with sequence greater than sinceSeq.
func (s *Session) Events(sinceSeq int64) []Event {
	return s.events.Since(sinceSeq)
}

// runDiagnosis performs the backend call and applies the outcome, subject to
// the stale-response guard. Transport timeouts are the diagnoser's concern.
func (s *Session) runDiagnosis(id int64, req domain.Request, done chan struct{}) {
	defer close(done)

	raw, err := s.diagnoser.Diagnose(context.Background(), req)
	if err != nil {
		s.completeFailure(id, domain.FailureNetwork, err)
		return
	}

	report, err := normalizeReport(raw)
	if err != nil {
		s.completeFailure(id, domain.FailureBadResponse, err)
		return
	}

	s.completeSuccess(id, report)
}

// completeSuccess applies a normalized report when the run is still current.
func (s *Session) completeSuccess(id int64, report normalizedReport) {
	now := time.Now().UTC()

	s.mu.Lock()
	if s.run.ID != id || !isValidTransition(s.run.Status, domain.RunStatusSucceeded) {
		s.mu.Unlock()
		logrus.Debugf("session: dropping stale response for run %d", id)
		return
	}
	s.run.Status = domain.RunStatusSucceeded
	s.run.CompletedAt = &now
	s.results = report.Results
	s.summary = report.Summary
	s.fixScript = report.FixScript
	s.resultsRunID = id
	s.mu.Unlock()

	logrus.Infof("session: run %d succeeded with %d checks", id, len(report.Results))
	summary := report.Summary
	s.publish(Event{
		RunID:   id,
		Type:    EventTypeStatus,
		Status:  domain.RunStatusSucceeded,
		Message: "diagnosis completed",
	})
	s.publish(Event{
		RunID:   id,
		Type:    EventTypeResult,
		Status:  domain.RunStatusSucceeded,
		Results: report.Results,
		Summary: &summary,
	})
}

// completeFailure records a terminal failure when the run is still current.
// The exposed result set is left untouched so the last-known-good results
// stay visible.
func (s *Session) completeFailure(id int64, kind domain.FailureKind, cause error) {
	now := time.Now().UTC()
	failure := &domain.Failure{Kind: kind, Message: cause.Error()}

	s.mu.Lock()
	if s.run.ID != id || !isValidTransition(s.run.Status, domain.RunStatusFailed) {
		s.mu.Unlock()
		logrus.Debugf("session: dropping stale failure for run %d: %v", id, cause)
		return
	}
	s.run.Status = domain.RunStatusFailed
	s.run.CompletedAt = &now
	s.run.Failure = failure
	s.mu.Unlock()

	logrus.Warnf("session: run %d failed (%s): %v", id, kind, cause)
	s.publish(Event{
		RunID:   id,
		Type:    EventTypeStatus,
		Status:  domain.RunStatusFailed,
		Message: "diagnosis failed",
	})
	s.publish(Event{
		RunID:   id,
		Type:    EventTypeError,
		Status:  domain.RunStatusFailed,
		Message: cause.Error(),
		Failure: failure,
	})
}

// publish stores event history and forwards to the notifier when set.
func (s *Session) publish(event Event) {
	published := s.events.Publish(event)
	if s.notify != nil {
		s.notify(published)
	}
}

// isValidTransition enforces the allowed run state machine edges. A running
// run may be superseded by another Start, hence running -> running.
func isValidTransition(from, to domain.RunStatus) bool {
	switch from {
	case domain.RunStatusIdle:
		return to == domain.RunStatusRunning
	case domain.RunStatusRunning:
		return to == domain.RunStatusRunning || to == domain.RunStatusSucceeded ||
			to == domain.RunStatusFailed || to == domain.RunStatusIdle
	case domain.RunStatusSucceeded, domain.RunStatusFailed:
		return to == domain.RunStatusRunning
	default:
		return false
	}
}
