package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"net-troubleshooter/internal/domain"
)

// TestDiagnoseSendsRequestQuery verifies the diagnose call hits the right
// endpoint with target and mode as query parameters and returns the raw body.
func TestDiagnoseSendsRequestQuery(t *testing.T) {
	var gotPath, gotTarget, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTarget = r.URL.Query().Get("target")
		gotMode = r.URL.Query().Get("mode")
		w.Write([]byte(`{"dns":{"status":"PASS","message":"ok"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", 5*time.Second)
	body, err := client.Diagnose(context.Background(), domain.Request{Target: "example.com", Mode: domain.ModeExpert})
	if err != nil {
		t.Fatalf("Diagnose returned error: %v", err)
	}

	if gotPath != "/diagnose" {
		t.Fatalf("expected path /diagnose, got %q", gotPath)
	}
	if gotTarget != "example.com" || gotMode != "expert" {
		t.Fatalf("unexpected query: target=%q mode=%q", gotTarget, gotMode)
	}
	if len(body) == 0 {
		t.Fatal("expected raw payload bytes")
	}
}

// TestDiagnoseReportsStatusError verifies a non-2xx response surfaces as a
// StatusError carrying the endpoint and code.
func TestDiagnoseReportsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	_, err := client.Diagnose(context.Background(), domain.Request{Target: "example.com", Mode: domain.ModeBeginner})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Endpoint != "/diagnose" || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

// TestDiagnoseHonorsTimeout verifies a slow backend trips the client timeout
// instead of hanging the caller.
func TestDiagnoseHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(srv.URL, 30*time.Millisecond)
	_, err := client.Diagnose(context.Background(), domain.Request{Target: "example.com", Mode: domain.ModeBeginner})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

// TestFetchArtifactMetadata verifies each artifact kind maps to its endpoint,
// filename, and media type.
func TestFetchArtifactMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report":
			w.Header().Set("Content-Type", "text/markdown")
			w.Write([]byte("# Network Report"))
		case "/fix-script":
			// Suppress the Content-Type header to exercise the fallback.
			w.Header()["Content-Type"] = nil
			w.Write([]byte("#!/bin/bash"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	req := domain.Request{Target: "example.com", Mode: domain.ModeBeginner}

	report, err := client.FetchArtifact(context.Background(), req, domain.ArtifactReport)
	if err != nil {
		t.Fatalf("FetchArtifact(report) returned error: %v", err)
	}
	want := domain.Artifact{
		Kind:      domain.ArtifactReport,
		Filename:  "network_report.md",
		MediaType: "text/markdown",
		Data:      []byte("# Network Report"),
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report artifact mismatch (-want +got):\n%s", diff)
	}

	script, err := client.FetchArtifact(context.Background(), req, domain.ArtifactFixScript)
	if err != nil {
		t.Fatalf("FetchArtifact(fix_script) returned error: %v", err)
	}
	if script.Filename != "fix_networking.sh" {
		t.Fatalf("expected fix_networking.sh, got %q", script.Filename)
	}
	if script.MediaType != "text/x-shellscript" {
		t.Fatalf("expected fallback media type, got %q", script.MediaType)
	}
}

// TestFetchArtifactRejectsUnknownKind verifies an invalid kind fails before
// any request is sent.
func TestFetchArtifactRejectsUnknownKind(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	_, err := client.FetchArtifact(context.Background(), domain.Request{Target: "example.com"}, domain.ArtifactKind("screenshot"))
	if !errors.Is(err, domain.ErrInvalidArtifactKind) {
		t.Fatalf("expected ErrInvalidArtifactKind, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no backend calls, got %d", calls)
	}
}

// TestQuickStatusDecodes verifies the quick-check payload unmarshals into the
// status panel shape.
func TestQuickStatusDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quick-check" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"frontend": {"status": "online", "url": "http://localhost:5173"},
			"backend": {"status": "healthy", "url": "http://localhost:8000"},
			"overall_status": "All systems operational"
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	status, err := client.QuickStatus(context.Background())
	if err != nil {
		t.Fatalf("QuickStatus returned error: %v", err)
	}

	want := domain.QuickStatus{
		Frontend:      domain.ServiceStatus{Status: "online", URL: "http://localhost:5173"},
		Backend:       domain.ServiceStatus{Status: "healthy", URL: "http://localhost:8000"},
		OverallStatus: "All systems operational",
	}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Fatalf("quick status mismatch (-want +got):\n%s", diff)
	}
}

// TestHealthReportsBackendState verifies the health probe returns nil for a
// live backend and a StatusError when the backend answers with an error code.
func TestHealthReportsBackendState(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy backend, got %v", err)
	}

	healthy = false
	err := client.Health(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", statusErr.Code)
	}
}
