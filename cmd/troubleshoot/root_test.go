package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"net-troubleshooter/internal/config"
	"net-troubleshooter/internal/domain"
	"net-troubleshooter/internal/session"
)

// runCLI executes the root command in-process and captures its output. Flag
// globals are reset first because cobra keeps values across Execute calls.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvMode, "")
	t.Setenv(config.EnvTimeoutSeconds, "")

	rootFlags.backend = ""
	rootFlags.timeout = 0
	diagnoseFlags.mode = ""
	artifactFlags.mode = ""
	artifactFlags.out = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// TestDiagnoseCommandRendersResults drives the diagnose command against a
// stub backend and checks the rendered output.
func TestDiagnoseCommandRendersResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mode"); got != "expert" {
			t.Errorf("mode = %q, want expert", got)
		}
		w.Write([]byte(`{
			"dns": {"status": "PASS", "message": "resolved"},
			"ssl": {"status": "WARNING", "message": "expires soon", "fix_suggestion": "renew the certificate"}
		}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "diagnose", "example.com", "--backend", srv.URL, "--mode", "expert", "--no-color")
	if err != nil {
		t.Fatalf("diagnose returned error: %v\n%s", err, out)
	}

	for _, want := range []string{"== example.com ==", "PASS", "dns: resolved", "WARN", "renew the certificate", "1 passed, 0 failed, 1 warnings (2 checks)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

// TestDiagnoseCommandFailsOnFailingChecks checks the non-zero exit path when
// the run completes but a check reports FAIL.
func TestDiagnoseCommandFailsOnFailingChecks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cors": {"status": "FAIL", "message": "blocked"}}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "diagnose", "example.com", "--backend", srv.URL, "--no-color")
	if err == nil {
		t.Fatalf("expected error for failing checks, output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "1 failing checks") {
		t.Fatalf("error = %v, want failing checks count", err)
	}
}

// TestDiagnoseCommandSavesArtifacts checks per-target artifact downloads.
func TestDiagnoseCommandSavesArtifacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/diagnose":
			w.Write([]byte(`{"dns": {"status": "PASS", "message": "resolved"}}`))
		case "/report":
			w.Write([]byte("# Report"))
		case "/fix-script":
			w.Write([]byte("#!/bin/bash"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	outDir := t.TempDir()
	t.Cleanup(func() {
		diagnoseFlags.saveReport = false
		diagnoseFlags.saveFixScript = false
		diagnoseFlags.outDir = "."
	})

	out, err := runCLI(t, "diagnose", "example.com", "--backend", srv.URL, "--no-color",
		"--save-report", "--save-fix-script", "--out-dir", outDir)
	if err != nil {
		t.Fatalf("diagnose returned error: %v\n%s", err, out)
	}

	for _, name := range []string{"example.com_network_report.md", "example.com_fix_networking.sh"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}
}

// TestStatusCommandRendersPanel checks the quick status output.
func TestStatusCommandRendersPanel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"frontend": {"status": "online", "url": "http://localhost:5173"},
			"backend": {"status": "healthy", "url": "http://localhost:8000"},
			"overall_status": "All systems operational"
		}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "status", "--backend", srv.URL, "--no-color")
	if err != nil {
		t.Fatalf("status returned error: %v\n%s", err, out)
	}
	for _, want := range []string{"Frontend  online", "Backend   healthy", "All systems operational"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

// TestTargetFilename checks target sanitization for artifact names.
func TestTargetFilename(t *testing.T) {
	got := targetFilename("https://example.com:8080/path", "fix_networking.sh")
	want := "https___example.com_8080_path_fix_networking.sh"
	if got != want {
		t.Fatalf("targetFilename = %q, want %q", got, want)
	}
}

// TestRenderOutcomeShowsFailure checks the failed-run rendering path.
func TestRenderOutcomeShowsFailure(t *testing.T) {
	var buf bytes.Buffer
	renderOutcome(&buf, targetOutcome{
		target: "example.com",
		state: session.State{
			Run: domain.Run{
				Status:  domain.RunStatusFailed,
				Failure: &domain.Failure{Kind: domain.FailureNetwork, Message: "connection refused"},
			},
		},
	})

	out := buf.String()
	if !strings.Contains(out, "run failed") || !strings.Contains(out, "connection refused") {
		t.Fatalf("unexpected failure rendering:\n%s", out)
	}
}
