package mockbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"net-troubleshooter/internal/domain"
)

// mockCheck is one generated check outcome, kept ordered so the flat payload
// preserves document order.
type mockCheck struct {
	Name          string
	Status        domain.CheckStatus
	Message       string
	FixSuggestion string
	Commands      []string
}

// checksFor derives a deterministic check set from the target string. Targets
// containing "fail" or "down" produce failing checks, "warn" or "ssl" produce
// warnings, and "slow" flags latency. Expert mode appends deeper probes.
func checksFor(target string, mode domain.Mode) []mockCheck {
	lower := strings.ToLower(target)
	failing := strings.Contains(lower, "fail") || strings.Contains(lower, "down")
	warning := strings.Contains(lower, "warn") || strings.Contains(lower, "ssl")
	slow := strings.Contains(lower, "slow")

	checks := []mockCheck{
		{
			Name:    "dns_resolution",
			Status:  domain.CheckStatusPass,
			Message: fmt.Sprintf("%s resolves", target),
		},
		{
			Name:    "backend_connectivity",
			Status:  domain.CheckStatusPass,
			Message: "backend reachable",
		},
		{
			Name:    "cors_configuration",
			Status:  domain.CheckStatusPass,
			Message: "cross-origin requests allowed",
		},
	}

	if failing {
		checks[0] = mockCheck{
			Name:          "dns_resolution",
			Status:        domain.CheckStatusFail,
			Message:       fmt.Sprintf("%s does not resolve", target),
			FixSuggestion: "check the hostname and your DNS server",
			Commands:      []string{"nslookup " + target, "cat /etc/resolv.conf"},
		}
		checks[2] = mockCheck{
			Name:          "cors_configuration",
			Status:        domain.CheckStatusFail,
			Message:       "cross-origin requests are blocked",
			FixSuggestion: "add the frontend origin to the backend CORS allowlist",
			Commands:      []string{"curl -sI -H 'Origin: http://localhost:5173' " + target},
		}
	}
	if warning {
		checks = append(checks, mockCheck{
			Name:          "ssl_certificate",
			Status:        domain.CheckStatusWarning,
			Message:       "certificate expires within 14 days",
			FixSuggestion: "renew the certificate before it expires",
			Commands:      []string{"openssl s_client -connect " + target + ":443 -servername " + target},
		})
	}
	if slow {
		checks = append(checks, mockCheck{
			Name:          "latency",
			Status:        domain.CheckStatusWarning,
			Message:       "round trip above 500ms",
			FixSuggestion: "check for packet loss on the route",
		})
	}

	if mode == domain.ModeExpert {
		checks = append(checks,
			mockCheck{
				Name:    "traceroute",
				Status:  domain.CheckStatusPass,
				Message: "9 hops to " + target,
			},
			mockCheck{
				Name:    "mtu_probe",
				Status:  domain.CheckStatusPass,
				Message: "path MTU 1500",
			},
			mockCheck{
				Name:    "tls_versions",
				Status:  domain.CheckStatusPass,
				Message: "TLS 1.2 and 1.3 accepted",
			},
		)
	}

	return checks
}

// wireCheck is the per-tool payload in backend wire format.
type wireCheck struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	FixSuggestion string   `json:"fix_suggestion,omitempty"`
	Commands      []string `json:"commands,omitempty"`
}

// wireResult is one entry of the structured report shape.
type wireResult struct {
	TestName      string   `json:"test_name"`
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	FixSuggestion string   `json:"fix_suggestion,omitempty"`
	Commands      []string `json:"commands,omitempty"`
}

// wireReport is the structured report shape.
type wireReport struct {
	Results   []wireResult `json:"results"`
	Summary   wireSummary  `json:"summary"`
	FixScript string       `json:"fix_script,omitempty"`
}

// wireSummary mirrors the backend summary block.
type wireSummary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Total    int `json:"total"`
}

// envelope is the transport wrapper of the default shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// marshalFlat emits the per-tool map by hand so key order follows check
// order; encoding/json would sort map keys alphabetically.
func marshalFlat(checks []mockCheck) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, check := range checks {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(check.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(wireCheck{
			Status:        string(check.Status),
			Message:       check.Message,
			FixSuggestion: check.FixSuggestion,
			Commands:      check.Commands,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// tallyWire counts check outcomes into a wire summary block.
func tallyWire(checks []mockCheck) wireSummary {
	var summary wireSummary
	for _, check := range checks {
		switch check.Status {
		case domain.CheckStatusPass:
			summary.Passed++
		case domain.CheckStatusFail:
			summary.Failed++
		case domain.CheckStatusWarning:
			summary.Warnings++
		}
		summary.Total++
	}
	return summary
}

// buildReport assembles the structured report shape with a computed summary
// and an inline fix script.
func buildReport(target string, checks []mockCheck) wireReport {
	report := wireReport{
		Results:   make([]wireResult, 0, len(checks)),
		Summary:   tallyWire(checks),
		FixScript: buildFixScript(target, checks),
	}
	for _, check := range checks {
		report.Results = append(report.Results, wireResult{
			TestName:      check.Name,
			Status:        string(check.Status),
			Message:       check.Message,
			FixSuggestion: check.FixSuggestion,
			Commands:      check.Commands,
		})
	}
	return report
}

// buildFixScript composes a remediation script from the commands of failing
// and warning checks. Passing targets get a script that reports nothing to do.
func buildFixScript(target string, checks []mockCheck) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "# Remediation steps for %s\n", target)
	b.WriteString("set -euo pipefail\n")

	wrote := false
	for _, check := range checks {
		if check.Status == domain.CheckStatusPass || len(check.Commands) == 0 {
			continue
		}
		wrote = true
		fmt.Fprintf(&b, "\necho 'Fixing %s: %s'\n", check.Name, check.Message)
		for _, command := range check.Commands {
			b.WriteString(command)
			b.WriteByte('\n')
		}
	}
	if !wrote {
		b.WriteString("\necho 'All checks passed, nothing to fix.'\n")
	}
	return b.String()
}

// buildMarkdownReport renders the human-readable report artifact.
func buildMarkdownReport(target string, mode domain.Mode, checks []mockCheck) string {
	summary := tallyWire(checks)

	var b strings.Builder
	fmt.Fprintf(&b, "# Network Diagnosis Report\n\n")
	fmt.Fprintf(&b, "- Target: %s\n", target)
	fmt.Fprintf(&b, "- Mode: %s\n", mode)
	fmt.Fprintf(&b, "- Checks: %d (%d passed, %d failed, %d warnings)\n\n",
		summary.Total, summary.Passed, summary.Failed, summary.Warnings)

	for _, check := range checks {
		fmt.Fprintf(&b, "## %s: %s\n\n%s\n", check.Name, check.Status, check.Message)
		if check.FixSuggestion != "" {
			fmt.Fprintf(&b, "\nSuggested fix: %s\n", check.FixSuggestion)
		}
		if len(check.Commands) > 0 {
			b.WriteString("\n```\n")
			for _, command := range check.Commands {
				b.WriteString(command)
				b.WriteByte('\n')
			}
			b.WriteString("```\n")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
