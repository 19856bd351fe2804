package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/domain"
)

// normalizedReport is the decoded form of a diagnosis payload.
type normalizedReport struct {
	Results   []domain.CheckResult
	Summary   domain.Summary
	FixScript string
}

// wireCheck carries the per-check fields shared by both payload shapes.
type wireCheck struct {
	TestName      string   `json:"test_name"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	FixSuggestion string   `json:"fix_suggestion"`
	Commands      []string `json:"commands"`
}

// normalizeReport decodes a raw diagnosis payload into an ordered result set.
// Two shapes are tolerated, discriminated by the presence of a "results" key:
// a structured report {summary, results, fix_script?} and a flat map from
// check name to per-check result. Either may arrive wrapped in a
// {success, data} envelope.
func normalizeReport(raw []byte) (normalizedReport, error) {
	payload, err := unwrapEnvelope(raw)
	if err != nil {
		return normalizedReport{}, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return normalizedReport{}, fmt.Errorf("diagnosis payload is not a JSON object: %w", err)
	}

	if _, ok := probe["results"]; ok {
		return normalizeStructured(payload)
	}
	return normalizeFlat(payload)
}

// unwrapEnvelope removes the optional {success, data} transport envelope.
// Payloads without a boolean success field pass through untouched.
func unwrapEnvelope(raw []byte) ([]byte, error) {
	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Success == nil {
		return raw, nil
	}
	if !*env.Success {
		if strings.TrimSpace(env.Error) != "" {
			return nil, fmt.Errorf("backend refused diagnosis: %s", env.Error)
		}
		return nil, errors.New("backend reported an unsuccessful diagnosis")
	}
	if len(env.Data) == 0 {
		return nil, errors.New("diagnosis envelope is missing data")
	}
	return env.Data, nil
}

// normalizeStructured decodes the pre-aggregated report shape. The reported
// summary is trusted only when it matches the tally of results.
func normalizeStructured(payload []byte) (normalizedReport, error) {
	var report struct {
		Summary struct {
			Passed   int `json:"passed"`
			Failed   int `json:"failed"`
			Warnings int `json:"warnings"`
			Total    int `json:"total"`
		} `json:"summary"`
		Results   []wireCheck `json:"results"`
		FixScript string      `json:"fix_script"`
	}
	if err := json.Unmarshal(payload, &report); err != nil {
		return normalizedReport{}, fmt.Errorf("decode structured report: %w", err)
	}

	results := make([]domain.CheckResult, 0, len(report.Results))
	for i, check := range report.Results {
		name := strings.TrimSpace(check.TestName)
		if name == "" {
			name = strings.TrimSpace(check.Name)
		}
		if name == "" {
			return normalizedReport{}, fmt.Errorf("report result %d has no test name", i)
		}
		result, err := buildResult(name, check)
		if err != nil {
			return normalizedReport{}, err
		}
		results = append(results, result)
	}

	summary := domain.Summary{
		Passed:   report.Summary.Passed,
		Failed:   report.Summary.Failed,
		Warnings: report.Summary.Warnings,
		Total:    report.Summary.Total,
	}
	if tally := domain.TallyResults(results); summary != tally {
		logrus.Warnf("session: reported summary %+v disagrees with result tally %+v, using tally", summary, tally)
		summary = tally
	}

	return normalizedReport{
		Results:   results,
		Summary:   summary,
		FixScript: report.FixScript,
	}, nil
}

// normalizeFlat decodes the per-tool map shape. encoding/json maps do not
// preserve key order, and insertion order is display order, so the object is
// walked token by token.
func normalizeFlat(payload []byte) (normalizedReport, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))

	tok, err := dec.Token()
	if err != nil {
		return normalizedReport{}, fmt.Errorf("decode diagnosis map: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return normalizedReport{}, errors.New("diagnosis payload is not a JSON object")
	}

	var results []domain.CheckResult
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return normalizedReport{}, fmt.Errorf("decode diagnosis map key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return normalizedReport{}, errors.New("diagnosis map key is not a string")
		}

		var check wireCheck
		if err := dec.Decode(&check); err != nil {
			return normalizedReport{}, fmt.Errorf("check %q is not a result object: %w", name, err)
		}
		result, err := buildResult(name, check)
		if err != nil {
			return normalizedReport{}, err
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return normalizedReport{}, errors.New("diagnosis payload contains no checks")
	}

	return normalizedReport{
		Results: results,
		Summary: domain.TallyResults(results),
	}, nil
}

// buildResult validates one check entry and produces its immutable result.
func buildResult(name string, check wireCheck) (domain.CheckResult, error) {
	status, err := domain.ParseCheckStatus(check.Status)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("check %q: %w", name, err)
	}

	return domain.CheckResult{
		CheckName:     name,
		Status:        status,
		Message:       check.Message,
		FixSuggestion: check.FixSuggestion,
		Commands:      check.Commands,
	}, nil
}
