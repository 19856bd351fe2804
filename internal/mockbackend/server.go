// Package mockbackend is a deterministic stand-in for the Python diagnostics
// backend. It serves the same endpoints and wire shapes so the dashboard and
// CLI can be exercised without real network probes. Check outcomes derive
// from keywords in the target string, which makes every scenario scriptable.
package mockbackend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/domain"
)

// Known values for the shape query parameter and --shape flag.
const (
	ShapeEnvelope = "envelope"
	ShapeFlat     = "flat"
	ShapeReport   = "report"
	ShapeRefuse   = "refuse"
)

const maxDelay = 10 * time.Second

// Server generates diagnosis responses. The zero value serves the envelope
// shape with empty URLs in the quick-check panel.
type Server struct {
	// DefaultShape is used when a request carries no shape parameter.
	DefaultShape string
	// BackendURL and FrontendURL are echoed in the quick-check panel.
	BackendURL  string
	FrontendURL string
}

// Routes builds the HTTP handler with all backend endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/diagnose", s.handleDiagnose)
	r.Get("/report", s.handleReport)
	r.Get("/fix-script", s.handleFixScript)
	r.Get("/quick-check", s.handleQuickCheck)
	r.Get("/health", s.handleHealth)

	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.Errorf("mockbackend: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

// parseRequest validates the target/mode pair every diagnosis endpoint takes.
func parseRequest(r *http.Request) (string, domain.Mode, bool, string) {
	target := strings.TrimSpace(r.URL.Query().Get("target"))
	if target == "" {
		return "", "", false, "target query parameter is required"
	}
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		return "", "", false, err.Error()
	}
	return target, mode, true, ""
}

// applyDelay sleeps when the request asks for artificial latency, capped so a
// typo cannot wedge the server.
func applyDelay(r *http.Request) {
	raw := r.URL.Query().Get("delay_ms")
	if raw == "" {
		return
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return
	}
	delay := time.Duration(ms) * time.Millisecond
	if delay > maxDelay {
		delay = maxDelay
	}
	time.Sleep(delay)
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	target, mode, ok, msg := parseRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	applyDelay(r)

	// Targets containing "boom" simulate a crashed diagnosis engine.
	if strings.Contains(strings.ToLower(target), "boom") {
		writeError(w, http.StatusInternalServerError, "diagnosis engine crashed")
		return
	}

	shape := r.URL.Query().Get("shape")
	if shape == "" {
		shape = s.DefaultShape
	}
	if shape == "" {
		shape = ShapeEnvelope
	}

	logrus.Debugf("mockbackend: diagnose target=%s mode=%s shape=%s", target, mode, shape)
	checks := checksFor(target, mode)

	switch shape {
	case ShapeFlat:
		payload, err := marshalFlat(checks)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	case ShapeReport:
		data, err := json.Marshal(buildReport(target, checks))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
	case ShapeRefuse:
		writeJSON(w, http.StatusOK, envelope{Success: false, Error: "target did not pass pre-checks: " + target})
	case ShapeEnvelope:
		payload, err := marshalFlat(checks)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: payload})
	default:
		writeError(w, http.StatusBadRequest, "unknown shape: "+shape)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	target, mode, ok, msg := parseRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	applyDelay(r)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(buildMarkdownReport(target, mode, checksFor(target, mode))))
}

func (s *Server) handleFixScript(w http.ResponseWriter, r *http.Request) {
	target, mode, ok, msg := parseRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	applyDelay(r)

	w.Header().Set("Content-Type", "text/x-shellscript; charset=utf-8")
	w.Write([]byte(buildFixScript(target, checksFor(target, mode))))
}

func (s *Server) handleQuickCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.QuickStatus{
		Frontend:      domain.ServiceStatus{Status: "online", URL: s.FrontendURL},
		Backend:       domain.ServiceStatus{Status: "healthy", URL: s.BackendURL},
		OverallStatus: "All systems operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
