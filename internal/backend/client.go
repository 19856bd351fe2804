package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/domain"
)

// DefaultTimeout bounds backend calls when settings carry no explicit value.
const DefaultTimeout = 30 * time.Second

const userAgent = "net-troubleshooter"

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Endpoint string
	Code     int
}

// Error describes the failed endpoint and status code.
func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned HTTP %d", e.Endpoint, e.Code)
}

// Client calls the diagnostics backend over HTTP. Every endpoint is a GET
// with query parameters, and every call is bounded by the client timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Diagnose requests a diagnosis run and returns the raw response payload.
// Interpreting the payload is the session's job.
func (c *Client) Diagnose(ctx context.Context, req domain.Request) ([]byte, error) {
	logrus.Debugf("backend: diagnosing %s (mode %s)", req.Target, req.Mode)
	resp, err := c.get(ctx, "/diagnose", requestQuery(req))
	if err != nil {
		return nil, err
	}
	return readBody(resp)
}

// FetchArtifact downloads the report or fix script for the given request.
func (c *Client) FetchArtifact(ctx context.Context, req domain.Request, kind domain.ArtifactKind) (domain.Artifact, error) {
	var endpoint, filename, fallbackType string
	switch kind {
	case domain.ArtifactReport:
		endpoint, filename, fallbackType = "/report", "network_report.md", "text/markdown"
	case domain.ArtifactFixScript:
		endpoint, filename, fallbackType = "/fix-script", "fix_networking.sh", "text/x-shellscript"
	default:
		return domain.Artifact{}, fmt.Errorf("%w: %q", domain.ErrInvalidArtifactKind, kind)
	}

	logrus.Debugf("backend: fetching %s for %s", kind, req.Target)
	resp, err := c.get(ctx, endpoint, requestQuery(req))
	if err != nil {
		return domain.Artifact{}, err
	}
	data, err := readBody(resp)
	if err != nil {
		return domain.Artifact{}, err
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = fallbackType
	}
	return domain.Artifact{
		Kind:      kind,
		Filename:  filename,
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// QuickStatus fetches the frontend/backend reachability panel data.
func (c *Client) QuickStatus(ctx context.Context) (domain.QuickStatus, error) {
	resp, err := c.get(ctx, "/quick-check", nil)
	if err != nil {
		return domain.QuickStatus{}, err
	}
	defer resp.Body.Close()

	var status domain.QuickStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return domain.QuickStatus{}, fmt.Errorf("decode quick status: %w", err)
	}
	return status, nil
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// get issues one bounded GET and rejects non-2xx responses.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return resp, nil
}

// requestQuery encodes the target/mode pair for every diagnosis endpoint.
func requestQuery(req domain.Request) url.Values {
	q := url.Values{}
	q.Set("target", req.Target)
	q.Set("mode", string(req.Mode))
	return q
}

// readBody drains and closes a response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}
