// Package remote implements the gateway to the authoritative backend.
//
// The gateway classifies every failure as either offline (transport error or
// a misconfigured endpoint, recoverable by falling back to the local tier) or
// rejected (the server was reached and declined the operation, surfaced to
// the caller). It performs no retries; retry policy belongs to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/ratelimit"
)

const (
	// Outbound budget per resource: generous for a single-user client,
	// enough to keep a stuck retry loop from hammering the backend.
	defaultRPS   = 5.0
	defaultBurst = 10

	defaultTimeout = 15 * time.Second

	healthPath = "/health"
	apiPrefix  = "/api/v1"
)

// Client is a rate-limited HTTP client for the progress backend.
//
// It holds a single process-wide health flag: probed once on first use,
// updated by every request outcome, and never re-probed automatically.
// Callers that need to detect recovery from an offline state call Reprobe.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	mu      sync.Mutex
	probed  bool
	healthy bool
}

// New creates a gateway client for the backend at baseURL.
// A zero timeout falls back to the default 15s deadline.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Healthy reports whether the backend is reachable, probing once on first
// call. The result is cached for the process lifetime; subsequent request
// outcomes keep it current as a side effect.
func (c *Client) Healthy(ctx context.Context) bool {
	c.mu.Lock()
	if c.probed {
		healthy := c.healthy
		c.mu.Unlock()
		return healthy
	}
	c.mu.Unlock()

	return c.Reprobe(ctx)
}

// Reprobe forces a fresh liveness check and replaces the cached health flag.
func (c *Client) Reprobe(ctx context.Context) bool {
	healthy := c.probe(ctx)

	c.mu.Lock()
	c.probed = true
	c.healthy = healthy
	c.mu.Unlock()

	c.logger.Debug("backend probe", "healthy", healthy)
	return healthy
}

// probe performs one liveness GET against the health endpoint.
// A non-JSON content type means the URL points at something that is not our
// backend (a captive portal, a misconfigured proxy) and counts as offline.
func (c *Client) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// setHealthy updates the cached health flag from a request outcome.
func (c *Client) setHealthy(healthy bool) {
	c.mu.Lock()
	c.probed = true
	c.healthy = healthy
	c.mu.Unlock()
}

// envelope mirrors the backend's response wrapper.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// call executes one request and decodes the enveloped response body.
//
// Side effects on the health flag: any transport failure marks the backend
// unhealthy; any response, including a rejection, marks it healthy (the
// server was reached).
func call[T any](c *Client, ctx context.Context, method, path string, query url.Values, payload any) (*T, error) {
	// Rate-limit by resource (first path segment under the API prefix).
	if err := c.limiter.Wait(ctx, resourceKey(path)); err != nil {
		return nil, apperrors.Offline(err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("gateway request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		c.setHealthy(false)
		return nil, apperrors.Offline(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.setHealthy(false)
		return nil, apperrors.Offline(err)
	}

	// The server answered; whatever it said, it is reachable.
	c.setHealthy(true)

	if resp.StatusCode >= 400 {
		return nil, apperrors.Rejected(resp.StatusCode, rejectionMessage(raw, resp.StatusCode))
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeInternal, "decode %s response", path)
	}
	return &env.Data, nil
}

// rejectionMessage extracts the server-provided error message, falling back
// to the HTTP status text.
func rejectionMessage(raw []byte, status int) string {
	var env envelope[struct{}]
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// resourceKey returns the rate-limiter key for a request path.
func resourceKey(path string) string {
	trimmed := strings.TrimPrefix(path, apiPrefix+"/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}
