package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msgtrik/trik/internal/bus"
	"github.com/msgtrik/trik/internal/session"
	"github.com/msgtrik/trik/internal/status"
	"go.uber.org/zap"
)

// Client is the REST gateway to the Msgtrik server. Every authenticated
// request carries a bearer token from the session snapshot; a 401 triggers
// exactly one token-refresh-and-retry before the request fails with
// ErrAuthFailed.
type Client struct {
	baseURL string
	http    *http.Client
	snap    *session.Snapshot
	bus     *bus.Bus
	logger  *zap.Logger

	// PageLimit is the limit query parameter for history pages.
	PageLimit int

	// Machine, when set, tracks the session lifecycle across token
	// refreshes: Refreshing while the exchange is in flight, Active on
	// success, Expired when the refresh retry still fails.
	Machine *status.Machine
}

// New creates a gateway client. bus and logger may be nil.
func New(baseURL string, snap *session.Snapshot, b *bus.Bus, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		snap:      snap,
		bus:       b,
		logger:    logger,
		PageLimit: 50,
	}
}

// do issues an authenticated JSON request, refreshing the access token once
// on 401. out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, err := c.doOnce(ctx, method, path, query, body, out, true)
	if err == nil && status != http.StatusUnauthorized {
		return nil
	}
	if status != http.StatusUnauthorized {
		return err
	}

	if refreshErr := c.refreshTokens(ctx); refreshErr != nil {
		c.authFailed()
		return ErrAuthFailed
	}

	status, err = c.doOnce(ctx, method, path, query, body, out, true)
	if status == http.StatusUnauthorized {
		c.authFailed()
		return ErrAuthFailed
	}
	return err
}

// doPublic issues a request without a bearer token and without the refresh
// retry (login, register, token refresh itself).
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	_, err := c.doOnce(ctx, method, path, nil, body, out, false)
	return err
}

// doOnce performs a single HTTP round trip. It reports a 401 through the
// returned status so the caller can decide whether to refresh.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any, withAuth bool) (int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	if withAuth {
		if token := c.accessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID), zap.Error(err))
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return http.StatusUnauthorized, &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.logger.Warn("request rejected", zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID), zap.Int("status", resp.StatusCode))
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// refreshTokens exchanges the stored refresh token for a new access token
// and persists the result.
func (c *Client) refreshTokens(ctx context.Context) error {
	u, err := c.snap.Load()
	if err != nil {
		return err
	}
	if u == nil || u.Refresh == "" {
		return fmt.Errorf("no refresh token available")
	}
	if c.Machine != nil {
		_ = c.Machine.Transition(status.Refreshing)
	}

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.doPublic(ctx, http.MethodPost, "/users/token/refresh", map[string]string{"refresh": u.Refresh}, &resp); err != nil {
		return err
	}
	if resp.Access == "" {
		return fmt.Errorf("refresh response missing access token")
	}
	if err := c.snap.UpdateTokens(resp.Access, resp.Refresh); err != nil {
		return err
	}
	c.logger.Info("access token refreshed")
	if c.Machine != nil {
		_ = c.Machine.Transition(status.Active)
	}
	if c.bus != nil {
		c.bus.Publish(bus.Event{Kind: bus.KindTokenRefreshed, Timestamp: time.Now()})
	}
	return nil
}

func (c *Client) authFailed() {
	c.logger.Warn("authentication failed after refresh retry")
	if c.Machine != nil {
		_ = c.Machine.Transition(status.Expired)
	}
	if c.bus != nil {
		c.bus.Publish(bus.Event{Kind: bus.KindAuthFailed, Timestamp: time.Now()})
	}
}

func (c *Client) accessToken() string {
	u, err := c.snap.Load()
	if err != nil || u == nil {
		return ""
	}
	return u.Access
}

// readDetail pulls a human-readable reason out of an error body. Falls back
// to the raw text for non-JSON bodies.
func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
