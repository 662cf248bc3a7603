package client

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

	"github.com/pkg/errors"
)

// Endpoints holds the backend paths, relative to BaseURL.
type Endpoints struct {
	SessionStart string
	ChatStream   string
	Health       string
	SessionInfo  string
	Direct       string
}

// DefaultEndpoints returns the paths served by the learning backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SessionStart: "/api/start_session",
		ChatStream:   "/api/chat/stream",
		Health:       "/health",
		SessionInfo:  "/api/session",
		Direct:       "/api/chat/direct",
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	var apiErr ErrorResponse
	if json.Unmarshal([]byte(e.Body), &apiErr) == nil && apiErr.Error != "" {
		if apiErr.Details != "" {
			return fmt.Sprintf("API %d: %s (%s)", e.Code, apiErr.Error, apiErr.Details)
		}
		return fmt.Sprintf("API %d: %s", e.Code, apiErr.Error)
	}
	if e.Body == "" {
		return fmt.Sprintf("API %d", e.Code)
	}
	return fmt.Sprintf("API %d: %s", e.Code, e.Body)
}

type Client struct {
	BaseURL   string
	Endpoints Endpoints

	// HTTPClient serves the short request/response calls.
	HTTPClient *http.Client
	// StreamClient serves the chat stream. It has no timeout; a stream ends
	// when the backend closes it or the request context is cancelled.
	StreamClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Endpoints: DefaultEndpoints(),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		StreamClient: &http.Client{Timeout: 0},
	}
}

// StartSession asks the backend for a new session.
func (c *Client) StartSession(ctx context.Context) (*SessionStartResponse, error) {
	resp, err := c.postJSON(ctx, c.HTTPClient, c.Endpoints.SessionStart, struct{}{})
	if err != nil {
		return nil, errors.Wrap(err, "start session")
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, statusError(resp)
	}
	var result SessionStartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &result, nil
}

// Probe hits the session-start endpoint and reports whether it answered 2xx.
// The response body is discarded.
func (c *Client) Probe(ctx context.Context) error {
	resp, err := c.postJSON(ctx, c.HTTPClient, c.Endpoints.SessionStart, struct{}{})
	if err != nil {
		return errors.Wrap(err, "probe")
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.get(ctx, c.Endpoints.Health)
	if err != nil {
		return nil, errors.Wrap(err, "health check failed")
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, statusError(resp)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		// Only the status matters for liveness.
		return &HealthResponse{Status: "ok"}, nil
	}
	return &health, nil
}

// OpenStream posts a chat message and returns the streamed response body.
// The caller owns the body. Cancelling ctx aborts both the request and any
// read in progress on the body.
func (c *Client) OpenStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+c.Endpoints.ChatStream, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "chat stream")
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "text/event-stream")
	hreq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.StreamClient.Do(hreq)
	if err != nil {
		return nil, errors.Wrap(err, "chat stream")
	}
	if !ok(resp) {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

// Direct sends a chat message and waits for the whole reply.
func (c *Client) Direct(ctx context.Context, req ChatRequest) (*DirectResponse, error) {
	resp, err := c.postJSON(ctx, c.HTTPClient, c.Endpoints.Direct, req)
	if err != nil {
		return nil, errors.Wrap(err, "direct chat")
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, statusError(resp)
	}
	var result DirectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode direct")
	}
	if !result.Success {
		return &result, errors.Errorf("direct chat: %s", result.Error)
	}
	return &result, nil
}

func (c *Client) SessionInfo(ctx context.Context, sessionID, userID string) (*SessionInfoResponse, error) {
	path := fmt.Sprintf("%s/%s?user_id=%s", c.Endpoints.SessionInfo, url.PathEscape(sessionID), url.QueryEscape(userID))
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, statusError(resp)
	}
	var result SessionInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	if !result.Success {
		return &result, errors.Errorf("get session: %s", result.Error)
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.HTTPClient.Do(req)
}

func (c *Client) postJSON(ctx context.Context, hc *http.Client, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return hc.Do(req)
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
