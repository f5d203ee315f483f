// Package api is the typed client for the HomeHero backend REST API. All
// requests dispatch through the authorized gateway; this layer adds paths,
// payloads and the error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNotFound marks a 404 from the backend.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx backend response with the server message kept
// verbatim so business-rule rejections reach the user unmodified.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsAuthFailure reports whether the response was a 401 or 403.
func (e *Error) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// TokenRefresher force-refreshes the bearer token ahead of a sensitive
// write. The session manager implements it.
type TokenRefresher interface {
	ForceRefreshToken(ctx context.Context) string
}

// Client calls the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	refresher  TokenRefresher
	logger     *slog.Logger
}

// NewClient creates a backend client. httpClient should be the gateway's
// client; refresher may be nil when no session manager is running.
func NewClient(baseURL string, httpClient *http.Client, refresher TokenRefresher, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		refresher:  refresher,
		logger:     logger,
	}
}

// do executes one backend call, decoding a 2xx body into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps an error response to the taxonomy: 404 becomes
// ErrNotFound, everything else keeps the server message verbatim.
func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode == http.StatusNotFound {
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, envelope.Error)
		}
		return ErrNotFound
	}

	return &Error{StatusCode: resp.StatusCode, Message: envelope.Error}
}

// itoa formats a price bound for a query parameter.
func itoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
