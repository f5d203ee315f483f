// Package gateway wraps outbound backend calls: it attaches the persisted
// bearer token to every request and applies a page-context-aware policy to
// authorization failures.
package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/homehero/heroctl/internal/clock"
	"github.com/homehero/heroctl/internal/tokenstore"
)

// DefaultRedirectDelay gives a page-local error handler time to navigate
// before the gateway forces the login page.
const DefaultRedirectDelay = 100 * time.Millisecond

// LoginPath is the forced re-authentication destination.
const LoginPath = "/login"

// Options tunes gateway behavior. Zero values select defaults.
type Options struct {
	Base          http.RoundTripper
	Clock         clock.Clock
	RedirectDelay time.Duration
}

// Gateway is an http.RoundTripper implementing the authorized request
// pipeline. It depends on the session manager only through the shared token
// store, so it works from a previously cached token even before the first
// session resolution completes.
type Gateway struct {
	base          http.RoundTripper
	store         tokenstore.Store
	nav           Navigator
	clock         clock.Clock
	logger        *slog.Logger
	redirectDelay time.Duration
}

// New creates a Gateway reading bearer tokens from store and consulting nav
// for the ambient navigation context.
func New(store tokenstore.Store, nav Navigator, logger *slog.Logger, opts Options) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	return &Gateway{
		base:          opts.Base,
		store:         store,
		nav:           nav,
		clock:         opts.Clock,
		logger:        logger,
		redirectDelay: opts.RedirectDelay,
	}
}

// Client returns an http.Client dispatching through the gateway.
func (g *Gateway) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: g, Timeout: timeout}
}

// RoundTrip attaches the persisted bearer token when present, dispatches,
// and routes 401/403 responses through the classification policy. The
// response is always surfaced to the caller unchanged.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	token, err := g.store.Load(req.Context())
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, tokenstore.ErrTokenNotFound):
		g.logger.Warn("failed to read token store", "error", err)
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := g.base.RoundTrip(req)
	if err != nil {
		g.logger.Error("backend request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"error", err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		g.handleAuthFailure(req, resp)
	}
	return resp, nil
}

// handleAuthFailure applies the classification policy. The body is
// re-buffered so the caller still reads the original response.
func (g *Gateway) handleAuthFailure(req *http.Request, resp *http.Response) {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	path := g.nav.Path()
	disposition := Classify(path, envelope.Error)

	g.logger.Debug("authorization failure classified",
		"status", resp.StatusCode,
		"message", envelope.Error,
		"path", path,
		"disposition", disposition.String())

	if disposition != DispositionSessionInvalid {
		return
	}
	if IsAuthPath(path) {
		return
	}

	if err := g.store.Clear(req.Context()); err != nil {
		g.logger.Warn("failed to clear persisted token", "error", err)
	}
	g.scheduleLoginRedirect(path)
}

// scheduleLoginRedirect forces navigation to the login page after a short
// delay, unless the user has moved in the meantime. The re-check keeps a
// stale timer from clobbering a navigation the page already performed.
func (g *Gateway) scheduleLoginRedirect(origin string) {
	g.clock.AfterFunc(g.redirectDelay, func() {
		current := g.nav.Path()
		if current != origin {
			return
		}
		if IsAuthPath(current) || IsServiceDetailPath(current) {
			return
		}
		g.logger.Info("session invalid, redirecting to login", "from", current)
		g.nav.Navigate(LoginPath)
	})
}
