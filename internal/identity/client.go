// Package identity is the HTTP driver for the external identity provider.
// It owns provider credentials (refresh token plus profile), mints short-lived
// bearer tokens, and publishes sign-in state changes to subscribers.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/homehero/heroctl/internal/models"
)

// Provider-specific error types for precise handling by callers.
var (
	ErrNoSession           = errors.New("no identity provider session")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailExists         = errors.New("an account with this email already exists")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrRateLimited         = errors.New("identity provider rate limit exceeded")
	ErrTemporaryFailure    = errors.New("temporary identity provider failure")
)

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// sessionResponse is the provider's payload for sign-in, sign-up and
// federated exchange.
type sessionResponse struct {
	IDToken        string    `json:"idToken"`
	RefreshToken   string    `json:"refreshToken"`
	ExpiresIn      int       `json:"expiresIn"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	PhotoURL       string    `json:"photoUrl"`
	LastSignInTime time.Time `json:"lastSignInTime"`
}

// tokenResponse is the provider's payload for a token exchange.
type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
}

// session is the in-memory provider session: the identity, the long-lived
// refresh token, and the most recently minted bearer token.
type session struct {
	identity     models.Identity
	refreshToken string
	cached       *models.Token
}

// StateFunc receives the current identity on every sign-in state change,
// nil when signed out.
type StateFunc func(*models.Identity)

// Client talks to the identity provider REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore
	logger     *slog.Logger

	mu      sync.Mutex
	session *session
	subs    map[int]StateFunc
	nextSub int
}

// NewClient creates an identity provider client. creds persists the provider
// session across process restarts; pass a MemoryCredentials for ephemeral use.
func NewClient(baseURL string, creds CredentialStore, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		logger:  logger,
		subs:    make(map[int]StateFunc),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
			},
		},
	}
}

// Subscribe registers a sign-in state listener and returns an unsubscribe
// function. Listeners fire on sign-in, sign-out, profile update, and the
// initial Resume resolution.
func (c *Client) Subscribe(fn StateFunc) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// notify delivers the current identity to all subscribers. Callers must not
// hold c.mu.
func (c *Client) notify(id *models.Identity) {
	c.mu.Lock()
	fns := make([]StateFunc, 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Resume restores the provider session from persisted credentials and fires
// the state listeners with the outcome. Returns ErrNoSession when no
// credentials are stored.
func (c *Client) Resume(ctx context.Context) (*models.Identity, error) {
	stored, err := c.creds.Load()
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			c.notify(nil)
			return nil, ErrNoSession
		}
		c.notify(nil)
		return nil, fmt.Errorf("failed to load provider credentials: %w", err)
	}

	identity := models.Identity{
		Email:          stored.Email,
		DisplayName:    stored.DisplayName,
		PhotoURL:       stored.PhotoURL,
		LastSignInTime: stored.LastSignInTime,
	}

	c.mu.Lock()
	c.session = &session{identity: identity, refreshToken: stored.RefreshToken}
	c.mu.Unlock()

	c.logger.Info("identity provider session resumed", "email", identity.Email)
	c.notify(&identity)
	return &identity, nil
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp sessionResponse
	if err := c.post(ctx, "/v1/accounts:signIn", payload, &resp); err != nil {
		return nil, err
	}
	return c.adoptSession(resp)
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password, displayName, photoURL string) (*models.Identity, error) {
	payload := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
		"photoUrl":    photoURL,
	}

	var resp sessionResponse
	if err := c.post(ctx, "/v1/accounts:signUp", payload, &resp); err != nil {
		return nil, err
	}
	return c.adoptSession(resp)
}

// adoptSession installs a provider session payload as the current session,
// persists credentials, and notifies listeners.
func (c *Client) adoptSession(resp sessionResponse) (*models.Identity, error) {
	identity := models.Identity{
		Email:          resp.Email,
		DisplayName:    resp.DisplayName,
		PhotoURL:       resp.PhotoURL,
		LastSignInTime: resp.LastSignInTime,
	}
	if identity.LastSignInTime.IsZero() {
		identity.LastSignInTime = time.Now()
	}

	c.mu.Lock()
	c.session = &session{
		identity:     identity,
		refreshToken: resp.RefreshToken,
		cached:       models.NewToken(resp.IDToken, resp.ExpiresIn),
	}
	c.mu.Unlock()

	if err := c.creds.Save(&Credentials{
		Email:          identity.Email,
		DisplayName:    identity.DisplayName,
		PhotoURL:       identity.PhotoURL,
		RefreshToken:   resp.RefreshToken,
		LastSignInTime: identity.LastSignInTime,
	}); err != nil {
		c.logger.Warn("failed to persist provider credentials", "error", err)
	}

	c.notify(&identity)
	return &identity, nil
}

// IDToken returns a bearer token for the current session. When force is
// false a cached unexpired token is reused; when true a fresh token is
// always exchanged.
func (c *Client) IDToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return "", ErrNoSession
	}
	if !force && c.session.cached != nil && c.session.cached.IsValid() {
		token := c.session.cached.Bearer
		c.mu.Unlock()
		return token, nil
	}
	refreshToken := c.session.refreshToken
	c.mu.Unlock()

	payload := map[string]string{
		"grantType":    "refresh_token",
		"refreshToken": refreshToken,
	}

	var resp tokenResponse
	if err := c.post(ctx, "/v1/token", payload, &resp); err != nil {
		return "", err
	}

	c.mu.Lock()
	rotated := false
	if c.session != nil {
		c.session.cached = models.NewToken(resp.IDToken, resp.ExpiresIn)
		if resp.RefreshToken != "" && resp.RefreshToken != c.session.refreshToken {
			c.session.refreshToken = resp.RefreshToken
			rotated = true
		}
	}
	c.mu.Unlock()

	if rotated {
		c.persistRotatedRefreshToken(resp.RefreshToken)
	}

	return resp.IDToken, nil
}

// persistRotatedRefreshToken rewrites stored credentials after the provider
// rotated the refresh token. Losing a rotated token would strand the session,
// so failure is logged loudly.
func (c *Client) persistRotatedRefreshToken(refreshToken string) {
	stored, err := c.creds.Load()
	if err != nil {
		c.logger.Error("refresh token rotated but credentials unreadable", "error", err)
		return
	}
	stored.RefreshToken = refreshToken
	if err := c.creds.Save(stored); err != nil {
		c.logger.Error("refresh token rotated but credentials not saved", "error", err)
	}
}

// UpdateProfile changes the display name and photo of the signed-in account.
func (c *Client) UpdateProfile(ctx context.Context, displayName, photoURL string) (*models.Identity, error) {
	token, err := c.IDToken(ctx, false)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{"displayName": displayName, "photoUrl": photoURL}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/accounts:update", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute profile update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	c.mu.Lock()
	var identity models.Identity
	if c.session != nil {
		c.session.identity.DisplayName = displayName
		c.session.identity.PhotoURL = photoURL
		identity = c.session.identity
	}
	c.mu.Unlock()

	if stored, err := c.creds.Load(); err == nil {
		stored.DisplayName = displayName
		stored.PhotoURL = photoURL
		if err := c.creds.Save(stored); err != nil {
			c.logger.Warn("failed to persist profile update", "error", err)
		}
	}

	c.notify(&identity)
	return &identity, nil
}

// SignOut revokes the provider session. Revocation failures are logged only;
// local state is always cleared. Calling with no session is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil
	}
	refreshToken := c.session.refreshToken
	c.session = nil
	c.mu.Unlock()

	payload := map[string]string{"refreshToken": refreshToken}
	if err := c.post(ctx, "/v1/accounts:signOut", payload, nil); err != nil {
		c.logger.Warn("provider sign-out failed", "error", err)
	}

	if err := c.creds.Clear(); err != nil {
		c.logger.Warn("failed to clear provider credentials", "error", err)
	}

	c.notify(nil)
	return nil
}

// CurrentIdentity returns the signed-in identity, nil when signed out.
func (c *Client) CurrentIdentity() *models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	id := c.session.identity
	return &id
}

// post executes a JSON POST against the provider and decodes the response
// into out when non-nil.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "heroctl/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// decodeError maps a provider error response to a typed error.
func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var envelope errorResponse
	message := ""
	if err := json.Unmarshal(raw, &envelope); err == nil {
		message = envelope.Error
	}

	c.logger.Debug("identity provider error",
		"status_code", resp.StatusCode,
		"message", message)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		if message == "INVALID_REFRESH_TOKEN" || message == "TOKEN_EXPIRED" {
			return fmt.Errorf("%w: %s", ErrInvalidRefreshToken, message)
		}
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrEmailExists, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", ErrRateLimited, resp.Header.Get("Retry-After"))
	default:
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrTemporaryFailure, resp.StatusCode)
		}
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, message)
	}
}
