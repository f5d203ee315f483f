// Package session owns the authenticated-identity lifecycle: it tracks the
// current user, keeps the persisted bearer token fresh while one is signed
// in, and exposes an auth-ready signal so callers never act on an unresolved
// auth state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/homehero/heroctl/internal/clock"
	"github.com/homehero/heroctl/internal/identity"
	"github.com/homehero/heroctl/internal/models"
	"github.com/homehero/heroctl/internal/tokenstore"
)

// State is the session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateResolving
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// ErrNotAuthenticated is returned by RequireAuth once resolution completes
// without a signed-in identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// DefaultRefreshInterval matches the provider's observed ~60 minute token
// lifetime with a 10 minute safety margin.
const DefaultRefreshInterval = 50 * time.Minute

// Provider is the identity provider surface the manager depends on.
type Provider interface {
	Subscribe(fn identity.StateFunc) func()
	Resume(ctx context.Context) (*models.Identity, error)
	IDToken(ctx context.Context, force bool) (string, error)
	SignOut(ctx context.Context) error
}

// Options tunes manager behavior. Zero values select defaults.
type Options struct {
	RefreshInterval time.Duration
	Clock           clock.Clock
}

// Manager is the process-wide session state machine.
type Manager struct {
	provider        Provider
	store           tokenstore.Store
	clock           clock.Clock
	logger          *slog.Logger
	refreshInterval time.Duration

	mu          sync.Mutex
	state       State
	identity    *models.Identity
	stopRefresh chan struct{}
	subs        map[int]func(State, *models.Identity)
	nextSub     int
	unsubscribe func()

	ready     chan struct{}
	readyOnce sync.Once

	refreshGroup singleflight.Group
}

// NewManager creates a session manager with default refresh interval and
// wall-clock time.
func NewManager(provider Provider, store tokenstore.Store, logger *slog.Logger) *Manager {
	return NewManagerWithOptions(provider, store, logger, Options{})
}

// NewManagerWithOptions creates a session manager with explicit options.
func NewManagerWithOptions(provider Provider, store tokenstore.Store, logger *slog.Logger, opts Options) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Manager{
		provider:        provider,
		store:           store,
		clock:           opts.Clock,
		logger:          logger,
		refreshInterval: opts.RefreshInterval,
		state:           StateUninitialized,
		subs:            make(map[int]func(State, *models.Identity)),
		ready:           make(chan struct{}),
	}
}

// Initialize subscribes to the provider's state-change stream and starts the
// asynchronous resolution of the current identity. Exactly one resolution
// transitions the state out of uninitialized; callers must treat
// resolving/uninitialized as "do not decide yet".
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}
	m.state = StateResolving
	m.mu.Unlock()

	m.unsubscribe = m.provider.Subscribe(m.onProviderState)

	go func() {
		if _, err := m.provider.Resume(ctx); err != nil && !errors.Is(err, identity.ErrNoSession) {
			m.logger.Warn("session resolution failed", "error", err)
		}
	}()
}

// onProviderState applies a provider sign-in state change.
func (m *Manager) onProviderState(id *models.Identity) {
	if id != nil {
		m.applyAuthenticated(*id)
	} else {
		m.applyAnonymous()
	}
}

// applyAuthenticated stores the identity, persists a non-forced ID token and
// starts the refresh loop.
func (m *Manager) applyAuthenticated(id models.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, err := m.provider.IDToken(ctx, false)
	if err != nil {
		// Identity is present but unusable for API calls until the next
		// refresh succeeds; the stale persisted token must not linger.
		m.logger.Error("failed to obtain id token", "error", err)
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.Warn("failed to clear persisted token", "error", clearErr)
		}
	} else if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("failed to persist bearer token", "error", err)
	}

	m.mu.Lock()
	m.identity = &id
	m.state = StateAuthenticated
	var stop chan struct{}
	if m.stopRefresh == nil {
		stop = make(chan struct{})
		m.stopRefresh = stop
	}
	m.mu.Unlock()

	m.logger.Info("session authenticated", "email", id.Email)
	m.markResolved()
	m.notifySubscribers()

	if stop != nil {
		go m.refreshLoop(stop)
	}
}

// applyAnonymous clears the identity and persisted token and cancels the
// refresh loop. Idempotent.
func (m *Manager) applyAnonymous() {
	m.mu.Lock()
	stop := m.stopRefresh
	m.stopRefresh = nil
	m.identity = nil
	changed := m.state != StateAnonymous
	m.state = StateAnonymous
	m.mu.Unlock()

	if stop != nil {
		close(stop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear persisted token", "error", err)
	}

	m.markResolved()
	if changed {
		m.logger.Info("session anonymous")
		m.notifySubscribers()
	}
}

// refreshLoop force-refreshes the persisted token on a fixed interval while
// the session stays authenticated. Failures are logged and swallowed; the
// next tick is the retry.
func (m *Manager) refreshLoop(stop <-chan struct{}) {
	ticker := m.clock.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			// A tick may already be buffered when sign-out lands; the
			// stop channel wins.
			select {
			case <-stop:
				return
			default:
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			m.ForceRefreshToken(ctx)
			cancel()
		}
	}
}

// ForceRefreshToken fetches a fresh token and persists it, returning the
// bearer string. It never fails the caller: on refresh errors it logs and
// returns the last persisted token, empty when none exists. Concurrent calls
// share one provider exchange.
func (m *Manager) ForceRefreshToken(ctx context.Context) string {
	v, _, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		token, err := m.provider.IDToken(ctx, true)
		if err != nil {
			m.logger.Warn("token refresh failed, using last persisted token", "error", err)
			prev, loadErr := m.store.Load(ctx)
			if loadErr != nil {
				return "", nil
			}
			return prev, nil
		}

		// Do not write after sign-out: a racing refresh must not
		// resurrect a token for a session that no longer exists.
		if m.State() == StateAuthenticated {
			if err := m.store.Save(ctx, token); err != nil {
				m.logger.Warn("failed to persist refreshed token", "error", err)
			}
		}
		return token, nil
	})
	return v.(string)
}

// SignOut revokes the provider session (best effort), clears the identity
// and the persisted token, and cancels the refresh loop. Idempotent.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("provider sign-out failed", "error", err)
	}
	// The provider notifies subscribers on sign-out, but when it is
	// unavailable the local state must still be cleared.
	m.applyAnonymous()
	return nil
}

// Close tears the manager down: provider subscription removed, refresh loop
// cancelled. The session state itself is left as-is.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.mu.Lock()
	stop := m.stopRefresh
	m.stopRefresh = nil
	m.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the current identity, nil unless authenticated.
func (m *Manager) Identity() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// Ready is closed once the first resolution completes.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitUntilResolved blocks until the initial resolution completes or ctx
// ends.
func (m *Manager) WaitUntilResolved(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequireAuth is the route-guard helper: it waits for resolution (never
// deciding while resolving) and then returns the identity or
// ErrNotAuthenticated.
func (m *Manager) RequireAuth(ctx context.Context) (*models.Identity, error) {
	if err := m.WaitUntilResolved(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticated && m.identity != nil {
		id := *m.identity
		return &id, nil
	}
	return nil, ErrNotAuthenticated
}

// Subscribe registers a state-change listener and returns an unsubscribe
// function.
func (m *Manager) Subscribe(fn func(State, *models.Identity)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) markResolved() {
	m.readyOnce.Do(func() { close(m.ready) })
}

func (m *Manager) notifySubscribers() {
	m.mu.Lock()
	state := m.state
	var id *models.Identity
	if m.identity != nil {
		copied := *m.identity
		id = &copied
	}
	fns := make([]func(State, *models.Identity), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state, id)
	}
}
