// Package session owns the authenticated-user state machine. The Manager is
// the single source of truth for "who is logged in"; consumers receive View
// snapshots and the action methods, never the mutable state itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/csvdesk/csvdesk/internal/client/credstore"
	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/common"
	"github.com/csvdesk/csvdesk/internal/logging"
)

// Status is the session state.
//
// Transitions:
//
//	Anonymous  --login--> Loading --identity ok--> Authenticated
//	Loading    --identity denied--> Anonymous (credentials cleared)
//	Loading    --server unreachable--> Guest (credentials retained)
//	any        --logout/expiry--> Anonymous
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusGuest         Status = "guest"
)

// View is an immutable snapshot of the session handed to consumers.
// Invariant: User is non-nil iff Status is StatusAuthenticated.
type View struct {
	User   *models.UserRef
	Status Status
}

// IsAdmin reports whether the session belongs to an authenticated admin.
func (v View) IsAdmin() bool {
	return v.Status == StatusAuthenticated && v.User.IsAdmin()
}

// Identity is the slice of the request gateway the manager depends on.
type Identity interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	Signup(ctx context.Context, username, password string) error
	Me(ctx context.Context) (*models.UserRef, error)
}

// Manager drives the session state machine.
type Manager struct {
	api   Identity
	creds credstore.Store
	log   logging.Logger

	mu        sync.Mutex
	user      *models.UserRef
	status    Status
	listeners map[int]func(View)
	nextID    int
}

// New builds a Manager. The initial state is Loading when a token pair is
// already persisted (Bootstrap will resolve it), Anonymous otherwise.
func New(ctx context.Context, api Identity, creds credstore.Store, log logging.Logger) *Manager {
	m := &Manager{
		api:       api,
		creds:     creds,
		log:       log,
		status:    StatusAnonymous,
		listeners: make(map[int]func(View)),
	}

	pair, err := creds.Load(ctx)
	if err != nil {
		log.Warn(ctx, "credential load failed at startup", "error", err)
	}
	if pair.Complete() {
		m.status = StatusLoading
	}
	return m
}

// Snapshot returns the current view.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{User: m.user, Status: m.status}
}

// IsAdmin is a pure predicate over the current state.
func (m *Manager) IsAdmin() bool {
	return m.Snapshot().IsAdmin()
}

// Subscribe registers a listener notified on every transition. The returned
// function removes it.
func (m *Manager) Subscribe(fn func(View)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// setState applies a transition and notifies listeners outside the lock.
// The user pointer is dropped for every non-authenticated status, keeping
// the View invariant by construction.
func (m *Manager) setState(status Status, user *models.UserRef) {
	if status != StatusAuthenticated {
		user = nil
	}

	m.mu.Lock()
	m.status = status
	m.user = user
	view := View{User: m.user, Status: m.status}
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(View), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	// Ids grow monotonically, so sorted ids notify listeners in the
	// order they subscribed.
	for _, fn := range fns {
		fn(view)
	}
}

// Bootstrap resolves the startup state. With no persisted pair it settles
// on Anonymous immediately; otherwise it fetches the identity. A denied
// fetch clears the stale credentials and degrades to Anonymous; an
// unreachable server degrades to Guest with the credentials retained so a
// later restart can try again. Bootstrap never leaves the session Loading.
func (m *Manager) Bootstrap(ctx context.Context) error {
	pair, err := m.creds.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "credential load failed during bootstrap", "error", err)
	}
	if !pair.Complete() {
		m.setState(StatusAnonymous, nil)
		return nil
	}

	if exp := pair.AccessExpiresAt(); !exp.IsZero() && exp.Before(time.Now()) {
		m.log.Info(ctx, "persisted access token already expired", "expired_at", exp)
	}

	m.setState(StatusLoading, nil)
	return m.fetchIdentity(ctx)
}

// fetchIdentity runs the identity fetch shared by Bootstrap and Login.
func (m *Manager) fetchIdentity(ctx context.Context) error {
	user, err := m.api.Me(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			m.log.Warn(ctx, "identity fetch failed, server unreachable", "error", err)
			m.setState(StatusGuest, nil)
			return err
		}
		m.log.Info(ctx, "identity fetch rejected, clearing credentials", "error", err)
		if clearErr := m.creds.Clear(ctx); clearErr != nil {
			m.log.Warn(ctx, "failed to clear credentials", "error", clearErr)
		}
		m.setState(StatusAnonymous, nil)
		return err
	}

	m.setState(StatusAuthenticated, user)
	return nil
}

// Login authenticates, persists the returned pair, and fetches the
// identity. On authentication failure the state is left untouched and the
// error (an AuthFailure with a displayable detail) is surfaced to the
// caller.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	pair, err := m.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := m.creds.Save(ctx, *pair); err != nil {
		// Session continues in memory; it just will not survive a restart.
		m.log.Warn(ctx, "failed to persist tokens", "error", err)
	}

	m.setState(StatusLoading, nil)
	if err := m.fetchIdentity(ctx); err != nil {
		return fmt.Errorf("identity fetch after login failed: %w", err)
	}
	return nil
}

// Signup registers the account and, only after the registration succeeded,
// performs the same Login with the same credentials. Registration itself
// does not authenticate.
func (m *Manager) Signup(ctx context.Context, username, password string) error {
	if err := m.api.Signup(ctx, username, password); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return m.Login(ctx, username, password)
}

// Logout clears the credentials and resets to Anonymous synchronously.
// No network call is made and none is awaited.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Warn(ctx, "failed to clear credentials on logout", "error", err)
	}
	m.setState(StatusAnonymous, nil)
}

// Expire is the hook wired into the gateway's session-expired handler: the
// credentials are already gone, only the in-memory state needs resetting.
func (m *Manager) Expire() {
	m.setState(StatusAnonymous, nil)
}
