// ABOUTME: Session manager owning the authenticated-session state machine
// ABOUTME: Handles login, register, logout, restore and 401-driven eviction

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// Fallback messages for the error slot when the server supplies none
const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// State is a step of the session lifecycle
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is a read-only snapshot of the manager's state
type Session struct {
	User          *models.User
	Token         string
	Authenticated bool
}

// EventKind identifies a session transition
type EventKind int

const (
	EventAuthenticating EventKind = iota
	EventLoggedIn
	EventRegistered
	EventAuthFailed
	EventLoggedOut
	EventRestored
	EventRefreshed
	EventEvicted
)

// Event is delivered to subscribers after each transition
type Event struct {
	Kind    EventKind
	Session Session
	Err     error
}

// API is the subset of the gateway the manager needs
type API interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, input models.Registration) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Manager is the single owner of the session. It implements
// client.SessionHook so the gateway can read the token and evict.
type Manager struct {
	api   API
	store Store
	now   func() time.Time

	// ops serialises session-mutating operations; group collapses
	// concurrent calls of the same kind into one.
	ops   sync.Mutex
	group singleflight.Group

	restoreOnce sync.Once

	mu         sync.Mutex
	state      State
	user       *models.User
	token      string
	lastErr    string
	loggingOut bool
	subs       map[int]func(Event)
	nextSub    int
}

// NewManager creates an anonymous manager backed by api and store
func NewManager(api API, store Store) *Manager {
	return &Manager{
		api:   api,
		store: store,
		now:   time.Now,
		subs:  make(map[int]func(Event)),
	}
}

// Token returns the held bearer token, or "" when anonymous
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a snapshot of the session
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Session {
	s := Session{Token: m.token, Authenticated: m.state == Authenticated}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// LastError returns the message of the last failed login or registration
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError empties the error slot without touching authentication state
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = ""
}

// Subscribe registers fn for session events and returns a function that
// removes it. fn is called without the manager's lock held.
func (m *Manager) Subscribe(fn func(Event)) func() {
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

func (m *Manager) notify(kind EventKind, err error) {
	m.mu.Lock()
	ev := Event{Kind: kind, Session: m.snapshotLocked(), Err: err}
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Login exchanges credentials for a token. On failure the error slot is set
// and any previously authenticated session is kept.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (Session, error) {
	return m.exchange(ctx, "login", EventLoggedIn, loginFailed, func(ctx context.Context) (*models.AuthResponse, error) {
		resp, err := m.api.Login(ctx, creds)
		return resp, asAuthenticationError(err)
	})
}

// Register creates an account; success authenticates immediately
func (m *Manager) Register(ctx context.Context, input models.Registration) (Session, error) {
	return m.exchange(ctx, "register", EventRegistered, registrationFailed, func(ctx context.Context) (*models.AuthResponse, error) {
		return m.api.Register(ctx, input)
	})
}

func (m *Manager) exchange(ctx context.Context, key string, success EventKind, fallback string,
	do func(context.Context) (*models.AuthResponse, error)) (Session, error) {
	v, err, _ := m.group.Do(key, func() (any, error) {
		m.ops.Lock()
		defer m.ops.Unlock()
		return m.authenticate(ctx, success, fallback, do)
	})
	if err != nil {
		return m.Current(), err
	}
	return v.(Session), nil
}

func (m *Manager) authenticate(ctx context.Context, success EventKind, fallback string,
	do func(context.Context) (*models.AuthResponse, error)) (Session, error) {
	m.mu.Lock()
	prev := m.state
	m.state = Authenticating
	m.lastErr = ""
	m.mu.Unlock()
	m.notify(EventAuthenticating, nil)

	resp, err := do(ctx)
	if err == nil && (resp == nil || resp.Token == "") {
		err = client.NewError(client.ErrServer, "authentication response carried no token")
	}
	if err == nil {
		user := resp.User
		err = m.store.Save(Record{User: &user, Token: resp.Token, Authenticated: true})
		if err != nil {
			err = fmt.Errorf("failed to persist session: %w", err)
		}
	}

	if err != nil {
		m.mu.Lock()
		if prev == Authenticated && m.token != "" && m.user != nil {
			m.state = Authenticated
		} else {
			m.state = Anonymous
		}
		m.lastErr = client.Message(err, fallback)
		m.mu.Unlock()
		slog.Debug("Authentication failed", "error", err)
		m.notify(EventAuthFailed, err)
		return Session{}, err
	}

	user := resp.User
	m.mu.Lock()
	m.user = &user
	m.token = resp.Token
	m.state = Authenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()
	slog.Info("Session established", "user_id", user.ID, "role", user.Role)
	m.notify(success, nil)
	return snap, nil
}

// asAuthenticationError reclassifies a rejected login. The API reports bad
// credentials either as 401 or as a 422 on the email field.
func asAuthenticationError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || !errors.Is(err, client.ErrValidation) {
		return err
	}
	return &client.APIError{
		Kind:    client.ErrAuthentication,
		Status:  apiErr.Status,
		Message: apiErr.Message,
		Fields:  apiErr.Fields,
		Err:     apiErr,
	}
}

// Logout notifies the server when a token is held, then always clears the
// local session. Remote failures are logged and never returned.
func (m *Manager) Logout(ctx context.Context) {
	m.group.Do("logout", func() (any, error) {
		m.ops.Lock()
		defer m.ops.Unlock()

		m.mu.Lock()
		hadToken := m.token != ""
		m.loggingOut = true
		m.mu.Unlock()

		if hadToken {
			if err := m.api.Logout(ctx); err != nil {
				slog.Warn("Remote logout failed", "error", err)
			}
		}
		m.reset()
		m.mu.Lock()
		m.loggingOut = false
		m.mu.Unlock()
		m.notify(EventLoggedOut, nil)
		return nil, nil
	})
}

// Evict drops the session after the API rejected its token. A 401 on the
// remote logout call clears the session without an eviction event.
func (m *Manager) Evict(reason error) {
	m.mu.Lock()
	hadToken := m.token != ""
	silent := m.loggingOut
	m.mu.Unlock()

	m.reset()
	if hadToken && !silent {
		slog.Info("Session evicted", "reason", reason)
		m.notify(EventEvicted, reason)
	}
}

// reset clears persisted and in-memory state. The store is cleared under
// mu so a concurrent commit cannot write the token back afterwards.
func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		slog.Warn("Failed to clear persisted session", "error", err)
	}
	m.user = nil
	m.token = ""
	m.state = Anonymous
}

// RestoreSession re-establishes a persisted session by fetching the current
// user. Any failure clears the persisted record. Only the first call does
// any work.
func (m *Manager) RestoreSession(ctx context.Context) Session {
	m.restoreOnce.Do(func() {
		m.ops.Lock()
		defer m.ops.Unlock()
		m.restore(ctx)
	})
	return m.Current()
}

func (m *Manager) restore(ctx context.Context) {
	rec, err := m.store.Load()
	if err != nil {
		slog.Warn("Failed to load persisted session", "error", err)
		m.reset()
		return
	}
	if rec.Token == "" {
		if rec.User != nil || rec.Authenticated {
			m.reset()
		}
		return
	}
	if tokenExpired(rec.Token, m.now()) {
		slog.Info("Persisted token expired")
		m.reset()
		return
	}

	m.mu.Lock()
	m.token = rec.Token
	m.state = Authenticating
	m.mu.Unlock()

	user, err := m.api.CurrentUser(ctx)
	if err == nil && user == nil {
		err = client.NewError(client.ErrServer, "empty user response")
	}
	if err == nil {
		err = m.commit(rec.Token, Authenticating, user)
	}
	if err != nil {
		slog.Info("Session restore failed", "error", err)
		m.reset()
		return
	}
	m.notify(EventRestored, nil)
}

// Refresh re-fetches the current user and persists the updated identity
func (m *Manager) Refresh(ctx context.Context) (Session, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		m.ops.Lock()
		defer m.ops.Unlock()

		current := m.Current()
		if !current.Authenticated {
			return Session{}, client.NewError(client.ErrAuthorization, "not signed in")
		}
		user, err := m.api.CurrentUser(ctx)
		if err == nil && user == nil {
			err = client.NewError(client.ErrServer, "empty user response")
		}
		if err != nil {
			return Session{}, err
		}
		if err := m.commit(current.Token, Authenticated, user); err != nil {
			return Session{}, err
		}
		m.notify(EventRefreshed, nil)
		return m.Current(), nil
	})
	if err != nil {
		return m.Current(), err
	}
	return v.(Session), nil
}

// commit persists user against token and marks the session authenticated,
// provided the session still holds token in state from. An eviction that
// landed while the user lookup was in flight makes it fail without saving.
func (m *Manager) commit(token string, from State, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != token || m.state != from {
		return client.NewError(client.ErrAuthorization, "session evicted")
	}
	if err := m.store.Save(Record{User: user, Token: token, Authenticated: true}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.user = user
	m.state = Authenticated
	return nil
}
