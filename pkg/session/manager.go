package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"todoctl/pkg/credstore"
	"todoctl/pkg/logger"
	"todoctl/pkg/user"
)

type IAuthService interface {
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	Register(ctx context.Context, name, email, password string) (*user.User, string, error)
}

// Manager owns the process-wide session state: hydrates it from the
// credential store at startup and mutates it through login/register/logout.
// Operations may interleave; the last committed write wins and subscribers
// always observe the latest committed snapshot.
type Manager struct {
	mu    sync.Mutex
	state State
	store credstore.Store
	auth  IAuthService
	subs  []func(State)
}

func NewManager(store credstore.Store, auth IAuthService) *Manager {
	return &Manager{
		state: State{Loading: true},
		store: store,
		auth:  auth,
	}
}

// State returns the latest committed snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State().Authenticated()
}

// Subscribe registers fn to run after every committed state change.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) commit(s State) {
	m.mu.Lock()
	m.state = s
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	// Notify outside the lock: a subscriber may trigger another session
	// operation (the gate runs the login flow).
	for _, fn := range subs {
		fn(s)
	}
}

// Hydrate restores the session from the credential store. Runs once at
// startup. Any storage or decode problem degrades to "no session"; a partial
// pair (one key without the other) is treated as absent and the stray key is
// cleared. Never returns an error.
func (m *Manager) Hydrate(ctx context.Context) {
	token, hasToken, tokenErr := m.store.Get(ctx, credstore.KeyAuthToken)
	rawUser, hasUser, userErr := m.store.Get(ctx, credstore.KeyUser)

	if tokenErr != nil || userErr != nil {
		logger.Log(ctx).Errorf("session: can't read stored credentials: %v, %v", tokenErr, userErr)
		m.commit(State{})
		return
	}

	if hasToken && hasUser {
		u := new(user.User)
		jsonErr := json.Unmarshal([]byte(rawUser), u)
		if jsonErr == nil {
			m.commit(State{User: u, Token: token})
			return
		}
		logger.Log(ctx).Errorf("session: stored user record is unreadable: %v", jsonErr)
	}

	if hasToken != hasUser {
		// A crash between the two writes left a stray key. Clear it so the
		// next start begins clean.
		logger.Log(ctx).Warnf("session: partial credential pair found, clearing")
		if err := m.store.RemoveMany(ctx, credstore.KeyAuthToken, credstore.KeyUser); err != nil {
			logger.Log(ctx).Errorf("session: can't clear partial credential pair: %v", err)
		}
	}

	m.commit(State{})
}

// Login exchanges credentials for a session. Returns false on any failure —
// remote rejection, transport error, malformed response, or a persistence
// failure after the remote accepted — and leaves the previous state
// untouched in those cases. Never returns an error to the caller.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	u, token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		logger.Log(ctx).Errorf("session: login failed: %v", err)
		return false
	}
	if u == nil || token == `` {
		logger.Log(ctx).Error("session: login response misses user or token")
		return false
	}
	if err := m.SetAuthData(ctx, u, token); err != nil {
		logger.Log(ctx).Errorf("session: can't persist session after login: %v", err)
		return false
	}
	return true
}

// Register has the same boolean contract as Login, against the signup
// operation.
func (m *Manager) Register(ctx context.Context, name, email, password string) bool {
	u, token, err := m.auth.Register(ctx, name, email, password)
	if err != nil {
		logger.Log(ctx).Errorf("session: registration failed: %v", err)
		return false
	}
	if u == nil || token == `` {
		logger.Log(ctx).Error("session: signup response misses user or token")
		return false
	}
	if err := m.SetAuthData(ctx, u, token); err != nil {
		logger.Log(ctx).Errorf("session: can't persist session after registration: %v", err)
		return false
	}
	return true
}

// Logout erases the persisted pair (best effort) and resets the in-memory
// session regardless of the store outcome. Never fails visibly.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.RemoveMany(ctx, credstore.KeyAuthToken, credstore.KeyUser); err != nil {
		logger.Log(ctx).Errorf("session: can't remove stored credentials: %v", err)
	}
	m.commit(State{})
}

// SetAuthData persists a confirmed credential pair, then commits it to
// memory. Unlike Login/Register it propagates store-write failures: a
// confirmed credential silently failing to persist would leave the UI
// believing a durable session exists.
func (m *Manager) SetAuthData(ctx context.Context, u *user.User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session: can't encode user record, %w", err)
	}
	if err := m.store.Set(ctx, credstore.KeyAuthToken, token); err != nil {
		return fmt.Errorf("session: can't store auth token, %w", err)
	}
	if err := m.store.Set(ctx, credstore.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("session: can't store user record, %w", err)
	}
	m.commit(State{User: u, Token: token})
	return nil
}

// Invalidate drops the in-memory session after the backend rejected the
// credential with a 401. The HTTP layer has already erased the stored pair.
func (m *Manager) Invalidate(ctx context.Context) {
	logger.Log(ctx).Warnf("session: credential rejected by backend, dropping session")
	m.commit(State{})
}
