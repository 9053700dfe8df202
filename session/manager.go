// Package session holds the current user identity and bearer token for
// the storefront client. The manager is a two-state machine - Anonymous
// or Authenticated - whose transitions keep in-memory state and persisted
// storage in lockstep: no transition ever leaves them divergent, and no
// failed transition commits partial state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/verdemarket/storefront/core"
)

// authAPI is the slice of AuthService the manager depends on
type authAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

// Manager owns the session state machine. It implements
// transport.CredentialSource so the request pipeline can read the token
// and tear the session down on persistent auth failures.
type Manager struct {
	mu     sync.RWMutex
	store  core.Store
	auth   authAPI
	logger core.Logger

	user  *User
	token string
}

// NewManager creates a session manager over the given persisted store
func NewManager(store core.Store, logger core.Logger) *Manager {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Manager{
		store:  store,
		logger: logger,
	}
}

// SetAuthService binds the auth service. Split from NewManager because
// the auth service needs the request pipeline and the pipeline needs this
// manager as its credential source.
func (m *Manager) SetAuthService(auth *AuthService) {
	m.auth = auth
}

// Initialize restores a persisted session, if one exists. Called once at
// startup. A missing or unreadable token/user pair leaves the manager
// Anonymous; it never fails hard on corrupt state.
func (m *Manager) Initialize(ctx context.Context) error {
	token, err := m.store.Get(ctx, core.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	rawUser, err := m.store.Get(ctx, core.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read stored user: %w", err)
	}

	if token == "" || rawUser == "" {
		m.logger.Debug("No persisted session found", map[string]interface{}{
			"operation": "session_init",
			"state":     "anonymous",
		})
		return nil
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn("Stored user record unreadable, staying anonymous", map[string]interface{}{
			"operation": "session_init",
			"error":     err.Error(),
		})
		return nil
	}

	m.mu.Lock()
	m.user = &user
	m.token = token
	m.mu.Unlock()

	m.logger.Info("Session restored", map[string]interface{}{
		"operation": "session_init",
		"state":     "authenticated",
		"user_id":   user.ID,
	})

	return nil
}

// Login authenticates against the backend and, on success, atomically
// transitions to Authenticated: token and user are persisted first, then
// committed to memory. On any failure the manager stays exactly as it
// was, persisted storage included.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	if m.auth == nil {
		return nil, fmt.Errorf("auth service not configured: %w", core.ErrMissingConfiguration)
	}

	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("Login failed", map[string]interface{}{
			"operation": "session_login",
			"email":     email,
			"error":     err.Error(),
		})
		return nil, err
	}

	if err := m.commit(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}

	m.logger.Info("Login succeeded", map[string]interface{}{
		"operation": "session_login",
		"user_id":   resp.User.ID,
	})

	user := resp.User
	return &user, nil
}

// Register creates an account and logs the new user in, with the same
// atomic-commit semantics as Login.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if m.auth == nil {
		return nil, fmt.Errorf("auth service not configured: %w", core.ErrMissingConfiguration)
	}

	resp, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := m.commit(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}

	m.logger.Info("Registration succeeded", map[string]interface{}{
		"operation": "session_register",
		"user_id":   resp.User.ID,
	})

	user := resp.User
	return &user, nil
}

// commit persists token+user and then updates memory. If the second write
// fails the first is rolled back so storage never holds half a session.
func (m *Manager) commit(ctx context.Context, token string, user *User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	if err := m.store.Set(ctx, core.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.store.Set(ctx, core.KeyUser, string(rawUser)); err != nil {
		_ = m.store.Delete(ctx, core.KeyToken)
		return fmt.Errorf("failed to persist user: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.token = token
	m.mu.Unlock()

	return nil
}

// Logout clears the persisted and in-memory session unconditionally.
// Idempotent: logging out while Anonymous is a no-op that still succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Delete(ctx, core.KeyToken); err != nil {
		return fmt.Errorf("failed to clear stored token: %w", err)
	}
	if err := m.store.Delete(ctx, core.KeyUser); err != nil {
		return fmt.Errorf("failed to clear stored user: %w", err)
	}

	m.mu.Lock()
	wasAuthenticated := m.user != nil
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	if wasAuthenticated {
		m.logger.Info("Logged out", map[string]interface{}{
			"operation": "session_logout",
		})
	}

	return nil
}

// Session returns a point-in-time snapshot of the session state
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Session{
		Token:         m.token,
		Authenticated: m.user != nil && m.token != "",
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// User returns a copy of the current user, or nil when Anonymous
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Authenticated reports whether a user is currently logged in
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.token != ""
}

// Token implements transport.CredentialSource
func (m *Manager) Token(ctx context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// StoreToken implements transport.CredentialSource. Used by the pipeline
// after a successful token refresh; the user record is left untouched.
func (m *Manager) StoreToken(ctx context.Context, token string) error {
	if err := m.store.Set(ctx, core.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	return nil
}

// ClearSession implements transport.CredentialSource
func (m *Manager) ClearSession(ctx context.Context) error {
	return m.Logout(ctx)
}
