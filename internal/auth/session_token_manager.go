package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// SessionTokenManager serves the token stored in the session and keeps the
// session in step with logins and 401 responses.
type SessionTokenManager struct {
	store    SessionStore
	tokens   *TokenStore
	mutex    sync.Mutex
	loaded   bool
	profile  *ops.UserProfile
	onExpire func()
}

// NewSessionTokenManager creates a token manager backed by store.
func NewSessionTokenManager(store SessionStore) *SessionTokenManager {
	return &SessionTokenManager{
		store:  store,
		tokens: NewTokenStore(),
	}
}

// OnExpire registers a callback run when the session is dropped after a 401
// or an expired token.
func (m *SessionTokenManager) OnExpire(callback func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onExpire = callback
}

// GetToken returns the session token. It fails with ErrNotLoggedIn when no
// session exists and with ErrTokenExpired when the JWT exp claim has passed.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()

	if !m.loaded {
		err := m.loadLocked()
		if err != nil {
			m.mutex.Unlock()

			return "", err
		}
	}

	token := m.tokens.Get()
	m.mutex.Unlock()

	if token == nil || token.AccessToken == "" {
		return "", constants.ErrNotLoggedIn
	}

	if !token.Valid() {
		m.Expire()

		return "", constants.ErrTokenExpired
	}

	return token.AccessToken, nil
}

// RefreshToken re-reads the session file, picking up a login done by another
// process.
func (m *SessionTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.loadLocked()
}

// SetToken stores a new token in memory. Use Login to persist it.
func (m *SessionTokenManager) SetToken(token string, expiresAt time.Time) {
	m.tokens.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})

	m.mutex.Lock()
	m.loaded = true
	m.mutex.Unlock()
}

// Login persists a new session from a login response.
func (m *SessionTokenManager) Login(response *ops.LoginResponse) error {
	if response == nil || response.AccessToken == "" {
		return constants.ErrNoTokenInLogin
	}

	profile := response.User

	err := m.store.Save(&Session{Token: response.AccessToken, Profile: &profile})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	m.SetToken(response.AccessToken, tokenExpiry(response.AccessToken, response.ExpiresIn))

	m.mutex.Lock()
	m.profile = &profile
	m.mutex.Unlock()

	return nil
}

// SaveProfile replaces the stored user profile, keeping the token.
func (m *SessionTokenManager) SaveProfile(profile *ops.UserProfile) error {
	token, err := m.GetToken(context.Background())
	if err != nil {
		return err
	}

	err = m.store.Save(&Session{Token: token, Profile: profile})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	m.mutex.Lock()
	m.profile = profile
	m.mutex.Unlock()

	return nil
}

// Profile returns the cached user profile, or nil.
func (m *SessionTokenManager) Profile() *ops.UserProfile {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.loaded {
		_ = m.loadLocked()
	}

	return m.profile
}

// Expire drops the session, e.g. after the backend answered 401.
func (m *SessionTokenManager) Expire() {
	m.tokens.Clear()

	m.mutex.Lock()
	m.profile = nil
	m.loaded = true
	callback := m.onExpire
	m.mutex.Unlock()

	_ = m.store.Clear()

	if callback != nil {
		callback()
	}
}

// Logout drops the session.
func (m *SessionTokenManager) Logout() error {
	m.tokens.Clear()

	m.mutex.Lock()
	m.profile = nil
	m.loaded = true
	m.mutex.Unlock()

	return m.store.Clear()
}

func (m *SessionTokenManager) loadLocked() error {
	session, err := m.store.Load()
	if err != nil {
		if errors.Is(err, constants.ErrSessionFileNotFound) {
			m.loaded = true
			m.tokens.Clear()
			m.profile = nil

			return nil
		}

		return err
	}

	m.loaded = true
	m.profile = session.Profile

	if session.Token == "" {
		m.tokens.Clear()

		return nil
	}

	m.tokens.Set(&Token{
		AccessToken: session.Token,
		TokenType:   "bearer",
		ExpiresAt:   tokenExpiry(session.Token, 0),
	})

	return nil
}

// tokenExpiry prefers the JWT exp claim and falls back to expires_in. Opaque
// tokens without expires_in never expire client side.
func tokenExpiry(token string, expiresIn int) time.Time {
	expiry, err := ExpiryFromJWT(token)
	if err == nil {
		return expiry
	}

	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}

	return time.Time{}
}
