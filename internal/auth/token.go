package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fivetwenty-io/identity-console/internal/constants"
)

// TokenManager supplies bearer tokens to the HTTP layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is a bearer token and its expiry. A zero ExpiresAt never expires.
type Token struct {
	AccessToken string    `json:"access_token" yaml:"access_token"`
	TokenType   string    `json:"token_type"   yaml:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"   yaml:"expires_at"`
}

// Valid reports whether the token can still be sent, keeping a safety buffer
// before expiry.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token for concurrent readers.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// ExpiryFromJWT reads the exp claim of a JWT without verifying its
// signature. The backend verifies; the client only needs to fail fast.
func ExpiryFromJWT(token string) (time.Time, error) {
	if strings.Count(token, ".") != constants.TokenPartsCount-1 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}

// StaticTokenManager always returns the same token.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a token manager for a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the fixed token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

// RefreshToken is a no-op.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

// SetToken replaces the fixed token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}
