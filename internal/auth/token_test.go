package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/internal/auth"
	"github.com/fivetwenty-io/identity-console/internal/constants"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

// sessionToken builds a login token that expires after ttl, as the backend issues it.
func sessionToken(t *testing.T, ttl time.Duration) *auth.Token {
	t.Helper()

	raw := signedToken(t, jwt.MapClaims{
		"sub":  "ops@example.com",
		"role": "admin",
		"exp":  time.Now().Add(ttl).Unix(),
	})

	expiresAt, err := auth.ExpiryFromJWT(raw)
	require.NoError(t, err)

	return &auth.Token{AccessToken: raw, TokenType: "bearer", ExpiresAt: expiresAt}
}

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token func(t *testing.T) *auth.Token
		valid bool
	}{
		{
			name:  "no session",
			token: func(t *testing.T) *auth.Token { return nil },
		},
		{
			name:  "session without token",
			token: func(t *testing.T) *auth.Token { return &auth.Token{TokenType: "bearer"} },
		},
		{
			name: "opaque token never expires",
			token: func(t *testing.T) *auth.Token {
				return &auth.Token{AccessToken: "opaque-session", TokenType: "bearer"}
			},
			valid: true,
		},
		{
			name:  "login token with an hour left",
			token: func(t *testing.T) *auth.Token { return sessionToken(t, time.Hour) },
			valid: true,
		},
		{
			name:  "login token past exp",
			token: func(t *testing.T) *auth.Token { return sessionToken(t, -time.Hour) },
		},
		{
			name: "login token inside the expiry buffer",
			token: func(t *testing.T) *auth.Token {
				return sessionToken(t, constants.TokenExpirationBuffer/2)
			},
		},
		{
			name: "login token just outside the expiry buffer",
			token: func(t *testing.T) *auth.Token {
				return sessionToken(t, constants.TokenExpirationBuffer+time.Minute)
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, tt.token(t).Valid())
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())

	token := sessionToken(t, time.Hour)
	store.Set(token)
	require.NotNil(t, store.Get())
	assert.Equal(t, token.AccessToken, store.Get().AccessToken)
	assert.True(t, store.Get().Valid())

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestTokenStore_ConcurrentLoginAndReads(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	first := sessionToken(t, time.Hour)
	second := sessionToken(t, 2*time.Hour)

	var wg sync.WaitGroup

	for _, token := range []*auth.Token{first, second} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				store.Set(token)
			}
		}()
	}

	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				if current := store.Get(); current != nil {
					_ = current.Valid()
				}
			}
		}()
	}

	wg.Wait()

	final := store.Get()
	require.NotNil(t, final)
	assert.Contains(t, []string{first.AccessToken, second.AccessToken}, final.AccessToken)
}

func TestExpiryFromJWT(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	got, err := auth.ExpiryFromJWT(signedToken(t, jwt.MapClaims{"sub": "ops@example.com", "exp": expiry.Unix()}))
	require.NoError(t, err)
	assert.True(t, expiry.Equal(got))

	_, err = auth.ExpiryFromJWT(signedToken(t, jwt.MapClaims{"sub": "ops@example.com"}))
	require.ErrorIs(t, err, constants.ErrNoExpirationClaim)

	_, err = auth.ExpiryFromJWT("opaque-token")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)

	_, err = auth.ExpiryFromJWT("not.a.jwt")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("fixed")

	token, err := manager.GetToken(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)

	manager.SetToken("rotated", time.Time{})
	token, err = manager.GetToken(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)
	require.NoError(t, manager.RefreshToken(t.Context()))
}
