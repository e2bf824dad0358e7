package opsclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
	"github.com/fivetwenty-io/identity-console/pkg/opsclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := opsclient.New(&ops.Config{APIEndpoint: "https://ops.example.com"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := opsclient.New(nil)
		require.ErrorIs(t, err, ops.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := opsclient.NewWithEndpoint("")
		require.ErrorIs(t, err, ops.ErrAPIEndpointRequired)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ops.example.com", "https://ops.example.com"},
		{"http://localhost:8000/", "http://localhost:8000"},
		{"https://ops.example.com/api/v1", "https://ops.example.com"},
		{" https://ops.example.com/api/v1/ ", "https://ops.example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, opsclient.NormalizeEndpoint(tt.in), tt.in)
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := opsclient.NewWithToken("https://ops.example.com", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/v1/auth/login":
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"access_token": "opaque-token",
				"token_type":   "bearer",
				"user":         map[string]interface{}{"id": "u-1", "email": "ops@example.com"},
			})
		case "/api/v1/identity/stats":
			if request.Header.Get("Authorization") != "Bearer opaque-token" {
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			_, _ = writer.Write([]byte(`{"total_persons":3}`))
		case "/api/v1/ops/alerts":
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail":"Token expired"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sessionPath := filepath.Join(t.TempDir(), "session.yml")

	_, err := opsclient.CurrentProfile(t.Context(), sessionPath)
	require.ErrorIs(t, err, ops.ErrNotAuthenticated)

	profile, err := opsclient.Login(t.Context(), &ops.Config{APIEndpoint: server.URL}, sessionPath, "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", profile.Email)

	profile, err = opsclient.CurrentProfile(t.Context(), sessionPath)
	require.NoError(t, err)
	assert.Equal(t, "u-1", profile.ID)

	unauthorized := 0

	client, err := opsclient.NewWithSession(&ops.Config{
		APIEndpoint:    server.URL,
		OnUnauthorized: func() { unauthorized++ },
	}, sessionPath)
	require.NoError(t, err)

	stats, err := client.Identity().Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPersons)

	_, err = client.Alerts().List(t.Context(), nil)
	require.Error(t, err)
	assert.True(t, ops.IsUnauthorized(err))
	assert.Equal(t, 1, unauthorized)

	_, err = os.Stat(sessionPath)
	assert.True(t, os.IsNotExist(err))

	_, err = client.Identity().ListRuns(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	require.NoError(t, opsclient.Logout(sessionPath))
}
