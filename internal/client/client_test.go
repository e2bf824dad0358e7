package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/identity-console/internal/client"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil, nil)
		require.ErrorIs(t, err, ops.ErrConfigRequired)
	})

	t.Run("requires API endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(&ops.Config{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API endpoint is required")
	})

	t.Run("appends the API prefix", func(t *testing.T) {
		t.Parallel()

		client, err := New(&ops.Config{APIEndpoint: "https://ops.example.com/"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://ops.example.com/api/v1", client.BaseURL())
		assert.NotNil(t, client.Cache())
		assert.Nil(t, client.TokenManager())
	})

	t.Run("creates client with access token", func(t *testing.T) {
		t.Parallel()

		client, err := New(&ops.Config{APIEndpoint: "https://ops.example.com", AccessToken: "test-token"}, nil)
		require.NoError(t, err)
		require.NotNil(t, client.TokenManager())

		token, err := client.TokenManager().GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "test-token", token)
	})

	t.Run("rejects unknown cache type", func(t *testing.T) {
		t.Parallel()

		_, err := New(&ops.Config{
			APIEndpoint: "https://ops.example.com",
			Cache:       &ops.CacheConfig{Type: "redis"},
		}, nil)
		require.ErrorIs(t, err, ops.ErrUnsupportedCacheType)
	})
}

func TestClient_SendsBearerTokenFromSource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer from-source", request.Header.Get("Authorization"))
		assert.NotEmpty(t, request.Header.Get("X-Request-ID"))
		_, _ = writer.Write([]byte(`{"id":"u-1","email":"ops@example.com"}`))
	}))
	defer server.Close()

	client, err := New(&ops.Config{
		APIEndpoint: server.URL,
		TokenSource: func(context.Context) (string, error) { return "from-source", nil },
	}, nil)
	require.NoError(t, err)

	profile, err := client.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", profile.ID)
}

func TestClient_OnUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	var calls atomic.Int32

	client, err := New(&ops.Config{
		APIEndpoint:    server.URL,
		AccessToken:    "expired",
		OnUnauthorized: func() { calls.Add(1) },
		Cache:          &ops.CacheConfig{Type: ops.CacheTypeNone, Options: &ops.CacheOptions{Retry: 0}},
	}, nil)
	require.NoError(t, err)

	_, err = client.Alerts().List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, ops.IsUnauthorized(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ListIsCachedPerParams(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		_, _ = writer.Write([]byte(`{"items":[{"id":1}],"total":1}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)
	params := ops.NewQueryParams().WithFilter("severity", "error")

	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := client.Alerts().List(context.Background(), params)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), hits.Load())

	_, err := client.Alerts().List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = client.Alerts().List(context.Background(), ops.NewQueryParams().WithFilter("severity", "warning"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_AcknowledgeRefetchesAlerts(t *testing.T) {
	t.Parallel()

	var (
		mu           sync.Mutex
		acknowledged = map[int]bool{}
		listCalls    int
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case request.Method == http.MethodPost && request.URL.Path == "/api/v1/ops/alerts/2/acknowledge":
			acknowledged[2] = true

			_, _ = writer.Write([]byte(`{"ok":true}`))
		case request.Method == http.MethodGet && request.URL.Path == "/api/v1/ops/alerts":
			listCalls++

			alerts := []ops.Alert{
				{ID: 1, Severity: "warning", Acknowledged: acknowledged[1]},
				{ID: 2, Severity: "error", Acknowledged: acknowledged[2]},
			}
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"items": alerts, "total": len(alerts)})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	before, err := client.Alerts().List(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, before.Items[1].Acknowledged)

	result, err := client.Alerts().Acknowledge(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, result.OK)

	after, err := client.Alerts().List(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, after.Items[1].Acknowledged)
	assert.False(t, after.Items[0].Acknowledged)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, 2, listCalls)
}
