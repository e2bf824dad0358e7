package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	internalhttp "github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Test static errors.
var (
	ErrTestSomeError = errors.New("some error")
)

// TestCacheOptions is a cache policy for tests: no retries and short windows.
func TestCacheOptions() *ops.CacheOptions {
	return &ops.CacheOptions{
		StaleTime:     time.Minute,
		GCTime:        time.Minute,
		Retry:         0,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: time.Millisecond,
	}
}

// NewTestClient creates a new test client against a test server URL.
func NewTestClient(serverURL string) *Client {
	baseURL := serverURL + constants.APIPrefix

	// Create HTTP client without token manager for testing
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		cache:      ops.NewQueryCache(TestCacheOptions(), nil),
		baseURL:    baseURL,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client
}

// TestListOperation represents a generic list operation test case.
type TestListOperation struct {
	Name          string
	Params        *ops.QueryParams
	ExpectedPath  string
	ExpectedQuery map[string]string
	StatusCode    int
	Response      interface{}
	WantErr       bool
	ErrMessage    string
	WantLen       int
	WantTotal     int
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      bool
	ErrMessage   string
}

// RunListTests runs a series of list operation tests.
func RunListTests[T any](
	t *testing.T,
	tests []TestListOperation,
	listFunc func(*Client) func(context.Context, *ops.QueryParams) (*ops.ListResponse[T], error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, constants.APIPrefix+testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)

				for key, value := range testCase.ExpectedQuery {
					assert.Equal(t, value, request.URL.Query().Get(key), "query parameter %s", key)
				}

				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.StatusCode)

				if testCase.Response != nil {
					_ = json.NewEncoder(writer).Encode(testCase.Response)
				}
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			result, err := listFunc(client)(context.Background(), testCase.Params)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Len(t, result.Items, testCase.WantLen)
			assert.Equal(t, testCase.WantTotal, result.Total)
		})
	}
}

// RunGetTests runs a series of get operation tests.
func RunGetTests[T any](
	t *testing.T,
	tests []TestGetOperation,
	getFunc func(*Client) func(context.Context, string) (*T, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, constants.APIPrefix+testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)
				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.StatusCode)

				if testCase.WantErr {
					_ = json.NewEncoder(writer).Encode(map[string]interface{}{"detail": "Resource not found"})
				} else if testCase.Response != nil {
					_ = json.NewEncoder(writer).Encode(testCase.Response)
				}
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			result, err := getFunc(client)(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
		})
	}
}
