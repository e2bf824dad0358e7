package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/identity-console/internal/auth"
	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the ops.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	cache        *ops.QueryCache
	baseURL      string
	logger       ops.Logger

	// Resource clients
	auth           ops.AuthClient
	identity       ops.IdentityClient
	alerts         ops.AlertsClient
	health         ops.HealthClient
	payments       ops.PaymentsClient
	reconciliation ops.ReconciliationClient
	scouts         ops.ScoutsClient
	exports        ops.ExportsClient
}

// createTokenManager picks a token manager for config. An explicit manager
// wins, then a static token, then the config's TokenSource.
func createTokenManager(config *ops.Config, tokenManager auth.TokenManager) auth.TokenManager {
	if tokenManager != nil {
		return tokenManager
	}

	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	if config.TokenSource != nil {
		return &sourceTokenManager{source: config.TokenSource}
	}

	return nil // No authentication
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *ops.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	chain := ops.NewInterceptorChain()
	chain.AddRequestInterceptor(ops.RequestIDInterceptor())

	for _, interceptor := range config.RequestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	if config.OnUnauthorized != nil {
		chain.AddResponseInterceptor(ops.UnauthorizedInterceptor(config.OnUnauthorized))
	}

	for _, interceptor := range config.ResponseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	return append(httpOpts, http.WithInterceptors(chain))
}

// New creates a backend API client. tokenManager may be nil, in which case
// one is derived from config.
func New(config *ops.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, ops.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, ops.ErrAPIEndpointRequired
	}

	cache, err := ops.NewQueryCacheFromConfig(config.Cache, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating query cache: %w", err)
	}

	tokenManager = createTokenManager(config, tokenManager)
	baseURL := strings.TrimRight(config.APIEndpoint, "/") + constants.APIPrefix

	client := &Client{
		httpClient:   http.NewClient(baseURL, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		cache:        cache,
		baseURL:      baseURL,
		logger:       config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// Auth implements ops.Client.Auth.
func (c *Client) Auth() ops.AuthClient {
	return c.auth
}

// Identity implements ops.Client.Identity.
func (c *Client) Identity() ops.IdentityClient {
	return c.identity
}

// Alerts implements ops.Client.Alerts.
func (c *Client) Alerts() ops.AlertsClient {
	return c.alerts
}

// Health implements ops.Client.Health.
func (c *Client) Health() ops.HealthClient {
	return c.health
}

// Payments implements ops.Client.Payments.
func (c *Client) Payments() ops.PaymentsClient {
	return c.payments
}

// Reconciliation implements ops.Client.Reconciliation.
func (c *Client) Reconciliation() ops.ReconciliationClient {
	return c.reconciliation
}

// Scouts implements ops.Client.Scouts.
func (c *Client) Scouts() ops.ScoutsClient {
	return c.scouts
}

// Exports implements ops.Client.Exports.
func (c *Client) Exports() ops.ExportsClient {
	return c.exports
}

// Cache implements ops.Client.Cache.
func (c *Client) Cache() *ops.QueryCache {
	return c.cache
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TokenManager returns the token manager for this client.
func (c *Client) TokenManager() auth.TokenManager {
	return c.tokenManager
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.auth = NewAuthClient(c.httpClient)
	c.identity = NewIdentityClient(c.httpClient, c.cache)
	c.alerts = NewAlertsClient(c.httpClient, c.cache)
	c.health = NewHealthClient(c.httpClient, c.cache)
	c.payments = NewPaymentsClient(c.httpClient, c.cache)
	c.reconciliation = NewReconciliationClient(c.httpClient, c.cache)
	c.scouts = NewScoutsClient(c.httpClient, c.cache)
	c.exports = NewExportsClient(c.httpClient)
}

// sourceTokenManager adapts a Config.TokenSource to auth.TokenManager.
type sourceTokenManager struct {
	source func(ctx context.Context) (string, error)
}

func (s *sourceTokenManager) GetToken(ctx context.Context) (string, error) {
	if s.source == nil {
		return "", ErrNoTokenManagerConfigured
	}

	return s.source(ctx)
}

func (s *sourceTokenManager) RefreshToken(ctx context.Context) error {
	_, err := s.GetToken(ctx)

	return err
}

func (s *sourceTokenManager) SetToken(token string, expiresAt time.Time) {}
