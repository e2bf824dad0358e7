package opsclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/identity-console/internal/auth"
	"github.com/fivetwenty-io/identity-console/internal/client"
	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// New creates a new identity ops API client.
func New(config *ops.Config) (ops.Client, error) {
	if config == nil {
		return nil, ops.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, ops.ErrAPIEndpointRequired
	}

	config.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	// Use the internal client implementation
	apiClient, err := client.New(config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NormalizeEndpoint trims trailing slashes and a trailing API prefix, and
// defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	endpoint = strings.TrimSuffix(endpoint, constants.APIPrefix)

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(endpoint string) (ops.Client, error) {
	return New(&ops.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(endpoint, token string) (ops.Client, error) {
	return New(&ops.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithSession creates a client authenticated by the session file at
// sessionPath. A 401 from the backend or an expired token clears the session.
func NewWithSession(config *ops.Config, sessionPath string) (ops.Client, error) {
	if config == nil {
		return nil, ops.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, ops.ErrAPIEndpointRequired
	}

	manager := auth.NewSessionTokenManager(auth.NewFileSessionStore(sessionPath))

	previous := config.OnUnauthorized
	config.OnUnauthorized = func() {
		manager.Expire()

		if previous != nil {
			previous()
		}
	}

	config.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	apiClient, err := client.New(config, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// Login authenticates against the backend and stores the session at
// sessionPath. It returns the signed-in profile.
func Login(ctx context.Context, config *ops.Config, sessionPath, username, password string) (*ops.UserProfile, error) {
	apiClient, err := New(config)
	if err != nil {
		return nil, err
	}

	response, err := apiClient.Auth().Login(ctx, &ops.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	manager := auth.NewSessionTokenManager(auth.NewFileSessionStore(sessionPath))

	err = manager.Login(response)
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	return &response.User, nil
}

// Logout removes the session at sessionPath.
func Logout(sessionPath string) error {
	return auth.NewSessionTokenManager(auth.NewFileSessionStore(sessionPath)).Logout()
}

// CurrentProfile returns the profile stored with the session. It fails with
// ops.ErrSessionExpired or ops.ErrNotAuthenticated when there is no usable session.
func CurrentProfile(ctx context.Context, sessionPath string) (*ops.UserProfile, error) {
	manager := auth.NewSessionTokenManager(auth.NewFileSessionStore(sessionPath))

	_, err := manager.GetToken(ctx)
	if err != nil {
		if errors.Is(err, constants.ErrTokenExpired) {
			return nil, ops.ErrSessionExpired
		}

		return nil, ops.ErrNotAuthenticated
	}

	profile := manager.Profile()
	if profile == nil {
		return nil, ops.ErrNotAuthenticated
	}

	return profile, nil
}
