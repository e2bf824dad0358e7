package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// AuthClient implements ops.AuthClient.
type AuthClient struct {
	httpClient *http.Client
}

// NewAuthClient creates a new auth client.
func NewAuthClient(httpClient *http.Client) *AuthClient {
	return &AuthClient{
		httpClient: httpClient,
	}
}

// Login implements ops.AuthClient.Login. Login bypasses the query cache.
func (c *AuthClient) Login(ctx context.Context, request *ops.LoginRequest) (*ops.LoginResponse, error) {
	if request == nil || request.Username == "" || request.Password == "" {
		return nil, constants.ErrEmptyCredentials
	}

	resp, err := c.httpClient.Post(ctx, "/auth/login", request)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	var login ops.LoginResponse

	err = json.Unmarshal(resp.Body, &login)
	if err != nil {
		return nil, fmt.Errorf("parsing login response: %w", err)
	}

	if login.AccessToken == "" {
		return nil, constants.ErrNoTokenInLogin
	}

	return &login, nil
}

// Me implements ops.AuthClient.Me.
func (c *AuthClient) Me(ctx context.Context) (*ops.UserProfile, error) {
	resp, err := c.httpClient.Get(ctx, "/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	var profile ops.UserProfile

	err = json.Unmarshal(resp.Body, &profile)
	if err != nil {
		return nil, fmt.Errorf("parsing user profile: %w", err)
	}

	return &profile, nil
}
