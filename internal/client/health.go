package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const healthPath = "/ops/health"

// HealthClient implements ops.HealthClient.
type HealthClient struct {
	resource
}

// NewHealthClient creates a new health client.
func NewHealthClient(httpClient *http.Client, cache *ops.QueryCache) *HealthClient {
	return &HealthClient{resource: newResource(httpClient, cache)}
}

// Global implements ops.HealthClient.Global.
func (c *HealthClient) Global(ctx context.Context) (*ops.GlobalHealth, error) {
	return getResource[ops.GlobalHealth](ctx, c.resource, healthPath+"/global", nil)
}

// Checks implements ops.HealthClient.Checks.
func (c *HealthClient) Checks(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.HealthCheck], error) {
	return listResource[ops.HealthCheck](ctx, c.resource, healthPath+"/checks", params)
}

// MaterializedViews implements ops.HealthClient.MaterializedViews.
func (c *HealthClient) MaterializedViews(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.MaterializedViewHealth], error) {
	return listResource[ops.MaterializedViewHealth](ctx, c.resource, healthPath+"/mv", params)
}
