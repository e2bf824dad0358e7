package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const attributionPath = "/scouts/attribution"

// ScoutsClient implements ops.ScoutsClient.
type ScoutsClient struct {
	resource
}

// NewScoutsClient creates a new scouts client.
func NewScoutsClient(httpClient *http.Client, cache *ops.QueryCache) *ScoutsClient {
	return &ScoutsClient{resource: newResource(httpClient, cache)}
}

// Backlog implements ops.ScoutsClient.Backlog.
func (c *ScoutsClient) Backlog(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.ScoutBacklogRow], error) {
	return listResource[ops.ScoutBacklogRow](ctx, c.resource, attributionPath+"/backlog", params)
}

// Conflicts implements ops.ScoutsClient.Conflicts.
func (c *ScoutsClient) Conflicts(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.ScoutConflict], error) {
	return listResource[ops.ScoutConflict](ctx, c.resource, attributionPath+"/conflicts", params)
}

// Liquidation implements ops.ScoutsClient.Liquidation.
func (c *ScoutsClient) Liquidation(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.ScoutLiquidationRow], error) {
	return listResource[ops.ScoutLiquidationRow](ctx, c.resource, attributionPath+"/liquidation", params)
}
