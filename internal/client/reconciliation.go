package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const reconciliationPath = "/yango/reconciliation"

// ReconciliationClient implements ops.ReconciliationClient.
type ReconciliationClient struct {
	resource
}

// NewReconciliationClient creates a new reconciliation client.
func NewReconciliationClient(httpClient *http.Client, cache *ops.QueryCache) *ReconciliationClient {
	return &ReconciliationClient{resource: newResource(httpClient, cache)}
}

// Summary implements ops.ReconciliationClient.Summary.
func (c *ReconciliationClient) Summary(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.ReconciliationSummaryRow], error) {
	return listResource[ops.ReconciliationSummaryRow](ctx, c.resource, reconciliationPath+"/summary", params)
}

// Items implements ops.ReconciliationClient.Items.
func (c *ReconciliationClient) Items(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.ReconciliationItem], error) {
	return listResource[ops.ReconciliationItem](ctx, c.resource, reconciliationPath+"/items", params)
}
