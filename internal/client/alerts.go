package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const alertsPath = "/ops/alerts"

// AlertsClient implements ops.AlertsClient.
type AlertsClient struct {
	resource
}

// NewAlertsClient creates a new alerts client.
func NewAlertsClient(httpClient *http.Client, cache *ops.QueryCache) *AlertsClient {
	return &AlertsClient{resource: newResource(httpClient, cache)}
}

// List implements ops.AlertsClient.List.
func (c *AlertsClient) List(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
	return listResource[ops.Alert](ctx, c.resource, alertsPath, params)
}

// Acknowledge implements ops.AlertsClient.Acknowledge. Every cached alert
// page is dropped so the next list shows the acknowledgement.
func (c *AlertsClient) Acknowledge(ctx context.Context, id string) (*ops.ActionResult, error) {
	segment, err := escapeSegment(id)
	if err != nil {
		return nil, err
	}

	return postAction(ctx, c.resource, alertsPath+"/"+segment+"/acknowledge", nil, "GET:"+alertsPath)
}
