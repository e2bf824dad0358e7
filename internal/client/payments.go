package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const (
	eligibilityPath  = "/payments/eligibility"
	driverMatrixPath = "/payments/driver-matrix"
)

// PaymentsClient implements ops.PaymentsClient.
type PaymentsClient struct {
	resource
}

// NewPaymentsClient creates a new payments client.
func NewPaymentsClient(httpClient *http.Client, cache *ops.QueryCache) *PaymentsClient {
	return &PaymentsClient{resource: newResource(httpClient, cache)}
}

// Eligibility implements ops.PaymentsClient.Eligibility.
func (c *PaymentsClient) Eligibility(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.PaymentEligibility], error) {
	return listResource[ops.PaymentEligibility](ctx, c.resource, eligibilityPath, params)
}

// DriverMatrix implements ops.PaymentsClient.DriverMatrix. The matrix
// endpoint pages by page/page_size rather than limit/offset.
func (c *PaymentsClient) DriverMatrix(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.DriverMilestoneRow], error) {
	params = params.Clone()
	params.PageStyle = true

	return listResource[ops.DriverMilestoneRow](ctx, c.resource, driverMatrixPath, params)
}
