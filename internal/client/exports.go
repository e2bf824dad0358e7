package client

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var exportPaths = map[ops.ExportKind]string{
	ops.ExportDriverMatrix:        driverMatrixPath + "/export",
	ops.ExportScoutLiquidation:    attributionPath + "/liquidation/export",
	ops.ExportReconciliationItems: reconciliationPath + "/items/export",
}

// ExportsClient implements ops.ExportsClient.
type ExportsClient struct {
	httpClient *http.Client
}

// NewExportsClient creates a new exports client.
func NewExportsClient(httpClient *http.Client) *ExportsClient {
	return &ExportsClient{
		httpClient: httpClient,
	}
}

// ExportPath returns the endpoint serving kind.
func ExportPath(kind ops.ExportKind) (string, error) {
	path, ok := exportPaths[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownExport, kind)
	}

	return path, nil
}

// Export implements ops.ExportsClient.Export. Filters are forwarded; paging
// is dropped since exports cover every matching row.
func (c *ExportsClient) Export(ctx context.Context, kind ops.ExportKind, params *ops.QueryParams, w io.Writer) (int64, error) {
	path, err := ExportPath(kind)
	if err != nil {
		return 0, err
	}

	params = params.Clone()
	params.Limit = 0
	params.Offset = 0

	written, err := c.httpClient.Download(ctx, &http.Request{
		Method:  nethttp.MethodGet,
		Path:    path,
		Query:   params.ToValues(),
		Headers: map[string]string{"Accept": "text/csv"},
	}, w)
	if err != nil {
		return written, fmt.Errorf("exporting %s: %w", kind, err)
	}

	return written, nil
}
