package ops_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var errRejected = errors.New("rejected")

func TestInterceptorChain(t *testing.T) {
	t.Parallel()

	chain := ops.NewInterceptorChain()
	chain.AddRequestInterceptor(ops.RequestIDInterceptor())
	chain.AddRequestInterceptor(func(ctx context.Context, req *ops.Request) error {
		req.Headers.Set("X-Console", "idops")

		return nil
	})

	req := &ops.Request{Method: http.MethodGet, Path: "/ops/alerts"}
	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))

	_, err := uuid.Parse(req.Headers.Get("X-Request-ID"))
	require.NoError(t, err)
	assert.Equal(t, "idops", req.Headers.Get("X-Console"))
}

func TestRequestIDInterceptor_KeepsExisting(t *testing.T) {
	t.Parallel()

	req := &ops.Request{Headers: http.Header{"X-Request-Id": []string{"fixed"}}}
	require.NoError(t, ops.RequestIDInterceptor()(context.Background(), req))
	assert.Equal(t, "fixed", req.Headers.Get("X-Request-ID"))
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	reached := false
	chain := ops.NewInterceptorChain()
	chain.AddRequestInterceptor(func(ctx context.Context, req *ops.Request) error {
		return errRejected
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *ops.Request) error {
		reached = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &ops.Request{})
	require.ErrorIs(t, err, errRejected)
	assert.False(t, reached)
}

func TestUnauthorizedInterceptor(t *testing.T) {
	t.Parallel()

	calls := 0
	interceptor := ops.UnauthorizedInterceptor(func() { calls++ })

	req := &ops.Request{Method: http.MethodGet, Path: "/auth/me"}
	require.NoError(t, interceptor(context.Background(), req, &ops.Response{StatusCode: http.StatusOK}))
	require.NoError(t, interceptor(context.Background(), req, &ops.Response{StatusCode: http.StatusUnauthorized}))

	assert.Equal(t, 1, calls)
}
