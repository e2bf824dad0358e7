package ops_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var errConflict = errors.New("alert already acknowledged")

// MockClient implements ops.Client for testing.
type MockClient struct {
	mock.Mock
	ops.Client
}

func (m *MockClient) Alerts() ops.AlertsClient {
	args := m.Called()

	return args.Get(0).(ops.AlertsClient)
}

func (m *MockClient) Identity() ops.IdentityClient {
	args := m.Called()

	return args.Get(0).(ops.IdentityClient)
}

// MockAlertsClient implements ops.AlertsClient for testing.
type MockAlertsClient struct {
	mock.Mock
}

func (m *MockAlertsClient) List(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ops.ListResponse[ops.Alert]), args.Error(1)
}

func (m *MockAlertsClient) Acknowledge(ctx context.Context, id string) (*ops.ActionResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ops.ActionResult), args.Error(1)
}

// MockIdentityClient implements the mutations of ops.IdentityClient.
type MockIdentityClient struct {
	mock.Mock
	ops.IdentityClient
}

func (m *MockIdentityClient) ResolveViolation(ctx context.Context, id string, request *ops.ResolveViolationRequest) (*ops.ActionResult, error) {
	args := m.Called(ctx, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ops.ActionResult), args.Error(1)
}

func (m *MockIdentityClient) MarkLegacy(ctx context.Context, personKey string, request *ops.MarkLegacyRequest) (*ops.ActionResult, error) {
	args := m.Called(ctx, personKey, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ops.ActionResult), args.Error(1)
}

func TestBatchExecutor_AcknowledgeAlerts(t *testing.T) {
	t.Parallel()

	alerts := &MockAlertsClient{}
	alerts.On("Acknowledge", mock.Anything, "1").Return(&ops.ActionResult{OK: true}, nil)
	alerts.On("Acknowledge", mock.Anything, "2").Return(nil, errConflict)
	alerts.On("Acknowledge", mock.Anything, "3").Return(&ops.ActionResult{OK: true, Message: "done"}, nil)

	client := &MockClient{}
	client.On("Alerts").Return(alerts)

	operations := ops.NewBatchBuilder(client).
		AddAcknowledgeAlert("1").
		AddAcknowledgeAlert("2").
		AddAcknowledgeAlert("3").
		Build()
	require.Len(t, operations, 3)

	results := ops.NewBatchExecutor(2).Execute(context.Background(), operations)
	require.Len(t, results, 3)

	assert.Equal(t, "1", results[0].ID)
	assert.True(t, results[0].Success)
	assert.Equal(t, "acknowledge alert #1", results[0].Label)

	assert.False(t, results[1].Success)
	require.ErrorIs(t, results[1].Error, errConflict)
	assert.Equal(t, errConflict.Error(), results[1].Message)

	assert.Equal(t, "done", results[2].Result.Message)

	assert.Equal(t, []string{"2"}, results.Failed())

	err := results.Err()
	require.ErrorIs(t, err, ops.ErrBatchFailed)
	assert.Contains(t, err.Error(), "1 of 3 operations failed: 2")

	alerts.AssertExpectations(t)
}

func TestBatchExecutor_Identity(t *testing.T) {
	t.Parallel()

	resolve := &ops.ResolveViolationRequest{Resolution: "resolved"}
	legacy := &ops.MarkLegacyRequest{Reason: "imported"}

	identity := &MockIdentityClient{}
	identity.On("ResolveViolation", mock.Anything, "7", resolve).Return(&ops.ActionResult{OK: true}, nil)
	identity.On("MarkLegacy", mock.Anything, "p-1", legacy).Return(&ops.ActionResult{OK: true}, nil)

	client := &MockClient{}
	client.On("Identity").Return(identity)

	results := ops.NewBatchExecutor(0).Execute(context.Background(), ops.NewBatchBuilder(client).
		AddResolveViolation("7", resolve).
		AddMarkLegacy("p-1", legacy).
		Build())

	require.NoError(t, results.Err())
	assert.Empty(t, results.Failed())
	identity.AssertExpectations(t)
}

func TestBatchExecutor_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32

	builder := ops.NewBatchBuilder(nil)

	for range 8 {
		builder.AddOperation(ops.BatchOperation{
			Run: func(ctx context.Context) (*ops.ActionResult, error) {
				current := running.Add(1)
				defer running.Add(-1)

				for {
					old := peak.Load()
					if current <= old || peak.CompareAndSwap(old, current) {
						break
					}
				}

				time.Sleep(10 * time.Millisecond)

				return &ops.ActionResult{OK: true}, nil
			},
		})
	}

	operations := builder.Build()
	assert.Equal(t, "1", operations[0].ID)
	assert.Equal(t, "8", operations[7].ID)

	var callbacks atomic.Int32

	for i := range operations {
		operations[i].Callback = func(*ops.BatchResult) { callbacks.Add(1) }
	}

	results := ops.NewBatchExecutor(3).Execute(context.Background(), operations)
	require.NoError(t, results.Err())
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, int32(8), callbacks.Load())
}

func TestBatchExecutor_Timeout(t *testing.T) {
	t.Parallel()

	executor := ops.NewBatchExecutor(1)
	executor.SetTimeout(10 * time.Millisecond)

	results := executor.Execute(context.Background(), []ops.BatchOperation{
		{ID: "slow", Run: func(ctx context.Context) (*ops.ActionResult, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		}},
		{ID: "empty"},
	})

	require.ErrorIs(t, results[0].Error, context.DeadlineExceeded)
	require.ErrorIs(t, results[1].Error, ops.ErrBatchFailed)
	assert.Equal(t, []string{"slow", "empty"}, results.Failed())
}
