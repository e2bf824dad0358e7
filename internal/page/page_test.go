package page_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var errBackendDown = errors.New("backend down")

// alertBackend is an in-memory alerts endpoint.
type alertBackend struct {
	mu        sync.Mutex
	alerts    []ops.Alert
	listCalls int
	failAck   bool
}

func newAlertBackend(count int) *alertBackend {
	backend := &alertBackend{}
	for i := 1; i <= count; i++ {
		backend.alerts = append(backend.alerts, ops.Alert{ID: i, Severity: "warning"})
	}

	return backend
}

func (b *alertBackend) list(_ context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listCalls++

	var matched []ops.Alert

	for _, alert := range b.alerts {
		if ack, ok := params.Filters["acknowledged"]; ok && strconv.FormatBool(alert.Acknowledged) != ack {
			continue
		}

		matched = append(matched, alert)
	}

	end := min(params.Offset+params.Limit, len(matched))
	start := min(params.Offset, end)

	return &ops.ListResponse[ops.Alert]{
		Items:  append([]ops.Alert(nil), matched[start:end]...),
		Total:  len(matched),
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (b *alertBackend) acknowledge(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failAck {
		return &ops.APIError{StatusCode: 409, Detail: "Alert already acknowledged"}
	}

	for i := range b.alerts {
		if b.alerts[i].ID == id {
			b.alerts[i].Acknowledged = true
		}
	}

	return nil
}

func (b *alertBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.listCalls
}

func TestListController_Load(t *testing.T) {
	t.Parallel()

	backend := newAlertBackend(3)
	controller := page.NewListController(backend.list, 2)

	assert.Equal(t, page.StatusIdle, controller.Snapshot().Status)

	ticket := controller.Refresh()
	assert.Equal(t, page.StatusLoading, controller.Snapshot().Status)

	require.NoError(t, controller.Load(context.Background(), ticket))

	snapshot := controller.Snapshot()
	assert.Equal(t, page.StatusPopulated, snapshot.Status)
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, 3, snapshot.Total)
	assert.True(t, snapshot.Pager().HasNext())
	require.NoError(t, snapshot.Err)
}

func TestListController_Empty(t *testing.T) {
	t.Parallel()

	controller := page.NewListController(newAlertBackend(0).list, 10)

	require.NoError(t, controller.Load(context.Background(), controller.Refresh()))
	assert.Equal(t, page.StatusEmpty, controller.Snapshot().Status)
}

func TestListController_ErrorAndRecovery(t *testing.T) {
	t.Parallel()

	var fail bool

	controller := page.NewListController(func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
		if fail {
			return nil, errBackendDown
		}

		return newAlertBackend(1).list(ctx, params)
	}, 10)

	fail = true
	err := controller.Load(context.Background(), controller.Refresh())
	require.ErrorIs(t, err, errBackendDown)

	snapshot := controller.Snapshot()
	assert.Equal(t, page.StatusError, snapshot.Status)
	assert.Empty(t, snapshot.Items)

	fail = false
	ticket := controller.Refresh()

	snapshot = controller.Snapshot()
	assert.Equal(t, page.StatusLoading, snapshot.Status)
	require.NoError(t, snapshot.Err)

	require.NoError(t, controller.Load(context.Background(), ticket))
	assert.Equal(t, page.StatusPopulated, controller.Snapshot().Status)
}

func TestListController_FiltersResetOffset(t *testing.T) {
	t.Parallel()

	controller := page.NewListController(newAlertBackend(0).list, 50)

	_, err := controller.SetOffset(100)
	require.NoError(t, err)
	assert.Equal(t, 100, controller.Params().Offset)

	ticket := controller.SetFilter("severity", "error")
	assert.Equal(t, 0, ticket.Params().Offset)
	assert.Equal(t, "error", ticket.Params().Filters["severity"])

	_, err = controller.SetOffset(50)
	require.NoError(t, err)

	ticket = controller.SetFilters(map[string]string{"acknowledged": "false", "severity": ""})
	assert.Equal(t, 0, ticket.Params().Offset)
	assert.Equal(t, map[string]string{"acknowledged": "false"}, ticket.Params().Filters)

	ticket = controller.SetFilter("acknowledged", "")
	assert.Empty(t, ticket.Params().Filters)

	_, err = controller.SetOffset(-1)
	require.ErrorIs(t, err, constants.ErrInvalidOffset)

	_, err = controller.SetLimit(0)
	require.ErrorIs(t, err, constants.ErrInvalidPageSize)
}

func TestListController_Paging(t *testing.T) {
	t.Parallel()

	controller := page.NewListController(newAlertBackend(5).list, 2)
	ctx := context.Background()

	_, ok := controller.PrevPage()
	assert.False(t, ok)

	require.NoError(t, controller.Load(ctx, controller.Refresh()))

	ticket, ok := controller.NextPage()
	require.True(t, ok)
	assert.Equal(t, 2, ticket.Params().Offset)
	require.NoError(t, controller.Load(ctx, ticket))

	ticket, ok = controller.NextPage()
	require.True(t, ok)
	require.NoError(t, controller.Load(ctx, ticket))

	snapshot := controller.Snapshot()
	assert.Equal(t, 4, snapshot.Offset)
	assert.Len(t, snapshot.Items, 1)

	_, ok = controller.NextPage()
	assert.False(t, ok)

	ticket, ok = controller.PrevPage()
	require.True(t, ok)
	assert.Equal(t, 2, ticket.Params().Offset)
}

func TestListController_DiscardsSupersededResults(t *testing.T) {
	t.Parallel()

	backend := newAlertBackend(3)
	require.NoError(t, backend.acknowledge(1))

	controller := page.NewListController(backend.list, 10)
	ctx := context.Background()

	first := controller.SetFilter("acknowledged", "true")
	second := controller.SetFilter("acknowledged", "false")

	applySecond := controller.Fetch(ctx, second)
	applyFirst := controller.Fetch(ctx, first)

	assert.True(t, applySecond())
	assert.False(t, applyFirst())

	snapshot := controller.Snapshot()
	assert.Equal(t, page.StatusPopulated, snapshot.Status)
	require.Len(t, snapshot.Items, 2)

	for _, alert := range snapshot.Items {
		assert.False(t, alert.Acknowledged)
	}

	assert.Greater(t, second.Generation(), first.Generation())
	require.NoError(t, controller.Load(ctx, first))
	assert.Len(t, controller.Snapshot().Items, 2)
}

func TestListController_DiscardsSupersededErrors(t *testing.T) {
	t.Parallel()

	var calls int

	controller := page.NewListController(func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
		calls++
		if calls == 1 {
			return nil, errBackendDown
		}

		return newAlertBackend(1).list(ctx, params)
	}, 10)

	stale := controller.Refresh()
	current := controller.Refresh()

	applyStale := controller.Fetch(context.Background(), stale)
	applyCurrent := controller.Fetch(context.Background(), current)

	assert.True(t, applyCurrent())
	assert.False(t, applyStale())
	assert.Equal(t, page.StatusPopulated, controller.Snapshot().Status)
	require.NoError(t, controller.Snapshot().Err)
}

func TestListController_MutateRefetches(t *testing.T) {
	t.Parallel()

	backend := newAlertBackend(2)
	cache := ops.NewQueryCache(&ops.CacheOptions{StaleTime: time.Minute, GCTime: time.Minute}, nil)
	cached := func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
		return ops.Query(ctx, cache, ops.CacheKey("/ops/alerts", params), func(ctx context.Context) (*ops.ListResponse[ops.Alert], error) {
			return backend.list(ctx, params)
		})
	}

	controller := page.NewListController(cached, 10, page.WithInvalidation(cache, "GET:/ops/alerts"))
	ctx := context.Background()

	require.NoError(t, controller.Load(ctx, controller.Refresh()))
	require.NoError(t, controller.Load(ctx, controller.Refresh()))
	assert.Equal(t, 1, backend.calls())

	_, err := controller.Mutate(ctx, func(context.Context) error { return backend.acknowledge(2) })
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls())

	snapshot := controller.Snapshot()
	require.Len(t, snapshot.Items, 2)
	assert.False(t, snapshot.Items[0].Acknowledged)
	assert.True(t, snapshot.Items[1].Acknowledged)
	require.NoError(t, snapshot.MutationErr)
}

func TestListController_MutateFailureKeepsRows(t *testing.T) {
	t.Parallel()

	backend := newAlertBackend(2)
	backend.failAck = true

	controller := page.NewListController(backend.list, 10)
	ctx := context.Background()

	require.NoError(t, controller.Load(ctx, controller.Refresh()))

	_, err := controller.Mutate(ctx, func(context.Context) error { return backend.acknowledge(1) })
	require.Error(t, err)

	snapshot := controller.Snapshot()
	assert.Equal(t, page.StatusPopulated, snapshot.Status)
	assert.Len(t, snapshot.Items, 2)
	require.Error(t, snapshot.MutationErr)
	assert.Contains(t, snapshot.MutationErr.Error(), "Alert already acknowledged")
	assert.Equal(t, 1, backend.calls())

	controller.ClearMutationError()
	assert.NoError(t, controller.Snapshot().MutationErr)
}

func TestValueController(t *testing.T) {
	t.Parallel()

	t.Run("populated", func(t *testing.T) {
		t.Parallel()

		controller := page.NewValueController(func(context.Context) (*ops.IdentityStats, error) {
			return &ops.IdentityStats{TotalPersons: 12}, nil
		})

		require.NoError(t, controller.Load(context.Background(), controller.Refresh()))

		snapshot := controller.Snapshot()
		assert.Equal(t, page.StatusPopulated, snapshot.Status)
		assert.Equal(t, 12, snapshot.Value.TotalPersons)
		assert.False(t, snapshot.NotFound)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		controller := page.NewValueController(func(context.Context) (*ops.PersonDetail, error) {
			return nil, fmt.Errorf("getting person: %w", &ops.APIError{StatusCode: 404, Detail: "Person not found"})
		})

		err := controller.Load(context.Background(), controller.Refresh())
		require.Error(t, err)

		snapshot := controller.Snapshot()
		assert.Equal(t, page.StatusError, snapshot.Status)
		assert.True(t, snapshot.NotFound)
		assert.Nil(t, snapshot.Value)
	})

	t.Run("superseded", func(t *testing.T) {
		t.Parallel()

		var calls int

		controller := page.NewValueController(func(context.Context) (*ops.GlobalHealth, error) {
			calls++

			return &ops.GlobalHealth{Status: "call-" + strconv.Itoa(calls)}, nil
		})

		first := controller.Refresh()
		second := controller.Refresh()

		applyFirst := controller.Fetch(context.Background(), first)
		applySecond := controller.Fetch(context.Background(), second)

		assert.True(t, applySecond())
		assert.False(t, applyFirst())
		assert.Equal(t, "call-2", controller.Snapshot().Value.Status)
	})
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "loading", page.StatusLoading.String())
	assert.Equal(t, "populated", page.StatusPopulated.String())
	assert.Equal(t, "unknown", page.Status(42).String())
}

func TestBannerFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "canceled", err: context.Canceled, want: ""},
		{name: "not logged in", err: constants.ErrNotLoggedIn, want: "idops login"},
		{name: "unauthorized", err: &ops.APIError{StatusCode: 401}, want: "session has ended"},
		{name: "forbidden", err: &ops.APIError{StatusCode: 403, Detail: "Not enough permissions"}, want: "do not have permission"},
		{name: "not found", err: &ops.APIError{StatusCode: 404, Detail: "Person not found"}, want: "Not found: Person not found."},
		{name: "network", err: &ops.APIError{Detail: "connection refused"}, want: "Cannot reach the backend API"},
		{name: "server", err: &ops.APIError{StatusCode: 502}, want: "failed to answer (status 502)."},
		{name: "client", err: &ops.APIError{StatusCode: 422, Detail: "week_start must be a Monday"}, want: "rejected (status 422): week_start must be a Monday."},
		{name: "plain", err: errBackendDown, want: "backend down"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			banner := page.BannerFor(testCase.err)
			if testCase.want == "" {
				assert.Empty(t, banner)

				return
			}

			assert.Contains(t, banner, testCase.want)
		})
	}
}
