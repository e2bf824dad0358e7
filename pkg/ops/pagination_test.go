package ops_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

func TestPager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pager       ops.Pager
		totalPages  int
		currentPage int
		hasNext     bool
		hasPrevious bool
		hidden      bool
	}{
		{
			name:       "empty",
			pager:      ops.Pager{Total: 0, Limit: 50},
			totalPages: 1, currentPage: 1,
			hidden: true,
		},
		{
			name:       "single page",
			pager:      ops.Pager{Total: 50, Limit: 50},
			totalPages: 1, currentPage: 1,
			hidden: true,
		},
		{
			name:       "first of three",
			pager:      ops.Pager{Total: 120, Limit: 50, Offset: 0},
			totalPages: 3, currentPage: 1,
			hasNext: true,
		},
		{
			name:       "middle",
			pager:      ops.Pager{Total: 120, Limit: 50, Offset: 50},
			totalPages: 3, currentPage: 2,
			hasNext: true, hasPrevious: true,
		},
		{
			name:       "last page",
			pager:      ops.Pager{Total: 120, Limit: 50, Offset: 100},
			totalPages: 3, currentPage: 3,
			hasPrevious: true,
		},
		{
			name:       "exact boundary",
			pager:      ops.Pager{Total: 100, Limit: 50, Offset: 50},
			totalPages: 2, currentPage: 2,
			hasPrevious: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.totalPages, tt.pager.TotalPages())
			assert.Equal(t, tt.currentPage, tt.pager.CurrentPage())
			assert.Equal(t, tt.hasNext, tt.pager.HasNext())
			assert.Equal(t, tt.hasPrevious, tt.pager.HasPrevious())
			assert.Equal(t, tt.hidden, tt.pager.Hidden())
			assert.Equal(t, tt.pager.Offset+tt.pager.Limit >= tt.pager.Total, !tt.pager.HasNext())
		})
	}
}

func TestPager_Offsets(t *testing.T) {
	t.Parallel()

	pager := ops.Pager{Total: 120, Limit: 50, Offset: 50}

	assert.Equal(t, 100, pager.NextOffset())
	assert.Equal(t, 0, pager.PreviousOffset())

	first, last := pager.Range()
	assert.Equal(t, 51, first)
	assert.Equal(t, 100, last)

	lastPage := ops.Pager{Total: 120, Limit: 50, Offset: 100}
	assert.Equal(t, 100, lastPage.NextOffset())

	first, last = lastPage.Range()
	assert.Equal(t, 101, first)
	assert.Equal(t, 120, last)
}

type pagedAlerts struct {
	rows  []ops.Alert
	calls int
}

func (p *pagedAlerts) list(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
	p.calls++

	end := min(params.Offset+params.Limit, len(p.rows))

	return &ops.ListResponse[ops.Alert]{
		Items:  p.rows[params.Offset:end],
		Total:  len(p.rows),
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func TestPaginationIterator_All(t *testing.T) {
	t.Parallel()

	source := &pagedAlerts{}
	for i := range 5 {
		source.rows = append(source.rows, ops.Alert{ID: i + 1})
	}

	it := ops.NewPaginationIterator(context.Background(), source.list, ops.NewQueryParams().WithLimit(2))

	all, err := it.All()
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 5, all[4].ID)
	assert.Equal(t, 3, source.calls)

	_, err = it.Next()
	require.ErrorIs(t, err, ops.ErrNoMoreItems)
}

func TestPaginationIterator_Error(t *testing.T) {
	t.Parallel()

	failing := func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Alert], error) {
		return nil, &ops.APIError{StatusCode: http.StatusInternalServerError}
	}

	it := ops.NewPaginationIterator(context.Background(), failing, nil)

	assert.False(t, it.HasNext())

	_, err := it.Next()
	require.Error(t, err)

	var apiErr *ops.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
