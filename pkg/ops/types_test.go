package ops_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

func TestListResponse_UnmarshalShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		items  int
		total  int
		limit  int
		offset int
	}{
		{
			name:   "items envelope",
			body:   `{"items": [{"id": 1}, {"id": 2}], "total": 120, "limit": 2, "offset": 40}`,
			items:  2,
			total:  120,
			limit:  2,
			offset: 40,
		},
		{
			name:   "data with meta",
			body:   `{"data": [{"id": 1}], "meta": {"total": 7, "limit": 1, "offset": 3}}`,
			items:  1,
			total:  7,
			limit:  1,
			offset: 3,
		},
		{
			name:   "page style meta",
			body:   `{"data": [{"id": 1}], "meta": {"total": 300, "page": 3, "page_size": 100}}`,
			items:  1,
			total:  300,
			limit:  100,
			offset: 200,
		},
		{
			name:   "bare array",
			body:   `[{"id": 1}, {"id": 2}, {"id": 3}]`,
			items:  3,
			total:  3,
			limit:  3,
			offset: 0,
		},
		{
			name:   "rows with count",
			body:   `{"rows": [], "count": 0}`,
			items:  0,
			total:  0,
			limit:  0,
			offset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var list ops.ListResponse[ops.Alert]

			require.NoError(t, json.Unmarshal([]byte(tt.body), &list))
			assert.Len(t, list.Items, tt.items)
			assert.NotNil(t, list.Items)
			assert.Equal(t, tt.total, list.Total)
			assert.Equal(t, tt.limit, list.Limit)
			assert.Equal(t, tt.offset, list.Offset)
		})
	}
}

func TestListResponse_Pager(t *testing.T) {
	t.Parallel()

	list := ops.ListResponse[ops.Person]{Total: 120, Limit: 50, Offset: 100}
	pager := list.Pager()

	assert.Equal(t, 3, pager.TotalPages())
	assert.Equal(t, 3, pager.CurrentPage())
	assert.False(t, pager.HasNext())
}

func TestReconciliationItem_NullableFields(t *testing.T) {
	t.Parallel()

	var item ops.ReconciliationItem

	require.NoError(t, json.Unmarshal([]byte(`{"driver_id": "d-1", "milestone_value": 5, "expected_amount": null, "paid_is_paid": true}`), &item))
	assert.Nil(t, item.ExpectedAmount)
	assert.Nil(t, item.PaidStatus)
	require.NotNil(t, item.PaidIsPaid)
	assert.True(t, *item.PaidIsPaid)
}
