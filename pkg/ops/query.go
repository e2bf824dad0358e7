package ops

import (
	"net/url"
	"strconv"
)

// reservedParams are set from Limit, Offset and OrderBy and cannot be filters.
var reservedParams = map[string]bool{
	"limit":     true,
	"offset":    true,
	"page":      true,
	"page_size": true,
	"order_by":  true,
}

// QueryParams carries pagination and domain filters for list endpoints.
// Offset-style endpoints use Limit/Offset; page-style endpoints set
// PageStyle and receive page/page_size derived from the same values.
type QueryParams struct {
	Limit     int
	Offset    int
	PageStyle bool
	OrderBy   string
	Filters   map[string]string
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string]string),
	}
}

// WithLimit sets the page size.
func (q *QueryParams) WithLimit(limit int) *QueryParams {
	q.Limit = limit

	return q
}

// WithOffset sets the row offset.
func (q *QueryParams) WithOffset(offset int) *QueryParams {
	q.Offset = offset

	return q
}

// WithFilter sets a filter; an empty value removes it. Pagination and ordering
// keys are ignored.
func (q *QueryParams) WithFilter(key, value string) *QueryParams {
	if reservedParams[key] {
		return q
	}

	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}

	if value == "" {
		delete(q.Filters, key)

		return q
	}

	q.Filters[key] = value

	return q
}

// WithFilters merges a flat filter map, dropping empty values.
func (q *QueryParams) WithFilters(filters map[string]string) *QueryParams {
	for key, value := range filters {
		q.WithFilter(key, value)
	}

	return q
}

// Page returns the 1-based page number implied by Limit/Offset.
func (q *QueryParams) Page() int {
	if q.Limit <= 0 {
		return 1
	}

	return q.Offset/q.Limit + 1
}

// Clone returns a deep copy.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Filters = make(map[string]string, len(q.Filters))

	for key, value := range q.Filters {
		clone.Filters[key] = value
	}

	return &clone
}

// ToValues converts the parameters to URL values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Limit > 0 {
		if q.PageStyle {
			values.Set("page", strconv.Itoa(q.Page()))
			values.Set("page_size", strconv.Itoa(q.Limit))
		} else {
			values.Set("limit", strconv.Itoa(q.Limit))
			values.Set("offset", strconv.Itoa(q.Offset))
		}
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	for key, value := range q.Filters {
		if value != "" && !reservedParams[key] {
			values.Set(key, value)
		}
	}

	return values
}

// CacheKey derives the query-cache key for an endpoint and its exact
// parameters. Keys are canonical: parameter order never changes the key, and
// values are escaped so no value can imitate another parameter.
func CacheKey(endpoint string, params *QueryParams) string {
	values := params.ToValues()
	if len(values) == 0 {
		return "GET:" + endpoint
	}

	return "GET:" + endpoint + ":" + values.Encode()
}
