package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// ListFetcher loads one page of a list.
type ListFetcher[T any] func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[T], error)

// Ticket identifies one state change. Only the result fetched for the most
// recent ticket is applied.
type Ticket struct {
	generation uint64
	params     *ops.QueryParams
}

// Generation returns the ticket's sequence number.
func (t Ticket) Generation() uint64 {
	return t.generation
}

// Params returns the query the ticket was issued for.
func (t Ticket) Params() *ops.QueryParams {
	return t.params.Clone()
}

// ListSnapshot is a consistent copy of a list controller's state.
type ListSnapshot[T any] struct {
	Status      Status
	Items       []T
	Total       int
	Limit       int
	Offset      int
	Filters     map[string]string
	Err         error
	MutationErr error
}

// Pager returns the pagination math for the snapshot.
func (s ListSnapshot[T]) Pager() ops.Pager {
	return ops.Pager{Total: s.Total, Limit: s.Limit, Offset: s.Offset}
}

// ListController owns the filter, pagination and load state of a list page.
type ListController[T any] struct {
	mu          sync.Mutex
	fetch       ListFetcher[T]
	cache       *ops.QueryCache
	invalidate  []string
	pageStyle   bool
	filters     map[string]string
	limit       int
	offset      int
	generation  uint64
	status      Status
	list        *ops.ListResponse[T]
	err         error
	mutationErr error
}

// ListOption configures a ListController.
type ListOption func(*listOptions)

type listOptions struct {
	cache      *ops.QueryCache
	invalidate []string
	filters    map[string]string
	pageStyle  bool
}

// WithInvalidation drops the given cache key prefixes after each successful
// mutation, before the refetch.
func WithInvalidation(cache *ops.QueryCache, prefixes ...string) ListOption {
	return func(o *listOptions) {
		o.cache = cache
		o.invalidate = prefixes
	}
}

// WithInitialFilters seeds the filter map.
func WithInitialFilters(filters map[string]string) ListOption {
	return func(o *listOptions) {
		o.filters = filters
	}
}

// WithPageStyle marks the list as paged by page/page_size.
func WithPageStyle() ListOption {
	return func(o *listOptions) {
		o.pageStyle = true
	}
}

// NewListController creates a controller with page size limit.
func NewListController[T any](fetch ListFetcher[T], limit int, opts ...ListOption) *ListController[T] {
	var options listOptions
	for _, opt := range opts {
		opt(&options)
	}

	if limit <= 0 {
		limit = constants.DefaultPageSize
	}

	filters := make(map[string]string, len(options.filters))

	for key, value := range options.filters {
		if value != "" {
			filters[key] = value
		}
	}

	return &ListController[T]{
		fetch:      fetch,
		cache:      options.cache,
		invalidate: options.invalidate,
		pageStyle:  options.pageStyle,
		filters:    filters,
		limit:      limit,
	}
}

// SetFilters replaces the filters and returns to the first page.
func (c *ListController[T]) SetFilters(filters map[string]string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filters = make(map[string]string, len(filters))

	for key, value := range filters {
		if value != "" {
			c.filters[key] = value
		}
	}

	c.offset = 0

	return c.bumpLocked()
}

// SetFilter changes one filter and returns to the first page. An empty value
// removes the filter.
func (c *ListController[T]) SetFilter(key, value string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}

	c.offset = 0

	return c.bumpLocked()
}

// SetLimit changes the page size and returns to the first page.
func (c *ListController[T]) SetLimit(limit int) (Ticket, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		return Ticket{}, constants.ErrInvalidPageSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.limit = limit
	c.offset = 0

	return c.bumpLocked(), nil
}

// SetOffset jumps to a row offset.
func (c *ListController[T]) SetOffset(offset int) (Ticket, error) {
	if offset < 0 {
		return Ticket{}, constants.ErrInvalidOffset
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.offset = offset

	return c.bumpLocked(), nil
}

// NextPage advances one page. It reports false, issuing no ticket, when the
// loaded page is the last one.
func (c *ListController[T]) NextPage() (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pager := c.pagerLocked()
	if !pager.HasNext() {
		return Ticket{}, false
	}

	c.offset = pager.NextOffset()

	return c.bumpLocked(), true
}

// PrevPage goes back one page. It reports false on the first page.
func (c *ListController[T]) PrevPage() (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.offset == 0 {
		return Ticket{}, false
	}

	c.offset = max(c.offset-c.limit, 0)

	return c.bumpLocked(), true
}

// Refresh issues a ticket for the current state.
func (c *ListController[T]) Refresh() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bumpLocked()
}

// Params returns the query for the current state.
func (c *ListController[T]) Params() *ops.QueryParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.paramsLocked()
}

// Fetch loads the page for ticket without touching controller state. The
// returned applier commits the result unless a newer ticket exists by then.
func (c *ListController[T]) Fetch(ctx context.Context, ticket Ticket) Applier {
	list, err := c.fetch(ctx, ticket.Params())

	return func() bool {
		return c.apply(ticket, list, err)
	}
}

// Load fetches and applies ticket in one step. A superseded result is
// dropped without error.
func (c *ListController[T]) Load(ctx context.Context, ticket Ticket) error {
	c.Fetch(ctx, ticket)()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket.generation == c.generation {
		return c.err
	}

	return nil
}

// Mutate runs a mutation. A failure is kept as an inline mutation error and
// the loaded rows stay as they are. On success the cache prefixes are
// dropped and the list is loaded again; the returned ticket is the refetch.
func (c *ListController[T]) Mutate(ctx context.Context, mutation func(ctx context.Context) error) (Ticket, error) {
	err := mutation(ctx)
	if err != nil {
		c.mu.Lock()
		c.mutationErr = err
		c.mu.Unlock()

		return Ticket{}, fmt.Errorf("mutation failed: %w", err)
	}

	c.mu.Lock()
	c.mutationErr = nil

	if c.cache != nil {
		for _, prefix := range c.invalidate {
			c.cache.Invalidate(prefix)
		}
	}

	ticket := c.bumpLocked()
	c.mu.Unlock()

	return ticket, c.Load(ctx, ticket)
}

// ClearMutationError dismisses the inline mutation error.
func (c *ListController[T]) ClearMutationError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mutationErr = nil
}

// Snapshot returns a copy of the current state.
func (c *ListController[T]) Snapshot() ListSnapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := ListSnapshot[T]{
		Status:      c.status,
		Limit:       c.limit,
		Offset:      c.offset,
		Filters:     make(map[string]string, len(c.filters)),
		Err:         c.err,
		MutationErr: c.mutationErr,
	}

	for key, value := range c.filters {
		snapshot.Filters[key] = value
	}

	if c.list != nil {
		snapshot.Items = append([]T(nil), c.list.Items...)
		snapshot.Total = c.list.Total
	}

	return snapshot
}

func (c *ListController[T]) apply(ticket Ticket, list *ops.ListResponse[T], err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket.generation != c.generation {
		return false
	}

	if err != nil {
		c.status = StatusError
		c.err = err
		c.list = nil

		return true
	}

	c.err = nil
	c.list = list

	if list == nil || len(list.Items) == 0 {
		c.status = StatusEmpty
	} else {
		c.status = StatusPopulated
	}

	return true
}

// bumpLocked starts a new fetch: loading is set and any previous error is
// cleared.
func (c *ListController[T]) bumpLocked() Ticket {
	c.generation++
	c.status = StatusLoading
	c.err = nil

	return Ticket{generation: c.generation, params: c.paramsLocked()}
}

func (c *ListController[T]) paramsLocked() *ops.QueryParams {
	params := ops.NewQueryParams().WithLimit(c.limit).WithOffset(c.offset).WithFilters(c.filters)
	params.PageStyle = c.pageStyle

	return params
}

func (c *ListController[T]) pagerLocked() ops.Pager {
	total := 0
	if c.list != nil {
		total = c.list.Total
	}

	return ops.Pager{Total: total, Limit: c.limit, Offset: c.offset}
}
