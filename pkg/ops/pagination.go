package ops

import (
	"context"
)

// Pager is pagination math derived purely from total, limit and offset.
type Pager struct {
	Total  int `json:"total"  yaml:"total"`
	Limit  int `json:"limit"  yaml:"limit"`
	Offset int `json:"offset" yaml:"offset"`
}

// TotalPages returns ceil(total/limit), never less than 1.
func (p Pager) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}

	return (p.Total + p.Limit - 1) / p.Limit
}

// CurrentPage returns the 1-based page the offset falls in.
func (p Pager) CurrentPage() int {
	if p.Limit <= 0 {
		return 1
	}

	return p.Offset/p.Limit + 1
}

// HasNext is false exactly when offset+limit >= total.
func (p Pager) HasNext() bool {
	return p.Limit > 0 && p.Offset+p.Limit < p.Total
}

// HasPrevious reports whether an earlier page exists.
func (p Pager) HasPrevious() bool {
	return p.Offset > 0
}

// Hidden reports whether pagination controls should be suppressed because a
// single page holds everything.
func (p Pager) Hidden() bool {
	return p.Total <= p.Limit || p.Limit <= 0
}

// NextOffset returns the offset of the following page.
func (p Pager) NextOffset() int {
	if !p.HasNext() {
		return p.Offset
	}

	return p.Offset + p.Limit
}

// PreviousOffset returns the offset of the preceding page.
func (p Pager) PreviousOffset() int {
	return max(p.Offset-p.Limit, 0)
}

// Range returns the 1-based first and last row shown on this page.
func (p Pager) Range() (int, int) {
	if p.Total == 0 {
		return 0, 0
	}

	last := p.Offset + p.Limit
	if p.Limit <= 0 || last > p.Total {
		last = p.Total
	}

	return p.Offset + 1, last
}

// ListFunc fetches one page of a list endpoint.
type ListFunc[T any] func(ctx context.Context, params *QueryParams) (*ListResponse[T], error)

// PaginationIterator walks every item of an offset-paginated list.
type PaginationIterator[T any] struct {
	ctx     context.Context
	list    ListFunc[T]
	params  *QueryParams
	current []T
	index   int
	total   int
	fetched bool
	err     error
}

// NewPaginationIterator creates a new pagination iterator.
func NewPaginationIterator[T any](ctx context.Context, list ListFunc[T], params *QueryParams) *PaginationIterator[T] {
	params = params.Clone()
	if params.Limit <= 0 {
		params.Limit = DefaultPageLimit
	}

	return &PaginationIterator[T]{
		ctx:    ctx,
		list:   list,
		params: params,
	}
}

// HasNext returns true if there are more items.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}

	if !it.fetched {
		it.fetch()
	}

	if it.index < len(it.current) {
		return true
	}

	if it.params.Offset+len(it.current) >= it.total || len(it.current) == 0 {
		return false
	}

	it.params.Offset += len(it.current)
	it.fetch()

	return it.err == nil && it.index < len(it.current)
}

// Next returns the next item.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.current[it.index]
	it.index++

	return item, nil
}

// All collects every remaining item.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, item)
	}

	if it.err != nil {
		return nil, it.err
	}

	return all, nil
}

func (it *PaginationIterator[T]) fetch() {
	it.fetched = true

	resp, err := it.list(it.ctx, it.params.Clone())
	if err != nil {
		it.err = err

		return
	}

	it.current = resp.Items
	it.total = resp.Total
	it.index = 0
}
