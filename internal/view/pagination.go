package view

import (
	"fmt"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Pagination is the page control under a list. It is derived from
// total/limit/offset only.
type Pagination struct {
	pager ops.Pager
}

// NewPagination creates a pagination control.
func NewPagination(total, limit, offset int) Pagination {
	return Pagination{pager: ops.Pager{Total: total, Limit: limit, Offset: offset}}
}

// PaginationFor creates the control for a loaded list.
func PaginationFor[T any](list *ops.ListResponse[T]) Pagination {
	if list == nil {
		return Pagination{}
	}

	return Pagination{pager: list.Pager()}
}

// Pager exposes the underlying math.
func (p Pagination) Pager() ops.Pager {
	return p.pager
}

// Hidden reports whether a single page holds everything.
func (p Pagination) Hidden() bool {
	return p.pager.Hidden()
}

// NextDisabled is true exactly when offset+limit >= total.
func (p Pagination) NextDisabled() bool {
	return !p.pager.HasNext()
}

// PreviousDisabled is true on the first page.
func (p Pagination) PreviousDisabled() bool {
	return !p.pager.HasPrevious()
}

// Label returns "Page p of n".
func (p Pagination) Label() string {
	return fmt.Sprintf("Page %d of %d", p.pager.CurrentPage(), p.pager.TotalPages())
}

// RangeLabel returns "Showing a–b of total".
func (p Pagination) RangeLabel() string {
	from, to := p.pager.Range()

	return fmt.Sprintf("Showing %s–%s of %s", FormatCount(from), FormatCount(to), FormatCount(p.pager.Total))
}

// String renders the control, or "" when hidden.
func (p Pagination) String() string {
	if p.Hidden() {
		return ""
	}

	previous := "‹ prev (p)"
	if p.PreviousDisabled() {
		previous = disabledLink.Render(previous)
	}

	next := "next (n) ›"
	if p.NextDisabled() {
		next = disabledLink.Render(next)
	}

	return fmt.Sprintf("%s   %s · %s   %s", previous, p.Label(), MutedStyle.Render(p.RangeLabel()), next)
}
