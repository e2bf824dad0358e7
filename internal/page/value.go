package page

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// ValueFetcher loads a single value such as stats or a detail record.
type ValueFetcher[T any] func(ctx context.Context) (*T, error)

// ValueSnapshot is a consistent copy of a value controller's state.
type ValueSnapshot[T any] struct {
	Status   Status
	Value    *T
	Err      error
	NotFound bool
}

// ValueController owns the load state of a single-value section.
type ValueController[T any] struct {
	mu         sync.Mutex
	fetch      ValueFetcher[T]
	generation uint64
	status     Status
	value      *T
	err        error
}

// NewValueController creates a value controller.
func NewValueController[T any](fetch ValueFetcher[T]) *ValueController[T] {
	return &ValueController[T]{fetch: fetch}
}

// Refresh issues a ticket for a new load.
func (c *ValueController[T]) Refresh() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.status = StatusLoading
	c.err = nil

	return Ticket{generation: c.generation}
}

// Fetch loads the value without touching state.
func (c *ValueController[T]) Fetch(ctx context.Context, ticket Ticket) Applier {
	value, err := c.fetch(ctx)

	return func() bool {
		return c.apply(ticket, value, err)
	}
}

// Load fetches and applies ticket.
func (c *ValueController[T]) Load(ctx context.Context, ticket Ticket) error {
	c.Fetch(ctx, ticket)()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket.generation == c.generation {
		return c.err
	}

	return nil
}

// Snapshot returns a copy of the current state. NotFound marks a 404 so the
// page can offer a way back instead of a retry.
func (c *ValueController[T]) Snapshot() ValueSnapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ValueSnapshot[T]{
		Status:   c.status,
		Value:    c.value,
		Err:      c.err,
		NotFound: c.err != nil && ops.IsNotFound(c.err),
	}
}

func (c *ValueController[T]) apply(ticket Ticket, value *T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket.generation != c.generation {
		return false
	}

	if err != nil {
		c.status = StatusError
		c.err = err
		c.value = nil

		return true
	}

	c.err = nil
	c.value = value

	if value == nil {
		c.status = StatusEmpty
	} else {
		c.status = StatusPopulated
	}

	return true
}
