package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// ErrNoFilters is returned when filters are applied to a screen without a form.
var ErrNoFilters = errors.New("this page has no filters")

// ListConfig describes a list screen.
type ListConfig[T any] struct {
	Name         string
	Title        string
	Fetch        page.ListFetcher[T]
	Columns      []view.Column[T]
	Fields       []view.Field
	Limit        int
	EmptyMessage string
	Options      []page.ListOption
	// Action returns the row mutation, or nil when the row has none.
	Action func(item T) *RowAction
	// Open returns the drill-down screen for a row.
	Open func(item T) Screen
}

// ListScreen is a filtered, paginated table backed by a ListController.
type ListScreen[T any] struct {
	name       string
	title      string
	controller *page.ListController[T]
	table      *view.Table[T]
	form       *view.FilterForm
	action     func(item T) *RowAction
	open       func(item T) Screen
}

// NewListScreen builds a list screen from config.
func NewListScreen[T any](config ListConfig[T]) *ListScreen[T] {
	table := view.NewTable(config.Columns...)

	if config.EmptyMessage != "" {
		table.EmptyMessage = config.EmptyMessage
	}

	var form *view.FilterForm
	if len(config.Fields) > 0 {
		form = view.NewFilterForm(config.Fields...)
	}

	return &ListScreen[T]{
		name:       config.Name,
		title:      config.Title,
		controller: page.NewListController(config.Fetch, config.Limit, config.Options...),
		table:      table,
		form:       form,
		action:     config.Action,
		open:       config.Open,
	}
}

// Name implements Screen.
func (s *ListScreen[T]) Name() string { return s.name }

// Title implements Screen.
func (s *ListScreen[T]) Title() string { return s.title }

// Controller exposes the page controller.
func (s *ListScreen[T]) Controller() *page.ListController[T] { return s.controller }

// Status implements Screen.
func (s *ListScreen[T]) Status() page.Status { return s.controller.Snapshot().Status }

// Err implements Screen.
func (s *ListScreen[T]) Err() error { return s.controller.Snapshot().Err }

// Filters implements Screen.
func (s *ListScreen[T]) Filters() *view.FilterForm { return s.form }

// Refresh implements Screen.
func (s *ListScreen[T]) Refresh() Loader {
	return s.loader(s.controller.Refresh())
}

// ApplyFilters validates values against the form and reloads from the first
// page. The form is left unchanged on a validation error.
func (s *ListScreen[T]) ApplyFilters(values map[string]string) (Loader, error) {
	if s.form == nil {
		return nil, ErrNoFilters
	}

	filters, err := s.form.Reset(values)
	if err != nil {
		return nil, fmt.Errorf("applying filters to %s: %w", s.name, err)
	}

	return s.loader(s.controller.SetFilters(filters)), nil
}

// SetLimit changes the page size.
func (s *ListScreen[T]) SetLimit(limit int) (Loader, error) {
	ticket, err := s.controller.SetLimit(limit)
	if err != nil {
		return nil, err
	}

	return s.loader(ticket), nil
}

// SetOffset jumps to a row offset.
func (s *ListScreen[T]) SetOffset(offset int) (Loader, error) {
	ticket, err := s.controller.SetOffset(offset)
	if err != nil {
		return nil, err
	}

	return s.loader(ticket), nil
}

// NextPage implements Screen.
func (s *ListScreen[T]) NextPage() (Loader, bool) {
	ticket, ok := s.controller.NextPage()
	if !ok {
		return nil, false
	}

	return s.loader(ticket), true
}

// PrevPage implements Screen.
func (s *ListScreen[T]) PrevPage() (Loader, bool) {
	ticket, ok := s.controller.PrevPage()
	if !ok {
		return nil, false
	}

	return s.loader(ticket), true
}

// Len implements Screen.
func (s *ListScreen[T]) Len() int {
	snapshot := s.controller.Snapshot()
	if snapshot.Status != page.StatusPopulated {
		return 0
	}

	return len(snapshot.Items)
}

// Action implements Screen. The returned action runs the mutation through
// the controller, which refetches the page on success.
func (s *ListScreen[T]) Action(row int) (*RowAction, bool) {
	item, ok := s.item(row)
	if !ok || s.action == nil {
		return nil, false
	}

	action := s.action(item)
	if action == nil {
		return nil, false
	}

	return &RowAction{
		Label:    action.Label,
		Question: action.Question,
		Run: func(ctx context.Context) error {
			_, err := s.controller.Mutate(ctx, action.Run)

			return err
		},
	}, true
}

// Open implements Screen.
func (s *ListScreen[T]) Open(row int) (Screen, bool) {
	item, ok := s.item(row)
	if !ok || s.open == nil {
		return nil, false
	}

	screen := s.open(item)

	return screen, screen != nil
}

// Render implements Screen. A negative cursor hides the row marker.
func (s *ListScreen[T]) Render(w io.Writer, cursor int) error {
	snapshot := s.controller.Snapshot()

	err := renderHeading(w, s.title, s.form)
	if err != nil {
		return err
	}

	if snapshot.Status == page.StatusError {
		return renderBanner(w, snapshot.Err)
	}

	if snapshot.MutationErr != nil {
		_, err = fmt.Fprintln(w, view.ErrorStyle.Render("Action failed: "+page.BannerFor(snapshot.MutationErr)))
		if err != nil {
			return fmt.Errorf("writing mutation error: %w", err)
		}
	}

	s.table.Rows = snapshot.Items
	s.table.Loading = snapshot.Status == page.StatusLoading || snapshot.Status == page.StatusIdle
	s.table.ShowCursor = cursor >= 0
	s.table.Cursor = cursor

	err = s.table.Render(w)
	if err != nil {
		return err
	}

	if s.table.Loading {
		return nil
	}

	pagination := view.NewPagination(snapshot.Total, snapshot.Limit, snapshot.Offset)
	if pagination.Hidden() {
		return nil
	}

	_, err = fmt.Fprintln(w, pagination.String())
	if err != nil {
		return fmt.Errorf("writing pagination: %w", err)
	}

	return nil
}

// Data implements Screen.
func (s *ListScreen[T]) Data() interface{} {
	snapshot := s.controller.Snapshot()

	return &ops.ListResponse[T]{
		Items:  snapshot.Items,
		Total:  snapshot.Total,
		Limit:  snapshot.Limit,
		Offset: snapshot.Offset,
	}
}

func (s *ListScreen[T]) item(row int) (T, bool) {
	var zero T

	snapshot := s.controller.Snapshot()
	if row < 0 || row >= len(snapshot.Items) {
		return zero, false
	}

	return snapshot.Items[row], true
}

func (s *ListScreen[T]) loader(ticket page.Ticket) Loader {
	return func(ctx context.Context) page.Applier {
		return s.controller.Fetch(ctx, ticket)
	}
}
