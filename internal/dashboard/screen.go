// Package dashboard defines the operations pages on top of the page
// controllers and the view primitives, and the terminal program that hosts
// them.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
)

// Loader performs the I/O for one state change. The returned applier commits
// the result unless the screen moved on in the meantime.
type Loader func(ctx context.Context) page.Applier

// RowAction is a confirmed mutation on a table row.
type RowAction struct {
	Label    string
	Question string
	Run      func(ctx context.Context) error
}

// Screen is one dashboard page.
type Screen interface {
	Name() string
	Title() string
	Status() page.Status
	Err() error
	// Filters returns the screen's filter form, or nil when it has none.
	Filters() *view.FilterForm
	Refresh() Loader
	ApplyFilters(values map[string]string) (Loader, error)
	NextPage() (Loader, bool)
	PrevPage() (Loader, bool)
	// Len is the number of selectable rows.
	Len() int
	Action(row int) (*RowAction, bool)
	// Open drills into row, e.g. from a person to its detail page.
	Open(row int) (Screen, bool)
	Render(w io.Writer, cursor int) error
	// Data is the loaded data for json and yaml output.
	Data() interface{}
}

// Load runs loader and applies its result, returning the screen's load error.
func Load(ctx context.Context, screen Screen, loader Loader) error {
	loader(ctx)()

	return screen.Err()
}

// renderBanner writes the error banner for err, if any.
func renderBanner(w io.Writer, err error) error {
	banner := page.BannerFor(err)
	if banner == "" {
		return nil
	}

	_, writeErr := fmt.Fprintln(w, view.BannerStyle.Render(view.ErrorStyle.Render(banner)))
	if writeErr != nil {
		return fmt.Errorf("writing banner: %w", writeErr)
	}

	return nil
}

func renderHeading(w io.Writer, title string, form *view.FilterForm) error {
	var heading strings.Builder

	heading.WriteString(view.TitleStyle.Render(title))

	if form != nil {
		if filters := form.String(); filters != "" {
			heading.WriteString("  " + view.MutedStyle.Render("filters: "+filters))
		}
	}

	_, err := fmt.Fprintln(w, heading.String())
	if err != nil {
		return fmt.Errorf("writing heading: %w", err)
	}

	return nil
}

// staticScreen supplies the list-only methods for screens without rows.
type staticScreen struct{}

func (staticScreen) Filters() *view.FilterForm { return nil }

func (staticScreen) ApplyFilters(map[string]string) (Loader, error) {
	return nil, ErrNoFilters
}

func (staticScreen) NextPage() (Loader, bool)      { return nil, false }
func (staticScreen) PrevPage() (Loader, bool)      { return nil, false }
func (staticScreen) Len() int                      { return 0 }
func (staticScreen) Action(int) (*RowAction, bool) { return nil, false }
func (staticScreen) Open(int) (Screen, bool)       { return nil, false }
