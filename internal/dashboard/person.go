package dashboard

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// PersonScreen is the detail page of one person: its canonical fields and
// its identity links.
type PersonScreen struct {
	staticScreen

	key        string
	controller *page.ValueController[ops.PersonDetail]
	links      *view.Table[ops.IdentityLink]
}

// NewPersonScreen creates the detail page for personKey.
func NewPersonScreen(client ops.Client, personKey string) *PersonScreen {
	return &PersonScreen{
		key: personKey,
		controller: page.NewValueController(func(ctx context.Context) (*ops.PersonDetail, error) {
			return client.Identity().GetPerson(ctx, personKey)
		}),
		links: view.NewTable(
			field[ops.IdentityLink]("source_table", "Source"),
			field[ops.IdentityLink]("source_pk", "Record"),
			custom("match_rule", "Rule", func(l ops.IdentityLink) string { return view.Humanize(l.MatchRule) }),
			custom("match_score", "Score", func(l ops.IdentityLink) string { return strconv.FormatFloat(l.MatchScore, 'f', 2, 64) }),
			statusColumn("confidence_level", "Confidence", func(l ops.IdentityLink) string { return l.ConfidenceTier }),
			custom("linked_at", "Linked", func(l ops.IdentityLink) string { return view.FormatDateTime(&l.LinkedAt) }),
		),
	}
}

// Name implements Screen.
func (s *PersonScreen) Name() string { return "person" }

// Title implements Screen.
func (s *PersonScreen) Title() string { return "Person " + s.key }

// Status implements Screen.
func (s *PersonScreen) Status() page.Status { return s.controller.Snapshot().Status }

// Err implements Screen.
func (s *PersonScreen) Err() error { return s.controller.Snapshot().Err }

// NotFound reports whether the person does not exist.
func (s *PersonScreen) NotFound() bool { return s.controller.Snapshot().NotFound }

// Refresh implements Screen.
func (s *PersonScreen) Refresh() Loader {
	ticket := s.controller.Refresh()

	return func(ctx context.Context) page.Applier {
		return s.controller.Fetch(ctx, ticket)
	}
}

// Render implements Screen.
func (s *PersonScreen) Render(w io.Writer, _ int) error {
	snapshot := s.controller.Snapshot()

	err := renderHeading(w, s.Title(), nil)
	if err != nil {
		return err
	}

	switch {
	case snapshot.NotFound:
		_, err = fmt.Fprintln(w, view.MutedStyle.Render("Person "+s.key+" was not found. Press esc to go back to the list."))
		if err != nil {
			return fmt.Errorf("writing not found: %w", err)
		}

		return nil
	case snapshot.Err != nil:
		return renderBanner(w, snapshot.Err)
	case snapshot.Value == nil:
		s.links.Loading = true
		s.links.Rows = nil

		return s.links.Render(w)
	}

	person := snapshot.Value.Person

	err = view.WriteKeyValues(w, [][2]string{
		{"Person key", person.PersonKey},
		{"Name", view.FormatValue(person.FullName)},
		{"Phone", view.FormatValue(person.Phone)},
		{"License", view.FormatValue(person.License)},
		{"Driver", view.FormatValue(person.DriverID)},
		{"Confidence", view.StatusBadge(person.ConfidenceLevel).String()},
		{"Created", view.FormatDateTime(&person.CreatedAt)},
		{"Updated", view.FormatDateTime(person.UpdatedAt)},
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, view.TitleStyle.Render(fmt.Sprintf("Links (%d)", len(snapshot.Value.Links))))
	if err != nil {
		return fmt.Errorf("writing links heading: %w", err)
	}

	s.links.Loading = false
	s.links.Rows = snapshot.Value.Links
	s.links.EmptyMessage = "No identity links"

	return s.links.Render(w)
}

// Data implements Screen.
func (s *PersonScreen) Data() interface{} {
	return s.controller.Snapshot().Value
}
