package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// OverviewScreen shows headline cards. Each section loads on its own; a
// failing section shows its own banner and leaves the others intact.
type OverviewScreen struct {
	staticScreen

	health *page.ValueController[ops.GlobalHealth]
	stats  *page.ValueController[ops.IdentityStats]
	alerts *page.ListController[ops.Alert]
}

// OverviewData is the overview in json and yaml output.
type OverviewData struct {
	Health     *ops.GlobalHealth  `json:"health,omitempty"      yaml:"health,omitempty"`
	Identity   *ops.IdentityStats `json:"identity,omitempty"    yaml:"identity,omitempty"`
	OpenAlerts *int               `json:"open_alerts,omitempty" yaml:"open_alerts,omitempty"`
	Errors     map[string]string  `json:"errors,omitempty"      yaml:"errors,omitempty"`
}

// NewOverviewScreen creates the overview.
func NewOverviewScreen(client ops.Client) *OverviewScreen {
	return &OverviewScreen{
		health: page.NewValueController(client.Health().Global),
		stats:  page.NewValueController(client.Identity().Stats),
		alerts: page.NewListController(client.Alerts().List, 1,
			page.WithInitialFilters(map[string]string{"acknowledged": "false"})),
	}
}

// Name implements Screen.
func (s *OverviewScreen) Name() string { return ScreenOverview }

// Title implements Screen.
func (s *OverviewScreen) Title() string { return "Overview" }

// Status is loading while any section loads, populated once any section has
// data and error only when every section failed.
func (s *OverviewScreen) Status() page.Status {
	statuses := []page.Status{
		s.health.Snapshot().Status,
		s.stats.Snapshot().Status,
		s.alerts.Snapshot().Status,
	}

	failed := 0

	for _, status := range statuses {
		switch status {
		case page.StatusLoading:
			return page.StatusLoading
		case page.StatusError:
			failed++
		case page.StatusIdle:
			return page.StatusIdle
		}
	}

	if failed == len(statuses) {
		return page.StatusError
	}

	return page.StatusPopulated
}

// Err returns the first section error when every section failed.
func (s *OverviewScreen) Err() error {
	if s.Status() != page.StatusError {
		return nil
	}

	return s.health.Snapshot().Err
}

// Refresh reloads every section concurrently.
func (s *OverviewScreen) Refresh() Loader {
	healthTicket := s.health.Refresh()
	statsTicket := s.stats.Refresh()
	alertsTicket := s.alerts.Refresh()

	return func(ctx context.Context) page.Applier {
		var appliers [3]page.Applier

		group, groupCtx := errgroup.WithContext(ctx)

		group.Go(func() error {
			appliers[0] = s.health.Fetch(groupCtx, healthTicket)

			return nil
		})
		group.Go(func() error {
			appliers[1] = s.stats.Fetch(groupCtx, statsTicket)

			return nil
		})
		group.Go(func() error {
			appliers[2] = s.alerts.Fetch(groupCtx, alertsTicket)

			return nil
		})

		_ = group.Wait()

		return func() bool {
			applied := false

			for _, apply := range appliers {
				if apply() {
					applied = true
				}
			}

			return applied
		}
	}
}

// Render implements Screen.
func (s *OverviewScreen) Render(w io.Writer, _ int) error {
	health := s.health.Snapshot()
	stats := s.stats.Snapshot()
	alerts := s.alerts.Snapshot()

	cards := []view.StatCard{healthCard(health)}
	cards = append(cards, identityCards(stats)...)
	cards = append(cards, alertsCard(alerts))

	var out strings.Builder

	out.WriteString(view.TitleStyle.Render("Overview") + "\n")
	out.WriteString(view.JoinCards(cards...) + "\n")

	sections := []struct {
		name string
		err  error
	}{
		{"Health", health.Err},
		{"Identity", stats.Err},
		{"Alerts", alerts.Err},
	}

	for _, section := range sections {
		if banner := page.BannerFor(section.err); banner != "" {
			out.WriteString(view.BannerStyle.Render(view.ErrorStyle.Render(section.name+": "+banner)) + "\n")
		}
	}

	_, err := io.WriteString(w, out.String())
	if err != nil {
		return fmt.Errorf("writing overview: %w", err)
	}

	return nil
}

// Data implements Screen.
func (s *OverviewScreen) Data() interface{} {
	data := &OverviewData{Errors: map[string]string{}}

	health := s.health.Snapshot()
	data.Health = health.Value

	if health.Err != nil {
		data.Errors["health"] = health.Err.Error()
	}

	stats := s.stats.Snapshot()
	data.Identity = stats.Value

	if stats.Err != nil {
		data.Errors["identity"] = stats.Err.Error()
	}

	alerts := s.alerts.Snapshot()
	if alerts.Err != nil {
		data.Errors["alerts"] = alerts.Err.Error()
	} else if alerts.Status == page.StatusPopulated || alerts.Status == page.StatusEmpty {
		total := alerts.Total
		data.OpenAlerts = &total
	}

	if len(data.Errors) == 0 {
		data.Errors = nil
	}

	return data
}

func loadingCard(title string) view.StatCard {
	return view.StatCard{Title: title, Value: "…", Variant: view.VariantMuted}
}

func failedCard(title string) view.StatCard {
	return view.StatCard{Title: title, Value: constants.NotAvailable, Hint: "unavailable", Variant: view.VariantError}
}

func healthCard(snapshot page.ValueSnapshot[ops.GlobalHealth]) view.StatCard {
	const title = "Data health"

	switch {
	case snapshot.Err != nil:
		return failedCard(title)
	case snapshot.Value == nil:
		return loadingCard(title)
	}

	health := snapshot.Value

	return view.StatCard{
		Title:   title,
		Value:   view.Humanize(health.Status),
		Hint:    fmt.Sprintf("%d ok · %d warn · %d error", health.ChecksOK, health.ChecksWarn, health.ChecksError),
		Variant: view.StatusVariant(health.Status),
	}
}

func identityCards(snapshot page.ValueSnapshot[ops.IdentityStats]) []view.StatCard {
	titles := []string{"Persons", "Unmatched", "Conversion"}

	cards := make([]view.StatCard, len(titles))

	switch {
	case snapshot.Err != nil:
		for i, title := range titles {
			cards[i] = failedCard(title)
		}

		return cards
	case snapshot.Value == nil:
		for i, title := range titles {
			cards[i] = loadingCard(title)
		}

		return cards
	}

	stats := snapshot.Value

	return []view.StatCard{
		{Title: "Persons", Value: view.FormatCount(stats.TotalPersons), Hint: view.FormatCount(stats.TotalLinks) + " links", Variant: view.VariantInfo},
		{Title: "Unmatched", Value: view.FormatCount(stats.TotalUnmatched), Variant: unmatchedVariant(stats.TotalUnmatched)},
		{Title: "Conversion", Value: view.FormatPercent(stats.ConversionRate), Variant: view.VariantDefault},
	}
}

func alertsCard(snapshot page.ListSnapshot[ops.Alert]) view.StatCard {
	const title = "Open alerts"

	switch snapshot.Status {
	case page.StatusError:
		return failedCard(title)
	case page.StatusEmpty, page.StatusPopulated:
		variant := view.VariantSuccess
		if snapshot.Total > 0 {
			variant = view.VariantWarning
		}

		return view.StatCard{Title: title, Value: view.FormatCount(snapshot.Total), Variant: variant}
	default:
		return loadingCard(title)
	}
}

func unmatchedVariant(count int) view.Variant {
	if count > 0 {
		return view.VariantWarning
	}

	return view.VariantSuccess
}
