package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Screen names, used for tabs and CLI lookup.
const (
	ScreenOverview              = "overview"
	ScreenPersons               = "persons"
	ScreenRuns                  = "runs"
	ScreenViolations            = "violations"
	ScreenAlerts                = "alerts"
	ScreenHealthChecks          = "health"
	ScreenMaterializedViews     = "mv"
	ScreenEligibility           = "eligibility"
	ScreenDriverMatrix          = "driver-matrix"
	ScreenReconciliationSummary = "reconciliation"
	ScreenReconciliationItems   = "reconciliation-items"
	ScreenScoutBacklog          = "scout-backlog"
	ScreenScoutConflicts        = "scout-conflicts"
	ScreenScoutLiquidation      = "scout-liquidation"
)

var (
	severityOptions   = []string{"info", "warning", "error", "critical"}
	originOptions     = []string{"cabinet", "fleet_migration"}
	milestoneOptions  = []string{"1", "5", "25"}
	healthOptions     = []string{"ok", "warn", "error"}
	paidStatusOptions = []string{ops.PaidStatusPaid, ops.PaidStatusPendingActive, ops.PaidStatusPendingExpired, ops.PaidStatusNotPaid}
)

// Screens returns every dashboard page in tab order.
func Screens(client ops.Client, limit int) []Screen {
	return []Screen{
		NewOverviewScreen(client),
		PersonsScreen(client, limit),
		RunsScreen(client, limit),
		ViolationsScreen(client, limit),
		AlertsScreen(client, limit),
		HealthChecksScreen(client, limit),
		MaterializedViewsScreen(client, limit),
		EligibilityScreen(client, limit),
		DriverMatrixScreen(client, limit),
		ReconciliationSummaryScreen(client, limit),
		ReconciliationItemsScreen(client, limit),
		ScoutBacklogScreen(client, limit),
		ScoutConflictsScreen(client, limit),
		ScoutLiquidationScreen(client, limit),
	}
}

// Find returns the screen named name.
func Find(screens []Screen, name string) (Screen, bool) {
	for _, screen := range screens {
		if screen.Name() == name {
			return screen, true
		}
	}

	return nil, false
}

// PersonsScreen lists canonical persons; opening a row shows its detail.
func PersonsScreen(client ops.Client, limit int) *ListScreen[ops.Person] {
	return NewListScreen(ListConfig[ops.Person]{
		Name:  ScreenPersons,
		Title: "Persons",
		Fetch: client.Identity().ListPersons,
		Limit: limit,
		Columns: []view.Column[ops.Person]{
			field[ops.Person]("person_key", "Person"),
			field[ops.Person]("primary_full_name", "Name"),
			field[ops.Person]("primary_phone", "Phone"),
			field[ops.Person]("primary_license", "License"),
			statusColumn("confidence_level", "Confidence", func(p ops.Person) string { return p.ConfidenceLevel }),
			field[ops.Person]("links_count", "Links"),
			custom("created_at", "Created", func(p ops.Person) string { return view.FormatDate(&p.CreatedAt) }),
		},
		Fields: []view.Field{
			{Key: "name", Label: "Name", Type: view.FieldText},
			{Key: "phone", Label: "Phone", Type: view.FieldText},
			{Key: "license", Label: "License", Type: view.FieldText},
			{Key: "confidence_level", Label: "Confidence", Type: view.FieldSelect, Options: []string{"high", "medium", "low"}},
		},
		EmptyMessage: "No persons match these filters",
		Open: func(p ops.Person) Screen {
			return NewPersonScreen(client, p.PersonKey)
		},
	})
}

// RunsScreen lists identity matching runs.
func RunsScreen(client ops.Client, limit int) *ListScreen[ops.IdentityRun] {
	return NewListScreen(ListConfig[ops.IdentityRun]{
		Name:  ScreenRuns,
		Title: "Identity runs",
		Fetch: client.Identity().ListRuns,
		Limit: limit,
		Columns: []view.Column[ops.IdentityRun]{
			field[ops.IdentityRun]("id", "Run"),
			statusColumn("status", "Status", func(r ops.IdentityRun) string { return r.Status }),
			custom("started_at", "Started", func(r ops.IdentityRun) string { return view.FormatDateTime(&r.StartedAt) }),
			dateTimeColumn("completed_at", "Completed", func(r ops.IdentityRun) *time.Time { return r.CompletedAt }),
			custom("scope", "Scope", func(r ops.IdentityRun) string {
				if r.ScopeDateFrom == "" && r.ScopeDateTo == "" {
					return "all"
				}

				return view.FormatDateString(r.ScopeDateFrom) + " – " + view.FormatDateString(r.ScopeDateTo)
			}),
			field[ops.IdentityRun]("incremental", "Incremental"),
			textColumn("error_message", "Error", func(r ops.IdentityRun) string { return r.ErrorMessage }),
		},
		Fields: []view.Field{
			{Key: "status", Label: "Status", Type: view.FieldSelect, Options: []string{"running", "completed", "failed"}},
		},
		EmptyMessage: "No runs yet",
	})
}

// ViolationsScreen lists origin violations; open rows can be resolved.
func ViolationsScreen(client ops.Client, limit int) *ListScreen[ops.OriginViolation] {
	return NewListScreen(ListConfig[ops.OriginViolation]{
		Name:  ScreenViolations,
		Title: "Origin violations",
		Fetch: client.Identity().ListOriginViolations,
		Limit: limit,
		Columns: []view.Column[ops.OriginViolation]{
			field[ops.OriginViolation]("id", "ID"),
			field[ops.OriginViolation]("person_key", "Person"),
			custom("violation_type", "Violation", func(v ops.OriginViolation) string { return view.Humanize(v.ViolationType) }),
			field[ops.OriginViolation]("origin_tag", "Origin"),
			statusColumn("severity", "Severity", func(v ops.OriginViolation) string { return v.Severity }),
			custom("detected_at", "Detected", func(v ops.OriginViolation) string { return view.FormatDateTime(&v.DetectedAt) }),
			actionColumn(func(v ops.OriginViolation) bool { return !v.Resolved }, "resolve", "resolved"),
		},
		Fields: []view.Field{
			{Key: "violation_type", Label: "Violation", Type: view.FieldText},
			{Key: "severity", Label: "Severity", Type: view.FieldSelect, Options: []string{"low", "medium", "high"}},
			{Key: "resolved", Label: "Resolved", Type: view.FieldCheckbox},
		},
		EmptyMessage: "No origin violations",
		Action: func(v ops.OriginViolation) *RowAction {
			if v.Resolved {
				return nil
			}

			return &RowAction{
				Label:    "resolve",
				Question: fmt.Sprintf("Resolve violation #%d for %s?", v.ID, v.PersonKey),
				Run: func(ctx context.Context) error {
					_, err := client.Identity().ResolveViolation(ctx, strconv.Itoa(v.ID), &ops.ResolveViolationRequest{Resolution: "resolved"})

					return err
				},
			}
		},
	})
}

// AlertsScreen lists operational alerts; open alerts can be acknowledged.
func AlertsScreen(client ops.Client, limit int) *ListScreen[ops.Alert] {
	return NewListScreen(ListConfig[ops.Alert]{
		Name:  ScreenAlerts,
		Title: "Alerts",
		Fetch: client.Alerts().List,
		Limit: limit,
		Columns: []view.Column[ops.Alert]{
			field[ops.Alert]("id", "ID"),
			statusColumn("severity", "Severity", func(a ops.Alert) string { return a.Severity }),
			custom("alert_type", "Type", func(a ops.Alert) string { return view.Humanize(a.AlertType) }),
			textColumn("message", "Message", func(a ops.Alert) string { return a.Message }),
			custom("detected_at", "Detected", func(a ops.Alert) string { return view.FormatDateTime(&a.DetectedAt) }),
			actionColumn(func(a ops.Alert) bool { return !a.Acknowledged }, "ack", "acknowledged"),
		},
		Fields: []view.Field{
			{Key: "severity", Label: "Severity", Type: view.FieldSelect, Options: severityOptions},
			{Key: "alert_type", Label: "Type", Type: view.FieldText},
			{Key: "acknowledged", Label: "Acknowledged", Type: view.FieldCheckbox},
		},
		EmptyMessage: "No alerts",
		Action: func(a ops.Alert) *RowAction {
			if a.Acknowledged {
				return nil
			}

			return &RowAction{
				Label:    "ack",
				Question: fmt.Sprintf("Acknowledge alert #%d (%s)?", a.ID, view.Humanize(a.AlertType)),
				Run: func(ctx context.Context) error {
					_, err := client.Alerts().Acknowledge(ctx, strconv.Itoa(a.ID))

					return err
				},
			}
		},
	})
}

// HealthChecksScreen lists data health checks.
func HealthChecksScreen(client ops.Client, limit int) *ListScreen[ops.HealthCheck] {
	return NewListScreen(ListConfig[ops.HealthCheck]{
		Name:  ScreenHealthChecks,
		Title: "Health checks",
		Fetch: client.Health().Checks,
		Limit: limit,
		Columns: []view.Column[ops.HealthCheck]{
			field[ops.HealthCheck]("check_key", "Check"),
			statusColumn("severity", "Severity", func(c ops.HealthCheck) string { return c.Severity }),
			statusColumn("status", "Status", func(c ops.HealthCheck) string { return c.Status }),
			textColumn("message", "Message", func(c ops.HealthCheck) string { return c.Message }),
			dateTimeColumn("last_run_at", "Last run", func(c ops.HealthCheck) *time.Time { return c.LastRunAt }),
		},
		Fields: []view.Field{
			{Key: "status", Label: "Status", Type: view.FieldSelect, Options: healthOptions},
			{Key: "severity", Label: "Severity", Type: view.FieldSelect, Options: severityOptions},
		},
		EmptyMessage: "No health checks",
	})
}

// MaterializedViewsScreen lists materialized view freshness.
func MaterializedViewsScreen(client ops.Client, limit int) *ListScreen[ops.MaterializedViewHealth] {
	return NewListScreen(ListConfig[ops.MaterializedViewHealth]{
		Name:  ScreenMaterializedViews,
		Title: "Materialized views",
		Fetch: client.Health().MaterializedViews,
		Limit: limit,
		Columns: []view.Column[ops.MaterializedViewHealth]{
			field[ops.MaterializedViewHealth]("schema_name", "Schema"),
			field[ops.MaterializedViewHealth]("mv_name", "View"),
			field[ops.MaterializedViewHealth]("is_populated", "Populated"),
			field[ops.MaterializedViewHealth]("size_mb", "Size (MB)"),
			dateTimeColumn("last_refresh_at", "Last refresh", func(v ops.MaterializedViewHealth) *time.Time { return v.LastRefreshAt }),
			field[ops.MaterializedViewHealth]("minutes_since_refresh", "Minutes since"),
			statusColumn("status", "Status", func(v ops.MaterializedViewHealth) string { return v.Status }),
		},
		Fields: []view.Field{
			{Key: "status", Label: "Status", Type: view.FieldSelect, Options: []string{"ok", "stale", "error"}},
			{Key: "schema_name", Label: "Schema", Type: view.FieldText},
		},
	})
}

// EligibilityScreen lists payment eligibility per milestone.
func EligibilityScreen(client ops.Client, limit int) *ListScreen[ops.PaymentEligibility] {
	return NewListScreen(ListConfig[ops.PaymentEligibility]{
		Name:  ScreenEligibility,
		Title: "Payment eligibility",
		Fetch: client.Payments().Eligibility,
		Limit: limit,
		Columns: []view.Column[ops.PaymentEligibility]{
			field[ops.PaymentEligibility]("person_key", "Person"),
			field[ops.PaymentEligibility]("driver_id", "Driver"),
			field[ops.PaymentEligibility]("origin_tag", "Origin"),
			field[ops.PaymentEligibility]("milestone_value", "Milestone"),
			custom("lead_date", "Lead date", func(e ops.PaymentEligibility) string { return view.FormatDateString(e.LeadDate) }),
			custom("amount", "Amount", func(e ops.PaymentEligibility) string { return view.FormatAmount(e.Amount, e.Currency) }),
			custom("is_payable", "Payable", func(e ops.PaymentEligibility) string {
				if e.IsPayable {
					return view.NewBadge("payable", view.VariantSuccess).String()
				}

				return view.NewBadge("not payable", view.VariantMuted).String()
			}),
			textColumn("payable_reason", "Reason", func(e ops.PaymentEligibility) string { return e.Reason }),
		},
		Fields: []view.Field{
			{Key: "origin_tag", Label: "Origin", Type: view.FieldSelect, Options: originOptions},
			{Key: "milestone_value", Label: "Milestone", Type: view.FieldSelect, Options: milestoneOptions},
			{Key: "is_payable", Label: "Payable", Type: view.FieldCheckbox},
			{Key: "date_from", Label: "Lead date from", Type: view.FieldDate},
			{Key: "date_to", Label: "Lead date to", Type: view.FieldDate},
		},
	})
}

// DriverMatrixScreen shows the driver milestone matrix, one row per driver.
func DriverMatrixScreen(client ops.Client, limit int) *ListScreen[ops.DriverMilestoneRow] {
	return NewListScreen(ListConfig[ops.DriverMilestoneRow]{
		Name:  ScreenDriverMatrix,
		Title: "Driver milestones",
		Fetch: weekStartFilters(client.Payments().DriverMatrix, "week_start"),
		Limit: limit,
		Columns: []view.Column[ops.DriverMilestoneRow]{
			field[ops.DriverMilestoneRow]("driver_id", "Driver"),
			field[ops.DriverMilestoneRow]("driver_name", "Name"),
			field[ops.DriverMilestoneRow]("origin_tag", "Origin"),
			custom("week_start", "Week", func(r ops.DriverMilestoneRow) string { return view.FormatDateString(r.WeekStart) }),
			custom("m1", "M1", func(r ops.DriverMilestoneRow) string { return milestoneCell(r.M1Achieved, r.M1Paid) }),
			custom("m5", "M5", func(r ops.DriverMilestoneRow) string { return milestoneCell(r.M5Achieved, r.M5Paid) }),
			custom("m25", "M25", func(r ops.DriverMilestoneRow) string { return milestoneCell(r.M25Achieved, r.M25Paid) }),
			custom("expected_total", "Expected", func(r ops.DriverMilestoneRow) string { return view.FormatOptionalAmount(r.ExpectedTotal, "") }),
			custom("paid_total", "Paid", func(r ops.DriverMilestoneRow) string { return view.FormatOptionalAmount(r.PaidTotal, "") }),
			custom("m5_without_m1", "Flags", func(r ops.DriverMilestoneRow) string {
				if r.InconsistentM5 {
					return view.NewBadge("M5 without M1", view.VariantWarning).String()
				}

				return ""
			}),
		},
		Fields: []view.Field{
			{Key: "origin_tag", Label: "Origin", Type: view.FieldSelect, Options: originOptions},
			{Key: "week_start", Label: "Week", Type: view.FieldDate, Help: "any date; the Monday of its week is used"},
			{Key: "only_pending", Label: "Only pending", Type: view.FieldCheckbox},
		},
	})
}

// ReconciliationSummaryScreen aggregates expected vs paid by week.
func ReconciliationSummaryScreen(client ops.Client, limit int) *ListScreen[ops.ReconciliationSummaryRow] {
	return NewListScreen(ListConfig[ops.ReconciliationSummaryRow]{
		Name:  ScreenReconciliationSummary,
		Title: "Reconciliation summary",
		Fetch: weekStartFilters(client.Reconciliation().Summary, "week_start"),
		Limit: limit,
		Columns: []view.Column[ops.ReconciliationSummaryRow]{
			custom("pay_week_start_monday", "Week", func(r ops.ReconciliationSummaryRow) string { return view.FormatDateString(r.PayWeekStart) }),
			field[ops.ReconciliationSummaryRow]("milestone_value", "Milestone"),
			field[ops.ReconciliationSummaryRow]("count_expected", "Expected"),
			field[ops.ReconciliationSummaryRow]("count_paid", "Paid"),
			field[ops.ReconciliationSummaryRow]("count_pending", "Pending"),
			custom("amount_expected_sum", "Expected amount", func(r ops.ReconciliationSummaryRow) string { return view.FormatAmount(r.AmountExpected, "") }),
			custom("amount_paid_sum", "Paid amount", func(r ops.ReconciliationSummaryRow) string { return view.FormatAmount(r.AmountPaid, "") }),
			custom("amount_diff", "Difference", func(r ops.ReconciliationSummaryRow) string { return view.FormatAmount(r.AmountDiff, "") }),
		},
		Fields: []view.Field{
			{Key: "week_start", Label: "Week", Type: view.FieldDate},
			{Key: "milestone_value", Label: "Milestone", Type: view.FieldSelect, Options: milestoneOptions},
		},
	})
}

// ReconciliationItemsScreen lists reconciliation items with a local anomaly
// label.
func ReconciliationItemsScreen(client ops.Client, limit int) *ListScreen[ops.ReconciliationItem] {
	return NewListScreen(ListConfig[ops.ReconciliationItem]{
		Name:  ScreenReconciliationItems,
		Title: "Reconciliation items",
		Fetch: weekStartFilters(client.Reconciliation().Items, "week_start"),
		Limit: limit,
		Columns: []view.Column[ops.ReconciliationItem]{
			field[ops.ReconciliationItem]("driver_id", "Driver"),
			custom("pay_week_start_monday", "Week", func(i ops.ReconciliationItem) string { return view.FormatDateString(i.PayWeekStart) }),
			field[ops.ReconciliationItem]("milestone_value", "Milestone"),
			custom("expected_amount", "Expected", func(i ops.ReconciliationItem) string { return view.FormatOptionalAmount(i.ExpectedAmount, i.Currency) }),
			statusColumn("paid_status", "Paid status", func(i ops.ReconciliationItem) string { return optionalString(i.PaidStatus) }),
			custom("paid_amount", "Paid", func(i ops.ReconciliationItem) string { return view.FormatOptionalAmount(i.PaidAmount, i.Currency) }),
			custom("anomaly", "Anomaly", anomalyBadge),
		},
		Fields: []view.Field{
			{Key: "paid_status", Label: "Paid status", Type: view.FieldSelect, Options: paidStatusOptions},
			{Key: "week_start", Label: "Week", Type: view.FieldDate},
			{Key: "milestone_value", Label: "Milestone", Type: view.FieldSelect, Options: milestoneOptions},
			{Key: "driver_id", Label: "Driver", Type: view.FieldText},
		},
	})
}

// ScoutBacklogScreen counts leads waiting for scout attribution.
func ScoutBacklogScreen(client ops.Client, limit int) *ListScreen[ops.ScoutBacklogRow] {
	return NewListScreen(ListConfig[ops.ScoutBacklogRow]{
		Name:  ScreenScoutBacklog,
		Title: "Scout backlog",
		Fetch: weekStartFilters(client.Scouts().Backlog, "week_start"),
		Limit: limit,
		Columns: []view.Column[ops.ScoutBacklogRow]{
			field[ops.ScoutBacklogRow]("source", "Source"),
			custom("week_start", "Week", func(r ops.ScoutBacklogRow) string { return view.FormatDateString(r.WeekStart) }),
			field[ops.ScoutBacklogRow]("leads_total", "Leads"),
			field[ops.ScoutBacklogRow]("with_scout", "With scout"),
			field[ops.ScoutBacklogRow]("without_scout", "Without scout"),
			custom("coverage_ratio", "Coverage", func(r ops.ScoutBacklogRow) string { return view.FormatPercent(r.CoverageRatio) }),
			custom("oldest_pending", "Oldest pending", func(r ops.ScoutBacklogRow) string { return view.FormatDateString(r.OldestPending) }),
		},
		Fields: []view.Field{
			{Key: "source", Label: "Source", Type: view.FieldText},
			{Key: "week_start", Label: "Week", Type: view.FieldDate},
		},
	})
}

// ScoutConflictsScreen lists leads claimed by more than one scout.
func ScoutConflictsScreen(client ops.Client, limit int) *ListScreen[ops.ScoutConflict] {
	return NewListScreen(ListConfig[ops.ScoutConflict]{
		Name:  ScreenScoutConflicts,
		Title: "Scout conflicts",
		Fetch: client.Scouts().Conflicts,
		Limit: limit,
		Columns: []view.Column[ops.ScoutConflict]{
			field[ops.ScoutConflict]("person_key", "Person"),
			field[ops.ScoutConflict]("driver_id", "Driver"),
			custom("scout_ids", "Scouts", func(c ops.ScoutConflict) string { return joinInts(c.ScoutIDs) }),
			field[ops.ScoutConflict]("sources", "Sources"),
			custom("first_seen_date", "First seen", func(c ops.ScoutConflict) string { return view.FormatDateString(c.FirstSeenDate) }),
			custom("conflict_type", "Conflict", func(c ops.ScoutConflict) string { return view.Humanize(c.ConflictType) }),
		},
		Fields: []view.Field{
			{Key: "conflict_type", Label: "Conflict", Type: view.FieldText},
		},
		EmptyMessage: "No attribution conflicts",
	})
}

// ScoutLiquidationScreen shows each scout's payout position.
func ScoutLiquidationScreen(client ops.Client, limit int) *ListScreen[ops.ScoutLiquidationRow] {
	return NewListScreen(ListConfig[ops.ScoutLiquidationRow]{
		Name:  ScreenScoutLiquidation,
		Title: "Scout liquidation",
		Fetch: client.Scouts().Liquidation,
		Limit: limit,
		Columns: []view.Column[ops.ScoutLiquidationRow]{
			field[ops.ScoutLiquidationRow]("scout_id", "Scout"),
			field[ops.ScoutLiquidationRow]("scout_name", "Name"),
			custom("period_start", "Period", func(r ops.ScoutLiquidationRow) string { return view.FormatDateString(r.PeriodStart) }),
			field[ops.ScoutLiquidationRow]("drivers_count", "Drivers"),
			field[ops.ScoutLiquidationRow]("payable_count", "Payable"),
			custom("amount_payable", "Amount payable", func(r ops.ScoutLiquidationRow) string { return view.FormatAmount(r.AmountPayable, "") }),
			custom("amount_paid", "Amount paid", func(r ops.ScoutLiquidationRow) string { return view.FormatAmount(r.AmountPaid, "") }),
			custom("amount_pending", "Amount pending", func(r ops.ScoutLiquidationRow) string { return view.FormatAmount(r.AmountPending, "") }),
			statusColumn("status", "Status", func(r ops.ScoutLiquidationRow) string { return r.LiquidationTag }),
		},
		Fields: []view.Field{
			{Key: "scout_id", Label: "Scout", Type: view.FieldNumber},
			{Key: "period_start", Label: "Period start", Type: view.FieldDate},
		},
	})
}

// weekStartFilters snaps the given date filters to the Monday of their week
// before the request is sent.
func weekStartFilters[T any](fetch func(context.Context, *ops.QueryParams) (*ops.ListResponse[T], error), keys ...string) func(context.Context, *ops.QueryParams) (*ops.ListResponse[T], error) {
	return func(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[T], error) {
		params = params.Clone()

		for _, key := range keys {
			value, ok := params.Filters[key]
			if !ok {
				continue
			}

			monday, err := ops.WeekStart(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}

			params.Filters[key] = monday
		}

		return fetch(ctx, params)
	}
}
