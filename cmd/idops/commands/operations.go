package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/dashboard"
	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// confirmAction asks question on the command's streams unless force is set.
func confirmAction(cmd *cobra.Command, force bool, question string) error {
	if force {
		return nil
	}

	ok, err := view.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question)
	if err != nil {
		return err
	}

	if !ok {
		return ErrNotConfirmed
	}

	return nil
}

// NewAlertsCommand creates the alerts command group.
func NewAlertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alerts",
		Aliases: []string{"alert"},
		Short:   "Review operational alerts",
		Long:    "List operational alerts and acknowledge them",
	}

	cmd.AddCommand(newListCommand("list", "List alerts", "List operational alerts, newest first",
		func(client ops.Client, limit int) pagedScreen { return dashboard.AlertsScreen(client, limit) }))
	cmd.AddCommand(newAlertsAckCommand())

	return cmd
}

func newAlertsAckCommand() *cobra.Command {
	var (
		force    bool
		allOpen  bool
		severity string
	)

	cmd := &cobra.Command{
		Use:     "ack [ALERT_ID...]",
		Aliases: []string{"acknowledge"},
		Short:   "Acknowledge alerts",
		Long: "Acknowledge one or more operational alerts so they no longer count as open.\n" +
			"With --all-open every unacknowledged alert is collected page by page and acknowledged.",
		Example: "  idops alerts ack 12 14\n  idops alerts ack --all-open --severity warning --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			if allOpen == (len(args) > 0) {
				return constants.ErrAckTargets
			}

			if !allOpen {
				err := confirmAction(cmd, force, ackQuestion(args))
				if err != nil {
					return err
				}
			}

			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ids := args
			if allOpen {
				ids, err = openAlertIDs(cmd, env.client, severity)
				if err != nil {
					return err
				}

				if len(ids) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No open alerts")

					return nil
				}

				err = confirmAction(cmd, force, ackQuestion(ids))
				if err != nil {
					return err
				}
			}

			if len(ids) > 1 {
				builder := ops.NewBatchBuilder(env.client)
				for _, id := range ids {
					builder.AddAcknowledgeAlert(id)
				}

				return runBatch(cmd, builder.Build())
			}

			result, err := env.client.Alerts().Acknowledge(cmd.Context(), ids[0])
			if err != nil {
				return withBanner(err)
			}

			return writeActionResult(cmd, "Acknowledged alert", ids[0], result)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&allOpen, "all-open", false, "acknowledge every open alert")
	cmd.Flags().StringVar(&severity, "severity", "", "with --all-open, only alerts of this severity")
	cmd.Flags().Int("limit", constants.DefaultPageSize, "page size used while collecting open alerts")

	return cmd
}

// openAlertIDs walks every page of unacknowledged alerts.
func openAlertIDs(cmd *cobra.Command, client ops.Client, severity string) ([]string, error) {
	limit := pageSize(cmd)
	if limit <= 0 || limit > constants.MaxPageSize {
		return nil, fmt.Errorf("%w: %d", constants.ErrInvalidPageSize, limit)
	}

	params := ops.NewQueryParams().
		WithLimit(limit).
		WithFilter("acknowledged", "false").
		WithFilter("severity", severity)

	alerts, err := ops.NewPaginationIterator[ops.Alert](cmd.Context(), client.Alerts().List, params).All()
	if err != nil {
		return nil, withBanner(err)
	}

	ids := make([]string, 0, len(alerts))

	for _, alert := range alerts {
		if !alert.Acknowledged {
			ids = append(ids, strconv.Itoa(alert.ID))
		}
	}

	return ids, nil
}

func ackQuestion(ids []string) string {
	if len(ids) == 1 {
		return fmt.Sprintf("Acknowledge alert #%s?", ids[0])
	}

	return fmt.Sprintf("Acknowledge %d alerts (#%s)?", len(ids), strings.Join(ids, ", #"))
}

// runBatch executes operations and reports one row per operation. It fails
// when any operation failed.
func runBatch(cmd *cobra.Command, operations []ops.BatchOperation) error {
	results := ops.NewBatchExecutor(constants.DefaultBatchConcurrency).Execute(cmd.Context(), operations)

	err := writeOutput(cmd, results, func(w io.Writer) error {
		table := view.NewTable(
			view.Column[ops.BatchResult]{Key: "id", Header: "ID"},
			view.Column[ops.BatchResult]{Key: "label", Header: "Operation"},
			view.Column[ops.BatchResult]{Key: "success", Header: "Result", Render: func(result ops.BatchResult) string {
				if result.Success {
					return view.NewBadge("done", view.VariantSuccess).String()
				}

				return view.NewBadge("failed", view.VariantError).String()
			}},
			view.Column[ops.BatchResult]{Key: "error", Header: "Error", Render: func(result ops.BatchResult) string {
				if result.Error == nil {
					return ""
				}

				return page.BannerFor(result.Error)
			}},
		)
		table.Rows = []ops.BatchResult(results)

		return table.Render(w)
	})
	if err != nil {
		return err
	}

	return results.Err()
}

// NewHealthCommand creates the health command group.
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check data health",
		Long:  "Show the global health status, individual checks and materialized view freshness",
	}

	cmd.AddCommand(newHealthGlobalCommand())
	cmd.AddCommand(newListCommand("checks", "List health checks", "List data-health probes and their last result",
		func(client ops.Client, limit int) pagedScreen { return dashboard.HealthChecksScreen(client, limit) }))
	cmd.AddCommand(newListCommand("mv", "List materialized views", "List materialized views with their refresh state",
		func(client ops.Client, limit int) pagedScreen { return dashboard.MaterializedViewsScreen(client, limit) }))

	return cmd
}

func newHealthGlobalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show global health",
		Long:  "Show the aggregated health status and check counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			health, err := env.client.Health().Global(cmd.Context())
			if err != nil {
				return withBanner(err)
			}

			return writeObject(cmd, health)
		},
	}
}

// NewPaymentsCommand creates the payments command group.
func NewPaymentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Review driver payments",
		Long:  "Show payment eligibility and the weekly driver milestone matrix",
	}

	cmd.AddCommand(newListCommand("eligibility", "List payment eligibility", "List drivers with their milestone payment eligibility",
		func(client ops.Client, limit int) pagedScreen { return dashboard.EligibilityScreen(client, limit) }))
	cmd.AddCommand(newListCommand("driver-matrix", "Show the driver matrix", "Show the driver milestone matrix for a week; any date selects its week",
		func(client ops.Client, limit int) pagedScreen { return dashboard.DriverMatrixScreen(client, limit) }))

	return cmd
}

// NewReconciliationCommand creates the reconciliation command group.
func NewReconciliationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reconciliation",
		Aliases: []string{"recon"},
		Short:   "Reconcile claims and payments",
		Long:    "Show the weekly reconciliation summary and individual reconciliation items",
	}

	cmd.AddCommand(newListCommand("summary", "Show the reconciliation summary", "Show claimed against paid totals per week",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ReconciliationSummaryScreen(client, limit) }))
	cmd.AddCommand(newListCommand("items", "List reconciliation items", "List individual reconciliation items with anomaly classification",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ReconciliationItemsScreen(client, limit) }))

	return cmd
}

// NewScoutsCommand creates the scouts command group.
func NewScoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scouts",
		Aliases: []string{"scout"},
		Short:   "Review scout attribution",
		Long:    "Show the scout attribution backlog, conflicts and liquidation",
	}

	cmd.AddCommand(newListCommand("backlog", "Show the attribution backlog", "Show unattributed registrations per week",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ScoutBacklogScreen(client, limit) }))
	cmd.AddCommand(newListCommand("conflicts", "List attribution conflicts", "List drivers claimed by more than one scout",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ScoutConflictsScreen(client, limit) }))
	cmd.AddCommand(newListCommand("liquidation", "Show scout liquidation", "Show amounts owed to scouts",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ScoutLiquidationScreen(client, limit) }))

	return cmd
}
