package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/dashboard"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var exportScreens = map[ops.ExportKind]screenFactory{
	ops.ExportDriverMatrix: func(client ops.Client, limit int) pagedScreen {
		return dashboard.DriverMatrixScreen(client, limit)
	},
	ops.ExportScoutLiquidation: func(client ops.Client, limit int) pagedScreen {
		return dashboard.ScoutLiquidationScreen(client, limit)
	},
	ops.ExportReconciliationItems: func(client ops.Client, limit int) pagedScreen {
		return dashboard.ReconciliationItemsScreen(client, limit)
	},
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		file  string
		force bool
	)

	kinds := make([]string, 0, len(ops.ExportKinds()))
	for _, kind := range ops.ExportKinds() {
		kinds = append(kinds, string(kind))
	}

	cmd := &cobra.Command{
		Use:   "export KIND [FILTER=VALUE ...]",
		Short: "Download a CSV export",
		Long: "Download a CSV export using the same filters as the matching list.\n\n" +
			"Kinds: " + strings.Join(kinds, ", ") + "\n" +
			"Example: idops export driver-matrix week_start=2025-12-15 origin_tag=cabinet",
		Args:      cobra.MinimumNArgs(constants.OneArgumentRequired),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := ops.ExportKind(args[0])

			factory, ok := exportScreens[kind]
			if !ok || !slices.Contains(ops.ExportKinds(), kind) {
				return fmt.Errorf("%w: %s (valid: %s)", constants.ErrUnknownExport, args[0], strings.Join(kinds, ", "))
			}

			form := factory(offlineClient(), constants.DefaultPageSize).Filters()

			values, err := form.ParseAssignments(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			values, err = normalizeWeek(values)
			if err != nil {
				return err
			}

			env, err := newEnvironment(cmd, func(config *ops.Config) {
				if !cmd.Flags().Changed("timeout") {
					config.HTTPTimeout = constants.ExportHTTPTimeout
				}
			})
			if err != nil {
				return err
			}
			defer env.Close()

			out, closeOut, err := exportWriter(cmd, file, force)
			if err != nil {
				return err
			}

			written, err := env.client.Exports().Export(cmd.Context(), kind, ops.NewQueryParams().WithFilters(values), out)

			closeErr := closeOut()
			if err != nil {
				return withBanner(err)
			}

			if closeErr != nil {
				return fmt.Errorf("failed to close export file: %w", closeErr)
			}

			if file != "" && file != "-" {
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", written, file)
			}

			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "output file (stdout when omitted or '-')")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// normalizeWeek replaces week_start with the Monday of its week.
func normalizeWeek(values map[string]string) (map[string]string, error) {
	value, ok := values["week_start"]
	if !ok {
		return values, nil
	}

	monday, err := ops.WeekStart(value)
	if err != nil {
		return nil, fmt.Errorf("week_start: %w", err)
	}

	values["week_start"] = monday

	return values, nil
}

func exportWriter(cmd *cobra.Command, file string, force bool) (io.Writer, func() error, error) {
	if file == "" || file == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	path, err := validateOutputPath(file)
	if err != nil {
		return nil, nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	handle, err := os.OpenFile(path, flags, constants.ConfigFilePerm)
	if err != nil {
		if os.IsExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrOutputFileExists, path)
		}

		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return handle, handle.Close, nil
}
