package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/dashboard"
)

// NewOverviewCommand creates the overview command.
func NewOverviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the overview",
		Long:  "Show global health, identity totals and open alerts. Sections that fail are reported individually",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			screen := dashboard.NewOverviewScreen(env.client)

			return renderScreen(cmd, screen, screen.Refresh())
		},
	}
}

// NewDashboardCommand creates the interactive dashboard command.
func NewDashboardCommand() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Long:    "Open the terminal dashboard with one tab per page. Key bindings are listed at the bottom of the screen",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			screens := dashboard.Screens(env.client, pageSize(cmd))

			if start != "" {
				screens, err = startAt(screens, start)
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if cache := env.client.Cache(); cache != nil {
				go cache.Run(ctx)
			}

			return dashboard.Run(ctx, screens, env.logger)
		},
	}

	cmd.Flags().StringVar(&start, "screen", "", "tab to open first, e.g. alerts")
	cmd.Flags().Int("limit", constants.DefaultPageSize, "rows per page")

	return cmd
}

// startAt rotates screens so name comes first.
func startAt(screens []dashboard.Screen, name string) ([]dashboard.Screen, error) {
	for i, screen := range screens {
		if screen.Name() == name {
			return append(screens[i:], screens[:i]...), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedScreen, name)
}
