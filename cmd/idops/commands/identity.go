package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/dashboard"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// ErrPersonNotFound is returned by persons get for an unknown key.
var ErrPersonNotFound = errors.New("person not found")

// NewPersonsCommand creates the persons command group.
func NewPersonsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "persons",
		Aliases: []string{"person"},
		Short:   "Browse canonical persons",
		Long:    "List canonical persons, show their identity links and mark legacy records",
	}

	cmd.AddCommand(newListCommand("list", "List persons", "List canonical persons with their matching confidence",
		func(client ops.Client, limit int) pagedScreen { return dashboard.PersonsScreen(client, limit) }))
	cmd.AddCommand(newPersonsGetCommand())
	cmd.AddCommand(newPersonsMarkLegacyCommand())

	return cmd
}

func newPersonsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PERSON_KEY",
		Short: "Show a person",
		Long:  "Show a canonical person together with all of its identity links",
		Args:  cobra.ExactArgs(constants.OneArgumentRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			screen := dashboard.NewPersonScreen(env.client, args[0])

			err = dashboard.Load(cmd.Context(), screen, screen.Refresh())
			if screen.NotFound() {
				return fmt.Errorf("%w: %s", ErrPersonNotFound, args[0])
			}

			if err != nil {
				return withBanner(err)
			}

			return writeScreen(cmd, screen)
		},
	}
}

func newPersonsMarkLegacyCommand() *cobra.Command {
	var (
		reason string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "mark-legacy PERSON_KEY",
		Short: "Mark a person as legacy",
		Long:  "Flag a canonical person as a legacy record so it is excluded from origin rules",
		Args:  cobra.ExactArgs(constants.OneArgumentRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirmAction(cmd, force, fmt.Sprintf("Mark person %s as legacy?", args[0]))
			if err != nil {
				return err
			}

			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.client.Identity().MarkLegacy(cmd.Context(), args[0], &ops.MarkLegacyRequest{Reason: reason})
			if err != nil {
				return withBanner(err)
			}

			return writeActionResult(cmd, "Marked legacy", args[0], result)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the person is legacy")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

// NewIdentityCommand creates the identity command group.
func NewIdentityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect identity matching",
		Long:  "Show matching statistics, matching runs and origin violations",
	}

	cmd.AddCommand(newIdentityStatsCommand())
	cmd.AddCommand(newListCommand("runs", "List matching runs", "List executions of the identity matching job",
		func(client ops.Client, limit int) pagedScreen { return dashboard.RunsScreen(client, limit) }))
	cmd.AddCommand(newIdentityRunCommand())
	cmd.AddCommand(newListCommand("violations", "List origin violations", "List persons whose recorded origin breaks an origin rule",
		func(client ops.Client, limit int) pagedScreen { return dashboard.ViolationsScreen(client, limit) }))
	cmd.AddCommand(newIdentityResolveCommand())

	return cmd
}

func newIdentityStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show matching statistics",
		Long:  "Show totals for persons, links and unmatched records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			stats, err := env.client.Identity().Stats(cmd.Context())
			if err != nil {
				return withBanner(err)
			}

			return writeObject(cmd, stats)
		},
	}
}

func newIdentityRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run RUN_ID",
		Short: "Show a matching run",
		Long:  "Show one execution of the identity matching job",
		Args:  cobra.ExactArgs(constants.OneArgumentRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			run, err := env.client.Identity().GetRun(cmd.Context(), args[0])
			if err != nil {
				return withBanner(err)
			}

			return writeObject(cmd, run)
		},
	}
}

func newIdentityResolveCommand() *cobra.Command {
	var (
		resolution string
		notes      string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve VIOLATION_ID [VIOLATION_ID...]",
		Short: "Resolve origin violations",
		Long:  "Resolve one or more origin violations. Resolutions other than 'resolved' require --notes",
		Args:  cobra.MinimumNArgs(constants.OneArgumentRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution = strings.TrimSpace(resolution)
			if resolution != "resolved" && strings.TrimSpace(notes) == "" {
				return constants.ErrNotesRequired
			}

			err := confirmAction(cmd, force, fmt.Sprintf("Resolve violation #%s as %s?", strings.Join(args, ", #"), resolution))
			if err != nil {
				return err
			}

			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			request := &ops.ResolveViolationRequest{Resolution: resolution, Notes: notes}

			if len(args) > 1 {
				builder := ops.NewBatchBuilder(env.client)
				for _, id := range args {
					builder.AddResolveViolation(id, request)
				}

				return runBatch(cmd, builder.Build())
			}

			result, err := env.client.Identity().ResolveViolation(cmd.Context(), args[0], request)
			if err != nil {
				return withBanner(err)
			}

			return writeActionResult(cmd, "Resolved violation", args[0], result)
		},
	}

	cmd.Flags().StringVar(&resolution, "resolution", "resolved", "resolution to record (resolved, ignored)")
	cmd.Flags().StringVar(&notes, "notes", "", "operator notes")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}
