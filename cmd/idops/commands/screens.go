package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/dashboard"
	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
	"github.com/fivetwenty-io/identity-console/pkg/opsclient"
)

// pagedScreen is a dashboard list page driven from flags.
type pagedScreen interface {
	dashboard.Screen
	SetLimit(limit int) (dashboard.Loader, error)
	SetOffset(offset int) (dashboard.Loader, error)
}

type screenFactory func(client ops.Client, limit int) pagedScreen

// bannerError shows the operator-facing banner while keeping the cause.
type bannerError struct {
	err error
}

func (e *bannerError) Error() string { return page.BannerFor(e.err) }

func (e *bannerError) Unwrap() error { return e.err }

func withBanner(err error) error {
	if err == nil || page.BannerFor(err) == "" {
		return err
	}

	return &bannerError{err: err}
}

// offlineClient backs filter forms built while the command tree is
// assembled. It is never used to send requests.
func offlineClient() ops.Client {
	client, err := opsclient.NewWithEndpoint(constants.DefaultAPIEndpoint)
	if err != nil {
		panic(err)
	}

	return client
}

// newListCommand creates a command listing one dashboard page, with one
// flag per filter plus --limit and --offset.
func newListCommand(use, short, long string, factory screenFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListCommand(cmd, factory)
		},
	}

	factory(offlineClient(), constants.DefaultPageSize).Filters().BindFlags(cmd.Flags())
	cmd.Flags().Int("limit", constants.DefaultPageSize, "rows per page")
	cmd.Flags().Int("offset", 0, "rows to skip")

	return cmd
}

func runListCommand(cmd *cobra.Command, factory screenFactory) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	limit := pageSize(cmd)
	if limit <= 0 || limit > constants.MaxPageSize {
		return fmt.Errorf("%w: %d", constants.ErrInvalidPageSize, limit)
	}

	screen := factory(env.client, limit)

	values, err := screen.Filters().FromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	loader, err := screen.ApplyFilters(values)
	if err != nil {
		return err
	}

	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return fmt.Errorf("reading --offset: %w", err)
	}

	if offset != 0 {
		loader, err = screen.SetOffset(offset)
		if err != nil {
			return err
		}
	}

	return renderScreen(cmd, screen, loader)
}

// renderScreen loads screen and writes it in the selected output format.
func renderScreen(cmd *cobra.Command, screen dashboard.Screen, loader dashboard.Loader) error {
	err := dashboard.Load(cmd.Context(), screen, loader)
	if err != nil {
		return withBanner(err)
	}

	return writeScreen(cmd, screen)
}

// writeScreen writes an already loaded screen.
func writeScreen(cmd *cobra.Command, screen dashboard.Screen) error {
	return writeOutput(cmd, screen.Data(), func(w io.Writer) error {
		return screen.Render(w, -1)
	})
}

// writeObject writes a single object, as key/value rows for tables.
func writeObject(cmd *cobra.Command, object interface{}) error {
	return writeOutput(cmd, object, func(w io.Writer) error {
		pairs, err := objectPairs(object)
		if err != nil {
			return err
		}

		return view.WriteKeyValues(w, pairs)
	})
}

func objectPairs(object interface{}) ([][2]string, error) {
	data, err := json.Marshal(object)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", object, err)
	}

	fields := map[string]interface{}{}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	err = decoder.Decode(&fields)
	if err != nil {
		return nil, fmt.Errorf("decoding %T: %w", object, err)
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, key := range keys {
		value := fields[key]
		if number, ok := value.(json.Number); ok {
			value = numberValue(number)
		}

		pairs = append(pairs, [2]string{view.Humanize(key), view.FormatValue(value)})
	}

	return pairs, nil
}

// writeActionResult reports a mutation outcome.
func writeActionResult(cmd *cobra.Command, action, id string, result *ops.ActionResult) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format != constants.FormatTable {
		return writeStructured(cmd.OutOrStdout(), format, result)
	}

	message := fmt.Sprintf("%s %s", action, id)
	if result.Message != "" {
		message += ": " + result.Message
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), message)

	return err
}

func numberValue(number json.Number) interface{} {
	if n, err := number.Int64(); err == nil {
		return int(n)
	}

	if f, err := number.Float64(); err == nil {
		return f
	}

	return number.String()
}
