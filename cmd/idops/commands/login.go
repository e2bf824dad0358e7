package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/logging"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
	"github.com/fivetwenty-io/identity-console/pkg/opsclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long:  "Sign in with your operator credentials and store the session in ~/.idops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			var err error

			if username == "" {
				username, err = prompt(reader, cmd.ErrOrStderr(), "Username: ")
				if err != nil {
					return err
				}
			}

			if password == "" {
				password, err = readPassword(cmd.InOrStdin(), reader, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			if strings.TrimSpace(username) == "" || password == "" {
				return constants.ErrEmptyCredentials
			}

			path, err := sessionPath()
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), verboseEnabled())

			profile, err := opsclient.Login(cmd.Context(), clientConfig(logger), path, strings.TrimSpace(username), password)
			if err != nil {
				return withBanner(err)
			}

			name := profile.FullName
			if name == "" {
				name = profile.Email
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)

			return err
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "operator username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Long:  "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessionPath()
			if err != nil {
				return err
			}

			err = opsclient.Logout(path)
			if err != nil {
				return fmt.Errorf("failed to remove session: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return err
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Long:  "Show the operator profile stored with the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessionPath()
			if err != nil {
				return err
			}

			profile, err := opsclient.CurrentProfile(cmd.Context(), path)
			if err != nil {
				if errors.Is(err, ops.ErrSessionExpired) || errors.Is(err, ops.ErrNotAuthenticated) {
					return fmt.Errorf("%w: run 'idops login'", err)
				}

				return err
			}

			return writeOutput(cmd, profile, func(w io.Writer) error {
				return view.WriteKeyValues(w, [][2]string{
					{"Email", view.FormatValue(profile.Email)},
					{"Name", view.FormatValue(profile.FullName)},
					{"Role", view.FormatValue(profile.Role)},
					{"ID", view.FormatValue(profile.ID)},
				})
			})
		},
	}
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	_, err := fmt.Fprint(out, label)
	if err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when in is a terminal, or a plain line
// otherwise.
func readPassword(in io.Reader, reader *bufio.Reader, out io.Writer) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return prompt(reader, out, "Password: ")
	}

	fd := int(file.Fd())

	_, err := fmt.Fprint(out, "Password: ")
	if err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	password, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(password), nil
}
