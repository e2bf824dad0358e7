package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/identity-console/internal/constants"
)

// NewRootCommand creates the idops command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "idops",
		Short: "Identity system operations console",
		Long: `A command-line console for operating the identity matching system.

It covers persons and identity links, matching runs, origin violations,
alerts, data health, driver payments, reconciliation and scout attribution,
and opens an interactive terminal dashboard with 'idops dashboard'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.idops/config.yml)")
	flags.StringP("api", "a", "", "backend API URL (default "+constants.DefaultAPIEndpoint+")")
	flags.StringP("token", "t", "", "bearer token, instead of the stored session")
	flags.String("output", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "per-request timeout")
	flags.String("metrics-file", "", "write request and cache metrics to this file on exit")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":       "config",
		"api":          "api",
		"token":        "token",
		"output":       "output",
		"verbose":      "verbose",
		"no_color":     "no-color",
		"timeout":      "timeout",
		"metrics_file": "metrics-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewWhoamiCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewOverviewCommand())
	rootCmd.AddCommand(NewDashboardCommand())
	rootCmd.AddCommand(NewPersonsCommand())
	rootCmd.AddCommand(NewIdentityCommand())
	rootCmd.AddCommand(NewAlertsCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewPaymentsCommand())
	rootCmd.AddCommand(NewReconciliationCommand())
	rootCmd.AddCommand(NewScoutsCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

func initConfig(cmd *cobra.Command) {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)

			return
		}

		// Search config in ~/.idops/config.yml
		viper.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		viper.SetConfigType(constants.ConfigFileType)
		viper.SetConfigName(constants.ConfigFileName)
	}

	// Read in environment variables that match
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
		}
	}
}
