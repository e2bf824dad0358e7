package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/view"
)

// Config represents the CLI configuration file.
type Config struct {
	API         string        `json:"api,omitempty"          yaml:"api,omitempty"`
	Output      string        `json:"output,omitempty"       yaml:"output,omitempty"`
	NoColor     bool          `json:"no_color"               yaml:"no_color"`
	PageSize    int           `json:"page_size,omitempty"    yaml:"page_size,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"      yaml:"timeout,omitempty"`
	StaleTime   time.Duration `json:"stale_time,omitempty"   yaml:"stale_time,omitempty"`
	GCTime      time.Duration `json:"gc_time,omitempty"      yaml:"gc_time,omitempty"`
	Retry       *int          `json:"retry,omitempty"        yaml:"retry,omitempty"`
	MetricsFile string        `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	SessionFile string        `json:"session_file,omitempty" yaml:"session_file,omitempty"`
}

var configKeys = []string{"api", "output", "no_color", "page_size", "timeout", "stale_time", "gc_time", "retry", "metrics_file", "session_file"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the idops configuration stored in ~/.idops/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration, including defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			return writeOutput(cmd, config, func(w io.Writer) error {
				return displayConfigTable(w, config)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + joinKeys(),
		Args:  cobra.ExactArgs(constants.TwoArgumentsRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return err
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so the default applies",
		Args:  cobra.ExactArgs(constants.OneArgumentRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return err
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Configuration cleared")

			return err
		},
	}
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	config := &Config{
		API:         viper.GetString("api"),
		Output:      viper.GetString("output"),
		NoColor:     viper.GetBool("no_color"),
		PageSize:    viper.GetInt("page_size"),
		Timeout:     viper.GetDuration("timeout"),
		StaleTime:   viper.GetDuration("stale_time"),
		GCTime:      viper.GetDuration("gc_time"),
		MetricsFile: viper.GetString("metrics_file"),
		SessionFile: viper.GetString("session_file"),
	}

	if viper.IsSet("retry") {
		retry := viper.GetInt("retry")
		config.Retry = &retry
	}

	return config
}

func setConfigValue(config *Config, key, value string) error {
	var err error

	switch key {
	case "api":
		config.API = value
	case "output":
		config.Output = value
		_, err = outputFormatOf(value)
	case "no_color":
		config.NoColor, err = strconv.ParseBool(value)
		if err != nil {
			err = constants.ErrInvalidBoolFlag
		}
	case "page_size":
		config.PageSize, err = strconv.Atoi(value)
		if err != nil || config.PageSize <= 0 || config.PageSize > constants.MaxPageSize {
			err = constants.ErrInvalidPageSize
		}
	case "timeout":
		config.Timeout, err = time.ParseDuration(value)
	case "stale_time":
		config.StaleTime, err = time.ParseDuration(value)
	case "gc_time":
		config.GCTime, err = time.ParseDuration(value)
	case "retry":
		var retry int

		retry, err = strconv.Atoi(value)
		config.Retry = &retry
	case "metrics_file":
		config.MetricsFile = value
	case "session_file":
		config.SessionFile = value
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrInvalidConfigKey, key, joinKeys())
	}

	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrInvalidConfigKey, key, joinKeys())
	}

	blank := &Config{}

	switch key {
	case "api":
		config.API = blank.API
	case "output":
		config.Output = blank.Output
	case "no_color":
		config.NoColor = false
	case "page_size":
		config.PageSize = 0
	case "timeout":
		config.Timeout = 0
	case "stale_time":
		config.StaleTime = 0
	case "gc_time":
		config.GCTime = 0
	case "retry":
		config.Retry = nil
	case "metrics_file":
		config.MetricsFile = ""
	case "session_file":
		config.SessionFile = ""
	}

	return nil
}

func outputFormatOf(value string) (string, error) {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return value, nil
	default:
		return "", constants.ErrInvalidOutputValue
	}
}

func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(w io.Writer, config *Config) error {
	retry := constants.NotAvailable
	if config.Retry != nil {
		retry = strconv.Itoa(*config.Retry)
	}

	pairs := [][2]string{
		{"api", formatConfigValue(config.API)},
		{"output", formatConfigValue(config.Output)},
		{"no_color", strconv.FormatBool(config.NoColor)},
		{"page_size", formatConfigValue(strconv.Itoa(config.PageSize))},
		{"timeout", formatConfigValue(config.Timeout.String())},
		{"stale_time", formatConfigValue(config.StaleTime.String())},
		{"gc_time", formatConfigValue(config.GCTime.String())},
		{"retry", retry},
		{"metrics_file", formatConfigValue(config.MetricsFile)},
		{"session_file", formatConfigValue(config.SessionFile)},
	}

	return view.WriteKeyValues(w, pairs)
}

func formatConfigValue(value string) string {
	if value == "" || value == "0" || value == "0s" {
		return constants.NotAvailable
	}

	return value
}

func joinKeys() string {
	keys := slices.Clone(configKeys)
	sort.Strings(keys)

	out := ""

	for i, key := range keys {
		if i > 0 {
			out += ", "
		}

		out += key
	}

	return out
}
