package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/identity-console/internal/constants"
)

// Common static errors used throughout the commands package.
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrOutputFileExists = errors.New("output file already exists, use --force to overwrite")
	ErrNotConfirmed     = errors.New("cancelled")
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutputValue, format)
	}
}

// writeStructured writes data as JSON or YAML.
func writeStructured(w io.Writer, format string, data interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputValue, format)
	}
}

// writeOutput writes data in the selected format, calling table for the
// table format.
func writeOutput(cmd *cobra.Command, data interface{}, table func(w io.Writer) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format == constants.FormatTable {
		return table(cmd.OutOrStdout())
	}

	return writeStructured(cmd.OutOrStdout(), format, data)
}

// configDir returns ~/.idops.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// sessionPath returns the session file, honoring session_file.
func sessionPath() (string, error) {
	if path := viper.GetString("session_file"); path != "" {
		return path, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, constants.SessionFileName), nil
}

// validateOutputPath rejects paths that climb out of their directory.
func validateOutputPath(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, path)
	}

	return filepath.Clean(path), nil
}
