package commands

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/identity-console/internal/view"
)

// VersionInfo holds build information.
type VersionInfo struct {
	Version   string `json:"version"    yaml:"version"`
	Commit    string `json:"commit"     yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform"   yaml:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the idops version, commit and build date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:   version,
				Commit:    commit,
				BuildDate: date,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			return writeOutput(cmd, info, func(w io.Writer) error {
				return view.WriteKeyValues(w, [][2]string{
					{"Version", info.Version},
					{"Commit", info.Commit},
					{"Built", info.BuildDate},
					{"Go", info.GoVersion},
					{"Platform", info.Platform},
				})
			})
		},
	}
}
