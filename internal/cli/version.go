package cli

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// RenderText prints the version block.
func (v VersionInfo) RenderText(w io.Writer) error {
	out(w, "tokenmigrate %s\n", v.Version)
	out(w, "  commit:   %s\n", v.Commit)
	out(w, "  built:    %s\n", v.BuildDate)
	out(w, "  go:       %s\n", v.GoVersion)
	out(w, "  platform: %s\n", v.Platform)
	return nil
}

func currentVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   currentBuildInfo.Version,
		Commit:    currentBuildInfo.Commit,
		BuildDate: currentBuildInfo.Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	return info
}

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit and build date of this binary.`,
	Example: `  tokenmigrate version
  tokenmigrate version -o json`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return formatter.Print(currentVersionInfo())
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.GroupID = "config"
}
