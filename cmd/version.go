// Package cmd - version command showing build and runtime info
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

var versionOutputFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Long: `Display version information including:

  - xmrestore version, build time, and git commit
  - Go runtime version
  - Operating system and architecture

Examples:
  # Show version info
  xmrestore version

  # JSON output for scripts
  xmrestore version --format json

  # Short version only
  xmrestore version --format short`,
	Run: runVersionCmd,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVar(&versionOutputFormat, "format", "table", "Output format (table, json, short)")
}

type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func runVersionCmd(cmd *cobra.Command, args []string) {
	info := versionInfo{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		GitCommit: cfg.GitCommit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	switch versionOutputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(info)
	case "short":
		fmt.Printf("xmrestore %s\n", info.Version)
	default:
		logger.Header(fmt.Sprintf("xmrestore %s", info.Version))
		logger.StatusLine("Build time", info.BuildTime)
		logger.StatusLine("Git commit", info.GitCommit)
		logger.StatusLine("Go version", info.GoVersion)
		logger.StatusLine("Platform", fmt.Sprintf("%s/%s", info.OS, info.Arch))
	}
}
