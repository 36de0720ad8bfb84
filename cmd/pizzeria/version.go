package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"pizza-hq/pizzeria/pkg/cli"
)

var (
	// Version is the build version (set by build flags)
	Version = "dev"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionFlags struct {
	format string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseFormat(versionFlags.format)
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), versionReport())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVar(&versionFlags.format, "format", "text", "output format: text, json")
}

func versionReport() cli.Report {
	return cli.Report{
		{Key: "version", Value: Version},
		{Key: "git_commit", Value: GitCommit},
		{Key: "build_date", Value: BuildDate},
		{Key: "go_version", Value: runtime.Version()},
		{Key: "os_arch", Value: runtime.GOOS + "/" + runtime.GOARCH},
	}
}
