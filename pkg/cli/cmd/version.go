package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/LENAX/schedule-migrator/pkg/cli/output"
)

// 版本信息（编译时注入）
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// versionCmd version命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON {
			return output.PrintJSON(map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_time": BuildTime,
				"go_version": runtime.Version(),
			})
		}
		fmt.Fprintf(output.Stdout, "Schedule Migrator\n")
		fmt.Fprintf(output.Stdout, "  Version:    %s\n", Version)
		fmt.Fprintf(output.Stdout, "  Git Commit: %s\n", GitCommit)
		fmt.Fprintf(output.Stdout, "  Build Time: %s\n", BuildTime)
		fmt.Fprintf(output.Stdout, "  Go Version: %s\n", runtime.Version())
		return nil
	},
}
