// Package cli implements planner-cli, an offline front end to the planning engine.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd builds the planner-cli command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "planner-cli",
		Short:         "Plan course schedules from local catalog files",
		Long:          "Runs the multi-term planner against a catalog CSV and a student YAML file without a database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("format", "f", "text", "Output format: json or text")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log engine decisions to stderr")

	root.AddCommand(newPlanCmd(), newConflictsCmd())
	return root
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json", "text":
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or text)", format)
	}
}

func commandLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
