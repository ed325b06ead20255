// Package main provides resumectl, a command line front end to the analysis and assist pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-resume-saas/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Analyze resumes from the command line",
	Long:          "resumectl runs resume analysis and job matching against the configured reasoning provider and prints JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	defer telemetry.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
