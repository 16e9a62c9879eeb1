// Package main provides the entry point for the boxdtrend CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for boxdtrend.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxdtrend",
		Short: "Track the Letterboxd popular-films listing over time",
		Long: `boxdtrend scrapes the Letterboxd popular-films listing and appends the
current ranking to an append-only history CSV, one row per film per day.

Run "boxdtrend snapshot" from cron once a day to build the history, and
"boxdtrend trends" to analyze the accumulated rankings.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewSnapshotCmd())
	cmd.AddCommand(NewTrendsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
