// Package main provides the entry point for the RouteLens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for RouteLens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routelens",
		Short: "Multi-provider route intelligence for road transport",
		Long: `RouteLens analyzes a route against multiple commercial data providers and
composes the results into a single report: seasonal and live traffic,
weather risk, fleet economics, emergency coverage, and corridor demographics.

Providers whose credential is not configured are skipped, never failed.
A run always produces a report from whatever providers are available,
even with no credentials at all.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
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
