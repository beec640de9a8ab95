package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/routelens/routelens/internal/config"
	"github.com/routelens/routelens/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists and compares analysis runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and compare stored analysis runs",
		Long: `History shows past analysis runs saved by 'routelens analyze'.

By default it lists stored runs newest first. With --compare it shows
the outcome delta between the two most recent runs: how section counts
and provider outcomes changed.

Examples:
  # List all stored runs
  routelens history

  # List runs for one route only
  routelens history --route "Bangalore -> Chennai"

  # Compare the latest two runs
  routelens history --compare

  # Compare the latest two runs of one route, as JSON
  routelens history --compare --json --route "Bangalore -> Chennai"

  # Print the full stored report of a run
  routelens history --show 4f8b2c1e-...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Filter flags
	cmd.Flags().StringP("route", "r", "",
		"Restrict to runs whose route label matches exactly (\"from -> to\")")
	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of runs to list (0 lists all)")

	// Mode flags
	cmd.Flags().BoolP("compare", "c", false,
		"Compare the two most recent runs instead of listing")
	cmd.Flags().StringP("show", "s", "",
		"Print the stored report document for the given run ID")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	routeLabel, err := cmd.Flags().GetString("route")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	showRunID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for the database, same as analyze
	store, err := history.Open(config.XDGDataDir(), history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if showRunID != "" {
		return showRun(ctx, store, showRunID)
	}
	if compare {
		return compareRunHistory(ctx, store, routeLabel, jsonOutput)
	}
	return listRunHistory(ctx, store, routeLabel, limit)
}

// listRunHistory lists stored runs newest first.
func listRunHistory(ctx context.Context, store *history.Store, routeLabel string, limit int) error {
	records, err := store.ListRuns(ctx, routeLabel, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(records) == 0 {
		if routeLabel != "" {
			fmt.Printf("No stored runs found for route %q\n", routeLabel)
		} else {
			fmt.Println("No stored runs found.")
		}
		fmt.Println("\nUse 'routelens analyze <route-csv>' to analyze a route.")
		return nil
	}

	fmt.Printf("Stored runs (%d):\n\n", len(records))
	fmt.Printf("  %-20s  %-28s  %-22s  %s\n", "Date", "Route", "Vehicle", "Outcome")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, rec := range records {
		fmt.Printf("  %-20s  %-28s  %-22s  %s\n",
			rec.GeneratedAt.Format("2006-01-02 15:04:05"),
			truncateLabel(rec.RouteLabel, 28),
			rec.VehicleClass,
			formatOutcome(rec),
		)
		fmt.Printf("    run: %s\n", rec.RunID)
	}

	fmt.Println("\nUse 'routelens history --compare' to compare the latest two runs.")
	fmt.Println("Use 'routelens history --show <run-id>' to print a stored report.")

	return nil
}

// truncateLabel shortens a route label for the listing table.
func truncateLabel(label string, max int) string {
	if len(label) <= max {
		return label
	}
	return label[:max-3] + "..."
}

// formatOutcome formats a run record's outcome counts for display.
func formatOutcome(rec history.RunRecord) string {
	out := fmt.Sprintf("%d sections (S:%d F:%d K:%d)",
		rec.SectionCount, rec.Succeeded, rec.Failed, rec.Skipped)
	if rec.Cancelled {
		out += " CANCELLED"
	}
	return out
}

// showRun prints the stored report document for a run ID.
func showRun(ctx context.Context, store *history.Store, runID string) error {
	doc, err := store.ReportJSON(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Println(doc)
	return nil
}

// compareRunHistory compares the two most recent runs.
func compareRunHistory(ctx context.Context, store *history.Store, routeLabel string, jsonOutput bool) error {
	comparison, err := store.CompareLatest(ctx, routeLabel)
	if errors.Is(err, history.ErrNotEnoughRuns) {
		return fmt.Errorf("at least 2 stored runs are required for comparison: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to compare runs: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(comparison)
	}

	outputComparisonText(comparison)
	return nil
}

// outputComparisonText prints the comparison in human-readable form.
func outputComparisonText(c *history.Comparison) {
	fmt.Printf("Run Comparison: %s\n", c.Newer.RouteLabel)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nOlder run: %s  (%s)\n",
		c.Older.GeneratedAt.Format("2006-01-02 15:04:05"), c.Older.RunID)
	fmt.Printf("Newer run: %s  (%s)\n",
		c.Newer.GeneratedAt.Format("2006-01-02 15:04:05"), c.Newer.RunID)

	fmt.Println("\nOutcome Summary:")
	fmt.Printf("  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Older", "Newer", "Change")
	fmt.Println("  " + strings.Repeat("-", 48))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Sections",
		c.Older.SectionCount, c.Newer.SectionCount, formatDelta(c.SectionDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Succeeded",
		c.Older.Succeeded, c.Newer.Succeeded, formatDelta(c.SucceededDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Failed",
		c.Older.Failed, c.Newer.Failed, formatDelta(c.FailedDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Skipped",
		c.Older.Skipped, c.Newer.Skipped, formatDelta(c.Newer.Skipped-c.Older.Skipped))

	switch {
	case c.FailedDelta > 0:
		fmt.Println("\nCoverage WORSENED: more providers failed in the newer run.")
	case c.SucceededDelta > 0 || c.SectionDelta > 0:
		fmt.Println("\nCoverage IMPROVED: the newer run produced more insight.")
	default:
		fmt.Println("\nCoverage UNCHANGED.")
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
