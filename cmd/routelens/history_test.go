package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/routelens/routelens/internal/history"
	"github.com/routelens/routelens/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has route flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("route")
		if flag == nil {
			t.Fatal("expected route flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
	})

	t.Run("has compare flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("compare")
		if flag == nil {
			t.Fatal("expected compare flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has show flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("show") == nil {
			t.Fatal("expected show flag")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.DefValue != "0" {
			t.Errorf("expected default '0', got %q", flag.DefValue)
		}
	})
}

// saveHistoryRun stores a synthetic run for history command tests.
func saveHistoryRun(t *testing.T, store *history.Store, runID string, generatedAt time.Time, sections, succeeded int) {
	t.Helper()

	points := []model.Point{{Lat: 12.97, Lng: 77.59}, {Lat: 13.08, Lng: 80.27}}
	rc := model.NewRouteContext(points, nil, "Bangalore", "Chennai", 290, 348,
		model.VehicleDescriptor{Class: model.VehicleClassBus})

	r := model.NewRouteReport(rc)
	r.RunID = runID
	r.GeneratedAt = generatedAt

	statuses := make([]model.ProviderStatus, 0, 6)
	for i := 0; i < succeeded; i++ {
		statuses = append(statuses, model.ProviderStatus{State: model.StateSucceeded})
	}
	for len(statuses) < 6 {
		statuses = append(statuses, model.ProviderStatus{State: model.StateSkipped})
	}
	r.Summary = model.RunSummary{Statuses: statuses, SectionCount: sections}

	if err := store.SaveRun(context.Background(), r); err != nil {
		t.Fatalf("SaveRun(%s) error = %v", runID, err)
	}
}

// captureStdout runs fn and returns what it printed to stdout.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()

	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}
	return buf.String()
}

// TestListRunHistory tests the run listing output.
func TestListRunHistory(t *testing.T) {
	t.Parallel()

	store, err := history.Open(t.TempDir(), history.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("empty store suggests analyze", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return listRunHistory(ctx, store, "", 0)
		})
		if !strings.Contains(output, "No stored runs found") {
			t.Errorf("expected empty-store message, got: %s", output)
		}
	})

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	saveHistoryRun(t, store, "run-a", base, 8, 3)
	saveHistoryRun(t, store, "run-b", base.Add(time.Hour), 12, 5)

	t.Run("lists stored runs", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return listRunHistory(ctx, store, "", 0)
		})
		for _, want := range []string{
			"Stored runs (2)",
			"Bangalore -> Chennai",
			"bus",
			"run-a",
			"run-b",
			"12 sections (S:5 F:0 K:1)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("route filter excludes other routes", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return listRunHistory(ctx, store, "nowhere -> nowhere", 0)
		})
		if !strings.Contains(output, "No stored runs found for route") {
			t.Errorf("expected filtered empty message, got: %s", output)
		}
	})
}

// TestCompareRunHistory tests the comparison output.
func TestCompareRunHistory(t *testing.T) {
	t.Parallel()

	store, err := history.Open(t.TempDir(), history.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("fewer than two runs is an error", func(t *testing.T) {
		if err := compareRunHistory(ctx, store, "", false); err == nil {
			t.Error("expected error with no stored runs")
		}
	})

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	saveHistoryRun(t, store, "older", base, 8, 3)
	saveHistoryRun(t, store, "newer", base.Add(time.Hour), 12, 5)

	t.Run("prints text comparison", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return compareRunHistory(ctx, store, "", false)
		})
		for _, want := range []string{
			"Run Comparison: Bangalore -> Chennai",
			"older",
			"newer",
			"+4", // section delta
			"+2", // succeeded delta
			"Coverage IMPROVED",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("prints JSON comparison", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return compareRunHistory(ctx, store, "", true)
		})
		for _, want := range []string{`"SectionDelta": 4`, `"SucceededDelta": 2`} {
			if !strings.Contains(output, want) {
				t.Errorf("JSON output missing %q:\n%s", want, output)
			}
		}
	})
}

// TestShowRun tests stored report retrieval.
func TestShowRun(t *testing.T) {
	t.Parallel()

	store, err := history.Open(t.TempDir(), history.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	saveHistoryRun(t, store, "doc-run", time.Now().UTC(), 4, 2)

	t.Run("prints stored document", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return showRun(ctx, store, "doc-run")
		})
		if !strings.Contains(output, `"run_id":"doc-run"`) {
			t.Errorf("expected stored document, got: %s", output)
		}
	})

	t.Run("missing run is an error", func(t *testing.T) {
		if err := showRun(ctx, store, "missing"); err == nil {
			t.Error("expected error for missing run")
		}
	})
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{delta: 3, want: "+3"},
		{delta: -2, want: "-2"},
		{delta: 0, want: "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestTruncateLabel tests route label truncation for the listing table.
func TestTruncateLabel(t *testing.T) {
	t.Parallel()

	if got := truncateLabel("short", 28); got != "short" {
		t.Errorf("truncateLabel(short) = %q", got)
	}
	long := strings.Repeat("x", 40)
	got := truncateLabel(long, 28)
	if len(got) != 28 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateLabel(long) = %q", got)
	}
}
