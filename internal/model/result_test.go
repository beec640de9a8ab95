package model

import "testing"

// TestResultFailureMarker tests that a result carries a payload or a cause,
// never both.
func TestResultFailureMarker(t *testing.T) {
	t.Parallel()

	t.Run("successful result", func(t *testing.T) {
		t.Parallel()

		r := NewResult("seasonal_congestion", map[string]any{"average_congestion": 42.5})

		if r.Failed() {
			t.Error("expected success")
		}
		if r.Cause != "" {
			t.Errorf("unexpected cause %q on success", r.Cause)
		}
	})

	t.Run("nil data is normalized", func(t *testing.T) {
		t.Parallel()

		r := NewResult("live_traffic", nil)

		if r.Data == nil {
			t.Fatal("expected non-nil data map")
		}
	})

	t.Run("failed result", func(t *testing.T) {
		t.Parallel()

		r := FailResult("fuel_prices", "upstream timeout")

		if !r.Failed() {
			t.Error("expected failure")
		}
		if r.Data != nil {
			t.Error("failed result must not carry a payload")
		}
	})

	t.Run("failure cause never empty", func(t *testing.T) {
		t.Parallel()

		if r := FailResult("x", ""); !r.Failed() {
			t.Error("empty cause must still mark the result failed")
		}
	})
}

// TestResultFieldAccessors tests tolerant sub-field access: absence or a
// wrong type yields a zero value, never a panic.
func TestResultFieldAccessors(t *testing.T) {
	t.Parallel()

	r := NewResult("op", map[string]any{
		"name":    "NH48",
		"score":   87.5,
		"count":   3,
		"rows":    []any{map[string]any{"severity": "high"}, "not a map"},
		"items":   []any{"first", "second", 7},
		"strings": []string{"a", "b"},
		"nested":  map[string]any{"inner": "value"},
	})

	t.Run("string field", func(t *testing.T) {
		t.Parallel()

		if got := r.StringField("name"); got != "NH48" {
			t.Errorf("StringField = %q, want NH48", got)
		}
		if got := r.StringField("missing"); got != "" {
			t.Errorf("StringField(missing) = %q, want empty", got)
		}
	})

	t.Run("float field widens ints", func(t *testing.T) {
		t.Parallel()

		if got := r.FloatField("score"); got != 87.5 {
			t.Errorf("FloatField = %v, want 87.5", got)
		}
		if got := r.FloatField("count"); got != 3 {
			t.Errorf("FloatField(int) = %v, want 3", got)
		}
		if got := r.FloatField("name"); got != 0 {
			t.Errorf("FloatField(string) = %v, want 0", got)
		}
	})

	t.Run("list field filters non-maps", func(t *testing.T) {
		t.Parallel()

		rows := r.ListField("rows")
		if len(rows) != 1 {
			t.Fatalf("ListField returned %d rows, want 1", len(rows))
		}
		if rows[0]["severity"] != "high" {
			t.Errorf("rows[0] = %v", rows[0])
		}
	})

	t.Run("strings field filters non-strings", func(t *testing.T) {
		t.Parallel()

		if got := r.StringsField("items"); len(got) != 2 {
			t.Errorf("StringsField = %v, want 2 entries", got)
		}
		if got := r.StringsField("strings"); len(got) != 2 {
			t.Errorf("StringsField([]string) = %v, want 2 entries", got)
		}
	})

	t.Run("map field", func(t *testing.T) {
		t.Parallel()

		if got := r.MapField("nested"); got["inner"] != "value" {
			t.Errorf("MapField = %v", got)
		}
		if got := r.MapField("missing"); got != nil {
			t.Errorf("MapField(missing) = %v, want nil", got)
		}
	})
}

// TestRunSummaryCounts tests the succeeded+failed+skipped invariant helpers.
func TestRunSummaryCounts(t *testing.T) {
	t.Parallel()

	s := RunSummary{
		Statuses: []ProviderStatus{
			{Provider: "traffic", State: StateSucceeded},
			{Provider: "weather", State: StateSkipped},
			{Provider: "realtime", State: StateFailed, Cause: "construction failed"},
			{Provider: "fleet", State: StateSucceeded},
		},
	}

	if got := s.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if got := s.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := s.Skipped(); got != 1 {
		t.Errorf("Skipped() = %d, want 1", got)
	}
	if total := s.Succeeded() + s.Failed() + s.Skipped(); total != len(s.Statuses) {
		t.Errorf("state counts sum to %d, want %d", total, len(s.Statuses))
	}

	if st, ok := s.Status("realtime"); !ok || st.Cause == "" {
		t.Errorf("Status(realtime) = %+v, %v", st, ok)
	}
	if _, ok := s.Status("location"); ok {
		t.Error("Status(location) should not be found")
	}
}
