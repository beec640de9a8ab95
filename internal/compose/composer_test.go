package compose

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/provider"
)

// TestSections tests the pure result-to-section translation.
func TestSections(t *testing.T) {
	t.Parallel()

	t.Run("traffic result composes in table order", func(t *testing.T) {
		t.Parallel()

		// Results deliberately given in reverse operation order; the
		// translation table decides section order.
		results := []model.Result{
			model.NewResult("construction_zones", map[string]any{
				"active_construction": []map[string]any{
					{"description": "NH44 widening", "severity": "major", "impact": "lane restrictions", "end_time": "2026-12-01"},
				},
			}),
			model.NewResult("seasonal_congestion", map[string]any{
				"seasonal_patterns": []map[string]any{
					{"period": "monsoon", "congestion_level": "heavy", "average_congestion": 67.5, "peak_hours": []string{"08:00-11:00"}},
				},
				"seasonal_recommendations": []string{"Plan around monsoon peaks."},
			}),
		}

		got := Sections(provider.NameTraffic, results)

		want := []model.Section{
			{
				Title:    "Seasonal Congestion",
				Category: "traffic",
				Blocks: []model.Block{
					model.Table{
						Caption: "Seasonal patterns",
						Header:  []string{"Period", "Congestion Level", "Average Congestion", "Peak Hours"},
						Rows:    [][]string{{"monsoon", "heavy", "67.5", "08:00-11:00"}},
					},
					model.List{Caption: "Recommendations", Items: []string{"Plan around monsoon peaks."}},
				},
			},
			{
				Title:    "Construction Zones",
				Category: "traffic",
				Blocks: []model.Block{
					model.Table{
						Caption: "Active construction",
						Header:  []string{"Description", "Severity", "Impact", "End Time"},
						Rows:    [][]string{{"NH44 widening", "major", "lane restrictions", "2026-12-01"}},
					},
				},
			},
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Sections() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failed result yields no section", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{
			model.FailResult("seasonal_congestion", "upstream down"),
			model.NewResult("construction_zones", map[string]any{
				"construction_recommendations": []string{"Verify detours."},
			}),
		}

		got := Sections(provider.NameTraffic, results)
		if len(got) != 1 {
			t.Fatalf("got %d sections, want 1", len(got))
		}
		if got[0].Title != "Construction Zones" {
			t.Errorf("surviving section = %q", got[0].Title)
		}
	})

	t.Run("empty collection composes identically to absent field", func(t *testing.T) {
		t.Parallel()

		empty := []model.Result{model.NewResult("summer_risks", map[string]any{
			"temperature_hotspots": []map[string]any{},
			"heat_recommendations": []string{},
		})}
		absent := []model.Result{model.NewResult("summer_risks", nil)}

		if diff := cmp.Diff(Sections(provider.NameWeather, absent), Sections(provider.NameWeather, empty)); diff != "" {
			t.Errorf("empty and absent must compose identically (-absent +empty):\n%s", diff)
		}
	})

	t.Run("missing sub-field omits only its block", func(t *testing.T) {
		t.Parallel()

		// Hotspots present, recommendations absent.
		results := []model.Result{model.NewResult("summer_risks", map[string]any{
			"temperature_hotspots": []map[string]any{
				{"zone": "Hosur", "max_temperature": 41.2, "risk_level": "severe"},
			},
			"average_temperature": 38.0,
		})}

		got := Sections(provider.NameWeather, results)
		if len(got) != 1 {
			t.Fatalf("got %d sections, want 1", len(got))
		}
		if len(got[0].Blocks) != 2 {
			t.Fatalf("got %d blocks, want 2 (table + scalar)", len(got[0].Blocks))
		}
		if got[0].Blocks[0].Kind() != model.BlockKindTable {
			t.Errorf("first block kind = %v, want table", got[0].Blocks[0].Kind())
		}
		if got[0].Blocks[1].Kind() != model.BlockKindScalar {
			t.Errorf("second block kind = %v, want scalar", got[0].Blocks[1].Kind())
		}
	})

	t.Run("result with all fields empty yields zero sections", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{model.NewResult("monsoon_risks", map[string]any{})}
		if got := Sections(provider.NameWeather, results); len(got) != 0 {
			t.Errorf("got %d sections, want 0", len(got))
		}
	})

	t.Run("unknown provider yields nil", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{model.NewResult("anything", map[string]any{"x": "y"})}
		if got := Sections("unknown", results); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("unknown operation is ignored", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{model.NewResult("not_an_operation", map[string]any{"x": "y"})}
		if got := Sections(provider.NameTraffic, results); len(got) != 0 {
			t.Errorf("got %d sections, want 0", len(got))
		}
	})

	t.Run("fleet scalars preserve declared key order", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{model.NewResult("driver_behavior", map[string]any{
			"safety_scores": map[string]any{
				"safety_rating":        "good",
				"overall_safety_score": 78.0,
			},
		})}

		got := Sections(provider.NameFleet, results)
		if len(got) != 1 {
			t.Fatalf("got %d sections, want 1", len(got))
		}
		first, ok := got[0].Blocks[0].(model.Scalar)
		if !ok {
			t.Fatalf("first block is %T, want Scalar", got[0].Blocks[0])
		}
		// overall_safety_score is declared before safety_rating.
		if first.Label != "Overall Safety Score" {
			t.Errorf("first scalar = %q, want Overall Safety Score", first.Label)
		}
	})

	t.Run("heavy vehicle analysis composes under maps", func(t *testing.T) {
		t.Parallel()

		results := []model.Result{model.NewResult("heavy_vehicle", map[string]any{
			"overall_suitability_score": 68.0,
			"traffic_analysis": map[string]any{
				"heavy_vehicle_restrictions": []string{"height limit on urban approach"},
			},
		})}

		got := Sections(provider.NameMaps, results)
		if len(got) != 1 {
			t.Fatalf("got %d sections, want 1", len(got))
		}
		if got[0].Title != "Heavy Vehicle Suitability" {
			t.Errorf("title = %q", got[0].Title)
		}
		if got[0].Category != "maps" {
			t.Errorf("category = %q, want maps", got[0].Category)
		}
	})
}

// TestFormatValue tests payload value rendering.
func TestFormatValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "NH 44", want: "NH 44"},
		{name: "float drops trailing zeros", in: 67.5, want: "67.5"},
		{name: "whole float has no decimal point", in: 100.0, want: "100"},
		{name: "int", in: 3, want: "3"},
		{name: "bool", in: true, want: "true"},
		{name: "string slice joins", in: []string{"a", "b"}, want: "a, b"},
		{name: "any slice joins", in: []any{"a", 2.0}, want: "a, 2"},
		{name: "nil is empty", in: nil, want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := formatValue(tc.in); got != tc.want {
				t.Errorf("formatValue(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
