package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/routelens/routelens/internal/config"
	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/provider"
)

// stubProvider is a scriptable provider for lifecycle tests.
type stubProvider struct {
	name    string
	delay   time.Duration
	results []model.Result
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Analyze(ctx context.Context, _ *model.RouteContext) []model.Result {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			out := make([]model.Result, 0, len(s.results))
			for _, r := range s.results {
				out = append(out, model.FailResult(r.Operation, context.Cause(ctx).Error()))
			}
			return out
		}
	}
	return s.results
}

// stubResults returns one composable result per provider so every stub
// contributes exactly one section.
func stubResults(name string) []model.Result {
	switch name {
	case provider.NameTraffic:
		return []model.Result{model.NewResult("seasonal_congestion", map[string]any{
			"seasonal_recommendations": []string{"stub"},
		})}
	case provider.NameWeather:
		return []model.Result{model.NewResult("summer_risks", map[string]any{
			"heat_recommendations": []string{"stub"},
		})}
	case provider.NameRealtime:
		return []model.Result{model.NewResult("fuel_prices", map[string]any{
			"fuel_recommendations": []string{"stub"},
		})}
	case provider.NameFleet:
		return []model.Result{model.NewResult("vehicle_performance", map[string]any{
			"efficiency_recommendations": []string{"stub"},
		})}
	case provider.NameEmergency:
		return []model.Result{model.NewResult("communication_plan", map[string]any{
			"primary_channels": []string{"stub"},
		})}
	case provider.NameLocation:
		return []model.Result{model.NewResult("business_opportunities", map[string]any{
			"market_opportunities": []string{"stub"},
		})}
	default:
		return nil
	}
}

// stubRegistry mirrors the default registry's names and credential
// gating, constructing stub providers with the given per-provider delays
// and result overrides.
func stubRegistry(delays map[string]time.Duration, overrides map[string][]model.Result) *provider.Registry {
	gates := map[string]string{
		provider.NameTraffic:   config.CredTomTom,
		provider.NameWeather:   config.CredOpenWeather,
		provider.NameRealtime:  config.CredGoogleMaps,
		provider.NameFleet:     "",
		provider.NameEmergency: config.CredEmergencyAPI,
		provider.NameLocation:  config.CredGoogleMaps,
	}

	names := []string{
		provider.NameTraffic, provider.NameWeather, provider.NameRealtime,
		provider.NameFleet, provider.NameEmergency, provider.NameLocation,
	}

	regs := make([]provider.Registration, 0, len(names))
	for _, name := range names {
		name := name
		regs = append(regs, provider.Registration{
			Name:    name,
			Primary: gates[name],
			Construct: func(_ config.Credentials, _ provider.Deps) (provider.Provider, error) {
				results, ok := overrides[name]
				if !ok {
					results = stubResults(name)
				}
				return &stubProvider{name: name, delay: delays[name], results: results}, nil
			},
		})
	}
	return provider.NewRegistry(regs...)
}

// allCredentials enables every provider.
func allCredentials() config.Credentials {
	return config.Credentials{
		config.CredTomTom:       "t",
		config.CredOpenWeather:  "o",
		config.CredGoogleMaps:   "g",
		config.CredEmergencyAPI: "e",
	}
}

// fakeFetcher serves canned JSON to the maps collaborator.
type fakeFetcher struct {
	doc string
	err error
}

func (f *fakeFetcher) GetJSON(ctx context.Context, _ string, _ url.Values, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.doc), out)
}

// directionsDoc is a minimal valid Google Directions answer.
const directionsDoc = `{"status": "OK", "routes": [{"summary": "NH 44", "legs": [{"distance": {"value": 100000}, "duration": {"value": 5000}, "steps": [{"html_instructions": "NH 44", "distance": {"value": 90000}}]}]}]}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoute(class model.VehicleClass) *model.RouteContext {
	points := []model.Point{
		{Lat: 12.97, Lng: 77.59},
		{Lat: 13.00, Lng: 78.00},
		{Lat: 13.08, Lng: 80.27},
	}
	return model.NewRouteContext(points, nil, "Bangalore", "Chennai", 290, 360,
		model.VehicleDescriptor{Class: class, WeightKG: 16000})
}

func newTestOrchestrator(reg *provider.Registry, opts ...Option) *Orchestrator {
	base := []Option{
		WithRegistry(reg),
		WithLogger(quietLogger()),
		WithDeps(provider.Deps{Fetcher: &fakeFetcher{doc: directionsDoc}, Logger: quietLogger(), SamplePoints: 2}),
	}
	return New(append(base, opts...)...)
}

// sectionCategories extracts the category sequence, collapsing adjacent
// duplicates, to assert merge order.
func sectionCategories(sections []model.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if len(out) == 0 || out[len(out)-1] != s.Category {
			out = append(out, s.Category)
		}
	}
	return out
}

// TestRunMergeOrder tests that section order follows the canonical
// provider order regardless of completion order.
func TestRunMergeOrder(t *testing.T) {
	t.Parallel()

	// Early providers finish last; late providers finish first.
	delays := map[string]time.Duration{
		provider.NameTraffic:  80 * time.Millisecond,
		provider.NameWeather:  60 * time.Millisecond,
		provider.NameRealtime: 20 * time.Millisecond,
		provider.NameLocation: 0,
	}

	o := newTestOrchestrator(stubRegistry(delays, nil))
	report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

	want := []string{"traffic", "weather", "maps", "realtime", "fleet", "emergency", "location"}
	got := sectionCategories(report.Sections)
	if len(got) != len(want) {
		t.Fatalf("category sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category sequence = %v, want %v", got, want)
		}
	}
}

// TestRunSummaryInvariant tests that every declared provider is counted
// exactly once under varying credential subsets.
func TestRunSummaryInvariant(t *testing.T) {
	t.Parallel()

	credSets := map[string]config.Credentials{
		"no credentials":   nil,
		"tomtom only":      {config.CredTomTom: "t"},
		"google only":      {config.CredGoogleMaps: "g"},
		"all credentials":  allCredentials(),
		"weather and fire": {config.CredOpenWeather: "o", config.CredEmergencyAPI: "e"},
	}

	for name, creds := range credSets {
		name, creds := name, creds
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			o := newTestOrchestrator(stubRegistry(nil, nil))
			report := o.Run(context.Background(), testRoute(model.VehicleClassCar), creds)

			s := report.Summary
			if len(s.Statuses) != 6 {
				t.Fatalf("got %d statuses, want 6", len(s.Statuses))
			}
			if got := s.Succeeded() + s.Failed() + s.Skipped(); got != 6 {
				t.Errorf("succeeded+failed+skipped = %d, want 6", got)
			}
			if _, ok := s.Status(provider.NameMaps); ok {
				t.Error("maps collaborator must not appear in the summary")
			}
		})
	}
}

// TestRunSkipOnMissingCredential tests that a missing primary credential
// skips, never fails.
func TestRunSkipOnMissingCredential(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(stubRegistry(nil, nil))
	report := o.Run(context.Background(), testRoute(model.VehicleClassCar), nil)

	for _, st := range report.Summary.Statuses {
		if st.Provider == provider.NameFleet {
			if st.State != model.StateSucceeded {
				t.Errorf("fleet state = %s, want SUCCEEDED", st.StateText)
			}
			continue
		}
		if st.State != model.StateSkipped {
			t.Errorf("%s state = %s, want SKIPPED", st.Provider, st.StateText)
		}
		if st.Cause != "" {
			t.Errorf("%s skipped with a cause %q; skipping is not an error", st.Provider, st.Cause)
		}
	}
}

// TestRunOperationIsolation tests that a failed operation never
// suppresses its siblings or the provider's success.
func TestRunOperationIsolation(t *testing.T) {
	t.Parallel()

	overrides := map[string][]model.Result{
		provider.NameTraffic: {
			model.FailResult("seasonal_congestion", "upstream down"),
			model.NewResult("construction_zones", map[string]any{
				"construction_recommendations": []string{"survivor"},
			}),
		},
	}

	o := newTestOrchestrator(stubRegistry(nil, overrides))
	report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

	st, ok := report.Summary.Status(provider.NameTraffic)
	if !ok {
		t.Fatal("no traffic status")
	}
	if st.State != model.StateSucceeded {
		t.Errorf("state = %s, want SUCCEEDED with one op failed", st.StateText)
	}
	if st.FailedOperations != 1 {
		t.Errorf("FailedOperations = %d, want 1", st.FailedOperations)
	}
	if st.Sections != 1 {
		t.Errorf("Sections = %d, want 1 surviving section", st.Sections)
	}
}

// TestRunProviderFailed tests the all-operations-failed and
// construction-error paths.
func TestRunProviderFailed(t *testing.T) {
	t.Parallel()

	t.Run("all operations failed", func(t *testing.T) {
		t.Parallel()

		overrides := map[string][]model.Result{
			provider.NameWeather: {
				model.FailResult("summer_risks", "dns failure"),
				model.FailResult("monsoon_risks", "dns failure"),
			},
		}

		o := newTestOrchestrator(stubRegistry(nil, overrides))
		report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

		st, _ := report.Summary.Status(provider.NameWeather)
		if st.State != model.StateFailed {
			t.Errorf("state = %s, want FAILED", st.StateText)
		}
		if st.Cause != "dns failure" {
			t.Errorf("cause = %q", st.Cause)
		}
		if st.Sections != 0 {
			t.Errorf("failed provider contributed %d sections", st.Sections)
		}
	})

	t.Run("construction error", func(t *testing.T) {
		t.Parallel()

		reg := provider.NewRegistry(provider.Registration{
			Name: provider.NameTraffic,
			Construct: func(config.Credentials, provider.Deps) (provider.Provider, error) {
				return nil, errors.New("bad wiring")
			},
		})

		o := newTestOrchestrator(reg)
		report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

		st, _ := report.Summary.Status(provider.NameTraffic)
		if st.State != model.StateFailed {
			t.Errorf("state = %s, want FAILED", st.StateText)
		}
		if st.Cause == "" {
			t.Error("construction failure must record a cause")
		}
	})

	t.Run("failure does not disturb other providers", func(t *testing.T) {
		t.Parallel()

		overrides := map[string][]model.Result{
			provider.NameWeather: {model.FailResult("summer_risks", "down")},
		}

		o := newTestOrchestrator(stubRegistry(nil, overrides))
		report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

		if report.Summary.Succeeded() != 5 {
			t.Errorf("succeeded = %d, want 5", report.Summary.Succeeded())
		}
		categories := sectionCategories(report.Sections)
		for _, c := range categories {
			if c == "weather" {
				t.Error("failed provider must contribute no sections")
			}
		}
	})
}

// TestRunProviderTimeout tests that an overrunning provider is recorded
// FAILED with the deadline cause.
func TestRunProviderTimeout(t *testing.T) {
	t.Parallel()

	delays := map[string]time.Duration{provider.NameTraffic: 500 * time.Millisecond}

	o := newTestOrchestrator(stubRegistry(delays, nil), WithProviderTimeout(30*time.Millisecond))
	report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

	st, _ := report.Summary.Status(provider.NameTraffic)
	if st.State != model.StateFailed {
		t.Fatalf("state = %s, want FAILED", st.StateText)
	}
	if st.Cause == "" {
		t.Error("timeout must record the context cause")
	}

	// Other providers keep their own timeout budget.
	if report.Summary.Succeeded() != 5 {
		t.Errorf("succeeded = %d, want 5", report.Summary.Succeeded())
	}
}

// TestRunCancellation tests that cancelling the run keeps completed
// sections and records abandoned providers as FAILED.
func TestRunCancellation(t *testing.T) {
	t.Parallel()

	delays := map[string]time.Duration{
		provider.NameEmergency: 2 * time.Second,
		provider.NameLocation:  2 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	o := newTestOrchestrator(stubRegistry(delays, nil))
	report := o.Run(ctx, testRoute(model.VehicleClassCar), allCredentials())

	if !report.Cancelled {
		t.Error("report must be marked cancelled")
	}
	if st, _ := report.Summary.Status(provider.NameTraffic); st.State != model.StateSucceeded {
		t.Errorf("fast provider state = %s, want SUCCEEDED", st.StateText)
	}
	for _, name := range []string{provider.NameEmergency, provider.NameLocation} {
		st, _ := report.Summary.Status(name)
		if st.State != model.StateFailed {
			t.Errorf("%s state = %s, want FAILED after cancellation", name, st.StateText)
		}
	}
	if got := report.Summary.Succeeded() + report.Summary.Failed() + report.Summary.Skipped(); got != 6 {
		t.Errorf("summary invariant broken under cancellation: %d", got)
	}
}

// TestRunHeavyVehicleGate tests the single-evaluation gate and the maps
// collaborator's slot behavior.
func TestRunHeavyVehicleGate(t *testing.T) {
	t.Parallel()

	hasSection := func(report *model.RouteReport, title string) bool {
		for _, s := range report.Sections {
			if s.Title == title {
				return true
			}
		}
		return false
	}

	t.Run("bus with google credential gets heavy vehicle analysis", func(t *testing.T) {
		t.Parallel()

		o := newTestOrchestrator(stubRegistry(nil, nil))
		report := o.Run(context.Background(), testRoute(model.VehicleClassBus), allCredentials())

		if !hasSection(report, "Heavy Vehicle Suitability") {
			t.Error("bus run with google credential must include heavy vehicle analysis")
		}
	})

	t.Run("car never gets heavy vehicle analysis", func(t *testing.T) {
		t.Parallel()

		o := newTestOrchestrator(stubRegistry(nil, nil))
		report := o.Run(context.Background(), testRoute(model.VehicleClassCar), allCredentials())

		if hasSection(report, "Heavy Vehicle Suitability") {
			t.Error("car run must not include heavy vehicle analysis")
		}
		if !hasSection(report, "Route Overview") {
			t.Error("maps collaborator must still contribute its overview")
		}
	})

	t.Run("gate passing without credential yields no section", func(t *testing.T) {
		t.Parallel()

		// Scenario: heavy vehicle, but the collaborator's credential is
		// absent. The gate decision is true, the capability is absent,
		// and the report simply has no maps sections.
		creds := config.Credentials{config.CredTomTom: "t"}

		o := newTestOrchestrator(stubRegistry(nil, nil))
		report := o.Run(context.Background(), testRoute(model.VehicleClassBus), creds)

		for _, s := range report.Sections {
			if s.Category == provider.NameMaps {
				t.Errorf("unexpected maps section %q", s.Title)
			}
		}
	})
}

// TestRunScenarios tests the two end-to-end eligibility scenarios.
func TestRunScenarios(t *testing.T) {
	t.Parallel()

	t.Run("tomtom only with car", func(t *testing.T) {
		t.Parallel()

		creds := config.Credentials{config.CredTomTom: "t"}
		o := newTestOrchestrator(stubRegistry(nil, nil))
		report := o.Run(context.Background(), testRoute(model.VehicleClassCar), creds)

		if report.Summary.Succeeded() != 2 {
			t.Errorf("succeeded = %d, want 2 (traffic, fleet)", report.Summary.Succeeded())
		}
		if report.Summary.Skipped() != 4 {
			t.Errorf("skipped = %d, want 4", report.Summary.Skipped())
		}
		got := sectionCategories(report.Sections)
		want := []string{"traffic", "fleet"}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("categories = %v, want %v", got, want)
		}
	})

	t.Run("no credentials with bus", func(t *testing.T) {
		t.Parallel()

		o := newTestOrchestrator(stubRegistry(nil, nil))
		report := o.Run(context.Background(), testRoute(model.VehicleClassBus), nil)

		if report.Summary.Succeeded() != 1 {
			t.Errorf("succeeded = %d, want 1 (fleet)", report.Summary.Succeeded())
		}
		if report.Summary.Skipped() != 5 {
			t.Errorf("skipped = %d, want 5", report.Summary.Skipped())
		}
		for _, s := range report.Sections {
			if s.Category != provider.NameFleet {
				t.Errorf("unexpected section category %q", s.Category)
			}
		}
	})
}

// TestRunDeterminism tests that two identical runs produce identical
// section sequences.
func TestRunDeterminism(t *testing.T) {
	t.Parallel()

	run := func() []model.Section {
		o := newTestOrchestrator(stubRegistry(nil, nil))
		return o.Run(context.Background(), testRoute(model.VehicleClassBus), allCredentials()).Sections
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("section counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title || first[i].Category != second[i].Category {
			t.Errorf("section %d differs: %q/%q vs %q/%q",
				i, first[i].Category, first[i].Title, second[i].Category, second[i].Title)
		}
	}
}
