package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/routelens/routelens/internal/compose"
	"github.com/routelens/routelens/internal/config"
	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/provider"
)

// mapsSlot is the canonical position of the map-enhancement collaborator
// in the merged section order: after weather, before realtime.
const mapsSlot = 2

// Orchestrator coordinates provider execution for one or more runs.
type Orchestrator struct {
	// registry declares the providers in canonical order.
	registry *provider.Registry

	// deps are the shared collaborators injected into providers.
	deps provider.Deps

	// logger receives per-provider status events.
	logger *slog.Logger

	// timeout bounds each provider's analysis.
	timeout time.Duration

	// concurrency limits how many providers analyze at once.
	concurrency int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for run observability.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithRegistry replaces the default provider registry. Tests use this to
// run stub providers through the real lifecycle.
func WithRegistry(r *provider.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = r
	}
}

// WithDeps sets the shared provider dependencies.
func WithDeps(deps provider.Deps) Option {
	return func(o *Orchestrator) {
		o.deps = deps
	}
}

// WithProviderTimeout bounds each provider's analysis window.
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithConcurrency limits how many providers run at once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// New creates an Orchestrator with the default registry and bounds.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:    provider.DefaultRegistry(),
		timeout:     config.DefaultProviderTimeout,
		concurrency: config.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// slot is one unit of concurrent work: a declared provider or the maps
// collaborator, pinned to its canonical merge position.
type slot struct {
	name      string
	declared  bool
	run       func(ctx context.Context) []model.Result
	skipped   bool
	construct error

	// results is written only by the slot's own goroutine and read only
	// after the merge barrier.
	results []model.Result
}

// Run executes one analysis run and returns the assembled report. It
// never returns an error: provider failures are recorded in the report's
// summary, and cancellation yields a report marked Cancelled that keeps
// every section completed before the cut.
func (o *Orchestrator) Run(ctx context.Context, rc *model.RouteContext, creds config.Credentials) *model.RouteReport {
	report := model.NewRouteReport(rc)

	// The heavy-vehicle gate is evaluated once per run, here and nowhere
	// else. Providers never re-check the vehicle class for gating.
	heavyVehicle := rc.Vehicle().Class.HeavyVehicle()

	slots := o.buildSlots(creds, rc, heavyVehicle)

	o.logger.Info("starting analysis run",
		"run_id", report.RunID,
		"route", report.RouteLabel(),
		"vehicle_class", rc.Vehicle().Class,
		"heavy_vehicle_analysis", heavyVehicle,
		"credentials", creds.Configured(),
	)

	g, runCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, s := range slots {
		if s.run == nil {
			continue
		}
		s := s
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(runCtx, o.timeout)
			defer cancel()
			s.results = s.run(pctx)
			return nil
		})
	}
	// Merge barrier: no section is appended until every slot finished.
	// Worker funcs always return nil, so Wait's error is irrelevant.
	_ = g.Wait()

	report.Cancelled = ctx.Err() != nil

	statuses := make([]model.ProviderStatus, 0, o.registry.Len())
	for _, s := range slots {
		sections := compose.Sections(s.name, s.results)
		report.Sections = append(report.Sections, sections...)

		if s.declared {
			status := o.status(ctx, s, len(sections))
			statuses = append(statuses, status)
			o.logStatus(status)
		}
	}
	report.Summary = model.RunSummary{
		Statuses:     statuses,
		SectionCount: len(report.Sections),
	}
	report.GeneratedAt = time.Now().UTC()

	o.logger.Info("analysis run finished",
		"run_id", report.RunID,
		"sections", report.Summary.SectionCount,
		"succeeded", report.Summary.Succeeded(),
		"failed", report.Summary.Failed(),
		"skipped", report.Summary.Skipped(),
		"cancelled", report.Cancelled,
	)
	return report
}

// buildSlots lays out the run's work in canonical merge order: the
// declared providers with the maps collaborator spliced in at its fixed
// position. Collaborator availability is a capability check, not an
// eligibility decision; it contributes no summary status either way.
func (o *Orchestrator) buildSlots(creds config.Credentials, rc *model.RouteContext, heavyVehicle bool) []*slot {
	resolutions := o.registry.Resolve(creds, o.deps)

	slots := make([]*slot, 0, len(resolutions)+1)
	for _, res := range resolutions {
		s := &slot{name: res.Registration.Name, declared: true}
		switch {
		case res.Skipped:
			s.skipped = true
		case res.Err != nil:
			s.construct = res.Err
		default:
			p := res.Provider
			s.run = func(ctx context.Context) []model.Result {
				return p.Analyze(ctx, rc)
			}
		}
		slots = append(slots, s)
	}

	enhancer := provider.NewMapsEnhancer(creds.Get(config.CredGoogleMaps), o.deps)
	maps := &slot{name: enhancer.Name()}
	if enhancer.Available() {
		maps.run = func(ctx context.Context) []model.Result {
			results := enhancer.Analyze(ctx, rc)
			if heavyVehicle {
				results = append(results, enhancer.HeavyVehicleAnalysis(ctx, rc))
			}
			return results
		}
	}

	at := mapsSlot
	if at > len(slots) {
		at = len(slots)
	}
	out := make([]*slot, 0, len(slots)+1)
	out = append(out, slots[:at]...)
	out = append(out, maps)
	out = append(out, slots[at:]...)
	return out
}

// status derives the terminal state of one declared provider's slot.
func (o *Orchestrator) status(ctx context.Context, s *slot, sections int) model.ProviderStatus {
	status := model.ProviderStatus{Provider: s.name, Sections: sections}

	switch {
	case s.skipped:
		status.State = model.StateSkipped
	case s.construct != nil:
		status.State = model.StateFailed
		status.Cause = s.construct.Error()
	case len(s.results) == 0:
		// The provider never ran: the run was cancelled before its slot
		// was scheduled.
		status.State = model.StateFailed
		status.Cause = causeText(ctx, "provider did not run")
	default:
		failed := 0
		firstCause := ""
		for _, r := range s.results {
			if r.Failed() {
				failed++
				if firstCause == "" {
					firstCause = r.Cause
				}
			}
		}
		if failed == len(s.results) {
			status.State = model.StateFailed
			status.Cause = firstCause
		} else {
			status.State = model.StateSucceeded
			status.FailedOperations = failed
		}
	}

	status.StateText = status.State.String()
	return status
}

// causeText prefers the run context's cancellation cause over a fallback.
func causeText(ctx context.Context, fallback string) string {
	if err := context.Cause(ctx); err != nil {
		return err.Error()
	}
	return fallback
}

// logStatus emits the per-provider observability line. Status reporting
// is log-only; nothing downstream branches on it.
func (o *Orchestrator) logStatus(status model.ProviderStatus) {
	switch status.State {
	case model.StateSkipped:
		o.logger.Info("provider skipped, credential not configured", "provider", status.Provider)
	case model.StateFailed:
		o.logger.Warn("provider failed",
			"provider", status.Provider,
			"cause", status.Cause,
		)
	default:
		o.logger.Info("provider succeeded",
			"provider", status.Provider,
			"sections", status.Sections,
			"failed_operations", status.FailedOperations,
		)
	}
}
