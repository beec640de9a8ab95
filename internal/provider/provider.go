package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/routelens/routelens/internal/config"
	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/upstream"
)

// Canonical provider names. The registry declares providers in exactly
// this order, and the orchestrator merges their output in the same order,
// so two runs over the same route always produce identically ordered
// reports.
const (
	NameTraffic   = "traffic"
	NameWeather   = "weather"
	NameRealtime  = "realtime"
	NameFleet     = "fleet"
	NameEmergency = "emergency"
	NameLocation  = "location"

	// NameMaps is the map-enhancement collaborator. It is not a declared
	// provider: it has no registry entry and no line in the run summary,
	// but its sections occupy a fixed slot in the composed report.
	NameMaps = "maps"
)

// Provider is one self-contained route analysis unit.
//
// Design decision: Analyze returns a Result slice rather than
// ([]Result, error) because a provider has no all-or-nothing failure
// mode. Each operation succeeds or fails independently, and the
// orchestrator derives the provider's overall state from the results:
// at least one success means SUCCEEDED, all failed means FAILED.
type Provider interface {
	// Name returns the canonical provider name.
	Name() string

	// Analyze performs every operation of this provider against the
	// shared route context. It must return one Result per declared
	// operation, in declaration order, and must not panic: any internal
	// failure becomes a failed Result. Implementations honor ctx
	// cancellation between upstream calls.
	Analyze(ctx context.Context, route *model.RouteContext) []model.Result
}

// Deps carries the shared collaborators injected into every provider.
// Constructors receive Deps so the registry can build providers without
// knowing what each one needs.
type Deps struct {
	// Fetcher performs bounded upstream HTTP access. Tests inject fakes.
	Fetcher upstream.Fetcher

	// Logger receives provider-level diagnostics. Never nil after
	// normalize.
	Logger *slog.Logger

	// SamplePoints bounds per-operation upstream fan-out along the route.
	SamplePoints int
}

// normalize fills zero-valued Deps fields with safe defaults.
func (d Deps) normalize() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Fetcher == nil {
		d.Fetcher = upstream.NewClient()
	}
	if d.SamplePoints <= 0 {
		d.SamplePoints = config.DefaultSamplePoints
	}
	return d
}

// probe runs fetch once per sampled point, tolerating individual
// failures. It returns the successful observations and a non-nil error
// only when every single fetch failed, which providers report as an
// operation failure. Cancellation aborts the remaining points.
func probe[T any](ctx context.Context, points []model.Point, fetch func(context.Context, model.Point) (T, error)) ([]T, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no route points to probe")
	}

	out := make([]T, 0, len(points))
	var lastErr error
	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := fetch(ctx, p)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("all %d probe points failed: %w", len(points), lastErr)
	}
	return out, nil
}

// failCause renders an upstream error as a stable, human-readable
// operation failure cause.
func failCause(operation string, err error) string {
	return fmt.Sprintf("%s: %v", operation, err)
}

// urlValues builds query parameters from a flat key-value map.
func urlValues(kv map[string]string) url.Values {
	v := make(url.Values, len(kv))
	for k, val := range kv {
		v.Set(k, val)
	}
	return v
}
