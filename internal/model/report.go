package model

import (
	"time"

	"github.com/google/uuid"
)

// RouteReport is the assembled output of one pipeline run: the ordered
// section sequence plus the run summary, handed to the renderer. The
// renderer owns all presentational concerns and document emission.
type RouteReport struct {
	// RunID uniquely identifies this run, for history storage and
	// cross-run comparison.
	RunID string `json:"run_id"`

	// GeneratedAt is the timestamp the run completed.
	GeneratedAt time.Time `json:"generated_at"`

	// FromAddress is the human-readable origin of the analyzed route.
	FromAddress string `json:"from_address"`

	// ToAddress is the human-readable destination of the analyzed route.
	ToAddress string `json:"to_address"`

	// DistanceKM is the estimated route length in kilometers.
	DistanceKM float64 `json:"distance_km"`

	// DurationMinutes is the estimated travel time in minutes.
	DurationMinutes float64 `json:"duration_minutes"`

	// VehicleClass is the vehicle class the route was analyzed for.
	VehicleClass VehicleClass `json:"vehicle_class"`

	// PointCount is the number of route coordinates analyzed.
	PointCount int `json:"point_count"`

	// Sections holds the report content in canonical provider order.
	Sections []Section `json:"sections"`

	// Summary aggregates per-provider outcomes for this run.
	Summary RunSummary `json:"summary"`

	// Cancelled is true when the run was aborted before all providers
	// finished. Sections completed before cancellation are retained.
	Cancelled bool `json:"cancelled,omitempty"`
}

// NewRouteReport creates a report shell for the given route with a fresh
// run ID. Sections and the summary are filled in by the orchestrator.
func NewRouteReport(route *RouteContext) *RouteReport {
	return &RouteReport{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		FromAddress:     route.FromAddress(),
		ToAddress:       route.ToAddress(),
		DistanceKM:      route.DistanceKM(),
		DurationMinutes: route.DurationMinutes(),
		VehicleClass:    route.Vehicle().Class,
		PointCount:      route.PointCount(),
		Sections:        make([]Section, 0),
	}
}

// RouteLabel returns a short "from -> to" label for logs and history.
func (r *RouteReport) RouteLabel() string {
	if r.FromAddress == "" && r.ToAddress == "" {
		return "unnamed route"
	}
	return r.FromAddress + " -> " + r.ToAddress
}
