package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/route"
	"github.com/routelens/routelens/internal/upstream"
)

// googlePlacesURL is the nearby-search endpoint used to map emergency
// services around route points.
const googlePlacesURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// emergencyServiceRadiusM is the search radius for emergency services
// around each sampled point.
const emergencyServiceRadiusM = 10000

// Emergency plans emergency response and communication for the trip.
// The emergency-service directory credential gates the provider; the
// optional Google Maps credential upgrades coverage mapping from
// distance-based estimates to actual nearby facilities.
type Emergency struct {
	emergencyKey string
	googleKey    string
	fetcher      upstream.Fetcher
	logger       *slog.Logger
	sample       int
}

// NewEmergency creates the emergency provider. emergencyKey must be
// non-empty; googleKey is optional.
func NewEmergency(emergencyKey, googleKey string, deps Deps) *Emergency {
	deps = deps.normalize()
	return &Emergency{
		emergencyKey: emergencyKey,
		googleKey:    googleKey,
		fetcher:      deps.Fetcher,
		logger:       deps.Logger,
		sample:       deps.SamplePoints,
	}
}

// Name implements Provider.
func (e *Emergency) Name() string { return NameEmergency }

// Analyze implements Provider.
func (e *Emergency) Analyze(ctx context.Context, rc *model.RouteContext) []model.Result {
	return []model.Result{
		e.responsePlan(ctx, rc),
		e.communicationPlan(rc),
	}
}

// placesResponse is the subset of the Google Places nearby-search answer
// consumed for facility mapping.
type placesResponse struct {
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
	} `json:"results"`
	Status string `json:"status"`
}

// zoneCoverage is the emergency-facility coverage of one sampled zone.
type zoneCoverage struct {
	zone      string
	hospitals []map[string]any
}

// responsePlan maps emergency facilities along the route and scores
// coverage. With the Google credential configured, facilities come from
// nearby search; otherwise coverage is estimated from route geometry so
// the plan is still usable offline.
func (e *Emergency) responsePlan(ctx context.Context, rc *model.RouteContext) model.Result {
	const op = "response_plan"

	if rc.PointCount() == 0 {
		return model.FailResult(op, "route has no points")
	}

	points := route.Sample(rc.Points(), e.sample)
	var zones []zoneCoverage
	if e.googleKey != "" {
		mapped, err := e.mapFacilities(ctx, points)
		if err != nil {
			e.logger.Debug("facility mapping failed, falling back to estimates", "error", err)
		} else {
			zones = mapped
		}
	}
	if zones == nil {
		zones = estimateCoverage(points)
	}

	facilities := make([]map[string]any, 0)
	covered := 0
	gaps := make([]string, 0)
	for _, z := range zones {
		if len(z.hospitals) > 0 {
			covered++
			facilities = append(facilities, z.hospitals...)
		} else {
			gaps = append(gaps, z.zone)
		}
	}
	score := math.Round(float64(covered) / float64(len(zones)) * 100)

	level := "good"
	switch {
	case score < 50:
		level = "poor"
	case score < 75:
		level = "partial"
	}

	return model.NewResult(op, map[string]any{
		"emergency_facilities": facilities,
		"coverage_analysis": map[string]any{
			"coverage_score":   score,
			"overall_coverage": level,
			"coverage_gaps":    gaps,
		},
		"helplines": []map[string]any{
			{"service": "National emergency", "number": "112"},
			{"service": "Ambulance", "number": "108"},
			{"service": "Police", "number": "100"},
			{"service": "Fire", "number": "101"},
			{"service": "Highway assistance", "number": "1033"},
		},
	})
}

// mapFacilities probes nearby hospitals for each sampled point.
func (e *Emergency) mapFacilities(ctx context.Context, points []model.Point) ([]zoneCoverage, error) {
	idx := 0
	return probe(ctx, points, func(ctx context.Context, p model.Point) (zoneCoverage, error) {
		idx++
		var resp placesResponse
		params := urlValues(map[string]string{
			"location": fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng),
			"radius":   fmt.Sprintf("%d", emergencyServiceRadiusM),
			"type":     "hospital",
			"key":      e.googleKey,
		})
		if err := e.fetcher.GetJSON(ctx, googlePlacesURL, params, &resp); err != nil {
			return zoneCoverage{}, err
		}
		if resp.Status != "" && resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
			return zoneCoverage{}, fmt.Errorf("places status %s", resp.Status)
		}

		zone := zoneCoverage{zone: fmt.Sprintf("zone %d", idx)}
		// Three nearest facilities per zone keep the plan printable.
		for i, r := range resp.Results {
			if i == 3 {
				break
			}
			zone.hospitals = append(zone.hospitals, map[string]any{
				"type": "hospital",
				"name": r.Name,
				"near": r.Vicinity,
				"zone": zone.zone,
			})
		}
		return zone, nil
	})
}

// estimateCoverage approximates facility coverage from geometry alone:
// densely-pointed stretches are treated as populated corridors with
// nearby facilities, sparse stretches as coverage gaps.
func estimateCoverage(points []model.Point) []zoneCoverage {
	zones := make([]zoneCoverage, 0, len(points))
	for i, p := range points {
		zone := zoneCoverage{zone: fmt.Sprintf("zone %d", i+1)}
		gapKM := 0.0
		if i > 0 {
			gapKM = route.HaversineKM(points[i-1], p)
		}
		// A sampled gap under 30 km implies a populated corridor.
		if gapKM < 30 {
			zone.hospitals = []map[string]any{{
				"type": "hospital",
				"name": fmt.Sprintf("District facility near zone %d (estimated)", i+1),
				"zone": zone.zone,
			}}
		}
		zones = append(zones, zone)
	}
	return zones
}

// communicationPlan derives the communication strategy for the trip:
// channels, likely dead zones, and the escalation hierarchy.
func (e *Emergency) communicationPlan(rc *model.RouteContext) model.Result {
	const op = "communication_plan"

	if rc.PointCount() == 0 {
		return model.FailResult(op, "route has no points")
	}

	// Long gaps between consecutive route points indicate remote
	// stretches where cellular coverage typically drops.
	points := route.Sample(rc.Points(), e.sample)
	deadZones := make([]map[string]any, 0)
	for i := 1; i < len(points); i++ {
		gap := route.HaversineKM(points[i-1], points[i])
		if gap < 40 {
			continue
		}
		deadZones = append(deadZones, map[string]any{
			"zone":      fmt.Sprintf("between zone %d and zone %d", i, i+1),
			"length_km": math.Round(gap*10) / 10,
			"risk":      "cellular coverage likely intermittent",
		})
	}

	hierarchy := []map[string]any{
		{"level": "1", "contact_type": "Fleet control room", "response_time": "immediate", "purpose": "trip monitoring and first escalation"},
		{"level": "2", "contact_type": "Local emergency services (112)", "response_time": "10-30 min", "purpose": "medical, fire, police response"},
		{"level": "3", "contact_type": "Company emergency coordinator", "response_time": "30-60 min", "purpose": "incident management and relief dispatch"},
	}

	return model.NewResult(op, map[string]any{
		"primary_channels":            []string{"Mobile voice", "Fleet tracking app", "SMS fallback"},
		"backup_methods":              []string{"Satellite messenger for remote stretches", "Driver check-in calls every 2 hours"},
		"communication_dead_zones":    deadZones,
		"emergency_contact_hierarchy": hierarchy,
	})
}
