package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/upstream"
)

// googleDirectionsURL is the routing endpoint the map enhancer consults.
const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// MapsEnhancer is the map-enhancement collaborator. It is not a declared
// provider: it has no registry entry, never appears in the run summary,
// and is invoked directly by the orchestrator when its credential is
// configured. Its sections occupy a fixed slot in the composed report,
// between weather and realtime.
//
// Heavy-vehicle route suitability also lives here, because it is derived
// from the same road-network answer; the orchestrator requests it only
// when the vehicle class passes the heavy-vehicle gate.
type MapsEnhancer struct {
	googleKey string
	fetcher   upstream.Fetcher
	logger    *slog.Logger
}

// NewMapsEnhancer creates the collaborator. An empty googleKey yields an
// unavailable enhancer; callers check Available before invoking it.
func NewMapsEnhancer(googleKey string, deps Deps) *MapsEnhancer {
	deps = deps.normalize()
	return &MapsEnhancer{
		googleKey: googleKey,
		fetcher:   deps.Fetcher,
		logger:    deps.Logger,
	}
}

// Available reports whether the enhancer has the credential it needs.
func (m *MapsEnhancer) Available() bool { return m.googleKey != "" }

// Name returns the collaborator's composition name.
func (m *MapsEnhancer) Name() string { return NameMaps }

// directionsResponse is the subset of the Google Directions answer the
// enhancer consumes.
type directionsResponse struct {
	Routes []struct {
		Summary  string   `json:"summary"`
		Warnings []string `json:"warnings"`
		Legs     []struct {
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
			Steps []struct {
				HTMLInstructions string `json:"html_instructions"`
				Distance         struct {
					Value float64 `json:"value"`
				} `json:"distance"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
	Status string `json:"status"`
}

// roadProfile is the road-network character of the route, shared by
// enhancement and heavy-vehicle analysis.
type roadProfile struct {
	summary    string
	highways   []string
	highwayPct float64
	avgSpeed   float64
	warnings   []string
}

// profile fetches the road-network character of the route.
func (m *MapsEnhancer) profile(ctx context.Context, rc *model.RouteContext) (roadProfile, error) {
	start, end := rc.Start(), rc.End()

	var resp directionsResponse
	params := urlValues(map[string]string{
		"origin":      fmt.Sprintf("%.5f,%.5f", start.Lat, start.Lng),
		"destination": fmt.Sprintf("%.5f,%.5f", end.Lat, end.Lng),
		"key":         m.googleKey,
	})
	if err := m.fetcher.GetJSON(ctx, googleDirectionsURL, params, &resp); err != nil {
		return roadProfile{}, err
	}
	if resp.Status != "" && resp.Status != "OK" {
		return roadProfile{}, fmt.Errorf("directions status %s", resp.Status)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return roadProfile{}, fmt.Errorf("directions answer without routes")
	}

	r := resp.Routes[0]
	p := roadProfile{summary: r.Summary, warnings: r.Warnings}

	var totalM, highwayM, totalS float64
	seen := make(map[string]bool)
	for _, leg := range r.Legs {
		totalM += leg.Distance.Value
		totalS += leg.Duration.Value
		for _, step := range leg.Steps {
			name := highwayName(step.HTMLInstructions)
			if name == "" {
				continue
			}
			highwayM += step.Distance.Value
			if !seen[name] {
				seen[name] = true
				p.highways = append(p.highways, name)
			}
		}
	}
	if totalM > 0 {
		p.highwayPct = math.Round(highwayM / totalM * 100)
	}
	if totalS > 0 {
		p.avgSpeed = math.Round(totalM / 1000 / (totalS / 3600))
	}
	return p, nil
}

// highwayName extracts a national/state highway designation from a
// direction step, or "" when the step is not a highway.
func highwayName(instruction string) string {
	for _, prefix := range []string{"NH", "NE", "SH", "AH"} {
		if i := strings.Index(instruction, prefix+" "); i >= 0 {
			rest := instruction[i:]
			end := len(prefix) + 1
			for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
				end++
			}
			if end > len(prefix)+1 {
				return rest[:end]
			}
		}
	}
	return ""
}

// Analyze produces the map-enhancement result: the road-network overview
// of the route.
func (m *MapsEnhancer) Analyze(ctx context.Context, rc *model.RouteContext) []model.Result {
	const op = "route_enhancements"

	p, err := m.profile(ctx, rc)
	if err != nil {
		m.logger.Debug("road profile lookup failed", "error", err)
		return []model.Result{model.FailResult(op, failCause("road network lookup failed", err))}
	}

	overview := map[string]any{
		"primary_corridor":   p.summary,
		"highway_percentage": p.highwayPct,
		"average_speed_kmph": p.avgSpeed,
	}

	return []model.Result{model.NewResult(op, map[string]any{
		"route_overview": overview,
		"major_highways": p.highways,
		"road_warnings":  p.warnings,
	})}
}

// HeavyVehicleAnalysis rates the route's suitability for the configured
// heavy vehicle. The orchestrator calls this only when the vehicle class
// passes the heavy-vehicle gate; the method itself does not re-check it.
func (m *MapsEnhancer) HeavyVehicleAnalysis(ctx context.Context, rc *model.RouteContext) model.Result {
	const op = "heavy_vehicle"

	p, err := m.profile(ctx, rc)
	if err != nil {
		m.logger.Debug("heavy vehicle profile lookup failed", "error", err)
		return model.FailResult(op, failCause("road network lookup failed", err))
	}

	vehicle := rc.Vehicle()

	// Highway share dominates suitability: divided carriageways carry
	// heavy vehicles safely, dense urban stretches do not.
	score := 40 + p.highwayPct*0.5
	if len(rc.Turns()) > 20 {
		score -= 10
	}
	if vehicle.HeightM > 4.5 {
		score -= 15
	}
	score = math.Max(0, math.Min(100, math.Round(score)))

	restrictions := make([]string, 0)
	if vehicle.HeightM > 4.5 {
		restrictions = append(restrictions, fmt.Sprintf("vehicle height %.1f m exceeds standard underpass clearance; verify structures on urban approaches", vehicle.HeightM))
	}
	if vehicle.WeightKG > 25000 {
		restrictions = append(restrictions, "gross weight above 25 t; some district roads on this corridor carry weight limits")
	}
	if p.highwayPct < 60 {
		restrictions = append(restrictions, "significant non-highway mileage; expect municipal time-based entry bans for goods vehicles")
	}

	recs := []string{"Time urban entry and exit outside municipal goods-vehicle ban windows."}
	if len(rc.Turns()) > 10 {
		recs = append(recs, "Brief drivers on the turn-dense ghat or bypass stretches; heavy vehicles need the full lane there.")
	}

	return model.NewResult(op, map[string]any{
		"overall_suitability_score": score,
		"road_infrastructure": map[string]any{
			"highway_percentage": p.highwayPct,
			"primary_corridor":   p.summary,
			"major_highways":     p.highways,
		},
		"traffic_analysis": map[string]any{
			"average_speed_kmph":         p.avgSpeed,
			"heavy_vehicle_restrictions": restrictions,
		},
		"route_recommendations": recs,
	})
}
