package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/route"
	"github.com/routelens/routelens/internal/upstream"
)

// Upstream endpoints for the traffic provider.
const (
	tomtomFlowURL    = "https://api.tomtom.com/traffic/services/4/flowSegmentData/absolute/10/json"
	hereIncidentsURL = "https://data.traffic.hereapi.com/v7/incidents"
)

// season describes one traffic season with its congestion multiplier
// relative to the observed baseline and its characteristic peak hours.
type season struct {
	name       string
	multiplier float64
	peakHours  []string
}

// seasons lists the analysis periods in report order.
var seasons = []season{
	{name: "winter", multiplier: 0.9, peakHours: []string{"08:00-10:00", "18:00-20:00"}},
	{name: "summer", multiplier: 1.0, peakHours: []string{"07:00-09:00", "17:00-19:00"}},
	{name: "monsoon", multiplier: 1.35, peakHours: []string{"08:00-11:00", "17:00-21:00"}},
	{name: "post_monsoon", multiplier: 1.1, peakHours: []string{"08:00-10:00", "18:00-20:00"}},
}

// Traffic analyzes seasonal congestion patterns and active construction
// zones along the route. TomTom flow data is the primary source; HERE
// incident data additionally enables construction-zone detection.
type Traffic struct {
	tomtomKey string
	hereKey   string
	fetcher   upstream.Fetcher
	logger    *slog.Logger
	sample    int
}

// NewTraffic creates the traffic provider. tomtomKey must be non-empty;
// hereKey is optional and only widens construction-zone detection.
func NewTraffic(tomtomKey, hereKey string, deps Deps) *Traffic {
	deps = deps.normalize()
	return &Traffic{
		tomtomKey: tomtomKey,
		hereKey:   hereKey,
		fetcher:   deps.Fetcher,
		logger:    deps.Logger,
		sample:    deps.SamplePoints,
	}
}

// Name implements Provider.
func (t *Traffic) Name() string { return NameTraffic }

// Analyze implements Provider.
func (t *Traffic) Analyze(ctx context.Context, rc *model.RouteContext) []model.Result {
	return []model.Result{
		t.seasonalCongestion(ctx, rc),
		t.constructionZones(ctx, rc),
	}
}

// flowObservation is one congestion measurement at a sampled route point.
type flowObservation struct {
	congestionPct float64
}

// tomtomFlowResponse is the subset of the TomTom flow segment answer the
// provider consumes.
type tomtomFlowResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
	} `json:"flowSegmentData"`
}

// seasonalCongestion probes current flow conditions along the route and
// projects them across the traffic seasons.
func (t *Traffic) seasonalCongestion(ctx context.Context, rc *model.RouteContext) model.Result {
	const op = "seasonal_congestion"

	points := route.Sample(rc.Points(), t.sample)
	obs, err := probe(ctx, points, func(ctx context.Context, p model.Point) (flowObservation, error) {
		var resp tomtomFlowResponse
		params := urlValues(map[string]string{
			"key":   t.tomtomKey,
			"point": fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng),
			"unit":  "KMPH",
		})
		if err := t.fetcher.GetJSON(ctx, tomtomFlowURL, params, &resp); err != nil {
			return flowObservation{}, err
		}
		free := resp.FlowSegmentData.FreeFlowSpeed
		if free <= 0 {
			return flowObservation{}, fmt.Errorf("flow segment without free-flow speed")
		}
		pct := (1 - resp.FlowSegmentData.CurrentSpeed/free) * 100
		return flowObservation{congestionPct: math.Max(0, math.Min(100, pct))}, nil
	})
	if err != nil {
		t.logger.Debug("seasonal congestion probe failed", "error", err)
		return model.FailResult(op, failCause("traffic flow lookup failed", err))
	}

	var base float64
	for _, o := range obs {
		base += o.congestionPct
	}
	base /= float64(len(obs))

	patterns := make([]map[string]any, 0, len(seasons))
	worst := seasons[0]
	worstPct := 0.0
	for _, s := range seasons {
		pct := math.Min(100, base*s.multiplier)
		patterns = append(patterns, map[string]any{
			"period":             s.name,
			"congestion_level":   congestionLevel(pct),
			"average_congestion": math.Round(pct*10) / 10,
			"peak_hours":         s.peakHours,
		})
		if pct > worstPct {
			worstPct = pct
			worst = s
		}
	}

	recs := []string{
		fmt.Sprintf("Heaviest congestion expected during %s; plan departures outside %s.",
			worst.name, worst.peakHours[0]),
	}
	if worstPct >= 60 {
		recs = append(recs, "Build schedule buffers of at least 25% into delivery commitments for peak-season trips.")
	}

	return model.NewResult(op, map[string]any{
		"seasonal_patterns":        patterns,
		"baseline_congestion":      math.Round(base*10) / 10,
		"seasonal_recommendations": recs,
	})
}

// congestionLevel classifies a congestion percentage into a display band.
func congestionLevel(pct float64) string {
	switch {
	case pct >= 60:
		return "heavy"
	case pct >= 30:
		return "moderate"
	default:
		return "low"
	}
}

// hereIncidentsResponse is the subset of the HERE incidents answer the
// provider consumes.
type hereIncidentsResponse struct {
	Results []struct {
		IncidentDetails struct {
			Description struct {
				Value string `json:"value"`
			} `json:"description"`
			Criticality string `json:"criticality"`
			StartTime   string `json:"startTime"`
			EndTime     string `json:"endTime"`
			RoadClosed  bool   `json:"roadClosed"`
		} `json:"incidentDetails"`
	} `json:"results"`
}

// constructionZones collects active construction incidents around sampled
// route points. It requires the optional HERE credential; without it the
// operation fails while seasonal analysis proceeds normally.
func (t *Traffic) constructionZones(ctx context.Context, rc *model.RouteContext) model.Result {
	const op = "construction_zones"

	if t.hereKey == "" {
		return model.FailResult(op, "construction-zone detection requires the here credential")
	}

	points := route.Sample(rc.Points(), t.sample)
	zoneLists, err := probe(ctx, points, func(ctx context.Context, p model.Point) ([]map[string]any, error) {
		var resp hereIncidentsResponse
		params := urlValues(map[string]string{
			"apiKey":       t.hereKey,
			"in":           fmt.Sprintf("circle:%.5f,%.5f;r=5000", p.Lat, p.Lng),
			"incidentType": "construction",
		})
		if err := t.fetcher.GetJSON(ctx, hereIncidentsURL, params, &resp); err != nil {
			return nil, err
		}

		zones := make([]map[string]any, 0, len(resp.Results))
		for _, r := range resp.Results {
			d := r.IncidentDetails
			impact := "lane restrictions"
			if d.RoadClosed {
				impact = "road closed"
			}
			zones = append(zones, map[string]any{
				"description": d.Description.Value,
				"severity":    d.Criticality,
				"impact":      impact,
				"start_time":  d.StartTime,
				"end_time":    d.EndTime,
			})
		}
		return zones, nil
	})
	if err != nil {
		t.logger.Debug("construction zone probe failed", "error", err)
		return model.FailResult(op, failCause("construction incident lookup failed", err))
	}

	active := make([]map[string]any, 0)
	planned := make([]map[string]any, 0)
	now := time.Now()
	seen := make(map[string]bool)
	for _, zones := range zoneLists {
		for _, z := range zones {
			desc, _ := z["description"].(string)
			if desc == "" || seen[desc] {
				continue
			}
			seen[desc] = true
			start, _ := z["start_time"].(string)
			if ts, err := time.Parse(time.RFC3339, start); err == nil && ts.After(now) {
				planned = append(planned, z)
				continue
			}
			active = append(active, z)
		}
	}

	var recs []string
	if len(active) > 0 {
		recs = append(recs, fmt.Sprintf("%d active construction zones on this corridor; verify detour signage before dispatch.", len(active)))
	}
	if len(planned) > 0 {
		recs = append(recs, fmt.Sprintf("%d construction zones start later; recheck this corridor before scheduling recurring trips.", len(planned)))
	}

	return model.NewResult(op, map[string]any{
		"active_construction":          active,
		"planned_construction":         planned,
		"construction_recommendations": recs,
	})
}
