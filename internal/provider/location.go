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

// googleGeocodeURL is the reverse-geocoding endpoint used to classify
// route surroundings.
const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Location analyzes the demographic and commercial character of the
// corridor the route crosses, from reverse-geocoded surroundings of
// sampled route points.
type Location struct {
	googleKey string
	fetcher   upstream.Fetcher
	logger    *slog.Logger
	sample    int
}

// NewLocation creates the location provider. googleKey must be non-empty.
func NewLocation(googleKey string, deps Deps) *Location {
	deps = deps.normalize()
	return &Location{
		googleKey: googleKey,
		fetcher:   deps.Fetcher,
		logger:    deps.Logger,
		sample:    deps.SamplePoints,
	}
}

// Name implements Provider.
func (l *Location) Name() string { return NameLocation }

// Analyze implements Provider.
func (l *Location) Analyze(ctx context.Context, rc *model.RouteContext) []model.Result {
	zones, err := l.classify(ctx, rc)
	return []model.Result{
		l.demographics(zones, err),
		l.businessOpportunities(zones, err),
	}
}

// localityZone is the classified surrounding of one sampled point.
type localityZone struct {
	name  string
	urban bool
}

// geocodeResponse is the subset of the reverse-geocoding answer consumed
// for locality classification.
type geocodeResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Types []string `json:"types"`
	} `json:"results"`
	Status string `json:"status"`
}

// classify reverse-geocodes the sampled route points once; both
// operations interpret the shared classification.
func (l *Location) classify(ctx context.Context, rc *model.RouteContext) ([]localityZone, error) {
	points := route.Sample(rc.Points(), l.sample)
	idx := 0
	return probe(ctx, points, func(ctx context.Context, p model.Point) (localityZone, error) {
		idx++
		var resp geocodeResponse
		params := urlValues(map[string]string{
			"latlng": fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng),
			"key":    l.googleKey,
		})
		if err := l.fetcher.GetJSON(ctx, googleGeocodeURL, params, &resp); err != nil {
			return localityZone{}, err
		}
		if resp.Status != "" && resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
			return localityZone{}, fmt.Errorf("geocode status %s", resp.Status)
		}

		zone := localityZone{name: fmt.Sprintf("corridor segment %d", idx)}
		for _, r := range resp.Results {
			for _, c := range r.AddressComponents {
				for _, t := range c.Types {
					if t == "locality" {
						zone.name = c.LongName
						zone.urban = true
					}
				}
			}
			if zone.urban {
				break
			}
		}
		return zone, nil
	})
}

// demographics summarizes population density and economic character of
// the corridor.
func (l *Location) demographics(zones []localityZone, classifyErr error) model.Result {
	const op = "demographics"

	if classifyErr != nil {
		l.logger.Debug("locality classification failed", "error", classifyErr)
		return model.FailResult(op, failCause("locality classification failed", classifyErr))
	}

	urban := 0
	for _, z := range zones {
		if z.urban {
			urban++
		}
	}
	urbanPct := math.Round(float64(urban) / float64(len(zones)) * 100)

	character := "predominantly rural"
	density := "low"
	economic := "developing"
	switch {
	case urbanPct >= 70:
		character = "predominantly urban"
		density = "high"
		economic = "developed"
	case urbanPct >= 40:
		character = "mixed urban-rural"
		density = "medium"
		economic = "mixed"
	}

	return model.NewResult(op, map[string]any{
		"population_density": map[string]any{
			"predominant_density_type": density,
			"urban_percentage":         urbanPct,
			"route_character":          character,
		},
		"economic_indicators": map[string]any{
			"predominant_economic_level": economic,
			"development_index":          math.Round(urbanPct*0.8 + 20),
		},
	})
}

// businessOpportunities maps the corridor's commercial centers and rates
// its attractiveness for logistics investment.
func (l *Location) businessOpportunities(zones []localityZone, classifyErr error) model.Result {
	const op = "business_opportunities"

	if classifyErr != nil {
		return model.FailResult(op, failCause("locality classification failed", classifyErr))
	}

	centers := make([]map[string]any, 0)
	seen := make(map[string]bool)
	for _, z := range zones {
		if !z.urban || seen[z.name] {
			continue
		}
		seen[z.name] = true
		centers = append(centers, map[string]any{
			"name": z.name,
			"type": "commercial center",
		})
	}

	grade := "C"
	risk := "elevated"
	payback := "5-7 years"
	switch {
	case len(centers) >= 4:
		grade = "A"
		risk = "low"
		payback = "2-3 years"
	case len(centers) >= 2:
		grade = "B"
		risk = "moderate"
		payback = "3-5 years"
	}

	opportunities := []string{"Highway-side warehousing near the densest corridor segment"}
	if len(centers) >= 2 {
		opportunities = append(opportunities, "Cross-docking between the corridor's commercial centers")
	}

	return model.NewResult(op, map[string]any{
		"commercial_centers":  centers,
		"market_opportunities": opportunities,
		"investment_attractiveness": map[string]any{
			"investment_grade":        grade,
			"risk_level":              risk,
			"payback_period_estimate": payback,
		},
	})
}
