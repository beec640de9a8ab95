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

// Upstream endpoints for the weather provider.
const (
	openWeatherURL    = "https://api.openweathermap.org/data/2.5/weather"
	visualCrossingURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"
)

// extremeHeatThresholdC marks a sampled zone as a heat hotspot.
const extremeHeatThresholdC = 35.0

// Weather analyzes seasonal weather hazards along the route: extreme
// heat exposure and monsoon flooding risk. OpenWeather observations are
// the primary source; Visual Crossing additionally refines precipitation
// estimates when its credential is configured.
type Weather struct {
	openWeatherKey    string
	visualCrossingKey string
	fetcher           upstream.Fetcher
	logger            *slog.Logger
	sample            int
}

// NewWeather creates the weather provider. openWeatherKey must be
// non-empty; visualCrossingKey is optional.
func NewWeather(openWeatherKey, visualCrossingKey string, deps Deps) *Weather {
	deps = deps.normalize()
	return &Weather{
		openWeatherKey:    openWeatherKey,
		visualCrossingKey: visualCrossingKey,
		fetcher:           deps.Fetcher,
		logger:            deps.Logger,
		sample:            deps.SamplePoints,
	}
}

// Name implements Provider.
func (w *Weather) Name() string { return NameWeather }

// Analyze implements Provider.
func (w *Weather) Analyze(ctx context.Context, rc *model.RouteContext) []model.Result {
	obs, err := w.observe(ctx, rc)
	return []model.Result{
		w.summerRisks(obs, err),
		w.monsoonRisks(ctx, rc, obs, err),
	}
}

// weatherObservation is one conditions measurement at a sampled point.
type weatherObservation struct {
	zone       string
	temp       float64
	humidity   float64
	rainMM     float64
	conditions string
}

// openWeatherResponse is the subset of the OpenWeather answer consumed.
type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// observe probes current conditions once per sampled point. Both
// operations share the observations so a route is probed once, not
// twice.
func (w *Weather) observe(ctx context.Context, rc *model.RouteContext) ([]weatherObservation, error) {
	points := route.Sample(rc.Points(), w.sample)
	idx := 0
	return probe(ctx, points, func(ctx context.Context, p model.Point) (weatherObservation, error) {
		idx++
		var resp openWeatherResponse
		params := urlValues(map[string]string{
			"lat":   fmt.Sprintf("%.5f", p.Lat),
			"lon":   fmt.Sprintf("%.5f", p.Lng),
			"appid": w.openWeatherKey,
			"units": "metric",
		})
		if err := w.fetcher.GetJSON(ctx, openWeatherURL, params, &resp); err != nil {
			return weatherObservation{}, err
		}

		zone := resp.Name
		if zone == "" {
			zone = fmt.Sprintf("segment %d", idx)
		}
		conditions := "clear"
		if len(resp.Weather) > 0 {
			conditions = resp.Weather[0].Main
		}
		return weatherObservation{
			zone:       zone,
			temp:       resp.Main.Temp,
			humidity:   resp.Main.Humidity,
			rainMM:     resp.Rain.OneHour,
			conditions: conditions,
		}, nil
	})
}

// summerRisks maps observed temperatures to extreme-heat hotspots.
func (w *Weather) summerRisks(obs []weatherObservation, obsErr error) model.Result {
	const op = "summer_risks"

	if obsErr != nil {
		w.logger.Debug("weather observation failed", "error", obsErr)
		return model.FailResult(op, failCause("weather observation failed", obsErr))
	}

	var total float64
	hotspots := make([]map[string]any, 0)
	for _, o := range obs {
		total += o.temp
		if o.temp < extremeHeatThresholdC {
			continue
		}
		risk := "high"
		if o.temp >= extremeHeatThresholdC+5 {
			risk = "severe"
		}
		hotspots = append(hotspots, map[string]any{
			"zone":            o.zone,
			"max_temperature": math.Round(o.temp*10) / 10,
			"risk_level":      risk,
		})
	}

	var recs []string
	if len(hotspots) > 0 {
		recs = append(recs,
			"Schedule transit through heat hotspots before 11:00 or after 16:00.",
			"Check tyre pressure and coolant levels before departure on extreme heat days.")
	}

	return model.NewResult(op, map[string]any{
		"temperature_hotspots": hotspots,
		"average_temperature":  math.Round(total/float64(len(obs))*10) / 10,
		"heat_recommendations": recs,
	})
}

// visualCrossingResponse is the subset of the Visual Crossing timeline
// answer consumed for precipitation refinement.
type visualCrossingResponse struct {
	Days []struct {
		Precip float64 `json:"precip"`
	} `json:"days"`
}

// monsoonRisks maps humidity and rainfall observations to flood-prone
// zones. When the Visual Crossing credential is configured the rainfall
// estimate is refined with its daily precipitation forecast; a failed
// refinement degrades silently to the observed values.
func (w *Weather) monsoonRisks(ctx context.Context, rc *model.RouteContext, obs []weatherObservation, obsErr error) model.Result {
	const op = "monsoon_risks"

	if obsErr != nil {
		return model.FailResult(op, failCause("weather observation failed", obsErr))
	}

	forecastPrecip := 0.0
	if w.visualCrossingKey != "" {
		if p, err := w.forecastPrecip(ctx, rc.Start()); err != nil {
			w.logger.Debug("precipitation refinement failed", "error", err)
		} else {
			forecastPrecip = p
		}
	}

	// Turn-dense routes run through hilly terrain, where saturated
	// slopes fail. Heavy rain on such a route marks landslide zones.
	hilly := false
	if d := rc.DistanceKM(); d > 0 {
		hilly = float64(len(rc.Turns()))/d*100 >= 5
	}

	floodProne := make([]map[string]any, 0)
	landslides := make([]map[string]any, 0)
	for _, o := range obs {
		rain := math.Max(o.rainMM, forecastPrecip)
		risk := monsoonRiskLevel(o.humidity, rain)
		if risk == "low" {
			continue
		}
		floodProne = append(floodProne, map[string]any{
			"zone":          o.zone,
			"risk_level":    risk,
			"humidity":      o.humidity,
			"expected_rain": math.Round(rain*10) / 10,
		})
		if hilly && rain >= 10 {
			slideRisk := "high"
			if rain >= 20 {
				slideRisk = "extreme"
			}
			landslides = append(landslides, map[string]any{
				"zone":          o.zone,
				"risk_level":    slideRisk,
				"expected_rain": math.Round(rain*10) / 10,
			})
		}
	}

	var recs []string
	if len(floodProne) > 0 {
		recs = append(recs,
			"Identify elevated alternate roads before entering flood-prone zones.",
			"Avoid night driving through waterlogging-prone stretches during active monsoon.")
	}
	if len(landslides) > 0 {
		recs = append(recs, "Landslide risk on hilly stretches; transit them during daylight only.")
	}

	return model.NewResult(op, map[string]any{
		"flood_prone_areas":       floodProne,
		"landslide_zones":         landslides,
		"monsoon_recommendations": recs,
	})
}

// forecastPrecip returns the forecast daily precipitation at the route
// start, in millimeters.
func (w *Weather) forecastPrecip(ctx context.Context, p model.Point) (float64, error) {
	var resp visualCrossingResponse
	u := fmt.Sprintf("%s/%.5f,%.5f", visualCrossingURL, p.Lat, p.Lng)
	params := urlValues(map[string]string{
		"key":         w.visualCrossingKey,
		"unitGroup":   "metric",
		"include":     "days",
		"contentType": "json",
	})
	if err := w.fetcher.GetJSON(ctx, u, params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Days) == 0 {
		return 0, nil
	}
	return resp.Days[0].Precip, nil
}

// monsoonRiskLevel classifies flooding risk from humidity and rainfall.
func monsoonRiskLevel(humidity, rainMM float64) string {
	switch {
	case rainMM >= 10 || humidity >= 90:
		return "high"
	case rainMM > 0 || humidity >= 75:
		return "moderate"
	default:
		return "low"
	}
}
