package compose

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/provider"
)

// titleCaser renders section and column titles.
var titleCaser = cases.Title(language.English)

// operationSpec maps one operation to its section. A nil title falls
// back to the title-cased operation name.
type operationSpec struct {
	operation string
	title     string
	build     func(model.Result) []model.Block
}

// tables holds the fixed per-provider translation tables. Order within a
// table is the intra-provider section order of the report.
var tables = map[string][]operationSpec{
	provider.NameTraffic: {
		{operation: "seasonal_congestion", build: seasonalCongestionBlocks},
		{operation: "construction_zones", build: constructionZoneBlocks},
	},
	provider.NameWeather: {
		{operation: "summer_risks", title: "Summer Heat Risks", build: summerRiskBlocks},
		{operation: "monsoon_risks", build: monsoonRiskBlocks},
	},
	provider.NameMaps: {
		{operation: "route_enhancements", title: "Route Overview", build: routeEnhancementBlocks},
		{operation: "heavy_vehicle", title: "Heavy Vehicle Suitability", build: heavyVehicleBlocks},
	},
	provider.NameRealtime: {
		{operation: "live_traffic", title: "Live Traffic Conditions", build: liveTrafficBlocks},
		{operation: "fuel_prices", title: "Fuel Planning", build: fuelPriceBlocks},
	},
	provider.NameFleet: {
		{operation: "vehicle_performance", build: vehiclePerformanceBlocks},
		{operation: "driver_behavior", title: "Driver Safety", build: driverBehaviorBlocks},
		{operation: "compliance", title: "Regulatory Compliance", build: complianceBlocks},
	},
	provider.NameEmergency: {
		{operation: "response_plan", title: "Emergency Response Plan", build: responsePlanBlocks},
		{operation: "communication_plan", build: communicationPlanBlocks},
	},
	provider.NameLocation: {
		{operation: "demographics", title: "Corridor Demographics", build: demographicsBlocks},
		{operation: "business_opportunities", build: businessOpportunityBlocks},
	},
}

// Sections composes the sections for one provider's results. Results are
// matched to the provider's translation table by operation name; table
// order, not result order, decides section order. Failed results and
// results whose blocks all come up empty contribute nothing.
func Sections(providerName string, results []model.Result) []model.Section {
	specs, ok := tables[providerName]
	if !ok {
		return nil
	}

	byOp := make(map[string]model.Result, len(results))
	for _, r := range results {
		byOp[r.Operation] = r
	}

	sections := make([]model.Section, 0, len(specs))
	for _, spec := range specs {
		r, ok := byOp[spec.operation]
		if !ok || r.Failed() {
			continue
		}
		blocks := spec.build(r)
		if len(blocks) == 0 {
			continue
		}
		title := spec.title
		if title == "" {
			title = titleCaser.String(strings.ReplaceAll(spec.operation, "_", " "))
		}
		sections = append(sections, model.Section{
			Title:    title,
			Category: providerName,
			Blocks:   blocks,
		})
	}
	return sections
}

// formatValue renders a payload value for display.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// tableBlock builds a table from a list-of-mappings payload field. keys
// selects and orders the columns; headers are title-cased from the keys.
// An empty list yields no block.
func tableBlock(caption string, rows []map[string]any, keys ...string) []model.Block {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, 0, len(keys))
	for _, k := range keys {
		header = append(header, titleCaser.String(strings.ReplaceAll(k, "_", " ")))
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(keys))
		for _, k := range keys {
			cells = append(cells, formatValue(row[k]))
		}
		out = append(out, cells)
	}
	return []model.Block{model.Table{Caption: caption, Header: header, Rows: out}}
}

// listBlock builds a bullet list from a string-slice payload field.
// An empty list yields no block.
func listBlock(caption string, items []string) []model.Block {
	if len(items) == 0 {
		return nil
	}
	return []model.Block{model.List{Caption: caption, Items: items}}
}

// scalarBlocks builds labeled scalars from a nested mapping, in the
// given key order. Absent keys are skipped; an entirely absent mapping
// yields no blocks.
func scalarBlocks(m map[string]any, keys ...string) []model.Block {
	if len(m) == 0 {
		return nil
	}
	out := make([]model.Block, 0, len(keys))
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		s := formatValue(v)
		if s == "" {
			continue
		}
		out = append(out, model.Scalar{
			Label: titleCaser.String(strings.ReplaceAll(k, "_", " ")),
			Value: s,
		})
	}
	return out
}

func seasonalCongestionBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Seasonal patterns",
		r.ListField("seasonal_patterns"),
		"period", "congestion_level", "average_congestion", "peak_hours")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("seasonal_recommendations"))...)
	return blocks
}

func constructionZoneBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Active construction",
		r.ListField("active_construction"),
		"description", "severity", "impact", "end_time")...)
	blocks = append(blocks, tableBlock("Planned construction",
		r.ListField("planned_construction"),
		"description", "severity", "start_time")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("construction_recommendations"))...)
	return blocks
}

func summerRiskBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Temperature hotspots",
		r.ListField("temperature_hotspots"),
		"zone", "max_temperature", "risk_level")...)
	blocks = append(blocks, scalarBlocks(r.Data, "average_temperature")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("heat_recommendations"))...)
	return blocks
}

func monsoonRiskBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Flood-prone areas",
		r.ListField("flood_prone_areas"),
		"zone", "risk_level", "humidity", "expected_rain")...)
	blocks = append(blocks, tableBlock("Landslide zones",
		r.ListField("landslide_zones"),
		"zone", "risk_level", "expected_rain")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("monsoon_recommendations"))...)
	return blocks
}

func routeEnhancementBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, scalarBlocks(r.MapField("route_overview"),
		"primary_corridor", "highway_percentage", "average_speed_kmph")...)
	blocks = append(blocks, listBlock("Major highways", r.StringsField("major_highways"))...)
	blocks = append(blocks, listBlock("Road warnings", r.StringsField("road_warnings"))...)
	return blocks
}

func heavyVehicleBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, scalarBlocks(r.Data, "overall_suitability_score")...)
	blocks = append(blocks, scalarBlocks(r.MapField("road_infrastructure"),
		"highway_percentage", "primary_corridor", "major_highways")...)
	traffic := r.MapField("traffic_analysis")
	blocks = append(blocks, scalarBlocks(traffic, "average_speed_kmph")...)
	if restrictions, ok := traffic["heavy_vehicle_restrictions"].([]string); ok {
		blocks = append(blocks, listBlock("Restrictions", restrictions)...)
	}
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("route_recommendations"))...)
	return blocks
}

func liveTrafficBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Current conditions",
		r.ListField("current_conditions"),
		"segment", "travel_time_index", "delay_minutes", "status")...)
	blocks = append(blocks, tableBlock("Incidents",
		r.ListField("traffic_incidents"),
		"description", "severity", "estimated_delay")...)
	blocks = append(blocks, scalarBlocks(r.Data, "last_updated")...)
	return blocks
}

func fuelPriceBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Fuel stops",
		r.ListField("fuel_stations"),
		"location_km", "diesel_price", "petrol_price", "amenity_level")...)
	blocks = append(blocks, scalarBlocks(r.MapField("price_analysis"),
		"average_diesel_price", "price_range", "market_trend")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("fuel_recommendations"))...)
	return blocks
}

func vehiclePerformanceBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, scalarBlocks(r.MapField("fuel_efficiency_analysis"),
		"base_consumption_rate", "adjusted_consumption_rate", "estimated_fuel_liters",
		"weight_adjustment_factor", "route_difficulty_factor", "fuel_efficiency_rating")...)
	blocks = append(blocks, listBlock("Recommendations", r.StringsField("efficiency_recommendations"))...)
	return blocks
}

func driverBehaviorBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, scalarBlocks(r.MapField("safety_scores"),
		"overall_safety_score", "turn_safety_score", "fatigue_score", "safety_rating")...)
	blocks = append(blocks, listBlock("Critical safety factors", r.StringsField("critical_safety_factors"))...)
	return blocks
}

func complianceBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Requirements",
		r.ListField("compliance_items"),
		"requirement", "status", "action")...)
	blocks = append(blocks, listBlock("Action items", r.StringsField("action_items"))...)
	blocks = append(blocks, scalarBlocks(r.Data,
		"compliance_score", "mandatory_item_count", "compliance_overall_level")...)
	return blocks
}

func responsePlanBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Emergency facilities",
		r.ListField("emergency_facilities"),
		"type", "name", "near", "zone")...)
	coverage := r.MapField("coverage_analysis")
	blocks = append(blocks, scalarBlocks(coverage, "coverage_score", "overall_coverage")...)
	if gaps, ok := coverage["coverage_gaps"].([]string); ok {
		blocks = append(blocks, listBlock("Coverage gaps", gaps)...)
	}
	blocks = append(blocks, tableBlock("Helplines",
		r.ListField("helplines"),
		"service", "number")...)
	return blocks
}

func communicationPlanBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, listBlock("Primary channels", r.StringsField("primary_channels"))...)
	blocks = append(blocks, listBlock("Backup methods", r.StringsField("backup_methods"))...)
	blocks = append(blocks, tableBlock("Likely dead zones",
		r.ListField("communication_dead_zones"),
		"zone", "length_km", "risk")...)
	blocks = append(blocks, tableBlock("Escalation hierarchy",
		r.ListField("emergency_contact_hierarchy"),
		"level", "contact_type", "response_time", "purpose")...)
	return blocks
}

func demographicsBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, scalarBlocks(r.MapField("population_density"),
		"predominant_density_type", "urban_percentage", "route_character")...)
	blocks = append(blocks, scalarBlocks(r.MapField("economic_indicators"),
		"predominant_economic_level", "development_index")...)
	return blocks
}

func businessOpportunityBlocks(r model.Result) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, tableBlock("Commercial centers",
		r.ListField("commercial_centers"),
		"name", "type")...)
	blocks = append(blocks, listBlock("Market opportunities", r.StringsField("market_opportunities"))...)
	blocks = append(blocks, scalarBlocks(r.MapField("investment_attractiveness"),
		"investment_grade", "risk_level", "payback_period_estimate")...)
	return blocks
}
