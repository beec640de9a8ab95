package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/routelens/routelens/internal/model"
)

// Fleet analyzes vehicle performance, driver safety exposure, and
// regulatory compliance for the configured vehicle. It is credential-free
// and computes everything from the route context, so it is always
// eligible and its operations fail only on degenerate input.
type Fleet struct {
	logger *slog.Logger
}

// NewFleet creates the fleet provider.
func NewFleet(deps Deps) *Fleet {
	deps = deps.normalize()
	return &Fleet{logger: deps.Logger}
}

// Name implements Provider.
func (f *Fleet) Name() string { return NameFleet }

// Analyze implements Provider.
func (f *Fleet) Analyze(_ context.Context, rc *model.RouteContext) []model.Result {
	return []model.Result{
		f.vehiclePerformance(rc),
		f.driverBehavior(rc),
		f.compliance(rc),
	}
}

// baseConsumption returns the baseline fuel consumption for a vehicle
// class in liters per 100 km.
func baseConsumption(class model.VehicleClass) float64 {
	switch class {
	case model.VehicleClassHeavyGoods:
		return 32.0
	case model.VehicleClassBus:
		return 28.0
	case model.VehicleClassMediumGoods:
		return 18.0
	default:
		return 7.5
	}
}

// vehiclePerformance estimates fuel consumption for this vehicle on this
// route, adjusted for load weight and route difficulty.
func (f *Fleet) vehiclePerformance(rc *model.RouteContext) model.Result {
	const op = "vehicle_performance"

	distance := rc.DistanceKM()
	if distance <= 0 {
		return model.FailResult(op, "route has no measurable distance")
	}

	vehicle := rc.Vehicle()
	base := baseConsumption(vehicle.Class)

	// Every tonne above a class-typical 5t baseline costs roughly 2%
	// extra fuel.
	weightFactor := 1.0
	if vehicle.WeightKG > 5000 {
		weightFactor = 1 + (vehicle.WeightKG-5000)/1000*0.02
	}

	// Sharp turns force braking and re-acceleration; each one along the
	// route nudges consumption up, capped at +20%.
	difficultyFactor := math.Min(1.2, 1+float64(len(rc.Turns()))*0.005)

	adjusted := base * weightFactor * difficultyFactor
	estimated := adjusted * distance / 100

	rating := "good"
	switch {
	case adjusted > base*1.25:
		rating = "poor"
	case adjusted > base*1.1:
		rating = "fair"
	}

	recs := []string{"Maintain steady cruising speed on open stretches to hold the consumption baseline."}
	if difficultyFactor > 1.1 {
		recs = append(recs, "Brief drivers on the turn-dense stretches; anticipatory braking saves fuel there.")
	}
	if weightFactor > 1.15 {
		recs = append(recs, "Load is well above the class baseline; verify the load sheet against permits.")
	}

	return model.NewResult(op, map[string]any{
		"fuel_efficiency_analysis": map[string]any{
			"base_consumption_rate":     base,
			"adjusted_consumption_rate": math.Round(adjusted*100) / 100,
			"estimated_fuel_liters":     math.Round(estimated*10) / 10,
			"weight_adjustment_factor":  math.Round(weightFactor*1000) / 1000,
			"route_difficulty_factor":   math.Round(difficultyFactor*1000) / 1000,
			"fuel_efficiency_rating":    rating,
		},
		"efficiency_recommendations": recs,
	})
}

// driverBehavior scores the safety exposure the route imposes on a
// driver, dominated by sharp-turn density.
func (f *Fleet) driverBehavior(rc *model.RouteContext) model.Result {
	const op = "driver_behavior"

	distance := rc.DistanceKM()
	if distance <= 0 {
		return model.FailResult(op, "route has no measurable distance")
	}

	turns := rc.Turns()
	turnsPer100 := float64(len(turns)) / distance * 100

	turnScore := math.Max(0, 100-turnsPer100*4)
	fatigueScore := math.Max(0, 100-rc.DurationMinutes()/60*8)
	overall := math.Round((turnScore*0.6 + fatigueScore*0.4))

	rating := "excellent"
	switch {
	case overall < 50:
		rating = "high risk"
	case overall < 70:
		rating = "needs attention"
	case overall < 85:
		rating = "good"
	}

	factors := make([]string, 0, 3)
	if turnsPer100 > 5 {
		factors = append(factors, fmt.Sprintf("%d sharp turns on this route demand reduced cornering speeds", len(turns)))
	}
	if rc.DurationMinutes() > 8*60 {
		factors = append(factors, "trip exceeds 8 driving hours; a relief driver or overnight halt is required")
	}
	if len(turns) > 0 && turns[0].Angle >= 90 {
		factors = append(factors, fmt.Sprintf("sharpest turn deflects %.0f degrees; treat as a blind corner", turns[0].Angle))
	}

	return model.NewResult(op, map[string]any{
		"safety_scores": map[string]any{
			"overall_safety_score": overall,
			"turn_safety_score":    math.Round(turnScore),
			"fatigue_score":        math.Round(fatigueScore),
			"safety_rating":        rating,
		},
		"critical_safety_factors": factors,
	})
}

// complianceItem is one regulatory requirement applicable to the trip.
type complianceItem struct {
	requirement string
	status      string
	action      string
}

// compliance lists the regulatory obligations this vehicle class carries
// on an interstate route.
func (f *Fleet) compliance(rc *model.RouteContext) model.Result {
	const op = "compliance"

	vehicle := rc.Vehicle()
	items := []complianceItem{
		{
			requirement: "Vehicle registration and fitness certificate",
			status:      "verify before dispatch",
			action:      "Carry originals; interstate checkpoints require physical documents.",
		},
		{
			requirement: "Valid insurance and PUC certificate",
			status:      "verify before dispatch",
			action:      "Confirm validity covers the full trip window.",
		},
	}

	if vehicle.Class.HeavyVehicle() {
		items = append(items,
			complianceItem{
				requirement: "National/state goods permit",
				status:      "required",
				action:      "Verify the permit covers every state the route crosses.",
			},
			complianceItem{
				requirement: "AIS-140 GPS tracking device",
				status:      "required",
				action:      "Confirm the tracker is active and registered with the state backend.",
			},
		)
	}
	if vehicle.WeightKG > 12000 {
		items = append(items, complianceItem{
			requirement: "Axle-load certification",
			status:      "required",
			action:      "Weighbridge slip must accompany the load sheet.",
		})
	}
	if rc.DurationMinutes() > 8*60 {
		items = append(items, complianceItem{
			requirement: "Driving-hours limit",
			status:      "attention",
			action:      "Plan a mandatory rest halt; log books must show breaks.",
		})
	}

	rows := make([]map[string]any, 0, len(items))
	actions := make([]string, 0, len(items))
	required := 0
	for _, it := range items {
		if it.status == "required" {
			required++
		}
		if it.status != "verify before dispatch" {
			actions = append(actions, it.action)
		}
		rows = append(rows, map[string]any{
			"requirement": it.requirement,
			"status":      it.status,
			"action":      it.action,
		})
	}

	score := 100.0
	if len(items) > 0 {
		score = math.Round(float64(len(items)-required) / float64(len(items)) * 100)
	}

	return model.NewResult(op, map[string]any{
		"compliance_items":         rows,
		"action_items":             actions,
		"compliance_score":         score,
		"mandatory_item_count":     required,
		"compliance_overall_level": complianceLevel(required),
	})
}

// complianceLevel classifies how demanding the trip's obligations are.
func complianceLevel(mandatory int) string {
	switch {
	case mandatory >= 3:
		return "heavily regulated"
	case mandatory >= 1:
		return "regulated"
	default:
		return "standard"
	}
}
