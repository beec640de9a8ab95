package model

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	// Lat is the latitude in the range [-90, 90].
	Lat float64 `json:"lat"`

	// Lng is the longitude in the range [-180, 180].
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Turn is a sharp turn detected along the route.
type Turn struct {
	// Index is the position of the turn apex in the route point list.
	Index int `json:"index"`

	// Point is the location of the turn apex.
	Point Point `json:"point"`

	// Angle is the deflection angle in degrees. Larger is sharper.
	Angle float64 `json:"angle"`
}

// VehicleClass categorizes the vehicle the route is analyzed for.
// The class drives the heavy-vehicle gating rule: heavy-vehicle-specific
// sections are requested only for goods vehicles and buses.
type VehicleClass string

const (
	// VehicleClassCar is a standard passenger car.
	VehicleClassCar VehicleClass = "car"

	// VehicleClassMediumGoods is a medium goods vehicle (3.5-12 tonnes).
	VehicleClassMediumGoods VehicleClass = "medium_goods_vehicle"

	// VehicleClassHeavyGoods is a heavy goods vehicle (over 12 tonnes).
	VehicleClassHeavyGoods VehicleClass = "heavy_goods_vehicle"

	// VehicleClassBus is a passenger bus or coach.
	VehicleClassBus VehicleClass = "bus"
)

// HeavyVehicle reports whether the class is subject to heavy-vehicle
// analysis. The set is fixed and provider-independent; it is evaluated once
// per run by the orchestrator, not by any provider.
func (c VehicleClass) HeavyVehicle() bool {
	switch c {
	case VehicleClassHeavyGoods, VehicleClassMediumGoods, VehicleClassBus:
		return true
	default:
		return false
	}
}

// Valid reports whether the class is one of the known vehicle classes.
func (c VehicleClass) Valid() bool {
	switch c {
	case VehicleClassCar, VehicleClassMediumGoods, VehicleClassHeavyGoods, VehicleClassBus:
		return true
	default:
		return false
	}
}

// VehicleDescriptor describes the vehicle for fleet and heavy-vehicle
// analysis. The zero value is treated as an unspecified car.
type VehicleDescriptor struct {
	// Class is the vehicle class used for gating and fleet analysis.
	Class VehicleClass `json:"class"`

	// WeightKG is the gross vehicle weight in kilograms.
	WeightKG float64 `json:"weight_kg"`

	// HeightM is the vehicle height in meters, used for clearance checks.
	HeightM float64 `json:"height_m"`

	// AxleCount is the number of axles, used for toll and compliance checks.
	AxleCount int `json:"axle_count"`
}

// RouteContext is the immutable input shared read-only by all providers.
//
// Design decision: Fields are unexported and the constructor copies all
// slice inputs. Providers run concurrently over the same RouteContext, so
// immutability after construction is what makes the run lock-free; accessor
// methods return defensive copies of slices to preserve that guarantee.
type RouteContext struct {
	points      []Point
	turns       []Turn
	fromAddress string
	toAddress   string
	distanceKM  float64
	durationMin float64
	vehicle     VehicleDescriptor
}

// NewRouteContext constructs an immutable RouteContext. The points and turns
// slices are copied; callers may reuse their inputs freely afterwards.
func NewRouteContext(points []Point, turns []Turn, from, to string, distanceKM, durationMin float64, vehicle VehicleDescriptor) *RouteContext {
	rc := &RouteContext{
		points:      make([]Point, len(points)),
		turns:       make([]Turn, len(turns)),
		fromAddress: from,
		toAddress:   to,
		distanceKM:  distanceKM,
		durationMin: durationMin,
		vehicle:     vehicle,
	}
	copy(rc.points, points)
	copy(rc.turns, turns)
	return rc
}

// Points returns a copy of the route coordinates in travel order.
func (rc *RouteContext) Points() []Point {
	out := make([]Point, len(rc.points))
	copy(out, rc.points)
	return out
}

// PointCount returns the number of route coordinates without copying.
func (rc *RouteContext) PointCount() int {
	return len(rc.points)
}

// Start returns the first route point, or a zero Point for an empty route.
func (rc *RouteContext) Start() Point {
	if len(rc.points) == 0 {
		return Point{}
	}
	return rc.points[0]
}

// End returns the last route point, or a zero Point for an empty route.
func (rc *RouteContext) End() Point {
	if len(rc.points) == 0 {
		return Point{}
	}
	return rc.points[len(rc.points)-1]
}

// Turns returns a copy of the detected sharp turns in route order.
func (rc *RouteContext) Turns() []Turn {
	out := make([]Turn, len(rc.turns))
	copy(out, rc.turns)
	return out
}

// FromAddress returns the human-readable origin address.
func (rc *RouteContext) FromAddress() string { return rc.fromAddress }

// ToAddress returns the human-readable destination address.
func (rc *RouteContext) ToAddress() string { return rc.toAddress }

// DistanceKM returns the estimated route length in kilometers.
func (rc *RouteContext) DistanceKM() float64 { return rc.distanceKM }

// DurationMinutes returns the estimated travel time in minutes.
func (rc *RouteContext) DurationMinutes() float64 { return rc.durationMin }

// Vehicle returns the vehicle descriptor for this run.
func (rc *RouteContext) Vehicle() VehicleDescriptor { return rc.vehicle }
