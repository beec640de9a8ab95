package route

import (
	"math"
	"sort"

	"github.com/routelens/routelens/internal/model"
)

// earthRadiusKM is the mean Earth radius used for haversine distances.
const earthRadiusKM = 6371.0

// maxSharpTurns caps how many turns are kept, most dangerous first.
const maxSharpTurns = 50

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// TotalDistanceKM returns the cumulative distance along the point sequence.
func TotalDistanceKM(points []model.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKM(points[i-1], points[i])
	}
	return total
}

// bearing returns the initial bearing from a to b in degrees [0, 360).
func bearing(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// turnAngle returns the deflection angle at p2 for the path p1->p2->p3,
// in degrees [0, 180]. 0 is straight ahead, 180 is a full reversal.
func turnAngle(p1, p2, p3 model.Point) float64 {
	diff := math.Abs(bearing(p2, p3) - bearing(p1, p2))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// SharpTurns detects turns whose deflection angle meets the threshold.
// The input is downsampled to roughly 100 apex candidates so dense GPS
// traces don't flag every jitter as a turn. Results are sorted sharpest
// first and capped, matching how route danger summaries are consumed.
func SharpTurns(points []model.Point, angleThreshold float64) []model.Turn {
	if len(points) < 3 {
		return nil
	}

	step := len(points) / 100
	if step < 1 {
		step = 1
	}

	sampled := make([]model.Point, 0, len(points)/step+1)
	indices := make([]int, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		sampled = append(sampled, points[i])
		indices = append(indices, i)
	}

	turns := make([]model.Turn, 0)
	for i := 1; i < len(sampled)-1; i++ {
		angle := turnAngle(sampled[i-1], sampled[i], sampled[i+1])
		if angle >= angleThreshold {
			turns = append(turns, model.Turn{
				Index: indices[i],
				Point: sampled[i],
				Angle: math.Round(angle*100) / 100,
			})
		}
	}

	sort.Slice(turns, func(i, j int) bool { return turns[i].Angle > turns[j].Angle })
	if len(turns) > maxSharpTurns {
		turns = turns[:maxSharpTurns]
	}
	return turns
}

// Sample returns at most max points evenly spaced along the route,
// always including the first point. Providers use this to bound upstream
// API fan-out on long traces.
func Sample(points []model.Point, max int) []model.Point {
	if max <= 0 || len(points) <= max {
		out := make([]model.Point, len(points))
		copy(out, points)
		return out
	}

	step := len(points) / max
	out := make([]model.Point, 0, max)
	for i := 0; i < len(points) && len(out) < max; i += step {
		out = append(out, points[i])
	}
	return out
}
