// Package route turns raw route input into an immutable RouteContext.
//
// It parses GPS coordinate CSV files with per-row validation, and provides
// the geometry used across the application: haversine distances, bearing
// deltas for sharp-turn detection, and route point sampling to bound
// upstream API fan-out.
package route
