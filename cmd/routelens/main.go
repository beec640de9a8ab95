// Package main provides the entry point for the RouteLens CLI.
//
// RouteLens is a route-intelligence tool that enriches a route with
// traffic, weather, fleet, emergency, and location insight gathered
// from multiple commercial providers.
//
// Usage:
//
//	routelens analyze route.csv
//	routelens history --compare
//
// See --help for all available options.
package main

// main is the entry point for RouteLens.
func main() {
	Execute()
}
