// Package model defines the core data structures used throughout RouteLens.
//
// This package contains the following main types:
//   - RouteContext: Immutable description of the route under analysis
//   - Result: One analysis operation's outcome (payload or failure cause)
//   - Section: One titled block of the final report
//   - RunSummary: Per-run aggregate provider outcome counts
//   - RouteReport: The assembled report handed to the renderer
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (provider, compose, orchestrator, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// history storage.
package model
