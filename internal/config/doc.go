// Package config provides configuration management for RouteLens.
//
// Configuration comes from three sources, merged in priority order:
//  1. CLI flags (highest priority)
//  2. Environment variables (ROUTELENS_* for credentials)
//  3. The .routelens YAML credentials file (current directory, then home)
//
// Design decision: Credentials are an explicit value threaded once into the
// orchestrator's entry point and scoped to one run, never ambient process
// state. A missing credential deterministically disables the provider that
// requires it; it is a configuration gap, not an error.
package config
