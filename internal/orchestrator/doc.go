// Package orchestrator runs the providers and assembles the route report.
//
// The orchestrator owns the run lifecycle: it resolves provider
// eligibility against the configured credentials, evaluates the
// heavy-vehicle gate once, executes the eligible providers concurrently
// under a per-provider timeout, and merges their sections in canonical
// order behind a single barrier. The merged order is a function of the
// provider declaration order alone; completion order never influences it.
//
// No provider failure halts the run or touches another provider's
// output. The orchestrator returns a report for every run; rendering is
// the caller's concern and the only place an error can become fatal.
package orchestrator
