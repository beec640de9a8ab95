// Package provider implements the route-intelligence providers and the
// registry that decides which of them run.
//
// Each provider is a self-contained analysis unit: given the shared
// read-only route context it performs a fixed set of operations and
// returns one Result per operation. Operations within a provider are
// isolated; one operation failing never suppresses its siblings. A
// provider never panics the run: every upstream failure mode normalizes
// to a failed Result with a human-readable cause.
//
// The registry holds the declared providers in canonical order and gates
// each one on its primary credential. Secondary credentials only widen a
// provider's internal capability; their absence never blocks eligibility.
package provider
