package model

// ProviderState is the terminal state a provider reached during a run.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output for logs and reports. Failure handling is a result-type return, not
// exception-driven control flow, so every state is directly testable without
// inducing real faults.
type ProviderState int

const (
	// StateSkipped means the provider's primary credential was absent.
	// Skipping is a configuration gap, never an error.
	StateSkipped ProviderState = iota

	// StateSucceeded means every operation for the provider completed.
	// Individual operations may still have failed; each surviving
	// operation contributes its sections independently.
	StateSucceeded

	// StateFailed means the provider could not be constructed, timed out,
	// or an unrecoverable condition propagated. The provider contributes
	// zero sections and the run proceeds to the next provider.
	StateFailed
)

// String returns a human-readable representation of the state.
func (s ProviderState) String() string {
	switch s {
	case StateSkipped:
		return "SKIPPED"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ProviderStatus is the observability record for one declared provider.
// It is consumed by logging and the run summary, not by the data contract
// between providers and the composer.
type ProviderStatus struct {
	// Provider is the provider name, e.g. "traffic".
	Provider string `json:"provider"`

	// State is the terminal state the provider reached.
	State ProviderState `json:"state"`

	// StateText is the human-readable state for serialized output.
	StateText string `json:"state_text"`

	// Cause is the failure cause when State is StateFailed.
	Cause string `json:"cause,omitempty"`

	// Sections is the number of sections the provider contributed.
	Sections int `json:"sections"`

	// FailedOperations counts operations that failed inside an otherwise
	// succeeded provider.
	FailedOperations int `json:"failed_operations,omitempty"`
}

// RunSummary aggregates per-run outcome counts, produced once per run.
// The invariant Succeeded()+Failed()+Skipped() == len(Statuses) holds for
// every run: each declared provider is recorded exactly once.
type RunSummary struct {
	// Statuses holds one entry per declared provider in canonical order.
	Statuses []ProviderStatus `json:"statuses"`

	// SectionCount is the total number of sections emitted.
	SectionCount int `json:"section_count"`
}

// count returns the number of statuses in the given state.
func (s RunSummary) count(state ProviderState) int {
	n := 0
	for _, st := range s.Statuses {
		if st.State == state {
			n++
		}
	}
	return n
}

// Succeeded returns the number of providers that succeeded.
func (s RunSummary) Succeeded() int { return s.count(StateSucceeded) }

// Failed returns the number of providers that failed.
func (s RunSummary) Failed() int { return s.count(StateFailed) }

// Skipped returns the number of providers skipped for missing credentials.
func (s RunSummary) Skipped() int { return s.count(StateSkipped) }

// Status returns the status entry for the named provider and whether it
// was found.
func (s RunSummary) Status(provider string) (ProviderStatus, bool) {
	for _, st := range s.Statuses {
		if st.Provider == provider {
			return st, true
		}
	}
	return ProviderStatus{}, false
}
