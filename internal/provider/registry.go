package provider

import (
	"fmt"

	"github.com/routelens/routelens/internal/config"
)

// Constructor builds a provider from the resolved credentials and shared
// dependencies. Constructors must be pure: no I/O, no network access, no
// validation beyond wiring. A constructor error marks the provider FAILED
// before it ever runs.
type Constructor func(creds config.Credentials, deps Deps) (Provider, error)

// Registration declares one provider: its name, the credential that
// gates it, the credentials that merely widen it, and how to build it.
type Registration struct {
	// Name is the canonical provider name.
	Name string

	// Primary is the credential required for eligibility. Empty means
	// the provider is credential-free and always eligible.
	Primary string

	// Secondary lists credentials that extend the provider's internal
	// capability when present. Their absence never blocks eligibility.
	Secondary []string

	// Construct builds the provider once it is eligible.
	Construct Constructor
}

// Resolution is the eligibility outcome for one registration.
// Exactly one of Provider, Skipped, or Err describes the outcome.
type Resolution struct {
	// Registration is the declaration this resolution is for.
	Registration Registration

	// Provider is the constructed provider. Nil when skipped or errored.
	Provider Provider

	// Skipped reports that the primary credential was absent.
	Skipped bool

	// Err is a non-nil construction error. The orchestrator records it
	// as a FAILED provider without running anything.
	Err error
}

// Registry holds the declared providers in canonical order.
//
// Design decision: eligibility is resolved for all providers up front,
// before any analysis starts, so the run summary can account for every
// declared provider even when most are skipped. Resolve is pure over
// the credential set; it performs no I/O.
type Registry struct {
	registrations []Registration
}

// NewRegistry creates a registry from explicit registrations, preserving
// their order. Most callers want DefaultRegistry.
func NewRegistry(regs ...Registration) *Registry {
	return &Registry{registrations: regs}
}

// DefaultRegistry declares the six standard providers in canonical order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Registration{
			Name:      NameTraffic,
			Primary:   config.CredTomTom,
			Secondary: []string{config.CredHERE},
			Construct: func(creds config.Credentials, deps Deps) (Provider, error) {
				return NewTraffic(creds.Get(config.CredTomTom), creds.Get(config.CredHERE), deps), nil
			},
		},
		Registration{
			Name:      NameWeather,
			Primary:   config.CredOpenWeather,
			Secondary: []string{config.CredVisualCrossing, config.CredTomorrowIO},
			Construct: func(creds config.Credentials, deps Deps) (Provider, error) {
				return NewWeather(creds.Get(config.CredOpenWeather), creds.Get(config.CredVisualCrossing), deps), nil
			},
		},
		Registration{
			Name:      NameRealtime,
			Primary:   config.CredGoogleMaps,
			Secondary: []string{config.CredTomTom, config.CredMapbox},
			Construct: func(creds config.Credentials, deps Deps) (Provider, error) {
				return NewRealtime(creds.Get(config.CredGoogleMaps), creds.Get(config.CredTomTom), deps), nil
			},
		},
		Registration{
			// Fleet analysis is pure computation over the route context.
			Name:    NameFleet,
			Primary: "",
			Construct: func(_ config.Credentials, deps Deps) (Provider, error) {
				return NewFleet(deps), nil
			},
		},
		Registration{
			Name:      NameEmergency,
			Primary:   config.CredEmergencyAPI,
			Secondary: []string{config.CredGoogleMaps},
			Construct: func(creds config.Credentials, deps Deps) (Provider, error) {
				return NewEmergency(creds.Get(config.CredEmergencyAPI), creds.Get(config.CredGoogleMaps), deps), nil
			},
		},
		Registration{
			Name:      NameLocation,
			Primary:   config.CredGoogleMaps,
			Secondary: []string{config.CredMapbox, config.CredHERE},
			Construct: func(creds config.Credentials, deps Deps) (Provider, error) {
				return NewLocation(creds.Get(config.CredGoogleMaps), deps), nil
			},
		},
	)
}

// Registrations returns the declarations in canonical order.
func (r *Registry) Registrations() []Registration {
	out := make([]Registration, len(r.registrations))
	copy(out, r.registrations)
	return out
}

// Len returns the number of declared providers.
func (r *Registry) Len() int {
	return len(r.registrations)
}

// Resolve evaluates eligibility for every declared provider against the
// credential set and constructs the eligible ones. The result has one
// entry per registration, in canonical order.
func (r *Registry) Resolve(creds config.Credentials, deps Deps) []Resolution {
	deps = deps.normalize()

	out := make([]Resolution, 0, len(r.registrations))
	for _, reg := range r.registrations {
		res := Resolution{Registration: reg}
		switch {
		case reg.Primary != "" && !creds.Has(reg.Primary):
			res.Skipped = true
		default:
			p, err := reg.Construct(creds, deps)
			if err != nil {
				res.Err = fmt.Errorf("failed to construct provider %s: %w", reg.Name, err)
			} else {
				res.Provider = p
			}
		}
		out = append(out, res)
	}
	return out
}
