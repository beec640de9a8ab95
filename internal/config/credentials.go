package config

import (
	"os"
	"sort"
	"strings"
)

// Credential names. Each names one optional external-service secret; a
// provider whose primary credential is absent is deterministically skipped.
const (
	CredGoogleMaps     = "google_maps"
	CredTomTom         = "tomtom"
	CredHERE           = "here"
	CredOpenWeather    = "openweather"
	CredVisualCrossing = "visualcrossing"
	CredTomorrowIO     = "tomorrow_io"
	CredMapbox         = "mapbox"
	CredEmergencyAPI   = "emergency_api"
)

// credentialNames lists every recognized credential, in display order.
var credentialNames = []string{
	CredGoogleMaps,
	CredTomTom,
	CredHERE,
	CredOpenWeather,
	CredVisualCrossing,
	CredTomorrowIO,
	CredMapbox,
	CredEmergencyAPI,
}

// Credentials maps provider-credential names to optional secrets.
// The zero value (nil map) behaves as "no credentials configured".
type Credentials map[string]string

// Has reports whether the named credential is present and non-empty.
func (c Credentials) Has(name string) bool {
	return c[name] != ""
}

// Get returns the named secret, or "" when absent.
func (c Credentials) Get(name string) string {
	return c[name]
}

// Configured returns the sorted names of all present credentials.
// Values are never included; this is safe for logging.
func (c Credentials) Configured() []string {
	names := make([]string, 0, len(c))
	for name, v := range c {
		if v != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Redacted returns a copy with every secret value masked, for debug output.
func (c Credentials) Redacted() map[string]string {
	out := make(map[string]string, len(c))
	for name, v := range c {
		if v == "" {
			out[name] = ""
			continue
		}
		out[name] = "***"
	}
	return out
}

// envPrefix is the prefix for credential environment variables,
// e.g. ROUTELENS_TOMTOM holds the tomtom secret.
const envPrefix = "ROUTELENS_"

// CredentialsFromEnv reads credentials from ROUTELENS_* environment
// variables. Only recognized credential names are read.
func CredentialsFromEnv() Credentials {
	creds := make(Credentials)
	for _, name := range credentialNames {
		envKey := envPrefix + strings.ToUpper(name)
		if v := os.Getenv(envKey); v != "" {
			creds[name] = v
		}
	}
	return creds
}

// Merge returns a copy of c overlaid with every non-empty entry of other.
// Used to layer environment variables over the credentials file.
func (c Credentials) Merge(other Credentials) Credentials {
	out := make(Credentials, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
