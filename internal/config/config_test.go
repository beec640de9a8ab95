package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestConfigValidate tests configuration validation with sentinel errors.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.RouteCSVPath = "route.csv"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid default", func(*Config) {}, nil},
		{"missing route", func(c *Config) { c.RouteCSVPath = "" }, ErrNoRoute},
		{"zero timeout", func(c *Config) { c.ProviderTimeout = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"both formats", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"unknown vehicle", func(c *Config) { c.VehicleClass = "tractor" }, ErrInvalidVehicleClass},
		{"bus is valid", func(c *Config) { c.VehicleClass = "bus" }, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestCredentials tests presence checks, redaction, and merging.
func TestCredentials(t *testing.T) {
	t.Parallel()

	t.Run("nil map has nothing", func(t *testing.T) {
		t.Parallel()

		var creds Credentials
		if creds.Has(CredTomTom) {
			t.Error("nil credentials should have no secrets")
		}
	})

	t.Run("empty value counts as absent", func(t *testing.T) {
		t.Parallel()

		creds := Credentials{CredTomTom: ""}
		if creds.Has(CredTomTom) {
			t.Error("empty secret should count as absent")
		}
	})

	t.Run("redacted never exposes values", func(t *testing.T) {
		t.Parallel()

		creds := Credentials{CredOpenWeather: "super-secret"}
		for name, v := range creds.Redacted() {
			if v == "super-secret" {
				t.Errorf("Redacted() leaked secret for %s", name)
			}
		}
	})

	t.Run("merge overlays non-empty values", func(t *testing.T) {
		t.Parallel()

		base := Credentials{CredTomTom: "file-value", CredHERE: "keep"}
		merged := base.Merge(Credentials{CredTomTom: "env-value", CredMapbox: "new"})

		if got := merged.Get(CredTomTom); got != "env-value" {
			t.Errorf("merged tomtom = %q, want env-value", got)
		}
		if got := merged.Get(CredHERE); got != "keep" {
			t.Errorf("merged here = %q, want keep", got)
		}
		if !merged.Has(CredMapbox) {
			t.Error("merged mapbox missing")
		}
	})

	t.Run("configured lists sorted names only", func(t *testing.T) {
		t.Parallel()

		creds := Credentials{CredTomTom: "x", CredGoogleMaps: "y", CredHERE: ""}
		got := creds.Configured()
		want := []string{CredGoogleMaps, CredTomTom}
		if len(got) != len(want) {
			t.Fatalf("Configured() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Configured()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

// TestLoadCredentialsFile tests YAML credential loading.
func TestLoadCredentialsFile(t *testing.T) {
	t.Parallel()

	t.Run("loads valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".routelens")
		content := "credentials:\n  tomtom: tt-key\n  openweather: ow-key\n  here: \"\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		creds, err := LoadCredentialsFile(path)
		if err != nil {
			t.Fatalf("LoadCredentialsFile() error = %v", err)
		}
		if got := creds.Get(CredTomTom); got != "tt-key" {
			t.Errorf("tomtom = %q, want tt-key", got)
		}
		if creds.Has(CredHERE) {
			t.Error("empty here entry should be dropped")
		}
	})

	t.Run("missing file returns sentinel", func(t *testing.T) {
		t.Parallel()

		_, err := LoadCredentialsFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrCredentialsNotFound) {
			t.Errorf("error = %v, want ErrCredentialsNotFound", err)
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".routelens")
		if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadCredentialsFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestCredentialsFromEnv tests environment variable credential loading.
func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("ROUTELENS_TOMTOM", "env-tt")
	t.Setenv("ROUTELENS_GOOGLE_MAPS", "env-gm")

	creds := CredentialsFromEnv()

	if got := creds.Get(CredTomTom); got != "env-tt" {
		t.Errorf("tomtom = %q, want env-tt", got)
	}
	if got := creds.Get(CredGoogleMaps); got != "env-gm" {
		t.Errorf("google_maps = %q, want env-gm", got)
	}
}
