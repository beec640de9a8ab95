package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultCredentialsFile is the default credentials file name.
const DefaultCredentialsFile = ".routelens"

// credentialsFile is the on-disk YAML shape of the credentials file.
type credentialsFile struct {
	// Credentials maps credential names to secrets.
	Credentials map[string]string `yaml:"credentials"`
}

// LoadCredentialsFile loads credentials from a YAML file.
// If the file does not exist, it returns ErrCredentialsNotFound so callers
// can decide whether a missing file matters (it does only when the path was
// explicitly specified by the user).
func LoadCredentialsFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided credentials path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	var cf credentialsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	creds := make(Credentials, len(cf.Credentials))
	for name, secret := range cf.Credentials {
		if secret != "" {
			creds[name] = secret
		}
	}
	return creds, nil
}

// FindCredentialsFile searches for the credentials file in order:
//  1. The explicit path, when specified
//  2. .routelens in the current directory
//  3. .routelens in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindCredentialsFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultCredentialsFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultCredentialsFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// ResolveCredentials builds the effective credential set for one run:
// the credentials file (if any) overlaid with ROUTELENS_* environment
// variables. A missing implicit file yields just the environment set.
func ResolveCredentials(explicitPath string) (Credentials, error) {
	fileCreds := make(Credentials)
	if path := FindCredentialsFile(explicitPath); path != "" {
		loaded, err := LoadCredentialsFile(path)
		if err != nil {
			return nil, err
		}
		fileCreds = loaded
	} else if explicitPath != "" {
		return nil, ErrCredentialsNotFound
	}
	return fileCreds.Merge(CredentialsFromEnv()), nil
}
