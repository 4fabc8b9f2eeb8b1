package config

import "fmt"

// SupportedBackends lists the spawn backends a defaults file may select.
var SupportedBackends = []string{"local", "docker"}

// Defaults are the per-invocation settings applied when flags are absent.
type Defaults struct {
	Backend        string `yaml:"backend"`
	Workdir        string `yaml:"workdir"`
	Image          string `yaml:"image"`
	Silent         bool   `yaml:"silent"`
	FailOnStderr   bool   `yaml:"failOnStderr"`
	IgnoreExitCode bool   `yaml:"ignoreExitCode"`
}

// File is the on-disk defaults document.
type File struct {
	Version  string            `yaml:"version"`
	Defaults Defaults          `yaml:"defaults"`
	Env      map[string]string `yaml:"env"`
	EnvFile  string            `yaml:"envFile"`
}

// ApplyDefaults fills unset fields with their built-in values.
func (f *File) ApplyDefaults() {
	if f.Defaults.Backend == "" {
		f.Defaults.Backend = "local"
	}
}

// Validate enforces schema invariants.
func (f *File) Validate() error {
	if f.Version == "" {
		return fmt.Errorf("version is required")
	}
	for _, backend := range SupportedBackends {
		if f.Defaults.Backend == backend {
			return nil
		}
	}
	return fmt.Errorf("unsupported backend %q", f.Defaults.Backend)
}
