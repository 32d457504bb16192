// Package config provides configuration structures for the test engine.
package config

import (
	"fmt"
	"strings"
)

type Config struct {
	ScriptsPath  string `json:"scriptsPath" yaml:"scriptsPath" mapstructure:"scriptsPath"`
	PersonasPath string `json:"personasPath" yaml:"personasPath" mapstructure:"personasPath"`
	Env          string `json:"env" yaml:"env" mapstructure:"env"`
	BaseURL      string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	GraphQLPath  string `json:"graphqlPath" yaml:"graphqlPath" mapstructure:"graphqlPath"`
	RegisterPath string `json:"registerPath" yaml:"registerPath" mapstructure:"registerPath"`
	LoginPath    string `json:"loginPath" yaml:"loginPath" mapstructure:"loginPath"`
	Category     string `json:"category" yaml:"category" mapstructure:"category"`
	Suite        string `json:"suite" yaml:"suite" mapstructure:"suite"`
	Persona      string `json:"persona" yaml:"persona" mapstructure:"persona"`
	Verbose      bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	Debug        bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
	DisableANSI  bool   `json:"disableANSI" yaml:"disableANSI" mapstructure:"disableANSI"`
	Parallel     bool   `json:"parallel" yaml:"parallel" mapstructure:"parallel"`
	FailFast     bool   `json:"failFast" yaml:"failFast" mapstructure:"failFast"`
	DryRun       bool   `json:"dryRun" yaml:"dryRun" mapstructure:"dryRun"`
	Retries      int    `json:"retries" yaml:"retries" mapstructure:"retries"`
	Timeout      uint64 `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // seconds
	RPS          int    `json:"rps" yaml:"rps" mapstructure:"rps"`
	Output       string `json:"output" yaml:"output" mapstructure:"output"`
	Format       string `json:"format" yaml:"format" mapstructure:"format"`
	ConfigPath   string `json:"configPath" yaml:"configPath" mapstructure:"configPath"`
}

// Environments maps the supported target environments to their fixed base
// URLs. The --base-url flag overrides the mapping.
var Environments = map[string]string{
	"local":      "http://localhost:3000",
	"staging":    "https://staging-api.musclemap.me",
	"production": "https://api.musclemap.me",
}

// Formats lists the supported report output formats.
var Formats = []string{"console", "json", "html", "junit"}

// ResolveBaseURL applies the env mapping unless an explicit base URL is
// configured. Unknown environments fail fast, before any network activity.
func (c *Config) ResolveBaseURL() (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}
	url, ok := Environments[c.Env]
	if !ok {
		return "", fmt.Errorf("unknown environment %q, must be one of: %s", c.Env, strings.Join(EnvironmentNames(), ", "))
	}
	return url, nil
}

// ValidateFormat rejects unknown report formats with the full valid list.
func (c *Config) ValidateFormat() error {
	for _, f := range Formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, must be one of: %s", c.Format, strings.Join(Formats, ", "))
}

// EnvironmentNames returns the valid environment names in a stable order.
func EnvironmentNames() []string {
	return []string{"local", "staging", "production"}
}
