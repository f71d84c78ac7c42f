// Package config loads the kwreport configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kwreport/pkg/compat"
)

// Config holds the settings shared by every command. Flags set on the
// command line take precedence over the file.
type Config struct {
	Kubeconfig        string `yaml:"kubeconfig"`
	Cluster           string `yaml:"cluster"`
	ControllerVersion string `yaml:"controllerVersion"`
	PluginVersion     string `yaml:"pluginVersion"`
	Development       bool   `yaml:"development"`
}

// Loader reads configuration files.
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the YAML file at path. An empty path yields the zero Config.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that both component versions are set and parse.
func (c *Config) Validate() error {
	if c.ControllerVersion == "" {
		return fmt.Errorf("controllerVersion is required")
	}
	if c.PluginVersion == "" {
		return fmt.Errorf("pluginVersion is required")
	}
	if _, err := compat.Resolve(c.ControllerVersion, c.PluginVersion); err != nil {
		return fmt.Errorf("invalid versions: %w", err)
	}
	return nil
}

// ClusterOrDefault returns the cluster id used in links.
func (c *Config) ClusterOrDefault() string {
	if c.Cluster == "" {
		return "local"
	}
	return c.Cluster
}
