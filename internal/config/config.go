// Package config holds provctl's file-backed settings.
//
// Config is stored at $XDG_CONFIG_HOME/provctl/config.yaml (defaults to
// ~/.config/provctl/config.yaml). Settings like the artifact version and
// backup paths live in an explicit struct handed to each command at
// construction time instead of ad-hoc globals.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact describes what the provision pipeline downloads and installs.
type Artifact struct {
	Version string `yaml:"version,omitempty"`
	// URL may contain the {version} placeholder, resolved at plan time.
	URL string `yaml:"url,omitempty"`
}

// Backup configures the backup command.
type Backup struct {
	Sources []string `yaml:"sources,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
	Keep    int      `yaml:"keep,omitempty"`
}

// Monitor holds resource thresholds. Percentages are 1-100.
type Monitor struct {
	DiskPercent   int      `yaml:"disk-percent,omitempty"`
	MemoryPercent int      `yaml:"memory-percent,omitempty"`
	LoadPerCPU    float64  `yaml:"load-per-cpu,omitempty"`
	Paths         []string `yaml:"paths,omitempty"`
}

// Rotate configures log rotation.
type Rotate struct {
	Targets   []string `yaml:"targets,omitempty"`
	MaxSizeMB int64    `yaml:"max-size-mb,omitempty"`
	Keep      int      `yaml:"keep,omitempty"`
}

// Users configures batch user provisioning.
type Users struct {
	Shell string `yaml:"shell,omitempty"`
}

// Config is the root of the provctl configuration file.
type Config struct {
	Artifact Artifact `yaml:"artifact,omitempty"`
	Backup   Backup   `yaml:"backup,omitempty"`
	Monitor  Monitor  `yaml:"monitor,omitempty"`
	Rotate   Rotate   `yaml:"rotate,omitempty"`
	Users    Users    `yaml:"users,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backup: Backup{Keep: 7},
		Monitor: Monitor{
			DiskPercent:   90,
			MemoryPercent: 90,
			LoadPerCPU:    2.0,
			Paths:         []string{"/"},
		},
		Rotate: Rotate{MaxSizeMB: 100, Keep: 5},
		Users:  Users{Shell: "/bin/bash"},
	}
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/provctl/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "provctl", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "provctl", "config.yaml")
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file yields Default(), not an error. Values absent
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path, creating directories as needed.
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveURL expands the {version} placeholder in the artifact URL.
func (a Artifact) ResolveURL(version string) string {
	if version == "" {
		version = a.Version
	}
	return strings.ReplaceAll(a.URL, "{version}", version)
}
