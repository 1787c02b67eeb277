// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "BLIZZTOOLS_CONFIG"

// Config is the blizztools configuration.
type Config struct {
	// Root is the base directory for local data.
	Root string `yaml:"root" json:"root"`

	Patch  PatchConfig  `yaml:"patch" json:"patch"`
	CDN    CDNConfig    `yaml:"cdn" json:"cdn"`
	HTTP   HTTPConfig   `yaml:"http" json:"http"`
	Output OutputConfig `yaml:"output" json:"output"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`

	// Regions holds per-region overrides, applied after load when the
	// key equals Patch.Region.
	Regions map[string]*Overrides `yaml:"regions,omitempty" json:"regions,omitempty"`
}

// Overrides contains the fields that can be overridden per region.
type Overrides struct {
	Patch *PatchConfig `yaml:"patch,omitempty" json:"patch,omitempty"`
	CDN   *CDNConfig   `yaml:"cdn,omitempty" json:"cdn,omitempty"`
	HTTP  *HTTPConfig  `yaml:"http,omitempty" json:"http,omitempty"`
}

// PatchConfig configures the patch service that serves version and
// CDN tables.
type PatchConfig struct {
	// Host is the patch service host and port.
	// Default: us.patch.battle.net:1119
	Host string `yaml:"host" json:"host"`

	// Region selects rows of the version and CDN tables.
	// Default: us
	Region string `yaml:"region" json:"region"`
}

// CDNConfig configures where objects are fetched from.
type CDNConfig struct {
	// HostOverride replaces the first host from the CDN table.
	HostOverride string `yaml:"host_override" json:"host_override"`

	// MirrorDir is a local directory with the CDN layout, consulted
	// before the network.
	MirrorDir string `yaml:"mirror_dir" json:"mirror_dir"`
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	// Timeout bounds each request, as a Go duration string.
	// Default: 60s
	Timeout string `yaml:"timeout" json:"timeout"`

	// MaxObjectSize bounds each response body in bytes.
	// Default: 1 GiB
	MaxObjectSize int64 `yaml:"max_object_size" json:"max_object_size"`
}

// OutputConfig configures where downloaded files are written.
type OutputConfig struct {
	// Dir is the default output directory.
	Dir string `yaml:"dir" json:"dir"`
}

// StoreConfig configures the local object store.
type StoreConfig struct {
	// Dir is the object store directory.
	// Default: ${BLIZZTOOLS_ROOT}/objects
	Dir string `yaml:"dir" json:"dir"`

	// Compression is one of auto, none, lz4, zstd.
	// Default: auto
	Compression string `yaml:"compression" json:"compression"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`
}

// Compressions lists the accepted store.compression values.
var Compressions = []string{"auto", "none", "lz4", "zstd"}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "blizztools")

	return &Config{
		Root: defaultRoot,
		Patch: PatchConfig{
			Host:   "us.patch.battle.net:1119",
			Region: "us",
		},
		HTTP: HTTPConfig{
			Timeout:       "60s",
			MaxObjectSize: 1 << 30,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Store: StoreConfig{
			Dir:         filepath.Join(defaultRoot, "objects"),
			Compression: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by BLIZZTOOLS_CONFIG.
// With the variable unset it returns [Default].
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, on top of [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyRegionOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyRegionOverrides() {
	overrides := c.Regions[c.Patch.Region]
	if overrides == nil {
		return
	}

	if overrides.Patch != nil {
		if overrides.Patch.Host != "" {
			c.Patch.Host = overrides.Patch.Host
		}
	}

	if overrides.CDN != nil {
		if overrides.CDN.HostOverride != "" {
			c.CDN.HostOverride = overrides.CDN.HostOverride
		}
		if overrides.CDN.MirrorDir != "" {
			c.CDN.MirrorDir = overrides.CDN.MirrorDir
		}
	}

	if overrides.HTTP != nil {
		if overrides.HTTP.Timeout != "" {
			c.HTTP.Timeout = overrides.HTTP.Timeout
		}
		if overrides.HTTP.MaxObjectSize != 0 {
			c.HTTP.MaxObjectSize = overrides.HTTP.MaxObjectSize
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"BLIZZTOOLS_ROOT": c.Root,
		"HOME":            os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["BLIZZTOOLS_ROOT"] = c.Root

	c.CDN.MirrorDir = expandVars(c.CDN.MirrorDir, vars)
	c.Output.Dir = expandVars(c.Output.Dir, vars)
	c.Store.Dir = expandVars(c.Store.Dir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars take
// precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Patch.Host == "" {
		errs = append(errs, fmt.Errorf("patch.host is required"))
	}
	if c.Patch.Region == "" {
		errs = append(errs, fmt.Errorf("patch.region is required"))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.MaxObjectSize <= 0 {
		errs = append(errs, fmt.Errorf("http.max_object_size must be positive"))
	}
	if !slices.Contains(Compressions, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be one of: %v", Compressions))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Timeout parses http.timeout.
func (c *Config) Timeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("http.timeout: %w", err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	return timeout, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error: %w", err)
	}
	return level, nil
}
