package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hlsllint/internal/common/fsutil"
)

// EnvConfigPath names a config file used when --config is not given.
const EnvConfigPath = "HLSLLINT_CONFIG"

// Defaults applied by WithDefaults.
const (
	DefaultAddr          = ":8089"
	DefaultExecutable    = "dxc"
	DefaultTrigger       = "onType"
	DefaultDebounceMS    = 250
	DefaultLintTimeoutMS = 30000
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

// DefaultLanguages lists the document language IDs linted when none are configured.
var DefaultLanguages = []string{"hlsl"}

// CORS configures the optional CORS middleware of the HTTP API.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	ExecutablePath string   `json:"executable_path" yaml:"executable_path" toml:"executable_path"`
	Trigger        string   `json:"trigger" yaml:"trigger" toml:"trigger"`
	DebounceMS     int      `json:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms"`
	IncludeDirs    []string `json:"include_dirs" yaml:"include_dirs" toml:"include_dirs"`
	DefaultArgs    []string `json:"default_args" yaml:"default_args" toml:"default_args"`
	Languages      []string `json:"languages" yaml:"languages" toml:"languages"`
	WorkspaceRoot  string   `json:"workspace_root" yaml:"workspace_root" toml:"workspace_root"`
	LintTimeoutMS  int      `json:"lint_timeout_ms" yaml:"lint_timeout_ms" toml:"lint_timeout_ms"`

	CORS CORS `json:"cors" yaml:"cors" toml:"cors"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg.expandPaths()
}

// LoadOptional loads path, or the file named by HLSLLINT_CONFIG when path is
// empty. With neither set it returns a zero Config.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path == "" {
		return Config{}, nil
	}
	return Load(path)
}

// WithDefaults returns a copy with every unspecified field filled in.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if strings.TrimSpace(c.ExecutablePath) == "" {
		c.ExecutablePath = DefaultExecutable
	}
	if c.Trigger == "" {
		c.Trigger = DefaultTrigger
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = DefaultDebounceMS
	}
	if len(c.Languages) == 0 {
		c.Languages = append([]string(nil), DefaultLanguages...)
	}
	if c.LintTimeoutMS <= 0 {
		c.LintTimeoutMS = DefaultLintTimeoutMS
	}
	return c
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Addr, o.Addr)
	set(&c.LogLevel, o.LogLevel)
	set(&c.LogFormat, o.LogFormat)
	set(&c.ExecutablePath, o.ExecutablePath)
	set(&c.Trigger, o.Trigger)
	set(&c.WorkspaceRoot, o.WorkspaceRoot)
	if o.DebounceMS > 0 {
		c.DebounceMS = o.DebounceMS
	}
	if o.LintTimeoutMS > 0 {
		c.LintTimeoutMS = o.LintTimeoutMS
	}
	if o.IncludeDirs != nil {
		c.IncludeDirs = o.IncludeDirs
	}
	if o.DefaultArgs != nil {
		c.DefaultArgs = o.DefaultArgs
	}
	if o.Languages != nil {
		c.Languages = o.Languages
	}
	if o.CORS.Enabled {
		c.CORS = o.CORS
	}
	return c
}

func (c Config) expandPaths() (Config, error) {
	var err error
	if c.ExecutablePath, err = fsutil.ExpandHome(c.ExecutablePath); err != nil {
		return c, err
	}
	if c.WorkspaceRoot, err = fsutil.ExpandHome(c.WorkspaceRoot); err != nil {
		return c, err
	}
	if len(c.IncludeDirs) > 0 {
		dirs := make([]string, len(c.IncludeDirs))
		for i, d := range c.IncludeDirs {
			if dirs[i], err = fsutil.ExpandHome(d); err != nil {
				return c, err
			}
		}
		c.IncludeDirs = dirs
	}
	return c, nil
}
