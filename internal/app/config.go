package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/reactor"
	"gopkg.in/yaml.v3"
)

// Output formats of a resolved model.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string `yaml:"paths"` // source files or directories

	// Features lists "module:feature" entries; "module:" disables every
	// feature of a module. Empty supports all features.
	Features                  []string `yaml:"features"`
	EnableSemanticVersioning  bool     `yaml:"semantic_versioning"`
	ErrorOnUnsupportedFeature bool     `yaml:"error_on_unsupported_feature"`

	Format          string `yaml:"format"`
	LogFormat       string `yaml:"log_format"`
	LogLevel        string `yaml:"log_level"`
	HealthcheckPort int    `yaml:"healthcheck_port"`
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one source path is required")
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("invalid format %q: must be '%s' or '%s'", cfg.Format, FormatText, FormatJSON)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if _, err := reactor.ParseFeatureSet(cfg.Features); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

// LoadConfigFile reads a YAML configuration file. Unknown keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
