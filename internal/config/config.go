// Package config provides configuration types and defaults for folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/tracing"
)

// Config holds all configuration options for folio.
type Config struct {
	// CatalogDir is the directory holding schema, component, fragment and
	// docdef definitions. Default: ./catalog
	CatalogDir string `mapstructure:"catalog_dir"`

	// DBPath is the SQLite database file for persisted documents.
	// Default: ~/.folio/folio.db
	DBPath string `mapstructure:"db_path"`

	// Surface is the default output surface rendered when a command does
	// not name one. Default: "web"
	Surface string `mapstructure:"surface"`

	// AutoReload re-loads the catalog when definition files change.
	AutoReload bool `mapstructure:"auto_reload"`

	// ReloadDebounce is the quiet period after a catalog file change
	// before a reload fires.
	ReloadDebounce time.Duration `mapstructure:"reload_debounce"`

	// PreviewCache controls whether preview renders are cached.
	PreviewCache bool `mapstructure:"preview_cache"`

	// Tracing configures the OpenTelemetry pipeline instrumentation.
	Tracing tracing.Config `mapstructure:"tracing"`

	// Flags holds experimental feature toggles.
	Flags map[string]bool `mapstructure:"flags"`
}

// DefaultDBPath returns the default document database path.
// Returns ~/.folio/folio.db or a relative fallback if home dir unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "folio.db"
	}
	return filepath.Join(home, ".folio", "folio.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/folio/traces/traces.jsonl or empty string if home dir
// unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "folio", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		CatalogDir:     "catalog",
		DBPath:         DefaultDBPath(),
		Surface:        "web",
		AutoReload:     true,
		ReloadDebounce: time.Second,
		PreviewCache:   true,
		Tracing:        tracing.DefaultConfig(),
	}
}

// Validate checks the configuration for errors. Empty values fall back to
// defaults and are valid.
func Validate(cfg Config) error {
	if cfg.ReloadDebounce < 0 {
		return fmt.Errorf("reload_debounce must not be negative, got %v", cfg.ReloadDebounce)
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(cfg tracing.Config) error {
	if cfg.SampleRate < 0.0 || cfg.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", cfg.SampleRate)
	}

	if cfg.Exporter != "" {
		switch cfg.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", cfg.Exporter)
		}
	}

	if cfg.Enabled {
		if cfg.Exporter == "file" && cfg.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if cfg.Exporter == "otlp" && cfg.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Folio Configuration

# Directory holding catalog definitions:
#   schemas/*.yaml, components/*.yaml, fragments/*.yaml, docdefs/*.yaml
catalog_dir: catalog

# SQLite database for persisted documents
# db_path: ~/.folio/folio.db

# Default output surface for rendering
surface: web

# Reload the catalog automatically when definition files change
auto_reload: true
# reload_debounce: 1s

# Cache preview renders keyed by (document type, parameters)
preview_cache: true

# Pipeline tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/folio/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
