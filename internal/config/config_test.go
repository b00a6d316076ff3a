package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/foliohq/folio/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "catalog", cfg.CatalogDir)
	assert.Equal(t, "web", cfg.Surface)
	assert.True(t, cfg.AutoReload)
	assert.Equal(t, time.Second, cfg.ReloadDebounce)
	assert.True(t, cfg.PreviewCache)
	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsNegativeDebounce(t *testing.T) {
	cfg := Defaults()
	cfg.ReloadDebounce = -time.Second
	require.Error(t, Validate(cfg))
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*tracing.Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *tracing.Config) {}},
		{name: "sample rate too high", mutate: func(c *tracing.Config) { c.SampleRate = 1.5 }, wantErr: true},
		{name: "sample rate negative", mutate: func(c *tracing.Config) { c.SampleRate = -0.1 }, wantErr: true},
		{name: "unknown exporter", mutate: func(c *tracing.Config) { c.Exporter = "kafka" }, wantErr: true},
		{name: "empty exporter tolerated", mutate: func(c *tracing.Config) { c.Exporter = "" }},
		{
			name: "file exporter needs path when enabled",
			mutate: func(c *tracing.Config) {
				c.Enabled = true
				c.Exporter = "file"
				c.FilePath = ""
			},
			wantErr: true,
		},
		{
			name: "otlp exporter needs endpoint when enabled",
			mutate: func(c *tracing.Config) {
				c.Enabled = true
				c.Exporter = "otlp"
				c.OTLPEndpoint = ""
			},
			wantErr: true,
		},
		{
			name: "disabled skips exporter requirements",
			mutate: func(c *tracing.Config) {
				c.Enabled = false
				c.Exporter = "otlp"
				c.OTLPEndpoint = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tracing.DefaultConfig()
			tt.mutate(&cfg)
			err := ValidateTracing(cfg)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfigTemplateIsValidYAML(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))
	assert.Equal(t, "catalog", parsed["catalog_dir"])
	assert.Equal(t, "web", parsed["surface"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	content, err := os.ReadFile(path) //nolint:gosec // G304: test-owned path
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
