// Package cmd implements the folio command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/log"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "folio",
	Short:   "Document composition and schema-pinned rendering engine",
	Long: `Folio composes structured documents from versioned definitions and
renders them as ordered block trees with presentation bindings. Generated
documents pin the exact schema bundle they were produced against.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/folio/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging to folio.log")
	rootCmd.PersistentFlags().String("catalog", "",
		"catalog directory (overrides config)")
	rootCmd.PersistentFlags().String("db", "",
		"document database path (overrides config)")

	_ = viper.BindPFlag("catalog_dir", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("catalog_dir", defaults.CatalogDir)
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("surface", defaults.Surface)
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("reload_debounce", defaults.ReloadDebounce)
	viper.SetDefault("preview_cache", defaults.PreviewCache)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .folio/config.yaml (current directory)
		// 2. ~/.config/folio/config.yaml (user config)
		if _, err := os.Stat(".folio/config.yaml"); err == nil {
			viper.SetConfigFile(".folio/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "folio"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .folio/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".folio/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func initLogging() {
	if !debug && os.Getenv("FOLIO_DEBUG") == "" {
		return
	}
	if _, err := log.Init("folio.log"); err == nil {
		log.SetEnabled(true)
		log.SetMinLevel(log.LevelDebug)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
