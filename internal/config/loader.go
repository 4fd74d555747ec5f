package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching .semi/ under the root.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{rootDir: rootDir, configFile: configFile}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SEMI_*)
// 2. Config file (.semi/config.yml or .semi/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".semi"))
	}

	// Enable environment variable overrides (e.g., SEMI_MINING_JOBS)
	v.SetEnvPrefix("SEMI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Analysis configuration
	v.BindEnv("analysis.link_methods")
	v.BindEnv("analysis.min_statements")
	v.BindEnv("analysis.include_rejected")

	// Storage and cache configuration
	v.BindEnv("storage.db_path")
	v.BindEnv("cache.capacity")
	v.BindEnv("cache.ttl")

	// Mining configuration
	v.BindEnv("mining.repos_dir")
	v.BindEnv("mining.output_dir")
	v.BindEnv("mining.jobs")
	v.BindEnv("mining.refactoring_type")

	v.BindEnv("watch.debounce")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("analysis.link_methods", defaults.Analysis.LinkMethods)
	v.SetDefault("analysis.min_statements", defaults.Analysis.MinStatements)
	v.SetDefault("analysis.include_rejected", defaults.Analysis.IncludeRejected)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("storage.db_path", defaults.Storage.DBPath)

	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)

	v.SetDefault("mining.repos_dir", defaults.Mining.ReposDir)
	v.SetDefault("mining.output_dir", defaults.Mining.OutputDir)
	v.SetDefault("mining.jobs", defaults.Mining.Jobs)
	v.SetDefault("mining.refactoring_type", defaults.Mining.RefactoringType)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// ResolvePath makes a configured path absolute against rootDir.
func ResolvePath(rootDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
