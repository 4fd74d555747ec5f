// Package config loads semi's project configuration.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (SEMI_*)
//  2. Project config (.semi/config.yml)
//  3. Built-in defaults
//
// Nested fields use underscores in environment variables, for example
// SEMI_ANALYSIS_LINK_METHODS or SEMI_MINING_JOBS.
package config

import (
	"runtime"
	"time"
)

// Config represents the complete semi configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Mining   MiningConfig   `yaml:"mining" mapstructure:"mining"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

// AnalysisConfig tunes opportunity detection.
type AnalysisConfig struct {
	LinkMethods     bool `yaml:"link_methods" mapstructure:"link_methods"`         // link statements through shared method calls
	MinStatements   int  `yaml:"min_statements" mapstructure:"min_statements"`     // drop shorter accepted opportunities from reports
	IncludeRejected bool `yaml:"include_rejected" mapstructure:"include_rejected"` // report rejected candidates with their reason
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// StorageConfig locates the results database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative paths resolve against the project root
}

// CacheConfig sizes the in-memory analysis cache.
type CacheConfig struct {
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// MiningConfig configures dataset mining.
type MiningConfig struct {
	ReposDir        string `yaml:"repos_dir" mapstructure:"repos_dir"`
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	Jobs            int    `yaml:"jobs" mapstructure:"jobs"`
	RefactoringType string `yaml:"refactoring_type" mapstructure:"refactoring_type"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			LinkMethods:   true,
			MinStatements: 1,
		},
		Paths: PathsConfig{
			Include: []string{"**/*.java"},
			Ignore: []string{
				".git/**",
				"build/**",
				"target/**",
				"out/**",
				".semi/**",
			},
		},
		Storage: StorageConfig{
			DBPath: ".semi/results.db",
		},
		Cache: CacheConfig{
			Capacity: 1024,
			TTL:      10 * time.Minute,
		},
		Mining: MiningConfig{
			ReposDir:        "dataset/repos",
			OutputDir:       "dataset/output",
			Jobs:            defaultJobs(),
			RefactoringType: "Extract Method",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

func defaultJobs() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}
