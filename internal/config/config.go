// Package config loads the orchestration core's configuration surface
// (§6.4): simulator resolution, scheduler parallelism, timeouts, and
// the rotating log sink. Loading follows the teacher's config.Load /
// config.LoadWithEnv split exactly, so environment-variable overrides
// remain testable without touching the real environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface enumerated in §6.4.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// SimulatorConfig resolves the simulator executable (§4.1 initialize,
// §4.1 SimulatorNotFound).
type SimulatorConfig struct {
	// Version looks up the executable via the platform registry
	// (internal/locator). ExecutablePath wins when both are set.
	Version        string `yaml:"version"`
	ExecutablePath string `yaml:"executable_path"`
}

// SchedulerConfig covers the dispatch-level options from §6.4.
type SchedulerConfig struct {
	MaxWorkers            int    `yaml:"max_workers"`
	PerPlanTimeoutSeconds  int    `yaml:"per_plan_timeout_seconds"`
	MaxRetries             int    `yaml:"max_retries"`
	ClearPreprocessor      bool   `yaml:"clear_preprocessor"`
	Destination            string `yaml:"destination"`
	OverwriteDestination   bool   `yaml:"overwrite_destination"`
	NumberOfCores          int    `yaml:"number_of_cores"`
}

// LogConfig covers the rotating log sink controls from §6.4.
type LogConfig struct {
	Level       string `yaml:"level"`
	ToFile      bool   `yaml:"log_to_file"`
	FilePath    string `yaml:"log_file_path"`
	MaxBytes    int    `yaml:"max_log_bytes"`
	BackupCount int    `yaml:"log_backup_count"`
}

// DefaultConfig mirrors the teacher's DefaultConfig: sane defaults that
// a loaded file or environment variable may override.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			MaxWorkers:            4,
			PerPlanTimeoutSeconds: 0, // 0 = no advisory timeout
			MaxRetries:            0,
		},
		Log: LogConfig{
			Level:       "INFO",
			MaxBytes:    10 * 1024 * 1024, // 10MB
			BackupCount: 5,
		},
	}
}

// PerPlanTimeout returns the configured advisory timeout as a
// time.Duration, or 0 if unset.
func (c *Config) PerPlanTimeout() time.Duration {
	if c.Scheduler.PerPlanTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Scheduler.PerPlanTimeoutSeconds) * time.Second
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function, allowing tests to supply isolated values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	return loadFrom(getConfigPathWithEnv(getenv), getenv)
}

// LoadFromPath loads configuration from an explicit file path (e.g. a
// CLI --config override) instead of the platform default location,
// still applying environment overrides on top.
func LoadFromPath(path string) (*Config, error) {
	return loadFrom(path, os.Getenv)
}

func loadFrom(configPath string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := getenv("HECRAS_SIMULATOR_VERSION"); v != "" {
		cfg.Simulator.Version = v
	}
	if v := getenv("HECRAS_SIMULATOR_PATH"); v != "" {
		cfg.Simulator.ExecutablePath = v
	}
	if v := getenv("HECRAS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hecras-orchestrator", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hecras-orchestrator", "config.yaml")
}
