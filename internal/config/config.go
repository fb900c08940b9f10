package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default EoR power spectrum amplitude for the HERA FWHM case study,
// in mK^2 Mpc^3.
const DefaultEoRPowerSpectrum = 214777.66068216303

// Config holds all valska configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Analysis configuration
	Analysis AnalysisConfig `yaml:"analysis"`

	// Directory layout
	Paths PathsConfig `yaml:"paths"`

	// Python package hygiene targets
	Hygiene HygieneConfig `yaml:"hygiene"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AnalysisConfig configures evidence evaluation and BaNTER sweeps.
type AnalysisConfig struct {
	// EoR power spectrum amplitude in mK^2 Mpc^3
	EoRPowerSpectrum float64 `yaml:"eor_ps"`

	// Ratio of the noise PS to the EoR PS (noise_ps = eor_ps * noise_ratio)
	NoiseRatio float64 `yaml:"noise_ratio"`

	// Expected PS used in reports. Zero means use the noise PS.
	ExpectedPowerSpectrum float64 `yaml:"expected_ps"`

	// File root of the sampler outputs inside a chain directory
	// (MultiNest runs in the case study use "data-")
	FileRoot string `yaml:"file_root"`

	// Maximum number of perturbation cases evaluated concurrently
	Concurrency int `yaml:"concurrency"`
}

// PathsConfig configures the directory layout.
type PathsConfig struct {
	// BaseDir anchors the chains/data/results directories when they are
	// not set explicitly
	BaseDir    string `yaml:"base_dir"`
	ChainsDir  string `yaml:"chains_dir"`
	DataDir    string `yaml:"data_dir"`
	ResultsDir string `yaml:"results_dir"`

	// Catalog is the YAML file mapping analysis keys to chain directories
	Catalog string `yaml:"catalog"`

	// History is the SQLite database recording validation runs
	History string `yaml:"history"`
}

// HygieneConfig configures the Python package hygiene targets.
type HygieneConfig struct {
	// Source tree passed to the formatters and linters
	Source string `yaml:"source"`

	// Notebooks directory for the notebook targets
	Notebooks string `yaml:"notebooks"`

	// Line length enforced by isort/black/flake8/pylint
	LineLength int `yaml:"line_length"`

	// Runner prefix prepended to every tool invocation (e.g. "poetry run")
	Runner string `yaml:"runner"`

	// Distribution directory uploaded by the publish target
	DistDir string `yaml:"dist_dir"`

	// Repository passed to twine upload
	Repository string `yaml:"repository"`

	// Default timeout for a single tool invocation
	ToolTimeout string `yaml:"tool_timeout"`

	// Environment variables passed through to the tools
	AllowedEnvVars []string `yaml:"allowed_env_vars"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "valska",
		Version: "0.3.0",

		Analysis: AnalysisConfig{
			EoRPowerSpectrum: DefaultEoRPowerSpectrum,
			NoiseRatio:       0.5,
			FileRoot:         "data-",
			Concurrency:      4,
		},

		Paths: PathsConfig{
			BaseDir:    ".",
			Catalog:    "config/paths.yaml",
			History:    ".valska/history.db",
			ChainsDir:  "", // derived from BaseDir when empty
			DataDir:    "",
			ResultsDir: "",
		},

		Hygiene: HygieneConfig{
			Source:      "src",
			Notebooks:   "notebooks",
			LineLength:  79,
			DistDir:     "dist",
			Repository:  "pypi",
			ToolTimeout: "10m",
			AllowedEnvVars: []string{
				"PATH", "HOME", "USER", "LANG", "LC_ALL",
				"VIRTUAL_ENV", "PYTHONPATH", "TWINE_USERNAME", "TWINE_PASSWORD",
			},
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults if config file doesn't exist; env still applies
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// The PYTHON_* names match the Makefile-include variables the hygiene
// targets replace.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("VALSKA_BASE_DIR"); dir != "" {
		c.Paths.BaseDir = dir
	}
	if dir := os.Getenv("VALSKA_CHAINS_DIR"); dir != "" {
		c.Paths.ChainsDir = dir
	}
	if path := os.Getenv("VALSKA_CATALOG"); path != "" {
		c.Paths.Catalog = path
	}
	if path := os.Getenv("VALSKA_HISTORY_DB"); path != "" {
		c.Paths.History = path
	}

	if src := os.Getenv("PYTHON_SRC"); src != "" {
		c.Hygiene.Source = src
	}
	if runner := os.Getenv("PYTHON_RUNNER"); runner != "" {
		c.Hygiene.Runner = runner
	}
	if ll := os.Getenv("PYTHON_LINE_LENGTH"); ll != "" {
		if n, err := strconv.Atoi(ll); err == nil && n > 0 {
			c.Hygiene.LineLength = n
		}
	}
}

// NoisePowerSpectrum returns the noise PS derived from the EoR PS.
func (c *Config) NoisePowerSpectrum() float64 {
	return c.Analysis.EoRPowerSpectrum * c.Analysis.NoiseRatio
}

// ExpectedPowerSpectrum returns the PS value reports compare against.
// Falls back to the noise PS when not set explicitly.
func (c *Config) ExpectedPowerSpectrum() float64 {
	if c.Analysis.ExpectedPowerSpectrum != 0 {
		return c.Analysis.ExpectedPowerSpectrum
	}
	return c.NoisePowerSpectrum()
}

// GetToolTimeout returns the hygiene tool timeout as a duration.
func (c *Config) GetToolTimeout() time.Duration {
	d, err := time.ParseDuration(c.Hygiene.ToolTimeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.NoiseRatio <= 0 {
		return fmt.Errorf("analysis.noise_ratio must be positive, got %g", c.Analysis.NoiseRatio)
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1, got %d", c.Analysis.Concurrency)
	}
	if c.Hygiene.LineLength < 1 {
		return fmt.Errorf("hygiene.line_length must be positive, got %d", c.Hygiene.LineLength)
	}
	return nil
}
