package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/binpacking/internal/packing"
	"github.com/eugenenazirov/binpacking/internal/storage"
)

const (
	defaultPort               = "8080"
	defaultLogLevel           = "info"
	defaultRateLimitRPS       = 25.0
	defaultRateLimitBurst     = 50
	defaultMetricsPath        = "/metrics"
	defaultBenchmarkMaxSizes  = 50
	defaultBenchmarkMaxItems  = 5000
	defaultBenchmarkMaxTrials = 20
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Capacity             float64
	Strategy             packing.Strategy
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	MetricsEnabled       bool
	MetricsPath          string
	Benchmark            BenchmarkLimits
}

// BenchmarkLimits caps the sweeps the service is willing to run per request.
type BenchmarkLimits struct {
	MaxSizes  int
	MaxItems  int
	MaxTrials int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Capacity             float64       `yaml:"capacity"`
	Strategy             string        `yaml:"strategy"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Metrics              yamlMetrics   `yaml:"metrics"`
	Benchmark            yamlBenchmark `yaml:"benchmark"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlMetrics struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type yamlBenchmark struct {
	MaxSizes  int `yaml:"max_sizes"`
	MaxItems  int `yaml:"max_items"`
	MaxTrials int `yaml:"max_trials"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	Capacity       *float64
	Strategy       *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	defaults := storage.DefaultSettings()
	return Config{
		Port:                 defaultPort,
		Capacity:             defaults.Capacity,
		Strategy:             defaults.Strategy,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         60 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		MetricsEnabled:       true,
		MetricsPath:          defaultMetricsPath,
		Benchmark: BenchmarkLimits{
			MaxSizes:  defaultBenchmarkMaxSizes,
			MaxItems:  defaultBenchmarkMaxItems,
			MaxTrials: defaultBenchmarkMaxTrials,
		},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Capacity != 0 {
		cfg.Capacity = yamlCfg.Capacity
	}

	if yamlCfg.Strategy != "" {
		strategy, err := packing.ParseStrategy(yamlCfg.Strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = strategy
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Metrics.Enabled != nil {
		cfg.MetricsEnabled = *yamlCfg.Metrics.Enabled
	}

	if yamlCfg.Metrics.Path != "" {
		cfg.MetricsPath = yamlCfg.Metrics.Path
	}

	if yamlCfg.Benchmark.MaxSizes > 0 {
		cfg.Benchmark.MaxSizes = yamlCfg.Benchmark.MaxSizes
	}
	if yamlCfg.Benchmark.MaxItems > 0 {
		cfg.Benchmark.MaxItems = yamlCfg.Benchmark.MaxItems
	}
	if yamlCfg.Benchmark.MaxTrials > 0 {
		cfg.Benchmark.MaxTrials = yamlCfg.Benchmark.MaxTrials
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed
// values are ignored, except for the strategy, which must resolve.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("BIN_CAPACITY")); raw != "" {
		if value, err := parseCapacity(raw); err == nil {
			cfg.Capacity = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PACKING_STRATEGY")); raw != "" {
		strategy, err := packing.ParseStrategy(raw)
		if err != nil {
			return fmt.Errorf("PACKING_STRATEGY: %w", err)
		}
		cfg.Strategy = strategy
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if enabled := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); enabled != "" {
		if value, err := strconv.ParseBool(enabled); err == nil {
			cfg.MetricsEnabled = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.Capacity != nil && *overrides.Capacity > 0 {
		cfg.Capacity = *overrides.Capacity
	}

	if overrides.Strategy != nil && *overrides.Strategy != "" {
		strategy, err := packing.ParseStrategy(*overrides.Strategy)
		if err != nil {
			return fmt.Errorf("parse strategy: %w", err)
		}
		cfg.Strategy = strategy
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if !(cfg.Capacity > 0) || math.IsInf(cfg.Capacity, 0) {
		return fmt.Errorf("capacity must be a positive finite number, got %g", cfg.Capacity)
	}
	if !cfg.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("metrics path must start with '/', got %q", cfg.MetricsPath)
	}
	return nil
}

// parseCapacity parses a bin capacity and validates that it is a positive
// finite number.
func parseCapacity(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid capacity %q", raw)
	}
	if !(value > 0) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("capacity must be a positive finite number, got %s", raw)
	}
	return value, nil
}
