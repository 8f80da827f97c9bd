package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/binpacking/internal/benchmark"
	"github.com/eugenenazirov/binpacking/internal/packing"
)

type options struct {
	configFile *string
	sizes      *string
	trials     *int
	capacity   *float64
	minItem    *float64
	maxItem    *float64
	strategies *string
	seed       *uint64
	format     *string
	output     *string
	logLevel   *string
}

func registerFlags(app *kingpin.Application) *options {
	return &options{
		configFile: app.Flag("config", "Path to YAML sweep configuration").String(),
		sizes:      app.Flag("sizes", "Item counts: comma-separated list or start:stop:step range").String(),
		trials:     app.Flag("trials", "Random item sets per size").Int(),
		capacity:   app.Flag("capacity", "Bin capacity").Float64(),
		minItem:    app.Flag("min-item", "Smallest generated item size").Float64(),
		maxItem:    app.Flag("max-item", "Largest generated item size").Float64(),
		strategies: app.Flag("strategies", "Comma-separated strategies (default: all)").String(),
		seed:       app.Flag("seed", "Seed for item generation").Uint64(),
		format:     app.Flag("format", "Report format").Default("table").Enum("table", "yaml", "json"),
		output:     app.Flag("output", "Write the report to this file instead of stdout").Short('o').String(),
		logLevel:   app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String(),
	}
}

// config merges the YAML sweep file with flag overrides. Unset values are
// left zero so the harness applies its defaults.
func (o *options) config() (benchmark.Config, error) {
	var cfg benchmark.Config
	if *o.configFile != "" {
		data, err := os.ReadFile(*o.configFile)
		if err != nil {
			return cfg, fmt.Errorf("read sweep config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse sweep config: %w", err)
		}
		for i, s := range cfg.Strategies {
			parsed, err := packing.ParseStrategy(string(s))
			if err != nil {
				return cfg, err
			}
			cfg.Strategies[i] = parsed
		}
	}

	if *o.sizes != "" {
		sizes, err := parseSizes(*o.sizes)
		if err != nil {
			return cfg, err
		}
		cfg.Sizes = sizes
	}
	if *o.trials != 0 {
		cfg.Trials = *o.trials
	}
	if *o.capacity != 0 {
		cfg.Capacity = *o.capacity
	}
	if *o.minItem != 0 {
		cfg.MinItem = *o.minItem
	}
	if *o.maxItem != 0 {
		cfg.MaxItem = *o.maxItem
	}
	if *o.seed != 0 {
		cfg.Seed = *o.seed
	}
	if *o.strategies != "" {
		strategies, err := parseStrategies(*o.strategies)
		if err != nil {
			return cfg, err
		}
		cfg.Strategies = strategies
	}
	return cfg, nil
}

// parseSizes accepts "10,20,40" or "10:1000:50" (stop exclusive).
func parseSizes(raw string) ([]int, error) {
	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid size range %q, want start:stop:step", raw)
		}
		bounds := make([]int, 3)
		for i, part := range parts {
			value, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", part)
			}
			bounds[i] = value
		}
		start, stop, step := bounds[0], bounds[1], bounds[2]
		if start <= 0 || step <= 0 || stop <= start {
			return nil, fmt.Errorf("invalid size range %q", raw)
		}
		sizes := make([]int, 0, (stop-start+step-1)/step)
		for n := start; n < stop; n += step {
			sizes = append(sizes, n)
		}
		return sizes, nil
	}

	parts := strings.Split(raw, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		if value <= 0 {
			return nil, fmt.Errorf("size must be positive, got %d", value)
		}
		sizes = append(sizes, value)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes provided")
	}
	return sizes, nil
}

func parseStrategies(raw string) ([]packing.Strategy, error) {
	var out []packing.Strategy
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := packing.ParseStrategy(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
