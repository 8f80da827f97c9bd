package packing

import (
	"context"
	"slices"
	"strings"
)

// Strategy names a packing algorithm.
type Strategy string

// Supported strategies.
const (
	StrategyNextFit            Strategy = "next-fit"
	StrategyFirstFit           Strategy = "first-fit"
	StrategyBestFit            Strategy = "best-fit"
	StrategyFirstFitDecreasing Strategy = "first-fit-decreasing"
	StrategyBestFitDecreasing  Strategy = "best-fit-decreasing"
	StrategyExact              Strategy = "exact"
)

// DefaultCapacity is the bin capacity used when callers do not provide one.
const DefaultCapacity = 1.0

var strategies = []Strategy{StrategyNextFit, StrategyFirstFit, StrategyBestFit, StrategyFirstFitDecreasing, StrategyBestFitDecreasing, StrategyExact}

var aliases = map[string]Strategy{
	"nf":          StrategyNextFit,
	"ff":          StrategyFirstFit,
	"bf":          StrategyBestFit,
	"ffd":         StrategyFirstFitDecreasing,
	"bfd":         StrategyBestFitDecreasing,
	"brute-force": StrategyExact,
}

// Strategies returns every supported strategy, heuristics first.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategies))
	copy(out, strategies)
	return out
}

// Aliases returns the short names accepted by ParseStrategy for s.
func (s Strategy) Aliases() []string {
	var out []string
	for alias, target := range aliases {
		if target == s {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// ParseStrategy resolves a strategy from its name or alias, ignoring case
// and surrounding whitespace.
func ParseStrategy(raw string) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "_", "-")
	if s, ok := aliases[name]; ok {
		return s, nil
	}
	s := Strategy(name)
	if !s.Valid() {
		return "", &strategyError{name: raw}
	}
	return s, nil
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	for _, known := range strategies {
		if s == known {
			return true
		}
	}
	return false
}

// Heuristic reports whether s is a polynomial-time placement policy.
func (s Strategy) Heuristic() bool {
	return s.Valid() && s != StrategyExact
}

func (s Strategy) String() string {
	return string(s)
}

type strategyError struct {
	name string
}

func (e *strategyError) Error() string {
	return ErrUnknownStrategy.Error() + ": " + e.name
}

func (e *strategyError) Unwrap() error {
	return ErrUnknownStrategy
}

// Result holds the fill level of every opened bin, in opening order.
type Result []float64

// Bins returns the number of bins used.
func (r Result) Bins() int {
	return len(r)
}

// Total returns the summed fill of all bins.
func (r Result) Total() float64 {
	var total float64
	for _, fill := range r {
		total += fill
	}
	return total
}

// Utilization returns the packed volume relative to the capacity of the
// opened bins. An empty result has zero utilization.
func (r Result) Utilization(capacity float64) float64 {
	if len(r) == 0 || capacity <= 0 {
		return 0
	}
	return r.Total() / (float64(len(r)) * capacity)
}

// Packer describes the behaviour required from a bin packer.
type Packer interface {
	Pack(ctx context.Context, items []float64, capacity float64, strategy Strategy) (Result, error)
}
