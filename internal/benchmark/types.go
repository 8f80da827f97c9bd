package benchmark

import (
	"errors"
	"time"

	"github.com/eugenenazirov/binpacking/internal/packing"
)

// ErrInvalidConfig is returned when a sweep configuration is rejected.
var ErrInvalidConfig = errors.New("invalid benchmark configuration")

const (
	defaultTrials  = 5
	defaultMinItem = 0.1
	defaultMaxItem = 1.0
)

// Config describes one sweep.
type Config struct {
	// Sizes lists the item counts to measure, in report order.
	Sizes []int `json:"sizes" yaml:"sizes"`
	// Trials is the number of random item sets drawn per size.
	Trials int `json:"trials" yaml:"trials"`
	// Capacity of every bin.
	Capacity float64 `json:"capacity" yaml:"capacity"`
	// MinItem and MaxItem bound the uniform item size distribution.
	MinItem float64 `json:"minItem" yaml:"min_item"`
	MaxItem float64 `json:"maxItem" yaml:"max_item"`
	// Strategies to measure; all strategies when empty.
	Strategies []packing.Strategy `json:"strategies" yaml:"strategies"`
	// Seed makes item generation reproducible.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultSizes returns the item counts 10, 60, ..., 960.
func DefaultSizes() []int {
	sizes := make([]int, 0, 20)
	for n := 10; n < 1000; n += 50 {
		sizes = append(sizes, n)
	}
	return sizes
}

// DefaultConfig returns the standard sweep over every strategy.
func DefaultConfig() Config {
	return Config{
		Sizes:      DefaultSizes(),
		Trials:     defaultTrials,
		Capacity:   packing.DefaultCapacity,
		MinItem:    defaultMinItem,
		MaxItem:    defaultMaxItem,
		Strategies: packing.Strategies(),
	}
}

// Point aggregates the trials of one strategy at one item count.
type Point struct {
	N               int           `json:"n" yaml:"n"`
	MeanTime        time.Duration `json:"meanTimeNs" yaml:"mean_time"`
	MeanBins        float64       `json:"meanBins" yaml:"mean_bins"`
	MeanUtilization float64       `json:"meanUtilization" yaml:"mean_utilization"`
	Skipped         bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Series holds the points of one strategy in sweep order.
type Series struct {
	Strategy packing.Strategy `json:"strategy" yaml:"strategy"`
	Points   []Point          `json:"points" yaml:"points"`
}

// Report is the outcome of a sweep.
type Report struct {
	Capacity float64       `json:"capacity" yaml:"capacity"`
	Trials   int           `json:"trials" yaml:"trials"`
	Seed     uint64        `json:"seed" yaml:"seed"`
	Elapsed  time.Duration `json:"elapsedNs" yaml:"elapsed"`
	Series   []Series      `json:"series" yaml:"series"`
}
