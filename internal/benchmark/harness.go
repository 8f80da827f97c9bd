package benchmark

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/binpacking/internal/packing"
)

// Harness runs sweeps against a packer.
type Harness struct {
	packer packing.Packer
	logger *zap.Logger
	now    func() time.Time
}

// Option configures Harness behaviour.
type Option func(*Harness)

// WithLogger attaches a logger that receives per-size progress at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}

// New constructs a Harness around the provided packer.
func New(packer packing.Packer, opts ...Option) *Harness {
	h := &Harness{
		packer: packer,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type totals struct {
	elapsed     time.Duration
	bins        int
	utilization float64
}

// Run executes the sweep described by cfg. Zero-valued fields fall back to
// DefaultConfig. The exact solver is reported as skipped for sizes above
// packing.MaxExactItems; any other packing failure aborts the run.
func (h *Harness) Run(ctx context.Context, cfg Config) (Report, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return Report{}, err
	}

	started := h.now()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	series := make([]Series, len(cfg.Strategies))
	for i, s := range cfg.Strategies {
		series[i] = Series{Strategy: s, Points: make([]Point, 0, len(cfg.Sizes))}
	}

	for _, n := range cfg.Sizes {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		acc := make([]totals, len(cfg.Strategies))
		for trial := 0; trial < cfg.Trials; trial++ {
			items := generateItems(rng, n, cfg.MinItem, cfg.MaxItem)
			for i, s := range cfg.Strategies {
				if skipped(s, n) {
					continue
				}
				start := h.now()
				result, err := h.packer.Pack(ctx, items, cfg.Capacity, s)
				if err != nil {
					return Report{}, fmt.Errorf("pack %d items with %s: %w", n, s, err)
				}
				acc[i].elapsed += h.now().Sub(start)
				acc[i].bins += result.Bins()
				acc[i].utilization += result.Utilization(cfg.Capacity)
			}
		}

		trials := float64(cfg.Trials)
		for i, s := range cfg.Strategies {
			point := Point{N: n}
			if skipped(s, n) {
				point.Skipped = true
			} else {
				point.MeanTime = acc[i].elapsed / time.Duration(cfg.Trials)
				point.MeanBins = float64(acc[i].bins) / trials
				point.MeanUtilization = acc[i].utilization / trials
			}
			series[i].Points = append(series[i].Points, point)
		}

		h.logger.Debug("benchmark size completed",
			zap.Int("n", n),
			zap.Int("trials", cfg.Trials),
		)
	}

	return Report{
		Capacity: cfg.Capacity,
		Trials:   cfg.Trials,
		Seed:     cfg.Seed,
		Elapsed:  h.now().Sub(started),
		Series:   series,
	}, nil
}

func skipped(s packing.Strategy, n int) bool {
	return s == packing.StrategyExact && n > packing.MaxExactItems
}

func generateItems(rng *rand.Rand, n int, lo, hi float64) []float64 {
	items := make([]float64, n)
	for i := range items {
		items[i] = lo + rng.Float64()*(hi-lo)
	}
	return items
}

func normalize(cfg Config) (Config, error) {
	if cfg.Capacity == 0 {
		cfg.Capacity = packing.DefaultCapacity
	}
	if cfg.Trials == 0 {
		cfg.Trials = defaultTrials
	}
	if cfg.MinItem == 0 {
		cfg.MinItem = defaultMinItem * cfg.Capacity
	}
	if cfg.MaxItem == 0 {
		cfg.MaxItem = defaultMaxItem * cfg.Capacity
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = DefaultSizes()
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = packing.Strategies()
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if !(cfg.Capacity > 0) || math.IsInf(cfg.Capacity, 0) {
		return fmt.Errorf("%w: capacity must be a positive finite number, got %g", ErrInvalidConfig, cfg.Capacity)
	}
	if cfg.Trials < 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, cfg.Trials)
	}
	if !(cfg.MinItem > 0) || cfg.MinItem > cfg.MaxItem || cfg.MaxItem > cfg.Capacity {
		return fmt.Errorf("%w: item range [%g, %g] must lie within (0, %g]", ErrInvalidConfig, cfg.MinItem, cfg.MaxItem, cfg.Capacity)
	}
	for _, n := range cfg.Sizes {
		if n <= 0 {
			return fmt.Errorf("%w: sizes must be positive, got %d", ErrInvalidConfig, n)
		}
	}
	for _, s := range cfg.Strategies {
		if !s.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, s)
		}
	}
	return nil
}
