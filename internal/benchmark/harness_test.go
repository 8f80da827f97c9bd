package benchmark

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/binpacking/internal/packing"
)

type failingPacker struct {
	err error
}

func (f failingPacker) Pack(context.Context, []float64, float64, packing.Strategy) (packing.Result, error) {
	return nil, f.err
}

func smallConfig() Config {
	return Config{
		Sizes:    []int{5, 10, 40},
		Trials:   3,
		Capacity: 1.0,
		MinItem:  0.1,
		MaxItem:  1.0,
		Seed:     99,
	}
}

func TestRunProducesSeriesForEveryStrategy(t *testing.T) {
	t.Parallel()

	h := New(packing.New(), WithLogger(zaptest.NewLogger(t)))
	report, err := h.Run(context.Background(), smallConfig())
	require.NoError(t, err)

	require.Len(t, report.Series, len(packing.Strategies()))
	assert.Equal(t, 3, report.Trials)
	assert.Equal(t, uint64(99), report.Seed)

	for _, series := range report.Series {
		require.Len(t, series.Points, 3, series.Strategy)
		for i, point := range series.Points {
			assert.Equal(t, smallConfig().Sizes[i], point.N)
			if point.Skipped {
				continue
			}
			assert.Greater(t, point.MeanBins, 0.0)
			assert.Greater(t, point.MeanUtilization, 0.0)
			assert.LessOrEqual(t, point.MeanUtilization, 1.0+packing.Tolerance)
			assert.GreaterOrEqual(t, point.MeanTime, time.Duration(0))
		}
	}
}

func TestRunSkipsExactSolverAboveLimit(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Strategies = []packing.Strategy{packing.StrategyExact, packing.StrategyFirstFitDecreasing}

	report, err := New(packing.New()).Run(context.Background(), cfg)
	require.NoError(t, err)

	exact := report.Series[0]
	assert.False(t, exact.Points[0].Skipped, "n=5")
	assert.False(t, exact.Points[1].Skipped, "n=10")
	assert.True(t, exact.Points[2].Skipped, "n=40")
	assert.Zero(t, exact.Points[2].MeanBins)

	ffd := report.Series[1]
	for _, point := range ffd.Points {
		assert.False(t, point.Skipped)
	}
	assert.LessOrEqual(t, exact.Points[0].MeanBins, ffd.Points[0].MeanBins)
	assert.LessOrEqual(t, exact.Points[1].MeanBins, ffd.Points[1].MeanBins)
}

func TestRunIsReproducibleBySeed(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Strategies = []packing.Strategy{packing.StrategyNextFit, packing.StrategyBestFit}

	first, err := New(packing.New()).Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := New(packing.New()).Run(context.Background(), cfg)
	require.NoError(t, err)

	for i := range first.Series {
		for j := range first.Series[i].Points {
			a, b := first.Series[i].Points[j], second.Series[i].Points[j]
			assert.Equal(t, a.MeanBins, b.MeanBins)
			assert.Equal(t, a.MeanUtilization, b.MeanUtilization)
		}
	}
}

func TestRunAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := normalize(Config{Sizes: []int{10}})
	require.NoError(t, err)
	assert.Equal(t, defaultTrials, cfg.Trials)
	assert.Equal(t, packing.DefaultCapacity, cfg.Capacity)
	assert.Equal(t, defaultMinItem, cfg.MinItem)
	assert.Equal(t, defaultMaxItem, cfg.MaxItem)
	assert.Equal(t, packing.Strategies(), cfg.Strategies)

	cfg, err = normalize(Config{Capacity: 10})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.MinItem)
	assert.Equal(t, 10.0, cfg.MaxItem)
	assert.Equal(t, DefaultSizes(), cfg.Sizes)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]Config{
		"negative capacity": {Capacity: -1},
		"infinite capacity": {Capacity: math.Inf(1)},
		"negative trials":   {Trials: -2},
		"zero size":         {Sizes: []int{10, 0}},
		"items too large":   {Capacity: 1, MinItem: 0.5, MaxItem: 1.5},
		"inverted range":    {MinItem: 0.8, MaxItem: 0.2},
		"negative min":      {MinItem: -0.1, MaxItem: 0.5},
		"unknown strategy":  {Strategies: []packing.Strategy{"worst-fit"}},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(packing.New()).Run(context.Background(), cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRunPropagatesPackErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cfg := smallConfig()
	cfg.Strategies = []packing.Strategy{packing.StrategyFirstFit}

	_, err := New(failingPacker{err: boom}).Run(context.Background(), cfg)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first-fit")
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(packing.New()).Run(ctx, smallConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunUsesInjectedClock(t *testing.T) {
	t.Parallel()

	var ticks int64
	clock := func() time.Time {
		ticks++
		return time.Unix(0, ticks*int64(time.Millisecond))
	}

	cfg := smallConfig()
	cfg.Sizes = []int{10}
	cfg.Trials = 2
	cfg.Strategies = []packing.Strategy{packing.StrategyNextFit}

	report, err := New(packing.New(), WithClock(clock)).Run(context.Background(), cfg)
	require.NoError(t, err)

	// Each measured pack spans exactly one tick.
	assert.Equal(t, time.Millisecond, report.Series[0].Points[0].MeanTime)
	assert.Equal(t, 5*time.Millisecond, report.Elapsed)
}

func TestDefaultSizes(t *testing.T) {
	t.Parallel()

	sizes := DefaultSizes()
	require.Len(t, sizes, 20)
	assert.Equal(t, 10, sizes[0])
	assert.Equal(t, 960, sizes[len(sizes)-1])
}
