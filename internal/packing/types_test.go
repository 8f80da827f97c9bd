package packing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := map[string]Strategy{
		"next-fit":             StrategyNextFit,
		"  First-Fit ":         StrategyFirstFit,
		"best_fit":             StrategyBestFit,
		"FFD":                  StrategyFirstFitDecreasing,
		"bfd":                  StrategyBestFitDecreasing,
		"best-fit-decreasing":  StrategyBestFitDecreasing,
		"brute-force":          StrategyExact,
		"exact":                StrategyExact,
		"first-fit-decreasing": StrategyFirstFitDecreasing,
	}
	for raw, want := range tests {
		got, err := ParseStrategy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStrategy("worst-fit")
	require.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "worst-fit")

	_, err = ParseStrategy("")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategyMetadata(t *testing.T) {
	t.Parallel()

	all := Strategies()
	require.Len(t, all, 6)
	assert.Equal(t, StrategyNextFit, all[0])

	all[0] = "mutated"
	assert.Equal(t, StrategyNextFit, Strategies()[0], "Strategies must return a copy")

	assert.True(t, StrategyBestFit.Heuristic())
	assert.False(t, StrategyExact.Heuristic())
	assert.False(t, Strategy("unknown").Heuristic())

	assert.Equal(t, []string{"ffd"}, StrategyFirstFitDecreasing.Aliases())
	assert.Equal(t, []string{"brute-force"}, StrategyExact.Aliases())
	assert.Equal(t, "best-fit", StrategyBestFit.String())
}

func TestResultAggregates(t *testing.T) {
	t.Parallel()

	r := Result{0.8, 1.0}
	assert.Equal(t, 2, r.Bins())
	assert.InDelta(t, 1.8, r.Total(), delta)
	assert.InDelta(t, 0.9, r.Utilization(1.0), delta)
	assert.InDelta(t, 0.45, r.Utilization(2.0), delta)

	assert.Zero(t, Result{}.Utilization(1.0))
	assert.Zero(t, r.Utilization(0))
}

func TestIsValidBin(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidBin([]float64{0.5, 0.3}, 1.0))
	assert.True(t, IsValidBin([]float64{0.4, 0.6}, 1.0))
	assert.True(t, IsValidBin([]float64{0.1, 0.2, 0.7}, 1.0), "rounding error must not invalidate a full bin")
	assert.True(t, IsValidBin(nil, 1.0))
	assert.False(t, IsValidBin([]float64{0.5, 0.6}, 1.0))
	assert.False(t, IsValidBin([]float64{1.5}, 1.0))
}

func TestItemError(t *testing.T) {
	t.Parallel()

	err := validateItems([]float64{0.2, 0.3, 2}, 1.0)
	require.ErrorIs(t, err, ErrInvalidItem)
	assert.Equal(t, "item 2 has size 2, want 0 < size <= 1", err.Error())
}
