package packing

import (
	"cmp"
	"math"
	"slices"
)

// NextFit keeps a single open bin. Each item goes into it when it fits,
// otherwise a new bin is opened and becomes the current one. Closed bins are
// never revisited.
func NextFit(items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}

	bins := make(Result, 0, len(items))
	for _, item := range items {
		last := len(bins) - 1
		if last >= 0 && fits(bins[last], item, capacity) {
			bins[last] += item
			continue
		}
		bins = append(bins, item)
	}
	return bins, nil
}

// FirstFit places each item into the earliest-opened bin with enough room,
// opening a new bin when none qualifies.
func FirstFit(items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}
	return firstFit(items, capacity), nil
}

// BestFit places each item into the bin that would be left with the least
// remaining capacity. Ties go to the earliest-opened bin.
func BestFit(items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}
	return bestFit(items, capacity), nil
}

// FirstFitDecreasing runs First Fit over the items sorted by size, largest first.
// The caller's slice is left untouched.
func FirstFitDecreasing(items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}
	return firstFit(sortDescending(items), capacity), nil
}

// BestFitDecreasing runs Best Fit over the items sorted by size, largest first.
// The caller's slice is left untouched.
func BestFitDecreasing(items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}
	return bestFit(sortDescending(items), capacity), nil
}

func firstFit(items []float64, capacity float64) Result {
	bins := make(Result, 0, len(items))
	for _, item := range items {
		placed := false
		for i := range bins {
			if fits(bins[i], item, capacity) {
				bins[i] += item
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, item)
		}
	}
	return bins
}

func bestFit(items []float64, capacity float64) Result {
	bins := make(Result, 0, len(items))
	for _, item := range items {
		best := -1
		minSpace := math.Inf(1)
		for i, fill := range bins {
			space := capacity - fill
			if fits(fill, item, capacity) && space < minSpace {
				best = i
				minSpace = space
			}
		}
		if best >= 0 {
			bins[best] += item
			continue
		}
		bins = append(bins, item)
	}
	return bins
}

func sortDescending(items []float64) []float64 {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b float64) int {
		return cmp.Compare(b, a)
	})
	return sorted
}
