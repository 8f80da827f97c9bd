package packing

import (
	"context"
	"math"
	"slices"
)

// MaxExactItems bounds the input size of the exact solver. The search is
// exponential in the number of items.
const MaxExactItems = 10

// checkEvery controls how often the search polls the context.
const checkEvery = 1024

// ExactPack returns a packing with the minimum number of bins by exhaustive
// branch-and-bound search over the given item order. It fails with
// ErrTooManyItems for more than MaxExactItems items and returns the context
// error if ctx is done before the search completes.
func ExactPack(ctx context.Context, items []float64, capacity float64) (Result, error) {
	if err := validateItems(items, capacity); err != nil {
		return nil, err
	}
	if len(items) > MaxExactItems {
		return nil, ErrTooManyItems
	}

	s := newExactSearch(ctx, items, capacity)
	if err := s.search(0); err != nil {
		return nil, err
	}
	return s.best, nil
}

// exactSearch owns the mutable state of one solver invocation.
type exactSearch struct {
	ctx      context.Context
	items    []float64
	capacity float64

	// lowerBound is ceil(sum/capacity); reaching it ends the search.
	lowerBound int

	// bins holds the in-progress fill levels. Every branch restores it
	// before returning.
	bins []float64

	// best is the incumbent: the fewest-bin complete packing seen so far.
	best Result

	steps int
}

func newExactSearch(ctx context.Context, items []float64, capacity float64) *exactSearch {
	var sum float64
	for _, item := range items {
		sum += item
	}
	lb := int(math.Ceil(sum/capacity - Tolerance))
	if lb < 0 {
		lb = 0
	}

	// One bin per item is always feasible and seeds the incumbent.
	best := make(Result, len(items))
	copy(best, items)

	return &exactSearch{
		ctx:        ctx,
		items:      items,
		capacity:   capacity,
		lowerBound: lb,
		bins:       make([]float64, 0, len(items)),
		best:       best,
	}
}

func (s *exactSearch) search(next int) error {
	if err := s.checkContext(); err != nil {
		return err
	}
	if len(s.bins) >= len(s.best) || len(s.best) <= s.lowerBound {
		return nil
	}
	if next == len(s.items) {
		s.best = slices.Clone(s.bins)
		return nil
	}

	item := s.items[next]
	for i := range s.bins {
		if !fits(s.bins[i], item, s.capacity) {
			continue
		}
		if err := s.addToBin(i, item, next); err != nil {
			return err
		}
	}
	return s.openBin(item, next)
}

func (s *exactSearch) addToBin(i int, item float64, next int) error {
	prev := s.bins[i]
	s.bins[i] = prev + item
	defer func() { s.bins[i] = prev }()

	return s.search(next + 1)
}

func (s *exactSearch) openBin(item float64, next int) error {
	s.bins = append(s.bins, item)
	defer func() { s.bins = s.bins[:len(s.bins)-1] }()

	return s.search(next + 1)
}

func (s *exactSearch) checkContext() error {
	s.steps++
	if s.ctx == nil || s.steps%checkEvery != 1 {
		return nil
	}
	return s.ctx.Err()
}
