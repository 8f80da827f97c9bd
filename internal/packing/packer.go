package packing

import "context"

type packer struct{}

// New creates a Packer that dispatches to the strategy implementations of this package.
func New() Packer {
	return &packer{}
}

func (p *packer) Pack(ctx context.Context, items []float64, capacity float64, strategy Strategy) (Result, error) {
	return Pack(ctx, items, capacity, strategy)
}

// Pack validates the request and packs items with the given strategy.
// Only the exact solver observes ctx; the heuristics run to completion.
func Pack(ctx context.Context, items []float64, capacity float64, strategy Strategy) (Result, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}
	if !strategy.Valid() {
		return nil, &strategyError{name: string(strategy)}
	}

	switch strategy {
	case StrategyNextFit:
		return NextFit(items, capacity)
	case StrategyFirstFit:
		return FirstFit(items, capacity)
	case StrategyBestFit:
		return BestFit(items, capacity)
	case StrategyFirstFitDecreasing:
		return FirstFitDecreasing(items, capacity)
	case StrategyBestFitDecreasing:
		return BestFitDecreasing(items, capacity)
	default:
		return ExactPack(ctx, items, capacity)
	}
}
