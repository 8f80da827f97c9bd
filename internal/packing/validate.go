package packing

import "math"

// Tolerance absorbs floating-point rounding when comparing bin fill levels
// against capacity.
const Tolerance = 1e-9

// IsValidBin reports whether the summed size of binItems does not exceed capacity.
// It is a verification helper and is never consulted by the strategies.
func IsValidBin(binItems []float64, capacity float64) bool {
	var sum float64
	for _, item := range binItems {
		sum += item
	}
	return sum <= capacity+Tolerance
}

func fits(fill, item, capacity float64) bool {
	return fill+item <= capacity+Tolerance
}

func validateCapacity(capacity float64) error {
	if capacity <= 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return ErrInvalidCapacity
	}
	return nil
}

// validateItems rejects the sequence before any placement happens.
func validateItems(items []float64, capacity float64) error {
	if err := validateCapacity(capacity); err != nil {
		return err
	}
	for i, item := range items {
		if !(item > 0) || item > capacity || math.IsInf(item, 0) {
			return &ItemError{Index: i, Size: item, Capacity: capacity}
		}
	}
	return nil
}
