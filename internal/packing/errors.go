package packing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem is returned when an item size is not within (0, capacity].
	ErrInvalidItem = errors.New("item size must be positive and not exceed bin capacity")
	// ErrInvalidCapacity is returned when the bin capacity is not a positive finite number.
	ErrInvalidCapacity = errors.New("bin capacity must be a positive finite number")
	// ErrTooManyItems is returned when the exact solver is asked to pack more than MaxExactItems items.
	ErrTooManyItems = fmt.Errorf("exact solver accepts at most %d items", MaxExactItems)
	// ErrUnknownStrategy is returned when a strategy name cannot be resolved.
	ErrUnknownStrategy = errors.New("unknown packing strategy")
)

// ItemError reports the offending item of a rejected sequence.
type ItemError struct {
	Index    int
	Size     float64
	Capacity float64
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d has size %g, want 0 < size <= %g", e.Index, e.Size, e.Capacity)
}

// Unwrap allows errors.Is(err, ErrInvalidItem).
func (e *ItemError) Unwrap() error {
	return ErrInvalidItem
}
