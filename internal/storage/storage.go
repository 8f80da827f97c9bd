package storage

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/eugenenazirov/binpacking/internal/packing"
)

var (
	// ErrInvalidCapacity indicates the provided default capacity is not a positive finite number.
	ErrInvalidCapacity = errors.New("capacity must be a positive finite number")
	// ErrInvalidStrategy indicates the provided default strategy is unknown.
	ErrInvalidStrategy = errors.New("strategy must name a supported packing strategy")
)

// Settings holds the defaults applied to pack requests that omit them.
type Settings struct {
	Capacity float64
	Strategy packing.Strategy
}

// Storage provides access to the packing defaults used by the service.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
}

// MemoryStorage keeps settings in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStorage initialises storage with the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// DefaultSettings returns unit capacity with First-Fit-Decreasing.
func DefaultSettings() Settings {
	return Settings{
		Capacity: packing.DefaultCapacity,
		Strategy: packing.StrategyFirstFitDecreasing,
	}
}

// GetSettings returns the currently configured settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings, nil
}

// SetSettings validates, normalises, and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	normalized, err := normalizeSettings(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = normalized
	s.mu.Unlock()

	return nil
}

func normalizeSettings(settings Settings) (Settings, error) {
	if !(settings.Capacity > 0) || math.IsInf(settings.Capacity, 0) {
		return Settings{}, fmt.Errorf("%w: got %g", ErrInvalidCapacity, settings.Capacity)
	}

	strategy, err := packing.ParseStrategy(string(settings.Strategy))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, settings.Strategy)
	}

	return Settings{Capacity: settings.Capacity, Strategy: strategy}, nil
}
