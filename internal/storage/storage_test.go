package storage

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/eugenenazirov/binpacking/internal/packing"
)

func TestNewMemoryStorageReturnsDefaultSettings(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := DefaultSettings(); got != want {
		t.Fatalf("expected default settings %+v, got %+v", want, got)
	}
}

func TestSetSettingsUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	if err := store.SetSettings(Settings{Capacity: 2.5, Strategy: "BFD"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Settings{Capacity: 2.5, Strategy: packing.StrategyBestFitDecreasing}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSetSettingsRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		settings Settings
		wantErr  error
	}{
		{Settings{Capacity: 0, Strategy: packing.StrategyFirstFit}, ErrInvalidCapacity},
		{Settings{Capacity: -1, Strategy: packing.StrategyFirstFit}, ErrInvalidCapacity},
		{Settings{Capacity: math.NaN(), Strategy: packing.StrategyFirstFit}, ErrInvalidCapacity},
		{Settings{Capacity: math.Inf(1), Strategy: packing.StrategyFirstFit}, ErrInvalidCapacity},
		{Settings{Capacity: 1, Strategy: ""}, ErrInvalidStrategy},
		{Settings{Capacity: 1, Strategy: "worst-fit"}, ErrInvalidStrategy},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetSettings(tc.settings); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v for %+v, got %v", tc.wantErr, tc.settings, err)
			}

			got, _ := store.GetSettings()
			if got != DefaultSettings() {
				t.Fatalf("rejected update must not change settings, got %+v", got)
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			settings := Settings{Capacity: 1 + float64(offset), Strategy: packing.StrategyBestFit}
			if err := store.SetSettings(settings); err != nil {
				t.Errorf("SetSettings failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetSettings(); err != nil {
				t.Errorf("GetSettings failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetSettings(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
