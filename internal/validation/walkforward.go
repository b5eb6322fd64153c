package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
)

// WalkForwardConfig controls out-of-sample slicing over signal dates
type WalkForwardConfig struct {
	MinTrainSize    int  `yaml:"min_train_size" json:"min_train_size"`
	TestSize        int  `yaml:"test_size" json:"test_size"`
	StepSize        int  `yaml:"step_size" json:"step_size"` // 0 = TestSize
	ExpandingWindow bool `yaml:"expanding_window" json:"expanding_window"`
	MaxSlices       int  `yaml:"max_slices" json:"max_slices"` // 0 = unlimited
}

// DefaultWalkForwardConfig returns an expanding 20/5/5 configuration
func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{MinTrainSize: 20, TestSize: 5, StepSize: 5, ExpandingWindow: true}
}

// Validate rejects unusable configurations
func (c WalkForwardConfig) Validate() error {
	if c.MinTrainSize < 1 {
		return fmt.Errorf("min_train_size must be >= 1, got %d", c.MinTrainSize)
	}
	if c.TestSize < 1 {
		return fmt.Errorf("test_size must be >= 1, got %d", c.TestSize)
	}
	if c.StepSize < 0 || c.MaxSlices < 0 {
		return fmt.Errorf("step_size and max_slices must be >= 0")
	}
	return nil
}

// WalkForwardSlices partitions dates into train/test slices in time order.
// Test windows never overlap (the effective step is at least TestSize) and always
// start after their training window ends. Too little history yields an empty result.
func WalkForwardSlices(dates []time.Time, cfg WalkForwardConfig) ([]contracts.WalkForwardSlice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	days := uniqueSortedDays(dates)
	step := cfg.StepSize
	if step < cfg.TestSize {
		step = cfg.TestSize
	}

	slices := []contracts.WalkForwardSlice{}
	for trainEnd := cfg.MinTrainSize; trainEnd+cfg.TestSize <= len(days); trainEnd += step {
		if cfg.MaxSlices > 0 && len(slices) >= cfg.MaxSlices {
			break
		}

		trainStart := 0
		if !cfg.ExpandingWindow {
			trainStart = trainEnd - cfg.MinTrainSize
		}
		train := append([]time.Time(nil), days[trainStart:trainEnd]...)
		test := append([]time.Time(nil), days[trainEnd:trainEnd+cfg.TestSize]...)

		slices = append(slices, contracts.WalkForwardSlice{
			SliceID:    len(slices) + 1,
			TrainStart: train[0],
			TrainEnd:   train[len(train)-1],
			TestStart:  test[0],
			TestEnd:    test[len(test)-1],
			TrainDates: train,
			TestDates:  test,
		})
	}
	return slices, nil
}

// uniqueSortedDays truncates to calendar days (UTC), dedupes and sorts ascending
func uniqueSortedDays(dates []time.Time) []time.Time {
	seen := make(map[string]time.Time, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		seen[day.Format(contracts.DateLayout)] = day
	}

	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
