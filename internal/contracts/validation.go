package contracts

import "time"

// WalkForwardSlice is one out-of-sample train/test partition over signal dates.
// Derived, never persisted. max(TrainDates) < min(TestDates) always holds.
type WalkForwardSlice struct {
	SliceID    int         `json:"slice_id"`
	TrainStart time.Time   `json:"train_start"`
	TrainEnd   time.Time   `json:"train_end"`
	TestStart  time.Time   `json:"test_start"`
	TestEnd    time.Time   `json:"test_end"`
	TrainDates []time.Time `json:"train_dates"`
	TestDates  []time.Time `json:"test_dates"`
}
