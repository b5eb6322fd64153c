package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
)

// MemoryStore is an in-process PredictionStore used by tests and the dry-run CLI path
type MemoryStore struct {
	mu     sync.Mutex
	rows   []contracts.SignalPrediction
	keys   map[string]int // Key() → index in rows
	nextID int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]int), nextID: 1}
}

// InsertIfAbsent stores rows whose (signal_date, theme_id) is not yet present
func (s *MemoryStore) InsertIfAbsent(ctx context.Context, rows []contracts.SignalPrediction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, r := range rows {
		key := r.Key()
		if _, exists := s.keys[key]; exists {
			continue
		}
		r.ID = s.nextID
		s.nextID++
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		s.keys[key] = len(s.rows)
		s.rows = append(s.rows, r)
		inserted++
	}
	return inserted, nil
}

// UpdateEvaluation writes the evaluation of a pending row; a second write fails with ErrNotPending
func (s *MemoryStore) UpdateEvaluation(ctx context.Context, id int64, eval contracts.PredictionEvaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		r := &s.rows[i]
		if r.ID != id {
			continue
		}
		if r.IsEvaluated() {
			return fmt.Errorf("prediction %d: %w", id, ErrNotPending)
		}
		at := eval.EvaluatedAt
		r.ExitPrice = eval.ExitPrice
		r.ExitPriceDate = eval.ExitPriceDate
		r.ReturnPct = eval.ReturnPct
		r.Hit = eval.Hit
		r.EvaluationNote = eval.Note
		r.EvaluatedAt = &at
		return nil
	}
	return fmt.Errorf("prediction %d: %w", id, ErrNotPending)
}

// List returns copies of matching rows ordered by signal_date, rank
func (s *MemoryStore) List(ctx context.Context, filter contracts.PredictionFilter) ([]contracts.SignalPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]contracts.SignalPrediction, 0, len(s.rows))
	for _, r := range s.rows {
		if matches(&r, filter) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SignalDate.Equal(out[j].SignalDate) {
			return out[i].SignalDate.Before(out[j].SignalDate)
		}
		return out[i].Rank < out[j].Rank
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(r *contracts.SignalPrediction, f contracts.PredictionFilter) bool {
	if f.PendingOnly && r.IsEvaluated() {
		return false
	}
	if f.EvaluatedOnly && !r.IsEvaluated() {
		return false
	}
	if f.TargetFrom != nil && r.TargetDate.Before(*f.TargetFrom) {
		return false
	}
	if f.TargetTo != nil && r.TargetDate.After(*f.TargetTo) {
		return false
	}
	if f.Timing != "" && r.Timing != f.Timing {
		return false
	}
	if f.Confidence != "" && r.Confidence != f.Confidence {
		return false
	}
	return true
}
