package validation

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/themeradar/internal/contracts"
)

// Hypothesis is one member of a testing family
type Hypothesis struct {
	ID     string  `json:"id"`
	PValue float64 `json:"p_value"`
}

// HolmResult is the corrected outcome of one hypothesis
type HolmResult struct {
	ID       string  `json:"id"`
	PValue   float64 `json:"p_value"`
	Adjusted float64 `json:"adjusted_p_value"`
	Reject   bool    `json:"reject"`
}

// Holm applies the Holm step-down correction and returns results in input order.
// Duplicate IDs, p-values outside [0,1] (or NaN) and alpha outside (0,1) fail fast.
func Holm(hyps []Hypothesis, alpha float64) ([]HolmResult, error) {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: alpha=%v", contracts.ErrInvalidProbability, alpha)
	}

	seen := make(map[string]struct{}, len(hyps))
	for _, h := range hyps {
		if _, dup := seen[h.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate hypothesis id %q", contracts.ErrInvalidHypotheses, h.ID)
		}
		seen[h.ID] = struct{}{}
		if math.IsNaN(h.PValue) || h.PValue < 0 || h.PValue > 1 {
			return nil, fmt.Errorf("%w: hypothesis %q p=%v", contracts.ErrInvalidProbability, h.ID, h.PValue)
		}
	}

	m := len(hyps)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return hyps[order[a]].PValue < hyps[order[b]].PValue })

	results := make([]HolmResult, m)
	running := 0.0
	for j, idx := range order {
		adj := math.Min(1, float64(m-j)*hyps[idx].PValue)
		if adj > running {
			running = adj
		}
		results[idx] = HolmResult{
			ID:       hyps[idx].ID,
			PValue:   hyps[idx].PValue,
			Adjusted: running,
			Reject:   running <= alpha,
		}
	}
	return results, nil
}
