package validation

import (
	"fmt"
	"math"
	"sync"

	"github.com/wonny/themeradar/internal/contracts"
)

// relativeTolerance treats outcomes within 1e-7 of the observed pmf as equally extreme
const relativeTolerance = 1 + 1e-7

// Binomial runs exact binomial tests over a lazily grown log-factorial table.
// Safe for concurrent use.
type Binomial struct {
	mu      sync.Mutex
	logFact []float64 // logFact[k] = ln(k!)
}

// NewBinomial creates a tester with an empty table
func NewBinomial() *Binomial {
	return &Binomial{logFact: []float64{0}}
}

func (b *Binomial) lnFactorial(n int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := len(b.logFact); k <= n; k++ {
		b.logFact = append(b.logFact, b.logFact[k-1]+math.Log(float64(k)))
	}
	return b.logFact[n]
}

// pmf is P(X = k) for X ~ Binomial(n, p)
func (b *Binomial) pmf(k, n int, p float64) float64 {
	switch p {
	case 0:
		if k == 0 {
			return 1
		}
		return 0
	case 1:
		if k == n {
			return 1
		}
		return 0
	}
	lnC := b.lnFactorial(n) - b.lnFactorial(k) - b.lnFactorial(n-k)
	return math.Exp(lnC + float64(k)*math.Log(p) + float64(n-k)*math.Log(1-p))
}

// TwoSided returns the exact two-sided p-value of observing hits out of total under
// Binomial(total, p0): the mass of every outcome no more likely than the observed one.
func (b *Binomial) TwoSided(hits, total int, p0 float64) (float64, error) {
	if math.IsNaN(p0) || p0 < 0 || p0 > 1 {
		return 0, fmt.Errorf("%w: p0=%v", contracts.ErrInvalidProbability, p0)
	}
	if total < 0 || hits < 0 || hits > total {
		return 0, fmt.Errorf("invalid binomial counts: hits=%d total=%d", hits, total)
	}
	if total == 0 {
		return 1, nil
	}

	observed := b.pmf(hits, total, p0) * relativeTolerance
	sum := 0.0
	for k := 0; k <= total; k++ {
		if pk := b.pmf(k, total, p0); pk <= observed {
			sum += pk
		}
	}
	return math.Min(1, sum), nil
}
