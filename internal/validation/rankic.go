package validation

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
)

// AverageRanks returns 1-based ranks; tied values share the mean of their positions
func AverageRanks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Pearson returns the correlation of x and y; ok is false when undefined
// (length mismatch, n < 2, or zero variance in either series)
func Pearson(x, y []float64) (r float64, ok bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// Spearman is the Pearson correlation of the average-rank transforms
func Spearman(x, y []float64) (float64, bool) {
	if len(x) != len(y) {
		return 0, false
	}
	return Pearson(AverageRanks(x), AverageRanks(y))
}

// DateIC is the rank-IC of one signal date
type DateIC struct {
	Date string  `json:"date"`
	IC   float64 `json:"ic"`
	N    int     `json:"n"`
}

// RankICByDate computes the Spearman IC between predicted rank and realized return per
// signal date. Rank 1 is the strongest prediction, so −rank is correlated: a positive IC
// means better-ranked themes returned more. Dates with < 2 resolved rows or an undefined
// correlation are skipped.
func RankICByDate(rows []contracts.SignalPrediction) []DateIC {
	type pair struct{ x, y []float64 }
	byDate := make(map[string]*pair)
	for i := range rows {
		r := &rows[i]
		if !r.IsResolved() || r.ReturnPct == nil {
			continue
		}
		key := r.SignalDate.Format(contracts.DateLayout)
		p, ok := byDate[key]
		if !ok {
			p = &pair{}
			byDate[key] = p
		}
		p.x = append(p.x, -float64(r.Rank))
		p.y = append(p.y, *r.ReturnPct)
	}

	out := make([]DateIC, 0, len(byDate))
	for date, p := range byDate {
		if len(p.x) < 2 {
			continue
		}
		ic, ok := Spearman(p.x, p.y)
		if !ok {
			continue
		}
		out = append(out, DateIC{Date: date, IC: ic, N: len(p.x)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ICSummary summarizes per-date ICs
type ICSummary struct {
	Dates         int     `json:"dates"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	Q1            float64 `json:"q1"`
	Q3            float64 `json:"q3"`
	IQR           float64 `json:"iqr"`
	PositiveShare float64 `json:"positive_share"`
}

// SummarizeIC returns mean/median/IQR of the IC series (zero value when empty)
func SummarizeIC(ics []DateIC) ICSummary {
	if len(ics) == 0 {
		return ICSummary{}
	}
	vals := make([]float64, len(ics))
	positive := 0
	for i, d := range ics {
		vals[i] = d.IC
		if d.IC > 0 {
			positive++
		}
	}

	s := ICSummary{
		Dates:         len(vals),
		Mean:          mean(vals),
		Median:        Quantile(vals, 0.5),
		Q1:            Quantile(vals, 0.25),
		Q3:            Quantile(vals, 0.75),
		PositiveShare: float64(positive) / float64(len(vals)),
	}
	s.IQR = s.Q3 - s.Q1
	return s
}

// Quantile uses linear interpolation between order statistics (q in [0,1])
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// datesOf returns the signal dates of rows
func datesOf(rows []contracts.SignalPrediction) []time.Time {
	out := make([]time.Time, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].SignalDate)
	}
	return out
}
