package validation

import "math"

// z95 is the two-sided 95% normal quantile
const z95 = 1.959963984540054

// WilsonInterval returns the 95% Wilson score interval for hits/total.
// total = 0 yields exactly (0, 0).
func WilsonInterval(hits, total int) (low, high float64) {
	if total <= 0 {
		return 0, 0
	}

	n := float64(total)
	p := float64(hits) / n
	z2 := z95 * z95

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z95 * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	return math.Max(0, center-margin), math.Min(1, center+margin)
}

// HitRate is a hit rate with its Wilson interval
type HitRate struct {
	Hits              int     `json:"hits"`
	Total             int     `json:"total"`
	Rate              float64 `json:"rate"`
	Low               float64 `json:"ci_low"`
	High              float64 `json:"ci_high"`
	SampleSizeWarning bool    `json:"sample_size_warning"`
}

// ComputeHitRate builds a HitRate; SampleSizeWarning is set when total < minSample
func ComputeHitRate(hits, total, minSample int) HitRate {
	hr := HitRate{Hits: hits, Total: total, SampleSizeWarning: total < minSample}
	if total > 0 {
		hr.Rate = float64(hits) / float64(total)
	}
	hr.Low, hr.High = WilsonInterval(hits, total)
	return hr
}
