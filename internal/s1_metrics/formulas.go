package s1_metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/s0_docs"
)

// growthEpsilon keeps the ratio finite when the baseline is empty
const growthEpsilon = 1e-6

const snippetRunes = 200

// GrowthRatio returns min((cur+ε)/(base+ε), cap) and whether the cap was exceeded
func GrowthRatio(currentRate, baselineRate, ceiling float64) (float64, bool) {
	uncapped := (currentRate + growthEpsilon) / (baselineRate + growthEpsilon)
	if uncapped > ceiling {
		return ceiling, true
	}
	return uncapped, false
}

// Slope is the OLS slope of counts against day index 0..n-1.
// Returns 0 for n = 0 or a degenerate denominator.
func Slope(counts []int) float64 {
	n := float64(len(counts))
	if n == 0 {
		return 0
	}

	var sx, sy, sxy, sxx float64
	for i, c := range counts {
		x, y := float64(i), float64(c)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}

	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / denom
}

// Concentration is the share of recent mentions held by the topN busiest posts (0 when none)
func Concentration(perPost map[string]int, total, topN int) float64 {
	if total == 0 || len(perPost) == 0 {
		return 0
	}

	counts := make([]int, 0, len(perPost))
	for _, c := range perPost {
		counts = append(counts, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	if topN > len(counts) {
		topN = len(counts)
	}
	sum := 0
	for _, c := range counts[:topN] {
		sum += c
	}
	return float64(sum) / float64(total)
}

// Confirmation = clamp(0, 1, unique/divisor − concentration)
func Confirmation(uniqueSubreddits int, concentration, divisor float64) float64 {
	v := float64(uniqueSubreddits)/divisor - concentration
	return math.Max(0, math.Min(1, v))
}

// KeyTickers lists seeds first, then discovered tickers by frequency (ties alphabetical).
// Everything is re-validated against the ticker rule and deduplicated.
func KeyTickers(seeds []string, freq map[string]int, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{})

	push := func(t string) bool {
		if len(out) >= limit {
			return false
		}
		if _, dup := seen[t]; dup || !s0_docs.IsValidTicker(t) {
			return true
		}
		seen[t] = struct{}{}
		out = append(out, t)
		return true
	}

	for _, s := range seeds {
		if !push(strings.ToUpper(strings.TrimPrefix(s, "$"))) {
			return out
		}
	}

	discovered := make([]string, 0, len(freq))
	for t := range freq {
		discovered = append(discovered, t)
	}
	sort.Slice(discovered, func(i, j int) bool {
		if freq[discovered[i]] != freq[discovered[j]] {
			return freq[discovered[i]] > freq[discovered[j]]
		}
		return discovered[i] < discovered[j]
	})
	for _, t := range discovered {
		if !push(t) {
			break
		}
	}
	return out
}

// EvidenceLinks ranks posts (score desc, newest first) ahead of comments (newest first),
// dedupes by permalink and truncates to limit
func EvidenceLinks(docs []contracts.Document, limit int) []contracts.EvidenceLink {
	var posts, comments []contracts.Document
	for _, d := range docs {
		if d.IsComment {
			comments = append(comments, d)
		} else {
			posts = append(posts, d)
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Score != posts[j].Score {
			return posts[i].Score > posts[j].Score
		}
		return posts[i].CreatedUTC > posts[j].CreatedUTC
	})
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedUTC > comments[j].CreatedUTC
	})

	out := make([]contracts.EvidenceLink, 0, limit)
	seen := make(map[string]struct{})
	for _, d := range append(posts, comments...) {
		if len(out) >= limit {
			break
		}
		if d.Permalink == "" {
			continue
		}
		if _, dup := seen[d.Permalink]; dup {
			continue
		}
		seen[d.Permalink] = struct{}{}
		out = append(out, contracts.EvidenceLink{
			Permalink:  d.Permalink,
			Subreddit:  d.Subreddit,
			Score:      d.Score,
			CreatedUTC: d.CreatedUTC,
			IsComment:  d.IsComment,
			Snippet:    snippet(d.Text),
		})
	}
	return out
}

func snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	r := []rune(flat)
	if len(r) <= snippetRunes {
		return flat
	}
	return string(r[:snippetRunes]) + "…"
}
