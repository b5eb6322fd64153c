package s3_classify

import (
	"fmt"

	"github.com/wonny/themeradar/internal/contracts"
)

// RankOptions controls report selection
type RankOptions struct {
	TopN              int // ≤ 0 keeps every eligible theme
	MinRecentMentions int // eligibility floor on mentions_L
}

// RankThemes joins scores (already sorted desc) with metrics and definitions, drops
// ineligible themes, keeps the top N and classifies each with its 1-based rank.
// Fails with ErrInsufficientEvidence when fewer than TopN themes are eligible.
func RankThemes(
	result *contracts.MetricsResult,
	scores []contracts.ThemeScore,
	themes []contracts.ThemeDefinition,
	opts RankOptions,
) ([]contracts.RankedTheme, error) {
	defs := make(map[string]contracts.ThemeDefinition, len(themes))
	for _, t := range themes {
		defs[t.ThemeID] = t
	}

	type candidate struct {
		def     contracts.ThemeDefinition
		metrics contracts.ThemeMetrics
		score   contracts.ThemeScore
	}
	eligible := make([]candidate, 0, len(scores))
	for _, s := range scores {
		m, ok := result.Get(s.ThemeID)
		if !ok {
			continue
		}
		if m.MentionsRecent < opts.MinRecentMentions {
			continue
		}
		eligible = append(eligible, candidate{def: defs[s.ThemeID], metrics: *m, score: s})
	}

	want := opts.TopN
	if want <= 0 {
		want = len(eligible)
	}
	if len(eligible) == 0 || len(eligible) < want {
		return nil, fmt.Errorf("%w: %d eligible themes (min %d recent mentions), need %d",
			contracts.ErrInsufficientEvidence, len(eligible), opts.MinRecentMentions, max(want, 1))
	}

	selected := eligible[:want]
	ranked := make([]contracts.RankedTheme, len(selected))
	for i, c := range selected {
		rank := i + 1
		ranked[i] = contracts.RankedTheme{
			Rank:           rank,
			Theme:          c.def,
			Metrics:        c.metrics,
			Score:          c.score,
			Classification: Classify(c.metrics, c.score, rank, len(selected)),
		}
	}
	return ranked, nil
}
