package s1_metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

const day = int64(secondsPerDay)

// fixedScorer returns a canned score per text (0 otherwise)
type fixedScorer map[string]float64

func (f fixedScorer) Score(text string) float64 { return f[text] }

var defenseTheme = contracts.ThemeDefinition{
	ThemeID:      "defense",
	DisplayName:  "Defense",
	Keywords:     []string{"defense"},
	SeedTickers:  []string{"LMT", "RTX"},
	ProxyETF:     "ITA",
	RiskKeywords: []string{"budget"},
}

func newEngine(scores fixedScorer) *Engine {
	return NewEngine(scores, logger.Nop())
}

func TestComputeMetrics_SingleMentionHitsCap(t *testing.T) {
	docs := []contracts.Document{
		{ID: "p1", Subreddit: "stocks", CreatedUTC: 1_700_000_000, Text: "defense names look strong", PostID: "p1", Permalink: "/p1"},
	}

	res, err := newEngine(nil).ComputeMetrics(context.Background(), docs, []contracts.ThemeDefinition{defenseTheme}, DefaultOptions())
	require.NoError(t, err)

	m := res.Metrics[0]
	assert.Equal(t, 1, m.MentionsRecent)
	assert.Equal(t, 0.0, m.BaselineRate)
	assert.Equal(t, 25.0, m.GrowthRatio)
	assert.True(t, m.GrowthRatioCapped)
}

func TestComputeMetrics_Scenario(t *testing.T) {
	T := int64(1_700_000_000)
	docs := []contracts.Document{
		{ID: "p1", Subreddit: "stocks", CreatedUTC: T, Text: "Defense budget is rising, LMT", Score: 10, PostID: "p1", Permalink: "/p1"},
		{ID: "c1", Subreddit: "investing", CreatedUTC: T - 3600, Text: "defense is hot", PostID: "p1", Permalink: "/p1/c1", IsComment: true},
		{ID: "p2", Subreddit: "wallstreetbets", CreatedUTC: T - 2*day, Text: "RTX contract win", Score: 50, PostID: "p2", Permalink: "/p2"},
		{ID: "p3", Subreddit: "stocks", CreatedUTC: T - 10*day, Text: "defense stocks were quiet", Score: 5, PostID: "p3", Permalink: "/p3"},
		{ID: "p4", Subreddit: "stocks", CreatedUTC: T - 40*day, Text: "defense ancient history", PostID: "p4", Permalink: "/p4"},
		{ID: "p5", Subreddit: "stocks", CreatedUTC: T - day, Text: "Apple earnings", PostID: "p5", Permalink: "/p5"},
	}
	scores := fixedScorer{
		"Defense budget is rising, LMT": 0.5,
		"defense is hot":                0.3,
		"RTX contract win":              0.7,
		"defense stocks were quiet":     -0.2,
	}
	energy := contracts.ThemeDefinition{ThemeID: "energy", DisplayName: "Energy", Keywords: []string{"oil"}, SeedTickers: []string{"XOM"}}

	res, err := newEngine(scores).ComputeMetrics(context.Background(), docs, []contracts.ThemeDefinition{defenseTheme, energy}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 6, res.Docs)
	assert.Equal(t, T, res.WindowEndUTC)
	assert.Equal(t, 7, res.LookbackDays)
	assert.Equal(t, 30, res.BaselineDays)
	require.Len(t, res.Metrics, 2)
	assert.Equal(t, "defense", res.Metrics[0].ThemeID)
	assert.Equal(t, "energy", res.Metrics[1].ThemeID)

	m := res.Metrics[0]
	assert.Equal(t, 3, m.MentionsRecent)
	assert.Equal(t, 1, m.MentionsBaseline, "p4 is older than the baseline window")
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 2}, m.DailyCounts)
	assert.InDelta(t, 56.0/196.0, m.Slope, 1e-9)
	assert.InDelta(t, 3.0/7.0, m.CurrentRate, 1e-9)
	assert.InDelta(t, 1.0/30.0, m.BaselineRate, 1e-9)
	assert.InDelta(t, 90.0/7.0, m.GrowthRatio, 1e-3)
	assert.False(t, m.GrowthRatioCapped)

	assert.InDelta(t, 0.5, m.SentimentCurrent, 1e-9)
	assert.InDelta(t, -0.2, m.SentimentBaseline, 1e-9)
	assert.InDelta(t, 0.7, m.SentimentShift, 1e-9)

	assert.Equal(t, 3, m.UniqueSubreddits)
	assert.InDelta(t, 1.0, m.Concentration, 1e-9)
	assert.InDelta(t, 0.0, m.ConfirmationScore, 1e-9)
	assert.Equal(t, 1, m.RiskMentions)
	assert.Equal(t, []string{"LMT", "RTX"}, m.KeyTickers)

	require.Len(t, m.EvidenceLinks, 4)
	var order []string
	for _, e := range m.EvidenceLinks {
		order = append(order, e.Permalink)
	}
	assert.Equal(t, []string{"/p2", "/p1", "/p3", "/p1/c1"}, order)

	quiet := res.Metrics[1]
	assert.Equal(t, 0, quiet.MentionsRecent)
	assert.InDelta(t, 1.0, quiet.GrowthRatio, 1e-9)
	assert.False(t, quiet.GrowthRatioCapped)
	assert.Equal(t, 0.0, quiet.Concentration)
	assert.Equal(t, 0.0, quiet.Slope)
	assert.Equal(t, make([]int, 7), quiet.DailyCounts)
	assert.Equal(t, []string{"XOM"}, quiet.KeyTickers)
	assert.Empty(t, quiet.EvidenceLinks)
	assert.False(t, quiet.PriceAvailable())
}

func TestComputeMetrics_ExcludeComments(t *testing.T) {
	docs := []contracts.Document{
		{ID: "p1", Subreddit: "stocks", CreatedUTC: 1_700_000_000, Text: "defense", PostID: "p1", Permalink: "/p1"},
		{ID: "c1", Subreddit: "stocks", CreatedUTC: 1_700_000_000, Text: "defense", PostID: "p1", IsComment: true},
	}
	opts := DefaultOptions()
	opts.IncludeComments = false

	res, err := newEngine(nil).ComputeMetrics(context.Background(), docs, []contracts.ThemeDefinition{defenseTheme}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Docs)
	assert.Equal(t, 1, res.Metrics[0].MentionsRecent)
}

func TestComputeMetrics_NoDocs(t *testing.T) {
	engine := newEngine(nil)

	_, err := engine.ComputeMetrics(context.Background(), nil, []contracts.ThemeDefinition{defenseTheme}, DefaultOptions())
	assert.True(t, errors.Is(err, contracts.ErrNoDocs))

}

func TestComputeMetrics_ExcludedCommentsStillSetWindowEnd(t *testing.T) {
	T := int64(1_700_000_000)
	docs := []contracts.Document{
		{ID: "p1", Subreddit: "stocks", CreatedUTC: T, Text: "defense names", PostID: "p1", Permalink: "/p1"},
		{ID: "c1", Subreddit: "stocks", CreatedUTC: T + 8*day, Text: "unrelated chatter", PostID: "p1", IsComment: true},
	}
	opts := DefaultOptions()
	opts.IncludeComments = false

	res, err := newEngine(nil).ComputeMetrics(context.Background(), docs, []contracts.ThemeDefinition{defenseTheme}, opts)
	require.NoError(t, err)
	assert.Equal(t, T+8*day, res.WindowEndUTC)
	assert.Equal(t, 0, res.Metrics[0].MentionsRecent)
	assert.Equal(t, 1, res.Metrics[0].MentionsBaseline)
}

func TestComputeMetrics_OnlyExcludedComments(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeComments = false
	onlyComments := []contracts.Document{{ID: "c1", Text: "defense", IsComment: true, CreatedUTC: 1_700_000_000}}

	res, err := newEngine(nil).ComputeMetrics(context.Background(), onlyComments, []contracts.ThemeDefinition{defenseTheme}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Docs)
	assert.Equal(t, int64(1_700_000_000), res.WindowEndUTC)
	assert.Equal(t, 0, res.Metrics[0].MentionsRecent)
}

func TestComputeMetrics_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.LookbackDays = 0
	_, err := newEngine(nil).ComputeMetrics(context.Background(), []contracts.Document{{ID: "x", Text: "a"}}, nil, opts)
	assert.Error(t, err)
}

func TestComputeMetrics_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []contracts.Document{{ID: "p1", Text: "defense", CreatedUTC: 1, PostID: "p1"}}
	_, err := newEngine(nil).ComputeMetrics(ctx, docs, []contracts.ThemeDefinition{defenseTheme}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeMetrics_WindowBoundaries(t *testing.T) {
	T := int64(1_700_000_000)
	recentStart := T - 7*day
	docs := []contracts.Document{
		{ID: "end", CreatedUTC: T, Text: "defense", PostID: "end"},
		{ID: "edge", CreatedUTC: recentStart, Text: "defense", PostID: "edge"},             // belongs to baseline
		{ID: "oldest", CreatedUTC: recentStart - 30*day, Text: "defense", PostID: "oldest"}, // excluded
	}

	res, err := newEngine(nil).ComputeMetrics(context.Background(), docs, []contracts.ThemeDefinition{defenseTheme}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Metrics[0].MentionsRecent)
	assert.Equal(t, 1, res.Metrics[0].MentionsBaseline)
	assert.Equal(t, 1, res.Metrics[0].DailyCounts[6])
}
