package s3_classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
)

func rankFixture() (*contracts.MetricsResult, []contracts.ThemeScore, []contracts.ThemeDefinition) {
	result := &contracts.MetricsResult{Metrics: []contracts.ThemeMetrics{
		{ThemeID: "a", MentionsRecent: 10, GrowthRatio: 3, Slope: 0.5},
		{ThemeID: "b", MentionsRecent: 1},
		{ThemeID: "c", MentionsRecent: 4, GrowthRatio: 1.5},
		{ThemeID: "d", MentionsRecent: 2},
	}}
	scores := []contracts.ThemeScore{
		{ThemeID: "b", Score: 2.0},
		{ThemeID: "a", Score: 1.0},
		{ThemeID: "c", Score: 0.5},
		{ThemeID: "d", Score: -1.0},
	}
	themes := []contracts.ThemeDefinition{
		{ThemeID: "a", DisplayName: "A", ProxyETF: "AAA"},
		{ThemeID: "b", DisplayName: "B"},
		{ThemeID: "c", DisplayName: "C"},
		{ThemeID: "d", DisplayName: "D"},
	}
	return result, scores, themes
}

func TestRankThemes(t *testing.T) {
	result, scores, themes := rankFixture()

	ranked, err := RankThemes(result, scores, themes, RankOptions{TopN: 2, MinRecentMentions: 2})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// b is skipped for lack of mentions; order follows the score sort
	assert.Equal(t, "a", ranked[0].Theme.ThemeID)
	assert.Equal(t, "AAA", ranked[0].Theme.ProxyETF)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, contracts.TimingNow, ranked[0].Classification.Timing)
	assert.Equal(t, 5, ranked[0].Classification.Stars)

	assert.Equal(t, "c", ranked[1].Theme.ThemeID)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, Stars(2, 2), ranked[1].Classification.Stars)
}

func TestRankThemes_AllEligible(t *testing.T) {
	result, scores, themes := rankFixture()
	ranked, err := RankThemes(result, scores, themes, RankOptions{MinRecentMentions: 2})
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "d", ranked[2].Theme.ThemeID)
}

func TestRankThemes_InsufficientEvidence(t *testing.T) {
	result, scores, themes := rankFixture()

	_, err := RankThemes(result, scores, themes, RankOptions{TopN: 4, MinRecentMentions: 2})
	assert.ErrorIs(t, err, contracts.ErrInsufficientEvidence)
	assert.True(t, contracts.IsPrecondition(err))

	_, err = RankThemes(result, scores, themes, RankOptions{MinRecentMentions: 100})
	assert.ErrorIs(t, err, contracts.ErrInsufficientEvidence)
}
