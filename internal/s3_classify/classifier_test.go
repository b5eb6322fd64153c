package s3_classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/themeradar/internal/contracts"
)

func TestSignalType(t *testing.T) {
	tests := []struct {
		name string
		m    contracts.ThemeMetrics
		want contracts.SignalType
	}{
		{"momentum wins ties", contracts.ThemeMetrics{Price: &contracts.PriceSignal{MomentumScore: 1, DivergenceScore: 1}}, contracts.SignalMomentum},
		{"divergence", contracts.ThemeMetrics{Price: &contracts.PriceSignal{MomentumScore: 0.1, DivergenceScore: 0.4}}, contracts.SignalDivergence},
		{"mean reversion", contracts.ThemeMetrics{SentimentShift: -0.06, GrowthRatio: 0.9}, contracts.SignalMeanReversion},
		{"shift at threshold is rotation", contracts.ThemeMetrics{SentimentShift: -0.05, GrowthRatio: 0.9}, contracts.SignalRotation},
		{"growing is rotation", contracts.ThemeMetrics{SentimentShift: -0.3, GrowthRatio: 1}, contracts.SignalRotation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignalType(tt.m))
		})
	}
}

func TestConfidence(t *testing.T) {
	price := &contracts.PriceSignal{}
	tests := []struct {
		m    contracts.ThemeMetrics
		want contracts.Confidence
	}{
		{contracts.ThemeMetrics{MentionsRecent: 8, UniqueSubreddits: 3, Concentration: 0.5, Price: price}, contracts.ConfidenceVeryHigh},
		{contracts.ThemeMetrics{MentionsRecent: 8, UniqueSubreddits: 3, Concentration: 0.5}, contracts.ConfidenceHigh},
		{contracts.ThemeMetrics{MentionsRecent: 8, UniqueSubreddits: 2, Concentration: 0.4}, contracts.ConfidenceMediumHigh},
		{contracts.ThemeMetrics{MentionsRecent: 7, UniqueSubreddits: 2, Concentration: 0.4}, contracts.ConfidenceMedium},
		{contracts.ThemeMetrics{MentionsRecent: 7, UniqueSubreddits: 2, Concentration: 0.51}, contracts.ConfidenceMediumLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Confidence(tt.m))
	}
}

func TestTiming(t *testing.T) {
	tests := []struct {
		name string
		m    contracts.ThemeMetrics
		want contracts.Timing
	}{
		{"now", contracts.ThemeMetrics{GrowthRatio: 2.0, Slope: 0.21}, contracts.TimingNow},
		{"now beats volatile", contracts.ThemeMetrics{GrowthRatio: 3, Slope: 1, Concentration: 0.9}, contracts.TimingNow},
		{"volatile", contracts.ThemeMetrics{GrowthRatio: 2.5, Slope: 0.2, Concentration: 0.61}, contracts.TimingNowVolatile},
		{"fast but flat is building", contracts.ThemeMetrics{GrowthRatio: 2.5, Slope: 0.1, Concentration: 0.6}, contracts.TimingBuilding},
		{"building", contracts.ThemeMetrics{GrowthRatio: 1.4}, contracts.TimingBuilding},
		{"ongoing", contracts.ThemeMetrics{GrowthRatio: 1.0}, contracts.TimingOngoing},
		{"early", contracts.ThemeMetrics{GrowthRatio: 0.99}, contracts.TimingEarly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Timing(tt.m))
		})
	}
}

func TestStars(t *testing.T) {
	// first rank always 5; last rank is 1 once (1/total)·5 < 1.5
	for total := 1; total <= 12; total++ {
		assert.Equal(t, 5, Stars(1, total), "total=%d", total)
		if total >= 4 {
			assert.Equal(t, 1, Stars(total, total), "total=%d", total)
		}
	}

	// midpoints round half up
	assert.Equal(t, 3, Stars(2, 2), "(1/2)·5 = 2.5")
	assert.Equal(t, 3, Stars(3, 4), "(2/4)·5 = 2.5")
	assert.Equal(t, 4, Stars(2, 4), "(3/4)·5 = 3.75")
	assert.Equal(t, 3, Stars(6, 10), "(5/10)·5 = 2.5")
	assert.Equal(t, 2, Stars(7, 10), "(4/10)·5 = 2.0")
	assert.Equal(t, 4, Stars(3, 10), "(8/10)·5 = 4.0")
	assert.Equal(t, 3, Stars(2, 3), "(2/3)·5 ≈ 3.33")

	assert.Equal(t, 1, Stars(1, 0))
}

func TestClassify(t *testing.T) {
	m := contracts.ThemeMetrics{
		MentionsRecent: 10, UniqueSubreddits: 4, Concentration: 0.3,
		GrowthRatio: 2.4, Slope: 0.5, SentimentShift: 0.1,
	}
	c := Classify(m, contracts.ThemeScore{Score: 1.2}, 1, 5)

	assert.Equal(t, contracts.SignalRotation, c.SignalType)
	assert.Equal(t, contracts.ConfidenceHigh, c.Confidence)
	assert.Equal(t, contracts.TimingNow, c.Timing)
	assert.Equal(t, 5, c.Stars)
}
