package s2_scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

func TestZScore(t *testing.T) {
	assert.Equal(t, []float64{}, ZScore([]float64{}))
	assert.Equal(t, []float64{0}, ZScore([]float64{42}))
	assert.Equal(t, []float64{0, 0, 0}, ZScore([]float64{3, 3, 3}))

	z := ZScore([]float64{1, 2, 3, 4, 10})
	mean, sq := 0.0, 0.0
	for _, v := range z {
		mean += v
	}
	mean /= float64(len(z))
	for _, v := range z {
		sq += (v - mean) * (v - mean)
	}
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, math.Sqrt(sq/float64(len(z))), 1e-12)

	for _, v := range z {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func metric(id string, growth, slope, shift, confirmation float64) contracts.ThemeMetrics {
	return contracts.ThemeMetrics{
		ThemeID: id, GrowthRatio: growth, Slope: slope, SentimentShift: shift, ConfirmationScore: confirmation,
	}
}

func TestScoreThemes_NoPrice(t *testing.T) {
	metrics := []contracts.ThemeMetrics{
		metric("a", 1, 0, 0, 0),
		metric("b", math.E, 0, 0.2, 0.5),
		metric("c", 0, 0, -0.1, 1),
	}
	scores := NewScorer(DefaultWeights(), logger.Nop()).ScoreThemes(metrics)
	require.Len(t, scores, 3)

	byID := map[string]contracts.ThemeScore{}
	for _, s := range scores {
		byID[s.ThemeID] = s
	}

	// price z-scores are computed and exposed, all zero
	for _, s := range scores {
		assert.Equal(t, 0.0, s.Components.Price)
		assert.Equal(t, 0.0, s.Raw.Price)
	}

	// velocity raw = ln(max(growth, 1e-6)) + slope
	assert.InDelta(t, 0.0, byID["a"].Raw.Velocity, 1e-12)
	assert.InDelta(t, 1.0, byID["b"].Raw.Velocity, 1e-12)
	assert.InDelta(t, math.Log(1e-6), byID["c"].Raw.Velocity, 1e-9)

	// score = (0.4 zv + 0.2 zs + 0.3 zc) / 0.9
	for _, s := range scores {
		want := (0.4*s.Components.Velocity + 0.2*s.Components.SentimentShift + 0.3*s.Components.Confirmation) / 0.9
		assert.InDelta(t, want, s.Score, 1e-12)
	}

	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score)
	}
}

func TestScoreThemes_WithPrice(t *testing.T) {
	metrics := []contracts.ThemeMetrics{
		metric("a", 2, 0, 0, 0.5),
		metric("b", 2, 0, 0, 0.5),
	}
	metrics[0].Price = &contracts.PriceSignal{MomentumScore: 1, DivergenceScore: 0.5}

	scores := NewScorer(DefaultWeights(), logger.Nop()).ScoreThemes(metrics)
	require.Len(t, scores, 2)

	// only price differs: z = ±1, score = 0.1·z / 1.0
	assert.Equal(t, "a", scores[0].ThemeID)
	assert.InDelta(t, 1.5, scores[0].Raw.Price, 1e-12)
	assert.InDelta(t, 0.1, scores[0].Score, 1e-12)
	assert.InDelta(t, -0.1, scores[1].Score, 1e-12)
}

func TestScoreThemes_StableTies(t *testing.T) {
	metrics := []contracts.ThemeMetrics{
		metric("first", 1, 0, 0, 0),
		metric("second", 1, 0, 0, 0),
		metric("third", 1, 0, 0, 0),
	}
	scores := NewScorer(DefaultWeights(), logger.Nop()).ScoreThemes(metrics)
	assert.Equal(t, "first", scores[0].ThemeID)
	assert.Equal(t, "second", scores[1].ThemeID)
	assert.Equal(t, "third", scores[2].ThemeID)
	assert.Equal(t, 0.0, scores[0].Score)
}

func TestScoreThemes_Empty(t *testing.T) {
	assert.Empty(t, NewScorer(DefaultWeights(), logger.Nop()).ScoreThemes(nil))
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{Velocity: -1, Sentiment: 1}.Validate())
	assert.Error(t, Weights{}.Validate())
}
