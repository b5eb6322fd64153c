package s2_scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

// velocityFloor keeps ln() finite for a zero growth ratio
const velocityFloor = 1e-6

// Weights are the composite-score weights per component
type Weights struct {
	Velocity     float64 `yaml:"velocity" json:"velocity"`
	Sentiment    float64 `yaml:"sentiment" json:"sentiment"`
	Confirmation float64 `yaml:"confirmation" json:"confirmation"`
	Price        float64 `yaml:"price" json:"price"`
}

// DefaultWeights returns 0.40/0.20/0.30/0.10
func DefaultWeights() Weights {
	return Weights{Velocity: 0.40, Sentiment: 0.20, Confirmation: 0.30, Price: 0.10}
}

// Validate checks weights are non-negative with a positive sum
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"velocity": w.Velocity, "sentiment": w.Sentiment, "confirmation": w.Confirmation, "price": w.Price,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be >= 0, got %v", name, v)
		}
	}
	if w.Velocity+w.Sentiment+w.Confirmation+w.Price <= 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}

// Scorer combines z-scored metric components into one run-relative score
// ⭐ SSOT: S2 종합 점수 계산은 여기서만
type Scorer struct {
	weights Weights
	logger  *logger.Logger
}

// NewScorer creates a scorer with the given weights
func NewScorer(weights Weights, log *logger.Logger) *Scorer {
	return &Scorer{weights: weights, logger: log.Component("s2_scoring")}
}

// ScoreThemes scores every theme and returns them sorted by score descending (stable)
func (s *Scorer) ScoreThemes(metrics []contracts.ThemeMetrics) []contracts.ThemeScore {
	n := len(metrics)
	if n == 0 {
		return []contracts.ThemeScore{}
	}

	velocity := make([]float64, n)
	sentiment := make([]float64, n)
	confirmation := make([]float64, n)
	price := make([]float64, n)
	anyPrice := false

	for i := range metrics {
		m := &metrics[i]
		velocity[i] = math.Log(math.Max(m.GrowthRatio, velocityFloor)) + m.Slope
		sentiment[i] = m.SentimentShift
		confirmation[i] = m.ConfirmationScore
		if m.PriceAvailable() {
			price[i] = m.Price.MomentumScore + m.Price.DivergenceScore
			anyPrice = true
		}
	}

	zv, zs, zc, zp := ZScore(velocity), ZScore(sentiment), ZScore(confirmation), ZScore(price)

	// without any price data the price weight leaves the denominator;
	// zp is all zeros then, so its numerator term vanishes on its own
	weightSum := s.weights.Velocity + s.weights.Sentiment + s.weights.Confirmation
	if anyPrice {
		weightSum += s.weights.Price
	}

	scores := make([]contracts.ThemeScore, n)
	for i := range metrics {
		total := s.weights.Velocity*zv[i] +
			s.weights.Sentiment*zs[i] +
			s.weights.Confirmation*zc[i] +
			s.weights.Price*zp[i]

		scores[i] = contracts.ThemeScore{
			ThemeID: metrics[i].ThemeID,
			Score:   total / weightSum,
			Components: contracts.ScoreComponents{
				Velocity: zv[i], SentimentShift: zs[i], Confirmation: zc[i], Price: zp[i],
			},
			Raw: contracts.ScoreComponents{
				Velocity: velocity[i], SentimentShift: sentiment[i], Confirmation: confirmation[i], Price: price[i],
			},
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	s.logger.WithFields(map[string]interface{}{
		"themes":          n,
		"price_available": anyPrice,
		"top":             scores[0].ThemeID,
	}).Info("Scored themes")

	return scores
}

// ZScore standardizes xs with the population standard deviation.
// A zero-variance input yields all zeros (std treated as 1).
func ZScore(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}

	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))

	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}
	for i, x := range xs {
		out[i] = (x - mean) / std
	}
	return out
}
