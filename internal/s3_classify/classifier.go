package s3_classify

import (
	"math"

	"github.com/wonny/themeradar/internal/contracts"
)

// Rule thresholds
const (
	meanReversionShift  = -0.05
	minMentionsForConf  = 8
	minSubredditsConf   = 3
	maxConcentrationOK  = 0.5
	nowGrowth           = 2.0
	nowSlope            = 0.2
	volatileConcentrate = 0.6
	buildingGrowth      = 1.4
	ongoingGrowth       = 1.0
)

// Classify maps one theme's metrics and rank into the signal taxonomy.
// ⭐ SSOT: S3 분류 규칙은 여기서만 (순수 함수, 상태 없음)
// rank is 1-based among total ranked themes; the score enters only through rank.
func Classify(m contracts.ThemeMetrics, _ contracts.ThemeScore, rank, total int) contracts.ThemeClassification {
	return contracts.ThemeClassification{
		SignalType: SignalType(m),
		Confidence: Confidence(m),
		Timing:     Timing(m),
		Stars:      Stars(rank, total),
	}
}

// SignalType: price momentum/divergence when present, else mean reversion or rotation
func SignalType(m contracts.ThemeMetrics) contracts.SignalType {
	if m.Price != nil {
		if m.Price.MomentumScore >= m.Price.DivergenceScore {
			return contracts.SignalMomentum
		}
		return contracts.SignalDivergence
	}
	if m.SentimentShift < meanReversionShift && m.GrowthRatio < 1 {
		return contracts.SignalMeanReversion
	}
	return contracts.SignalRotation
}

// Confidence scores four independent checks, one point each
func Confidence(m contracts.ThemeMetrics) contracts.Confidence {
	points := 0
	if m.MentionsRecent >= minMentionsForConf {
		points++
	}
	if m.UniqueSubreddits >= minSubredditsConf {
		points++
	}
	if m.Concentration <= maxConcentrationOK {
		points++
	}
	if m.PriceAvailable() {
		points++
	}

	switch points {
	case 4:
		return contracts.ConfidenceVeryHigh
	case 3:
		return contracts.ConfidenceHigh
	case 2:
		return contracts.ConfidenceMediumHigh
	case 1:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceMediumLow
	}
}

// Timing rules are evaluated in priority order
func Timing(m contracts.ThemeMetrics) contracts.Timing {
	switch {
	case m.GrowthRatio >= nowGrowth && m.Slope > nowSlope:
		return contracts.TimingNow
	case m.GrowthRatio >= nowGrowth && m.Concentration > volatileConcentrate:
		return contracts.TimingNowVolatile
	case m.GrowthRatio >= buildingGrowth:
		return contracts.TimingBuilding
	case m.GrowthRatio >= ongoingGrowth:
		return contracts.TimingOngoing
	default:
		return contracts.TimingEarly
	}
}

// Stars = clamp(1, 5, round(((total − rank + 1)/total)·5)), ties to even
func Stars(rank, total int) int {
	if total <= 0 {
		return 1
	}
	raw := float64(total-rank+1) / float64(total) * 5
	stars := int(math.Round(raw)) // halves round up
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}
