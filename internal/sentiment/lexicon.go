package sentiment

import (
	"math"
	"regexp"
	"strings"
)

// alpha normalizes the raw valence sum into (-1, 1)
const alpha = 15.0

const (
	negationScale = -0.74
	boostStep     = 0.293
	negationSpan  = 3 // tokens looked back for a negator
)

var wordPattern = regexp.MustCompile(`[A-Za-z']+|[!?]`)

// Lexicon is a rule-based compound scorer in [-1, 1]. Safe for concurrent use.
// ⭐ SSOT: 기본 감성 점수 계산기
type Lexicon struct {
	valence  map[string]float64
	boosters map[string]float64
	negators map[string]struct{}
}

// NewLexicon builds a scorer over the built-in finance-flavoured word list
func NewLexicon() *Lexicon {
	return NewLexiconWith(defaultValence)
}

// NewLexiconWith builds a scorer over a custom valence table (lowercase keys)
func NewLexiconWith(valence map[string]float64) *Lexicon {
	l := &Lexicon{
		valence:  make(map[string]float64, len(valence)),
		boosters: defaultBoosters,
		negators: make(map[string]struct{}, len(defaultNegators)),
	}
	for w, v := range valence {
		l.valence[strings.ToLower(w)] = v
	}
	for _, n := range defaultNegators {
		l.negators[n] = struct{}{}
	}
	return l
}

// Score returns the compound sentiment of text. Empty or neutral text scores 0.
func (l *Lexicon) Score(text string) float64 {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}

	sum := 0.0
	for i, tok := range tokens {
		v, ok := l.valence[tok]
		if !ok {
			continue
		}

		if i > 0 {
			if b, ok := l.boosters[tokens[i-1]]; ok {
				if v > 0 {
					v += b
				} else {
					v -= b
				}
			}
		}

		for j := i - 1; j >= 0 && j >= i-negationSpan; j-- {
			if l.isNegator(tokens[j]) {
				v *= negationScale
				break
			}
		}
		sum += v
	}

	if sum != 0 {
		sum += emphasis(tokens, sum)
	}
	return normalize(sum)
}

func (l *Lexicon) isNegator(tok string) bool {
	if _, ok := l.negators[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

// emphasis adds a small push in the direction of sum for each "!" (max 4)
func emphasis(tokens []string, sum float64) float64 {
	n := 0
	for _, t := range tokens {
		if t == "!" {
			n++
		}
	}
	if n > 4 {
		n = 4
	}
	amp := float64(n) * 0.292
	if sum < 0 {
		return -amp
	}
	return amp
}

func normalize(sum float64) float64 {
	score := sum / math.Sqrt(sum*sum+alpha)
	return math.Max(-1, math.Min(1, score))
}

var defaultNegators = []string{
	"not", "no", "never", "none", "nobody", "nothing", "neither", "nor", "without", "hardly", "barely",
	"cant", "dont", "wont", "isnt", "aint", "doesnt", "didnt", "shouldnt", "wouldnt",
}

var defaultBoosters = map[string]float64{
	"very": boostStep, "extremely": boostStep, "really": boostStep, "super": boostStep, "so": boostStep,
	"incredibly": boostStep, "hugely": boostStep, "massively": boostStep, "insanely": boostStep,
	"slightly": -boostStep, "somewhat": -boostStep, "barely": -boostStep, "kinda": -boostStep,
}

// defaultValence: general sentiment words plus market slang, VADER-style scale (-4..4)
var defaultValence = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 3.2, "amazing": 2.8, "love": 3.2, "like": 1.5, "happy": 2.7,
	"strong": 2.3, "win": 2.8, "winning": 2.4, "gain": 2.4, "gains": 2.4, "profit": 2.1, "profits": 2.1,
	"growth": 1.9, "growing": 1.7, "beat": 1.6, "beats": 1.6, "record": 1.4, "bullish": 2.5, "bull": 1.8,
	"rally": 2.1, "rallying": 2.1, "surge": 2.0, "surging": 2.0, "soar": 2.4, "soaring": 2.4, "moon": 2.0,
	"mooning": 2.2, "rocket": 1.8, "upgrade": 1.9, "upgraded": 1.9, "outperform": 2.0, "undervalued": 1.6,
	"cheap": 0.8, "opportunity": 1.8, "breakout": 1.9, "tailwind": 1.6, "tailwinds": 1.6, "boom": 2.0,
	"booming": 2.2, "recovery": 1.5, "recover": 1.4, "optimistic": 2.4, "confident": 2.2, "solid": 1.8,
	"best": 3.2, "safe": 1.9, "buy": 0.9, "buying": 0.9, "long": 0.4, "calls": 0.6, "tendies": 2.0,
	"up": 0.6, "higher": 1.0, "rise": 1.4, "rising": 1.4, "upside": 1.6, "demand": 0.8, "exciting": 2.6,
	// negative
	"bad": -2.5, "terrible": -3.1, "awful": -3.1, "hate": -2.7, "weak": -1.9, "loss": -2.1, "losses": -2.1,
	"lose": -2.3, "losing": -2.2, "lost": -1.8, "miss": -1.4, "missed": -1.5, "bearish": -2.5, "bear": -1.6,
	"crash": -2.8, "crashing": -2.8, "dump": -2.0, "dumping": -2.0, "tank": -2.0, "tanking": -2.2,
	"plunge": -2.4, "plunging": -2.4, "drop": -1.3, "dropping": -1.4, "fall": -1.3, "falling": -1.5,
	"downgrade": -1.9, "downgraded": -1.9, "overvalued": -1.6, "bubble": -1.8, "fraud": -3.2, "scam": -3.1,
	"risk": -1.1, "risky": -1.6, "fear": -2.2, "worried": -2.0, "worry": -1.9, "panic": -2.7, "recession": -2.2,
	"bankrupt": -3.0, "bankruptcy": -3.0, "lawsuit": -1.8, "headwind": -1.6, "headwinds": -1.6,
	"sell": -0.9, "selling": -1.0, "selloff": -2.0, "puts": -0.6, "short": -0.6, "down": -0.8,
	"lower": -1.0, "decline": -1.5, "declining": -1.6, "downside": -1.6, "bagholder": -1.9, "bagholding": -1.9,
	"rekt": -2.4, "disaster": -3.1, "worst": -3.1, "ugly": -2.3, "expensive": -0.9, "dilution": -1.7,
	"layoffs": -2.0, "cut": -1.0, "cuts": -1.0, "tariff": -1.0, "tariffs": -1.0,
}
