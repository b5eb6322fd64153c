package s1_metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/themeradar/internal/contracts"
)

func TestGrowthRatio_CapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const ceiling = 25.0

	for i := 0; i < 500; i++ {
		cur := float64(rng.Intn(200)) / 7
		base := float64(rng.Intn(50)) / 30
		uncapped := (cur + growthEpsilon) / (base + growthEpsilon)

		g, capped := GrowthRatio(cur, base, ceiling)
		assert.LessOrEqual(t, g, ceiling)
		assert.Equal(t, uncapped > ceiling, capped)
		if !capped {
			assert.Equal(t, uncapped, g)
		}
	}
}

func TestSlope(t *testing.T) {
	assert.Equal(t, 0.0, Slope(nil))
	assert.Equal(t, 0.0, Slope([]int{5}), "single point has a zero denominator")
	assert.Equal(t, 0.0, Slope([]int{2, 2, 2}))
	assert.InDelta(t, 1.0, Slope([]int{0, 1, 2, 3}), 1e-12)
	assert.InDelta(t, -2.0, Slope([]int{6, 4, 2, 0}), 1e-12)
}

func TestBucketIndex(t *testing.T) {
	start := int64(1000)
	assert.Equal(t, 0, bucketIndex(start+1, start, 7))
	assert.Equal(t, 1, bucketIndex(start+day, start, 7))
	assert.Equal(t, 6, bucketIndex(start+7*day, start, 7), "window end clips into the last bucket")
	assert.Equal(t, 0, bucketIndex(start-5, start, 7))
}

func TestConcentration(t *testing.T) {
	assert.Equal(t, 0.0, Concentration(nil, 0, 3))
	assert.InDelta(t, 0.9, Concentration(map[string]int{"a": 5, "b": 3, "c": 1, "d": 1}, 10, 3), 1e-12)
	assert.InDelta(t, 1.0, Concentration(map[string]int{"a": 2}, 2, 3), 1e-12)
	assert.InDelta(t, 0.5, Concentration(map[string]int{"a": 5, "b": 3, "c": 2}, 10, 1), 1e-12)
}

func TestConfirmation(t *testing.T) {
	assert.InDelta(t, 0.1, Confirmation(3, 0.9, 3), 1e-12)
	assert.Equal(t, 1.0, Confirmation(6, 0, 3))
	assert.Equal(t, 0.0, Confirmation(0, 0.5, 3))
	assert.InDelta(t, 0.5, Confirmation(2, 1.0/6.0, 3), 1e-12)
}

func TestKeyTickers(t *testing.T) {
	freq := map[string]int{"NVDA": 3, "AMD": 3, "TSM": 5, "LMT": 1, "CEO": 9}
	got := KeyTickers([]string{"$LMT", "ita"}, freq, 8)

	// seeds first (lowercase seed normalized), then by frequency, ties alphabetical; CEO is a stopword
	assert.Equal(t, []string{"LMT", "ITA", "TSM", "AMD", "NVDA"}, got)

	assert.Len(t, KeyTickers(nil, map[string]int{"AA": 1, "BB": 1, "CC": 1}, 2), 2)
	assert.Empty(t, KeyTickers(nil, nil, 8))
}

func TestEvidenceLinks(t *testing.T) {
	docs := []contracts.Document{
		{Permalink: "/c-old", IsComment: true, CreatedUTC: 1},
		{Permalink: "/low", Score: 1, CreatedUTC: 5},
		{Permalink: "/tie-new", Score: 9, CreatedUTC: 9},
		{Permalink: "/tie-old", Score: 9, CreatedUTC: 2},
		{Permalink: "/c-new", IsComment: true, CreatedUTC: 8},
		{Permalink: "/low", Score: 1, CreatedUTC: 4},
		{Permalink: "", Score: 100},
	}

	links := EvidenceLinks(docs, 5)
	var got []string
	for _, l := range links {
		got = append(got, l.Permalink)
	}
	assert.Equal(t, []string{"/tie-new", "/tie-old", "/low", "/c-new", "/c-old"}, got)

	assert.Len(t, EvidenceLinks(docs, 2), 2)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("  a\n b\t c "))
	long := make([]rune, 250)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, []rune(snippet(string(long))), snippetRunes+1)
}
