package s0_docs

import (
	"regexp"
	"strings"

	"github.com/wonny/themeradar/internal/contracts"
)

// Matcher decides whether a document mentions one theme
// ⭐ SSOT: 멘션 판정 규칙은 여기서만
type Matcher struct {
	keywords []*regexp.Regexp
	risk     []*regexp.Regexp
	seeds    map[string]struct{}
}

// NewMatcher compiles the theme's keywords into word-boundary patterns
func NewMatcher(theme contracts.ThemeDefinition) *Matcher {
	m := &Matcher{
		keywords: compileKeywords(theme.Keywords),
		risk:     compileKeywords(theme.RiskKeywords),
		seeds:    make(map[string]struct{}, len(theme.SeedTickers)),
	}
	for _, s := range theme.SeedTickers {
		m.seeds[strings.ToUpper(strings.TrimPrefix(s, "$"))] = struct{}{}
	}
	return m
}

func compileKeywords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

// MatchesKeyword reports a whole-word, case-insensitive keyword hit
func (m *Matcher) MatchesKeyword(text string) bool {
	return anyMatch(m.keywords, strings.ToLower(text))
}

// MatchesRisk reports a risk keyword hit
func (m *Matcher) MatchesRisk(text string) bool {
	return anyMatch(m.risk, strings.ToLower(text))
}

func anyMatch(patterns []*regexp.Regexp, lowered string) bool {
	for _, re := range patterns {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}

// IsMention applies the mention rule: keyword hit or a seed ticker among the
// document's extracted tickers. Ticker+keyword co-occurrence is already a keyword hit.
func (m *Matcher) IsMention(text string, tickers []string) bool {
	if m.MatchesKeyword(text) {
		return true
	}
	for _, t := range tickers {
		if _, ok := m.seeds[t]; ok {
			return true
		}
	}
	return false
}
