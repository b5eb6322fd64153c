package s0_docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/httputil"
	"github.com/wonny/themeradar/pkg/logger"
)

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"cashtag stripped", "Loading up on $NVDA and AMD", []string{"NVDA", "AMD"}},
		{"stopwords filtered", "THE CEO said the ETF is fine", nil},
		{"dedupe keeps first order", "LMT LMT RTX LMT", []string{"LMT", "RTX"}},
		{"too long ignored", "ABCDEFG is not a ticker", nil},
		{"lowercase ignored", "nvda to the moon", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTickers(tt.text))
		})
	}
}

func TestIsValidTicker(t *testing.T) {
	assert.True(t, IsValidTicker("LMT"))
	assert.False(t, IsValidTicker("lmt"))
	assert.False(t, IsValidTicker("A"))
	assert.False(t, IsValidTicker("TOOLONG"))
	assert.False(t, IsValidTicker("ETF"))
	assert.False(t, IsValidTicker("$LMT"))
}

func TestMatcher_WordBoundary(t *testing.T) {
	m := NewMatcher(contracts.ThemeDefinition{ThemeID: "energy", Keywords: []string{"lng"}})

	assert.False(t, m.MatchesKeyword("Sling TV subscribers are up"))
	assert.True(t, m.MatchesKeyword("LNG exports hit a record"))
	assert.True(t, m.MatchesKeyword("what about lng?"))
}

func TestMatcher_EscapesSpecialCharacters(t *testing.T) {
	m := NewMatcher(contracts.ThemeDefinition{Keywords: []string{"s&p 500", "c++"}})

	assert.True(t, m.MatchesKeyword("The S&P 500 dipped"))
	assert.False(t, m.MatchesKeyword("sxp 500"))
}

func TestMatcher_IsMention(t *testing.T) {
	m := NewMatcher(contracts.ThemeDefinition{
		ThemeID:      "defense",
		Keywords:     []string{"defense"},
		SeedTickers:  []string{"LMT", "$RTX"},
		RiskKeywords: []string{"budget cut"},
	})

	assert.True(t, m.IsMention("Defense spending is rising", nil))
	assert.True(t, m.IsMention("RTX beat earnings", ExtractTickers("RTX beat earnings")))
	assert.False(t, m.IsMention("AAPL beat earnings", ExtractTickers("AAPL beat earnings")))
	assert.True(t, m.MatchesRisk("fears of a Budget Cut"))
}

func TestBuildDocuments(t *testing.T) {
	fetch := &contracts.FetchResult{
		Posts: []contracts.RawPost{
			{
				ID: "p1", Subreddit: "stocks", CreatedUTC: 1700000000.7, Title: "Defense stocks",
				Selftext: "LMT looks cheap", Permalink: "/r/stocks/p1", Score: 42, NumComments: 2,
				Comments: []contracts.RawComment{
					{ID: "c1", CreatedUTC: 1700000100, Body: "agree on LMT"},
					{ID: "c2", CreatedUTC: 1700000200, BodyHTML: "&lt;div&gt;&lt;p&gt;RTX too&lt;/p&gt;&lt;/div&gt;"},
					{ID: "c3", CreatedUTC: 1700000300, Body: "   "},
				},
			},
			{ID: "p1", Subreddit: "stocks", Title: "duplicate"},
			{ID: "p2", Subreddit: "investing", CreatedUTC: 1700000500, Title: "HTML only",
				SelftextHTML: "<p>first</p><p>second</p>"},
		},
	}

	docs := BuildDocuments(fetch)
	require.Len(t, docs, 4)

	post := docs[0]
	assert.Equal(t, "Defense stocks\nLMT looks cheap", post.Text)
	assert.Equal(t, int64(1700000000), post.CreatedUTC)
	assert.False(t, post.IsComment)
	assert.Equal(t, "p1", post.PostID)

	c1 := docs[1]
	assert.True(t, c1.IsComment)
	assert.Equal(t, "stocks", c1.Subreddit)
	assert.Equal(t, "p1", c1.PostID)
	assert.Equal(t, 0, c1.Score)
	assert.Equal(t, 0, c1.NumComments)
	assert.Equal(t, "/r/stocks/p1", c1.Permalink)

	assert.Equal(t, "RTX too", docs[2].Text)
	assert.Equal(t, "HTML only\nfirst\nsecond", docs[3].Text)
}

func TestBuildDocuments_Nil(t *testing.T) {
	assert.Empty(t, BuildDocuments(nil))
	assert.Empty(t, BuildDocuments(&contracts.FetchResult{}))
}

func TestFileSource(t *testing.T) {
	payload := contracts.FetchResult{
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Posts: []contracts.RawPost{
			{ID: "a", Subreddit: "Stocks", Title: "one"},
			{ID: "b", Subreddit: "pennystocks", Title: "two"},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	result, err := NewFileSource(path, logger.Nop()).Fetch(context.Background(), []string{"stocks"})
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "a", result.Posts[0].ID)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json"), logger.Nop()).
		Fetch(context.Background(), nil)
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stocks,investing", r.URL.Query().Get("subreddits"))
		w.Write([]byte(`{"posts":[{"id":"x","subreddit":"stocks","title":"hello","created_utc":1700000000}]}`))
	}))
	defer server.Close()

	client := httputil.New(logger.Nop(), time.Second).DisableRetry()
	result, err := NewHTTPSource(client, server.URL+"/", logger.Nop()).
		Fetch(context.Background(), []string{"stocks", "investing"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PostCount())
	assert.Equal(t, []string{"stocks", "investing"}, result.Subreddits)
	assert.False(t, result.GeneratedAt.IsZero())
}
