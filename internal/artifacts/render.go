package artifacts

import (
	"fmt"
	"strings"

	"github.com/wonny/themeradar/internal/contracts"
)

// RenderText renders a run report as plain text
func RenderText(r *contracts.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "THEME RADAR  %s  (run %s)\n", r.SignalDate, r.RunID)
	fmt.Fprintf(&b, "docs=%d  lookback=%dd  baseline=%dd  config=%s\n",
		r.Docs, r.LookbackDays, r.BaselineDays, shortHash(r.ConfigHash))
	if len(r.Subreddits) > 0 {
		fmt.Fprintf(&b, "sources: r/%s\n", strings.Join(r.Subreddits, ", r/"))
	}
	b.WriteString(strings.Repeat("=", 72) + "\n")

	for _, t := range r.Themes {
		m := t.Metrics
		c := t.Classification
		fmt.Fprintf(&b, "\n#%d %s %s  score=%.3f\n", t.Rank, t.Theme.DisplayName, strings.Repeat("*", c.Stars), t.Score.Score)
		fmt.Fprintf(&b, "   %s | confidence %s | timing %s", c.SignalType, c.Confidence, c.Timing)
		if t.Theme.ProxyETF != "" {
			fmt.Fprintf(&b, " | proxy %s", t.Theme.ProxyETF)
		}
		b.WriteString("\n")

		growth := fmt.Sprintf("%.2fx", m.GrowthRatio)
		if m.GrowthRatioCapped {
			growth += " (capped)"
		}
		fmt.Fprintf(&b, "   mentions %d recent / %d baseline, growth %s, slope %+.3f\n",
			m.MentionsRecent, m.MentionsBaseline, growth, m.Slope)
		fmt.Fprintf(&b, "   sentiment %+.3f (shift %+.3f), subreddits %d, concentration %.2f, confirmation %.2f\n",
			m.SentimentCurrent, m.SentimentShift, m.UniqueSubreddits, m.Concentration, m.ConfirmationScore)
		if m.RiskMentions > 0 {
			fmt.Fprintf(&b, "   risk mentions %d\n", m.RiskMentions)
		}
		if len(m.KeyTickers) > 0 {
			fmt.Fprintf(&b, "   tickers %s\n", strings.Join(m.KeyTickers, " "))
		}
		for _, e := range m.EvidenceLinks {
			kind := "post"
			if e.IsComment {
				kind = "comment"
			}
			fmt.Fprintf(&b, "   - [%s r/%s %d] %s\n", kind, e.Subreddit, e.Score, e.Permalink)
		}
	}

	if len(r.Themes) == 0 {
		b.WriteString("\n(no ranked themes)\n")
	}
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
