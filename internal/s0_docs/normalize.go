package s0_docs

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/themeradar/internal/contracts"
)

// BuildDocuments flattens a fetch payload into documents.
// ⭐ SSOT: RawPost/RawComment → Document 변환은 여기서만
// Post text = title + "\n" + body. Comments inherit the post's subreddit when missing
// and always carry Score=0, NumComments=0. Duplicate IDs keep the first occurrence.
func BuildDocuments(fetch *contracts.FetchResult) []contracts.Document {
	if fetch == nil {
		return nil
	}

	docs := make([]contracts.Document, 0, fetch.PostCount()+fetch.CommentCount())
	seen := make(map[string]struct{}, cap(docs))

	add := func(d contracts.Document) {
		if d.ID == "" || strings.TrimSpace(d.Text) == "" {
			return
		}
		if _, dup := seen[d.ID]; dup {
			return
		}
		seen[d.ID] = struct{}{}
		docs = append(docs, d)
	}

	for _, p := range fetch.Posts {
		body := textOrHTML(p.Selftext, p.SelftextHTML)
		text := strings.TrimSpace(p.Title)
		if body != "" {
			text = text + "\n" + body
		}

		add(contracts.Document{
			ID:          p.ID,
			Subreddit:   p.Subreddit,
			CreatedUTC:  int64(p.CreatedUTC),
			Text:        text,
			Permalink:   p.Permalink,
			Score:       p.Score,
			NumComments: p.NumComments,
			PostID:      p.ID,
		})

		for _, c := range p.Comments {
			sub := c.Subreddit
			if sub == "" {
				sub = p.Subreddit
			}
			link := c.Permalink
			if link == "" {
				link = p.Permalink
			}
			add(contracts.Document{
				ID:         c.ID,
				Subreddit:  sub,
				CreatedUTC: int64(c.CreatedUTC),
				Text:       textOrHTML(c.Body, c.BodyHTML),
				Permalink:  link,
				PostID:     p.ID,
				IsComment:  true,
			})
		}
	}

	return docs
}

// textOrHTML prefers the plain body and falls back to the HTML rendering
func textOrHTML(plain, rendered string) string {
	plain = strings.TrimSpace(plain)
	if plain != "" || rendered == "" {
		return plain
	}
	return HTMLToText(rendered)
}

// HTMLToText strips markup. The platform ships entity-escaped HTML, so unescape first.
func HTMLToText(fragment string) string {
	if strings.Contains(fragment, "&lt;") {
		fragment = html.UnescapeString(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var parts []string
	doc.Find("p, li, pre, blockquote, h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(parts, "\n")
}
