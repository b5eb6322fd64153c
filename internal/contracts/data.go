package contracts

import "time"

// Document is one normalized social post or comment passed from S0 to S1
// ⭐ SSOT: S0 → S1 문서 데이터 전달
// A post and its comments share PostID; comments always carry Score=0 and NumComments=0.
type Document struct {
	ID          string `json:"id"`
	Subreddit   string `json:"subreddit"`
	CreatedUTC  int64  `json:"created_utc"` // unix seconds
	Text        string `json:"text"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	PostID      string `json:"post_id"`
	IsComment   bool   `json:"is_comment"`
}

// CreatedAt returns the creation time in UTC
func (d Document) CreatedAt() time.Time {
	return time.Unix(d.CreatedUTC, 0).UTC()
}

// FetchResult is the payload returned by a DocumentSource.
// An empty-but-valid result (no posts) is legal; partial garbage is not.
type FetchResult struct {
	GeneratedAt time.Time `json:"generated_at"`
	Subreddits  []string  `json:"subreddits"`
	Posts       []RawPost `json:"posts"`
}

// RawPost is a post as delivered by the platform layer
type RawPost struct {
	ID           string       `json:"id"`
	Subreddit    string       `json:"subreddit"`
	CreatedUTC   float64      `json:"created_utc"`
	Title        string       `json:"title"`
	Selftext     string       `json:"selftext"`
	SelftextHTML string       `json:"selftext_html,omitempty"`
	Permalink    string       `json:"permalink"`
	Score        int          `json:"score"`
	NumComments  int          `json:"num_comments"`
	Comments     []RawComment `json:"comments,omitempty"`
}

// RawComment is a comment nested under a RawPost
type RawComment struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit,omitempty"`
	CreatedUTC float64 `json:"created_utc"`
	Body       string  `json:"body"`
	BodyHTML   string  `json:"body_html,omitempty"`
	Permalink  string  `json:"permalink,omitempty"`
}

// PostCount returns the number of posts in the payload
func (f *FetchResult) PostCount() int {
	if f == nil {
		return 0
	}
	return len(f.Posts)
}

// CommentCount returns the number of nested comments in the payload
func (f *FetchResult) CommentCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, p := range f.Posts {
		n += len(p.Comments)
	}
	return n
}
