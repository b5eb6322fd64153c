package s0_docs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/httputil"
	"github.com/wonny/themeradar/pkg/logger"
)

// FileSource reads a fetch snapshot (JSON) from disk
type FileSource struct {
	path   string
	logger *logger.Logger
}

// NewFileSource creates a snapshot-backed document source
func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{path: path, logger: log}
}

// Fetch loads the snapshot and keeps posts from the requested subreddits
func (s *FileSource) Fetch(ctx context.Context, subreddits []string) (*contracts.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var result contracts.FetchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}

	filtered := filterSubreddits(&result, subreddits)
	s.logger.WithFields(map[string]interface{}{
		"path":     s.path,
		"posts":    filtered.PostCount(),
		"comments": filtered.CommentCount(),
	}).Info("Loaded document snapshot")
	return filtered, nil
}

// HTTPSource fetches the payload from a collector endpoint
// ⭐ SSOT: 외부 문서 수집기 호출은 여기서만
type HTTPSource struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

// NewHTTPSource creates an HTTP-backed document source
func NewHTTPSource(httpClient *httputil.Client, baseURL string, log *logger.Logger) *HTTPSource {
	return &HTTPSource{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), logger: log}
}

// Fetch requests ?subreddits=a,b,c and decodes the payload
func (s *HTTPSource) Fetch(ctx context.Context, subreddits []string) (*contracts.FetchResult, error) {
	params := url.Values{}
	params.Set("subreddits", strings.Join(subreddits, ","))
	fullURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())

	var result contracts.FetchResult
	if err := s.httpClient.GetJSON(ctx, fullURL, &result); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = time.Now().UTC()
	}
	if len(result.Subreddits) == 0 {
		result.Subreddits = subreddits
	}

	s.logger.WithFields(map[string]interface{}{
		"posts":    result.PostCount(),
		"comments": result.CommentCount(),
	}).Info("Fetched documents")
	return &result, nil
}

// filterSubreddits keeps matching posts (case-insensitive); an empty list keeps everything
func filterSubreddits(result *contracts.FetchResult, subreddits []string) *contracts.FetchResult {
	if len(subreddits) == 0 {
		return result
	}

	want := make(map[string]struct{}, len(subreddits))
	for _, s := range subreddits {
		want[strings.ToLower(s)] = struct{}{}
	}

	out := &contracts.FetchResult{
		GeneratedAt: result.GeneratedAt,
		Subreddits:  subreddits,
		Posts:       make([]contracts.RawPost, 0, len(result.Posts)),
	}
	for _, p := range result.Posts {
		if _, ok := want[strings.ToLower(p.Subreddit)]; ok {
			out.Posts = append(out.Posts, p)
		}
	}
	return out
}
