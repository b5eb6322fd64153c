package stooq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/themeradar/pkg/httputil"
	"github.com/wonny/themeradar/pkg/logger"
	"github.com/wonny/themeradar/pkg/redis"
)

// DefaultBaseURL is the public Stooq endpoint
const DefaultBaseURL = "https://stooq.com"

// Client fetches daily closes from Stooq's CSV download endpoint
// ⭐ SSOT: 가격 데이터 HTTP 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
	cache      *redis.Cache
}

// NewClient creates a Stooq client. ratePerSec ≤ 0 disables local throttling; cache may be nil.
func NewClient(httpClient *httputil.Client, baseURL string, ratePerSec int, cache *redis.Cache, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("stooq"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    limiter,
		cache:      cache,
	}
}

// DailyBar is one daily OHLCV row
type DailyBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// FetchDaily returns daily bars for symbol in [from, to], oldest first.
// An unknown symbol or an empty range yields an empty slice, not an error.
func (c *Client) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]DailyBar, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := url.Values{}
	params.Set("s", stooqSymbol(symbol))
	params.Set("i", "d")
	params.Set("d1", from.Format("20060102"))
	params.Set("d2", to.Format("20060102"))
	fullURL := fmt.Sprintf("%s/q/d/l/?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	bars, err := parseDailyCSV(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"count":  len(bars),
	}).Debug("Fetched daily bars")
	return bars, nil
}

// stooqSymbol maps a US ticker to Stooq's notation (SMH → smh.us)
func stooqSymbol(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".us"
}
