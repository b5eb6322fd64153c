package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/redis"
)

const (
	directionAfter  = "after"
	directionBefore = "before"
)

// CloseOnOrAfter returns the first close on or after date within maxDays calendar days
func (c *Client) CloseOnOrAfter(ctx context.Context, symbol string, date time.Time, maxDays int) (contracts.PriceQuote, error) {
	return c.lookup(ctx, symbol, date, maxDays, directionAfter)
}

// CloseOnOrBefore returns the last close on or before date within maxDays calendar days
func (c *Client) CloseOnOrBefore(ctx context.Context, symbol string, date time.Time, maxDays int) (contracts.PriceQuote, error) {
	return c.lookup(ctx, symbol, date, maxDays, directionBefore)
}

func (c *Client) lookup(ctx context.Context, symbol string, date time.Time, maxDays int, direction string) (contracts.PriceQuote, error) {
	if maxDays < 0 {
		maxDays = 0
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	key := redis.QuoteKey(symbol, direction, day.Format(contracts.DateLayout), maxDays)

	if c.cache != nil {
		var cached contracts.PriceQuote
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Quote cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	from, to := day, day.AddDate(0, 0, maxDays)
	if direction == directionBefore {
		from, to = day.AddDate(0, 0, -maxDays), day
	}

	bars, err := c.FetchDaily(ctx, symbol, from, to)
	if err != nil {
		return contracts.PriceQuote{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	quote := pickClose(symbol, bars, day, maxDays, direction)

	if c.cache != nil {
		ttl := redis.TTLQuote
		if !quote.Found() {
			ttl = redis.TTLEmptyHit
		}
		if err := c.cache.Set(ctx, key, quote, ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Quote cache write failed")
		}
	}
	return quote, nil
}

// pickClose selects the bar nearest to day in the search direction
func pickClose(symbol string, bars []DailyBar, day time.Time, maxDays int, direction string) contracts.PriceQuote {
	quote := contracts.PriceQuote{Symbol: symbol}

	var chosen *DailyBar
	for i := range bars {
		b := &bars[i]
		if direction == directionAfter {
			if !b.Date.Before(day) && b.Date.Sub(day) <= time.Duration(maxDays)*24*time.Hour {
				chosen = b
				break
			}
			continue
		}
		if !b.Date.After(day) && day.Sub(b.Date) <= time.Duration(maxDays)*24*time.Hour {
			chosen = b // bars are ascending; keep the latest
		}
	}

	if chosen == nil {
		quote.Note = fmt.Sprintf("no close for %s within %d days %s %s",
			symbol, maxDays, direction, day.Format(contracts.DateLayout))
		return quote
	}

	price := chosen.Close
	date := chosen.Date
	quote.Price = &price
	quote.PriceDate = &date
	return quote
}

// parseDailyCSV parses "Date,Open,High,Low,Close,Volume" rows.
// Stooq answers unknown symbols with a bare "No data" line.
func parseDailyCSV(body string) ([]DailyBar, error) {
	body = strings.TrimSpace(body)
	if body == "" || strings.EqualFold(body, "no data") {
		return []DailyBar{}, nil
	}

	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, okDate := cols["date"]
	closeCol, okClose := cols["close"]
	if !okDate || !okClose {
		return nil, fmt.Errorf("missing date/close columns in header %v", header)
	}

	bars := []DailyBar{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) <= dateCol || len(rec) <= closeCol {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[dateCol]))
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil || closePrice <= 0 {
			continue
		}

		bars = append(bars, DailyBar{
			Date:   date,
			Open:   field(rec, cols, "open"),
			High:   field(rec, cols, "high"),
			Low:    field(rec, cols, "low"),
			Close:  closePrice,
			Volume: field(rec, cols, "volume"),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// field parses an optional numeric column (0 when absent or malformed)
func field(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return 0
	}
	v, _ := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	return v
}
