package stooq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/httputil"
	"github.com/wonny/themeradar/pkg/logger"
	"github.com/wonny/themeradar/pkg/redis"
)

const smhCSV = `Date,Open,High,Low,Close,Volume
2024-03-08,220.1,222.0,219.5,221.40,1000
2024-03-11,221.0,223.0,220.0,222.10,1100
2024-03-12,222.5,225.0,222.0,224.75,1200
2024-03-13,224.0,224.5,221.0,221.30,900
`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	log := logger.Nop()
	hc := httputil.New(log, 5*time.Second).DisableRetry()
	cache := redis.NewCache(redis.Disabled("test"))
	return NewClient(hc, srv.URL, 0, cache, log), &calls
}

func day(s string) time.Time {
	t, _ := time.Parse(contracts.DateLayout, s)
	return t
}

func TestParseDailyCSV(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"valid rows", smhCSV, 4, false},
		{"no data", "No data", 0, false},
		{"empty", "", 0, false},
		{"bad rows skipped", "Date,Close\n2024-01-02,10\nnot-a-date,11\n2024-01-03,x\n2024-01-04,0\n", 1, false},
		{"missing close column", "Date,Open\n2024-01-02,10\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := parseDailyCSV(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, bars, tt.want)
		})
	}

	bars, _ := parseDailyCSV(smhCSV)
	assert.Equal(t, day("2024-03-08"), bars[0].Date)
	assert.Equal(t, 221.40, bars[0].Close)
	assert.Equal(t, 1000.0, bars[0].Volume)
}

func TestStooqSymbol(t *testing.T) {
	assert.Equal(t, "smh.us", stooqSymbol("SMH"))
	assert.Equal(t, "spy.us", stooqSymbol(" spy "))
	assert.Equal(t, "brk-b.us", stooqSymbol("BRK-B"))
	assert.Equal(t, "vod.uk", stooqSymbol("VOD.UK"))
}

func TestCloseOnOrAfter(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(smhCSV))
	})

	// Saturday target → next session close
	q, err := c.CloseOnOrAfter(context.Background(), "SMH", day("2024-03-09"), 10)
	require.NoError(t, err)
	require.True(t, q.Found())
	assert.Equal(t, 222.10, *q.Price)
	assert.Equal(t, day("2024-03-11"), *q.PriceDate)
	assert.Contains(t, gotQuery, "s=smh.us")
	assert.Contains(t, gotQuery, "d1=20240309")
	assert.Contains(t, gotQuery, "d2=20240319")

	q, err = c.CloseOnOrAfter(context.Background(), "SMH", day("2024-03-12"), 10)
	require.NoError(t, err)
	assert.Equal(t, 224.75, *q.Price)
}

func TestCloseOnOrBefore(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(smhCSV))
	})

	q, err := c.CloseOnOrBefore(context.Background(), "SMH", day("2024-03-10"), 7)
	require.NoError(t, err)
	require.True(t, q.Found())
	assert.Equal(t, 221.40, *q.Price)
	assert.Equal(t, day("2024-03-08"), *q.PriceDate)
}

func TestLookup_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("No data"))
	})

	q, err := c.CloseOnOrAfter(context.Background(), "ZZZZ", day("2024-03-12"), 10)
	require.NoError(t, err)
	assert.False(t, q.Found())
	assert.Nil(t, q.Price)
	assert.Contains(t, q.Note, "no close for ZZZZ within 10 days after 2024-03-12")
}

func TestLookup_OutsideWindow(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(smhCSV))
	})

	// server ignores the range; the window is still enforced client-side
	q, err := c.CloseOnOrAfter(context.Background(), "SMH", day("2024-03-14"), 3)
	require.NoError(t, err)
	assert.False(t, q.Found())

	q, err = c.CloseOnOrBefore(context.Background(), "SMH", day("2024-03-01"), 3)
	require.NoError(t, err)
	assert.False(t, q.Found())
}

func TestLookup_HTTPError(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.CloseOnOrAfter(context.Background(), "SMH", day("2024-03-12"), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 503")
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "retry disabled")
}

func TestFetchDaily_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(smhCSV))
	}))
	defer srv.Close()

	log := logger.Nop()
	c := NewClient(httputil.New(log, time.Second).DisableRetry(), srv.URL, 1, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchDaily(ctx, "SMH", day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err, "burst of one is available immediately")

	_, err = c.FetchDaily(ctx, "SMH", day("2024-03-01"), day("2024-03-31"))
	assert.Error(t, err, "second call must wait ~1s and exceed the deadline")
}
