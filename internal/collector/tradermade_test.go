package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmServer(t *testing.T, status int, body string) (*TraderMadeFetcher, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewTraderMadeFetcher("tm-key", WithBaseURL(srv.URL), WithRateLimit(0))
	f.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return f, &seen
}

func TestTraderMade_Live(t *testing.T) {
	f, seen := tmServer(t, http.StatusOK, `{"endpoint": "live", "quotes": [{"ask": 1.0936, "bid": 1.0932, "mid": 1.0934}]}`)
	q, err := f.FetchQuote(context.Background(), "eurusd")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", q.Symbol)
	assert.Equal(t, 1.0934, q.Price)

	require.Len(t, *seen, 1)
	r := (*seen)[0]
	assert.Equal(t, "/live", r.URL.Path)
	assert.Equal(t, "EURUSD", r.URL.Query().Get("currency"))
	assert.Equal(t, "tm-key", r.URL.Query().Get("api_key"))
}

func TestTraderMade_LiveMidFromAskBid(t *testing.T) {
	f, _ := tmServer(t, http.StatusOK, `{"quotes": [{"ask": "101", "bid": "99"}]}`)
	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, q.Price)
}

func TestTraderMade_LiveEmpty(t *testing.T) {
	f, _ := tmServer(t, http.StatusOK, `{"quotes": []}`)
	_, err := f.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTraderMade_RateLimit(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"status":  {http.StatusTooManyRequests, `{}`},
		"message": {http.StatusOK, `{"message": "You have hit your rate limit"}`},
		"error":   {http.StatusOK, `{"error": "rate limit exceeded"}`},
	} {
		t.Run(name, func(t *testing.T) {
			f, _ := tmServer(t, tc.status, tc.body)
			_, err := f.FetchQuote(context.Background(), "EURUSD")
			require.Error(t, err)
			assert.True(t, IsRateLimited(err))
		})
	}
}

func TestTraderMade_ErrorPayload(t *testing.T) {
	f, _ := tmServer(t, http.StatusOK, `{"error": 401, "message": "Invalid api key"}`)
	_, err := f.FetchQuote(context.Background(), "EURUSD")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "Invalid api key")
}

func TestTraderMade_Timeseries(t *testing.T) {
	f, seen := tmServer(t, http.StatusOK, `{"quotes": [
		{"date": "2024-03-14", "open": 1.0890, "high": 1.0950, "low": 1.0880, "close": 1.0940},
		{"date": "2024-03-13", "open": "1.0850", "high": "1.0900", "low": "1.0840", "close": "1.0890"},
		{"date": "2024-03-15", "open": 0, "high": 0, "low": 0, "close": 0}]}`)
	candles, err := f.FetchCandles(context.Background(), "EURUSD", "1D")
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 1.0890, candles[0].Close)
	assert.Equal(t, 1.0940, candles[1].Close)

	q := (*seen)[0].URL.Query()
	assert.Equal(t, "/timeseries", (*seen)[0].URL.Path)
	assert.Equal(t, "daily", q.Get("interval"))
	assert.Equal(t, "records", q.Get("format"))
	assert.Equal(t, "2024-03-15", q.Get("end_date"))
	assert.Equal(t, "2023-12-16", q.Get("start_date"))
}

func TestTraderMade_Window(t *testing.T) {
	interval, lookback, group, ok := tmWindow("1H")
	require.True(t, ok)
	assert.Equal(t, "hourly", interval)
	assert.Equal(t, 72*time.Hour, lookback)
	assert.Equal(t, 1, group)

	_, _, group, _ = tmWindow("4H")
	assert.Equal(t, 4, group)

	interval, _, _, _ = tmWindow("1W")
	assert.Equal(t, "daily", interval)

	for _, tf := range []string{"1m", "5m", "15m"} {
		_, _, _, ok = tmWindow(tf)
		assert.False(t, ok, tf)
	}
}

func TestTraderMade_SubHourCandlesNotSupported(t *testing.T) {
	f, seen := tmServer(t, http.StatusOK, `{"quotes": []}`)
	_, err := f.FetchCandles(context.Background(), "EURUSD", "15m")
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Empty(t, *seen)

	// The collector substitutes fallback bars for the piece.
	c := NewCollector(f, fixedMock(), time.Second, zerolog.Nop())
	snap, err := c.Collect(context.Background(), "EURUSD", "15m")
	require.NoError(t, err)
	assert.Equal(t, "mock", snap.Sources[PieceCandles])
	assert.NotEmpty(t, snap.Candles)
}

func TestTraderMade_NotSupported(t *testing.T) {
	f, seen := tmServer(t, http.StatusOK, `{}`)
	_, err := f.FetchFundamentals(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = f.FetchNews(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Empty(t, *seen)
}
