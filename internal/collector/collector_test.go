package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignal/internal/model"
)

// stubFetcher returns canned values or errors per piece.
type stubFetcher struct {
	quote   *model.Quote
	candles []model.Candle
	fund    *model.Fundamentals
	news    []model.NewsItem
	err     error
	block   bool
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) wait(ctx context.Context) error {
	if s.block {
		rctx, cancel := requestContext(ctx)
		defer cancel()
		<-rctx.Done()
		return rctx.Err()
	}
	return s.err
}

func (s *stubFetcher) FetchQuote(ctx context.Context, _ string) (*model.Quote, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.quote, nil
}

func (s *stubFetcher) FetchCandles(ctx context.Context, _, _ string) ([]model.Candle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.candles, nil
}

func (s *stubFetcher) FetchFundamentals(ctx context.Context, _ string) (*model.Fundamentals, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fund == nil {
		return nil, ErrNotSupported
	}
	return s.fund, nil
}

func (s *stubFetcher) FetchNews(ctx context.Context, _ string) ([]model.NewsItem, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.news, nil
}

func TestCollect_PrimaryServesEverything(t *testing.T) {
	stub := &stubFetcher{
		quote:   &model.Quote{Symbol: "AAPL", Price: 190},
		candles: []model.Candle{{Close: 189}, {Close: 190}},
		fund:    &model.Fundamentals{Symbol: "AAPL", PE: model.Float(20)},
		news:    []model.NewsItem{{ID: "x", Title: "t"}},
	}
	c := NewCollector(stub, fixedMock(), time.Second, zerolog.Nop())

	snap, err := c.Collect(context.Background(), "aapl", "1D")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, 190.0, snap.Quote.Price)
	assert.Len(t, snap.Candles, 2)
	assert.Len(t, snap.News, 1)
	for _, piece := range []string{PieceQuote, PieceCandles, PieceFundamentals, PieceNews} {
		assert.Equal(t, "stub", snap.Sources[piece], piece)
	}
	assert.Equal(t, "stub", c.Primary())
}

func TestCollect_FallsBackPerPiece(t *testing.T) {
	stub := &stubFetcher{
		quote: &model.Quote{Symbol: "AAPL", Price: 190},
		// empty candles, unsupported fundamentals, empty news
	}
	c := NewCollector(stub, fixedMock(), time.Second, zerolog.Nop())

	snap, err := c.Collect(context.Background(), "AAPL", "1D")
	require.NoError(t, err)
	assert.Equal(t, "stub", snap.Sources[PieceQuote])
	assert.Equal(t, "mock", snap.Sources[PieceCandles])
	assert.Equal(t, "mock", snap.Sources[PieceFundamentals])
	assert.Equal(t, "mock", snap.Sources[PieceNews])
	assert.Len(t, snap.Candles, 120)
	assert.Len(t, snap.News, 5)
}

func TestCollect_ProviderErrorFallsBack(t *testing.T) {
	stub := &stubFetcher{err: &APIError{Provider: "stub", StatusCode: 429, Message: "slow down"}}
	c := NewCollector(stub, fixedMock(), time.Second, zerolog.Nop())

	snap, err := c.Collect(context.Background(), "MSFT", "1H")
	require.NoError(t, err)
	assert.Equal(t, 401.78, snap.Quote.Price)
	for _, src := range snap.Sources {
		assert.Equal(t, "mock", src)
	}
}

func TestCollect_PrimaryTimeoutFallsBack(t *testing.T) {
	c := NewCollector(&stubFetcher{block: true}, fixedMock(), 20*time.Millisecond, zerolog.Nop())
	snap, err := c.Collect(context.Background(), "AAPL", "1D")
	require.NoError(t, err)
	assert.Equal(t, "mock", snap.Sources[PieceQuote])
	assert.NotNil(t, snap.Quote)
}

// avAllPieces serves every Alpha Vantage function an AAPL 1D collect uses.
var avAllPieces = map[string]string{
	"GLOBAL_QUOTE": `{"Global Quote": {"01. symbol": "AAPL", "05. price": "180.50", "06. volume": "1000",
		"09. change": "1.5", "10. change percent": "0.84%"}}`,
	"TIME_SERIES_DAILY": `{"Time Series (Daily)": {
		"2024-03-14": {"1. open": "178", "2. high": "181", "3. low": "177", "4. close": "179", "5. volume": "100"},
		"2024-03-15": {"1. open": "179", "2. high": "182", "3. low": "178", "4. close": "180.5", "5. volume": "120"}}}`,
	"OVERVIEW": `{"Symbol": "AAPL", "Name": "Apple Inc", "Sector": "TECHNOLOGY", "PERatio": "28.1"}`,
	"NEWS_SENTIMENT": `{"feed": [{"title": "Apple ships", "time_published": "20240315T101500",
		"overall_sentiment_label": "Bullish", "ticker_sentiment": []}]}`,
}

func TestCollect_RateLimitedProviderServesEveryPiece(t *testing.T) {
	tests := []struct {
		name    string
		rps     float64
		burst   int
		timeout time.Duration
	}{
		// Configured defaults: 5 requests per minute, 15s request timeout.
		{"default rate", 5.0 / 60, 5, 15 * time.Second},
		// Requests queue behind the limiter for longer than the request timeout.
		{"queue longer than timeout", 20, 1, 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, seen := avServer(t, avAllPieces, WithRateLimit(tt.rps), WithBurst(tt.burst))
			c := NewCollector(f, fixedMock(), tt.timeout, zerolog.Nop())

			snap, err := c.Collect(context.Background(), "AAPL", "1D")
			require.NoError(t, err)
			for _, piece := range []string{PieceQuote, PieceCandles, PieceFundamentals, PieceNews} {
				assert.Equal(t, "alphavantage", snap.Sources[piece], piece)
			}
			assert.Len(t, *seen, 4)
			assert.Equal(t, 180.5, snap.Quote.Price)
		})
	}
}

func TestRequestContext(t *testing.T) {
	ctx, cancel := requestContext(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = requestContext(WithRequestTimeout(context.Background(), time.Minute))
	defer cancel()
	_, ok = ctx.Deadline()
	assert.True(t, ok)

	assert.Equal(t, context.Background(), WithRequestTimeout(context.Background(), 0))
}

func TestCollect_CanceledContext(t *testing.T) {
	c := NewCollector(&stubFetcher{block: true}, fixedMock(), 0, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Collect(ctx, "AAPL", "1D")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCollect_MockOnly(t *testing.T) {
	c := NewCollector(nil, nil, 0, zerolog.Nop())
	snap, err := c.Collect(context.Background(), "BTCUSD", "4H")
	require.NoError(t, err)
	assert.Equal(t, "mock", snap.Sources[PieceQuote])
	assert.Len(t, snap.Candles, 180)
	assert.Equal(t, "Cryptocurrency", snap.Fundamentals.Sector)
}
