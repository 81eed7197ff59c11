package analyst

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignal/internal/cache"
	"MarketSignal/internal/collector"
	"MarketSignal/internal/model"
	"MarketSignal/internal/recorder"
	"MarketSignal/internal/strategy"
)

type memRecorder struct {
	recorder.NoopRecorder
	mu   sync.Mutex
	recs []recorder.SignalRecord
}

func (m *memRecorder) RecordSignal(_ context.Context, rec *recorder.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

func newTestService(t *testing.T) (*Service, *memRecorder) {
	t.Helper()
	fixed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	mock := &collector.MockFetcher{Now: func() time.Time { return fixed }}
	col := collector.NewCollector(mock, mock, time.Second, zerolog.Nop())
	rec := &memRecorder{}
	return NewService(col, cache.NewMemoryCache(), rec, time.Minute, zerolog.Nop()), rec
}

func TestAnalyze_CachesAndRecords(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, "aapl", "")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, strategy.DefaultTimeframe, first.Timeframe)
	assert.Equal(t, 182.52, first.Price)
	assert.Equal(t, "mock", first.Sources[collector.PieceQuote])
	require.NotNil(t, first.Result)
	assert.Equal(t, model.MediumTerm, first.Result.TimeFrame)
	assert.NotEmpty(t, first.Patterns)
	assert.Equal(t, 1, rec.count())

	second, err := svc.Analyze(ctx, "AAPL", "1D")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Result.Signal, second.Result.Signal)
	assert.Equal(t, first.Result.Confidence, second.Result.Confidence)
	assert.Equal(t, 1, rec.count(), "cache hits are not recorded")
}

func TestRefresh_BypassesCache(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, "BTCUSD", "1H")
	require.NoError(t, err)
	a, err := svc.Refresh(ctx, "BTCUSD", "1H", TriggerScan)
	require.NoError(t, err)
	assert.False(t, a.Cached)
	require.Equal(t, 2, rec.count())
	assert.Equal(t, TriggerScan, rec.recs[1].Trigger)
	assert.Equal(t, "1H", rec.recs[1].Timeframe)
}

func TestAnalyze_EmptySymbol(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Analyze(context.Background(), "  ", "1D")
	assert.ErrorIs(t, err, ErrEmptySymbol)
}

func TestPatterns_MatchEngine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Analyze(ctx, "MSFT", "4H")
	require.NoError(t, err)

	patterns, err := svc.Patterns(ctx, "msft", "4H")
	require.NoError(t, err)
	assert.Equal(t, a.Patterns, patterns)

	again, err := svc.Patterns(ctx, "MSFT", "4H")
	require.NoError(t, err)
	assert.Equal(t, patterns, again)
}

func TestSentimentAndFundamentals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sv, err := svc.Sentiment(ctx, "tsla")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", sv.Symbol)
	assert.Len(t, sv.News, 5)
	assert.Equal(t, strategy.AnalyzeSentiment(sv.News), sv.Summary)

	fv, err := svc.Fundamentals(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, fv.Fundamentals)
	assert.Equal(t, strategy.AnalyzeFundamentals(fv.Fundamentals), fv.Summary)
}

func TestAnalyzeInputs(t *testing.T) {
	svc, rec := newTestService(t)

	out, err := svc.AnalyzeInputs(Inputs{Symbol: "xyz"})
	require.NoError(t, err)
	assert.Equal(t, model.Neutral, out.Result.Signal)
	assert.Equal(t, []string{strategy.InsufficientDataReason}, out.Result.Reasoning)
	assert.Equal(t, "XYZ", out.Result.Symbol)
	assert.Nil(t, out.Breakdown)
	assert.Zero(t, rec.count())

	candles := make([]model.Candle, 30)
	for i := range candles {
		c := 90 + float64(i)
		candles[i] = model.Candle{Time: int64(i) * 86_400_000, Open: c - 0.5, High: c + 1, Low: c - 1, Close: c}
	}

	// Candles without market data still take the insufficient-data path.
	out, err = svc.AnalyzeInputs(Inputs{Symbol: "AAPL", Candles: candles})
	require.NoError(t, err)
	assert.Equal(t, model.Neutral, out.Result.Signal)
	assert.Equal(t, 50, out.Result.Confidence)
	assert.Nil(t, out.Breakdown)

	out, err = svc.AnalyzeInputs(Inputs{Symbol: "AAPL", Quote: &model.Quote{Price: 119}, Candles: candles})
	require.NoError(t, err)
	require.NotNil(t, out.Breakdown)
	assert.Equal(t, out.Breakdown.Signal, out.Result.Signal)
	assert.Len(t, out.Breakdown.Factors, 3)

	_, err = svc.AnalyzeInputs(Inputs{})
	assert.ErrorIs(t, err, ErrEmptySymbol)
}
