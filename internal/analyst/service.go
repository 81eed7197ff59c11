package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"MarketSignal/internal/cache"
	"MarketSignal/internal/calculator"
	"MarketSignal/internal/collector"
	"MarketSignal/internal/logging"
	"MarketSignal/internal/model"
	"MarketSignal/internal/recorder"
	"MarketSignal/internal/strategy"
)

// ErrEmptySymbol is returned when no symbol is given.
var ErrEmptySymbol = errors.New("symbol is required")

// Triggers stored with recorded signals.
const (
	TriggerAPI     = "api"
	TriggerScan    = "scan"
	TriggerCommand = "command"
)

// Analysis is one signal computation together with the data it used.
type Analysis struct {
	Symbol    string                   `json:"symbol"`
	Timeframe string                   `json:"timeframe"`
	Price     float64                  `json:"price"`
	Result    *model.AnalysisResult    `json:"result"`
	Patterns  []model.PatternDetection `json:"patterns"`
	Sources   map[string]string        `json:"sources"`
	Cached    bool                     `json:"cached"`
}

// SentimentView is the news list of a symbol and its aggregate tone.
type SentimentView struct {
	Symbol  string                 `json:"symbol"`
	Summary model.SentimentSummary `json:"summary"`
	News    []model.NewsItem       `json:"news"`
}

// FundamentalsView is a fundamentals record and its score.
type FundamentalsView struct {
	Symbol       string                    `json:"symbol"`
	Fundamentals *model.Fundamentals       `json:"fundamentals"`
	Summary      model.FundamentalsSummary `json:"summary"`
}

// Service feeds collected market data to the signal engine, caching and
// recording its output.
type Service struct {
	collector *collector.Collector
	cache     cache.Cache
	recorder  recorder.Recorder
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewService creates a Service. Nil cache and recorder disable caching and
// history.
func NewService(c *collector.Collector, ch cache.Cache, rec recorder.Recorder, ttl time.Duration, logger zerolog.Logger) *Service {
	if ch == nil {
		ch = cache.NoopCache{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{
		collector: c,
		cache:     ch,
		recorder:  rec,
		ttl:       ttl,
		logger:    logging.Component(logger, "analyst"),
	}
}

// Recorder returns the history store.
func (s *Service) Recorder() recorder.Recorder { return s.recorder }

// Provider names the primary market data provider.
func (s *Service) Provider() string { return s.collector.Primary() }

func normalize(symbol, timeframe string) (string, string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", "", ErrEmptySymbol
	}
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		timeframe = strategy.DefaultTimeframe
	}
	return symbol, timeframe, nil
}

// Analyze returns the signal for symbol, from cache when a fresh copy exists.
func (s *Service) Analyze(ctx context.Context, symbol, timeframe string) (*Analysis, error) {
	return s.analyze(ctx, symbol, timeframe, TriggerAPI, true)
}

// Refresh recomputes the signal regardless of the cache.
func (s *Service) Refresh(ctx context.Context, symbol, timeframe, trigger string) (*Analysis, error) {
	return s.analyze(ctx, symbol, timeframe, trigger, false)
}

func (s *Service) analyze(ctx context.Context, symbol, timeframe, trigger string, useCache bool) (*Analysis, error) {
	symbol, timeframe, err := normalize(symbol, timeframe)
	if err != nil {
		return nil, err
	}
	key := cache.SignalKey(symbol, timeframe)

	if useCache {
		var cached Analysis
		err := s.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			cached.Cached = true
			return &cached, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}

	snap, err := s.collector.Collect(ctx, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("collect %s %s: %w", symbol, timeframe, err)
	}

	res := strategy.GenerateSignal(symbol, snap.Quote, snap.Candles, snap.Fundamentals, snap.News, timeframe)
	a := &Analysis{
		Symbol:    symbol,
		Timeframe: timeframe,
		Result:    res,
		Patterns:  strategy.AnalyzeTechnicalPatterns(symbol, snap.Candles, timeframe),
		Sources:   snap.Sources,
	}
	if snap.Quote != nil {
		a.Price = snap.Quote.Price
	}

	if err := s.cache.Set(ctx, key, a, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	rec := recorder.NewSignalRecord(res, timeframe, a.Price, snap.Sources[collector.PieceQuote], trigger)
	if err := s.recorder.RecordSignal(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("record signal failed")
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Str("signal", string(res.Signal)).
		Int("confidence", res.Confidence).
		Str("trigger", trigger).
		Msg("signal generated")
	return a, nil
}

// Patterns returns the pattern detections for symbol. Cached lists are keyed
// by the candle trend as well.
func (s *Service) Patterns(ctx context.Context, symbol, timeframe string) ([]model.PatternDetection, error) {
	symbol, timeframe, err := normalize(symbol, timeframe)
	if err != nil {
		return nil, err
	}
	snap, err := s.collector.Collect(ctx, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("collect %s %s: %w", symbol, timeframe, err)
	}

	key := cache.PatternsKey(symbol, timeframe, calculator.IsBullishTrend(snap.Candles))
	var patterns []model.PatternDetection
	if err := s.cache.Get(ctx, key, &patterns); err == nil {
		return patterns, nil
	}

	patterns = strategy.AnalyzeTechnicalPatterns(symbol, snap.Candles, timeframe)
	if len(patterns) > 0 {
		if err := s.cache.Set(ctx, key, patterns, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return patterns, nil
}

// Sentiment returns the news of symbol and its aggregate tone.
func (s *Service) Sentiment(ctx context.Context, symbol string) (*SentimentView, error) {
	symbol, timeframe, err := normalize(symbol, "")
	if err != nil {
		return nil, err
	}
	snap, err := s.collector.Collect(ctx, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	return &SentimentView{
		Symbol:  symbol,
		Summary: strategy.AnalyzeSentiment(snap.News),
		News:    snap.News,
	}, nil
}

// Fundamentals returns the fundamentals record of symbol and its score.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*FundamentalsView, error) {
	symbol, timeframe, err := normalize(symbol, "")
	if err != nil {
		return nil, err
	}
	snap, err := s.collector.Collect(ctx, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	return &FundamentalsView{
		Symbol:       symbol,
		Fundamentals: snap.Fundamentals,
		Summary:      strategy.AnalyzeFundamentals(snap.Fundamentals),
	}, nil
}

// Inputs are caller-supplied analysis inputs.
type Inputs struct {
	Symbol       string              `json:"symbol"`
	Timeframe    string              `json:"timeframe"`
	Quote        *model.Quote        `json:"marketData"`
	Candles      []model.Candle      `json:"candles"`
	Fundamentals *model.Fundamentals `json:"fundamentals"`
	News         []model.NewsItem    `json:"news"`
}

// InputsAnalysis is the result of AnalyzeInputs.
type InputsAnalysis struct {
	Result *model.AnalysisResult `json:"result"`
	// Breakdown is nil when the inputs are insufficient for a signal.
	Breakdown *strategy.Breakdown `json:"breakdown,omitempty"`
}

// AnalyzeInputs runs the engine on the given inputs without fetching,
// caching or recording.
func (s *Service) AnalyzeInputs(in Inputs) (*InputsAnalysis, error) {
	symbol, timeframe, err := normalize(in.Symbol, in.Timeframe)
	if err != nil {
		return nil, err
	}
	res, b := strategy.GenerateSignalDetail(symbol, in.Quote, in.Candles, in.Fundamentals, in.News, timeframe)
	return &InputsAnalysis{Result: res, Breakdown: b}, nil
}
