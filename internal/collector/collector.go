package collector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"MarketSignal/internal/logging"
	"MarketSignal/internal/model"
)

// Snapshot holds the four inputs of one analysis.
type Snapshot struct {
	Symbol       string              `json:"symbol"`
	Timeframe    string              `json:"timeframe"`
	Quote        *model.Quote        `json:"quote"`
	Candles      []model.Candle      `json:"candles"`
	Fundamentals *model.Fundamentals `json:"fundamentals"`
	News         []model.NewsItem    `json:"news"`
	// Sources names the fetcher that served each piece.
	Sources     map[string]string `json:"sources"`
	CollectedAt int64             `json:"collectedAt"`
}

// Snapshot pieces, as keys of Snapshot.Sources.
const (
	PieceQuote        = "quote"
	PieceCandles      = "candles"
	PieceFundamentals = "fundamentals"
	PieceNews         = "news"
)

// Collector fetches analysis inputs from a primary fetcher and substitutes
// fallback data for any piece the primary cannot serve.
type Collector struct {
	primary  Fetcher
	fallback Fetcher
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewCollector creates a new Collector. A nil fallback uses MockFetcher.
// timeout bounds each primary provider request; time spent queued behind the
// provider's rate limit does not count against it.
func NewCollector(primary, fallback Fetcher, timeout time.Duration, logger zerolog.Logger) *Collector {
	if fallback == nil {
		fallback = NewMockFetcher()
	}
	if primary == nil {
		primary = fallback
	}
	return &Collector{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logging.Component(logger, "collector"),
	}
}

// Primary returns the name of the primary fetcher.
func (c *Collector) Primary() string { return c.primary.Name() }

// Collect fetches quote, candles, fundamentals and news concurrently. Only
// cancellation of ctx is reported as an error; provider failures are logged
// and replaced by fallback data.
func (c *Collector) Collect(ctx context.Context, symbol, timeframe string) (*Snapshot, error) {
	symbol = strings.ToUpper(symbol)
	snap := &Snapshot{Symbol: symbol, Timeframe: timeframe}

	var quoteSrc, candleSrc, fundSrc, newsSrc string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Quote, quoteSrc, err = fetchWithFallback(c, gctx, PieceQuote, symbol,
			func(ctx context.Context, f Fetcher) (*model.Quote, error) { return f.FetchQuote(ctx, symbol) },
			func(q *model.Quote) bool { return q == nil || q.Price <= 0 })
		return err
	})
	g.Go(func() error {
		var err error
		snap.Candles, candleSrc, err = fetchWithFallback(c, gctx, PieceCandles, symbol,
			func(ctx context.Context, f Fetcher) ([]model.Candle, error) { return f.FetchCandles(ctx, symbol, timeframe) },
			func(cs []model.Candle) bool { return len(cs) == 0 })
		return err
	})
	g.Go(func() error {
		var err error
		snap.Fundamentals, fundSrc, err = fetchWithFallback(c, gctx, PieceFundamentals, symbol,
			func(ctx context.Context, f Fetcher) (*model.Fundamentals, error) { return f.FetchFundamentals(ctx, symbol) },
			func(f *model.Fundamentals) bool { return f == nil })
		return err
	})
	g.Go(func() error {
		var err error
		snap.News, newsSrc, err = fetchWithFallback(c, gctx, PieceNews, symbol,
			func(ctx context.Context, f Fetcher) ([]model.NewsItem, error) { return f.FetchNews(ctx, symbol) },
			func(n []model.NewsItem) bool { return len(n) == 0 })
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Sources = map[string]string{
		PieceQuote:        quoteSrc,
		PieceCandles:      candleSrc,
		PieceFundamentals: fundSrc,
		PieceNews:         newsSrc,
	}
	snap.CollectedAt = time.Now().UnixMilli()
	return snap, nil
}

// fetchWithFallback tries the primary fetcher, then the fallback when the
// primary errs or returns an empty value. It returns an error only when ctx
// is done.
func fetchWithFallback[T any](
	c *Collector,
	ctx context.Context,
	piece, symbol string,
	fetch func(context.Context, Fetcher) (T, error),
	empty func(T) bool,
) (T, string, error) {
	var zero T

	v, err := fetch(WithRequestTimeout(ctx, c.timeout), c.primary)
	if err == nil && !empty(v) {
		return v, c.primary.Name(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, "", ctxErr
	}
	if c.primary == c.fallback {
		return v, c.primary.Name(), nil
	}

	switch {
	case errors.Is(err, ErrNotSupported):
		c.logger.Debug().Str("piece", piece).Str("provider", c.primary.Name()).Msg("not served by provider, using fallback data")
	case err == nil:
		c.logger.Warn().Str("piece", piece).Str("symbol", symbol).Str("provider", c.primary.Name()).Msg("empty response, using fallback data")
	case IsRateLimited(err):
		c.logger.Warn().Err(err).Str("piece", piece).Str("symbol", symbol).Str("provider", c.primary.Name()).Msg("rate limited, using fallback data")
	default:
		c.logger.Warn().Err(err).Str("piece", piece).Str("symbol", symbol).Str("provider", c.primary.Name()).Msg("fetch failed, using fallback data")
	}

	fv, ferr := fetch(ctx, c.fallback)
	if ferr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, "", ctxErr
		}
		c.logger.Error().Err(ferr).Str("piece", piece).Str("symbol", symbol).Msg("fallback fetch failed")
		return zero, "", nil
	}
	return fv, c.fallback.Name(), nil
}
