package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"MarketSignal/internal/model"
)

const (
	// TraderMadeBaseURL is the REST root of the TraderMade market data API.
	TraderMadeBaseURL = "https://marketdata.tradermade.com/api/v1"

	traderMadeName = "tradermade"
)

// TraderMadeFetcher implements Fetcher using the TraderMade REST API. It
// serves prices only.
type TraderMadeFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewTraderMadeFetcher creates a new TraderMade fetcher.
func NewTraderMadeFetcher(apiKey string, opts ...Option) *TraderMadeFetcher {
	o := buildOptions(TraderMadeBaseURL, traderMadeName, opts)
	return &TraderMadeFetcher{
		baseURL: o.baseURL,
		apiKey:  apiKey,
		client:  o.client,
		limiter: o.limiter,
		logger:  o.logger,
		now:     time.Now,
	}
}

func (f *TraderMadeFetcher) Name() string { return traderMadeName }

// flexFloat accepts both JSON numbers and numeric strings.
type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*v = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = flexFloat(f)
	return nil
}

// tmEnvelope carries the error fields TraderMade sets on failures.
type tmEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

func (f *TraderMadeFetcher) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	ctx, cancel := requestContext(ctx)
	defer cancel()

	params.Set("api_key", f.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", f.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	f.logger.Debug().Str("path", path).Str("currency", params.Get("currency")).Msg("tradermade request")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("tradermade fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tradermade read body: %w", err)
	}

	var env tmEnvelope
	_ = json.Unmarshal(body, &env)
	errText := strings.Trim(string(env.Error), `"`)
	if resp.StatusCode == http.StatusTooManyRequests || env.Status == http.StatusTooManyRequests ||
		strings.Contains(strings.ToLower(env.Message), "rate limit") || strings.Contains(strings.ToLower(errText), "rate limit") {
		return &APIError{Provider: traderMadeName, StatusCode: http.StatusTooManyRequests, Message: "API rate limit reached"}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: traderMadeName, StatusCode: resp.StatusCode, Message: string(body)}
	}
	if errText != "" && errText != "null" {
		msg := env.Message
		if msg == "" {
			msg = errText
		}
		return &APIError{Provider: traderMadeName, StatusCode: http.StatusBadRequest, Message: msg}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("tradermade decode: %w", err)
	}
	return nil
}

// FetchQuote returns the live mid price. The live endpoint has no session
// data, so change and range fields stay zero.
func (f *TraderMadeFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(symbol)
	var live struct {
		Quotes []struct {
			Ask flexFloat `json:"ask"`
			Bid flexFloat `json:"bid"`
			Mid flexFloat `json:"mid"`
		} `json:"quotes"`
	}
	if err := f.get(ctx, "/live", url.Values{"currency": {symbol}}, &live); err != nil {
		return nil, err
	}
	if len(live.Quotes) == 0 {
		return nil, fmt.Errorf("tradermade live %s: %w", symbol, ErrNoData)
	}

	q := live.Quotes[0]
	price := float64(q.Mid)
	if price == 0 {
		price = (float64(q.Ask) + float64(q.Bid)) / 2
	}
	if price == 0 {
		return nil, fmt.Errorf("tradermade live %s: %w", symbol, ErrNoData)
	}
	return &model.Quote{
		Symbol:    symbol,
		Price:     price,
		Close:     price,
		Timestamp: f.now().UnixMilli(),
	}, nil
}

// tmWindow maps a timeframe to the TraderMade interval, how far back to
// request, and how many bars to merge into one. Sub-hour timeframes are not
// served: the timeseries endpoint's finest interval here is hourly.
func tmWindow(timeframe string) (interval string, lookback time.Duration, group int, ok bool) {
	switch timeframe {
	case "1m", "5m", "15m":
		return "", 0, 0, false
	case "1H":
		return "hourly", 3 * 24 * time.Hour, 1, true
	case "4H":
		return "hourly", 12 * 24 * time.Hour, 4, true
	default:
		return "daily", 90 * 24 * time.Hour, 1, true
	}
}

func (f *TraderMadeFetcher) FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.Candle, error) {
	symbol = strings.ToUpper(symbol)
	interval, lookback, group, ok := tmWindow(timeframe)
	if !ok {
		return nil, fmt.Errorf("tradermade %s candles: %w", timeframe, ErrNotSupported)
	}
	end := f.now().UTC()
	start := end.Add(-lookback)

	var series struct {
		Quotes []struct {
			Date  string    `json:"date"`
			Open  flexFloat `json:"open"`
			High  flexFloat `json:"high"`
			Low   flexFloat `json:"low"`
			Close flexFloat `json:"close"`
		} `json:"quotes"`
	}
	params := url.Values{
		"currency":   {symbol},
		"start_date": {start.Format(time.DateOnly)},
		"end_date":   {end.Format(time.DateOnly)},
		"format":     {"records"},
		"interval":   {interval},
	}
	if err := f.get(ctx, "/timeseries", params, &series); err != nil {
		return nil, err
	}

	candles := make([]model.Candle, 0, len(series.Quotes))
	for _, q := range series.Quotes {
		t, err := parseStamp(q.Date)
		if err != nil {
			f.logger.Warn().Str("date", q.Date).Msg("skipping bar with unparseable time")
			continue
		}
		if q.Open == 0 && q.High == 0 && q.Low == 0 && q.Close == 0 {
			continue
		}
		candles = append(candles, model.Candle{
			Time:  t.UnixMilli(),
			Open:  float64(q.Open),
			High:  float64(q.High),
			Low:   float64(q.Low),
			Close: float64(q.Close),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("tradermade timeseries %s: %w", symbol, ErrNoData)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return aggregateCandles(candles, group), nil
}

func (f *TraderMadeFetcher) FetchFundamentals(_ context.Context, _ string) (*model.Fundamentals, error) {
	return nil, fmt.Errorf("tradermade fundamentals: %w", ErrNotSupported)
}

func (f *TraderMadeFetcher) FetchNews(_ context.Context, _ string) ([]model.NewsItem, error) {
	return nil, fmt.Errorf("tradermade news: %w", ErrNotSupported)
}
