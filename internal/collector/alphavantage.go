package collector

import (
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

	"MarketSignal/internal/logging"
	"MarketSignal/internal/model"
)

const (
	// AlphaVantageBaseURL is the query endpoint of the Alpha Vantage API.
	AlphaVantageBaseURL = "https://www.alphavantage.co/query"

	alphaVantageName = "alphavantage"
)

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage API.
type AlphaVantageFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option configures a rate-limited HTTP fetcher.
type Option func(*httpOptions)

type httpOptions struct {
	baseURL string
	client  *http.Client
	rps     float64
	burst   int
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *httpOptions) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *httpOptions) {
		o.client = client
	}
}

// WithProxy routes requests through proxyURL.
func WithProxy(proxyURL string, timeout time.Duration) Option {
	return func(o *httpOptions) {
		o.client = newHTTPClient(proxyURL, timeout)
	}
}

// WithRateLimit sets the sustained request rate. Values <= 0 disable limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(o *httpOptions) {
		o.rps = requestsPerSecond
	}
}

// WithBurst sets how many requests may go out back to back before the rate
// limit applies.
func WithBurst(n int) Option {
	return func(o *httpOptions) {
		if n > 0 {
			o.burst = n
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *httpOptions) {
		o.logger = logger
	}
}

func buildOptions(defaultBaseURL, name string, opts []Option) httpOptions {
	o := httpOptions{
		baseURL: defaultBaseURL,
		client:  newHTTPClient("", 0),
		rps:     1,
		burst:   1,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rps <= 0 {
		o.limiter = rate.NewLimiter(rate.Inf, o.burst)
	} else {
		o.limiter = rate.NewLimiter(rate.Limit(o.rps), o.burst)
	}
	o.logger = logging.Component(o.logger, name)
	return o
}

// NewAlphaVantageFetcher creates a new Alpha Vantage fetcher.
func NewAlphaVantageFetcher(apiKey string, opts ...Option) *AlphaVantageFetcher {
	o := buildOptions(AlphaVantageBaseURL, alphaVantageName, opts)
	return &AlphaVantageFetcher{
		baseURL: o.baseURL,
		apiKey:  apiKey,
		client:  o.client,
		limiter: o.limiter,
		logger:  o.logger,
	}
}

func (f *AlphaVantageFetcher) Name() string { return alphaVantageName }

// query performs one API call and returns the top-level JSON object.
// Alpha Vantage answers errors and throttling with HTTP 200 and a message
// field, so those are turned into APIErrors here.
func (f *AlphaVantageFetcher) query(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	ctx, cancel := requestContext(ctx)
	defer cancel()

	params.Set("apikey", f.apiKey)
	reqURL := f.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	f.logger.Debug().Str("function", params.Get("function")).Str("symbol", params.Get("symbol")).Msg("alphavantage request")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: alphaVantageName, StatusCode: resp.StatusCode, Message: string(body)}
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	if msg := stringField(data, "Error Message"); msg != "" {
		return nil, &APIError{Provider: alphaVantageName, StatusCode: http.StatusBadRequest, Message: msg}
	}
	for _, key := range []string{"Note", "Information"} {
		if msg := stringField(data, key); msg != "" {
			return nil, &APIError{Provider: alphaVantageName, StatusCode: http.StatusTooManyRequests, Message: msg}
		}
	}
	return data, nil
}

func stringField(data map[string]json.RawMessage, key string) string {
	raw, ok := data[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// cryptoBase strips the quote currency: BTCUSD -> BTC.
func cryptoBase(symbol string) string {
	return strings.TrimSuffix(symbol, "USD")
}

func isCrypto(symbol string) bool {
	info, _ := model.LookupSymbol(symbol)
	return info.Market == model.MarketCrypto
}

func (f *AlphaVantageFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(symbol)
	if isCrypto(symbol) {
		return f.fetchCryptoQuote(ctx, symbol)
	}

	data, err := f.query(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}})
	if err != nil {
		return nil, err
	}
	var gq map[string]string
	if raw, ok := data["Global Quote"]; ok {
		if err := json.Unmarshal(raw, &gq); err != nil {
			return nil, fmt.Errorf("alphavantage decode quote: %w", err)
		}
	}
	price := parseFloat(gq["05. price"])
	if price == nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, ErrNoData)
	}

	q := &model.Quote{
		Symbol:    symbol,
		Price:     *price,
		Timestamp: time.Now().UnixMilli(),
	}
	if v := parseFloat(gq["09. change"]); v != nil {
		q.Change = *v
	}
	if v := parseFloat(strings.TrimSuffix(gq["10. change percent"], "%")); v != nil {
		q.ChangePercent = *v
	}
	if v := parseFloat(gq["02. open"]); v != nil {
		q.Open = *v
	}
	if v := parseFloat(gq["03. high"]); v != nil {
		q.High = *v
	}
	if v := parseFloat(gq["04. low"]); v != nil {
		q.Low = *v
	}
	if v := parseFloat(gq["06. volume"]); v != nil {
		q.Volume = int64(*v)
	}
	q.Close = q.Price
	return q, nil
}

// fetchCryptoQuote derives price and change from the two latest daily bars.
func (f *AlphaVantageFetcher) fetchCryptoQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	candles, err := f.fetchSeries(ctx, url.Values{
		"function": {"DIGITAL_CURRENCY_DAILY"},
		"symbol":   {cryptoBase(symbol)},
		"market":   {"USD"},
	}, "Time Series (Digital Currency Daily)")
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, fmt.Errorf("alphavantage crypto quote %s: %w", symbol, ErrNoData)
	}

	today := candles[len(candles)-1]
	yesterday := candles[len(candles)-2]
	change := today.Close - yesterday.Close
	var changePct float64
	if yesterday.Close != 0 {
		changePct = change / yesterday.Close * 100
	}
	return &model.Quote{
		Symbol:        symbol,
		Price:         today.Close,
		Change:        change,
		ChangePercent: changePct,
		Volume:        today.Volume,
		High:          today.High,
		Low:           today.Low,
		Open:          today.Open,
		Close:         today.Close,
		Timestamp:     time.Now().UnixMilli(),
	}, nil
}

// avIntervals maps chart timeframes to Alpha Vantage intervals. 4H is
// served from 60min bars grouped by four.
var avIntervals = map[string]string{
	"1m":  "1min",
	"5m":  "5min",
	"15m": "15min",
	"1H":  "60min",
	"4H":  "60min",
	"1D":  "daily",
	"1W":  "weekly",
	"1M":  "monthly",
}

// seriesRequest builds the query and response key for a candle request.
func seriesRequest(symbol, timeframe string) (url.Values, string) {
	interval, ok := avIntervals[timeframe]
	if !ok {
		interval = "daily"
	}
	periodic := interval == "daily" || interval == "weekly" || interval == "monthly"
	title := strings.ToUpper(interval[:1]) + interval[1:]

	switch {
	case isCrypto(symbol) && periodic:
		return url.Values{
			"function": {"DIGITAL_CURRENCY_" + strings.ToUpper(interval)},
			"symbol":   {cryptoBase(symbol)},
			"market":   {"USD"},
		}, fmt.Sprintf("Time Series (Digital Currency %s)", title)
	case isCrypto(symbol):
		return url.Values{
			"function": {"CRYPTO_INTRADAY"},
			"symbol":   {cryptoBase(symbol)},
			"market":   {"USD"},
			"interval": {interval},
		}, fmt.Sprintf("Time Series Crypto (%s)", interval)
	case interval == "daily":
		return url.Values{"function": {"TIME_SERIES_DAILY"}, "symbol": {symbol}}, "Time Series (Daily)"
	case interval == "weekly":
		return url.Values{"function": {"TIME_SERIES_WEEKLY"}, "symbol": {symbol}}, "Weekly Time Series"
	case interval == "monthly":
		return url.Values{"function": {"TIME_SERIES_MONTHLY"}, "symbol": {symbol}}, "Monthly Time Series"
	default:
		return url.Values{
			"function": {"TIME_SERIES_INTRADAY"},
			"symbol":   {symbol},
			"interval": {interval},
		}, fmt.Sprintf("Time Series (%s)", interval)
	}
}

func (f *AlphaVantageFetcher) FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.Candle, error) {
	symbol = strings.ToUpper(symbol)
	params, key := seriesRequest(symbol, timeframe)
	candles, err := f.fetchSeries(ctx, params, key)
	if err != nil {
		return nil, err
	}
	if timeframe == "4H" {
		candles = aggregateCandles(candles, 4)
	}
	return candles, nil
}

// fetchSeries reads a date-keyed OHLCV object and returns it oldest first.
func (f *AlphaVantageFetcher) fetchSeries(ctx context.Context, params url.Values, key string) ([]model.Candle, error) {
	data, err := f.query(ctx, params)
	if err != nil {
		return nil, err
	}
	raw, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("alphavantage %s: missing %q: %w", params.Get("function"), key, ErrNoData)
	}
	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("alphavantage decode series: %w", err)
	}

	candles := make([]model.Candle, 0, len(series))
	for stamp, values := range series {
		t, err := parseStamp(stamp)
		if err != nil {
			f.logger.Warn().Str("timestamp", stamp).Msg("skipping bar with unparseable time")
			continue
		}
		c := model.Candle{Time: t.UnixMilli()}
		c.Open = firstFloat(values, "1. open", "1a. open (USD)")
		c.High = firstFloat(values, "2. high", "2a. high (USD)")
		c.Low = firstFloat(values, "3. low", "3a. low (USD)")
		c.Close = firstFloat(values, "4. close", "4a. close (USD)")
		c.Volume = int64(firstFloat(values, "5. volume"))
		if c.Open == 0 && c.High == 0 && c.Low == 0 && c.Close == 0 {
			continue
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("alphavantage %s: %w", params.Get("function"), ErrNoData)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return candles, nil
}

func parseStamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func firstFloat(values map[string]string, keys ...string) float64 {
	for _, k := range keys {
		if v := parseFloat(values[k]); v != nil {
			return *v
		}
	}
	return 0
}

// parseFloat returns nil for the empty and placeholder values the API uses
// for unknown fields.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "-", "null":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func percent(s string) *float64 {
	v := parseFloat(s)
	if v == nil {
		return nil
	}
	return model.Float(*v * 100)
}

type avOverview struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	EPS                        string `json:"EPS"`
	DividendYield              string `json:"DividendYield"`
	Beta                       string `json:"Beta"`
	High52W                    string `json:"52WeekHigh"`
	Low52W                     string `json:"52WeekLow"`
	RevenueTTM                 string `json:"RevenueTTM"`
	GrossProfitTTM             string `json:"GrossProfitTTM"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
}

// FetchFundamentals reads the company overview. Ratios the API reports as
// fractions are converted to percent. Debt and assets are not part of the
// overview and stay unknown.
func (f *AlphaVantageFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	symbol = strings.ToUpper(symbol)
	if isCrypto(symbol) {
		return nil, fmt.Errorf("alphavantage overview for crypto: %w", ErrNotSupported)
	}

	data, err := f.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}})
	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(data)
	var ov avOverview
	if err := json.Unmarshal(raw, &ov); err != nil {
		return nil, fmt.Errorf("alphavantage decode overview: %w", err)
	}
	if ov.Symbol == "" {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, ErrNoData)
	}

	return &model.Fundamentals{
		Symbol:        ov.Symbol,
		Name:          ov.Name,
		Sector:        ov.Sector,
		Industry:      ov.Industry,
		PE:            parseFloat(ov.PERatio),
		RevenueGrowth: percent(ov.QuarterlyRevenueGrowthYOY),
		ProfitGrowth:  percent(ov.QuarterlyEarningsGrowthYOY),
		DividendYield: percent(ov.DividendYield),
		MarketCap:     parseFloat(ov.MarketCapitalization),
		EPS:           parseFloat(ov.EPS),
		Revenue:       parseFloat(ov.RevenueTTM),
		Profit:        parseFloat(ov.GrossProfitTTM),
		Beta:          parseFloat(ov.Beta),
		High52W:       parseFloat(ov.High52W),
		Low52W:        parseFloat(ov.Low52W),
	}, nil
}

type avNewsFeed struct {
	Feed []struct {
		Title                 string `json:"title"`
		URL                   string `json:"url"`
		TimePublished         string `json:"time_published"`
		Summary               string `json:"summary"`
		Source                string `json:"source"`
		OverallSentimentLabel string `json:"overall_sentiment_label"`
		TickerSentiment       []struct {
			Ticker         string `json:"ticker"`
			RelevanceScore string `json:"relevance_score"`
		} `json:"ticker_sentiment"`
	} `json:"feed"`
}

// newsTicker maps a symbol to the ticker syntax of the news endpoint.
func newsTicker(symbol string) string {
	info, _ := model.LookupSymbol(symbol)
	switch info.Market {
	case model.MarketCrypto:
		return "CRYPTO:" + cryptoBase(symbol)
	case model.MarketForex:
		return "FOREX:" + symbol[:3]
	default:
		return symbol
	}
}

func sentimentFromLabel(label string) model.NewsSentiment {
	switch {
	case strings.Contains(label, "Bullish"):
		return model.NewsPositive
	case strings.Contains(label, "Bearish"):
		return model.NewsNegative
	default:
		return model.NewsNeutral
	}
}

// FetchNews reads the news sentiment feed. The per-ticker relevance score
// becomes the item's Relevance; no impact score is reported.
func (f *AlphaVantageFetcher) FetchNews(ctx context.Context, symbol string) ([]model.NewsItem, error) {
	symbol = strings.ToUpper(symbol)
	ticker := newsTicker(symbol)

	data, err := f.query(ctx, url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {ticker},
		"limit":    {"20"},
	})
	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(data)
	var feed avNewsFeed
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("alphavantage decode news: %w", err)
	}

	items := make([]model.NewsItem, 0, len(feed.Feed))
	for i, a := range feed.Feed {
		item := model.NewsItem{
			ID:        fmt.Sprintf("%s-%d", ticker, i+1),
			Title:     a.Title,
			Summary:   a.Summary,
			Source:    a.Source,
			URL:       a.URL,
			Sentiment: sentimentFromLabel(a.OverallSentimentLabel),
		}
		if t, err := time.Parse("20060102T150405", a.TimePublished); err == nil {
			item.Timestamp = t.UnixMilli()
		}
		for _, ts := range a.TickerSentiment {
			if ts.Ticker == ticker {
				item.Relevance = parseFloat(ts.RelevanceScore)
				break
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// aggregateCandles merges every n consecutive bars into one.
func aggregateCandles(candles []model.Candle, n int) []model.Candle {
	if n <= 1 || len(candles) == 0 {
		return candles
	}
	out := make([]model.Candle, 0, (len(candles)+n-1)/n)
	for start := 0; start < len(candles); start += n {
		end := min(start+n, len(candles))
		group := candles[start]
		for _, c := range candles[start+1 : end] {
			group.High = max(group.High, c.High)
			group.Low = min(group.Low, c.Low)
			group.Close = c.Close
			group.Volume += c.Volume
		}
		out = append(out, group)
	}
	return out
}
