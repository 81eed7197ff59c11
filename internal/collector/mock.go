package collector

import (
	"context"
	"strconv"
	"strings"
	"time"

	"MarketSignal/internal/model"
	"MarketSignal/internal/seed"
)

// MockFetcher serves deterministic demo data. Candles are derived from the
// symbol and timeframe, so repeated calls within one bar interval agree.
type MockFetcher struct {
	// Now anchors generated timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewMockFetcher creates a MockFetcher on the wall clock.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Now: time.Now}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

var mockQuotes = map[string]model.Quote{
	"AAPL":  {Symbol: "AAPL", Name: "Apple Inc.", Price: 182.52, Change: 1.25, ChangePercent: 0.69, Volume: 42_500_000, High: 183.12, Low: 180.87, Open: 181.11, Close: 182.52},
	"MSFT":  {Symbol: "MSFT", Name: "Microsoft Corp.", Price: 401.78, Change: -2.31, ChangePercent: -0.57, Volume: 28_100_000, High: 404.65, Low: 398.22, Open: 403.50, Close: 401.78},
	"AMZN":  {Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 178.12, Change: 2.87, ChangePercent: 1.64, Volume: 36_700_000, High: 179.25, Low: 175.60, Open: 176.10, Close: 178.12},
	"GOOGL": {Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 163.95, Change: 0.42, ChangePercent: 0.26, Volume: 22_800_000, High: 164.75, Low: 162.90, Open: 163.45, Close: 163.95},
	"TSLA":  {Symbol: "TSLA", Name: "Tesla Inc.", Price: 240.80, Change: -5.15, ChangePercent: -2.09, Volume: 98_500_000, High: 248.36, Low: 239.26, Open: 246.50, Close: 240.80},
	"NVDA":  {Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 103.23, Change: 1.78, ChangePercent: 1.75, Volume: 156_000_000, High: 104.89, Low: 100.95, Open: 101.56, Close: 103.23},
}

// basePrices anchor generated data for symbols without a canned quote.
var basePrices = map[string]float64{
	"AAPL":    180,
	"MSFT":    400,
	"AMZN":    175,
	"GOOGL":   160,
	"TSLA":    245,
	"NVDA":    103,
	"BTCUSD":  65000,
	"ETHUSD":  3400,
	"XRPUSD":  0.52,
	"LTCUSD":  84,
	"ADAUSD":  0.45,
	"DOTUSD":  7.2,
	"DOGEUSD": 0.15,
	"SOLUSD":  145,
	"EURUSD":  1.0934,
	"GBPUSD":  1.2712,
	"USDJPY":  151.3,
	"USDCHF":  0.9021,
	"AUDUSD":  0.6543,
	"USDCAD":  1.3587,
	"NZDUSD":  0.6012,
}

const defaultBasePrice = 100

func basePrice(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return defaultBasePrice
}

// unit returns the next LCG state and its value scaled to [0, 1).
func unit(state int64) (int64, float64) {
	next := seed.Next(state)
	return next, float64(next) / 233280
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(symbol)
	ts := m.now().UnixMilli()
	if q, ok := mockQuotes[symbol]; ok {
		q.Timestamp = ts
		return &q, nil
	}

	info, _ := model.LookupSymbol(symbol)
	price := basePrice(symbol)
	_, r := unit(seed.Hash(symbol))
	changePct := (r - 0.5) * 4 // within ±2%
	change := price * changePct / 100
	return &model.Quote{
		Symbol:        symbol,
		Name:          info.Name,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		High:          price * 1.01,
		Low:           price * 0.99,
		Open:          price - change,
		Close:         price,
		Timestamp:     ts,
	}, nil
}

// candleShape gives the bar count and spacing generated per timeframe.
var candleShape = map[string]struct {
	Count    int
	Interval time.Duration
}{
	"1m":  {120, time.Minute},
	"5m":  {144, 5 * time.Minute},
	"15m": {96, 15 * time.Minute},
	"1H":  {168, time.Hour},
	"4H":  {180, 4 * time.Hour},
	"1D":  {120, 24 * time.Hour},
	"1W":  {104, 7 * 24 * time.Hour},
	"1M":  {60, 30 * 24 * time.Hour},
}

func (m *MockFetcher) FetchCandles(_ context.Context, symbol, timeframe string) ([]model.Candle, error) {
	symbol = strings.ToUpper(symbol)
	shape, ok := candleShape[timeframe]
	if !ok {
		shape = candleShape["1D"]
	}
	return generateCandles(symbol, timeframe, basePrice(symbol), shape.Count, shape.Interval, m.now()), nil
}

// generateCandles walks a seeded price path around base ending at the
// interval boundary at or before now.
func generateCandles(symbol, timeframe string, base float64, count int, interval time.Duration, now time.Time) []model.Candle {
	end := now.Truncate(interval)
	state := seed.Hash(symbol + timeframe)
	price := base

	candles := make([]model.Candle, count)
	for i := range candles {
		var r1, r2, r3, r4, r5 float64
		state, r1 = unit(state)
		state, r2 = unit(state)
		state, r3 = unit(state)
		state, r4 = unit(state)
		state, r5 = unit(state)

		// mean-reverting walk keeps the series near base
		price += (r1-0.5)*base*0.01 + (base-price)*0.05
		open := price
		high := open + r2*base*0.01
		low := open - r3*base*0.01
		closePrice := (open+high+low)/3 + (r4-0.5)*base*0.005
		if closePrice > high {
			high = closePrice
		}
		if closePrice < low {
			low = closePrice
		}

		candles[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-1-i) * interval).UnixMilli(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: 500_000 + int64(r5*1_000_000),
		}
		price = closePrice
	}
	return candles
}

var mockFundamentals = map[string]model.Fundamentals{
	"AAPL": {
		Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics",
		PE: model.Float(30.45), EPS: model.Float(6.00), DividendYield: model.Float(0.50), MarketCap: model.Float(2.85e12),
		Revenue: model.Float(383e9), RevenueGrowth: model.Float(6.8), Profit: model.Float(94e9), ProfitGrowth: model.Float(7.5),
		Debt: model.Float(120e9), Assets: model.Float(350e9),
	},
	"MSFT": {
		Symbol: "MSFT", Name: "Microsoft Corp.", Sector: "Technology", Industry: "Software",
		PE: model.Float(34.8), EPS: model.Float(11.58), DividendYield: model.Float(0.71), MarketCap: model.Float(2.98e12),
		Revenue: model.Float(212e9), RevenueGrowth: model.Float(15.2), Profit: model.Float(83e9), ProfitGrowth: model.Float(19.7),
		Debt: model.Float(76e9), Assets: model.Float(364e9),
	},
	"AMZN": {
		Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Cyclical", Industry: "Internet Retail",
		PE: model.Float(45.12), EPS: model.Float(3.95), DividendYield: model.Float(0), MarketCap: model.Float(1.85e12),
		Revenue: model.Float(513e9), RevenueGrowth: model.Float(11.5), Profit: model.Float(32e9), ProfitGrowth: model.Float(23.2),
		Debt: model.Float(140e9), Assets: model.Float(420e9),
	},
	"GOOGL": {
		Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services", Industry: "Internet Content",
		PE: model.Float(27.9), EPS: model.Float(5.9), DividendYield: model.Float(0.51), MarketCap: model.Float(2.05e12),
		Revenue: model.Float(307e9), RevenueGrowth: model.Float(12.8), Profit: model.Float(74e9), ProfitGrowth: model.Float(14.3),
		Debt: model.Float(30e9), Assets: model.Float(365e9),
	},
	"TSLA": {
		Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers",
		PE: model.Float(60.2), EPS: model.Float(4.15), DividendYield: model.Float(0), MarketCap: model.Float(765e9),
		Revenue: model.Float(96e9), RevenueGrowth: model.Float(18.8), Profit: model.Float(15e9), ProfitGrowth: model.Float(20.4),
		Debt: model.Float(12e9), Assets: model.Float(92e9),
	},
	"NVDA": {
		Symbol: "NVDA", Name: "NVIDIA Corp.", Sector: "Technology", Industry: "Semiconductors",
		PE: model.Float(35.4), EPS: model.Float(3.01), DividendYield: model.Float(0.05), MarketCap: model.Float(2.54e12),
		Revenue: model.Float(60e9), RevenueGrowth: model.Float(65.2), Profit: model.Float(29e9), ProfitGrowth: model.Float(163.7),
		Debt: model.Float(11e9), Assets: model.Float(75e9),
	},
}

// FetchFundamentals returns the canned record for known stocks, Apple's
// figures for unknown stocks, and a descriptive-only record for crypto and
// forex pairs.
func (m *MockFetcher) FetchFundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	symbol = strings.ToUpper(symbol)
	info, _ := model.LookupSymbol(symbol)

	switch info.Market {
	case model.MarketCrypto:
		return &model.Fundamentals{Symbol: symbol, Name: info.Name, Sector: "Cryptocurrency", Industry: "Digital Assets"}, nil
	case model.MarketForex:
		return &model.Fundamentals{Symbol: symbol, Name: info.Name, Sector: "Forex", Industry: "Currency"}, nil
	}

	f, ok := mockFundamentals[symbol]
	if !ok {
		f = mockFundamentals["AAPL"]
	}
	return &f, nil
}

type mockHeadline struct {
	Title, Summary, Source string
	Sentiment              model.NewsSentiment
	Impact                 float64
	Age                    time.Duration
}

var mockHeadlines = []mockHeadline{
	{
		Title:     "Federal Reserve Maintains Interest Rates, Signals Potential Cut Later This Year",
		Summary:   "The Federal Reserve kept interest rates unchanged at its latest meeting but indicated that cuts may be coming later this year as inflation shows signs of easing.",
		Source:    "Financial Times",
		Sentiment: model.NewsPositive, Impact: 8, Age: time.Hour,
	},
	{
		Title:     "Global Supply Chain Constraints Ease as Shipping Routes Normalize",
		Summary:   "Global supply chain pressures have decreased significantly as shipping routes normalize and port congestion clears up, potentially reducing inflationary pressures.",
		Source:    "Bloomberg",
		Sentiment: model.NewsPositive, Impact: 7, Age: 2 * time.Hour,
	},
	{
		Title:     "Tech Sector Faces Increased Regulatory Scrutiny in Major Markets",
		Summary:   "Technology companies are facing growing regulatory challenges across the US, EU, and Asia as governments implement stricter antitrust and data privacy measures.",
		Source:    "Reuters",
		Sentiment: model.NewsNegative, Impact: 6, Age: 4 * time.Hour,
	},
	{
		Title:     "Oil Prices Spike on Middle East Tensions and Production Cuts",
		Summary:   "Crude oil prices surged following escalating tensions in the Middle East and OPEC's decision to maintain production cuts through the end of the year.",
		Source:    "CNBC",
		Sentiment: model.NewsNegative, Impact: 8, Age: 6 * time.Hour,
	},
	{
		Title:     "Major Central Banks Signal Coordinated Approach to Monetary Policy",
		Summary:   "Leading central banks including the Fed, ECB, and Bank of Japan have indicated a more coordinated approach to monetary policy as global economic conditions align.",
		Source:    "Wall Street Journal",
		Sentiment: model.NewsNeutral, Impact: 7, Age: 10 * time.Hour,
	},
}

// FetchNews returns the same market-wide headlines for every symbol.
func (m *MockFetcher) FetchNews(_ context.Context, _ string) ([]model.NewsItem, error) {
	now := m.now()
	items := make([]model.NewsItem, len(mockHeadlines))
	for i, h := range mockHeadlines {
		items[i] = model.NewsItem{
			ID:          strconv.Itoa(i + 1),
			Title:       h.Title,
			Summary:     h.Summary,
			Source:      h.Source,
			URL:         "#",
			Sentiment:   h.Sentiment,
			ImpactScore: model.Float(h.Impact),
			Timestamp:   now.Add(-h.Age).UnixMilli(),
		}
	}
	return items, nil
}
