package model

// Candle represents a single OHLCV bar. Time is epoch milliseconds.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Quote is the latest market snapshot for a symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume,omitempty"`
	High          float64 `json:"high,omitempty"`
	Low           float64 `json:"low,omitempty"`
	Open          float64 `json:"open,omitempty"`
	Close         float64 `json:"close,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}

// Fundamentals is a sparse company record. Nil fields are unknown, not zero.
type Fundamentals struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`

	PE            *float64 `json:"pe,omitempty"`
	RevenueGrowth *float64 `json:"revenueGrowth,omitempty"` // percent
	ProfitGrowth  *float64 `json:"profitGrowth,omitempty"`  // percent
	Debt          *float64 `json:"debt,omitempty"`
	Assets        *float64 `json:"assets,omitempty"`
	DividendYield *float64 `json:"dividendYield,omitempty"` // percent

	// Display-only fields; no scoring rule reads them.
	MarketCap *float64 `json:"marketCap,omitempty"`
	EPS       *float64 `json:"eps,omitempty"`
	Revenue   *float64 `json:"revenue,omitempty"`
	Profit    *float64 `json:"profit,omitempty"`
	Beta      *float64 `json:"beta,omitempty"`
	High52W   *float64 `json:"high52W,omitempty"`
	Low52W    *float64 `json:"low52W,omitempty"`
}

// Float returns a pointer to v, for populating optional fields.
func Float(v float64) *float64 { return &v }

// NewsSentiment is the editorial tone of a news item.
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is a single headline. ImpactScore (0-10) takes precedence over
// Relevance (0-1) when both are present.
type NewsItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	Source      string        `json:"source,omitempty"`
	URL         string        `json:"url,omitempty"`
	Sentiment   NewsSentiment `json:"sentiment"`
	ImpactScore *float64      `json:"impactScore,omitempty"`
	Relevance   *float64      `json:"relevance,omitempty"`
	Timestamp   int64         `json:"timestamp"`
}
