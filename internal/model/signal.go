package model

// TradeSignal is the final recommendation class.
type TradeSignal string

const (
	StrongBuy  TradeSignal = "strong_buy"
	Buy        TradeSignal = "buy"
	Neutral    TradeSignal = "neutral"
	Sell       TradeSignal = "sell"
	StrongSell TradeSignal = "strong_sell"
)

// IsBuy reports whether the signal is buy or strong_buy.
func (s TradeSignal) IsBuy() bool { return s == Buy || s == StrongBuy }

// IsSell reports whether the signal is sell or strong_sell.
func (s TradeSignal) IsSell() bool { return s == Sell || s == StrongSell }

// SignalSource indicates which analyses produced a result.
type SignalSource string

const (
	SourceTechnical   SignalSource = "technical"
	SourceFundamental SignalSource = "fundamental"
	SourceSentiment   SignalSource = "sentiment"
	SourceCombined    SignalSource = "combined"
)

// TimeFrame is the holding-horizon bucket of a chart timeframe.
type TimeFrame string

const (
	ShortTerm  TimeFrame = "short"
	MediumTerm TimeFrame = "medium"
	LongTerm   TimeFrame = "long"
)

// PatternDetection is a labeled technical setup.
type PatternDetection struct {
	Name        string `json:"name"`
	Timeframe   string `json:"timeframe"`
	Confidence  int    `json:"confidence"`
	Bullish     bool   `json:"bullish"`
	Description string `json:"description"`
}

// SentimentSummary is the aggregate tone of a news list.
type SentimentSummary struct {
	Sentiment     NewsSentiment `json:"sentiment"`
	Score         float64       `json:"score"`
	ImpactfulNews []NewsItem    `json:"impactfulNews"`
}

// Outlook classifies a fundamentals score.
type Outlook string

const (
	OutlookStrong   Outlook = "strong"
	OutlookPositive Outlook = "positive"
	OutlookNeutral  Outlook = "neutral"
	OutlookNegative Outlook = "negative"
	OutlookWeak     Outlook = "weak"
)

// FundamentalsSummary is the scored view of a fundamentals record.
type FundamentalsSummary struct {
	Outlook    Outlook  `json:"outlook"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

// AnalysisResult is the output of the signal engine.
type AnalysisResult struct {
	Symbol          string       `json:"symbol"`
	Signal          TradeSignal  `json:"signal"`
	Confidence      int          `json:"confidence"`
	Source          SignalSource `json:"source"`
	TimeFrame       TimeFrame    `json:"timeFrame"`
	Reasoning       []string     `json:"reasoning"`
	Support         float64      `json:"support"`
	Resistance      float64      `json:"resistance"`
	StopLoss        float64      `json:"stopLoss"`
	TargetPrice     float64      `json:"targetPrice"`
	RiskRewardRatio float64      `json:"riskRewardRatio"`
	Timestamp       int64        `json:"timestamp"`
}
