package strategy

import "MarketSignal/internal/model"

// DefaultTimeframe is used by callers that receive no timeframe token.
const DefaultTimeframe = "1D"

// Weights is the blend applied to the three sub-scores.
type Weights struct {
	Technical   float64
	Fundamental float64
	Sentiment   float64
}

var displayTags = map[string]string{
	"1m":  "M1",
	"5m":  "M5",
	"15m": "M15",
	"1H":  "H1",
	"4H":  "H4",
	"1D":  "D1",
	"1W":  "W1",
	"1M":  "MN",
}

var buckets = map[string]model.TimeFrame{
	"1m":  model.ShortTerm,
	"5m":  model.ShortTerm,
	"15m": model.ShortTerm,
	"1H":  model.MediumTerm,
	"4H":  model.MediumTerm,
	"1D":  model.MediumTerm,
	"1W":  model.LongTerm,
	"1M":  model.LongTerm,
}

var bucketWeights = map[model.TimeFrame]Weights{
	model.ShortTerm:  {Technical: 0.8, Fundamental: 0.05, Sentiment: 0.15},
	model.MediumTerm: {Technical: 0.5, Fundamental: 0.3, Sentiment: 0.2},
	model.LongTerm:   {Technical: 0.3, Fundamental: 0.5, Sentiment: 0.2},
}

// Timeframes lists the accepted chart timeframe tokens, shortest first.
func Timeframes() []string {
	return []string{"1m", "5m", "15m", "1H", "4H", "1D", "1W", "1M"}
}

// IsKnownTimeframe reports whether tf is one of Timeframes. Tokens are case
// sensitive: "1m" is a minute, "1M" a month.
func IsKnownTimeframe(tf string) bool {
	_, ok := buckets[tf]
	return ok
}

// DisplayTag maps a timeframe token to its chart tag. Unknown tokens get D1.
func DisplayTag(tf string) string {
	if tag, ok := displayTags[tf]; ok {
		return tag
	}
	return "D1"
}

// Bucket maps a timeframe token to its horizon. Unknown tokens are long.
func Bucket(tf string) model.TimeFrame {
	if b, ok := buckets[tf]; ok {
		return b
	}
	return model.LongTerm
}

// WeightsFor returns the sub-score weights for a timeframe token.
func WeightsFor(tf string) Weights {
	return bucketWeights[Bucket(tf)]
}
