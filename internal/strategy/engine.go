package strategy

import (
	"math"
	"time"

	"MarketSignal/internal/model"
)

// InsufficientDataReason is the only reasoning line of a guard result.
const InsufficientDataReason = "Insufficient data to generate a reliable signal"

// Tiers maps a combined score to a signal; first MinScore match wins.
var Tiers = []struct {
	MinScore float64
	Signal   model.TradeSignal
}{
	{80, model.StrongBuy},
	{60, model.Buy},
	{40, model.Neutral},
	{20, model.Sell},
}

// DefaultSignal applies to scores below the last tier.
const DefaultSignal = model.StrongSell

func mapSignal(score float64) model.TradeSignal {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Signal
		}
	}
	return DefaultSignal
}

// Breakdown is the intermediate state of one evaluation.
type Breakdown struct {
	Patterns      []model.PatternDetection  `json:"patterns"`
	Sentiment     model.SentimentSummary    `json:"sentiment"`
	Fundamentals  model.FundamentalsSummary `json:"fundamentals"`
	Factors       []FactorScore             `json:"factors"`
	CombinedScore float64                   `json:"combinedScore"`
	Signal        model.TradeSignal         `json:"signal"`
}

// Evaluate runs the three analyses and blends them with the weights of the
// timeframe's bucket. It does not look at price.
func Evaluate(symbol string, candles []model.Candle, f *model.Fundamentals, news []model.NewsItem, timeframe string) Breakdown {
	patterns := AnalyzeTechnicalPatterns(symbol, candles, timeframe)
	sent := AnalyzeSentiment(news)
	fund := AnalyzeFundamentals(f)

	w := WeightsFor(timeframe)
	factors := []FactorScore{
		scoreTechnical(patterns, w.Technical),
		scoreFundamental(fund, w.Fundamental),
		scoreSentiment(sent, w.Sentiment),
	}
	combined := combine(factors...)

	return Breakdown{
		Patterns:      patterns,
		Sentiment:     sent,
		Fundamentals:  fund,
		Factors:       factors,
		CombinedScore: combined,
		Signal:        mapSignal(combined),
	}
}

// GenerateSignal computes the trade signal for a symbol. A nil quote or an
// empty candle series yields a neutral result instead of an error.
func GenerateSignal(
	symbol string,
	quote *model.Quote,
	candles []model.Candle,
	f *model.Fundamentals,
	news []model.NewsItem,
	timeframe string,
) *model.AnalysisResult {
	res, _ := GenerateSignalDetail(symbol, quote, candles, f, news, timeframe)
	return res
}

// GenerateSignalDetail is GenerateSignal plus the breakdown the result was
// derived from. The breakdown is nil when the inputs are insufficient.
func GenerateSignalDetail(
	symbol string,
	quote *model.Quote,
	candles []model.Candle,
	f *model.Fundamentals,
	news []model.NewsItem,
	timeframe string,
) (*model.AnalysisResult, *Breakdown) {
	horizon := Bucket(timeframe)

	if quote == nil || len(candles) == 0 {
		return &model.AnalysisResult{
			Symbol:          symbol,
			Signal:          model.Neutral,
			Confidence:      50,
			Source:          model.SourceCombined,
			TimeFrame:       horizon,
			Reasoning:       []string{InsufficientDataReason},
			RiskRewardRatio: 1,
			Timestamp:       time.Now().UnixMilli(),
		}, nil
	}

	b := Evaluate(symbol, candles, f, news, timeframe)
	lv := ComputeLevels(symbol, quote.Price, b.Signal, candles)

	return &model.AnalysisResult{
		Symbol:          symbol,
		Signal:          b.Signal,
		Confidence:      int(math.Round(b.CombinedScore)),
		Source:          model.SourceCombined,
		TimeFrame:       horizon,
		Reasoning:       buildReasoning(b.Patterns, b.Signal, horizon, b.Fundamentals, b.Sentiment),
		Support:         lv.Support,
		Resistance:      lv.Resistance,
		StopLoss:        lv.StopLoss,
		TargetPrice:     lv.TargetPrice,
		RiskRewardRatio: lv.RiskRewardRatio,
		Timestamp:       time.Now().UnixMilli(),
	}, &b
}
