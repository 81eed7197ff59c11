package strategy

import (
	"fmt"
	"math"

	"MarketSignal/internal/model"
)

var biasSentences = map[model.TradeSignal]string{
	model.StrongBuy:  "Market structure shows a strong bullish bias with clear higher highs and higher lows",
	model.Buy:        "Market structure leans bullish; favor long setups on pullbacks into support",
	model.Neutral:    "Market structure is ranging with no clear directional bias",
	model.Sell:       "Market structure leans bearish; favor short setups on rallies into resistance",
	model.StrongSell: "Market structure shows a strong bearish bias with clear lower highs and lower lows",
}

// buildReasoning assembles the explanation in a fixed order: bullish
// patterns, bearish patterns, structure bias, fundamentals (medium and long
// horizons only) and sentiment.
func buildReasoning(
	patterns []model.PatternDetection,
	signal model.TradeSignal,
	horizon model.TimeFrame,
	fund model.FundamentalsSummary,
	sent model.SentimentSummary,
) []string {
	var bullish, bearish []model.PatternDetection
	for _, p := range patterns {
		if p.Bullish {
			bullish = append(bullish, p)
		} else {
			bearish = append(bearish, p)
		}
	}

	var out []string
	if len(bullish) > 0 {
		out = append(out,
			fmt.Sprintf("Technical analysis shows %d bullish %s including %s", len(bullish), plural(len(bullish)), bullish[0].Name),
			bullish[0].Description,
		)
	}
	if len(bearish) > 0 {
		out = append(out, fmt.Sprintf("Technical analysis shows %d bearish %s including %s", len(bearish), plural(len(bearish)), bearish[0].Name))
		if signal.IsSell() {
			out = append(out, bearish[0].Description)
		}
	}

	out = append(out, biasSentences[signal])

	if horizon != model.ShortTerm {
		out = append(out, fmt.Sprintf("Fundamental outlook is %s (%d/100)", fund.Outlook, int(math.Round(fund.Score))))
		if len(fund.Highlights) > 0 {
			out = append(out, fund.Highlights[0])
		}
	}

	out = append(out, fmt.Sprintf("Market sentiment is %s (%d/100)", sent.Sentiment, int(math.Round(sent.Score))))
	if len(sent.ImpactfulNews) > 0 {
		out = append(out, "Important news: "+sent.ImpactfulNews[0].Title)
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return "pattern"
	}
	return "patterns"
}
