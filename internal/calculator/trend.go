package calculator

import "MarketSignal/internal/model"

// TrendLookback is the number of trailing bars used to judge direction.
const TrendLookback = 5

// TrendCounts counts up bars (close > open) and down bars (close <= open)
// among the last lookback candles. Fewer candles are counted as-is.
func TrendCounts(candles []model.Candle, lookback int) (up, down int) {
	start := len(candles) - lookback
	if start < 0 {
		start = 0
	}
	for _, c := range candles[start:] {
		if c.Close > c.Open {
			up++
		} else {
			down++
		}
	}
	return up, down
}

// IsBullishTrend reports whether up bars strictly outnumber down bars in the
// trailing window. A tie is bearish.
func IsBullishTrend(candles []model.Candle) bool {
	up, down := TrendCounts(candles, TrendLookback)
	return up > down
}
