package strategy

import "MarketSignal/internal/model"

// makeCandles builds n candles whose closes climb evenly from base to
// base+span. Every candle is green when bullish, red otherwise.
func makeCandles(n int, base, span float64, bullish bool) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		c := base
		if n > 1 {
			c = base + span*float64(i)/float64(n-1)
		}
		o := c + span/100
		if bullish {
			o = c - span/100
		}
		out[i] = model.Candle{
			Time:   int64(i) * 86_400_000,
			Open:   o,
			High:   max(o, c) + span/50,
			Low:    min(o, c) - span/50,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}
