package strategy

import (
	"sort"

	"MarketSignal/internal/calculator"
	"MarketSignal/internal/model"
	"MarketSignal/internal/seed"
)

// patternSpec is a canned SMC/ICT setup label. Pool order is part of the
// output contract: seeded indexing depends on it.
type patternSpec struct {
	Name        string
	Description string
}

var bullishPatterns = []patternSpec{
	{"Bullish Order Block", "Previous supply zone flipped to demand zone with strong momentum"},
	{"Bullish Fair Value Gap", "Price imbalance left below price with institutional buying interest"},
	{"Bullish Breaker Block", "Failed bearish order block reclaimed as support after a liquidity grab"},
	{"Sell-Side Liquidity Sweep", "Stops below equal lows swept before a sharp bullish displacement"},
	{"Bullish Market Structure Shift", "Break of the last lower high confirms a shift to bullish structure"},
	{"Bullish Change of Character", "First higher high after a downtrend signals a change in order flow"},
	{"Optimal Trade Entry (Long)", "Retracement into the 62-79% zone of the bullish impulse leg"},
	{"Bullish Mitigation Block", "Price returned to mitigate unfilled buy orders at a prior swing low"},
	{"Discount Array Reaction", "Price reacting from the discount half of the current dealing range"},
	{"Bullish Inducement", "Minor low taken to trap early sellers before continuation higher"},
	{"Bullish Rejection Block", "Long lower wicks show aggressive rejection of lower prices"},
	{"Bullish Displacement", "Impulsive candles leaving imbalance confirm buyers in control"},
}

var bearishPatterns = []patternSpec{
	{"Bearish Order Block", "Previous demand zone flipped to supply with strong momentum"},
	{"Bearish Fair Value Gap", "Price imbalance left above price with institutional selling interest"},
	{"Bearish Breaker Block", "Institutional price rejection at liquidity grab level"},
	{"Buy-Side Liquidity Sweep", "Stops above equal highs swept before a sharp bearish displacement"},
	{"Bearish Market Structure Shift", "Break of the last higher low confirms a shift to bearish structure"},
	{"Bearish Change of Character", "First lower low after an uptrend signals a change in order flow"},
	{"Optimal Trade Entry (Short)", "Retracement into the 62-79% zone of the bearish impulse leg"},
	{"Bearish Mitigation Block", "Price returned to mitigate unfilled sell orders at a prior swing high"},
	{"Premium Array Rejection", "Price rejected from the premium half of the current dealing range"},
	{"Bearish Inducement", "Minor high taken to trap early buyers before continuation lower"},
	{"Bearish Rejection Block", "Long upper wicks show aggressive rejection of higher prices"},
	{"Bearish Displacement", "Impulsive candles leaving imbalance confirm sellers in control"},
}

// AnalyzeTechnicalPatterns synthesizes pattern detections for a symbol and
// timeframe. The result depends only on symbol, timeframe and the direction
// of the last five candles, so repeated calls return identical output.
// An empty series yields no detections.
func AnalyzeTechnicalPatterns(symbol string, candles []model.Candle, timeframe string) []model.PatternDetection {
	if len(candles) == 0 {
		return []model.PatternDetection{}
	}

	s := seed.Hash(symbol + timeframe)
	bullish := calculator.IsBullishTrend(candles)
	tag := DisplayTag(timeframe)

	pool, opposite := bearishPatterns, bullishPatterns
	if bullish {
		pool, opposite = bullishPatterns, bearishPatterns
	}

	numPatterns := 2 + seed.Intn(s, 2)
	picked := seed.Shuffle(pool, s)[:numPatterns]

	patterns := make([]model.PatternDetection, 0, numPatterns+1)
	for i, p := range picked {
		patterns = append(patterns, model.PatternDetection{
			Name:        p.Name,
			Timeframe:   tag,
			Confidence:  65 + seed.Intn(s+int64(i), 25),
			Bullish:     bullish,
			Description: p.Description,
		})
	}

	// one lower-confidence conflicting read
	counter := opposite[seed.Intn(s, len(opposite))]
	patterns = append(patterns, model.PatternDetection{
		Name:        counter.Name,
		Timeframe:   tag,
		Confidence:  50 + seed.Intn(s, 20),
		Bullish:     !bullish,
		Description: counter.Description,
	})

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	return patterns
}
