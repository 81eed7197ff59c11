package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTechnicalPatterns_EmptyCandles(t *testing.T) {
	got := AnalyzeTechnicalPatterns("AAPL", nil, "1D")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnalyzeTechnicalPatterns_Deterministic(t *testing.T) {
	candles := makeCandles(30, 100, 10, true)
	first := AnalyzeTechnicalPatterns("BTCUSD", candles, "1H")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AnalyzeTechnicalPatterns("BTCUSD", candles, "1H"))
	}
}

func TestAnalyzeTechnicalPatterns_KnownSeed(t *testing.T) {
	// Hash("AAPL1D") is odd, so three trend patterns plus one opposite.
	got := AnalyzeTechnicalPatterns("AAPL", makeCandles(30, 150, 20, true), "1D")
	require.Len(t, got, 4)

	confidences := make([]int, len(got))
	for i, p := range got {
		confidences[i] = p.Confidence
		assert.Equal(t, "D1", p.Timeframe)
	}
	assert.Equal(t, []int{75, 74, 73, 53}, confidences)

	for _, p := range got[:3] {
		assert.True(t, p.Bullish, p.Name)
	}
	assert.False(t, got[3].Bullish)
	// Hash("AAPL1D") % 12 == 7
	assert.Equal(t, bearishPatterns[7].Name, got[3].Name)
	assert.Equal(t, bearishPatterns[7].Description, got[3].Description)
}

func TestAnalyzeTechnicalPatterns_Invariants(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "BTCUSD", "ETHUSD", "EURUSD", "TSLA", "XYZ"}
	for _, sym := range symbols {
		for _, tf := range append(Timeframes(), "3D") {
			for _, bullish := range []bool{true, false} {
				got := AnalyzeTechnicalPatterns(sym, makeCandles(20, 50, 5, bullish), tf)
				require.True(t, len(got) == 3 || len(got) == 4, "%s %s: %d patterns", sym, tf, len(got))

				var trend, opposite int
				names := map[string]bool{}
				for i, p := range got {
					if i > 0 {
						assert.GreaterOrEqual(t, got[i-1].Confidence, p.Confidence)
					}
					assert.Equal(t, DisplayTag(tf), p.Timeframe)
					if p.Bullish == bullish {
						trend++
						assert.GreaterOrEqual(t, p.Confidence, 65)
						assert.Less(t, p.Confidence, 90)
						assert.False(t, names[p.Name], "duplicate %s", p.Name)
						names[p.Name] = true
					} else {
						opposite++
						assert.GreaterOrEqual(t, p.Confidence, 50)
						assert.Less(t, p.Confidence, 70)
					}
				}
				assert.Equal(t, 1, opposite)
				assert.Equal(t, len(got)-1, trend)
			}
		}
	}
}

func TestAnalyzeTechnicalPatterns_TieIsBearish(t *testing.T) {
	// 2 up, 2 down
	candles := makeCandles(4, 100, 10, true)
	candles[0].Open = candles[0].Close + 1
	candles[1].Open = candles[1].Close + 1
	got := AnalyzeTechnicalPatterns("AAPL", candles, "1D")
	require.NotEmpty(t, got)
	assert.False(t, got[0].Bullish)

	// 2 up, 2 down, 1 flat
	candles = makeCandles(10, 100, 10, true)
	candles[5].Open = candles[5].Close + 1
	candles[6].Open = candles[6].Close + 1
	candles[7].Open = candles[7].Close
	got = AnalyzeTechnicalPatterns("AAPL", candles, "1D")
	require.NotEmpty(t, got)
	assert.False(t, got[0].Bullish)
}

func TestAnalyzeTechnicalPatterns_UnknownTimeframeTag(t *testing.T) {
	got := AnalyzeTechnicalPatterns("AAPL", makeCandles(5, 1, 1, true), "2D")
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.Equal(t, "D1", p.Timeframe)
	}
}

func TestPatternPools(t *testing.T) {
	assert.Len(t, bullishPatterns, 12)
	assert.Len(t, bearishPatterns, 12)
	seen := map[string]bool{}
	for _, p := range append(append([]patternSpec{}, bullishPatterns...), bearishPatterns...) {
		assert.NotEmpty(t, p.Description)
		assert.False(t, seen[p.Name], p.Name)
		seen[p.Name] = true
	}
}
