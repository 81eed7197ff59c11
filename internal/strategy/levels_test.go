package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"MarketSignal/internal/model"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		symbol string
		price  float64
		want   levelProfile
	}{
		{"BTCUSD", 60000, cryptoMajorProfile},
		{"ETHUSD", 3000, highPriceProfile},
		{"NVDA", 1200, highPriceProfile},
		{"EURUSD", 1.09, forexProfile},
		{"GBPJPY", 190, forexProfile},
		{"AAPL", 180, equityProfile},
		{"btcusd", 10, cryptoMajorProfile},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, profileFor(tt.symbol, tt.price), tt.symbol)
	}
}

func TestComputeLevels_Equity(t *testing.T) {
	candles := makeCandles(10, 90, 20, true)

	buy := ComputeLevels("AAPL", 100, model.Buy, candles)
	assert.Equal(t, 95.0, buy.Support)
	assert.Equal(t, 107.5, buy.Resistance)
	assert.Equal(t, 96.0, buy.StopLoss)
	assert.Equal(t, 110.0, buy.TargetPrice)
	assert.Equal(t, 2.5, buy.RiskRewardRatio)
	assert.InDelta(t, 20.0, buy.Range, 1e-9)

	for _, sig := range []model.TradeSignal{model.Neutral, model.Sell, model.StrongSell} {
		lv := ComputeLevels("AAPL", 100, sig, candles)
		assert.Equal(t, 104.0, lv.StopLoss, sig)
		assert.Equal(t, 90.0, lv.TargetPrice, sig)
		assert.Equal(t, 2.5, lv.RiskRewardRatio, sig)
	}
}

func TestComputeLevels_ZeroRisk(t *testing.T) {
	lv := ComputeLevels("AAPL", 0, model.Buy, nil)
	assert.Equal(t, 0.0, lv.StopLoss)
	assert.Equal(t, 1.0, lv.RiskRewardRatio)
	assert.Equal(t, 0.0, lv.Range)

	assert.Equal(t, 1.0, riskReward(10, 10, 12))
}

func TestComputeLevels_RatioNonNegative(t *testing.T) {
	for _, sym := range []string{"BTCUSD", "ETHUSD", "EURUSD", "AAPL"} {
		for _, sig := range []model.TradeSignal{model.StrongBuy, model.Buy, model.Neutral, model.Sell, model.StrongSell} {
			lv := ComputeLevels(sym, 123.45, sig, makeCandles(5, 120, 5, true))
			assert.GreaterOrEqual(t, lv.RiskRewardRatio, 0.0)
		}
	}
}
