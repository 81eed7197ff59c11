package strategy

import (
	"math"
	"strings"

	"MarketSignal/internal/calculator"
	"MarketSignal/internal/model"
)

// Levels holds the price levels around the current price for a signal.
type Levels struct {
	Support         float64 `json:"support"`
	Resistance      float64 `json:"resistance"`
	StopLoss        float64 `json:"stopLoss"`
	TargetPrice     float64 `json:"targetPrice"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
	Range           float64 `json:"range"` // max close - min close
}

// levelProfile holds the percentage offsets used for one asset class.
type levelProfile struct {
	Support    float64
	Resistance float64
	StopLoss   float64
	Target     float64
}

var (
	cryptoMajorProfile = levelProfile{Support: 0.02, Resistance: 0.03, StopLoss: 0.015, Target: 0.05}
	highPriceProfile   = levelProfile{Support: 0.03, Resistance: 0.045, StopLoss: 0.02, Target: 0.07}
	forexProfile       = levelProfile{Support: 0.005, Resistance: 0.0075, StopLoss: 0.003, Target: 0.01}
	equityProfile      = levelProfile{Support: 0.05, Resistance: 0.075, StopLoss: 0.04, Target: 0.10}
)

// profileFor picks the asset class from the symbol text, checked in order.
func profileFor(symbol string, price float64) levelProfile {
	s := strings.ToUpper(symbol)
	switch {
	case strings.Contains(s, "BTC"):
		return cryptoMajorProfile
	case strings.Contains(s, "ETH") || price > 1000:
		return highPriceProfile
	case strings.Contains(s, "USD") || strings.Contains(s, "EUR") || strings.Contains(s, "GBP"):
		return forexProfile
	default:
		return equityProfile
	}
}

// ComputeLevels derives support, resistance, stop-loss and target from the
// current price. Buy signals place the stop below and the target above the
// price; every other signal inverts them.
func ComputeLevels(symbol string, price float64, signal model.TradeSignal, candles []model.Candle) Levels {
	p := profileFor(symbol, price)
	rng, _ := calculator.CloseRange(candles)

	lv := Levels{
		Support:    price * (1 - p.Support),
		Resistance: price * (1 + p.Resistance),
		Range:      rng,
	}
	if signal.IsBuy() {
		lv.StopLoss = price * (1 - p.StopLoss)
		lv.TargetPrice = price * (1 + p.Target)
	} else {
		lv.StopLoss = price * (1 + p.StopLoss)
		lv.TargetPrice = price * (1 - p.Target)
	}

	lv.RiskRewardRatio = riskReward(price, lv.StopLoss, lv.TargetPrice)

	lv.Support = round2(lv.Support)
	lv.Resistance = round2(lv.Resistance)
	lv.StopLoss = round2(lv.StopLoss)
	lv.TargetPrice = round2(lv.TargetPrice)
	lv.RiskRewardRatio = round2(lv.RiskRewardRatio)
	lv.Range = round2(lv.Range)
	return lv
}

// riskReward is |target-price| / |price-stop|, or 1 when there is no risk.
func riskReward(price, stop, target float64) float64 {
	risk := math.Abs(price - stop)
	if risk == 0 {
		return 1
	}
	return math.Abs(target-price) / risk
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
