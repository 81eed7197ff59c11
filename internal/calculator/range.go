package calculator

import (
	"errors"
	"math"

	"MarketSignal/internal/model"
)

// ErrNoCandles is returned when a computation needs at least one bar.
var ErrNoCandles = errors.New("no candles provided")

// CloseExtremes returns the highest and lowest close in the series.
func CloseExtremes(candles []model.Candle) (high, low float64, err error) {
	if len(candles) == 0 {
		return 0, 0, ErrNoCandles
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range candles {
		if c.Close > high {
			high = c.Close
		}
		if c.Close < low {
			low = c.Close
		}
	}
	return high, low, nil
}

// CloseRange returns max(close) - min(close) over the series.
func CloseRange(candles []model.Candle) (float64, error) {
	high, low, err := CloseExtremes(candles)
	if err != nil {
		return 0, err
	}
	return high - low, nil
}
