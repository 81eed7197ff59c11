package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		market MarketType
		known  bool
	}{
		{"aapl", MarketStocks, true},
		{"BTCUSD", MarketCrypto, true},
		{"EURUSD", MarketForex, true},
		{"SHIBUSD", MarketCrypto, false},
		{"AVAXUSD", MarketCrypto, false},
		{"SHBUSD", MarketCrypto, false},
		{"EURGBP", MarketForex, false},
		{"USDMXN", MarketForex, false},
		{"XAUUSD", MarketForex, false},
		{"USDXYZ", MarketStocks, false},
		{"IBM", MarketStocks, false},
		{"USD", MarketStocks, false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			info, known := LookupSymbol(tt.symbol)
			assert.Equal(t, tt.market, info.Market)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestSymbolsByMarket(t *testing.T) {
	for _, s := range SymbolsByMarket(MarketForex) {
		assert.Equal(t, MarketForex, s.Market)
	}
	assert.Len(t, Symbols(), len(catalog))
}
