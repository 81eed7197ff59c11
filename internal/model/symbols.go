package model

import "strings"

// MarketType groups symbols by asset class.
type MarketType string

const (
	MarketStocks MarketType = "stocks"
	MarketCrypto MarketType = "crypto"
	MarketForex  MarketType = "forex"
)

// SymbolInfo describes a tradable symbol.
type SymbolInfo struct {
	Symbol string     `json:"symbol"`
	Name   string     `json:"name"`
	Market MarketType `json:"market"`
}

var catalog = []SymbolInfo{
	{"AAPL", "Apple Inc.", MarketStocks},
	{"MSFT", "Microsoft Corp.", MarketStocks},
	{"AMZN", "Amazon.com Inc.", MarketStocks},
	{"GOOGL", "Alphabet Inc.", MarketStocks},
	{"TSLA", "Tesla Inc.", MarketStocks},
	{"NVDA", "NVIDIA Corp.", MarketStocks},

	{"BTCUSD", "Bitcoin/USD", MarketCrypto},
	{"ETHUSD", "Ethereum/USD", MarketCrypto},
	{"XRPUSD", "Ripple/USD", MarketCrypto},
	{"LTCUSD", "Litecoin/USD", MarketCrypto},
	{"ADAUSD", "Cardano/USD", MarketCrypto},
	{"DOTUSD", "Polkadot/USD", MarketCrypto},
	{"DOGEUSD", "Dogecoin/USD", MarketCrypto},
	{"SOLUSD", "Solana/USD", MarketCrypto},

	{"EURUSD", "Euro/US Dollar", MarketForex},
	{"GBPUSD", "British Pound/US Dollar", MarketForex},
	{"USDJPY", "US Dollar/Japanese Yen", MarketForex},
	{"USDCHF", "US Dollar/Swiss Franc", MarketForex},
	{"AUDUSD", "Australian Dollar/US Dollar", MarketForex},
	{"USDCAD", "US Dollar/Canadian Dollar", MarketForex},
	{"NZDUSD", "New Zealand Dollar/US Dollar", MarketForex},
}

// Symbols returns every known symbol.
func Symbols() []SymbolInfo {
	out := make([]SymbolInfo, len(catalog))
	copy(out, catalog)
	return out
}

// SymbolsByMarket returns the known symbols of one market type.
func SymbolsByMarket(market MarketType) []SymbolInfo {
	var out []SymbolInfo
	for _, s := range catalog {
		if s.Market == market {
			out = append(out, s)
		}
	}
	return out
}

// currencies holds the ISO 4217 codes, plus spot metals, recognised as
// forex legs.
var currencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true, "AUD": true,
	"CAD": true, "NZD": true, "SEK": true, "NOK": true, "DKK": true, "PLN": true,
	"CZK": true, "HUF": true, "TRY": true, "ZAR": true, "MXN": true, "BRL": true,
	"CNY": true, "CNH": true, "HKD": true, "SGD": true, "INR": true, "KRW": true,
	"THB": true, "IDR": true, "MYR": true, "PHP": true, "ILS": true, "RUB": true,
	"SAR": true, "AED": true, "XAU": true, "XAG": true,
}

// LookupSymbol finds a catalog entry. Unknown symbols are classified by
// their shape: a pair of two known currencies is forex, any other base
// quoted in USD is crypto, everything else is a stock.
func LookupSymbol(symbol string) (SymbolInfo, bool) {
	symbol = strings.ToUpper(symbol)
	for _, s := range catalog {
		if s.Symbol == symbol {
			return s, true
		}
	}
	market := MarketStocks
	switch {
	case len(symbol) == 6 && currencies[symbol[:3]] && currencies[symbol[3:]]:
		market = MarketForex
	case strings.HasSuffix(symbol, "USD") && len(symbol) > 4:
		market = MarketCrypto
	}
	return SymbolInfo{Symbol: symbol, Name: symbol, Market: market}, false
}
