package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketSignal/internal/model"
	"MarketSignal/internal/recorder"
)

var signalLabels = map[model.TradeSignal]string{
	model.StrongBuy:  "🟢 STRONG BUY",
	model.Buy:        "🟩 BUY",
	model.Neutral:    "⚪ NEUTRAL",
	model.Sell:       "🟥 SELL",
	model.StrongSell: "🔴 STRONG SELL",
}

// SignalLabel returns the display label of a signal.
func SignalLabel(s model.TradeSignal) string {
	if l, ok := signalLabels[s]; ok {
		return l
	}
	return strings.ToUpper(string(s))
}

func formatPrice(v float64) string {
	if v != 0 && v < 10 {
		return fmt.Sprintf("%.4f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatSignal formats an analysis result into a Telegram message.
func FormatSignal(res *model.AnalysisResult, timeframe string, price float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n", html.EscapeString(res.Symbol), html.EscapeString(timeframe),
		time.UnixMilli(res.Timestamp).UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("<b>%s</b> (confidence %d%%, %s term)\n", SignalLabel(res.Signal), res.Confidence, res.TimeFrame))

	if res.Support != 0 || res.Resistance != 0 {
		if price > 0 {
			b.WriteString(fmt.Sprintf("Price: %s\n", formatPrice(price)))
		}
		b.WriteString(fmt.Sprintf("Support: %s | Resistance: %s\n", formatPrice(res.Support), formatPrice(res.Resistance)))
		b.WriteString(fmt.Sprintf("Stop: %s | Target: %s | R/R: %.2f\n", formatPrice(res.StopLoss), formatPrice(res.TargetPrice), res.RiskRewardRatio))
	}

	if len(res.Reasoning) > 0 {
		b.WriteString("\n📝 <b>Reasoning:</b>\n")
		for _, line := range res.Reasoning {
			b.WriteString("• " + html.EscapeString(line) + "\n")
		}
	}
	return b.String()
}

// FormatSignalChange announces a signal that differs from the previous scan.
func FormatSignalChange(prev model.TradeSignal, res *model.AnalysisResult, timeframe string, price float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>Signal change</b>: %s → %s\n\n", SignalLabel(prev), SignalLabel(res.Signal)))
	b.WriteString(FormatSignal(res, timeframe, price))
	return b.String()
}

// FormatPatterns formats a pattern list.
func FormatPatterns(symbol, timeframe string, patterns []model.PatternDetection) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>%s</b> %s patterns\n\n", html.EscapeString(symbol), html.EscapeString(timeframe)))
	if len(patterns) == 0 {
		b.WriteString("No patterns detected.\n")
		return b.String()
	}
	for _, p := range patterns {
		dir := "📈"
		if !p.Bullish {
			dir = "📉"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> [%s] %d%%\n", dir, html.EscapeString(p.Name), p.Timeframe, p.Confidence))
		b.WriteString("   " + html.EscapeString(p.Description) + "\n")
	}
	return b.String()
}

// FormatDigest summarizes the latest recorded signals.
func FormatDigest(records []recorder.SignalRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗒 <b>Signal digest</b> | %s\n\n", now.Format("2006-01-02")))
	if len(records) == 0 {
		b.WriteString("No signals recorded yet.\n")
		return b.String()
	}

	var buys, sells int
	for _, r := range records {
		switch {
		case r.Signal.IsBuy():
			buys++
		case r.Signal.IsSell():
			sells++
		}
		b.WriteString(fmt.Sprintf("%s %s: %s (%d%%)\n",
			html.EscapeString(r.Symbol), html.EscapeString(r.Timeframe), SignalLabel(r.Signal), r.Confidence))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Buy: %d | Sell: %d | Neutral: %d\n", buys, sells, len(records)-buys-sells))
	return b.String()
}

// FormatWatchlist lists the scanned symbols. A zero lastScan means no scan
// has completed yet.
func FormatWatchlist(entries []string, lastScan time.Time) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, e := range entries {
		b.WriteString("• " + html.EscapeString(e) + "\n")
	}
	if lastScan.IsZero() {
		b.WriteString("\n<i>Not scanned yet</i>")
	} else {
		b.WriteString("\n<i>Last scan " + lastScan.UTC().Format("2006-01-02 15:04") + " UTC</i>")
	}
	return b.String()
}

// HelpText lists the supported commands.
const HelpText = `📖 <b>Commands</b>

/signal SYMBOL [TF] - current signal
/patterns SYMBOL [TF] - detected patterns
/watchlist - scanned symbols
/help - this message

Timeframes: 1m 5m 15m 1H 4H 1D 1W 1M`
