package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignal/internal/model"
	"MarketSignal/internal/recorder"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Symbol:          "AAPL",
		Signal:          model.Buy,
		Confidence:      61,
		TimeFrame:       model.MediumTerm,
		Reasoning:       []string{"Technical analysis shows 3 bullish patterns including Order Block", "P/E <15"},
		Support:         95,
		Resistance:      110,
		StopLoss:        96,
		TargetPrice:     110,
		RiskRewardRatio: 2.33,
		Timestamp:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestFormatSignal(t *testing.T) {
	msg := FormatSignal(sampleResult(), "1D", 100)
	assert.Contains(t, msg, "<b>AAPL</b> 1D | 2024-03-15 12:00")
	assert.Contains(t, msg, "🟩 BUY")
	assert.Contains(t, msg, "confidence 61%")
	assert.Contains(t, msg, "Stop: 96.00 | Target: 110.00 | R/R: 2.33")
	assert.Contains(t, msg, "P/E &lt;15", "reasoning is HTML-escaped")
}

func TestFormatSignal_GuardResultHasNoLevels(t *testing.T) {
	res := &model.AnalysisResult{Symbol: "XYZ", Signal: model.Neutral, Confidence: 50, Reasoning: []string{"Insufficient data"}}
	msg := FormatSignal(res, "1D", 0)
	assert.NotContains(t, msg, "Support")
	assert.Contains(t, msg, "Insufficient data")
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1.0856, "1.0856"},
		{182.523, "182.52"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatPrice(tt.in))
	}
}

func TestFormatSignalChange(t *testing.T) {
	msg := FormatSignalChange(model.Neutral, sampleResult(), "1D", 100)
	assert.True(t, strings.HasPrefix(msg, "🔔 <b>Signal change</b>: ⚪ NEUTRAL → 🟩 BUY"))
}

func TestFormatPatterns(t *testing.T) {
	msg := FormatPatterns("BTCUSD", "1H", []model.PatternDetection{
		{Name: "Order Block", Timeframe: "H1", Confidence: 75, Bullish: true, Description: "desc"},
		{Name: "Breaker Block", Timeframe: "H1", Confidence: 53, Bullish: false, Description: "desc"},
	})
	assert.Contains(t, msg, "📈 <b>Order Block</b> [H1] 75%")
	assert.Contains(t, msg, "📉 <b>Breaker Block</b> [H1] 53%")

	assert.Contains(t, FormatPatterns("X", "1D", nil), "No patterns detected.")
}

func TestFormatDigest(t *testing.T) {
	now := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	msg := FormatDigest([]recorder.SignalRecord{
		{Symbol: "AAPL", Timeframe: "1D", Signal: model.Buy, Confidence: 61},
		{Symbol: "BTCUSD", Timeframe: "1H", Signal: model.StrongSell, Confidence: 15},
		{Symbol: "EURUSD", Timeframe: "4H", Signal: model.Neutral, Confidence: 50},
	}, now)
	assert.Contains(t, msg, "2024-03-15")
	assert.Contains(t, msg, "BTCUSD 1H: 🔴 STRONG SELL (15%)")
	assert.Contains(t, msg, "Buy: 1 | Sell: 1 | Neutral: 1")

	assert.Contains(t, FormatDigest(nil, now), "No signals recorded yet.")
}

func TestFormatWatchlist(t *testing.T) {
	msg := FormatWatchlist([]string{"AAPL 1D - 🟩 BUY", "A&B 1H"}, time.Time{})
	assert.Contains(t, msg, "• AAPL 1D - 🟩 BUY")
	assert.Contains(t, msg, "A&amp;B 1H")
	assert.Contains(t, msg, "Not scanned yet")

	msg = FormatWatchlist(nil, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC))
	assert.Contains(t, msg, "Last scan 2024-03-15 14:30 UTC")
}

func TestSend_Disabled(t *testing.T) {
	n := NewTelegramNotifier("", "", "", zerolog.Nop())
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), "hello"))
	assert.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
}

func TestSend_PostsHTMLMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.APIBase = srv.URL
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry_StopsOnContext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.APIBase = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "hi", 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatch_RepliesToChat(t *testing.T) {
	var chats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		chats = append(chats, body["chat_id"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.APIBase = srv.URL

	var updates []telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`[
		{"update_id": 7, "message": {"text": "/help", "chat": {"id": 99}}},
		{"update_id": 8},
		{"update_id": 9, "message": {"text": "ignored", "chat": {"id": 99}}}
	]`), &updates))

	next := n.dispatch(context.Background(), updates, 0, func(_ context.Context, cmd string) string {
		if cmd == "/help" {
			return HelpText
		}
		return ""
	})
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"99"}, chats)
}
