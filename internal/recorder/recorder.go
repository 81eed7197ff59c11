package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"MarketSignal/internal/model"
)

// SignalRecord is one emitted analysis result.
type SignalRecord struct {
	ID              string            `json:"id"`
	Symbol          string            `json:"symbol"`
	Timeframe       string            `json:"timeframe"`
	Signal          model.TradeSignal `json:"signal"`
	Confidence      int               `json:"confidence"`
	Horizon         model.TimeFrame   `json:"timeFrame"`
	Price           float64           `json:"price"`
	Support         float64           `json:"support"`
	Resistance      float64           `json:"resistance"`
	StopLoss        float64           `json:"stopLoss"`
	TargetPrice     float64           `json:"targetPrice"`
	RiskRewardRatio float64           `json:"riskRewardRatio"`
	Reasoning       []string          `json:"reasoning"`
	Provider        string            `json:"provider"`
	Trigger         string            `json:"trigger"` // "api", "scan" or "command"
	CreatedAt       int64             `json:"createdAt"` // epoch ms
}

// NewSignalRecord builds a record with a fresh ID from an analysis result.
func NewSignalRecord(res *model.AnalysisResult, timeframe string, price float64, provider, trigger string) *SignalRecord {
	created := res.Timestamp
	if created == 0 {
		created = time.Now().UnixMilli()
	}
	return &SignalRecord{
		ID:              uuid.NewString(),
		Symbol:          res.Symbol,
		Timeframe:       timeframe,
		Signal:          res.Signal,
		Confidence:      res.Confidence,
		Horizon:         res.TimeFrame,
		Price:           price,
		Support:         res.Support,
		Resistance:      res.Resistance,
		StopLoss:        res.StopLoss,
		TargetPrice:     res.TargetPrice,
		RiskRewardRatio: res.RiskRewardRatio,
		Reasoning:       res.Reasoning,
		Provider:        provider,
		Trigger:         trigger,
		CreatedAt:       created,
	}
}

// ScanRun summarizes one scheduled watchlist scan.
type ScanRun struct {
	ID         string `json:"id"`
	StartedAt  int64  `json:"startedAt"`
	DurationMs int64  `json:"durationMs"`
	Analyzed   int    `json:"analyzed"`
	Changed    int    `json:"changed"`
	Failed     int    `json:"failed"`
}

// Recorder persists emitted signals for history and digests.
type Recorder interface {
	RecordSignal(ctx context.Context, rec *SignalRecord) error
	RecordScan(ctx context.Context, run *ScanRun) error
	// RecentSignals returns up to limit records for symbol, newest first.
	RecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error)
	// LatestSignals returns the newest record per symbol and timeframe.
	LatestSignals(ctx context.Context) ([]SignalRecord, error)
	Close() error
}
