package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(context.Context, *SignalRecord) error { return nil }
func (n *NoopRecorder) RecordScan(context.Context, *ScanRun) error        { return nil }
func (n *NoopRecorder) RecentSignals(context.Context, string, int) ([]SignalRecord, error) {
	return []SignalRecord{}, nil
}
func (n *NoopRecorder) LatestSignals(context.Context) ([]SignalRecord, error) {
	return []SignalRecord{}, nil
}
func (n *NoopRecorder) Close() error { return nil }
