package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"MarketSignal/internal/model"
)

// Manager tracks the last signal per watchlist entry with concurrency
// safety. An empty file path keeps the state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *ScanState
	filePath string
}

// NewManager creates a Manager, loading state from disk when filePath is set.
func NewManager(filePath string) (*Manager, error) {
	st := &ScanState{Signals: make(map[string]model.TradeSignal)}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load scan state: %w", err)
		}
		st = loaded
	}
	return &Manager{state: st, filePath: filePath}, nil
}

// Key identifies a watchlist entry.
func Key(symbol, timeframe string) string {
	return strings.ToUpper(symbol) + ":" + timeframe
}

// Observe stores signal for key and returns the previous one.
func (m *Manager) Observe(key string, signal model.TradeSignal) (prev model.TradeSignal, seen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, seen = m.state.Signals[key]
	m.state.Signals[key] = signal
	return prev, seen
}

// Last returns the stored signal for key.
func (m *Manager) Last(key string) (model.TradeSignal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.state.Signals[key]
	return s, ok
}

// Len returns the number of tracked entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Signals)
}

// MarkScanned records the completion time of a scan and persists the state.
func (m *Manager) MarkScanned(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastScanAt = at
	return m.save()
}

// LastScanAt returns the completion time of the last scan.
func (m *Manager) LastScanAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.LastScanAt
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}
