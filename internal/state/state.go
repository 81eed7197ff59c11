package state

import (
	"encoding/json"
	"os"
	"time"

	"MarketSignal/internal/model"
)

// ScanState is the last observed signal of every watchlist entry.
type ScanState struct {
	Signals    map[string]model.TradeSignal `json:"signals"`
	LastScanAt time.Time                    `json:"last_scan_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
}

// LoadState reads the scan state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*ScanState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ScanState{Signals: make(map[string]model.TradeSignal)}, nil
		}
		return nil, err
	}
	var st ScanState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Signals == nil {
		st.Signals = make(map[string]model.TradeSignal)
	}
	return &st, nil
}

// SaveState writes the scan state to a JSON file.
func SaveState(filePath string, st *ScanState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
