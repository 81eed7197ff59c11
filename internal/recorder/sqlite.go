package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"MarketSignal/internal/logging"
	"MarketSignal/internal/model"
)

// SQLiteRecorder persists signal history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logging.Component(logger, "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id                TEXT PRIMARY KEY,
			created_at        INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			timeframe         TEXT NOT NULL,
			signal            TEXT NOT NULL,
			confidence        INTEGER,
			horizon           TEXT,
			price             REAL,
			support           REAL,
			resistance        REAL,
			stop_loss         REAL,
			target_price      REAL,
			risk_reward_ratio REAL,
			reasoning         TEXT,
			provider          TEXT,
			trigger_source    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signals(symbol, created_at)`,

		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			analyzed    INTEGER,
			changed     INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(ctx context.Context, rec *SignalRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	reasoning, err := json.Marshal(rec.Reasoning)
	if err != nil {
		return fmt.Errorf("encode reasoning: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `INSERT INTO signals
		(id, created_at, symbol, timeframe, signal, confidence, horizon, price,
		 support, resistance, stop_loss, target_price, risk_reward_ratio,
		 reasoning, provider, trigger_source)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.CreatedAt, strings.ToUpper(rec.Symbol), rec.Timeframe, string(rec.Signal),
		rec.Confidence, string(rec.Horizon), rec.Price,
		rec.Support, rec.Resistance, rec.StopLoss, rec.TargetPrice, rec.RiskRewardRatio,
		string(reasoning), rec.Provider, rec.Trigger,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(ctx context.Context, run *ScanRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO scan_runs
		(id, started_at, duration_ms, analyzed, changed, failed)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt, run.DurationMs, run.Analyzed, run.Changed, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}

const signalColumns = `id, created_at, symbol, timeframe, signal, confidence, horizon, price,
	support, resistance, stop_loss, target_price, risk_reward_ratio,
	reasoning, provider, trigger_source`

func (r *SQLiteRecorder) RecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+signalColumns+` FROM signals
		WHERE symbol = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func (r *SQLiteRecorder) LatestSignals(ctx context.Context) ([]SignalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+signalColumns+` FROM signals s
		WHERE s.rowid = (
			SELECT s2.rowid FROM signals s2
			WHERE s2.symbol = s.symbol AND s2.timeframe = s.timeframe
			ORDER BY s2.created_at DESC, s2.rowid DESC LIMIT 1
		)
		ORDER BY s.symbol, s.timeframe`)
	if err != nil {
		return nil, fmt.Errorf("query latest signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]SignalRecord, error) {
	out := []SignalRecord{}
	for rows.Next() {
		var (
			rec       SignalRecord
			signal    string
			horizon   string
			reasoning string
		)
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Symbol, &rec.Timeframe, &signal,
			&rec.Confidence, &horizon, &rec.Price,
			&rec.Support, &rec.Resistance, &rec.StopLoss, &rec.TargetPrice, &rec.RiskRewardRatio,
			&reasoning, &rec.Provider, &rec.Trigger); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.Signal = model.TradeSignal(signal)
		rec.Horizon = model.TimeFrame(horizon)
		if reasoning != "" {
			if err := json.Unmarshal([]byte(reasoning), &rec.Reasoning); err != nil {
				return nil, fmt.Errorf("decode reasoning: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
