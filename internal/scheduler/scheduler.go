package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"MarketSignal/internal/analyst"
	"MarketSignal/internal/config"
	"MarketSignal/internal/logging"
	"MarketSignal/internal/model"
	"MarketSignal/internal/notifier"
	"MarketSignal/internal/recorder"
	"MarketSignal/internal/state"
	"MarketSignal/internal/strategy"
)

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Broadcast(v interface{})
}

// SignalEvent is broadcast for every scanned watchlist entry.
type SignalEvent struct {
	Type      string            `json:"type"`
	Symbol    string            `json:"symbol"`
	Timeframe string            `json:"timeframe"`
	Changed   bool              `json:"changed"`
	Previous  model.TradeSignal `json:"previous,omitempty"`
	Analysis  *analyst.Analysis `json:"analysis"`
}

// EventSignal is the Type of a SignalEvent.
const EventSignal = "signal"

const sendRetries = 3

// Scheduler manages the watchlist scan and digest cron tasks.
type Scheduler struct {
	Cron        *cron.Cron
	Analyst     *analyst.Service
	Notifier    Notifier
	Hub         Broadcaster
	Watchlist   []config.WatchItem
	Concurrency int
	State       *state.Manager
	Ctx         context.Context

	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler. Hub may be nil; a nil state manager
// keeps the last signals in memory.
func NewScheduler(ctx context.Context, svc *analyst.Service, n Notifier, hub Broadcaster, st *state.Manager,
	watchlist []config.WatchItem, concurrency int, logger zerolog.Logger) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	if st == nil {
		st, _ = state.NewManager("")
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Analyst:     svc,
		Notifier:    n,
		Hub:         hub,
		Watchlist:   watchlist,
		Concurrency: concurrency,
		State:       st,
		Ctx:         ctx,
		logger:      logging.Component(logger, "scheduler"),
	}
}

// RegisterAll registers the scan and digest tasks. An empty digest expression
// disables the digest.
func (s *Scheduler) RegisterAll(scanCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if digestCron != "" {
		if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("watchlist", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scanTask() {
	if _, err := s.ScanNow(s.Ctx); err != nil {
		s.logger.Error().Err(err).Msg("scan aborted")
	}
}

func (s *Scheduler) digestTask() {
	if err := s.DigestNow(s.Ctx); err != nil {
		s.logger.Error().Err(err).Msg("digest failed")
	}
}

// ScanNow analyses every watchlist entry with bounded concurrency. A failed
// entry is counted and logged; only cancellation aborts the scan.
func (s *Scheduler) ScanNow(ctx context.Context) (*recorder.ScanRun, error) {
	started := time.Now()
	run := &recorder.ScanRun{StartedAt: started.UnixMilli()}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)

	for _, item := range s.Watchlist {
		item := item
		g.Go(func() error {
			a, err := s.Analyst.Refresh(gctx, item.Symbol, item.Timeframe, analyst.TriggerScan)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn().Err(err).Str("symbol", item.Symbol).Str("timeframe", item.Timeframe).Msg("scan entry failed")
				mu.Lock()
				run.Failed++
				mu.Unlock()
				return nil
			}

			changed := s.observe(gctx, a)
			mu.Lock()
			run.Analyzed++
			if changed {
				run.Changed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run.DurationMs = time.Since(started).Milliseconds()
	if err := s.State.MarkScanned(time.Now()); err != nil {
		s.logger.Error().Err(err).Msg("save scan state")
	}
	if err := s.Analyst.Recorder().RecordScan(ctx, run); err != nil {
		s.logger.Error().Err(err).Msg("record scan run")
	}
	s.logger.Info().
		Int("analyzed", run.Analyzed).
		Int("changed", run.Changed).
		Int("failed", run.Failed).
		Int64("duration_ms", run.DurationMs).
		Msg("watchlist scan finished")
	return run, nil
}

// observe compares a scan result with the previous one, notifies on change
// and broadcasts it. The first result of an entry is never a change.
func (s *Scheduler) observe(ctx context.Context, a *analyst.Analysis) bool {
	prev, seen := s.State.Observe(state.Key(a.Symbol, a.Timeframe), a.Result.Signal)
	changed := seen && prev != a.Result.Signal
	if changed {
		s.logger.Info().
			Str("symbol", a.Symbol).
			Str("timeframe", a.Timeframe).
			Str("from", string(prev)).
			Str("to", string(a.Result.Signal)).
			Msg("signal changed")
		s.trySend(ctx, notifier.FormatSignalChange(prev, a.Result, a.Timeframe, a.Price))
	}

	if s.Hub != nil {
		ev := SignalEvent{
			Type:      EventSignal,
			Symbol:    a.Symbol,
			Timeframe: a.Timeframe,
			Changed:   changed,
			Analysis:  a,
		}
		if seen {
			ev.Previous = prev
		}
		s.Hub.Broadcast(ev)
	}
	return changed
}

// DigestNow sends a summary of the latest recorded signals.
func (s *Scheduler) DigestNow(ctx context.Context) error {
	records, err := s.Analyst.Recorder().LatestSignals(ctx)
	if err != nil {
		return fmt.Errorf("load latest signals: %w", err)
	}
	s.trySend(ctx, notifier.FormatDigest(records, time.Now()))
	return nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/signal", "/patterns":
		if len(fields) < 2 {
			return fmt.Sprintf("Usage: %s SYMBOL [TF]", cmd)
		}
		symbol := strings.ToUpper(fields[1])
		timeframe := strategy.DefaultTimeframe
		if len(fields) > 2 {
			timeframe = fields[2]
		}
		if !strategy.IsKnownTimeframe(timeframe) {
			return fmt.Sprintf("Unknown timeframe %q. Use one of: %s", timeframe, strings.Join(strategy.Timeframes(), " "))
		}

		if cmd == "/patterns" {
			patterns, err := s.Analyst.Patterns(ctx, symbol, timeframe)
			if err != nil {
				s.logger.Error().Err(err).Str("symbol", symbol).Msg("patterns command")
				return fmt.Sprintf("❌ Pattern analysis failed for %s", symbol)
			}
			return notifier.FormatPatterns(symbol, timeframe, patterns)
		}

		a, err := s.Analyst.Analyze(ctx, symbol, timeframe)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("signal command")
			return fmt.Sprintf("❌ Analysis failed for %s", symbol)
		}
		return notifier.FormatSignal(a.Result, a.Timeframe, a.Price)

	case "/watchlist":
		entries := make([]string, 0, len(s.Watchlist))
		for _, w := range s.Watchlist {
			e := w.Symbol + " " + w.Timeframe
			if sig, ok := s.State.Last(state.Key(w.Symbol, w.Timeframe)); ok {
				e += " - " + notifier.SignalLabel(sig)
			}
			entries = append(entries, e)
		}
		return notifier.FormatWatchlist(entries, s.State.LastScanAt())

	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
