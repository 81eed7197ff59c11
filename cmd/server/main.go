package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"MarketSignal/internal/analyst"
	"MarketSignal/internal/api"
	"MarketSignal/internal/cache"
	"MarketSignal/internal/collector"
	"MarketSignal/internal/config"
	"MarketSignal/internal/logging"
	"MarketSignal/internal/notifier"
	"MarketSignal/internal/recorder"
	"MarketSignal/internal/scheduler"
	"MarketSignal/internal/state"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := bootLogger()
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.Log)
	logger.Info().Msg("MarketSignal starting")
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFetcher(cfg, logger)
	logger.Info().Str("provider", fetcher.Name()).Msg("data source")
	col := collector.NewCollector(fetcher, collector.NewMockFetcher(), cfg.DataSource.Timeout, logger)

	ch := cache.Open(ctx, cache.RedisOptions{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		Prefix:   "marketsignal:",
	}, logger)
	defer ch.Close()

	rec := newRecorder(cfg.Database.SQLitePath, logger)
	defer rec.Close()

	svc := analyst.NewService(col, ch, rec, cfg.Cache.TTL, logger)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	if !tn.Enabled() {
		logger.Info().Msg("telegram not configured, notifications disabled")
	}

	hub := api.NewHub(logger)
	go hub.Run(ctx)

	ensureDir(cfg.Schedule.StateFile, logger)
	st, err := state.NewManager(cfg.Schedule.StateFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("init scan state")
	}

	sched := scheduler.NewScheduler(ctx, svc, tn, hub, st, cfg.Watchlist, cfg.Schedule.Concurrency, logger)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.DigestCron); err != nil {
		logger.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info().Msg("RUN_ON_START enabled, scanning watchlist now")
		go func() {
			if _, err := sched.ScanNow(ctx); err != nil {
				logger.Error().Err(err).Msg("initial scan")
			}
		}()
	}

	srv := api.NewServer(api.ServerConfig{
		Addr:           cfg.Server.Addr,
		CORSOrigins:    cfg.Server.CORSOrigins,
		ProductionMode: os.Getenv("GIN_MODE") == "release",
	}, svc, hub, st, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info().Msg("MarketSignal is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	sched.Stop()
	logger.Info().Msg("MarketSignal stopped")
}

func bootLogger() zerolog.Logger {
	return logging.New(logging.Config{Level: "info"})
}

func newFetcher(cfg *config.Config, logger zerolog.Logger) collector.Fetcher {
	opts := []collector.Option{
		collector.WithBaseURL(cfg.DataSource.BaseURL),
		collector.WithProxy(cfg.Proxy, cfg.DataSource.Timeout),
		collector.WithRateLimit(cfg.DataSource.RequestsPerSecond),
		collector.WithBurst(cfg.DataSource.Burst),
		collector.WithLogger(logger),
	}
	switch cfg.DataSource.Provider {
	case config.ProviderAlphaVantage:
		return collector.NewAlphaVantageFetcher(cfg.DataSource.APIKey, opts...)
	case config.ProviderTraderMade:
		return collector.NewTraderMadeFetcher(cfg.DataSource.APIKey, opts...)
	default:
		return collector.NewMockFetcher()
	}
}

func newRecorder(path string, logger zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	ensureDir(path, logger)
	sr, err := recorder.NewSQLiteRecorder(path, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("init sqlite recorder failed, history disabled")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// ensureDir creates the parent directory of a data file.
func ensureDir(path string, logger zerolog.Logger) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("create data directory")
		}
	}
}
