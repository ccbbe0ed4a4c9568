package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"TrendSentinel/internal/api"
	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/scheduler"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	symbol := flag.String("symbol", "", "compute one report, print it as JSON and exit")
	flag.Parse()
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogger(cfg)
	log.Info().Str("config", *cfgPath).Msg("TrendSentinel starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, closeFetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init data source")
	}
	defer closeFetcher()
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, collector.NewBarCache(time.Duration(cfg.DataSource.CacheTTLMinutes)*time.Minute))
	col.LookbackDays = cfg.DataSource.LookbackDays

	rec := newRecorder(cfg)
	defer rec.Close()

	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Error().Err(err).Msg("init telegram, alerts disabled")
		} else {
			n = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, col, n, rec, cfg.Watchlist)
	sched.WindowDays = cfg.Trend.WindowDays
	if cfg.Trend.Start != "" {
		// validated by cfg.Validate
		sched.PinnedStart, _ = calculator.ParseStart(cfg.Trend.Start)
	}

	if *symbol != "" {
		start, _ := sched.Window()
		rep, err := col.Collect(ctx, *symbol, start)
		if err != nil {
			log.Fatal().Err(err).Str("symbol", *symbol).Msg("collect")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatal().Err(err).Msg("encode report")
		}
		return
	}

	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, executing daily task now")
		go sched.RunNow()
	}

	svc := &api.TrendService{Collector: col, Recorder: rec, Window: sched.Window}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	log.Info().Msg("TrendSentinel stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			log.Warn().Err(err).Msg("create log directory")
		}
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     14,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func newFetcher(ctx context.Context, cfg *config.Config) (collector.Fetcher, func(), error) {
	noop := func() {}
	switch cfg.DataSource.Kind {
	case config.SourceBackend:
		return collector.NewBackendFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), noop, nil
	case config.SourcePostgres:
		pf, err := collector.NewPostgresFetcher(ctx, cfg.DataSource.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return pf, func() { pf.Close() }, nil
	case config.SourceMock:
		return &collector.MockFetcher{Price: 100}, noop, nil
	default:
		return collector.NewYahooFetcher(cfg.Proxy), noop, nil
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("create sqlite directory")
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
