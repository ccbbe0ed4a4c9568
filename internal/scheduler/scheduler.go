package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
)

// Scheduler runs the daily trendline job over the watchlist and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier // nil disables alerts
	Recorder  recorder.Recorder
	Watchlist []string

	// PinnedStart pins the minor-line window. When zero, the window is WindowDays
	// calendar days back from the run time. WindowDays is the recorded
	// timeframe key either way.
	PinnedStart time.Time
	WindowDays  int

	Ctx    context.Context
	now    func() time.Time
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Notifier:   n,
		Recorder:   rec,
		Watchlist:  watchlist,
		WindowDays: 90,
		Ctx:        ctx,
		now:        time.Now,
		logger:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the daily trendline job.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("symbols", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

// Window returns the minor-line start and the timeframe key runs are recorded under.
func (s *Scheduler) Window() (time.Time, int) {
	if !s.PinnedStart.IsZero() {
		return s.PinnedStart, s.WindowDays
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -s.WindowDays), s.WindowDays
}

func (s *Scheduler) dailyTask() {
	s.logger.Info().Msg("running daily trendline task")
	start, timeframe := s.Window()

	var failed []string
	for _, symbol := range s.Watchlist {
		rep, err := s.Collector.Collect(s.Ctx, symbol, start)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("daily collect")
			failed = append(failed, symbol)
			continue
		}
		if err := s.Recorder.RecordTrendReport(rep, timeframe); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("record trend report")
		}
		if rep.Signal.Actionable() {
			s.trySend(notifier.FormatSignalAlert(rep))
		}
	}

	if len(failed) > 0 {
		s.trySend(fmt.Sprintf("❌ Daily trendline run failed for: %s", strings.Join(failed, ", ")))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/trend":
		if len(fields) < 2 {
			return "Usage: /trend SYMBOL"
		}
		return s.trendReply(strings.ToUpper(fields[1]))
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty"
		}
		return "Watchlist: " + strings.Join(s.Watchlist, ", ")
	case "/run":
		go s.dailyTask()
		return "Daily run started"
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /trend SYMBOL\n• /watchlist\n• /run"

func (s *Scheduler) trendReply(symbol string) string {
	start, _ := s.Window()
	rep, err := s.Collector.Collect(s.Ctx, symbol, start)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("trend command")
		return html.EscapeString(fmt.Sprintf("❌ %s: %v", symbol, err))
	}
	return notifier.FormatTrendReport(rep)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || text == "" {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
