package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/strategy"
)

// DefaultLookbackDays is how many daily bars a report is computed over.
const DefaultLookbackDays = 300

// MockFetcher returns controllable fixed data for development and testing.
// It is safe for concurrent use.
type MockFetcher struct {
	Price     float64
	DailyData map[string][]model.Bar

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.Bar, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.DailyData != nil {
		bars, ok := m.DailyData[symbol]
		if !ok || len(bars) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoBars)
		}
		return bars, nil
	}
	return GenerateMockBars(m.Price, days, time.Now()), nil
}

// Calls returns how many fetches have been made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// GenerateMockBars produces a gently oscillating uptrend ending the day before end.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.Bar {
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		// 10-bar cycle so the series has swings
		wave := float64((i%10)-5) * 0.004
		if (i/10)%2 == 1 {
			wave = -wave
		}
		p := basePrice * (1 + float64(i-count/2)*0.001 + wave)
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches bars through the cache and computes trend reports.
type Collector struct {
	Fetcher      Fetcher
	Cache        *BarCache
	LookbackDays int
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, cache *BarCache) *Collector {
	return &Collector{
		Fetcher:      fetcher,
		Cache:        cache,
		LookbackDays: DefaultLookbackDays,
		logger:       log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
		now:          time.Now,
	}
}

// Bars returns the daily bars for symbol, served from the cache when valid.
func (c *Collector) Bars(ctx context.Context, symbol string) ([]model.Bar, error) {
	if c.Cache != nil {
		if bars, ok := c.Cache.Get(symbol); ok {
			return bars, nil
		}
	}
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch daily bars %s: %w", symbol, ErrNoBars)
	}
	if c.Cache != nil {
		c.Cache.Put(symbol, bars)
	}
	c.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("bars loaded")
	return bars, nil
}

// Collect fetches bars for symbol and computes the trend pack, price stats and signal.
func (c *Collector) Collect(ctx context.Context, symbol string, start time.Time) (*model.TrendReport, error) {
	bars, err := c.Bars(ctx, symbol)
	if err != nil {
		return nil, err
	}
	report := BuildReport(symbol, bars, start)
	report.Source = c.Fetcher.Name()
	report.ComputedAt = c.now()

	if report.Pack.Minor.Resistance == nil {
		c.logger.Info().Str("symbol", symbol).Msg("no minor resistance line")
	}
	if report.Pack.Minor.Support == nil {
		c.logger.Info().Str("symbol", symbol).Msg("no minor support line")
	}
	return report, nil
}

// BuildReport runs the pure computations over already loaded bars.
func BuildReport(symbol string, bars []model.Bar, start time.Time) *model.TrendReport {
	pack := calculator.ComputeTrendPack(bars, start)
	return &model.TrendReport{
		Symbol:   symbol,
		Start:    start,
		BarCount: len(bars),
		Pack:     pack,
		Segments: pack.Segments(bars),
		Stats:    calculator.Summarize(bars),
		Signal:   strategy.Evaluate(bars, pack),
	}
}
