package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
)

// TrendService serves the API from the collector and the recorder.
type TrendService struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	// Window returns the default minor-line start when a request gives none.
	Window func() (time.Time, int)
}

// Trendlines computes a fresh report for symbol.
func (s *TrendService) Trendlines(ctx context.Context, symbol string, start time.Time) (*model.TrendReport, error) {
	if start.IsZero() {
		start, _ = s.Window()
	}
	rep, err := s.Collector.Collect(ctx, strings.ToUpper(symbol), start)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	return rep, nil
}

// History returns the last recorded trendlines for (symbol, timeframeDays).
func (s *TrendService) History(_ context.Context, symbol string, timeframeDays int) ([]model.TrendSegment, error) {
	segs, err := s.Recorder.LatestTrendlines(strings.ToUpper(symbol), timeframeDays)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", symbol, err)
	}
	return segs, nil
}
