package recorder

import "TrendSentinel/internal/model"

// Recorder persists computed trendlines for the dashboard and for history.
// timeframeDays is the lookback window the report was computed over.
type Recorder interface {
	RecordTrendReport(report *model.TrendReport, timeframeDays int) error
	LatestTrendlines(symbol string, timeframeDays int) ([]model.TrendSegment, error)
	Close() error
}
