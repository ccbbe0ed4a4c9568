package recorder

import "TrendSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrendReport(_ *model.TrendReport, _ int) error { return nil }
func (n *NoopRecorder) LatestTrendlines(_ string, _ int) ([]model.TrendSegment, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
