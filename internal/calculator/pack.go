package calculator

import (
	"time"

	"TrendSentinel/internal/model"
)

// ComputeTrendPack computes the minor resistance line over highs and the minor
// support line over lows. Each direction is independent; a missing line is
// left nil. Major lines are not computed.
func ComputeTrendPack(bars []model.Bar, minorStart time.Time) model.TrendPack {
	if len(bars) < MinBars {
		return model.TrendPack{}
	}
	opts := DefaultMinorOptions(minorStart)
	return model.TrendPack{
		Minor: model.TrendPair{
			Resistance: ComputeMinorTrendLine(bars, true, model.KindMinorResistance, opts),
			Support:    ComputeMinorTrendLine(bars, false, model.KindMinorSupport, opts),
		},
	}
}
