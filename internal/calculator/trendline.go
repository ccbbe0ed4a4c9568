package calculator

import (
	"math"

	"TrendSentinel/internal/model"
)

// ComputeMinorTrendLine walks the anchors for one direction, fits them and
// extends the line from the start bar to the last bar. It returns nil when no
// line can be drawn.
func ComputeMinorTrendLine(bars []model.Bar, isResistance bool, kind model.TrendKind, opts MinorOptions) *model.TrendLine {
	opts = opts.withDefaults()
	anchors, ok := WalkAnchors(bars, isResistance, opts)
	if !ok || anchors.Len() < 2 {
		return nil
	}

	slope, intercept := FitOLS(anchors.Idx, anchors.Px)

	t0 := StartIndex(bars, opts.Start)
	if t0 < 0 {
		t0 = 0
	}
	t1 := len(bars) - 1

	y0 := slope*float64(t0) + intercept
	y1 := slope*float64(t1) + intercept

	// sideways clamp
	if math.Abs(slope) < opts.SlopeFlatEps {
		m := mean(anchors.Px)
		y0, y1 = m, m
	}

	return &model.TrendLine{Kind: kind, T0: t0, T1: t1, Y0: y0, Y1: y1}
}
