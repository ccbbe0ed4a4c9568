package strategy

import (
	"fmt"
	"math"

	"TrendSentinel/internal/model"
)

// ProximityPct is how close (as a fraction of the line value) a close must be
// to count as testing a line.
const ProximityPct = 0.01

// Bands maps the signed distance from the nearest line to a label, checked in order.
var Bands = []struct {
	MinDistancePct float64
	Label          string
}{
	{5.0, "strong break"},
	{2.0, "confirmed break"},
	{0.0, "marginal break"},
}

// DefaultBandLabel is used when the close has not cleared the line.
const DefaultBandLabel = "inside"

func mapBand(distancePct float64) string {
	for _, b := range Bands {
		if distancePct >= b.MinDistancePct {
			return b.Label
		}
	}
	return DefaultBandLabel
}

// Evaluate classifies the last close against the minor lines projected to the last bar.
func Evaluate(bars []model.Bar, pack model.TrendPack) *model.TrendSignal {
	if len(bars) == 0 {
		return &model.TrendSignal{Type: model.SignalNone, Label: DefaultBandLabel, Commentary: "no bars"}
	}
	last := len(bars) - 1
	closePx := bars[last].Close
	sig := &model.TrendSignal{Type: model.SignalNone, Label: DefaultBandLabel, Close: closePx}

	res, sup := pack.Minor.Resistance, pack.Minor.Support
	if res == nil && sup == nil {
		sig.Commentary = "no trendlines"
		return sig
	}

	var resLevel, supLevel float64
	if res != nil {
		resLevel = res.ValueAt(last)
		sig.ResistanceLevel = resLevel
	}
	if sup != nil {
		supLevel = sup.ValueAt(last)
		sig.SupportLevel = supLevel
	}

	switch {
	case res != nil && resLevel > 0 && closePx > resLevel:
		sig.Type = model.SignalBreakout
		sig.DistancePct = (closePx - resLevel) / resLevel * 100
		sig.Label = mapBand(sig.DistancePct)
		sig.Commentary = fmt.Sprintf("close %.2f above resistance %.2f", closePx, resLevel)
	case sup != nil && supLevel > 0 && closePx < supLevel:
		sig.Type = model.SignalBreakdown
		sig.DistancePct = (closePx - supLevel) / supLevel * 100
		sig.Label = mapBand(-sig.DistancePct)
		sig.Commentary = fmt.Sprintf("close %.2f below support %.2f", closePx, supLevel)
	case res != nil && resLevel > 0 && (resLevel-closePx)/resLevel <= ProximityPct:
		sig.Type = model.SignalNearResistance
		sig.DistancePct = (closePx - resLevel) / resLevel * 100
		sig.Commentary = fmt.Sprintf("testing resistance %.2f", resLevel)
	case sup != nil && supLevel > 0 && (closePx-supLevel)/supLevel <= ProximityPct:
		sig.Type = model.SignalNearSupport
		sig.DistancePct = (closePx - supLevel) / supLevel * 100
		sig.Commentary = fmt.Sprintf("testing support %.2f", supLevel)
	default:
		sig.Type = model.SignalInside
		sig.DistancePct = nearestDistance(closePx, res, resLevel, sup, supLevel)
		sig.Commentary = "between trendlines"
	}
	return sig
}

func nearestDistance(closePx float64, res *model.TrendLine, resLevel float64, sup *model.TrendLine, supLevel float64) float64 {
	var dists []float64
	if res != nil && resLevel > 0 {
		dists = append(dists, (closePx-resLevel)/resLevel*100)
	}
	if sup != nil && supLevel > 0 {
		dists = append(dists, (closePx-supLevel)/supLevel*100)
	}
	best := 0.0
	for i, d := range dists {
		if i == 0 || math.Abs(d) < math.Abs(best) {
			best = d
		}
	}
	return best
}
