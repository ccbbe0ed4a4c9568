package strategy

import (
	"math"
	"testing"
	"time"

	"TrendSentinel/internal/model"
)

func barsClosingAt(n int, closePx float64) []model.Bar {
	bars := make([]model.Bar, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.Bar{Time: t0.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100}
	}
	bars[n-1].Close = closePx
	return bars
}

func flatPack(res, sup float64) model.TrendPack {
	var p model.TrendPack
	if res > 0 {
		p.Minor.Resistance = &model.TrendLine{Kind: model.KindMinorResistance, T0: 0, T1: 59, Y0: res, Y1: res}
	}
	if sup > 0 {
		p.Minor.Support = &model.TrendLine{Kind: model.KindMinorSupport, T0: 0, T1: 59, Y0: sup, Y1: sup}
	}
	return p
}

func TestEvaluate_Classification(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		pack  model.TrendPack
		want  model.SignalType
	}{
		{"breakout", 112, flatPack(110, 90), model.SignalBreakout},
		{"breakdown", 85, flatPack(110, 90), model.SignalBreakdown},
		{"near resistance", 109.5, flatPack(110, 90), model.SignalNearResistance},
		{"near support", 90.5, flatPack(110, 90), model.SignalNearSupport},
		{"inside", 100, flatPack(110, 90), model.SignalInside},
		{"resistance only", 100, flatPack(110, 0), model.SignalInside},
		{"no lines", 100, model.TrendPack{}, model.SignalNone},
	}
	for _, tt := range tests {
		sig := Evaluate(barsClosingAt(60, tt.close), tt.pack)
		if sig.Type != tt.want {
			t.Errorf("%s: expected %s, got %s (%s)", tt.name, tt.want, sig.Type, sig.Commentary)
		}
	}
}

func TestEvaluate_ProjectsSlopedLine(t *testing.T) {
	// resistance rises from 100 at bar 0 to 159 at bar 59
	pack := model.TrendPack{Minor: model.TrendPair{
		Resistance: &model.TrendLine{Kind: model.KindMinorResistance, T0: 0, T1: 59, Y0: 100, Y1: 159},
	}}
	sig := Evaluate(barsClosingAt(60, 150), pack)
	if sig.Type == model.SignalBreakout {
		t.Fatalf("close below the projected line must not break out")
	}
	if math.Abs(sig.ResistanceLevel-159) > 1e-9 {
		t.Errorf("expected projected level 159, got %.4f", sig.ResistanceLevel)
	}
	if !Evaluate(barsClosingAt(60, 160), pack).Actionable() {
		t.Error("expected actionable breakout above 159")
	}
}

func TestMapBand_AllBoundaries(t *testing.T) {
	tests := []struct {
		dist  float64
		label string
	}{
		{8, "strong break"},
		{5, "strong break"},
		{3, "confirmed break"},
		{2, "confirmed break"},
		{0.5, "marginal break"},
		{0, "marginal break"},
		{-0.1, "inside"},
	}
	for _, tt := range tests {
		if got := mapBand(tt.dist); got != tt.label {
			t.Errorf("distance %.1f: expected %q, got %q", tt.dist, tt.label, got)
		}
	}
}

func TestEvaluate_InsideReportsNearestLine(t *testing.T) {
	sig := Evaluate(barsClosingAt(60, 105), flatPack(110, 90))
	want := (105.0 - 110.0) / 110.0 * 100
	if math.Abs(sig.DistancePct-want) > 1e-9 {
		t.Errorf("expected distance %.4f to resistance, got %.4f", want, sig.DistancePct)
	}
}
