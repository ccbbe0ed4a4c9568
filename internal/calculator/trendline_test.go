package calculator

import (
	"math"
	"reflect"
	"testing"
	"time"

	"TrendSentinel/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mkBars builds daily bars whose highs sit spread above the given lows.
func mkBars(lows []float64, spread float64) []model.Bar {
	bars := make([]model.Bar, len(lows))
	for i, l := range lows {
		bars[i] = model.Bar{
			Time:   day0.AddDate(0, 0, i),
			Open:   l + spread/2,
			High:   l + spread,
			Low:    l,
			Close:  l + spread/2,
			Volume: 1000,
		}
	}
	return bars
}

// zigzagLows is a 60-bar series with swing lows at 10, 30, 50 (100, 105, 110)
// and swing highs at 20, 40 (120, 125).
func zigzagLows() []float64 {
	out := make([]float64, 60)
	for i := range out {
		switch {
		case i <= 10:
			out[i] = 120 - 2*float64(i)
		case i <= 20:
			out[i] = 100 + 2*float64(i-10)
		case i <= 30:
			out[i] = 120 - 1.5*float64(i-20)
		case i <= 40:
			out[i] = 105 + 2*float64(i-30)
		case i <= 50:
			out[i] = 125 - 1.5*float64(i-40)
		default:
			out[i] = 110 + 2*float64(i-50)
		}
	}
	return out
}

func TestWalkAnchors_Support(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	a, ok := WalkAnchors(bars, false, DefaultMinorOptions(day0))
	if !ok {
		t.Fatal("expected anchors")
	}
	if !reflect.DeepEqual(a.Idx, []int{10, 30, 50}) {
		t.Errorf("expected idx [10 30 50], got %v", a.Idx)
	}
	if !reflect.DeepEqual(a.Px, []float64{100, 105, 110}) {
		t.Errorf("expected px [100 105 110], got %v", a.Px)
	}
}

func TestWalkAnchors_ResistancePicksMostExtreme(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	a, ok := WalkAnchors(bars, true, DefaultMinorOptions(day0))
	if !ok {
		t.Fatal("expected anchors")
	}
	// from 20 the walk skips the nearer swing at 30 for the higher one at 40
	if !reflect.DeepEqual(a.Idx, []int{20, 40, 50}) {
		t.Errorf("expected idx [20 40 50], got %v", a.Idx)
	}
}

func TestWalkAnchors_StrictlyIncreasing(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	for _, res := range []bool{true, false} {
		a, ok := WalkAnchors(bars, res, DefaultMinorOptions(day0))
		if !ok {
			t.Fatalf("resistance=%v: expected anchors", res)
		}
		if len(a.Idx) != len(a.Px) {
			t.Errorf("resistance=%v: idx/px length mismatch %d vs %d", res, len(a.Idx), len(a.Px))
		}
		for k := 1; k < len(a.Idx); k++ {
			if a.Idx[k] <= a.Idx[k-1] {
				t.Errorf("resistance=%v: idx not strictly increasing: %v", res, a.Idx)
			}
		}
	}
}

func TestWalkAnchors_NoResult(t *testing.T) {
	zz := mkBars(zigzagLows(), 2)
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}

	tests := []struct {
		name string
		bars []model.Bar
		opts MinorOptions
	}{
		{"fewer than 50 bars", zz[:49], DefaultMinorOptions(day0)},
		{"start after last bar", zz, DefaultMinorOptions(day0.AddDate(0, 0, 60))},
		{"no swings", mkBars(rising, 2), DefaultMinorOptions(day0)},
		{"plateau never hops", mkBars(flat, 2), DefaultMinorOptions(day0)},
		{"hop threshold too high", zz, MinorOptions{Start: day0, MinHopPct: 0.5}},
		{"lookahead too short", zz, MinorOptions{Start: day0, Lookahead: 5}},
	}
	for _, tt := range tests {
		if a, ok := WalkAnchors(tt.bars, false, tt.opts); ok {
			t.Errorf("%s: expected no anchors, got %v", tt.name, a.Idx)
		}
	}
}

func TestWalkAnchors_StartCutoff(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	a, ok := WalkAnchors(bars, false, DefaultMinorOptions(day0.AddDate(0, 0, 25)))
	if !ok {
		t.Fatal("expected anchors")
	}
	if !reflect.DeepEqual(a.Idx, []int{30, 50}) {
		t.Errorf("expected idx [30 50], got %v", a.Idx)
	}
}

func TestWalkAnchors_MaxAnchors(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	a, ok := WalkAnchors(bars, false, MinorOptions{Start: day0, MaxAnchors: 2})
	if !ok {
		t.Fatal("expected anchors")
	}
	if !reflect.DeepEqual(a.Idx, []int{10, 30}) {
		t.Errorf("expected idx [10 30], got %v", a.Idx)
	}
}

func TestWalkAnchors_SeedFallback(t *testing.T) {
	// no swing inside the first 30 bars after the start
	lows := make([]float64, 60)
	for i := range lows {
		switch {
		case i <= 40:
			lows[i] = 100 + float64(i)
		case i <= 50:
			lows[i] = 140 - 3*float64(i-40)
		default:
			lows[i] = 110 + 2*float64(i-50)
		}
	}
	a, ok := WalkAnchors(mkBars(lows, 2), false, DefaultMinorOptions(day0))
	if !ok {
		t.Fatal("expected anchors")
	}
	if !reflect.DeepEqual(a.Idx, []int{40, 50}) {
		t.Errorf("expected idx [40 50], got %v", a.Idx)
	}
}

func TestComputeMinorTrendLine_Support(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	l := ComputeMinorTrendLine(bars, false, model.KindMinorSupport, DefaultMinorOptions(day0))
	if l == nil {
		t.Fatal("expected a line")
	}
	if l.Kind != model.KindMinorSupport || l.T0 != 0 || l.T1 != 59 {
		t.Errorf("unexpected line header: %+v", *l)
	}
	// anchors (10,100) (30,105) (50,110) lie on y = 97.5 + 0.25x
	if !approx(l.Y0, 97.5) || !approx(l.Y1, 97.5+0.25*59) {
		t.Errorf("expected y0=97.5 y1=%.2f, got %.6f %.6f", 97.5+0.25*59, l.Y0, l.Y1)
	}
}

func TestComputeMinorTrendLine_ExtendsFromStart(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	l := ComputeMinorTrendLine(bars, false, model.KindMinorSupport, DefaultMinorOptions(day0.AddDate(0, 0, 25)))
	if l == nil {
		t.Fatal("expected a line")
	}
	if l.T0 != 25 || !approx(l.Y0, 97.5+0.25*25) {
		t.Errorf("expected t0=25 y0=%.2f, got %d %.6f", 97.5+0.25*25, l.T0, l.Y0)
	}
}

func TestComputeMinorTrendLine_FlatClamp(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	opts := DefaultMinorOptions(day0)
	opts.SlopeFlatEps = 1 // every fitted slope here is below 1
	l := ComputeMinorTrendLine(bars, false, model.KindMinorSupport, opts)
	if l == nil {
		t.Fatal("expected a line")
	}
	if l.Y0 != l.Y1 || !approx(l.Y0, 105) {
		t.Errorf("expected horizontal line at 105, got y0=%.6f y1=%.6f", l.Y0, l.Y1)
	}
}

func TestComputeTrendPack_InsufficientData(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	if got := ComputeTrendPack(bars[:49], day0); got != (model.TrendPack{}) {
		t.Errorf("expected empty pack for 49 bars, got %+v", got)
	}
	got := ComputeTrendPack(bars[:50], day0)
	if got.Minor.Support == nil {
		t.Error("expected minor support at the 50-bar boundary")
	}
	if got.Major != (model.TrendPair{}) {
		t.Errorf("major lines must stay empty, got %+v", got.Major)
	}
}

func TestComputeTrendPack_BothDirections(t *testing.T) {
	pack := ComputeTrendPack(mkBars(zigzagLows(), 2), day0)
	if pack.Minor.Resistance == nil || pack.Minor.Support == nil {
		t.Fatalf("expected both minor lines, got %+v", pack.Minor)
	}
	if pack.Minor.Resistance.Kind != model.KindMinorResistance {
		t.Errorf("unexpected resistance kind %q", pack.Minor.Resistance.Kind)
	}
	// anchors (20,122) (40,127) (50,112)
	if !approx(pack.Minor.Resistance.Slope(), -0.25) {
		t.Errorf("expected resistance slope -0.25, got %.6f", pack.Minor.Resistance.Slope())
	}
}

func TestComputeTrendPack_DirectionsIndependent(t *testing.T) {
	bars := mkBars(zigzagLows(), 2)
	clean := ComputeTrendPack(bars, day0)

	broken := make([]model.Bar, len(bars))
	copy(broken, bars)
	for i := range broken {
		broken[i].Low = math.NaN()
	}
	got := ComputeTrendPack(broken, day0)
	if !reflect.DeepEqual(got.Minor.Resistance, clean.Minor.Resistance) {
		t.Errorf("resistance changed after corrupting lows: %+v vs %+v", got.Minor.Resistance, clean.Minor.Resistance)
	}

	copy(broken, bars)
	for i := range broken {
		broken[i].High = 0
	}
	got = ComputeTrendPack(broken, day0)
	if !reflect.DeepEqual(got.Minor.Support, clean.Minor.Support) {
		t.Errorf("support changed after corrupting highs: %+v vs %+v", got.Minor.Support, clean.Minor.Support)
	}
}

func TestComputeTrendPack_RisingWithPullbacks(t *testing.T) {
	lows := make([]float64, 60)
	for i := range lows {
		lows[i] = 100 + float64(i)*50/59 - 1
		if i == 20 || i == 40 {
			lows[i] -= 5
		}
	}
	bars := mkBars(lows, 2)
	for i := range bars {
		if i == 20 || i == 40 {
			bars[i].High -= 5
		}
	}
	pack := ComputeTrendPack(bars, day0)
	if s := pack.Minor.Support; s != nil && s.Slope() <= 0 {
		t.Errorf("expected upward support, got slope %.6f", s.Slope())
	}
	if r := pack.Minor.Resistance; r != nil && r.T1 != 59 {
		t.Errorf("expected resistance to end at the last bar, got t1=%d", r.T1)
	}
}

// valleyLows builds a 60-bar series of V shapes (slope 1 per bar) bottoming at
// the given troughs.
func valleyLows(troughs map[int]float64) []float64 {
	out := make([]float64, 60)
	for i := range out {
		out[i] = math.Inf(1)
		for t, v := range troughs {
			out[i] = math.Min(out[i], v+math.Abs(float64(i-t)))
		}
	}
	return out
}

func TestComputeMinorTrendLine_FlatClampDefaultEps(t *testing.T) {
	// anchors 100, 100.06, 100 fit to a zero slope
	bars := mkBars(valleyLows(map[int]float64{10: 100, 30: 100.06, 50: 100}), 2)
	a, ok := WalkAnchors(bars, false, DefaultMinorOptions(day0))
	if !ok || !reflect.DeepEqual(a.Idx, []int{10, 30, 50}) {
		t.Fatalf("expected idx [10 30 50], got %v (ok=%v)", a.Idx, ok)
	}

	l := ComputeMinorTrendLine(bars, false, model.KindMinorSupport, DefaultMinorOptions(day0))
	if l == nil {
		t.Fatal("expected a line")
	}
	want := mean(a.Px)
	if l.Y0 != want || l.Y1 != want {
		t.Errorf("expected y0 == y1 == %.6f, got %.6f %.6f", want, l.Y0, l.Y1)
	}
}

func TestMinorOptions_ZeroThresholds(t *testing.T) {
	// hops of 0.01% sit below the default threshold
	bars := mkBars(valleyLows(map[int]float64{10: 100, 30: 100.01, 50: 100.02}), 2)

	if a, ok := WalkAnchors(bars, false, DefaultMinorOptions(day0)); ok {
		t.Errorf("default threshold: expected no anchors, got %v", a.Idx)
	}

	opts := DefaultMinorOptions(day0)
	opts.MinHopPct = 0
	a, ok := WalkAnchors(bars, false, opts)
	if !ok || !reflect.DeepEqual(a.Idx, []int{10, 30, 50}) {
		t.Errorf("zero threshold: expected idx [10 30 50], got %v (ok=%v)", a.Idx, ok)
	}

	neg := MinorOptions{Start: day0, MinHopPct: -1, SlopeFlatEps: -1}.withDefaults()
	if neg.MinHopPct != DefaultMinHopPct || neg.SlopeFlatEps != DefaultSlopeFlatEps {
		t.Errorf("negative fields should take defaults, got %+v", neg)
	}

	noClamp := DefaultMinorOptions(day0)
	noClamp.SlopeFlatEps = 0
	if got := noClamp.withDefaults().SlopeFlatEps; got != 0 {
		t.Errorf("zero SlopeFlatEps should stay 0, got %v", got)
	}
}
