package model

import "time"

// TrendKind tags a computed line. The set is closed.
type TrendKind string

const (
	KindSupport         TrendKind = "support"
	KindResistance      TrendKind = "resistance"
	KindMinorSupport    TrendKind = "minor-support"
	KindMinorResistance TrendKind = "minor-resistance"
)

// TrendLine is a straight segment between two bar indices.
type TrendLine struct {
	Kind TrendKind `json:"kind"`
	T0   int       `json:"t0"`
	T1   int       `json:"t1"`
	Y0   float64   `json:"y0"`
	Y1   float64   `json:"y1"`
}

// Slope returns the price change per bar, 0 for a single-point segment.
func (l TrendLine) Slope() float64 {
	if l.T1 == l.T0 {
		return 0
	}
	return (l.Y1 - l.Y0) / float64(l.T1-l.T0)
}

// ValueAt projects the line to bar index t.
func (l TrendLine) ValueAt(t int) float64 {
	return l.Y0 + l.Slope()*float64(t-l.T0)
}

// Segment converts bar indices into dates using bars[t].Time.
func (l TrendLine) Segment(bars []Bar, number int) (TrendSegment, bool) {
	if l.T0 < 0 || l.T1 >= len(bars) || l.T0 > l.T1 {
		return TrendSegment{}, false
	}
	return TrendSegment{
		Number:     number,
		StartDate:  bars[l.T0].Time,
		EndDate:    bars[l.T1].Time,
		StartPrice: l.Y0,
		EndPrice:   l.Y1,
		Slope:      l.Slope(),
		TrendType:  l.Kind,
	}, true
}

// TrendPair groups the optional support and resistance lines of one horizon.
type TrendPair struct {
	Support    *TrendLine `json:"support,omitempty"`
	Resistance *TrendLine `json:"resistance,omitempty"`
}

// TrendPack is the result of one trendline computation. Major is never populated.
type TrendPack struct {
	Major TrendPair `json:"major"`
	Minor TrendPair `json:"minor"`
}

// Segments lists the dated minor lines, resistance first, numbered from 1.
func (p TrendPack) Segments(bars []Bar) []TrendSegment {
	var out []TrendSegment
	for _, l := range []*TrendLine{p.Minor.Resistance, p.Minor.Support} {
		if l == nil {
			continue
		}
		if seg, ok := l.Segment(bars, len(out)+1); ok {
			out = append(out, seg)
		}
	}
	return out
}

// AnchorSet is the ordered set of swing indices a line is fitted through.
// len(Idx) == len(Px) and Idx is strictly increasing.
type AnchorSet struct {
	Idx []int
	Px  []float64
}

// Len returns the number of anchors.
func (a AnchorSet) Len() int { return len(a.Idx) }

// TrendSegment is a dated trendline row, the shape stored in the trendlines table.
type TrendSegment struct {
	Number     int       `json:"trendline_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
	Slope      float64   `json:"slope"`
	TrendType  TrendKind `json:"trend_type"`
}

// TrendReport bundles everything computed for one symbol in one run.
type TrendReport struct {
	Symbol     string         `json:"symbol"`
	Source     string         `json:"source"`
	Start      time.Time      `json:"start"`
	BarCount   int            `json:"bar_count"`
	Pack       TrendPack      `json:"pack"`
	Segments   []TrendSegment `json:"segments"`
	Stats      PriceStats     `json:"stats"`
	Signal     *TrendSignal   `json:"signal"`
	ComputedAt time.Time      `json:"computed_at"`
}
