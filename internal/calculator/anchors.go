package calculator

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

const (
	// MinBars is the shortest series a trendline is computed for.
	MinBars = 50

	DefaultMinHopPct    = 0.0005
	DefaultLookahead    = 240
	DefaultSwingOrder   = 1
	DefaultMaxAnchors   = 12
	DefaultSlopeFlatEps = 1e-7

	// seedWindowMin is the minimum width of the window the seed anchor is picked from.
	seedWindowMin = 30
	// percentEps floors the divisor of a percent change.
	percentEps = 1e-9
)

// MinorOptions configures the anchor walk and line fit for minor trendlines.
// Lookahead, SwingOrder and MaxAnchors take the Default* values when <= 0.
// MinHopPct and SlopeFlatEps take them only when negative: a zero MinHopPct
// accepts every hop and a zero SlopeFlatEps never clamps. Start from
// DefaultMinorOptions for the standard set.
type MinorOptions struct {
	Start        time.Time
	MinHopPct    float64
	Lookahead    int
	SwingOrder   int
	MaxAnchors   int
	SlopeFlatEps float64
}

// DefaultMinorOptions returns the option set used by ComputeTrendPack.
func DefaultMinorOptions(start time.Time) MinorOptions {
	return MinorOptions{
		Start:        start,
		MinHopPct:    DefaultMinHopPct,
		Lookahead:    DefaultLookahead,
		SwingOrder:   DefaultSwingOrder,
		MaxAnchors:   DefaultMaxAnchors,
		SlopeFlatEps: DefaultSlopeFlatEps,
	}
}

func (o MinorOptions) withDefaults() MinorOptions {
	if o.MinHopPct < 0 {
		o.MinHopPct = DefaultMinHopPct
	}
	if o.Lookahead <= 0 {
		o.Lookahead = DefaultLookahead
	}
	if o.SwingOrder <= 0 {
		o.SwingOrder = DefaultSwingOrder
	}
	if o.MaxAnchors <= 0 {
		o.MaxAnchors = DefaultMaxAnchors
	}
	if o.SlopeFlatEps < 0 {
		o.SlopeFlatEps = DefaultSlopeFlatEps
	}
	return o
}

// ParseStart parses a cutoff given as a calendar date (2006-01-02) or RFC3339 timestamp.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty start date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("start date must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

// StartIndex returns the index of the first bar at or after start, or -1.
func StartIndex(bars []model.Bar, start time.Time) int {
	for i, b := range bars {
		if !b.Time.Before(start) {
			return i
		}
	}
	return -1
}

func percentChange(a, b float64) float64 {
	return (b - a) / math.Max(percentEps, a)
}

// WalkAnchors seeds on the most extreme swing in the early window after the start
// index, then repeatedly jumps to the most extreme swing within the look-ahead
// that moved at least MinHopPct from the current anchor. It returns false when
// there is not enough data for a line.
func WalkAnchors(bars []model.Bar, isResistance bool, opts MinorOptions) (model.AnchorSet, bool) {
	opts = opts.withDefaults()
	if len(bars) < MinBars {
		return model.AnchorSet{}, false
	}

	startIdx := StartIndex(bars, opts.Start)
	if startIdx == -1 {
		return model.AnchorSet{}, false
	}

	var series []float64
	if isResistance {
		series = extractHighs(bars)
	} else {
		series = extractLows(bars)
	}

	var swings []int
	for _, i := range FindSwingIndices(series, opts.SwingOrder) {
		if i >= startIdx {
			swings = append(swings, i)
		}
	}
	if len(swings) == 0 {
		return model.AnchorSet{}, false
	}

	// more extreme in the walk direction; ties keep the earlier index
	better := func(cand, best float64) bool {
		if isResistance {
			return cand > best
		}
		return cand < best
	}
	worst := math.Inf(1)
	if isResistance {
		worst = math.Inf(-1)
	}

	windowEnd := min(len(bars)-1, startIdx+max(seedWindowMin, opts.SwingOrder*3))
	seed, seedVal := -1, worst
	for _, i := range swings {
		if i > windowEnd {
			break
		}
		if better(series[i], seedVal) {
			seed, seedVal = i, series[i]
		}
	}
	if seed == -1 {
		seed = swings[0]
	}

	anchors := []int{seed}
	cursor := seed
	for len(anchors) < opts.MaxAnchors {
		end := min(len(bars)-1, cursor+opts.Lookahead)
		best, bestVal := -1, worst
		for _, i := range swings {
			if i <= cursor {
				continue
			}
			if i > end {
				break
			}
			if math.Abs(percentChange(series[cursor], series[i])) < opts.MinHopPct {
				continue
			}
			if better(series[i], bestVal) {
				best, bestVal = i, series[i]
			}
		}
		if best == -1 {
			break
		}
		anchors = append(anchors, best)
		cursor = best
	}

	if len(anchors) < 2 {
		return model.AnchorSet{}, false
	}

	idx := dedupSorted(anchors)
	px := make([]float64, len(idx))
	for k, i := range idx {
		px[k] = series[i]
	}
	return model.AnchorSet{Idx: idx, Px: px}, true
}

func dedupSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
