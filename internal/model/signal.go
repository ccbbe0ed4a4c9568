package model

// SignalType describes where the last close sits relative to the minor lines.
type SignalType string

const (
	SignalBreakout       SignalType = "BREAKOUT"
	SignalBreakdown      SignalType = "BREAKDOWN"
	SignalNearResistance SignalType = "NEAR_RESISTANCE"
	SignalNearSupport    SignalType = "NEAR_SUPPORT"
	SignalInside         SignalType = "INSIDE"
	SignalNone           SignalType = "NONE"
)

// TrendSignal is the output of the strategy evaluation.
type TrendSignal struct {
	Type            SignalType `json:"type"`
	Label           string     `json:"label"`
	Close           float64    `json:"close"`
	ResistanceLevel float64    `json:"resistance_level,omitempty"`
	SupportLevel    float64    `json:"support_level,omitempty"`
	DistancePct     float64    `json:"distance_pct"` // signed distance to the nearest line
	Commentary      string     `json:"commentary"`
}

// Actionable reports whether the signal should trigger an alert.
func (s *TrendSignal) Actionable() bool {
	return s != nil && (s.Type == SignalBreakout || s.Type == SignalBreakdown)
}
