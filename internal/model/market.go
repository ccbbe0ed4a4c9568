package model

import "time"

// Bar represents a single daily OHLCV session.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceStats is the dashboard summary block shown next to the chart.
type PriceStats struct {
	LastClose   float64 `json:"last_close"`
	ChangePct   float64 `json:"change_pct"`
	SMA50       float64 `json:"sma50"`
	SMA200      float64 `json:"sma200"`
	RSI14       float64 `json:"rsi14"`
	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	Position52w float64 `json:"position_52w"` // 0.0 ~ 1.0
}
