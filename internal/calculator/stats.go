package calculator

import (
	"errors"
	"math"

	"TrendSentinel/internal/model"
)

// tradingDaysPerYear bounds the 52-week window.
const tradingDaysPerYear = 252

// CalculateSMA returns the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return mean(values[len(values)-period:]), nil
}

// CalculateRSI computes the Wilder-smoothed RSI of closes over period.
// Returns 50 when there are fewer than period+1 bars.
func CalculateRSI(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 50.0, nil
	}
	closes := extractCloses(bars)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		if d := closes[i] - closes[i-1]; d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := math.Max(d, 0), math.Max(-d, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	return 100.0 - 100.0/(1.0+avgGain/avgLoss), nil
}

// CalculateRange returns the highest high and lowest low of the last n bars.
func CalculateRange(bars []model.Bar, n int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := max(0, len(bars)-n)
	high, low = math.Inf(-1), math.Inf(1)
	for _, b := range bars[start:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low, nil
}

// CalculatePosition returns where current sits inside [low, high], clamped to 0..1.
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return math.Min(1, math.Max(0, (current-low)/(high-low))), nil
}

// Summarize builds the price statistics block. Indicators that lack data are
// left at their fallbacks: the last close for averages, 50 for RSI.
func Summarize(bars []model.Bar) model.PriceStats {
	var st model.PriceStats
	if len(bars) == 0 {
		return st
	}
	last := bars[len(bars)-1].Close
	st.LastClose = last
	if len(bars) > 1 {
		if prev := bars[len(bars)-2].Close; prev != 0 {
			st.ChangePct = (last - prev) / prev * 100
		}
	}

	closes := extractCloses(bars)
	st.SMA50 = smaOr(closes, 50, last)
	st.SMA200 = smaOr(closes, 200, last)

	if rsi, err := CalculateRSI(bars, 14); err == nil {
		st.RSI14 = rsi
	}

	st.High52w, st.Low52w, _ = CalculateRange(bars, tradingDaysPerYear)
	if pos, err := CalculatePosition(last, st.High52w, st.Low52w); err == nil {
		st.Position52w = pos
	} else {
		st.Position52w = 0.5
	}
	return st
}

func smaOr(values []float64, period int, fallback float64) float64 {
	v, err := CalculateSMA(values, period)
	if err != nil {
		return fallback
	}
	return v
}
