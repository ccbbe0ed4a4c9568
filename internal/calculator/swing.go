package calculator

import "TrendSentinel/internal/model"

// FindSwingIndices returns every index i in [order, n-1-order] whose value is
// >= all values within order bars on both sides (local max) or <= all of them
// (local min). Plateaus qualify at every index.
func FindSwingIndices(series []float64, order int) []int {
	if order < 1 {
		order = 1
	}
	out := make([]int, 0, len(series)/2)
	for i := order; i < len(series)-order; i++ {
		isMax, isMin := true, true
		for k := 1; k <= order; k++ {
			if series[i] < series[i-k] || series[i] < series[i+k] {
				isMax = false
			}
			if series[i] > series[i-k] || series[i] > series[i+k] {
				isMin = false
			}
			if !isMax && !isMin {
				break
			}
		}
		if isMax || isMin {
			out = append(out, i)
		}
	}
	return out
}

func extractHighs(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func extractLows(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func extractCloses(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
