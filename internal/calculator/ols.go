package calculator

import "math"

// degenerateEps guards the OLS denominator against an indeterminate fit.
const degenerateEps = 1e-9

// FitOLS fits y = slope*x + intercept by ordinary least squares over the pairs
// (x[k], y[k]). When all x are effectively equal the slope is 0 and the
// intercept is the mean of y.
func FitOLS(x []int, y []float64) (slope, intercept float64) {
	n := float64(len(x))
	var sx, sy, sxy, sxx float64
	for k := range x {
		xv := float64(x[k])
		sx += xv
		sy += y[k]
		sxy += xv * y[k]
		sxx += xv * xv
	}
	d := n*sxx - sx*sx
	if math.Abs(d) < degenerateEps {
		return 0, sy / math.Max(1, n)
	}
	slope = (n*sxy - sx*sy) / d
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
