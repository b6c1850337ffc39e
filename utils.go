package options

import (
	"math"
)

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
