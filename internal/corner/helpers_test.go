package corner_test

import "math"

func sincos(deg float64) (float64, float64) {
	return math.Sincos(deg * math.Pi / 180)
}
