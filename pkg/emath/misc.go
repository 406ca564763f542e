package emath

import "math"

// Some functions that only operate on basic types, that are useful

// Clamp limits f to [lo, hi]
func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// GammaEncodeBT709 applies the broadcast (ITU-R BT.709) transfer
// function to a linear value in [0,1].
func GammaEncodeBT709(f float64) float64 {
	if f < 0.018 {
		return 4.5 * f
	}
	return 1.099*math.Pow(f, 0.45) - 0.099
}
