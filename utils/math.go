// Package utils contains small numeric and concurrency helpers shared by the image packages.
package utils

import "math"

// Clamp01 returns v constrained to [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ClampInt returns v constrained to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SaturateUint8 rounds v to the nearest integer (halves away from zero) and saturates it into the
// uint8 range. NaN maps to 0.
func SaturateUint8(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

// RoundHalfEven rounds v to the nearest integer, resolving ties to the even neighbour.
func RoundHalfEven(v float64) float64 {
	return math.RoundToEven(v)
}

// ModFloat returns x mod m in [0, m) for positive m.
func ModFloat(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
