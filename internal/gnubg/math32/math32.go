// Package math32 wraps the float64 math functions for float32 callers.
package math32

import "math"

func Sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func Expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func Fabsf(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

func Min(x float32, y float32) float32 {
	return float32(math.Min(float64(x), float64(y)))
}

func Max(x float32, y float32) float32 {
	return float32(math.Max(float64(x), float64(y)))
}

// Clamp limits x to [lo, hi].
func Clamp(x float32, lo float32, hi float32) float32 {
	return Max(lo, Min(x, hi))
}
