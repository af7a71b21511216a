package util

import "math"

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(x*shift) / shift
}

func InRange(x, min, max float64) bool {
	return x >= min && x <= max
}

func Clamp(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
