package core

import "math"

const defaultEpsilon = 1e-12

// FloorDB is the lowest level, in dB, that GainToDB reports. Silence and
// non-positive values map here instead of -Inf.
const FloorDB = -150.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// Smoothing stages that decay toward silence call this every sample.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToGain converts dB to linear gain (20*log10 convention).
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts linear gain to dB (20*log10 convention) and never
// returns -Inf or NaN: zero, negative and NaN input yield FloorDB, and
// anything quieter than FloorDB is clamped to it.
func GainToDB(gain float64) float64 {
	if !(gain > 0) {
		return FloorDB
	}

	db := 20 * math.Log10(gain)
	if db < FloorDB {
		return FloorDB
	}

	return db
}

// LinearToDB converts linear amplitude to dB without a floor.
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
