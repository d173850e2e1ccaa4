package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// SquareBurst returns pre zeros, on samples of a ±amplitude square wave with
// the given half-period in samples, then post zeros.
func SquareBurst(pre, on, post, halfPeriod int, amplitude float64) []float64 {
	out := make([]float64, pre+on+post)
	for i := range on {
		v := amplitude
		if (i/halfPeriod)%2 == 1 {
			v = -amplitude
		}
		out[pre+i] = v
	}
	return out
}
