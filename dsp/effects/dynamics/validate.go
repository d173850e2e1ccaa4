package dynamics

import (
	"fmt"
	"math"
)

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func validateRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || !isFinite(v) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, v)
	}

	return nil
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
