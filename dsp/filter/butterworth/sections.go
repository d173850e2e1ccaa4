package butterworth

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-noisegate/dsp/filter/biquad"
)

const (
	// MinOrder and MaxOrder bound the supported filter orders.
	MinOrder = 1
	MaxOrder = 6

	// nyquistGuardHz keeps the cutoff this far below Nyquist.
	nyquistGuardHz = 5.0
)

var (
	errInvalidOrder  = errors.New("butterworth: order out of range")
	errInvalidCutoff = errors.New("butterworth: cutoff must be positive and finite")
	errInvalidRate   = errors.New("butterworth: sample rate must be positive and finite")
)

// LowpassSections designs a low-pass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0).
func LowpassSections(cutoffHz float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	return design(cutoffHz, order, sampleRate, lowpassRBJ, firstOrderLP)
}

// HighpassSections designs a high-pass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0).
func HighpassSections(cutoffHz float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	return design(cutoffHz, order, sampleRate, highpassRBJ, firstOrderHP)
}

func design(
	cutoffHz float64, order int, sampleRate float64,
	second func(w0, q float64) biquad.Coefficients,
	first func(w0 float64) biquad.Coefficients,
) ([]biquad.Coefficients, error) {
	w0, err := normalizedW0(cutoffHz, order, sampleRate)
	if err != nil {
		return nil, err
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, second(w0, poleQ(order, i)))
	}

	if order%2 != 0 {
		sections = append(sections, first(w0))
	}

	return sections, nil
}

// ClampCutoff limits cutoffHz to just below Nyquist for sampleRate.
func ClampCutoff(cutoffHz, sampleRate float64) float64 {
	return math.Min(cutoffHz, sampleRate/2-nyquistGuardHz)
}

func normalizedW0(cutoffHz float64, order int, sampleRate float64) (float64, error) {
	if order < MinOrder || order > MaxOrder {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", errInvalidOrder, order, MinOrder, MaxOrder)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: %f", errInvalidRate, sampleRate)
	}

	if cutoffHz <= 0 || math.IsNaN(cutoffHz) || math.IsInf(cutoffHz, 0) {
		return 0, fmt.Errorf("%w: %f", errInvalidCutoff, cutoffHz)
	}

	clamped := ClampCutoff(cutoffHz, sampleRate)
	if clamped <= 0 {
		return 0, fmt.Errorf("%w: no usable band below nyquist at %f Hz", errInvalidCutoff, sampleRate)
	}

	return 2 * math.Pi * clamped / sampleRate, nil
}

// poleQ returns the Q of the i-th conjugate pole pair of an order-n
// Butterworth prototype.
func poleQ(order, i int) float64 {
	theta := math.Pi * float64(2*i+1) / float64(2*order)
	return 1 / (2 * math.Sin(theta))
}

func lowpassRBJ(w0, q float64) biquad.Coefficients {
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func highpassRBJ(w0, q float64) biquad.Coefficients {
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 + cw) / 2 / a0,
		B1: -(1 + cw) / a0,
		B2: (1 + cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func firstOrderLP(w0 float64) biquad.Coefficients {
	k := math.Tan(w0 / 2)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

func firstOrderHP(w0 float64) biquad.Coefficients {
	k := math.Tan(w0 / 2)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}
