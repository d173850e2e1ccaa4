package smooth

import (
	"fmt"
	"math"
)

// LowpassAlpha maps a cutoff frequency fc (Hz) and sample period ts (s) to
// the coefficient of a one-pole low-pass: k/(k+1) with k = 2*pi*fc*ts.
func LowpassAlpha(fc, ts float64) float64 {
	k := 2 * math.Pi * fc * ts
	return k / (k + 1)
}

// EMA is an exponential moving average (single-pole low-pass).
type EMA struct {
	alpha float64
	value float64
}

// NewEMA creates an EMA with coefficient alpha in (0, 1]. The state starts
// at zero.
func NewEMA(alpha float64) (*EMA, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("ema alpha must be in (0, 1]: %f", alpha)
	}
	return &EMA{alpha: alpha}, nil
}

// Update feeds one sample and returns the smoothed value.
func (e *EMA) Update(sample float64) float64 {
	e.value = e.alpha*sample + (1-e.alpha)*e.value
	return e.value
}

// Value returns the current smoothed value.
func (e *EMA) Value() float64 { return e.value }

// Alpha returns the smoothing coefficient.
func (e *EMA) Alpha() float64 { return e.alpha }

// Reset returns the state to zero.
func (e *EMA) Reset() { e.value = 0 }
