package smooth

import "fmt"

// MovementLatch classifies whether a signal trends up or down while
// resisting rapid flips. The boolean trend is mapped to +1/-1 and smoothed by
// a one-pole filter; the reported state only changes once the smoothed value
// crosses +latch or -latch.
type MovementLatch struct {
	alpha float64
	latch float64
	value float64
	state int
}

// NewMovementLatch creates a latch with smoothing coefficient alpha in (0, 1]
// and latch threshold in [0, 1).
func NewMovementLatch(alpha, latch float64) (*MovementLatch, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("latch alpha must be in (0, 1]: %f", alpha)
	}
	if !(latch >= 0 && latch < 1) {
		return nil, fmt.Errorf("latch threshold must be in [0, 1): %f", latch)
	}
	return &MovementLatch{alpha: alpha, latch: latch}, nil
}

// Update feeds one trend observation and returns the reported state:
// +1 (up), -1 (down) or 0 (not yet determined).
func (m *MovementLatch) Update(trendUp bool) int {
	sample := -1.0
	if trendUp {
		sample = 1.0
	}
	m.value = m.alpha*sample + (1-m.alpha)*m.value

	switch {
	case m.value > m.latch:
		m.state = 1
	case m.value < -m.latch:
		m.state = -1
	}

	return m.state
}

// State returns the last reported state.
func (m *MovementLatch) State() int { return m.state }

// Value returns the smoothed accumulator.
func (m *MovementLatch) Value() float64 { return m.value }

// Reset returns the latch to the undetermined state.
func (m *MovementLatch) Reset() {
	m.value = 0
	m.state = 0
}
