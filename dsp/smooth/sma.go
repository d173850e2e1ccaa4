package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-noisegate/dsp/core"
)

// SMA is a simple moving average over the most recent N samples.
//
// Alongside the mean it tracks how fast the window boundary is moving in the
// log domain: the dB difference between the sample entering and the sample
// leaving the window, divided by N.
type SMA struct {
	buf  []float64
	head int
	sum  float64

	dbDecayPerSample float64
}

// NewSMA creates a moving average over n samples, with the window pre-filled
// with zeros.
func NewSMA(n int) (*SMA, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sma window must be > 0: %d", n)
	}
	return &SMA{buf: make([]float64, n)}, nil
}

// Update pushes sample into the window and returns the new mean.
func (s *SMA) Update(sample float64) float64 {
	evicted := s.buf[s.head]
	s.buf[s.head] = sample
	s.head++
	if s.head >= len(s.buf) {
		s.head = 0
	}

	s.sum += sample - evicted

	n := float64(len(s.buf))
	s.dbDecayPerSample = (core.GainToDB(sample) - core.GainToDB(evicted)) / n

	return s.sum / n
}

// DBDecayPerSample returns the dB trend computed by the last Update. Positive
// values mean the level entering the window is above the level leaving it.
func (s *SMA) DBDecayPerSample() float64 { return s.dbDecayPerSample }

// Mean returns the current window mean.
func (s *SMA) Mean() float64 { return s.sum / float64(len(s.buf)) }

// Len returns the window length in samples.
func (s *SMA) Len() int { return len(s.buf) }

// Reset zeroes the window without reallocating.
func (s *SMA) Reset() {
	core.Zero(s.buf)
	s.head = 0
	s.sum = 0
	s.dbDecayPerSample = 0
}
