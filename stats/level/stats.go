// Package level computes peak and RMS level statistics for gate input and
// output signals. Decibel fields use the module-wide -150 dB floor.
package level

import (
	"math"

	"github.com/cwbudde/algo-noisegate/dsp/core"
)

// Stats holds level statistics of a signal.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	Peak_dB        float64
	PeakPos        int
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	Energy         float64 // sum of squares
	ZeroCrossings  int
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:  core.FloorDB,
		Peak_dB: core.FloorDB,
	}
}

// Calculate computes level statistics in a single pass.
func Calculate(signal []float64) Stats {
	s := NewStreamingStats()
	s.Update(signal)
	return s.Result()
}

// StreamingStats accumulates level statistics across blocks. Results match
// [Calculate] on the concatenated input.
type StreamingStats struct {
	n             int
	mean          float64
	sumSq         float64
	peak          float64
	peakPos       int
	zeroCrossings int
	lastSample    float64
}

// NewStreamingStats creates an empty accumulator.
func NewStreamingStats() *StreamingStats {
	return &StreamingStats{}
}

// Update adds a block of samples.
func (s *StreamingStats) Update(samples []float64) {
	for _, x := range samples {
		s.n++
		s.mean += (x - s.mean) / float64(s.n)
		s.sumSq += x * x

		if a := math.Abs(x); a > s.peak {
			s.peak = a
			s.peakPos = s.n - 1
		}

		if s.n > 1 && s.lastSample*x < 0 {
			s.zeroCrossings++
		}

		s.lastSample = x
	}
}

// Result returns the statistics of everything seen so far.
func (s *StreamingStats) Result() Stats {
	if s.n == 0 {
		return emptyStats()
	}

	rms := math.Sqrt(s.sumSq / float64(s.n))

	var crest, crestdB float64
	if rms > 0 {
		crest = s.peak / rms
		crestdB = core.GainToDB(crest)
	}

	return Stats{
		Length:         s.n,
		DC:             s.mean,
		RMS:            rms,
		RMS_dB:         core.GainToDB(rms),
		Peak:           s.peak,
		Peak_dB:        core.GainToDB(s.peak),
		PeakPos:        s.peakPos,
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		Energy:         s.sumSq,
		ZeroCrossings:  s.zeroCrossings,
	}
}

// Len returns the number of samples seen.
func (s *StreamingStats) Len() int { return s.n }

// Reset clears the accumulator.
func (s *StreamingStats) Reset() {
	*s = StreamingStats{}
}
