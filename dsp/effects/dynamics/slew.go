package dynamics

import "fmt"

const maxSlewMs = 1000.0

// SlewLimiter bounds how fast a dB-domain value may change per sample.
// A direction with slew 0 is unlimited.
type SlewLimiter struct {
	sampleRate float64
	up         float64
	down       float64
	output     float64
}

// NewSlewLimiter creates an unlimited slew limiter for sampleRate.
func NewSlewLimiter(sampleRate float64) (*SlewLimiter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("slew limiter %w", err)
	}

	return &SlewLimiter{sampleRate: sampleRate}, nil
}

// SetDB60 sets rise and fall rates to 60 dB over upMs and downMs. A time of
// 0 disables limiting in that direction.
func (s *SlewLimiter) SetDB60(upMs, downMs float64) error {
	if err := validateRange("slew up time", upMs, 0, maxSlewMs); err != nil {
		return err
	}

	if err := validateRange("slew down time", downMs, 0, maxSlewMs); err != nil {
		return err
	}

	s.up = s.perSample(upMs)
	s.down = s.perSample(downMs)

	return nil
}

func (s *SlewLimiter) perSample(ms float64) float64 {
	if ms == 0 {
		return 0
	}

	return 60 / (ms / 1000 * s.sampleRate)
}

// Process moves the output toward v by at most the configured slew.
func (s *SlewLimiter) Process(v float64) float64 {
	switch {
	case v > s.output:
		if s.up > 0 && v > s.output+s.up {
			s.output += s.up
		} else {
			s.output = v
		}
	default:
		if s.down > 0 && v < s.output-s.down {
			s.output -= s.down
		} else {
			s.output = v
		}
	}

	return s.output
}

// Reset sets the output to v.
func (s *SlewLimiter) Reset(v float64) { s.output = v }

// Output returns the last output.
func (s *SlewLimiter) Output() float64 { return s.output }

// Rates returns the per-sample rise and fall limits in dB.
func (s *SlewLimiter) Rates() (up, down float64) { return s.up, s.down }
