package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-noisegate/dsp/core"
	"github.com/cwbudde/algo-noisegate/dsp/effects/dynamics"
)

// gateFlags are the kernel parameters shared by scenario and process.
type gateFlags struct {
	Sensitivity float64 `default:"0" help:"Detector gain in dB."`
	Threshold   float64 `default:"-20" help:"Gate threshold in dB."`
	Reduction   float64 `default:"-150" help:"Maximum attenuation in dB."`
	Slope       float64 `default:"3" help:"Expansion slope."`
	Release     float64 `default:"100" help:"Follower release in ms."`
	SlewUp      float64 `default:"0" help:"Gain rise time for 60 dB in ms, 0 for unlimited."`
	SlewDown    float64 `default:"0" help:"Gain fall time for 60 dB in ms, 0 for unlimited."`
	BlockSize   int     `default:"1024" help:"Processing block size in samples."`
}

func (g gateFlags) newKernel(sampleRate float64) (*dynamics.Kernel, error) {
	k, err := dynamics.NewKernel(core.ApplyProcessorOptions(
		core.WithSampleRate(sampleRate),
		core.WithBlockSize(g.BlockSize),
	))
	if err != nil {
		return nil, err
	}

	setters := []struct {
		name string
		set  func() error
	}{
		{"sensitivity", func() error { return k.SetSensitivity(g.Sensitivity) }},
		{"threshold", func() error { return k.SetThreshold(g.Threshold) }},
		{"reduction", func() error { return k.SetReduction(g.Reduction) }},
		{"slope", func() error { return k.SetSlope(g.Slope) }},
		{"release", func() error { return k.SetRelease(g.Release) }},
		{"gain slew", func() error { return k.SetGainSlew(g.SlewUp, g.SlewDown) }},
	}
	for _, s := range setters {
		if err := s.set(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	return k, nil
}

func (g gateFlags) fields() logrus.Fields {
	return logrus.Fields{
		"sensitivity_db": g.Sensitivity,
		"threshold_db":   g.Threshold,
		"reduction_db":   g.Reduction,
		"slope":          g.Slope,
		"release_ms":     g.Release,
	}
}
