// Package response measures the magnitude response of per-sample processors
// by driving a unit impulse through them and transforming the result.
package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-noisegate/dsp/core"
)

const minFFTSize = 16

// SampleProcessor is the per-sample surface shared by the filters in this
// module.
type SampleProcessor interface {
	ProcessSample(x float64) float64
}

type resetter interface {
	Reset()
}

// ErrNoCrossing is returned when the response never falls by the requested
// amount.
var ErrNoCrossing = errors.New("response: no crossing found")

// Response holds a measured magnitude response from DC to Nyquist.
type Response struct {
	SampleRate  float64
	FFTSize     int
	Frequencies []float64
	MagnitudeDB []float64
}

// Measure resets p if it supports Reset, feeds it an fftSize-long unit
// impulse and returns the magnitude of the captured impulse response.
// fftSize must be a power of two >= 16.
func Measure(p SampleProcessor, sampleRate float64, fftSize int) (Response, error) {
	if p == nil {
		return Response{}, errors.New("response: processor must not be nil")
	}
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Response{}, fmt.Errorf("response sample rate must be positive and finite: %f", sampleRate)
	}
	if fftSize < minFFTSize || fftSize&(fftSize-1) != 0 {
		return Response{}, fmt.Errorf("response fft size must be a power of two >= %d: %d", minFFTSize, fftSize)
	}

	if r, ok := p.(resetter); ok {
		r.Reset()
	}

	in := make([]complex128, fftSize)
	for i := range in {
		x := 0.0
		if i == 0 {
			x = 1
		}
		in[i] = complex(p.ProcessSample(x), 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Response{}, fmt.Errorf("response fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Response{}, fmt.Errorf("response fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	res := Response{
		SampleRate:  sampleRate,
		FFTSize:     fftSize,
		Frequencies: make([]float64, bins),
		MagnitudeDB: make([]float64, bins),
	}
	binHz := sampleRate / float64(fftSize)
	for i, pw := range power {
		res.Frequencies[i] = float64(i) * binHz
		res.MagnitudeDB[i] = powerToDB(pw)
	}

	return res, nil
}

func powerToDB(p float64) float64 {
	if !(p > 0) {
		return core.FloorDB
	}
	return math.Max(10*math.Log10(p), core.FloorDB)
}

// At returns the magnitude at hz, interpolated linearly in dB between bins
// and clamped to the measured range.
func (r Response) At(hz float64) float64 {
	n := len(r.MagnitudeDB)
	if n == 0 {
		return core.FloorDB
	}

	pos := hz / (r.SampleRate / float64(r.FFTSize))
	switch {
	case pos <= 0:
		return r.MagnitudeDB[0]
	case pos >= float64(n-1):
		return r.MagnitudeDB[n-1]
	}

	i := int(pos)
	frac := pos - float64(i)
	return r.MagnitudeDB[i] + frac*(r.MagnitudeDB[i+1]-r.MagnitudeDB[i])
}

// CutoffHz returns the first frequency above DC where the response has
// dropped dropDB below its DC level, interpolated between bins.
func (r Response) CutoffHz(dropDB float64) (float64, error) {
	if len(r.MagnitudeDB) < 2 {
		return 0, ErrNoCrossing
	}

	target := r.MagnitudeDB[0] - dropDB
	for i := 1; i < len(r.MagnitudeDB); i++ {
		a, b := r.MagnitudeDB[i-1], r.MagnitudeDB[i]
		if b > target {
			continue
		}
		frac := 0.0
		if a != b {
			frac = (a - target) / (a - b)
		}
		return r.Frequencies[i-1] + frac*(r.Frequencies[i]-r.Frequencies[i-1]), nil
	}

	return 0, fmt.Errorf("%w: %.2f dB below DC", ErrNoCrossing, dropDB)
}
