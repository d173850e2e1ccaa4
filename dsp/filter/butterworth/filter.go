package butterworth

import (
	"fmt"

	"github.com/cwbudde/algo-noisegate/dsp/filter/biquad"
)

// Kind selects the filter response.
type Kind int

const (
	Lowpass Kind = iota
	Highpass
)

func (k Kind) String() string {
	switch k {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Filter is a stateful single-channel Butterworth filter. Parameter setters
// only stage values; coefficients change when Update is called.
type Filter struct {
	sampleRate float64
	kind       Kind
	order      int
	cutoffHz   float64

	chain *biquad.Chain
}

// NewFilter returns a second-order 1800 Hz low-pass filter at sampleRate.
func NewFilter(sampleRate float64) (*Filter, error) {
	f := &Filter{
		sampleRate: sampleRate,
		kind:       Lowpass,
		order:      2,
		cutoffHz:   1800,
	}

	if err := f.Update(); err != nil {
		return nil, err
	}

	return f, nil
}

// SetKind stages the response kind.
func (f *Filter) SetKind(k Kind) { f.kind = k }

// SetOrder stages the filter order.
func (f *Filter) SetOrder(order int) { f.order = order }

// SetCutoff stages the cutoff frequency in Hz.
func (f *Filter) SetCutoff(hz float64) { f.cutoffHz = hz }

// Update recomputes the coefficients from the staged parameters. On error the
// previous coefficients stay active.
func (f *Filter) Update() error {
	var (
		coeffs []biquad.Coefficients
		err    error
	)

	switch f.kind {
	case Lowpass:
		coeffs, err = LowpassSections(f.cutoffHz, f.order, f.sampleRate)
	case Highpass:
		coeffs, err = HighpassSections(f.cutoffHz, f.order, f.sampleRate)
	default:
		err = fmt.Errorf("butterworth: unknown kind %v", f.kind)
	}

	if err != nil {
		return err
	}

	if f.chain == nil {
		f.chain = biquad.NewChain(coeffs)
	} else {
		f.chain.UpdateCoefficients(coeffs, 1)
	}

	return nil
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	return f.chain.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	f.chain.ProcessBlock(buf)
}

// Reset clears the filter state.
func (f *Filter) Reset() { f.chain.Reset() }

// MagnitudeDB returns the analytic magnitude of the active coefficients.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.chain.MagnitudeDB(freqHz, f.sampleRate)
}

// Kind returns the staged response kind.
func (f *Filter) Kind() Kind { return f.kind }

// Order returns the staged order.
func (f *Filter) Order() int { return f.order }

// Cutoff returns the staged cutoff in Hz.
func (f *Filter) Cutoff() float64 { return f.cutoffHz }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }
