package dynamics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-noisegate/dsp/core"
)

const (
	defaultKernelSensitivityDB = 0.0
	defaultKernelThresholdDB   = -20.0
	defaultKernelReductionDB   = -150.0
	defaultKernelSlope         = 3.0
	defaultKernelReleaseMs     = 100.0

	minKernelSensitivityDB = -20.0
	maxKernelSensitivityDB = 20.0
	minKernelThresholdDB   = -80.0
	maxKernelThresholdDB   = 0.0
	minKernelReductionDB   = -150.0
	maxKernelReductionDB   = 0.0
	minKernelSlope         = 1.0
	maxKernelSlope         = 51.0
	minKernelReleaseMs     = 10.0
	maxKernelReleaseMs     = 1000.0
)

// ErrLengthMismatch is returned when sidechain buffers differ in length.
var ErrLengthMismatch = errors.New("dynamics: buffer length mismatch")

// Kernel is one noise gate channel: a Follower feeding an Expander whose gain
// is optionally slew limited and applied to the program signal.
type Kernel struct {
	cfg core.ProcessorConfig

	follower *Follower
	expander *Expander
	slew     *SlewLimiter

	sensitivityDB  float64
	sensitivityLin float64
	thresholdDB    float64
	reductionDB    float64
	slope          float64
	slewUpMs       float64
	slewDownMs     float64

	gainDB float64
	gains  []float64
}

// NewKernel creates a gate channel for cfg with sensitivity 0 dB, threshold
// -20 dB, reduction -150 dB, slope 3, release 100 ms and no gain slew.
func NewKernel(cfg core.ProcessorConfig) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kernel config: %w", err)
	}

	follower, err := NewFollower(cfg.SampleRate, defaultKernelReleaseMs)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	slew, err := NewSlewLimiter(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	k := &Kernel{
		cfg:            cfg,
		follower:       follower,
		expander:       NewExpander(),
		slew:           slew,
		sensitivityDB:  defaultKernelSensitivityDB,
		sensitivityLin: core.DBToGain(defaultKernelSensitivityDB),
		thresholdDB:    defaultKernelThresholdDB,
		reductionDB:    defaultKernelReductionDB,
		slope:          defaultKernelSlope,
		gains:          make([]float64, cfg.BlockSize),
	}

	if err := k.updateExpander(); err != nil {
		return nil, err
	}

	return k, nil
}

// SetSensitivity sets the detector gain in dB.
func (k *Kernel) SetSensitivity(dB float64) error {
	if err := validateRange("kernel sensitivity", dB, minKernelSensitivityDB, maxKernelSensitivityDB); err != nil {
		return err
	}

	k.sensitivityDB = dB
	k.sensitivityLin = core.DBToGain(dB)

	return nil
}

// SetThreshold sets the gate threshold in dB.
func (k *Kernel) SetThreshold(dB float64) error {
	if err := validateRange("kernel threshold", dB, minKernelThresholdDB, maxKernelThresholdDB); err != nil {
		return err
	}

	k.thresholdDB = dB

	return k.updateExpander()
}

// SetReduction sets the maximum attenuation in dB.
func (k *Kernel) SetReduction(dB float64) error {
	if err := validateRange("kernel reduction", dB, minKernelReductionDB, maxKernelReductionDB); err != nil {
		return err
	}

	k.reductionDB = dB

	return k.updateExpander()
}

// SetSlope sets the expansion slope of the upper curve.
func (k *Kernel) SetSlope(slope float64) error {
	if err := validateRange("kernel slope", slope, minKernelSlope, maxKernelSlope); err != nil {
		return err
	}

	k.slope = slope

	return k.updateExpander()
}

// SetRelease sets the follower release time in ms.
func (k *Kernel) SetRelease(ms float64) error {
	if err := validateRange("kernel release", ms, minKernelReleaseMs, maxKernelReleaseMs); err != nil {
		return err
	}

	return k.follower.SetRelease(ms)
}

// SetGainSlew limits gain rise and fall to 60 dB over upMs and downMs.
// Zero for both disables slew limiting.
func (k *Kernel) SetGainSlew(upMs, downMs float64) error {
	if err := k.slew.SetDB60(upMs, downMs); err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	k.slewUpMs = upMs
	k.slewDownMs = downMs
	k.slew.Reset(k.gainDB)

	return nil
}

func (k *Kernel) updateExpander() error {
	if err := k.expander.Update(k.thresholdDB, k.reductionDB, k.slope); err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	return nil
}

func (k *Kernel) slewEnabled() bool {
	return k.slewUpMs > 0 || k.slewDownMs > 0
}

// Detect advances the detector with one sample and returns the linear gain.
func (k *Kernel) Detect(detector float64) float64 {
	k.follower.ProcessEnvelope(detector * k.sensitivityLin)
	k.expander.Expand(core.GainToDB(k.follower.Output()))

	g := k.expander.Output()
	if k.slewEnabled() {
		g = k.slew.Process(g)
	}

	k.gainDB = g

	return core.DBToGain(g)
}

// ProcessSample gates input using detector as the sidechain sample.
func (k *Kernel) ProcessSample(input, detector float64) float64 {
	return input * k.Detect(detector)
}

// ProcessInPlace gates buf using itself as detector. Zero-alloc.
func (k *Kernel) ProcessInPlace(buf []float64) {
	for off := 0; off < len(buf); off += len(k.gains) {
		chunk := buf[off:min(off+len(k.gains), len(buf))]
		gains := k.gains[:len(chunk)]

		for i, x := range chunk {
			gains[i] = k.Detect(x)
		}

		vecmath.MulBlockInPlace(chunk, gains)
	}
}

// ProcessSidechain writes src gated by detector into dst. All three buffers
// must have the same length.
func (k *Kernel) ProcessSidechain(dst, src, detector []float64) error {
	if len(dst) != len(src) || len(src) != len(detector) {
		return fmt.Errorf("%w: dst=%d src=%d detector=%d", ErrLengthMismatch, len(dst), len(src), len(detector))
	}

	core.CopyInto(dst, src)

	for off := 0; off < len(dst); off += len(k.gains) {
		end := min(off+len(k.gains), len(dst))
		gains := k.gains[:end-off]

		for i, x := range detector[off:end] {
			gains[i] = k.Detect(x)
		}

		vecmath.MulBlockInPlace(dst[off:end], gains)
	}

	return nil
}

// Reset clears follower, expander and slew state.
func (k *Kernel) Reset() {
	k.follower.Reset()
	k.expander.Reset()
	k.gainDB = k.expander.Output()
	k.slew.Reset(k.gainDB)
}

// Envelope returns the follower envelope (linear).
func (k *Kernel) Envelope() float64 { return k.follower.Output() }

// EnvelopeDB returns the follower envelope in dB, floored at -150 dB.
func (k *Kernel) EnvelopeDB() float64 { return core.GainToDB(k.follower.Output()) }

// GainDB returns the last applied gain in dB.
func (k *Kernel) GainDB() float64 { return k.gainDB }

// SampleRate returns the sample rate in Hz.
func (k *Kernel) SampleRate() float64 { return k.cfg.SampleRate }

// Sensitivity returns the detector gain in dB.
func (k *Kernel) Sensitivity() float64 { return k.sensitivityDB }

// Threshold returns the gate threshold in dB.
func (k *Kernel) Threshold() float64 { return k.thresholdDB }

// Reduction returns the maximum attenuation in dB.
func (k *Kernel) Reduction() float64 { return k.reductionDB }

// Slope returns the expansion slope.
func (k *Kernel) Slope() float64 { return k.slope }

// Release returns the follower release time in ms.
func (k *Kernel) Release() float64 { return k.follower.Release() }

// Follower returns the detector envelope follower.
func (k *Kernel) Follower() *Follower { return k.follower }

// Expander returns the gain computer.
func (k *Kernel) Expander() *Expander { return k.expander }

// GainSlew returns the gain slew times in ms.
func (k *Kernel) GainSlew() (up, down float64) {
	return k.slewUpMs, k.slewDownMs
}
