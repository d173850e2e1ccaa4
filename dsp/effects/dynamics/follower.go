package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-noisegate/dsp/core"
	"github.com/cwbudde/algo-noisegate/dsp/filter/butterworth"
	"github.com/cwbudde/algo-noisegate/dsp/smooth"
)

const (
	defaultInputFilterOrder    = 2
	defaultInputFilterCutoffHz = 1800.0

	emaCutoffHz        = 200.0
	smaPeriodSeconds   = 0.01
	triggerTimeoutSecs = 0.01
	cascadeCutoffHz    = 200.0
	slowDecayMs        = 3000.0
	decayFudge         = 1.2
	latchAlpha         = 0.005
	latchThreshold     = 0.2

	cascadeStages = 4
)

type followerConfig struct {
	filterOrder    int
	filterCutoffHz float64
}

// FollowerOption configures a Follower.
type FollowerOption func(*followerConfig)

// WithInputFilter sets the order (1..6) and cutoff of the Butterworth
// low-pass that band-limits the rectified input. Default is order 2 at
// 1800 Hz.
func WithInputFilter(order int, cutoffHz float64) FollowerOption {
	return func(cfg *followerConfig) {
		cfg.filterOrder = order
		cfg.filterCutoffHz = cutoffHz
	}
}

// Follower converts audio into a smooth linear loudness envelope.
//
// Per sample the input is rectified, band-limited and fed to an EMA and an
// SMA. A movement latch on the SMA's dB slope picks the faster of the two
// when rising and the lower when falling. The fused value drives a peak hold
// that decays with the SMA slope while re-triggered and with the release rate
// once the trigger times out. The hold is smoothed by four one-pole stages.
type Follower struct {
	sampleRate float64
	releaseMs  float64

	filter *butterworth.Filter
	sma    *smooth.SMA
	ema    *smooth.EMA
	latch  *smooth.MovementLatch

	slowDecay      float64
	fastDecay      float64
	cascadeAlpha   float64
	timeoutSamples int

	hold    float64
	trigger int
	trend   int
	stages  [cascadeStages]float64
}

// NewFollower creates an envelope follower for sampleRate with a release time
// of releaseMs for the 60 dB fall after the hold times out.
func NewFollower(sampleRate, releaseMs float64, opts ...FollowerOption) (*Follower, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("follower %w", err)
	}

	cfg := followerConfig{
		filterOrder:    defaultInputFilterOrder,
		filterCutoffHz: defaultInputFilterCutoffHz,
	}
	for _, o := range opts {
		o(&cfg)
	}

	filter, err := butterworth.NewFilter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("follower input filter: %w", err)
	}

	filter.SetOrder(cfg.filterOrder)
	filter.SetCutoff(cfg.filterCutoffHz)

	if err := filter.Update(); err != nil {
		return nil, fmt.Errorf("follower input filter: %w", err)
	}

	ts := 1 / sampleRate

	sma, err := smooth.NewSMA(int(math.Round(sampleRate * smaPeriodSeconds)))
	if err != nil {
		return nil, fmt.Errorf("follower sma: %w", err)
	}

	ema, err := smooth.NewEMA(smooth.LowpassAlpha(emaCutoffHz, ts))
	if err != nil {
		return nil, fmt.Errorf("follower ema: %w", err)
	}

	latch, err := smooth.NewMovementLatch(latchAlpha, latchThreshold)
	if err != nil {
		return nil, fmt.Errorf("follower latch: %w", err)
	}

	f := &Follower{
		sampleRate:     sampleRate,
		filter:         filter,
		sma:            sma,
		ema:            ema,
		latch:          latch,
		slowDecay:      decayForMs(slowDecayMs, sampleRate),
		cascadeAlpha:   smooth.LowpassAlpha(cascadeCutoffHz, ts),
		timeoutSamples: int(math.Round(sampleRate * triggerTimeoutSecs)),
	}

	if err := f.SetRelease(releaseMs); err != nil {
		return nil, err
	}

	return f, nil
}

// decayForMs returns the per-sample gain that falls 60 dB in ms.
func decayForMs(ms, sampleRate float64) float64 {
	return core.DBToGain(-60 / (ms / 1000 * sampleRate))
}

// SetRelease sets the 60 dB release time in ms. Only the fast decay rate is
// recomputed; running state is kept.
func (f *Follower) SetRelease(ms float64) error {
	if ms <= 0 || !isFinite(ms) {
		return fmt.Errorf("follower release must be positive and finite: %f", ms)
	}

	f.releaseMs = ms
	f.fastDecay = decayForMs(ms, f.sampleRate)

	return nil
}

// ProcessEnvelope advances the follower by one input sample.
// Non-finite samples are treated as silence.
func (f *Follower) ProcessEnvelope(sample float64) {
	if !isFinite(sample) {
		sample = 0
	}

	// Filter resonance can ring below zero.
	v := math.Abs(f.filter.ProcessSample(math.Abs(sample)))

	emaValue := f.ema.Update(v)
	smaValue := f.sma.Update(v)
	rate := f.sma.DBDecayPerSample()

	f.trend = f.latch.Update(rate > 0)

	var fused float64
	if f.trend > 0 {
		fused = math.Max(emaValue, smaValue)
	} else {
		fused = math.Min(emaValue, smaValue)
	}

	if fused > f.hold {
		f.hold = fused
		f.trigger = 0
	} else {
		f.trigger++
	}

	var decay float64
	if f.trigger > f.timeoutSamples {
		decay = f.fastDecay
	} else {
		decay = core.DBToGain(rate * decayFudge)
	}

	f.hold *= core.Clamp(decay, f.fastDecay, f.slowDecay)

	x := f.hold
	for i := range f.stages {
		f.stages[i] = core.FlushDenormals(f.stages[i] + f.cascadeAlpha*(x-f.stages[i]))
		x = f.stages[i]
	}
}

// Output returns the current envelope as a linear value >= 0.
func (f *Follower) Output() float64 { return f.stages[cascadeStages-1] }

// Reset clears all dynamic state. Configuration is kept.
func (f *Follower) Reset() {
	f.filter.Reset()
	f.sma.Reset()
	f.ema.Reset()
	f.latch.Reset()
	f.hold = 0
	f.trigger = 0
	f.trend = 0
	f.stages = [cascadeStages]float64{}
}

// Release returns the 60 dB release time in ms.
func (f *Follower) Release() float64 { return f.releaseMs }

// SampleRate returns the sample rate in Hz.
func (f *Follower) SampleRate() float64 { return f.sampleRate }

// Hold returns the un-smoothed held peak.
func (f *Follower) Hold() float64 { return f.hold }

// Trend returns the movement latch state: +1 rising, -1 falling, 0 unknown.
func (f *Follower) Trend() int { return f.trend }

// FastDecay returns the per-sample decay applied after the hold times out.
func (f *Follower) FastDecay() float64 { return f.fastDecay }

// SlowDecay returns the slowest per-sample decay the hold may use.
func (f *Follower) SlowDecay() float64 { return f.slowDecay }
