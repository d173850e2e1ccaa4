package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-noisegate/dsp/core"
	"github.com/cwbudde/algo-noisegate/dsp/signal"
)

const (
	openThresholdDB  = -1.0
	closeThresholdDB = -60.0
)

type scenarioCmd struct {
	SampleRate float64 `default:"48000" help:"Sample rate in Hz."`
	Freq       float64 `default:"1000" help:"Burst square wave frequency in Hz."`
	Amplitude  float64 `default:"1" help:"Burst amplitude (linear)."`
	PreMs      float64 `default:"100" help:"Leading silence in ms."`
	OnMs       float64 `default:"100" help:"Burst length in ms."`
	PostMs     float64 `default:"300" help:"Trailing silence in ms."`
	EveryMs    float64 `default:"10" help:"Trace interval in ms."`

	Gate gateFlags `embed:""`
}

// scenarioResult summarises a scenario run. Open and close are sample
// indices, -1 when the gate never crossed.
type scenarioResult struct {
	onset, end  int
	open, close int
	peakEnvDB   float64
}

func (c *scenarioCmd) Run(rc *runContext) error {
	if !(c.EveryMs > 0) {
		return fmt.Errorf("trace interval must be > 0: %f", c.EveryMs)
	}

	gen := signal.NewGenerator(core.WithSampleRate(c.SampleRate))
	pre, err := signal.Silence(gen.Samples(c.PreMs))
	if err != nil {
		return err
	}
	burst, err := gen.Square(c.Freq, c.Amplitude, gen.Samples(c.OnMs))
	if err != nil {
		return err
	}
	post, err := signal.Silence(gen.Samples(c.PostMs))
	if err != nil {
		return err
	}
	input := signal.Concat(pre, burst, post)

	k, err := c.Gate.newKernel(c.SampleRate)
	if err != nil {
		return err
	}

	res := scenarioResult{
		onset:     len(pre),
		end:       len(pre) + len(burst),
		open:      -1,
		close:     -1,
		peakEnvDB: core.FloorDB,
	}

	every := max(1, gen.Samples(c.EveryMs))
	tw := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "t (ms)\tpeak\tenvelope (dB)\tgain (dB)\toutput\t")

	peak, outPeak := 0.0, 0.0
	for i, x := range input {
		y := x * k.Detect(x)
		peak = math.Max(peak, math.Abs(x))
		outPeak = math.Max(outPeak, math.Abs(y))

		env := k.EnvelopeDB()
		res.peakEnvDB = math.Max(res.peakEnvDB, env)
		if res.open < 0 && i >= res.onset && k.GainDB() > openThresholdDB {
			res.open = i
		}
		if res.close < 0 && i >= res.end && k.GainDB() < closeThresholdDB {
			res.close = i
		}

		if (i+1)%every == 0 {
			fmt.Fprintf(tw, "%.1f\t%.3f\t%.2f\t%.2f\t%.3f\t\n",
				float64(i+1)*1000/c.SampleRate, peak, env, k.GainDB(), outPeak)
			peak, outPeak = 0, 0
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fields := c.Gate.fields()
	fields["open_ms"] = latencyMs(res.open, res.onset, c.SampleRate)
	fields["close_ms"] = latencyMs(res.close, res.end, c.SampleRate)
	fields["peak_envelope_db"] = res.peakEnvDB

	if res.open < 0 {
		rc.log.WithFields(fields).Warn("Gate never opened")
		return nil
	}
	rc.log.WithFields(fields).Info("Scenario complete")

	return nil
}

func latencyMs(idx, from int, sampleRate float64) any {
	if idx < 0 {
		return "never"
	}
	return float64(idx-from) * 1000 / sampleRate
}
