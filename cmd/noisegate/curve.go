package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-noisegate/dsp/effects/dynamics"
)

type curveCmd struct {
	From      float64 `default:"-120" help:"First input level in dB."`
	To        float64 `default:"0" help:"Last input level in dB."`
	Step      float64 `default:"10" help:"Input level step in dB."`
	Threshold float64 `default:"-20" help:"Expander threshold in dB."`
	Reduction float64 `default:"-100" help:"Expander reduction in dB."`
	Slope     float64 `default:"2" help:"Expander slope."`
}

// curvePoint is one row of the static curve.
type curvePoint struct {
	in, lower, upper, gain float64
}

func (c *curveCmd) points() ([]curvePoint, error) {
	if !(c.Step > 0) {
		return nil, fmt.Errorf("curve step must be > 0: %f", c.Step)
	}
	if c.To < c.From {
		return nil, fmt.Errorf("curve range is empty: %f > %f", c.From, c.To)
	}

	exp := dynamics.NewExpander()
	if err := exp.Update(c.Threshold, c.Reduction, c.Slope); err != nil {
		return nil, err
	}

	var pts []curvePoint
	for i := 0; ; i++ {
		db := c.From + float64(i)*c.Step
		if db > c.To {
			break
		}

		// A constant level settles after the second call.
		exp.Reset()
		exp.Expand(db)
		exp.Expand(db)

		lower, upper := exp.Bounds(db)
		pts = append(pts, curvePoint{in: db, lower: lower, upper: upper, gain: exp.Output()})
	}

	return pts, nil
}

func (c *curveCmd) Run(rc *runContext) error {
	pts, err := c.points()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "in (dB)\tlower (dB)\tupper (dB)\tgain (dB)\t")
	for _, p := range pts {
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\t%.2f\t\n", p.in, p.lower, p.upper, p.gain)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rc.log.WithField("points", len(pts)).Debug("Curve complete")

	return nil
}
