package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-noisegate/dsp/filter/butterworth"
	"github.com/cwbudde/algo-noisegate/measure/response"
)

const (
	firstOctaveHz = 31.25
	halfPowerDB   = 3.0103
)

type responseCmd struct {
	SampleRate float64 `default:"48000" help:"Sample rate in Hz."`
	Kind       string  `default:"lowpass" enum:"lowpass,highpass" help:"Filter kind (${enum})."`
	Order      int     `default:"2" help:"Filter order (1-6)."`
	Cutoff     float64 `default:"1800" help:"Cutoff frequency in Hz."`
	FFTSize    int     `name:"fft-size" default:"8192" help:"FFT size for the measured response."`
}

func (c *responseCmd) filter() (*butterworth.Filter, error) {
	f, err := butterworth.NewFilter(c.SampleRate)
	if err != nil {
		return nil, err
	}

	if c.Kind == "highpass" {
		f.SetKind(butterworth.Highpass)
	}
	f.SetOrder(c.Order)
	f.SetCutoff(c.Cutoff)
	if err := f.Update(); err != nil {
		return nil, err
	}

	return f, nil
}

func (c *responseCmd) Run(rc *runContext) error {
	f, err := c.filter()
	if err != nil {
		return err
	}

	measured, err := response.Measure(f, c.SampleRate, c.FFTSize)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "freq (Hz)\tanalytic (dB)\tmeasured (dB)\t")
	for hz := firstOctaveHz; hz < c.SampleRate/2; hz *= 2 {
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.2f\t\n", hz, f.MagnitudeDB(hz), measured.At(hz))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fields := logrus.Fields{
		"kind":      f.Kind().String(),
		"order":     f.Order(),
		"cutoff_hz": f.Cutoff(),
	}
	if f.Kind() == butterworth.Lowpass {
		hz, err := measured.CutoffHz(halfPowerDB)
		switch {
		case errors.Is(err, response.ErrNoCrossing):
			fields["measured_cutoff_hz"] = "none"
		case err != nil:
			return err
		default:
			fields["measured_cutoff_hz"] = hz
		}
	}
	rc.log.WithFields(fields).Info("Response complete")

	return nil
}
