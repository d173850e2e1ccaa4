package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-noisegate/stats/level"
)

const streamChunk = 512

type processCmd struct {
	Input    string `arg:"" type:"existingfile" help:"Input WAV file."`
	Output   string `arg:"" help:"Output WAV file."`
	Detector string `type:"existingfile" help:"Sidechain WAV whose left channel drives the detector (default: input left channel)."`

	Gate gateFlags `embed:""`
}

// frames holds decoded audio as per-channel slices. Mono input has a nil
// right channel.
type frames struct {
	format beep.Format
	left   []float64
	right  []float64
}

// decodeScale corrects beep's signed PCM decoding, which divides by
// 2^(8p)-1 where its encoder multiplies by 2^(8p-1)-1. 8-bit PCM is
// unsigned and decodes consistently.
func decodeScale(precision int) float64 {
	if precision < 2 {
		return 1
	}
	bits := float64(8 * precision)
	return (math.Exp2(bits) - 1) / (math.Exp2(bits-1) - 1)
}

func readWAV(path string) (*frames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	fr := &frames{format: format}
	if n := stream.Len(); n > 0 {
		fr.left = make([]float64, 0, n)
		if format.NumChannels > 1 {
			fr.right = make([]float64, 0, n)
		}
	}

	scale := decodeScale(format.Precision)
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := stream.Stream(buf)
		for _, s := range buf[:n] {
			fr.left = append(fr.left, s[0]*scale)
			if format.NumChannels > 1 {
				fr.right = append(fr.right, s[1]*scale)
			}
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return fr, nil
}

func writeWAV(path string, fr *frames) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	pos := 0
	var s beep.StreamerFunc = func(samples [][2]float64) (int, bool) {
		if pos >= len(fr.left) {
			return 0, false
		}
		n := min(len(samples), len(fr.left)-pos)
		for i := range n {
			l := fr.left[pos+i]
			r := l
			if fr.right != nil {
				r = fr.right[pos+i]
			}
			samples[i] = [2]float64{l, r}
		}
		pos += n
		return n, true
	}

	if err := wav.Encode(f, s, fr.format); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return nil
}

func statsFields(prefix string, s level.Stats) logrus.Fields {
	return logrus.Fields{
		prefix + "_peak_db":  s.Peak_dB,
		prefix + "_rms_db":   s.RMS_dB,
		prefix + "_crest_db": s.CrestFactor_dB,
	}
}

func (c *processCmd) Run(rc *runContext) error {
	in, err := readWAV(c.Input)
	if err != nil {
		return err
	}
	if len(in.left) == 0 {
		return errors.New("process: input has no samples")
	}

	detector, err := c.detector(in)
	if err != nil {
		return err
	}

	sampleRate := float64(in.format.SampleRate)
	k, err := c.Gate.newKernel(sampleRate)
	if err != nil {
		return err
	}

	log := rc.log.WithFields(logrus.Fields{
		"input":       c.Input,
		"sample_rate": in.format.SampleRate,
		"channels":    in.format.NumChannels,
		"samples":     len(in.left),
		"sidechain":   c.Detector != "",
	})
	log.WithFields(c.Gate.fields()).Debug("Processing")

	before := level.NewStreamingStats()
	after := level.NewStreamingStats()
	before.Update(in.left)

	out := &frames{format: in.format, left: make([]float64, len(in.left))}
	if in.right != nil {
		out.right = make([]float64, len(in.right))
		for i, x := range in.left {
			g := k.Detect(detector[i])
			out.left[i] = x * g
			out.right[i] = in.right[i] * g
		}
	} else if err := k.ProcessSidechain(out.left, in.left, detector); err != nil {
		return err
	}
	after.Update(out.left)

	if err := writeWAV(c.Output, out); err != nil {
		return err
	}

	fields := statsFields("in", before.Result())
	for key, v := range statsFields("out", after.Result()) {
		fields[key] = v
	}
	fields["output"] = c.Output
	log.WithFields(fields).Info("Processed")

	return nil
}

// detector returns the sidechain signal for in: the left channel of the
// --detector file, or in's own left channel.
func (c *processCmd) detector(in *frames) ([]float64, error) {
	if c.Detector == "" {
		return in.left, nil
	}

	det, err := readWAV(c.Detector)
	if err != nil {
		return nil, err
	}
	if det.format.SampleRate != in.format.SampleRate {
		return nil, fmt.Errorf("detector sample rate %d does not match input %d",
			det.format.SampleRate, in.format.SampleRate)
	}
	if len(det.left) != len(in.left) {
		return nil, fmt.Errorf("detector length %d does not match input %d", len(det.left), len(in.left))
	}

	return det.left, nil
}
