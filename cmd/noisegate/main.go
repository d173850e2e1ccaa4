// Command noisegate drives the noise gate core from the command line.
//
// Usage:
//
//	noisegate [--log-level=LEVEL] <command> [flags]
//
// Commands:
//
//	scenario   run a silence/burst/silence test signal and print a trace
//	process    gate a WAV file, using its left channel as the detector
//	curve      print the expander bounds and steady-state gain over a sweep
//	response   print the band-limiting filter response at octave points
//
// Examples:
//
//	noisegate scenario --every-ms=5
//	noisegate process --threshold=-40 in.wav out.wav
//	noisegate curve --from=-120 --to=0 --step=10
//	noisegate response --order=4 --cutoff=1000
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string           `default:"info" enum:"trace,debug,info,warn,error" help:"Log level (${enum})."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Scenario scenarioCmd `cmd:"" help:"Run the burst scenario and print an envelope/gain trace."`
	Process  processCmd  `cmd:"" help:"Gate a WAV file."`
	Curve    curveCmd    `cmd:"" help:"Print expander bounds and steady-state gain over an input sweep."`
	Response responseCmd `cmd:"" help:"Print the band-limiting filter response."`
}

// runContext is bound into every command's Run method.
type runContext struct {
	out io.Writer
	log *logrus.Entry
}

func newLogger(level string, w io.Writer) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	return logger.WithField("app", "noisegate"), nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("noisegate"),
		kong.Description("Noise gate envelope follower and expander driver"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	log, err := newLogger(cli.LogLevel, os.Stderr)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&runContext{out: os.Stdout, log: log})
	ctx.FatalIfErrorf(err)
}
