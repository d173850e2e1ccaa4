package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-noisegate/dsp/core"
)

const (
	defaultExpanderThresholdDB = -20.0
	defaultExpanderReductionDB = -100.0
	defaultExpanderSlope       = 2.0

	expanderKneeDB          = 4.0
	lowerCurveOffsetDB      = 6.0
	lowerCurveSlopeMultiple = 3.0
)

// Expander turns an envelope level in dB into a gain in dB.
//
// The output level follows input changes 1:1 but is pinned inside a band
// bounded by two soft-knee expansion curves: the upper curve at threshold
// with the configured slope, and the lower curve 6 dB higher with three times
// the slope. The gain is output minus input, never below the reduction floor.
type Expander struct {
	thresholdDB float64
	reductionDB float64
	upperSlope  float64
	lowerSlope  float64

	prevInDB float64
	outputDB float64
	gainDB   float64
}

// NewExpander creates an expander at threshold -20 dB, reduction -100 dB and
// slope 2.
func NewExpander() *Expander {
	e := &Expander{}
	e.set(defaultExpanderThresholdDB, defaultExpanderReductionDB, defaultExpanderSlope)
	e.Reset()

	return e
}

// Update reconfigures threshold, reduction floor and upper slope. Running
// state is kept.
func (e *Expander) Update(thresholdDB, reductionDB, slope float64) error {
	if !isFinite(thresholdDB) {
		return fmt.Errorf("expander threshold must be finite: %f", thresholdDB)
	}

	if reductionDB > 0 || !isFinite(reductionDB) {
		return fmt.Errorf("expander reduction must be finite and <= 0: %f", reductionDB)
	}

	if slope <= 0 || !isFinite(slope) {
		return fmt.Errorf("expander slope must be positive and finite: %f", slope)
	}

	e.set(thresholdDB, reductionDB, slope)

	// Keep the floor invariant when the floor is raised mid-stream.
	e.gainDB = math.Max(e.gainDB, reductionDB)

	return nil
}

func (e *Expander) set(thresholdDB, reductionDB, slope float64) {
	e.thresholdDB = thresholdDB
	e.reductionDB = reductionDB
	e.upperSlope = slope
	e.lowerSlope = slope * lowerCurveSlopeMultiple
}

// Bounds returns the lower and upper permitted output levels for input db.
func (e *Expander) Bounds(db float64) (lower, upper float64) {
	upper = SoftKnee(db, e.thresholdDB, e.upperSlope, expanderKneeDB, true)
	lower = SoftKnee(db, e.thresholdDB+lowerCurveOffsetDB, e.lowerSlope, expanderKneeDB, true)

	return lower, upper
}

// Expand advances the expander with one envelope level in dB.
func (e *Expander) Expand(db float64) {
	if !(db >= e.reductionDB) {
		db = e.reductionDB
	}

	lower, upper := e.Bounds(db)

	desired := e.outputDB + (db - e.prevInDB)
	switch {
	case desired < lower:
		desired = lower
	case desired > upper:
		desired = upper
	}

	e.outputDB = desired
	e.prevInDB = db
	e.gainDB = math.Max(e.outputDB-db, e.reductionDB)
}

// Output returns the current gain in dB.
func (e *Expander) Output() float64 { return e.gainDB }

// Level returns the integrator output level in dB.
func (e *Expander) Level() float64 { return e.outputDB }

// Reset restores the initial state: input and output at the dB floor, 0 dB
// gain.
func (e *Expander) Reset() {
	e.prevInDB = core.FloorDB
	e.outputDB = core.FloorDB
	e.gainDB = 0
}

// Threshold returns the upper curve threshold in dB.
func (e *Expander) Threshold() float64 { return e.thresholdDB }

// Reduction returns the gain floor in dB.
func (e *Expander) Reduction() float64 { return e.reductionDB }

// Slope returns the upper curve expansion slope.
func (e *Expander) Slope() float64 { return e.upperSlope }
