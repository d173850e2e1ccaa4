// Package biquad provides the second-order IIR runtime used for
// band-limiting detector signals.
//
// A [Section] runs Direct Form II Transposed processing for one set of
// [Coefficients]. A [Chain] cascades sections for higher orders. Coefficient
// design lives in dsp/filter/butterworth.
package biquad
