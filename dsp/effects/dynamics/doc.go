// Package dynamics provides the analysis and control core of a noise gate.
//
// Included processors:
//   - Follower: envelope follower fusing a fast EMA and a 10 ms SMA under a
//     hysteretic trend latch, with adaptive peak hold and a four-stage
//     smoothing cascade.
//   - Expander: bounded integrator that keeps its output level between two
//     soft-knee expansion curves and reports the resulting gain in dB.
//   - SlewLimiter: dB-domain rate limiter for gain changes.
//   - Kernel: one gate channel wiring Follower, Expander and gain
//     application together, with block and sidechain processing.
//
// All processors run one sample at a time and do not allocate after
// construction.
package dynamics
