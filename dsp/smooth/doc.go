// Package smooth provides the small per-sample smoothers used by envelope
// detection:
//   - SMA: fixed-window moving average over a circular buffer, with a
//     per-sample dB trend estimate across the window.
//   - EMA: single-pole low-pass smoother.
//   - MovementLatch: hysteretic up/down trend classifier.
//
// All types allocate only at construction and run in O(1) per sample.
package smooth
