// Package butterworth designs Butterworth low-pass and high-pass cascades of
// orders 1 through 6 and wraps them in a stateful single-channel [Filter].
//
// Even orders are built from order/2 RBJ sections with Butterworth pole Q
// values. Odd orders append a bilinear first-order section. The response at
// the cutoff is -3.01 dB for every order.
package butterworth
