package dynamics

// SoftKnee maps level x (dB) through a compression curve with a linear knee
// of half-width knee around threshold. Below threshold-knee the curve is
// unity; above threshold+knee it follows threshold + (x-threshold)/ratio.
//
// With expand set the curve is scaled by ratio and shifted so the segment
// above the knee has unity slope and the threshold maps to itself, turning
// the compressor into its expansion dual. Both knee edges stay continuous.
func SoftKnee(x, threshold, ratio, knee float64, expand bool) float64 {
	kneeLow := threshold - knee
	kneeHigh := threshold + knee

	var out float64

	switch {
	case x <= kneeLow:
		out = x
	case x >= kneeHigh:
		out = threshold + (x-threshold)/ratio
	default:
		// Blend from the unity line at kneeLow to the ratio line at kneeHigh.
		pos := (x - kneeLow) / (kneeHigh - kneeLow)
		xa := kneeLow + knee*pos
		yb := threshold + knee*pos/ratio
		out = xa + (yb-xa)*pos
	}

	if expand {
		out = out*ratio - (threshold*ratio - threshold)
	}

	return out
}
