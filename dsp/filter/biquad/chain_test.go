package biquad

import "testing"

// twoSectionCoeffs returns two biquad sections for a 4th-order-like cascade.
func twoSectionCoeffs() []Coefficients {
	return []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1},
	}
}

func TestNewChain(t *testing.T) {
	c := NewChain(twoSectionCoeffs())
	if c.NumSections() != 2 {
		t.Fatalf("NumSections: got %d, want 2", c.NumSections())
	}

	if c.Gain() != 1 {
		t.Fatalf("default gain: got %v, want 1", c.Gain())
	}

	if c := NewChain(twoSectionCoeffs(), WithGain(0.5)); c.Gain() != 0.5 {
		t.Fatalf("gain: got %v, want 0.5", c.Gain())
	}
}

func TestChain_ProcessSample_MatchesManualCascade(t *testing.T) {
	tests := []struct {
		name string
		gain float64
	}{
		{"unity", 1},
		{"gain2", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			coeffs := twoSectionCoeffs()
			section1 := NewSection(coeffs[0])
			section2 := NewSection(coeffs[1])
			chain := NewChain(coeffs, WithGain(tc.gain))

			input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
			for i, x := range input {
				ref := section2.ProcessSample(section1.ProcessSample(x * tc.gain))

				got := chain.ProcessSample(x)
				if !almostEqual(got, ref, eps) {
					t.Errorf("sample %d: chain=%.15f, ref=%.15f", i, got, ref)
				}
			}
		})
	}
}

func TestChain_ProcessBlockMatchesSample(t *testing.T) {
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}

	ref := NewChain(twoSectionCoeffs(), WithGain(0.7))
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	c := NewChain(twoSectionCoeffs(), WithGain(0.7))
	got := append([]float64(nil), input...)
	c.ProcessBlock(got)

	for i := range got {
		if !almostEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: block=%v sample=%v", i, got[i], want[i])
		}
	}
}

func TestChain_Reset(t *testing.T) {
	c := NewChain(twoSectionCoeffs())
	first := c.ProcessSample(1)
	c.ProcessSample(0.5)

	c.Reset()

	if got := c.ProcessSample(1); got != first {
		t.Fatalf("after Reset: got %v, want %v", got, first)
	}
}

func TestChain_UpdateCoefficients(t *testing.T) {
	c := NewChain(twoSectionCoeffs())
	c.ProcessSample(1)
	before := c.Section(0).State()

	next := []Coefficients{{B0: 1}, {B0: 1}}
	c.UpdateCoefficients(next, 1)

	if c.Section(0).State() != before {
		t.Fatal("same section count should keep delay state")
	}

	if c.Section(1).Coefficients != next[1] {
		t.Fatalf("section 1 coefficients = %+v, want %+v", c.Section(1).Coefficients, next[1])
	}

	c.UpdateCoefficients([]Coefficients{{B0: 0.5}}, 2)
	if c.NumSections() != 1 || c.Gain() != 2 {
		t.Fatalf("resize: sections=%d gain=%v", c.NumSections(), c.Gain())
	}

	if c.Section(0).State() != [2]float64{} {
		t.Fatal("resized chain should start from zero state")
	}

	if got := c.ProcessSample(1); got != 1 {
		t.Fatalf("ProcessSample = %v, want 1", got)
	}
}
