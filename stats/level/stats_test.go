package level

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-noisegate/internal/testutil"
)

const tolerance = 1e-10

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	if s.Length != 0 || s.RMS_dB != -150 || s.Peak_dB != -150 {
		t.Fatalf("empty stats = %+v", s)
	}
}

func TestCalculateSilenceUsesFloor(t *testing.T) {
	s := Calculate(make([]float64, 64))
	if s.RMS_dB != -150 || s.Peak_dB != -150 || s.CrestFactor != 0 {
		t.Fatalf("silence stats = %+v", s)
	}
}

func TestCalculateKnownSignals(t *testing.T) {
	tests := []struct {
		name      string
		signal    []float64
		wantRMS   float64
		wantPeak  float64
		wantCrest float64
		wantZC    int
	}{
		{"dc", testutil.DC(0.5, 100), 0.5, 0.5, 1, 0},
		{"square", testutil.SquareBurst(0, 96, 0, 24, 1), 1, 1, 1, 3},
		{"sine", testutil.DeterministicSine(1000, 48000, 1, 4800), 1 / math.Sqrt2, 1, math.Sqrt2, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Calculate(tc.signal)

			if math.Abs(s.RMS-tc.wantRMS) > 1e-9 {
				t.Errorf("RMS = %v, want %v", s.RMS, tc.wantRMS)
			}
			if math.Abs(s.Peak-tc.wantPeak) > 1e-9 {
				t.Errorf("Peak = %v, want %v", s.Peak, tc.wantPeak)
			}
			if math.Abs(s.CrestFactor-tc.wantCrest) > 1e-6 {
				t.Errorf("CrestFactor = %v, want %v", s.CrestFactor, tc.wantCrest)
			}
			if tc.wantZC >= 0 && s.ZeroCrossings != tc.wantZC {
				t.Errorf("ZeroCrossings = %d, want %d", s.ZeroCrossings, tc.wantZC)
			}
		})
	}
}

func TestCalculateDecibels(t *testing.T) {
	s := Calculate([]float64{0.1, -0.05, 0.02})

	if math.Abs(s.Peak_dB-(-20)) > tolerance {
		t.Fatalf("Peak_dB = %v, want -20", s.Peak_dB)
	}
	if s.PeakPos != 0 {
		t.Fatalf("PeakPos = %d, want 0", s.PeakPos)
	}
	if want := 20 * math.Log10(s.RMS); math.Abs(s.RMS_dB-want) > tolerance {
		t.Fatalf("RMS_dB = %v, want %v", s.RMS_dB, want)
	}
}

func TestStreamingMatchesCalculate(t *testing.T) {
	sig := testutil.DeterministicNoise(9, 0.7, 1000)
	want := Calculate(sig)

	s := NewStreamingStats()
	for off := 0; off < len(sig); off += 137 {
		s.Update(sig[off:min(off+137, len(sig))])
	}

	if got := s.Result(); got != want {
		t.Fatalf("streaming = %+v\nwant %+v", got, want)
	}

	if s.Len() != 1000 {
		t.Fatalf("Len = %d", s.Len())
	}

	s.Reset()
	if s.Result() != Calculate(nil) {
		t.Fatal("Reset did not clear the accumulator")
	}
}
