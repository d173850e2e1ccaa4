package dynamics

import (
	"math"
	"testing"
)

func TestNewSlewLimiterValidation(t *testing.T) {
	for _, fs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewSlewLimiter(fs); err == nil {
			t.Fatalf("NewSlewLimiter(%v) should fail", fs)
		}
	}
}

func TestSlewLimiterSetDB60(t *testing.T) {
	s, err := NewSlewLimiter(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetDB60(10, 100); err != nil {
		t.Fatal(err)
	}

	up, down := s.Rates()
	if math.Abs(up-0.125) > 1e-15 || math.Abs(down-0.0125) > 1e-15 {
		t.Fatalf("Rates = (%v, %v), want (0.125, 0.0125)", up, down)
	}

	for _, tc := range [][2]float64{{-1, 10}, {10, 1001}, {math.NaN(), 10}, {10, math.Inf(1)}} {
		if err := s.SetDB60(tc[0], tc[1]); err == nil {
			t.Fatalf("SetDB60(%v, %v) should fail", tc[0], tc[1])
		}
	}

	if up2, down2 := s.Rates(); up2 != up || down2 != down {
		t.Fatal("failed SetDB60 changed the rates")
	}
}

func TestSlewLimiterFall(t *testing.T) {
	s, err := NewSlewLimiter(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetDB60(10, 100); err != nil {
		t.Fatal(err)
	}

	s.Reset(0)

	if got := s.Process(-60); math.Abs(got-(-0.0125)) > 1e-15 {
		t.Fatalf("first step = %v, want -0.0125", got)
	}

	for range 4798 {
		s.Process(-60)
	}

	if s.Output() <= -60 {
		t.Fatalf("reached target early: %v", s.Output())
	}

	s.Process(-60)
	s.Process(-60)

	if s.Output() != -60 {
		t.Fatalf("output after 60 dB fall time = %v, want -60", s.Output())
	}
}

func TestSlewLimiterRise(t *testing.T) {
	s, err := NewSlewLimiter(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetDB60(10, 100); err != nil {
		t.Fatal(err)
	}

	s.Reset(-60)

	steps := 0
	for s.Output() < 0 {
		s.Process(0)
		steps++

		if steps > 1000 {
			t.Fatal("rise did not complete")
		}
	}

	if steps < 480 || steps > 481 {
		t.Fatalf("rise took %d samples, want ~480", steps)
	}

	// Small moves inside the slew pass through unchanged.
	if got := s.Process(-0.01); got != -0.01 {
		t.Fatalf("small move = %v, want -0.01", got)
	}
}

func TestSlewLimiterDisabled(t *testing.T) {
	s, err := NewSlewLimiter(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetDB60(0, 0); err != nil {
		t.Fatal(err)
	}

	for _, v := range []float64{-150, 0, -3, -90} {
		if got := s.Process(v); got != v {
			t.Fatalf("Process(%v) = %v with slew disabled", v, got)
		}
	}
}
