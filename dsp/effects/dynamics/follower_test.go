package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-noisegate/dsp/core"
	"github.com/cwbudde/algo-noisegate/internal/testutil"
)

const testSampleRate = 48000.0

func newTestFollower(t *testing.T, releaseMs float64, opts ...FollowerOption) *Follower {
	t.Helper()

	f, err := NewFollower(testSampleRate, releaseMs, opts...)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}

	return f
}

// runFollower feeds input and returns the envelope after every sample.
func runFollower(f *Follower, input []float64) []float64 {
	out := make([]float64, len(input))
	for i, x := range input {
		f.ProcessEnvelope(x)
		out[i] = f.Output()
	}

	return out
}

func TestNewFollowerValidation(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		release float64
		opts    []FollowerOption
	}{
		{"zero sample rate", 0, 100, nil},
		{"nan sample rate", math.NaN(), 100, nil},
		{"zero release", testSampleRate, 0, nil},
		{"inf release", testSampleRate, math.Inf(1), nil},
		{"filter order 0", testSampleRate, 100, []FollowerOption{WithInputFilter(0, 1800)}},
		{"filter order 7", testSampleRate, 100, []FollowerOption{WithInputFilter(7, 1800)}},
		{"filter cutoff 0", testSampleRate, 100, []FollowerOption{WithInputFilter(2, 0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFollower(tc.rate, tc.release, tc.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	for order := 1; order <= 6; order++ {
		if _, err := NewFollower(testSampleRate, 100, WithInputFilter(order, 1800)); err != nil {
			t.Fatalf("order %d: %v", order, err)
		}
	}
}

func TestFollowerDecayBounds(t *testing.T) {
	f := newTestFollower(t, 100)

	if want := core.DBToGain(-60.0 / 4800); math.Abs(f.FastDecay()-want) > 1e-15 {
		t.Fatalf("FastDecay = %.15f, want %.15f", f.FastDecay(), want)
	}

	if want := core.DBToGain(-60.0 / 144000); math.Abs(f.SlowDecay()-want) > 1e-15 {
		t.Fatalf("SlowDecay = %.15f, want %.15f", f.SlowDecay(), want)
	}

	if f.FastDecay() >= f.SlowDecay() {
		t.Fatalf("fast decay %v should be below slow decay %v", f.FastDecay(), f.SlowDecay())
	}
}

func TestFollowerSetRelease(t *testing.T) {
	f := newTestFollower(t, 100)
	slow := f.SlowDecay()

	if err := f.SetRelease(250); err != nil {
		t.Fatal(err)
	}

	if f.Release() != 250 {
		t.Fatalf("Release = %v, want 250", f.Release())
	}

	if want := core.DBToGain(-60.0 / 12000); math.Abs(f.FastDecay()-want) > 1e-15 {
		t.Fatalf("FastDecay = %v, want %v", f.FastDecay(), want)
	}

	if f.SlowDecay() != slow {
		t.Fatal("SetRelease must not change the slow bound")
	}

	for _, ms := range []float64{0, -5, math.NaN()} {
		if err := f.SetRelease(ms); err == nil {
			t.Fatalf("SetRelease(%v) should fail", ms)
		}
	}

	if f.Release() != 250 {
		t.Fatal("failed SetRelease changed the release time")
	}
}

func TestFollowerSilenceStaysZero(t *testing.T) {
	f := newTestFollower(t, 100)

	for i, v := range runFollower(f, make([]float64, 4800)) {
		if v != 0 {
			t.Fatalf("sample %d: envelope %v, want 0", i, v)
		}
	}

	if core.GainToDB(f.Output()) != core.FloorDB {
		t.Fatal("silent envelope should map to the dB floor")
	}
}

func TestFollowerDCSteadyState(t *testing.T) {
	for _, level := range []float64{1, 0.25, 0.01} {
		f := newTestFollower(t, 100)
		out := runFollower(f, testutil.DC(level, 3*int(testSampleRate)))

		got := core.GainToDB(out[len(out)-1])
		if want := core.GainToDB(level); math.Abs(got-want) > 0.1 {
			t.Errorf("level %v: envelope %.4f dB, want %.4f dB +/- 0.1", level, got, want)
		}
	}
}

// The envelope sits between the rectified mean 2A/pi and the rectified
// ripple peaks. When whole periods fit the 10 ms SMA window (300 Hz, 1 kHz)
// the trend latch follows rounding noise and the envelope may move between
// the two, up to about 1.5 dB above the mean.
func TestFollowerSineSteadyState(t *testing.T) {
	const amp = 0.5

	tests := []struct {
		freq   float64
		lo, hi float64
	}{
		{1000, -1, 1},
		{300, -0.5, 2},
		{440, -0.5, 2},
		{1234, -1, 1.5},
	}

	want := core.GainToDB(2 * amp / math.Pi)
	for _, tc := range tests {
		f := newTestFollower(t, 100)
		out := runFollower(f, testutil.DeterministicSine(tc.freq, testSampleRate, amp, 2*int(testSampleRate)))

		for i := len(out) - 4800; i < len(out); i++ {
			got := core.GainToDB(out[i]) - want
			if got < tc.lo || got > tc.hi {
				t.Fatalf("%.0f Hz sample %d: envelope %+.3f dB from mean, want [%v, %v]", tc.freq, i, got, tc.lo, tc.hi)
			}
		}
	}
}

func TestFollowerOutputNonNegativeFinite(t *testing.T) {
	f := newTestFollower(t, 50)
	out := runFollower(f, testutil.DeterministicNoise(7, 1, 48000))

	testutil.RequireFinite(t, out)

	for i, v := range out {
		if v < 0 {
			t.Fatalf("sample %d: negative envelope %v", i, v)
		}
	}
}

func TestFollowerNonFiniteInputIsSilence(t *testing.T) {
	input := testutil.DC(0.5, 2000)
	clean := append([]float64(nil), input...)
	for i, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		input[500+i*300] = v
		clean[500+i*300] = 0
	}

	got := runFollower(newTestFollower(t, 100), input)
	want := runFollower(newTestFollower(t, 100), clean)

	testutil.RequireFinite(t, got)
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestFollowerBoundedDecayAfterSilence(t *testing.T) {
	const onset = 24000

	f := newTestFollower(t, 100)
	in := append(testutil.DC(1, onset), make([]float64, 6000)...)
	out := runFollower(f, in)

	for n := onset + 3000; n < onset+4000; n++ {
		ratio := out[n] / out[n-1]
		testutil.RequireInRange(t, "decay ratio", ratio, f.FastDecay()-1e-9, f.SlowDecay()+1e-9)

		if math.Abs(ratio-f.FastDecay()) > 1e-4 {
			t.Fatalf("sample %d: ratio %.8f, want timed-out fast decay %.8f", n, ratio, f.FastDecay())
		}
	}
}

func TestFollowerHoldNonIncreasingWithoutTrigger(t *testing.T) {
	const onset = 4800

	f := newTestFollower(t, 100)
	for _, x := range testutil.DC(1, onset) {
		f.ProcessEnvelope(x)
	}

	prev := f.Hold()
	for i := range 9600 {
		f.ProcessEnvelope(0)

		if h := f.Hold(); h > prev {
			t.Fatalf("silence sample %d: hold rose from %v to %v", i, prev, h)
		}

		prev = f.Hold()
	}
}

// decayCrossings returns the samples after silence onset at which the envelope
// first falls below -20 dB and -80 dB.
func decayCrossings(t *testing.T, f *Follower) (int, int) {
	t.Helper()

	const onset = 24000

	out := runFollower(f, append(testutil.DC(1, onset), make([]float64, 30000)...))

	hi := testutil.FirstIndexBelow(out, core.DBToGain(-20), onset)
	lo := testutil.FirstIndexBelow(out, core.DBToGain(-80), onset)
	if hi < 0 || lo < 0 {
		t.Fatalf("envelope did not decay: -20 dB at %d, -80 dB at %d", hi, lo)
	}

	return hi - onset, lo - onset
}

func TestFollowerReleaseScaling(t *testing.T) {
	f := newTestFollower(t, 100)
	hi1, lo1 := decayCrossings(t, f)

	f.Reset()

	if err := f.SetRelease(200); err != nil {
		t.Fatal(err)
	}

	hi2, lo2 := decayCrossings(t, f)

	ratio := float64(lo2-hi2) / float64(lo1-hi1)
	if math.Abs(ratio-2) > 0.1 {
		t.Fatalf("60 dB decay span ratio = %.3f (%d vs %d samples), want ~2", ratio, lo2-hi2, lo1-hi1)
	}
}

func TestFollowerReset(t *testing.T) {
	f := newTestFollower(t, 100)
	ref := runFollower(f, testutil.DeterministicSine(440, testSampleRate, 0.8, 2000))

	f.Reset()

	if f.Output() != 0 || f.Hold() != 0 || f.Trend() != 0 {
		t.Fatalf("after Reset: output=%v hold=%v trend=%d", f.Output(), f.Hold(), f.Trend())
	}

	got := runFollower(f, testutil.DeterministicSine(440, testSampleRate, 0.8, 2000))
	testutil.RequireSliceNearlyEqual(t, got, ref, 0)
}

func TestFollowerTrendFollowsLoudness(t *testing.T) {
	f := newTestFollower(t, 100)

	for _, x := range testutil.DC(1, 400) {
		f.ProcessEnvelope(x)
	}

	if f.Trend() != 1 {
		t.Fatalf("rising input: trend = %d, want 1", f.Trend())
	}

	for range 2000 {
		f.ProcessEnvelope(1)
	}

	if f.Trend() != -1 {
		t.Fatalf("steady input: trend = %d, want -1", f.Trend())
	}
}

func TestFollowerProcessEnvelopeNoAllocs(t *testing.T) {
	f := newTestFollower(t, 100)

	allocs := testing.AllocsPerRun(1000, func() {
		f.ProcessEnvelope(0.3)
	})
	if allocs != 0 {
		t.Fatalf("ProcessEnvelope allocated %v times per run", allocs)
	}
}
