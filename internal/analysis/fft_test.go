package analysis

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTConstantSignal(t *testing.T) {
	data := []float64{1, 1, 1, 1}
	fft := FFT(data)

	if got := cmplx.Abs(fft[0]); math.Abs(got-4) > 1e-12 {
		t.Errorf("DC bin = %v, want 4", got)
	}
	for i := 1; i < len(fft); i++ {
		if cmplx.Abs(fft[i]) > 1e-12 {
			t.Errorf("bin %d = %v, want 0", i, fft[i])
		}
	}
}

func TestFFTSingleBinSine(t *testing.T) {
	const n = 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 4 * float64(i) / n)
	}

	fft := FFT(data)
	// A pure k=4 sine concentrates all power in bins 4 and n-4.
	for i := 0; i < n/2; i++ {
		mag := cmplx.Abs(fft[i])
		if i == 4 {
			if math.Abs(mag-n/2) > 1e-9 {
				t.Errorf("bin 4 = %v, want %v", mag, float64(n/2))
			}
		} else if mag > 1e-9 {
			t.Errorf("bin %d leaked %v", i, mag)
		}
	}
}

func TestPowerSpectrumPadsToPowerOfTwo(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	if len(ps) != 64 {
		t.Errorf("spectrum length = %d, want 64 (padded to 128 samples)", len(ps))
	}

	ps = PowerSpectrum([]float64{1})
	if len(ps) != 0 {
		// A single sample pads to n=1, which has no non-DC half.
		t.Errorf("single-sample spectrum length = %d, want 0", len(ps))
	}
}

func TestDominantFrequency(t *testing.T) {
	const (
		dt = 1.0 / 60.0
		n  = 64
	)
	data := make([]float64, n)
	for i := range data {
		// 8 cycles over the 64-sample window: 8 * 60/64 = 7.5 Hz.
		data[i] = math.Sin(2 * math.Pi * 8 * float64(i) / n)
	}

	ps := PowerSpectrum(data)
	got := DominantFrequency(ps, dt)
	if math.Abs(got-7.5) > 1e-9 {
		t.Errorf("dominant frequency = %v Hz, want 7.5", got)
	}
}

func TestDominantFrequencyIgnoresDC(t *testing.T) {
	const n = 64
	data := make([]float64, n)
	for i := range data {
		// Large constant offset plus a small oscillation.
		data[i] = 100 + 0.1*math.Sin(2*math.Pi*4*float64(i)/n)
	}

	ps := PowerSpectrum(data)
	got := DominantFrequency(ps, 1.0/60.0)
	want := 4.0 * 60.0 / 64.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("dominant frequency = %v Hz, want %v", got, want)
	}
}

func TestDominantFrequencyDegenerateInputs(t *testing.T) {
	if got := DominantFrequency(nil, 1.0/60.0); got != 0 {
		t.Errorf("nil spectrum: %v", got)
	}
	if got := DominantFrequency([]float64{1, 2}, 0); got != 0 {
		t.Errorf("zero dt: %v", got)
	}
}
