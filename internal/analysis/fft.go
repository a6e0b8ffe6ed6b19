// Package analysis provides frequency analysis of solver measurement
// series, used to spot oscillatory instability in the constraint
// residual.
package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform by radix-2
// Cooley-Tukey recursion. The input length must be a power of two; use
// [PowerSpectrum] for arbitrary-length series.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns the magnitude spectrum of the series, zero-padded
// to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC bin of the spectrum as a
// frequency in Hz, given the sample interval dt.
func DominantFrequency(ps []float64, dt float64) float64 {
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	maxIdx, maxPower := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	// Bin i corresponds to i cycles over the padded window of 2*len(ps)
	// samples.
	window := float64(2*len(ps)) * dt
	return float64(maxIdx) / window
}
