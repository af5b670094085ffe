package analysis

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrShortSeries = errors.New("analysis: series too short")

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n&(n-1) != 0 {
		panic("fft requires power of 2 length")
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

// floorPow2 returns the largest power of two not above n.
func floorPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// PowerSpectrum returns |X(k)| for k < n/2 of the mean-removed series. The
// series is truncated to the largest power-of-two prefix.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	n := floorPow2(len(data))

	mean := 0.0
	for _, x := range data[:n] {
		mean += x
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i := range centered {
		centered[i] = data[i] - mean
	}

	fft := FFT(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in inverse time units, of the
// largest non-DC bin for samples spaced dt apart.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSeries
	}
	if !(dt > 0) {
		return 0, errors.New("analysis: sample spacing must be positive")
	}

	ps := PowerSpectrum(data)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}

	n := floorPow2(len(data))
	return float64(best) / (float64(n) * dt), nil
}
