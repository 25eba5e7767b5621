package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// data with its mean removed.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz and magnitude of the
// strongest non-DC component of data sampled at sampleRate Hz. For cycle
// intervals the sample rate is one sample per period.
func DominantFrequency(data []float64, sampleRate float64) (freq, magnitude float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) * sampleRate / float64(len(data)), ps[best]
}
