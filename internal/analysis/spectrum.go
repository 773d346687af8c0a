package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrTooShort = errors.New("analysis: series too short")

// Resample linearly interpolates (times, values) onto n evenly spaced
// points spanning the same interval. times must be non-decreasing.
func Resample(times, values []float64, n int) ([]float64, float64, error) {
	if len(times) != len(values) {
		return nil, 0, fmt.Errorf("analysis: %d times for %d values", len(times), len(values))
	}
	if len(times) < 2 || n < 2 {
		return nil, 0, ErrTooShort
	}
	if !sort.Float64sAreSorted(times) {
		return nil, 0, fmt.Errorf("analysis: times are not sorted")
	}
	t0, t1 := times[0], times[len(times)-1]
	if t1 <= t0 {
		return nil, 0, fmt.Errorf("analysis: series spans no time")
	}
	step := (t1 - t0) / float64(n-1)

	out := make([]float64, n)
	j := 0
	for i := range out {
		t := t0 + float64(i)*step
		for j < len(times)-2 && times[j+1] < t {
			j++
		}
		ta, tb := times[j], times[j+1]
		if tb == ta {
			out[i] = values[j+1]
			continue
		}
		w := (t - ta) / (tb - ta)
		w = max(0, min(1, w))
		out[i] = values[j] + w*(values[j+1]-values[j])
	}
	return out, step, nil
}

type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum returns the one-sided magnitude spectrum of a uniformly
// sampled series after removing its mean.
func PowerSpectrum(values []float64, step float64) Spectrum {
	n := len(values)
	if n < 2 || step <= 0 {
		return Spectrum{}
	}
	mean := stat.Mean(values, nil)
	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n / 2
	s := Spectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * step)
		s.Power[k] = cmplx.Abs(coeffs[k])
	}
	return s
}

// Dominant returns the strongest non-constant component.
func (s Spectrum) Dominant() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}
