package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	// ErrShape indicates a field whose length does not match the grid.
	ErrShape = errors.New("analysis: field does not match grid")

	// ErrEmptyField indicates a field with no power.
	ErrEmptyField = errors.New("analysis: field has zero power")
)

// FarField is the normalized far-field intensity on an N×N grid of direction
// sines, zero direction at index N/2.
type FarField struct {
	N         int
	Sin       []float64
	Intensity []float64 // row-major, peak 1
}

// NewFarField transforms an np×np near field sampled at spacing dh. The field
// is zero padded to pad·np points per side before the transform.
func NewFarField(field []complex128, np int, dh, wavelength float64, pad int) (*FarField, error) {
	if len(field) != np*np || np == 0 {
		return nil, fmt.Errorf("%w: %d values for %d points", ErrShape, len(field), np)
	}
	if dh <= 0 || wavelength <= 0 {
		return nil, fmt.Errorf("%w: spacing %g and wavelength %g must be positive", ErrShape, dh, wavelength)
	}
	pad = max(pad, 1)
	n := pad * np

	x := make([][]complex128, n)
	for r := range x {
		x[r] = make([]complex128, n)
		if r < np {
			copy(x[r], field[r*np:(r+1)*np])
		}
	}
	spectrum := fft.FFT2(x)

	ff := &FarField{
		N:         n,
		Sin:       make([]float64, n),
		Intensity: make([]float64, n*n),
	}
	for k := range ff.Sin {
		ff.Sin[k] = wavelength * float64(k-n/2) / (float64(n) * dh)
	}
	peak := 0.0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			a := cmplx.Abs(spectrum[r][c])
			v := a * a
			// fftshift: frequency 0 moves to n/2
			ff.Intensity[((r+n/2)%n)*n+(c+n/2)%n] = v
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 {
		return nil, ErrEmptyField
	}
	for i := range ff.Intensity {
		ff.Intensity[i] /= peak
	}
	return ff, nil
}

// RMSSine returns the root-mean-square radial direction sine of the far
// field, sqrt(Σ(sx²+sy²)I / ΣI).
func (f *FarField) RMSSine() float64 {
	var num, den float64
	for r := 0; r < f.N; r++ {
		for c := 0; c < f.N; c++ {
			v := f.Intensity[r*f.N+c]
			num += (f.Sin[c]*f.Sin[c] + f.Sin[r]*f.Sin[r]) * v
			den += v
		}
	}
	return math.Sqrt(num / den)
}
