// Package interp resamples square row-major fields with cubic convolution.
//
// Rotate and Shift treat the field as an npoints × npoints image whose first
// index is the row. Samples falling outside the image read as zero.
package interp

import (
	"errors"
	"math"
)

// ErrShape indicates a field whose length is not npoints².
var ErrShape = errors.New("interp: field length does not match npoints²")

// snap is the distance below which a coordinate is treated as a grid node.
const snap = 1e-9

// keys is the cubic convolution kernel with a = -0.5.
func keys(t float64) float64 {
	const a = -0.5
	t = math.Abs(t)
	switch {
	case t <= 1:
		return ((a+2)*t-(a+3))*t*t + 1
	case t < 2:
		return ((a*t-5*a)*t+8*a)*t - 4*a
	}
	return 0
}

// Sample evaluates field at the fractional position (r, c).
func Sample(field []float64, n int, r, c float64) float64 {
	r0, fr := split(r)
	c0, fc := split(c)
	if fr == 0 && fc == 0 {
		return at(field, n, r0, c0)
	}

	var wr, wc [4]float64
	for i := range wr {
		wr[i] = keys(fr - float64(i-1))
		wc[i] = keys(fc - float64(i-1))
	}
	var sum float64
	for i := 0; i < 4; i++ {
		if wr[i] == 0 {
			continue
		}
		for j := 0; j < 4; j++ {
			if wc[j] == 0 {
				continue
			}
			sum += wr[i] * wc[j] * at(field, n, r0+i-1, c0+j-1)
		}
	}
	return sum
}

func split(x float64) (int, float64) {
	if rx := math.Round(x); math.Abs(x-rx) < snap {
		return int(rx), 0
	}
	f := math.Floor(x)
	return int(f), x - f
}

func at(field []float64, n, r, c int) float64 {
	if r < 0 || r >= n || c < 0 || c >= n {
		return 0
	}
	return field[r*n+c]
}

// Rotate turns field by angle radians about the image center, in the same
// sense as numpy's rot90: a quarter turn moves (r, c) to (n-1-c, r).
func Rotate(field []float64, n int, angle float64) ([]float64, error) {
	if len(field) != n*n {
		return nil, ErrShape
	}
	center := float64(n-1) / 2
	sin, cos := math.Sincos(angle)
	out := make([]float64, n*n)
	for r := 0; r < n; r++ {
		y := float64(r) - center
		for c := 0; c < n; c++ {
			x := float64(c) - center
			out[r*n+c] = Sample(field, n, center+x*sin+y*cos, center+x*cos-y*sin)
		}
	}
	return out, nil
}

// Shift translates field by (dr, dc) pixels: out[r, c] = field[r-dr, c-dc].
func Shift(field []float64, n int, dr, dc float64) ([]float64, error) {
	if len(field) != n*n {
		return nil, ErrShape
	}
	out := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out[r*n+c] = Sample(field, n, float64(r)-dr, float64(c)-dc)
		}
	}
	return out, nil
}
