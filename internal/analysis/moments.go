package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

func intensity(field []complex128) []float64 {
	out := make([]float64, len(field))
	for i, v := range field {
		a := cmplx.Abs(v)
		out[i] = a * a
	}
	return out
}

// EffectiveArea returns (∫|E|²)² / ∫|E|⁴ for a field sampled at spacing dh.
func EffectiveArea(field []complex128, dh float64) (float64, error) {
	var p2, p4 float64
	for _, v := range intensity(field) {
		p2 += v
		p4 += v * v
	}
	if p4 == 0 {
		return 0, ErrEmptyField
	}
	return p2 * p2 / p4 * dh * dh, nil
}

// ModeFieldDiameter returns 2·sqrt(2⟨r²⟩), with ⟨r²⟩ taken about the
// intensity centroid. x and y are the sample coordinates of field.
func ModeFieldDiameter(field []complex128, x, y []float64) (float64, error) {
	if len(x) != len(field) || len(y) != len(field) {
		return 0, fmt.Errorf("%w: %d values, %d x, %d y", ErrShape, len(field), len(x), len(y))
	}
	in := intensity(field)
	var p, cx, cy float64
	for i, v := range in {
		p += v
		cx += x[i] * v
		cy += y[i] * v
	}
	if p == 0 {
		return 0, ErrEmptyField
	}
	cx /= p
	cy /= p
	var r2 float64
	for i, v := range in {
		dx, dy := x[i]-cx, y[i]-cy
		r2 += (dx*dx + dy*dy) * v
	}
	return 2 * math.Sqrt(2*r2/p), nil
}

// Overlap returns |⟨a, b⟩|² / (⟨a, a⟩⟨b, b⟩), the fraction of the power of
// b carried by a.
func Overlap(a, b []complex128) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d values", ErrShape, len(a), len(b))
	}
	var ab complex128
	var aa, bb float64
	for i := range a {
		ab += cmplx.Conj(a[i]) * b[i]
		aa += real(a[i])*real(a[i]) + imag(a[i])*imag(a[i])
		bb += real(b[i])*real(b[i]) + imag(b[i])*imag(b[i])
	}
	if aa == 0 || bb == 0 {
		return 0, ErrEmptyField
	}
	m := cmplx.Abs(ab)
	return m * m / (aa * bb), nil
}
