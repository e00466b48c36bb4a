package operator

import (
	"fmt"
	"math"

	"github.com/san-kum/fibermodes/internal/fiber"
)

// Config collects the inputs of Build.
type Config struct {
	Wavelength float64 // microns
	Profile    fiber.IndexProfile
	Boundary   Boundary
	// Curvature is the bend radius in microns; nil for a straight fiber.
	Curvature *float64
}

// Wavenumber returns k0 = 2π/wl.
func Wavenumber(wl float64) float64 {
	return 2 * math.Pi / wl
}

// Build assembles the Helmholtz operator for the given inputs.
func Build(s Config) (*Operator, error) {
	if s.Profile == nil || !(s.Wavelength > 0) {
		return nil, ErrPrecondition
	}
	boundary := s.Boundary
	if boundary == "" {
		boundary = Close
	}
	if _, err := ParseBoundary(string(boundary)); err != nil {
		return nil, err
	}

	np := s.Profile.NPoints()
	dim := np * np
	n := s.Profile.N()
	if np < 3 || len(n) != dim || len(s.Profile.X()) != dim {
		return nil, fmt.Errorf("%w: npoints=%d len(n)=%d len(X)=%d", ErrShapeMismatch, np, len(n), len(s.Profile.X()))
	}

	dh := s.Profile.Dh()
	k0 := Wavenumber(s.Wavelength)
	w := complex(1/(dh*dh), 0)

	op := &Operator{dim: dim, npoints: np, diags: make(map[int][]complex128, 9)}

	main := make([]complex128, dim)
	for i, ni := range n {
		main[i] = complex(-4/(dh*dh)+k0*k0*ni*ni, 0)
	}
	op.diags[0] = main

	// x part: neighbours along a row, no coupling across row ends
	op.diags[1] = rowNeighbours(np, w)
	op.diags[-1] = rowNeighbours(np, w)
	// y part: neighbours along a column
	op.diags[np] = constant(dim-np, w)
	op.diags[-np] = constant(dim-np, w)

	if boundary == Periodic {
		op.diags[np-1] = rowWrap(np, w)
		op.diags[-(np - 1)] = rowWrap(np, w)
		op.diags[np*(np-1)] = constant(np, w)
		op.diags[-np*(np-1)] = constant(np, w)
	}

	if s.Curvature != nil {
		if err := op.bend(*s.Curvature, s.Profile.X()); err != nil {
			return nil, err
		}
	}
	return op, nil
}

// bend divides every row by 1 + 2·xi·x/R with xi = 1 (geometric effect only).
func (o *Operator) bend(radius float64, x []float64) error {
	if radius == 0 || math.IsNaN(radius) {
		return fmt.Errorf("%w: radius %v", ErrCurvatureTooStrong, radius)
	}
	const xi = 1.0
	scale := make([]float64, o.dim)
	for i, xv := range x {
		scale[i] = 1 + 2*xi*xv/radius
		if scale[i] <= 0 {
			return fmt.Errorf("%w: 1+2x/R = %.3g at x = %.3g", ErrCurvatureTooStrong, scale[i], xv)
		}
	}
	for k, d := range o.diags {
		if k >= 0 {
			for j := range d {
				d[j] /= complex(scale[j], 0)
			}
		} else {
			for j := range d {
				d[j] /= complex(scale[j-k], 0)
			}
		}
	}
	o.scale = scale
	return nil
}

// rowNeighbours returns the ±1 diagonal with every npoints-th entry zeroed.
func rowNeighbours(np int, w complex128) []complex128 {
	d := make([]complex128, np*np-1)
	for j := range d {
		if j%np != np-1 {
			d[j] = w
		}
	}
	return d
}

// rowWrap returns the ±(npoints-1) diagonal linking the first and last
// column of each row.
func rowWrap(np int, w complex128) []complex128 {
	d := make([]complex128, np*np-(np-1))
	for j := range d {
		if j%np == 0 {
			d[j] = w
		}
	}
	return d
}

func constant(n int, w complex128) []complex128 {
	d := make([]complex128, n)
	for j := range d {
		d[j] = w
	}
	return d
}
