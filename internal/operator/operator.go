// Package operator assembles the finite-difference scalar Helmholtz operator
// of a fiber cross-section as a sparse matrix stored by diagonals.
//
// For a row-major flattened field u of an npoints×npoints grid the operator is
//
//	H u = ∇²u + k0² n² u
//
// with the five-point Laplacian. Eigenvalues of H are squared propagation
// constants β².
package operator

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPrecondition indicates a missing wavelength or index profile.
	ErrPrecondition = errors.New("operator: wavelength and index profile must be set")

	// ErrUnknownBoundary indicates a boundary mode other than close or periodic.
	ErrUnknownBoundary = errors.New("operator: unknown boundary mode")

	// ErrShapeMismatch indicates index or coordinate fields of the wrong length.
	ErrShapeMismatch = errors.New("operator: profile fields do not match npoints²")

	// ErrCurvatureTooStrong indicates 1 + 2x/R <= 0 somewhere on the grid.
	ErrCurvatureTooStrong = errors.New("operator: bend radius smaller than the observation window")
)

// Boundary selects how the Laplacian treats the edges of the window.
type Boundary string

const (
	Close    Boundary = "close"
	Periodic Boundary = "periodic"
)

// ParseBoundary validates a boundary name.
func ParseBoundary(s string) (Boundary, error) {
	switch Boundary(s) {
	case Close, Periodic:
		return Boundary(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBoundary, s)
}

// Operator is a square sparse matrix in diagonal storage. Diagonal k holds
// dim-|k| values; for k >= 0 value j sits at (j, j+k), for k < 0 at (j-k, j).
type Operator struct {
	dim     int
	npoints int
	diags   map[int][]complex128
	scale   []float64
}

// New wraps explicit diagonals of an npoints²-dimensional operator. scale may
// be nil; otherwise it is the row scale already applied to the diagonals.
func New(npoints int, diags map[int][]complex128, scale []float64) (*Operator, error) {
	dim := npoints * npoints
	for k, d := range diags {
		if k <= -dim || k >= dim || len(d) != dim-abs(k) {
			return nil, fmt.Errorf("%w: diagonal %d has %d values", ErrShapeMismatch, k, len(d))
		}
	}
	if scale != nil && len(scale) != dim {
		return nil, fmt.Errorf("%w: scale has %d values", ErrShapeMismatch, len(scale))
	}
	return &Operator{dim: dim, npoints: npoints, diags: diags, scale: scale}, nil
}

func abs(k int) int {
	if k < 0 {
		return -k
	}
	return k
}

// Dim returns the matrix dimension npoints².
func (o *Operator) Dim() int { return o.dim }

// NPoints returns the side of the underlying grid.
func (o *Operator) NPoints() int { return o.npoints }

// Offsets returns the stored diagonal offsets in increasing order.
func (o *Operator) Offsets() []int {
	offs := make([]int, 0, len(o.diags))
	for k := range o.diags {
		offs = append(offs, k)
	}
	sort.Ints(offs)
	return offs
}

// Diagonal returns the values stored at offset k, or nil.
func (o *Operator) Diagonal(k int) []complex128 { return o.diags[k] }

// Scale returns the row scale 1 + 2x/R applied by a curvature, or nil for a
// straight fiber. Row i of the operator has been divided by Scale()[i].
func (o *Operator) Scale() []float64 { return o.scale }

// At returns the matrix element (i, j).
func (o *Operator) At(i, j int) complex128 {
	d, ok := o.diags[j-i]
	if !ok {
		return 0
	}
	if j >= i {
		return d[i]
	}
	return d[j]
}

// MulVec computes dst = H x.
func (o *Operator) MulVec(dst, x []complex128) {
	for i := range dst[:o.dim] {
		dst[i] = 0
	}
	for k, d := range o.diags {
		if k >= 0 {
			for j, v := range d {
				dst[j] += v * x[j+k]
			}
		} else {
			for j, v := range d {
				dst[j-k] += v * x[j]
			}
		}
	}
}

// IsReal reports whether every stored value has a zero imaginary part.
func (o *Operator) IsReal() bool {
	for _, d := range o.diags {
		for _, v := range d {
			if imag(v) != 0 {
				return false
			}
		}
	}
	return true
}

// NNZ returns the number of stored non-zero values.
func (o *Operator) NNZ() int {
	nnz := 0
	for _, d := range o.diags {
		for _, v := range d {
			if v != 0 {
				nnz++
			}
		}
	}
	return nnz
}
