package fiber

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGrid indicates a grid with too few points or a non-positive area.
	ErrInvalidGrid = errors.New("fiber: invalid grid (need npoints >= 3 and area > 0)")

	// ErrShapeMismatch indicates a field whose length is not npoints².
	ErrShapeMismatch = errors.New("fiber: field length does not match grid size")

	// ErrParameterBounds indicates a fiber parameter outside its valid range.
	ErrParameterBounds = errors.New("fiber: parameter out of valid bounds")
)

// IndexProfile is the read-only view of a sampled index profile the solver needs.
// All fields are row-major npoints×npoints slices and must not be modified.
type IndexProfile interface {
	NPoints() int
	Dh() float64
	N() []float64
	X() []float64
	Y() []float64
}

// Grid is a square sampled refractive-index profile.
type Grid struct {
	npoints  int
	areaSize float64
	dh       float64
	n        []float64
	x        []float64
	y        []float64
}

// NewGrid builds a grid over [-areaSize/2, areaSize/2]² and fills the index
// field with the given function of the transverse position.
func NewGrid(npoints int, areaSize float64, index func(x, y float64) float64) (*Grid, error) {
	if npoints < 3 || areaSize <= 0 {
		return nil, ErrInvalidGrid
	}
	g := &Grid{
		npoints:  npoints,
		areaSize: areaSize,
		dh:       areaSize / float64(npoints-1),
		n:        make([]float64, npoints*npoints),
		x:        make([]float64, npoints*npoints),
		y:        make([]float64, npoints*npoints),
	}
	axis := Linspace(-areaSize/2, areaSize/2, npoints)
	for r := 0; r < npoints; r++ {
		for c := 0; c < npoints; c++ {
			i := r*npoints + c
			g.x[i] = axis[c]
			g.y[i] = axis[r]
			g.n[i] = index(axis[c], axis[r])
		}
	}
	return g, nil
}

// NewGridFromField wraps an already sampled index field.
func NewGridFromField(npoints int, areaSize float64, n []float64) (*Grid, error) {
	if len(n) != npoints*npoints {
		return nil, fmt.Errorf("%w: got %d values for %d points", ErrShapeMismatch, len(n), npoints*npoints)
	}
	g, err := NewGrid(npoints, areaSize, func(x, y float64) float64 { return 0 })
	if err != nil {
		return nil, err
	}
	copy(g.n, n)
	return g, nil
}

func (g *Grid) NPoints() int      { return g.npoints }
func (g *Grid) Dh() float64       { return g.dh }
func (g *Grid) N() []float64      { return g.n }
func (g *Grid) X() []float64      { return g.x }
func (g *Grid) Y() []float64      { return g.y }
func (g *Grid) AreaSize() float64 { return g.areaSize }

// MinMax returns the smallest and largest index values on the grid.
func MinMax(p IndexProfile) (lo, hi float64) {
	n := p.N()
	if len(n) == 0 {
		return 0, 0
	}
	lo, hi = n[0], n[0]
	for _, v := range n[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Linspace returns n evenly spaced samples over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
