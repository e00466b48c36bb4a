// Package coupling builds random unitary matrices that mix modes only within
// given groups, as a model of random coupling between near-degenerate modes.
package coupling

import (
	"errors"
	"fmt"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoGroups indicates an empty list of groups or an empty group.
	ErrNoGroups = errors.New("coupling: groups must be non-empty")

	// ErrBadIndex indicates a negative or repeated mode index.
	ErrBadIndex = errors.New("coupling: invalid mode index")
)

// RandomGroupCoupling returns a square matrix of size max(index)+1 whose
// entries at (g × g) for each group g form a Haar-random unitary block.
// Entries outside every block are zero.
func RandomGroupCoupling(groups [][]int, rng *rand.Rand) (*mat.CDense, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	size := 0
	seen := make(map[int]bool)
	for _, g := range groups {
		if len(g) == 0 {
			return nil, ErrNoGroups
		}
		for _, i := range g {
			if i < 0 || seen[i] {
				return nil, fmt.Errorf("%w: %d", ErrBadIndex, i)
			}
			seen[i] = true
			if i+1 > size {
				size = i + 1
			}
		}
	}

	h := mat.NewCDense(size, size, nil)
	for _, g := range groups {
		u := HaarUnitary(len(g), rng)
		for a, i := range g {
			for b, j := range g {
				h.Set(i, j, u.At(a, b))
			}
		}
	}
	return h, nil
}

// HaarUnitary draws an n × n unitary from the Haar measure: a complex
// Gaussian matrix orthonormalized column by column, with the phases fixed so
// the implied R factor has a positive real diagonal.
func HaarUnitary(n int, rng *rand.Rand) *mat.CDense {
	cols := make([][]complex128, n)
	for j := range cols {
		cols[j] = make([]complex128, n)
		for i := range cols[j] {
			cols[j][i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
	}

	for j, v := range cols {
		// modified Gram-Schmidt, twice for stability
		for pass := 0; pass < 2; pass++ {
			for _, q := range cols[:j] {
				p := dot(q, v)
				for i := range v {
					v[i] -= p * q[i]
				}
			}
		}
		norm := complex(cmplx.Abs(cmplx.Sqrt(dot(v, v))), 0)
		for i := range v {
			v[i] /= norm
		}
	}

	u := mat.NewCDense(n, n, nil)
	for j, q := range cols {
		for i, v := range q {
			u.Set(i, j, v)
		}
	}
	return u
}

// dot returns a^H · b.
func dot(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}
	return s
}
