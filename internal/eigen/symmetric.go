package eigen

import (
	"errors"
	"math"

	"github.com/san-kum/fibermodes/internal/operator"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrComplexOperator indicates an operator with non-zero imaginary parts.
	ErrComplexOperator = errors.New("eigen: operator has complex values")

	// ErrNotConverged indicates the Krylov cap was reached before convergence.
	ErrNotConverged = errors.New("eigen: eigenpairs did not converge")

	// ErrFactorization indicates gonum's symmetric eigendecomposition failed.
	ErrFactorization = errors.New("eigen: symmetric factorization failed")

	// ErrInvalidCount indicates a non-positive number of requested pairs.
	ErrInvalidCount = errors.New("eigen: number of eigenpairs must be positive")
)

// symmetric is the real symmetric form S = D^{1/2} H D^{-1/2} in diagonal storage.
type symmetric struct {
	dim     int
	diags   map[int][]float64
	invSqrt []float64 // D^{-1/2}, nil when D = I
}

func symmetrize(op *operator.Operator) (*symmetric, error) {
	if !op.IsReal() {
		return nil, ErrComplexOperator
	}
	s := &symmetric{dim: op.Dim(), diags: make(map[int][]float64)}
	scale := op.Scale()
	var sqrtD []float64
	if scale != nil {
		sqrtD = make([]float64, len(scale))
		s.invSqrt = make([]float64, len(scale))
		for i, d := range scale {
			sqrtD[i] = math.Sqrt(d)
			s.invSqrt[i] = 1 / sqrtD[i]
		}
	}
	for _, k := range op.Offsets() {
		src := op.Diagonal(k)
		d := make([]float64, len(src))
		for j, v := range src {
			d[j] = real(v)
			if sqrtD == nil {
				continue
			}
			row, col := j, j+k
			if k < 0 {
				row, col = j-k, j
			}
			d[j] *= sqrtD[row] / sqrtD[col]
		}
		s.diags[k] = d
	}
	return s, nil
}

func (s *symmetric) mulVec(dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for k, d := range s.diags {
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

func (s *symmetric) dense() *mat.SymDense {
	a := mat.NewSymDense(s.dim, nil)
	for k, d := range s.diags {
		if k < 0 {
			continue
		}
		for j, v := range d {
			a.SetSym(j, j+k, v)
		}
	}
	return a
}

// unscale maps an eigenvector of S back to one of H.
func (s *symmetric) unscale(w []float64) []float64 {
	v := make([]float64, len(w))
	copy(v, w)
	if s.invSqrt != nil {
		for i := range v {
			v[i] *= s.invSqrt[i]
		}
	}
	return v
}
