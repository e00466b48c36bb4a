package eigen

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/fibermodes/internal/operator"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultDenseLimit = 1024
	DefaultMaxKrylov  = 800
	DefaultTolerance  = 1e-10
	DefaultCheckEvery = 10
)

// Options tunes the eigensolvers. Zero values select the defaults.
type Options struct {
	// DenseLimit is the largest dimension solved by full factorization.
	DenseLimit int
	// MaxKrylov caps the Lanczos basis size.
	MaxKrylov int
	// Tolerance is the relative Ritz residual accepted as converged.
	Tolerance float64
	// CheckEvery is the number of Lanczos steps between convergence checks.
	CheckEvery int
	// Seed initialises the random start vector.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.DenseLimit <= 0 {
		o.DenseLimit = DefaultDenseLimit
	}
	if o.MaxKrylov <= 0 {
		o.MaxKrylov = DefaultMaxKrylov
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.CheckEvery <= 0 {
		o.CheckEvery = DefaultCheckEvery
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
	return o
}

// Result holds eigenpairs in descending eigenvalue order. Vectors[i] is an
// eigenvector of the original operator H, not normalised.
type Result struct {
	Values     []float64
	Vectors    [][]float64
	Iterations int
	Method     string
}

// Largest returns the k algebraically largest eigenpairs of op.
func Largest(ctx context.Context, op *operator.Operator, k int, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if op.Dim() <= opts.DenseLimit {
		return Dense(op, k)
	}
	return Lanczos(ctx, op, k, opts)
}

// Dense factorizes the full symmetric form of op.
func Dense(op *operator.Operator, k int) (*Result, error) {
	if k <= 0 {
		return nil, ErrInvalidCount
	}
	s, err := symmetrize(op)
	if err != nil {
		return nil, err
	}
	if k > s.dim {
		k = s.dim
	}
	var es mat.EigenSym
	if ok := es.Factorize(s.dense(), true); !ok {
		return nil, ErrFactorization
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	res := &Result{Method: "dense"}
	for i := s.dim - 1; i >= s.dim-k; i-- {
		res.Values = append(res.Values, vals[i])
		res.Vectors = append(res.Vectors, s.unscale(mat.Col(nil, i, &vecs)))
	}
	return res, nil
}

// Lanczos grows an orthonormal Krylov basis of the symmetric form of op until
// the k largest Ritz pairs have residual below Tolerance·max(1, |θ|).
//
// A single Krylov sequence sees one vector per eigenspace, so degenerate
// modes (LP_lm pairs with l > 0) would be reported once. Converged pairs are
// therefore locked and the iteration restarted in their orthogonal
// complement until a restart brings nothing new into the top k.
func Lanczos(ctx context.Context, op *operator.Operator, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, ErrInvalidCount
	}
	opts = opts.withDefaults()
	s, err := symmetrize(op)
	if err != nil {
		return nil, err
	}
	if k > s.dim {
		k = s.dim
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var best []pair
	iterations := 0
	for run := 0; run < maxRestarts; run++ {
		locked := make([][]float64, len(best))
		for i, p := range best {
			locked[i] = p.vector
		}
		if len(locked) >= s.dim {
			break
		}
		found, m, err := s.lanczosRun(ctx, rng, k, locked, opts)
		iterations += m
		if err != nil {
			return nil, err
		}
		merged, improved := mergeTop(best, found, k)
		best = merged
		if !improved {
			break
		}
	}

	res := &Result{Method: "lanczos", Iterations: iterations}
	for _, p := range best {
		res.Values = append(res.Values, p.value)
		res.Vectors = append(res.Vectors, s.unscale(p.vector))
	}
	return res, nil
}

const maxRestarts = 8

type pair struct {
	value  float64
	vector []float64
}

// mergeTop keeps the k largest pairs of both sets and reports whether any
// pair of next made it in.
func mergeTop(prev, next []pair, k int) ([]pair, bool) {
	var floor float64
	if len(prev) >= k {
		floor = prev[len(prev)-1].value
	}
	all := append(append([]pair(nil), prev...), next...)
	sort.SliceStable(all, func(a, b int) bool { return all[a].value > all[b].value })
	if len(all) > k {
		all = all[:k]
	}
	improved := false
	for _, p := range next {
		if len(prev) < k || p.value > floor+1e-12*math.Max(1, math.Abs(floor)) {
			improved = true
			break
		}
	}
	return all, improved
}

// lanczosRun runs one Lanczos sequence restricted to the orthogonal
// complement of locked and returns its k largest converged Ritz pairs.
func (s *symmetric) lanczosRun(ctx context.Context, rng *rand.Rand, k int, locked [][]float64, opts Options) ([]pair, int, error) {
	n := s.dim - len(locked)
	if k > n {
		k = n
	}
	maxK := opts.MaxKrylov
	if maxK > n {
		maxK = n
	}
	if maxK < k {
		maxK = k
	}

	basis := make([][]float64, 0, maxK)
	alpha := make([]float64, 0, maxK)
	beta := make([]float64, 0, maxK)

	q := randomUnit(rng, s.dim, locked, basis)
	w := make([]float64, s.dim)
	for j := 0; j < maxK; j++ {
		select {
		case <-ctx.Done():
			return nil, j, ctx.Err()
		default:
		}

		basis = append(basis, q)
		s.mulVec(w, q)
		a := floats.Dot(w, q)
		floats.AddScaled(w, -a, q)
		if j > 0 {
			floats.AddScaled(w, -beta[j-1], basis[j-1])
		}
		orthogonalize(w, locked, basis)
		alpha = append(alpha, a)
		b := floats.Norm(w, 2)
		m := j + 1

		exhausted := m == maxK
		breakdown := b <= 1e-12*math.Max(1, math.Abs(a))
		// an invariant subspace is not necessarily the dominant one, so a
		// breakdown alone never ends the iteration
		if m >= k && (exhausted || (!breakdown && m%opts.CheckEvery == 0)) {
			theta, y, err := ritz(alpha, beta)
			if err != nil {
				return nil, m, err
			}
			if m == n || converged(theta, y, b, k, opts.Tolerance) {
				return ritzPairs(basis, theta, y, k), m, nil
			}
			if exhausted {
				return nil, m, fmt.Errorf("%w after %d Lanczos steps", ErrNotConverged, m)
			}
		}

		if breakdown {
			beta = append(beta, 0)
			q = randomUnit(rng, s.dim, locked, basis)
			continue
		}
		beta = append(beta, b)
		q = make([]float64, s.dim)
		floats.ScaleTo(q, 1/b, w)
	}
	return nil, maxK, fmt.Errorf("%w after %d Lanczos steps", ErrNotConverged, maxK)
}

// ritz diagonalises the tridiagonal Lanczos matrix.
func ritz(alpha, beta []float64) ([]float64, *mat.Dense, error) {
	m := len(alpha)
	t := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		t.SetSym(i, i, alpha[i])
		if i+1 < m {
			t.SetSym(i, i+1, beta[i])
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(t, true); !ok {
		return nil, nil, ErrFactorization
	}
	var y mat.Dense
	es.VectorsTo(&y)
	return es.Values(nil), &y, nil
}

// converged checks the residual |b·y[m-1,i]| of the k largest Ritz pairs.
func converged(theta []float64, y *mat.Dense, b float64, k int, tol float64) bool {
	m := len(theta)
	for i := m - 1; i >= m-k; i-- {
		if math.Abs(b*y.At(m-1, i)) > tol*math.Max(1, math.Abs(theta[i])) {
			return false
		}
	}
	return true
}

// ritzPairs forms the k largest Ritz vectors in descending order.
func ritzPairs(basis [][]float64, theta []float64, y *mat.Dense, k int) []pair {
	m := len(theta)
	n := len(basis[0])
	out := make([]pair, 0, k)
	for i := m - 1; i >= m-k; i-- {
		v := make([]float64, n)
		for j := 0; j < m; j++ {
			floats.AddScaled(v, y.At(j, i), basis[j])
		}
		floats.Scale(1/floats.Norm(v, 2), v)
		out = append(out, pair{value: theta[i], vector: v})
	}
	return out
}

// orthogonalize removes the components of v along every vector of the given
// sets. Two passes of classical Gram-Schmidt keep v orthogonal to working
// precision.
func orthogonalize(v []float64, sets ...[][]float64) {
	for pass := 0; pass < 2; pass++ {
		for _, set := range sets {
			for _, b := range set {
				floats.AddScaled(v, -floats.Dot(v, b), b)
			}
		}
	}
}

// randomUnit draws a unit vector orthogonal to the given sets.
func randomUnit(rng *rand.Rand, n int, sets ...[][]float64) []float64 {
	v := make([]float64, n)
	for {
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		orthogonalize(v, sets...)
		if nrm := floats.Norm(v, 2); nrm > 1e-8 {
			floats.Scale(1/nrm, v)
			return v
		}
	}
}
