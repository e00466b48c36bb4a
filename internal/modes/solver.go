package modes

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/san-kum/fibermodes/internal/eigen"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/operator"
	"go.uber.org/zap"
)

// DefaultModesMax is the number of eigenpairs requested when unset.
const DefaultModesMax = 6

// SolveOptions configures one solve.
type SolveOptions struct {
	// NModesMax is the number of eigenpairs requested.
	NModesMax int
	// Boundary selects the finite-difference boundary condition.
	Boundary operator.Boundary
	// Curvature is the bend radius in microns, nil for a straight fiber.
	Curvature *float64
	// Discard skips caching the result on the solver.
	Discard bool
}

// DefaultSolveOptions returns the options used when none are given.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{NModesMax: DefaultModesMax, Boundary: operator.Close}
}

// Solver holds the physical inputs of a mode computation.
type Solver struct {
	wavelength float64
	profile    fiber.IndexProfile
	poisson    float64
	eigenOpts  eigen.Options
	logger     *zap.Logger

	modes *ModeSet
	op    *operator.Operator
}

// NewSolver creates a solver. A nil logger discards log output.
func NewSolver(logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{poisson: 0.5, logger: logger}
}

// SetIndexProfile sets the profile solved by the next Solve.
func (s *Solver) SetIndexProfile(p fiber.IndexProfile) { s.profile = p }

// SetWavelength sets the wavelength in microns.
func (s *Solver) SetWavelength(wl float64) { s.wavelength = wl }

// SetPoisson sets the Poisson ratio of the fiber material. It is recorded
// for bend models that account for stress and does not enter the operator.
func (s *Solver) SetPoisson(p float64) error {
	if p < 0 || p > 0.5 {
		return fmt.Errorf("%w: poisson ratio %g outside [0, 0.5]", ErrParameterBounds, p)
	}
	s.poisson = p
	return nil
}

// Poisson returns the configured Poisson ratio.
func (s *Solver) Poisson() float64 { return s.poisson }

// SetEigenOptions tunes the eigensolver.
func (s *Solver) SetEigenOptions(o eigen.Options) { s.eigenOpts = o }

// Modes returns the last cached mode set.
func (s *Solver) Modes() (*ModeSet, error) {
	if s.modes == nil {
		return nil, ErrNoModes
	}
	return s.modes, nil
}

// Operator returns the operator of the last solve.
func (s *Solver) Operator() *operator.Operator { return s.op }

// Solve builds the operator, extracts the guided modes and caches the result
// unless opts.Discard is set.
func (s *Solver) Solve(ctx context.Context, opts SolveOptions) (*ModeSet, error) {
	if s.profile == nil || s.wavelength <= 0 {
		return nil, ErrPrecondition
	}
	if opts.NModesMax <= 0 {
		opts.NModesMax = DefaultModesMax
	}
	if opts.Boundary == "" {
		opts.Boundary = operator.Close
	}
	s.logger.Info("building operator",
		zap.String("boundary", string(opts.Boundary)),
		zap.Int("npoints", s.profile.NPoints()),
		zap.Float64("wavelength", s.wavelength))

	op, err := operator.Build(operator.Config{
		Wavelength: s.wavelength,
		Profile:    s.profile,
		Boundary:   opts.Boundary,
		Curvature:  opts.Curvature,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	set, err := s.extract(ctx, op, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("solver found modes",
		zap.Int("modes", set.Number()),
		zap.Duration("elapsed", time.Since(start)))
	if set.Saturated() {
		s.logger.Warn("solver reached the maximum number of modes",
			zap.Int("n_modes_max", opts.NModesMax))
	}

	s.op = op
	if !opts.Discard {
		s.modes = set
		s.logger.Debug("mode set cached")
	}
	return set, nil
}

// extract keeps the eigenpairs whose β lies strictly inside the guided band
// (k0·n_min, k0·n_max), in decreasing order of β.
func (s *Solver) extract(ctx context.Context, op *operator.Operator, opts SolveOptions) (*ModeSet, error) {
	k := opts.NModesMax
	if k > op.Dim() {
		k = op.Dim()
	}
	res, err := eigen.Largest(ctx, op, k, s.eigenOpts)
	if err != nil {
		return nil, fmt.Errorf("mode extraction: %w", err)
	}
	s.logger.Debug("eigen solve done",
		zap.String("method", res.Method),
		zap.Int("iterations", res.Iterations))

	lo, hi := GuidedBand(s.wavelength, s.profile)
	b := newBuilder(s.wavelength, s.profile, opts.Curvature)
	np := s.profile.NPoints()
	for i, lambda := range res.Values {
		if lambda <= lo*lo || lambda >= hi*hi {
			continue
		}
		b.add(complex(math.Sqrt(lambda), 0), normalize(res.Vectors[i], np))
	}
	return b.build(b.set.Number() == len(res.Values)), nil
}

// GuidedBand returns the bounds k0·n_min and k0·n_max of a guided β.
func GuidedBand(wavelength float64, p fiber.IndexProfile) (lo, hi float64) {
	k0 := operator.Wavenumber(wavelength)
	nmin, nmax := fiber.MinMax(p)
	return k0 * nmin, k0 * nmax
}

// normalize scales v to unit 2-norm and fixes its global phase so the center
// pixel (or the peak pixel, when the center is negligible) is real positive.
func normalize(v []float64, np int) []complex128 {
	var norm, peak float64
	ipeak := 0
	for i, f := range v {
		norm += f * f
		if math.Abs(f) > peak {
			peak, ipeak = math.Abs(f), i
		}
	}
	norm = math.Sqrt(norm)

	ref := (np/2)*np + np/2
	if math.Abs(v[ref]) < 1e-8*peak {
		ref = ipeak
	}
	phase := complex(1/norm, 0)
	if v[ref] != 0 {
		z := complex(v[ref], 0)
		phase *= cmplx.Conj(z) / complex(cmplx.Abs(z), 0)
	}
	out := make([]complex128, len(v))
	for i, f := range v {
		out[i] = complex(f, 0) * phase
	}
	return out
}
