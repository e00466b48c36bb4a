// Package sweep solves one fiber at several wavelengths in parallel.
package sweep

import (
	"context"
	"errors"
	"math"
	"runtime"
	"time"

	"github.com/san-kum/fibermodes/internal/eigen"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoWavelengths indicates an empty sweep.
var ErrNoWavelengths = errors.New("sweep: no wavelengths given")

// PointError wraps a solve failure with the wavelength it happened at.
type PointError struct {
	Wavelength float64
	Wrapped    error
}

func (e *PointError) Error() string {
	return e.Wrapped.Error()
}

func (e *PointError) Unwrap() error {
	return e.Wrapped
}

// Point is the result at one wavelength.
type Point struct {
	Wavelength float64
	Modes      *modes.ModeSet
	Elapsed    time.Duration
}

type Sweep struct {
	profile   fiber.IndexProfile
	opts      modes.SolveOptions
	eigenOpts eigen.Options
	workers   int
	logger    *zap.Logger
}

// New prepares a sweep over profile. A nil logger discards log output.
func New(profile fiber.IndexProfile, opts modes.SolveOptions, logger *zap.Logger) *Sweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweep{profile: profile, opts: opts, workers: runtime.NumCPU(), logger: logger}
}

// WithWorkers bounds the number of concurrent solves.
func (s *Sweep) WithWorkers(n int) *Sweep {
	if n > 0 {
		s.workers = n
	}
	return s
}

func (s *Sweep) WithEigenOptions(o eigen.Options) *Sweep {
	s.eigenOpts = o
	return s
}

// Run solves every wavelength with its own Solver. Results keep the input
// order; the first failure cancels the remaining solves.
func (s *Sweep) Run(ctx context.Context, wavelengths []float64) ([]Point, error) {
	if len(wavelengths) == 0 {
		return nil, ErrNoWavelengths
	}
	points := make([]Point, len(wavelengths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, wl := range wavelengths {
		g.Go(func() error {
			solver := modes.NewSolver(s.logger.With(zap.Float64("wavelength", wl)))
			solver.SetIndexProfile(s.profile)
			solver.SetWavelength(wl)
			solver.SetEigenOptions(s.eigenOpts)

			opts := s.opts
			opts.Discard = true
			start := time.Now()
			set, err := solver.Solve(gctx, opts)
			if err != nil {
				return &PointError{Wavelength: wl, Wrapped: err}
			}
			points[i] = Point{Wavelength: wl, Modes: set, Elapsed: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// EffectiveIndices returns n_eff of mode index i at every point, NaN where
// fewer modes were found.
func EffectiveIndices(points []Point, i int) []float64 {
	out := make([]float64, len(points))
	for j, p := range points {
		if p.Modes == nil || i >= p.Modes.Number() {
			out[j] = math.NaN()
			continue
		}
		out[j] = p.Modes.EffectiveIndex(i)
	}
	return out
}
