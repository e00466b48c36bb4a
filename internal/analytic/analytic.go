// Package analytic provides closed-form estimates for weakly guiding fibers:
// V number, mode counts, LP mode profiles and the fundamental mode constant.
package analytic

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/fibermodes/internal/fiber"
)

// ErrInvalidParams indicates LP profile parameters that cannot be evaluated.
var ErrInvalidParams = errors.New("analytic: invalid mode parameters")

// VNumber returns the normalized frequency (2π/wl)·a·NA.
func VNumber(wl, a, na float64) float64 {
	return 2 * math.Pi / wl * a * na
}

// EstimateNumModesGRIN estimates the number of scalar modes of a parabolic
// graded-index fiber as ⌈V²/4⌉.
func EstimateNumModesGRIN(wl, a, na float64) int {
	v := VNumber(wl, a, na)
	return int(math.Ceil(v * v / 4))
}

// EstimateNumModesSI estimates the number of scalar modes of a step-index
// fiber as ⌈V²/2⌉.
func EstimateNumModesSI(wl, a, na float64) int {
	v := VNumber(wl, a, na)
	return int(math.Ceil(v * v / 2))
}

// FundamentalU returns Gloge's approximation of the LP01 core parameter u.
func FundamentalU(v float64) float64 {
	return (1 + math.Sqrt2) * v / (1 + math.Pow(4+v*v*v*v, 0.25))
}

// StepIndexBeta returns the LP01 propagation constant of a step-index fiber
// from the Gloge approximation, in rad/µm.
func StepIndexBeta(wl, a, n1, na float64) float64 {
	k0 := 2 * math.Pi / wl
	u := FundamentalU(VNumber(wl, a, na))
	return math.Sqrt(k0*k0*n1*n1 - u*u/(a*a))
}

// LPParams describes one linearly polarized mode of a step-index fiber.
type LPParams struct {
	M        int     // azimuthal order
	Psi      float64 // azimuthal phase, radians
	U, W     float64 // core and cladding parameters
	Radius   float64 // core radius, microns
	NPoints  int
	AreaSize float64
	// ForFFT samples the axis at i·area/npoints for i in [-npoints/2,
	// npoints/2), placing the origin half a pixel off the window center.
	ForFFT bool
	// Infinite extends the Bessel J solution over the whole window.
	Infinite bool
}

// LPProfile is a sampled LP mode on a row-major npoints × npoints grid.
type LPProfile struct {
	Field []float64
	X, Y  []float64
}

// LPModeProfile samples the field J_m(u·r/a)/J_m(u)·cos(mθ+ψ) in the core
// and K_m(w·r/a)/K_m(w)·cos(mθ+ψ) in the cladding, normalized to unit 2-norm
// and signed so the center pixel is non-negative.
func LPModeProfile(p LPParams) (*LPProfile, error) {
	if p.NPoints < 1 || p.AreaSize <= 0 || p.Radius <= 0 {
		return nil, fmt.Errorf("%w: need npoints >= 1, area > 0, radius > 0", ErrInvalidParams)
	}
	jm := math.Jn(p.M, p.U)
	if jm == 0 {
		return nil, fmt.Errorf("%w: J_%d(u) vanishes at u = %g", ErrInvalidParams, p.M, p.U)
	}
	var km float64
	if !p.Infinite {
		if p.W <= 0 {
			return nil, fmt.Errorf("%w: cladding parameter w must be positive", ErrInvalidParams)
		}
		km = BesselK(p.M, p.W)
	}

	axis := fiber.Linspace(-p.AreaSize/2, p.AreaSize/2, p.NPoints)
	if p.ForFFT {
		for i := range axis {
			axis[i] = (float64(i)-float64(p.NPoints)/2)*p.AreaSize/float64(p.NPoints) + 1e-9
		}
	}

	n := p.NPoints
	out := &LPProfile{
		Field: make([]float64, n*n),
		X:     make([]float64, n*n),
		Y:     make([]float64, n*n),
	}
	var norm float64
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			i := r*n + c
			x, y := axis[c], axis[r]
			out.X[i], out.Y[i] = x, y
			rho := math.Hypot(x, y)
			angular := math.Cos(float64(p.M)*math.Atan2(y, x) + p.Psi)

			var f float64
			if p.Infinite || rho <= p.Radius {
				f = math.Jn(p.M, p.U*rho/p.Radius) / jm * angular
			} else {
				f = BesselK(p.M, p.W*rho/p.Radius) / km * angular
			}
			out.Field[i] = f
			norm += f * f
		}
	}

	scale := 1 / math.Sqrt(norm)
	if out.Field[(n/2)*n+n/2] < 0 {
		scale = -scale
	}
	for i := range out.Field {
		out.Field[i] *= scale
	}
	return out, nil
}
