package fiber

import (
	"fmt"
	"math"
)

// Params describes a circular-core fiber.
type Params struct {
	Radius   float64 // core radius, microns
	NA       float64 // numerical aperture
	N1       float64 // index on axis
	Alpha    float64 // GRIN power-law exponent, 2 for parabolic
	NPoints  int
	AreaSize float64 // side of the observation window, microns
}

// CladdingIndex returns n2 = sqrt(n1² - NA²).
func (p Params) CladdingIndex() float64 {
	return math.Sqrt(p.N1*p.N1 - p.NA*p.NA)
}

// Delta returns the relative index difference (n1² - n2²)/(2 n1²).
func (p Params) Delta() float64 {
	return p.NA * p.NA / (2 * p.N1 * p.N1)
}

func (p Params) validate() error {
	if p.Radius <= 0 {
		return fmt.Errorf("%w: radius %.4g", ErrParameterBounds, p.Radius)
	}
	if p.NA <= 0 || p.NA >= p.N1 {
		return fmt.Errorf("%w: NA %.4g with n1 %.4g", ErrParameterBounds, p.NA, p.N1)
	}
	return nil
}

// NewStepIndex samples a step-index fiber: n1 inside the core, n2 outside.
func NewStepIndex(p Params) (*Grid, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	n2 := p.CladdingIndex()
	return NewGrid(p.NPoints, p.AreaSize, func(x, y float64) float64 {
		if math.Hypot(x, y) <= p.Radius {
			return p.N1
		}
		return n2
	})
}

// NewGRIN samples a graded-index fiber with n(r) = n1·sqrt(1 - 2Δ(r/a)^alpha)
// in the core and n2 in the cladding.
func NewGRIN(p Params) (*Grid, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	alpha := p.Alpha
	if alpha <= 0 {
		alpha = 2
	}
	n2 := p.CladdingIndex()
	delta := p.Delta()
	return NewGrid(p.NPoints, p.AreaSize, func(x, y float64) float64 {
		r := math.Hypot(x, y)
		if r > p.Radius {
			return n2
		}
		return p.N1 * math.Sqrt(1-2*delta*math.Pow(r/p.Radius, alpha))
	})
}
