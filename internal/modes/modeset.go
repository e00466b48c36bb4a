package modes

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/fibermodes/internal/fiber"
	"gonum.org/v1/gonum/mat"
)

// ModeSet is the result of one solve: propagation constants and normalized
// transverse profiles, ordered by decreasing β. It is immutable once built.
type ModeSet struct {
	wavelength float64
	profile    fiber.IndexProfile
	curvature  *float64
	saturated  bool

	betas    []complex128
	profiles [][]complex128
	m, l     []int

	once       sync.Once
	modeMatrix *mat.CDense
}

// Number returns the count of guided modes found.
func (s *ModeSet) Number() int { return len(s.betas) }

// Wavelength returns the wavelength the set was solved at.
func (s *ModeSet) Wavelength() float64 { return s.wavelength }

// IndexProfile returns the index profile the set was solved for.
func (s *ModeSet) IndexProfile() fiber.IndexProfile { return s.profile }

// Curvature returns the bend radius applied during the solve, or nil for a
// straight fiber.
func (s *ModeSet) Curvature() *float64 {
	if s.curvature == nil {
		return nil
	}
	r := *s.curvature
	return &r
}

// Saturated reports whether every requested eigenpair was guided, in which
// case more modes may exist than were returned.
func (s *ModeSet) Saturated() bool { return s.saturated }

// Beta returns the propagation constant of mode i, in rad/µm.
func (s *ModeSet) Beta(i int) complex128 { return s.betas[i] }

// Betas returns a copy of all propagation constants.
func (s *ModeSet) Betas() []complex128 {
	out := make([]complex128, len(s.betas))
	copy(out, s.betas)
	return out
}

// RealBetas returns the real parts of the propagation constants.
func (s *ModeSet) RealBetas() []float64 {
	out := make([]float64, len(s.betas))
	for i, b := range s.betas {
		out[i] = real(b)
	}
	return out
}

// EffectiveIndex returns Re(β_i)/k0.
func (s *ModeSet) EffectiveIndex(i int) float64 {
	return real(s.betas[i]) * s.wavelength / (2 * math.Pi)
}

// Profile returns a copy of the flattened profile of mode i.
func (s *ModeSet) Profile(i int) []complex128 {
	out := make([]complex128, len(s.profiles[i]))
	copy(out, s.profiles[i])
	return out
}

// Labels returns the azimuthal and radial indices of mode i when known.
func (s *ModeSet) Labels(i int) (m, l int, ok bool) {
	if s.m == nil {
		return 0, 0, false
	}
	return s.m[i], s.l[i], true
}

// WithLabels returns a copy of the set carrying LP mode indices.
func (s *ModeSet) WithLabels(m, l []int) (*ModeSet, error) {
	if len(m) != s.Number() || len(l) != s.Number() {
		return nil, fmt.Errorf("%w: need %d labels, got %d and %d", ErrInvalidArgument, s.Number(), len(m), len(l))
	}
	out := &ModeSet{
		wavelength: s.wavelength,
		profile:    s.profile,
		curvature:  s.curvature,
		saturated:  s.saturated,
		betas:      s.betas,
		profiles:   s.profiles,
		m:          append([]int(nil), m...),
		l:          append([]int(nil), l...),
	}
	return out, nil
}

// scalarModeMatrix returns the cached npoints² × N matrix of profiles.
func (s *ModeSet) scalarModeMatrix() *mat.CDense {
	s.once.Do(func() {
		n := s.Number()
		dim := len(s.profiles[0])
		s.modeMatrix = mat.NewCDense(dim, n, nil)
		for j, p := range s.profiles {
			for i, v := range p {
				s.modeMatrix.Set(i, j, v)
			}
		}
	})
	return s.modeMatrix
}

// Restore rebuilds a mode set from persisted propagation constants and
// profiles.
func Restore(wavelength float64, profile fiber.IndexProfile, curvature *float64, betas []complex128, profiles [][]complex128, saturated bool) (*ModeSet, error) {
	if len(betas) != len(profiles) {
		return nil, fmt.Errorf("%w: %d betas for %d profiles", ErrInvalidArgument, len(betas), len(profiles))
	}
	np := profile.NPoints()
	b := newBuilder(wavelength, profile, curvature)
	for i, p := range profiles {
		if len(p) != np*np {
			return nil, fmt.Errorf("%w: profile %d has %d values, want %d", ErrInvalidArgument, i, len(p), np*np)
		}
		b.add(betas[i], append([]complex128(nil), p...))
	}
	return b.build(saturated), nil
}

// builder accumulates modes during a solve.
type builder struct {
	set *ModeSet
}

func newBuilder(wavelength float64, profile fiber.IndexProfile, curvature *float64) *builder {
	var r *float64
	if curvature != nil {
		v := *curvature
		r = &v
	}
	return &builder{set: &ModeSet{wavelength: wavelength, profile: profile, curvature: r}}
}

func (b *builder) add(beta complex128, profile []complex128) {
	b.set.betas = append(b.set.betas, beta)
	b.set.profiles = append(b.set.profiles, profile)
}

func (b *builder) build(saturated bool) *ModeSet {
	b.set.saturated = saturated
	return b.set
}
