package modes

import (
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/interp"
	"github.com/san-kum/fibermodes/internal/operator"
	"gonum.org/v1/gonum/mat"
)

// Transform describes an optional rigid motion of the mode profiles: a
// rotation by Angle radians about the window center, then a translation by
// Shift = [rows, cols] pixels.
type Transform struct {
	Shift []float64
	Angle *float64
}

func (t Transform) identity() bool { return t.Shift == nil && t.Angle == nil }

func checkPola(npola int) error {
	if npola != 1 && npola != 2 {
		return fmt.Errorf("%w: npola must be 1 or 2, got %d", ErrInvalidArgument, npola)
	}
	return nil
}

// ModeMatrix returns the (npola·npoints²) × (npola·N) matrix whose columns are
// the mode profiles. For npola = 2 the scalar matrix is repeated on the
// block diagonal.
func (s *ModeSet) ModeMatrix(npola int, t Transform) (*mat.CDense, error) {
	if err := checkPola(npola); err != nil {
		return nil, err
	}
	if s.Number() == 0 {
		return nil, ErrNoModes
	}
	if t.Shift != nil && len(t.Shift) != 2 {
		return nil, fmt.Errorf("%w: shift needs 2 components, got %d", ErrInvalidArgument, len(t.Shift))
	}

	var scalar *mat.CDense
	if t.identity() {
		scalar = s.scalarModeMatrix()
	} else {
		var err error
		if scalar, err = s.transformed(t); err != nil {
			return nil, err
		}
	}
	if npola == 1 {
		return cloneC(scalar), nil
	}
	return blockDiag(scalar, npola), nil
}

func (s *ModeSet) transformed(t Transform) (*mat.CDense, error) {
	np := s.profile.NPoints()
	out := mat.NewCDense(np*np, s.Number(), nil)
	re := make([]float64, np*np)
	im := make([]float64, np*np)
	for j, p := range s.profiles {
		for i, v := range p {
			re[i], im[i] = real(v), imag(v)
		}
		fields := [][]float64{re, im}
		for f := range fields {
			var err error
			if t.Angle != nil {
				if fields[f], err = interp.Rotate(fields[f], np, *t.Angle); err != nil {
					return nil, err
				}
			}
			if t.Shift != nil {
				if fields[f], err = interp.Shift(fields[f], np, t.Shift[0], t.Shift[1]); err != nil {
					return nil, err
				}
			}
		}
		for i := range p {
			out.Set(i, j, complex(fields[0][i], fields[1][i]))
		}
	}
	return out, nil
}

func blockDiag(a *mat.CDense, blocks int) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(blocks*r, blocks*c, nil)
	for b := 0; b < blocks; b++ {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out.Set(b*r+i, b*c+j, a.At(i, j))
			}
		}
	}
	return out
}

// NearDegenerate partitions the mode indices into groups of nearly equal β.
// The lowest remaining index seeds a group and collects every remaining mode
// with |β_i - β_seed| <= tol. With sorted set, groups are ordered by
// decreasing Re β of their seed and members by decreasing Re β.
func (s *ModeSet) NearDegenerate(tol float64, sorted bool) [][]int {
	assigned := make([]bool, s.Number())
	var groups [][]int
	for i := range s.betas {
		if assigned[i] {
			continue
		}
		group := []int{i}
		assigned[i] = true
		for j := i + 1; j < s.Number(); j++ {
			if !assigned[j] && cmplx.Abs(s.betas[j]-s.betas[i]) <= tol {
				group = append(group, j)
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	if !sorted {
		return groups
	}

	desc := func(a, b int) bool { return real(s.betas[a]) > real(s.betas[b]) }
	for _, g := range groups {
		sort.SliceStable(g, func(a, b int) bool { return desc(g[a], g[b]) })
	}
	sort.SliceStable(groups, func(a, b int) bool { return desc(groups[a][0], groups[b][0]) })
	return groups
}

// EvolutionOperator returns the (npola·N) × (npola·N) generator B of
// propagation in the mode basis. Without curvature it is diag(β) repeated
// per polarization. With a bend radius R, the first-order perturbation
// -n_min·k0/R · M^H·diag(x)·M is added to each polarization block.
func (s *ModeSet) EvolutionOperator(npola int, curvature *float64) (*mat.CDense, error) {
	if err := checkPola(npola); err != nil {
		return nil, err
	}
	n := s.Number()
	if n == 0 {
		return nil, ErrNoModes
	}
	b := mat.NewCDense(npola*n, npola*n, nil)
	for p := 0; p < npola; p++ {
		for i, beta := range s.betas {
			b.Set(p*n+i, p*n+i, beta)
		}
	}
	if curvature == nil {
		return b, nil
	}
	if s.curvature != nil {
		return nil, ErrCurvatureReapplied
	}
	if *curvature == 0 {
		return nil, fmt.Errorf("%w: bend radius must be non-zero", ErrInvalidArgument)
	}

	a := s.bendCoupling()
	nmin, _ := fiber.MinMax(s.profile)
	c := complex(nmin*operator.Wavenumber(s.wavelength) / *curvature, 0)
	for p := 0; p < npola; p++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				b.Set(p*n+i, p*n+j, b.At(p*n+i, p*n+j)-c*a.At(i, j))
			}
		}
	}
	return b, nil
}

// bendCoupling returns M^H·diag(x)·M for the scalar mode matrix.
func (s *ModeSet) bendCoupling() *mat.CDense {
	m := s.scalarModeMatrix()
	x := s.profile.X()
	dim, n := m.Dims()
	xm := mat.NewCDense(dim, n, nil)
	for i := 0; i < dim; i++ {
		xi := complex(x[i], 0)
		for j := 0; j < n; j++ {
			xm.Set(i, j, xi*m.At(i, j))
		}
	}
	return adjointMul(m, xm)
}

// PropagationMatrix returns exp(i·B·distance) for the evolution operator B.
func (s *ModeSet) PropagationMatrix(distance float64, npola int, curvature *float64) (TransmissionMatrix, error) {
	b, err := s.EvolutionOperator(npola, curvature)
	if err != nil {
		return TransmissionMatrix{}, err
	}
	return TransmissionMatrix{Data: expI(b, distance), NPola: npola}, nil
}
