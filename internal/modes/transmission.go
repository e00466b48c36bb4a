package modes

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// TransmissionMatrix is a propagation matrix in the mode basis. For NPola = 2
// the first half of the columns belongs to the first polarization.
type TransmissionMatrix struct {
	Data  *mat.CDense
	NPola int
}

// PolarizationRotation returns tm with its two polarization column blocks
// rotated by angle radians. A single-polarization matrix is returned as an
// unchanged copy.
func PolarizationRotation(tm TransmissionMatrix, angle float64) TransmissionMatrix {
	out := TransmissionMatrix{Data: cloneC(tm.Data), NPola: tm.NPola}
	if tm.NPola != 2 {
		return out
	}
	sin, cos := math.Sincos(angle)
	s, c := complex(sin, 0), complex(cos, 0)
	rows, cols := tm.Data.Dims()
	half := cols / 2
	for i := 0; i < rows; i++ {
		for j := 0; j < half; j++ {
			p1, p2 := tm.Data.At(i, j), tm.Data.At(i, j+half)
			out.Data.Set(i, j, p1*c+p2*s)
			out.Data.Set(i, j+half, p2*c-p1*s)
		}
	}
	return out
}

// UnitarityError returns the largest entry of |T^H·T - I|.
func (tm TransmissionMatrix) UnitarityError() float64 {
	g := adjointMul(tm.Data, tm.Data)
	n, _ := g.Dims()
	var worst float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := g.At(i, j)
			if i == j {
				d--
			}
			worst = math.Max(worst, cmplx.Abs(d))
		}
	}
	return worst
}

// Size returns the dimension of the square matrix.
func (tm TransmissionMatrix) Size() int {
	n, _ := tm.Data.Dims()
	return n
}

// Couple returns u·T, applying the mode-basis matrix u after propagation. u is
// N×N and acts on each polarization block alike.
func (tm TransmissionMatrix) Couple(u *mat.CDense) (TransmissionMatrix, error) {
	r, c := u.Dims()
	n := tm.Size()
	if tm.NPola == 2 {
		n /= 2
	}
	if r != c || r != n {
		return TransmissionMatrix{}, fmt.Errorf("%w: coupling is %dx%d, want %dx%d", ErrInvalidArgument, r, c, n, n)
	}
	if tm.NPola == 2 {
		u = blockDiag(u, 2)
	}
	return TransmissionMatrix{Data: cmul(u, tm.Data), NPola: tm.NPola}, nil
}
