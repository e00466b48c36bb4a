package modes

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// adjointMul returns a^H · b.
func adjointMul(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	_, bc := b.Dims()
	out := mat.NewCDense(ac, bc, nil)
	for i := 0; i < ac; i++ {
		for j := 0; j < bc; j++ {
			var sum complex128
			for k := 0; k < ar; k++ {
				sum += cmplx.Conj(a.At(k, i)) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// cmul returns a · b.
func cmul(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	_, bc := b.Dims()
	out := mat.NewCDense(ar, bc, nil)
	for i := 0; i < ar; i++ {
		for k := 0; k < ac; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < bc; j++ {
				out.Set(i, j, out.At(i, j)+aik*b.At(k, j))
			}
		}
	}
	return out
}

// expI returns exp(i·t·b) through the real embedding
// [[Re C, -Im C], [Im C, Re C]] of C = i·t·b.
func expI(b *mat.CDense, t float64) *mat.CDense {
	n, _ := b.Dims()
	e := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := b.At(i, j)
			re, im := -t*imag(v), t*real(v)
			e.Set(i, j, re)
			e.Set(i+n, j+n, re)
			e.Set(i, j+n, -im)
			e.Set(i+n, j, im)
		}
	}
	var x mat.Dense
	x.Exp(e)

	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(x.At(i, j), x.At(i+n, j)))
		}
	}
	return out
}

// cloneC returns a deep copy of a.
func cloneC(a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}
