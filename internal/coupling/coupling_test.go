package coupling

import (
	"errors"
	"math/cmplx"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func unitarityError(u *mat.CDense) float64 {
	n, _ := u.Dims()
	var worst float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s complex128
			for k := 0; k < n; k++ {
				s += cmplx.Conj(u.At(k, i)) * u.At(k, j)
			}
			if i == j {
				s--
			}
			if a := cmplx.Abs(s); a > worst {
				worst = a
			}
		}
	}
	return worst
}

func TestHaarUnitary(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{1, 2, 5, 12} {
		if e := unitarityError(HaarUnitary(n, rng)); e > 1e-12 {
			t.Errorf("n=%d: unitarity error %g", n, e)
		}
	}
}

func TestRandomGroupCouplingBlockStructure(t *testing.T) {
	groups := [][]int{{0}, {1, 2}, {3, 5, 4}}
	h, err := RandomGroupCoupling(groups, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if r, c := h.Dims(); r != 6 || c != 6 {
		t.Fatalf("expected 6x6, got %dx%d", r, c)
	}
	if e := unitarityError(h); e > 1e-12 {
		t.Errorf("unitarity error %g", e)
	}

	block := map[int]int{}
	for gi, g := range groups {
		for _, i := range g {
			block[i] = gi
		}
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if block[i] != block[j] && h.At(i, j) != 0 {
				t.Errorf("(%d,%d) couples different groups: %v", i, j, h.At(i, j))
			}
		}
	}
	if cmplx.Abs(h.At(0, 0)) < 1-1e-12 {
		t.Errorf("single-mode group should be a unit phase, got %v", h.At(0, 0))
	}
}

func TestRandomGroupCouplingUncoveredIndicesAreZero(t *testing.T) {
	h, err := RandomGroupCoupling([][]int{{0, 3}}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if h.At(1, i) != 0 || h.At(i, 2) != 0 {
			t.Errorf("index outside groups should stay zero")
		}
	}
}

func TestRandomGroupCouplingDeterministic(t *testing.T) {
	groups := [][]int{{0, 1, 2}}
	a, _ := RandomGroupCoupling(groups, rand.New(rand.NewSource(42)))
	b, _ := RandomGroupCoupling(groups, rand.New(rand.NewSource(42)))
	if !mat.CEqual(a, b) {
		t.Error("same seed should give the same matrix")
	}
}

func TestRandomGroupCouplingErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name   string
		groups [][]int
		want   error
	}{
		{"no groups", nil, ErrNoGroups},
		{"empty group", [][]int{{0}, {}}, ErrNoGroups},
		{"negative", [][]int{{-1, 0}}, ErrBadIndex},
		{"repeated", [][]int{{0, 1}, {1, 2}}, ErrBadIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RandomGroupCoupling(tt.groups, rng); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
