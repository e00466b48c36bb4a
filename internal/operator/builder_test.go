package operator

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/fibermodes/internal/fiber"
)

func uniformGrid(t testing.TB, npoints int, n float64) *fiber.Grid {
	t.Helper()
	g, err := fiber.NewGrid(npoints, float64(npoints-1), func(x, y float64) float64 { return n })
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestBuildPreconditions(t *testing.T) {
	g := uniformGrid(t, 5, 1.45)
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no profile", Config{Wavelength: 1}, ErrPrecondition},
		{"no wavelength", Config{Profile: g}, ErrPrecondition},
		{"negative wavelength", Config{Wavelength: -1, Profile: g}, ErrPrecondition},
		{"unknown boundary", Config{Wavelength: 1, Profile: g, Boundary: "open"}, ErrUnknownBoundary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuildCloseStructure(t *testing.T) {
	const np = 5
	g := uniformGrid(t, np, 1.5)
	op, err := Build(Config{Wavelength: 1, Profile: g, Boundary: Close})
	if err != nil {
		t.Fatal(err)
	}

	offs := op.Offsets()
	want := []int{-np, -1, 0, 1, np}
	if len(offs) != len(want) {
		t.Fatalf("expected offsets %v, got %v", want, offs)
	}
	for i := range want {
		if offs[i] != want[i] {
			t.Fatalf("expected offsets %v, got %v", want, offs)
		}
	}

	k0 := Wavenumber(1)
	dh := g.Dh()
	wantMain := -4/(dh*dh) + k0*k0*1.5*1.5
	if math.Abs(real(op.At(7, 7))-wantMain) > 1e-12 {
		t.Errorf("main diagonal: expected %f, got %f", wantMain, real(op.At(7, 7)))
	}

	// no coupling between the end of a row and the start of the next
	if op.At(np-1, np) != 0 || op.At(np, np-1) != 0 {
		t.Error("row-end coupling should be zero for close boundary")
	}
	if op.At(0, 1) != complex(1/(dh*dh), 0) {
		t.Errorf("x coupling: got %v", op.At(0, 1))
	}
	if op.At(0, np) != complex(1/(dh*dh), 0) {
		t.Errorf("y coupling: got %v", op.At(0, np))
	}
	assertSymmetric(t, op)
}

func TestBuildPeriodicStructure(t *testing.T) {
	const np = 6
	g := uniformGrid(t, np, 1.2)
	op, err := Build(Config{Wavelength: 0.8, Profile: g, Boundary: Periodic})
	if err != nil {
		t.Fatal(err)
	}
	if len(op.Offsets()) != 9 {
		t.Fatalf("expected 9 diagonals, got %v", op.Offsets())
	}
	w := complex(1/(g.Dh()*g.Dh()), 0)
	for r := 0; r < np; r++ {
		if op.At(r*np, r*np+np-1) != w {
			t.Errorf("row %d: missing x wrap coupling", r)
		}
	}
	for c := 0; c < np; c++ {
		if op.At(c, (np-1)*np+c) != w {
			t.Errorf("column %d: missing y wrap coupling", c)
		}
	}
	assertSymmetric(t, op)

	// the periodic Laplacian annihilates constants
	ones := make([]complex128, op.Dim())
	for i := range ones {
		ones[i] = 1
	}
	out := make([]complex128, op.Dim())
	op.MulVec(out, ones)
	k0 := Wavenumber(0.8)
	want := k0 * k0 * 1.2 * 1.2
	for i, v := range out {
		if math.Abs(real(v)-want) > 1e-9 {
			t.Fatalf("row %d: expected %f, got %f", i, want, real(v))
		}
	}
}

func TestBuildCurvatureRowScaling(t *testing.T) {
	const np = 7
	g := uniformGrid(t, np, 1.45)
	straight, err := Build(Config{Wavelength: 1, Profile: g})
	if err != nil {
		t.Fatal(err)
	}
	radius := 50.0
	curved, err := Build(Config{Wavelength: 1, Profile: g, Curvature: &radius})
	if err != nil {
		t.Fatal(err)
	}

	if len(curved.Offsets()) != len(straight.Offsets()) || curved.NNZ() != straight.NNZ() {
		t.Fatal("curvature must not change the sparsity structure")
	}
	x := g.X()
	for i := 0; i < curved.Dim(); i++ {
		ct := 1 + 2*x[i]/radius
		for _, j := range []int{i - np, i - 1, i, i + 1, i + np} {
			if j < 0 || j >= curved.Dim() {
				continue
			}
			want := straight.At(i, j) / complex(ct, 0)
			if cmplx.Abs(curved.At(i, j)-want) > 1e-12 {
				t.Fatalf("(%d,%d): expected %v, got %v", i, j, want, curved.At(i, j))
			}
		}
	}
	if curved.Scale() == nil || straight.Scale() != nil {
		t.Error("only the curved operator carries a row scale")
	}
}

func TestBuildCurvatureTooStrong(t *testing.T) {
	g := uniformGrid(t, 9, 1.45)
	radius := 2.0
	if _, err := Build(Config{Wavelength: 1, Profile: g, Curvature: &radius}); !errors.Is(err, ErrCurvatureTooStrong) {
		t.Errorf("expected ErrCurvatureTooStrong, got %v", err)
	}
}

func TestMulVecMatchesAt(t *testing.T) {
	g := uniformGrid(t, 4, 1.3)
	op, err := Build(Config{Wavelength: 1.1, Profile: g, Boundary: Periodic})
	if err != nil {
		t.Fatal(err)
	}
	x := make([]complex128, op.Dim())
	for i := range x {
		x[i] = complex(float64(i%5)-2, float64(i%3))
	}
	got := make([]complex128, op.Dim())
	op.MulVec(got, x)
	for i := 0; i < op.Dim(); i++ {
		var want complex128
		for j := 0; j < op.Dim(); j++ {
			want += op.At(i, j) * x[j]
		}
		if cmplx.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("row %d: expected %v, got %v", i, want, got[i])
		}
	}
	if !op.IsReal() {
		t.Error("operator from a real index field should be real")
	}
}

func TestParseBoundary(t *testing.T) {
	if b, err := ParseBoundary("periodic"); err != nil || b != Periodic {
		t.Errorf("expected periodic, got %v %v", b, err)
	}
	if _, err := ParseBoundary("dirichlet"); !errors.Is(err, ErrUnknownBoundary) {
		t.Errorf("expected ErrUnknownBoundary, got %v", err)
	}
}

func assertSymmetric(t *testing.T, op *Operator) {
	t.Helper()
	for i := 0; i < op.Dim(); i++ {
		for j := i + 1; j < op.Dim(); j++ {
			if op.At(i, j) != op.At(j, i) {
				t.Fatalf("not symmetric at (%d,%d): %v vs %v", i, j, op.At(i, j), op.At(j, i))
			}
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	g := uniformGrid(b, 128, 1.45)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(Config{Wavelength: 1.55, Profile: g}); err != nil {
			b.Fatal(err)
		}
	}
}
