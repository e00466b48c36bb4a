package eigen

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/operator"
)

func stepOperator(t testing.TB, np int, curvature *float64) *operator.Operator {
	t.Helper()
	g, err := fiber.NewStepIndex(fiber.Params{Radius: 4, NA: 0.2, N1: 1.45, NPoints: np, AreaSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	op, err := operator.Build(operator.Config{Wavelength: 1, Profile: g, Curvature: curvature})
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func residual(op *operator.Operator, lambda float64, v []float64) float64 {
	x := make([]complex128, len(v))
	for i, f := range v {
		x[i] = complex(f, 0)
	}
	hx := make([]complex128, len(v))
	op.MulVec(hx, x)
	num, den := 0.0, 0.0
	for i := range x {
		d := hx[i] - complex(lambda, 0)*x[i]
		num += real(d * cmplx.Conj(d))
		den += v[i] * v[i]
	}
	return math.Sqrt(num / den)
}

func TestDenseDescendingEigenpairs(t *testing.T) {
	op := stepOperator(t, 12, nil)
	res, err := Dense(op, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Values) != 4 || len(res.Vectors) != 4 {
		t.Fatalf("expected 4 pairs, got %d", len(res.Values))
	}
	for i := 1; i < len(res.Values); i++ {
		if res.Values[i] > res.Values[i-1] {
			t.Errorf("values not descending: %v", res.Values)
		}
	}
	for i, v := range res.Vectors {
		if r := residual(op, res.Values[i], v); r > 1e-8 {
			t.Errorf("pair %d: residual %.3g", i, r)
		}
	}
}

func TestLanczosMatchesDense(t *testing.T) {
	radius := 60.0
	tests := []struct {
		name      string
		curvature *float64
	}{
		{"straight", nil},
		{"bent", &radius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := stepOperator(t, 20, tt.curvature)
			want, err := Dense(op, 3)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Lanczos(context.Background(), op, 3, Options{Tolerance: 1e-11})
			if err != nil {
				t.Fatal(err)
			}
			for i := range want.Values {
				if math.Abs(got.Values[i]-want.Values[i]) > 1e-8*math.Abs(want.Values[i]) {
					t.Errorf("value %d: lanczos %.12f, dense %.12f", i, got.Values[i], want.Values[i])
				}
				if r := residual(op, got.Values[i], got.Vectors[i]); r > 1e-6 {
					t.Errorf("pair %d: residual %.3g", i, r)
				}
			}
			if got.Method != "lanczos" || got.Iterations == 0 {
				t.Errorf("unexpected result metadata: %s %d", got.Method, got.Iterations)
			}
		})
	}
}

func TestLargestSelectsMethod(t *testing.T) {
	op := stepOperator(t, 10, nil)
	res, err := Largest(context.Background(), op, 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != "dense" {
		t.Errorf("expected dense for dim %d, got %s", op.Dim(), res.Method)
	}
	res, err = Largest(context.Background(), op, 2, Options{DenseLimit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != "lanczos" {
		t.Errorf("expected lanczos, got %s", res.Method)
	}
}

func TestLanczosNotConverged(t *testing.T) {
	op := stepOperator(t, 24, nil)
	_, err := Lanczos(context.Background(), op, 3, Options{MaxKrylov: 4, Tolerance: 1e-15})
	if !errors.Is(err, ErrNotConverged) {
		t.Errorf("expected ErrNotConverged, got %v", err)
	}
}

func TestLanczosCanceled(t *testing.T) {
	op := stepOperator(t, 16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Lanczos(ctx, op, 2, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRejectsComplexOperator(t *testing.T) {
	diag := []complex128{1, complex(2, 0.5), 3, 4}
	op, err := operator.New(2, map[int][]complex128{0: diag}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Dense(op, 1); !errors.Is(err, ErrComplexOperator) {
		t.Errorf("expected ErrComplexOperator, got %v", err)
	}
}

func TestInvalidCount(t *testing.T) {
	op := stepOperator(t, 6, nil)
	if _, err := Dense(op, 0); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := Lanczos(context.Background(), op, -1, Options{}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
}

func BenchmarkLanczos(b *testing.B) {
	op := stepOperator(b, 40, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Lanczos(context.Background(), op, 4, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
