package analytic

import (
	"errors"
	"math"
	"testing"
)

func TestVNumberAndEstimates(t *testing.T) {
	tests := []struct {
		name     string
		wl, a    float64
		na       float64
		wantGRIN int
		wantSI   int
	}{
		{"V=2", 2 * math.Pi, 2, 1, 1, 2},
		{"V=4", 2 * math.Pi, 4, 1, 4, 8},
		{"V=10", 2 * math.Pi, 10, 1, 25, 50},
		{"non-integral", 2 * math.Pi, 3, 1, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateNumModesGRIN(tt.wl, tt.a, tt.na); got != tt.wantGRIN {
				t.Errorf("GRIN: got %d, want %d", got, tt.wantGRIN)
			}
			if got := EstimateNumModesSI(tt.wl, tt.a, tt.na); got != tt.wantSI {
				t.Errorf("SI: got %d, want %d", got, tt.wantSI)
			}
		})
	}
}

func TestStepIndexIsTwiceGRINForIntegralQuarterSquare(t *testing.T) {
	for _, a := range []float64{2, 4, 6, 8} {
		g := EstimateNumModesGRIN(2*math.Pi, a, 1)
		s := EstimateNumModesSI(2*math.Pi, a, 1)
		if s != 2*g {
			t.Errorf("a=%g: SI %d != 2 x GRIN %d", a, s, g)
		}
	}
}

func TestVNumber(t *testing.T) {
	v := VNumber(1.55, 25, 0.2)
	want := 2 * math.Pi / 1.55 * 25 * 0.2
	if math.Abs(v-want) > 1e-12 {
		t.Errorf("got %g, want %g", v, want)
	}
}

func TestBesselK(t *testing.T) {
	tests := []struct {
		m    int
		x    float64
		want float64
	}{
		{0, 0.5, 0.9244190712},
		{0, 1, 0.4210244382},
		{0, 2, 0.1138938727},
		{0, 5, 0.0036910983},
		{1, 0.5, 1.656441120},
		{1, 1, 0.6019072302},
		{1, 3, 0.0401564311},
		{2, 1, 1.624838899},
		{3, 2, 0.6473853909},
		{-1, 1, 0.6019072302},
	}
	for _, tt := range tests {
		got := BesselK(tt.m, tt.x)
		if math.Abs(got-tt.want) > 1e-6*tt.want {
			t.Errorf("K_%d(%g) = %.10f, want %.10f", tt.m, tt.x, got, tt.want)
		}
	}
	if !math.IsInf(BesselK(0, 0), 1) {
		t.Error("K_0(0) should be +Inf")
	}
	if !math.IsNaN(BesselK(1, -1)) {
		t.Error("K_1(-1) should be NaN")
	}
}

func TestFundamentalU(t *testing.T) {
	// u approaches (1+√2)V/(1+√2) = V for small V and saturates near 2.405
	if u := FundamentalU(1e-3); math.Abs(u-1e-3) > 1e-6 {
		t.Errorf("small V: got %g", u)
	}
	if u := FundamentalU(100); u < 2.3 || u > 2.5 {
		t.Errorf("large V: got %g, expected close to 2.405", u)
	}
	prev := 0.0
	for v := 0.5; v < 10; v += 0.5 {
		u := FundamentalU(v)
		if u <= prev || u >= v {
			t.Errorf("V=%g: u=%g not increasing and below V", v, u)
		}
		prev = u
	}
}

func TestStepIndexBetaInsideBand(t *testing.T) {
	wl, a, n1, na := 1.55, 5.0, 1.45, 0.1
	k0 := 2 * math.Pi / wl
	n2 := math.Sqrt(n1*n1 - na*na)
	b := StepIndexBeta(wl, a, n1, na)
	if b <= k0*n2 || b >= k0*n1 {
		t.Errorf("beta %g outside (%g, %g)", b, k0*n2, k0*n1)
	}
}

func lp(m int, v float64) LPParams {
	u := FundamentalU(v)
	return LPParams{
		M: m, U: u, W: math.Sqrt(v*v - u*u),
		Radius: 4, NPoints: 31, AreaSize: 20,
	}
}

func TestLPModeProfileNormalized(t *testing.T) {
	p, err := LPModeProfile(lp(0, 2.2))
	if err != nil {
		t.Fatal(err)
	}
	var norm float64
	for _, f := range p.Field {
		norm += f * f
	}
	if math.Abs(norm-1) > 1e-12 {
		t.Errorf("norm %g", norm)
	}
	c := 15*31 + 15
	if p.Field[c] <= 0 {
		t.Errorf("center %g should be positive", p.Field[c])
	}
	if math.Abs(p.X[c]) > 1e-12 || math.Abs(p.Y[c]) > 1e-12 {
		t.Errorf("center at (%g, %g)", p.X[c], p.Y[c])
	}
	if p.X[c+1] <= 0 || p.Y[c+31] <= 0 {
		t.Error("x should grow along columns and y along rows")
	}
}

func TestLPModeProfileFlipsNegativeCenter(t *testing.T) {
	ref, err := LPModeProfile(lp(0, 2.2))
	if err != nil {
		t.Fatal(err)
	}
	params := lp(0, 2.2)
	params.Psi = math.Pi
	p, err := LPModeProfile(params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range p.Field {
		if math.Abs(p.Field[i]-ref.Field[i]) > 1e-12 {
			t.Fatalf("pixel %d: %g, want %g", i, p.Field[i], ref.Field[i])
		}
	}
}

func TestLPModeProfileOddOrderKeepsField(t *testing.T) {
	p, err := LPModeProfile(lp(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	n := 31
	var peak float64
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			f := p.Field[r*n+c]
			peak = math.Max(peak, math.Abs(f))
			// cos(θ) profile is odd in x
			if mirror := p.Field[r*n+(n-1-c)]; math.Abs(f+mirror) > 1e-12 {
				t.Fatalf("(%d,%d): %g vs mirror %g", r, c, f, mirror)
			}
		}
	}
	if peak == 0 {
		t.Error("odd-order profile collapsed to zero")
	}
}

func TestLPModeProfileForFFTAxis(t *testing.T) {
	params := lp(0, 2)
	params.NPoints = 8
	params.ForFFT = true
	p, err := LPModeProfile(params)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.X[0]-(-10+1e-9)) > 1e-12 || math.Abs(p.X[4]-1e-9) > 1e-12 {
		t.Errorf("unexpected FFT axis: %v", p.X[:8])
	}
}

func TestLPModeProfileInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LPParams)
	}{
		{"zero points", func(p *LPParams) { p.NPoints = 0 }},
		{"zero radius", func(p *LPParams) { p.Radius = 0 }},
		{"no cladding", func(p *LPParams) { p.W = 0 }},
		{"vanishing J", func(p *LPParams) { p.M, p.U = 1, 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := lp(0, 2)
			tt.mutate(&p)
			if _, err := LPModeProfile(p); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}

	p := lp(0, 2)
	p.W, p.Infinite = 0, true
	if _, err := LPModeProfile(p); err != nil {
		t.Errorf("infinite profile should not need w: %v", err)
	}
}
