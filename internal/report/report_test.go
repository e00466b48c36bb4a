package report

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fibermodes/internal/analysis"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/sweep"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func gaussianSet(t *testing.T, wl float64) *modes.ModeSet {
	t.Helper()
	g, err := fiber.NewStepIndex(fiber.Params{Radius: 3, NA: 0.1, N1: 1.45, NPoints: 16, AreaSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	np := g.NPoints()
	x, y := g.X(), g.Y()
	even := make([]complex128, np*np)
	odd := make([]complex128, np*np)
	for i := range even {
		r2 := x[i]*x[i] + y[i]*y[i]
		even[i] = complex(math.Exp(-r2/4), 0)
		odd[i] = complex(x[i]*math.Exp(-r2/4), 0)
	}
	k0 := 2 * math.Pi / wl
	set, err := modes.Restore(wl, g, nil,
		[]complex128{complex(1.449*k0, 0), complex(1.447*k0, 0)},
		[][]complex128{even, odd}, false)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestParseComponent(t *testing.T) {
	tests := []struct {
		in   string
		want Component
	}{
		{"", Intensity},
		{"intensity", Intensity},
		{"real", Real},
		{"im", Imag},
	}
	for _, tt := range tests {
		got, err := ParseComponent(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseComponent(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseComponent("phase"); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestComponent(t *testing.T) {
	v := []complex128{complex(3, 4), complex(-1, 2)}
	if got := component(v, Intensity); got[0] != 25 || got[1] != 5 {
		t.Errorf("intensity %v", got)
	}
	if got := component(v, Real); got[1] != -1 {
		t.Errorf("real %v", got)
	}
	if got := component(v, Imag); got[0] != 4 {
		t.Errorf("imag %v", got)
	}
}

func TestFieldLayout(t *testing.T) {
	set := gaussianSet(t, 1.55)
	g := set.IndexProfile()
	f := newField(g, g.X())
	c, r := f.Dims()
	if c != 16 || r != 16 {
		t.Fatalf("dims %d×%d", c, r)
	}
	if f.Z(3, 7) != f.X(3) {
		t.Errorf("z along columns should follow x: %v vs %v", f.Z(3, 7), f.X(3))
	}
	if f.Y(0) != -6 || math.Abs(f.X(15)-6) > 1e-12 {
		t.Errorf("axis ends %v %v", f.Y(0), f.X(15))
	}
}

func TestModeHeatMapPNG(t *testing.T) {
	set := gaussianSet(t, 1.55)
	for _, c := range []Component{Intensity, Real, Imag} {
		p, err := ModeHeatMap(set, 1, c)
		if err != nil {
			t.Fatalf("%v: %v", c, err)
		}
		var buf bytes.Buffer
		if err := WritePNG(p, &buf); err != nil {
			t.Fatalf("%v: %v", c, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("%v: output is not a PNG", c)
		}
	}
}

func TestModeHeatMapIndex(t *testing.T) {
	set := gaussianSet(t, 1.55)
	if _, err := ModeHeatMap(set, 2, Intensity); !errors.Is(err, ErrModeIndex) {
		t.Errorf("expected ErrModeIndex, got %v", err)
	}
	if _, err := ModeHeatMap(set, -1, Intensity); !errors.Is(err, ErrModeIndex) {
		t.Errorf("expected ErrModeIndex, got %v", err)
	}
}

func TestModeHeatMapLabels(t *testing.T) {
	set, err := gaussianSet(t, 1.55).WithLabels([]int{0, 1}, []int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	p, err := ModeHeatMap(set, 1, Intensity)
	if err != nil {
		t.Fatal(err)
	}
	if want := "LP11"; len(p.Title.Text) < 4 || p.Title.Text[:4] != want {
		t.Errorf("title %q should start with %s", p.Title.Text, want)
	}
}

func TestIndexHeatMapSave(t *testing.T) {
	set := gaussianSet(t, 1.55)
	path := filepath.Join(t.TempDir(), "index.png")
	if err := Save(IndexHeatMap(set.IndexProfile()), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("saved file is not a PNG")
	}
}

func TestDispersionPlot(t *testing.T) {
	points := []sweep.Point{
		{Wavelength: 1.5, Modes: gaussianSet(t, 1.5)},
		{Wavelength: 1.55, Modes: gaussianSet(t, 1.55)},
		{Wavelength: 1.6, Modes: nil},
	}
	p, err := DispersionPlot(points, 3)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WritePNG(p, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}

	if _, err := DispersionPlot(nil, 2); !errors.Is(err, ErrNoPoints) {
		t.Errorf("expected ErrNoPoints, got %v", err)
	}
	if _, err := DispersionPlot(points[2:], 2); !errors.Is(err, ErrNoPoints) {
		t.Errorf("expected ErrNoPoints for empty curves, got %v", err)
	}
}

func TestFarFieldHeatMap(t *testing.T) {
	set := gaussianSet(t, 1.55)
	g := set.IndexProfile()
	ff, err := analysis.NewFarField(set.Profile(0), g.NPoints(), g.Dh(), set.Wavelength(), 2)
	if err != nil {
		t.Fatal(err)
	}
	p := FarFieldHeatMap(ff, "far field")
	if p.X.Label.Text != "sin θx" {
		t.Errorf("unexpected axis label %q", p.X.Label.Text)
	}
	var buf bytes.Buffer
	if err := WritePNG(p, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}
