// Package report renders mode profiles, index profiles and dispersion curves
// as PNG figures.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/san-kum/fibermodes/internal/analysis"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/sweep"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	ErrModeIndex        = errors.New("report: mode index out of range")
	ErrNoPoints         = errors.New("report: nothing to plot")
	ErrUnknownComponent = errors.New("report: unknown component")
)

// Component selects the scalar quantity drawn from a complex profile.
type Component int

const (
	Intensity Component = iota
	Real
	Imag
)

func (c Component) String() string {
	switch c {
	case Real:
		return "real"
	case Imag:
		return "imag"
	default:
		return "intensity"
	}
}

// ParseComponent maps "intensity", "real" or "imag" to a Component.
func ParseComponent(s string) (Component, error) {
	switch s {
	case "", "intensity", "abs2":
		return Intensity, nil
	case "real", "re":
		return Real, nil
	case "imag", "im":
		return Imag, nil
	}
	return Intensity, fmt.Errorf("%w: %q", ErrUnknownComponent, s)
}

const (
	paletteSize = 255
	figureSize  = 12 * vg.Centimeter
)

// field adapts a row-major square sample to plotter.GridXYZ. Column c runs
// along x and row r along y.
type field struct {
	np   int
	axis []float64
	z    []float64
}

func newField(p fiber.IndexProfile, z []float64) *field {
	np := p.NPoints()
	x := p.X()
	return &field{np: np, axis: x[:np], z: z}
}

func (f *field) Dims() (c, r int)   { return f.np, f.np }
func (f *field) Z(c, r int) float64 { return f.z[r*f.np+c] }
func (f *field) X(c int) float64    { return f.axis[c] }
func (f *field) Y(r int) float64    { return f.axis[r] }

func component(v []complex128, c Component) []float64 {
	out := make([]float64, len(v))
	for i, z := range v {
		switch c {
		case Real:
			out[i] = real(z)
		case Imag:
			out[i] = imag(z)
		default:
			a := cmplx.Abs(z)
			out[i] = a * a
		}
	}
	return out
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func heatPlot(title string, f *field, pal palette.Palette, lo, hi float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (µm)"
	p.Y.Label.Text = "y (µm)"

	hm := plotter.NewHeatMap(f, pal)
	if hi > lo {
		hm.Min, hm.Max = lo, hi
	}
	p.Add(hm)
	return p
}

// ModeHeatMap draws one component of mode i. Signed components use a
// diverging map centred on zero.
func ModeHeatMap(set *modes.ModeSet, i int, c Component) (*plot.Plot, error) {
	if i < 0 || i >= set.Number() {
		return nil, fmt.Errorf("%w: %d of %d", ErrModeIndex, i, set.Number())
	}
	z := component(set.Profile(i), c)
	f := newField(set.IndexProfile(), z)

	title := fmt.Sprintf("mode %d (%s), n_eff = %.6f", i, c, set.EffectiveIndex(i))
	if m, l, ok := set.Labels(i); ok {
		title = fmt.Sprintf("LP%d%d (%s), n_eff = %.6f", m, l, c, set.EffectiveIndex(i))
	}

	if c == Intensity {
		lo, hi := minMax(z)
		return heatPlot(title, f, palette.Heat(paletteSize, 1), lo, hi), nil
	}
	m := maxAbs(z)
	if m == 0 {
		m = 1
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(1)
	cmap.SetMin(-1)
	return heatPlot(title, f, cmap.Palette(paletteSize), -m, m), nil
}

// IndexHeatMap draws the refractive index profile.
func IndexHeatMap(p fiber.IndexProfile) *plot.Plot {
	lo, hi := fiber.MinMax(p)
	cmap := moreland.Kindlmann()
	cmap.SetMax(1)
	cmap.SetMin(0)
	return heatPlot("refractive index", newField(p, p.N()), cmap.Palette(paletteSize), lo, hi)
}

// FarFieldHeatMap draws a far-field intensity against direction sines.
func FarFieldHeatMap(ff *analysis.FarField, title string) *plot.Plot {
	p := heatPlot(title, &field{np: ff.N, axis: ff.Sin, z: ff.Intensity}, palette.Heat(paletteSize, 1), 0, 1)
	p.X.Label.Text = "sin θx"
	p.Y.Label.Text = "sin θy"
	return p
}

// DispersionPlot draws the effective index of the first n modes against
// wavelength. Points where a mode was not found are skipped.
func DispersionPlot(points []sweep.Point, n int) (*plot.Plot, error) {
	if len(points) == 0 || n <= 0 {
		return nil, ErrNoPoints
	}
	p := plot.New()
	p.Title.Text = "effective index"
	p.X.Label.Text = "wavelength (µm)"
	p.Y.Label.Text = "n_eff"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i := 0; i < n; i++ {
		neff := sweep.EffectiveIndices(points, i)
		xys := make(plotter.XYs, 0, len(points))
		for k, pt := range points {
			if math.IsNaN(neff[k]) {
				continue
			}
			xys = append(xys, plotter.XY{X: pt.Wavelength, Y: neff[k]})
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotColors[i%len(plotColors)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("mode %d", i), line)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoPoints
	}
	return p, nil
}

var plotColors = palette.Rainbow(8, palette.Red, palette.Magenta, 0.8, 0.8, 1).Colors()

// Save writes p as an image, the format taken from the file extension.
func Save(p *plot.Plot, path string) error {
	return p.Save(figureSize, figureSize, path)
}

// WritePNG encodes p as PNG into w.
func WritePNG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(figureSize, figureSize, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
