package viz

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/report"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	panelWidth    = 44
	minCanvas     = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Browser is a bubbletea model that steps through the modes of a set.
type Browser struct {
	set       *modes.ModeSet
	groups    [][]int
	groupOf   []int
	neff      []float64
	n1, n2    float64
	cursor    int
	component report.Component
	theme     Theme
	outline   bool
	axes      bool
	showHelp  bool
	width     int
	height    int
	canvas    *Canvas
}

// NewBrowser prepares a browser over set, grouping modes whose propagation
// constants lie within tol of each other.
func NewBrowser(set *modes.ModeSet, tol float64) *Browser {
	groups := set.NearDegenerate(tol, false)
	groupOf := make([]int, set.Number())
	for g, members := range groups {
		for _, i := range members {
			groupOf[i] = g
		}
	}
	neff := make([]float64, set.Number())
	for i := range neff {
		neff[i] = set.EffectiveIndex(i)
	}
	n2, n1 := fiber.MinMax(set.IndexProfile())
	b := &Browser{
		set:     set,
		groups:  groups,
		groupOf: groupOf,
		neff:    neff,
		n1:      n1,
		n2:      n2,
		theme:   Themes[0],
		outline: true,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	b.resize()
	return b
}

// WithTheme selects the colour theme by name.
func (b *Browser) WithTheme(name string) *Browser {
	b.theme = GetTheme(name)
	return b
}

// WithComponent selects the field component drawn first.
func (b *Browser) WithComponent(c report.Component) *Browser {
	b.component = c
	return b
}

func (b *Browser) resize() {
	w := max(minCanvas, b.width-panelWidth-8)
	h := max(minCanvas/2, b.height-4)
	b.canvas = NewCanvas(w, h)
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.resize()
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := b.set.Number()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	}
	if n == 0 {
		return b, nil
	}
	switch msg.String() {
	case "down", "j":
		if b.cursor < n-1 {
			b.cursor++
		}
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "home", "g":
		b.cursor = 0
	case "end", "G":
		b.cursor = max(0, n-1)
	case "n", "tab":
		g := b.groupOf[b.cursor]
		b.cursor = b.groups[(g+1)%len(b.groups)][0]
	case "c":
		b.component = (b.component + 1) % 3
	case "t":
		b.theme = NextTheme(b.theme.Name)
	case "o":
		b.outline = !b.outline
	case "a":
		b.axes = !b.axes
	case "?":
		b.showHelp = !b.showHelp
	}
	return b, nil
}

// Cursor returns the index of the mode on display.
func (b *Browser) Cursor() int { return b.cursor }

func (b *Browser) field() ([]float64, float64) {
	p := b.set.Profile(b.cursor)
	z := make([]float64, len(p))
	scale := 0.0
	for i, v := range p {
		switch b.component {
		case report.Real:
			z[i] = real(v)
		case report.Imag:
			z[i] = imag(v)
		default:
			a := cmplx.Abs(v)
			z[i] = a * a
		}
		scale = math.Max(scale, math.Abs(z[i]))
	}
	return z, scale
}

func (b *Browser) draw() string {
	b.canvas.Clear()
	np := b.set.IndexProfile().NPoints()
	z, scale := b.field()
	b.canvas.DrawField(z, np, scale)
	if b.outline {
		b.canvas.Outline(b.set.IndexProfile().N(), np)
	}
	if b.axes {
		b.canvas.Axes()
	}
	pos := lipgloss.NewStyle().Foreground(b.theme.Positive)
	neg := lipgloss.NewStyle().Foreground(b.theme.Negative)
	if b.component == report.Intensity {
		neg = pos
	}
	return b.canvas.Render(pos, neg)
}

// normalizedB is (n_eff² - n2²)/(n1² - n2²), zero at cutoff and one at the
// core index.
func (b *Browser) normalizedB(i int) float64 {
	d := b.n1*b.n1 - b.n2*b.n2
	if d == 0 {
		return 0
	}
	return (b.neff[i]*b.neff[i] - b.n2*b.n2) / d
}

func (b *Browser) View() string {
	if b.set.Number() == 0 {
		return "no guided modes\n"
	}
	header := lipgloss.NewStyle().Foreground(b.theme.Primary).Bold(true)
	st := newPanelStyles(b.theme)

	i := b.cursor
	title := fmt.Sprintf("MODE %d / %d", i, b.set.Number())
	if m, l, ok := b.set.Labels(i); ok {
		title = fmt.Sprintf("LP%d%d  (%d / %d)", m, l, i, b.set.Number())
	}

	var s strings.Builder
	s.WriteString(header.Render(title) + "\n")
	s.WriteString(st.subtle.Render(fmt.Sprintf("λ = %.4g µm  %s", b.set.Wavelength(), b.component)) + "\n\n")

	beta := b.set.Beta(i)
	s.WriteString(st.label.Render("beta") + st.value.Render(fmt.Sprintf("%.6f rad/µm", real(beta))) + "\n")
	if imag(beta) != 0 {
		s.WriteString(st.label.Render("loss") + st.value.Render(fmt.Sprintf("%.3e rad/µm", imag(beta))) + "\n")
	}
	s.WriteString(st.label.Render("n_eff") + st.metric.Render(fmt.Sprintf("%.6f", b.neff[i])) + "\n")
	nb := b.normalizedB(i)
	s.WriteString(st.label.Render("b") + st.GuidanceBar(nb, 16) + st.value.Render(fmt.Sprintf(" %.3f", nb)) + "\n")

	g := b.groupOf[i]
	members := make([]string, len(b.groups[g]))
	for k, j := range b.groups[g] {
		members[k] = fmt.Sprint(j)
	}
	s.WriteString(st.label.Render("group") + st.accent.Render(fmt.Sprintf("%d", g)) + st.value.Render(" {"+strings.Join(members, ", ")+"}") + "\n")
	if c := b.set.Curvature(); c != nil {
		s.WriteString(st.label.Render("bend") + st.value.Render(fmt.Sprintf("R = %.4g µm", *c)) + "\n")
	}
	if b.set.Saturated() {
		s.WriteString(st.warn.Render("saturated: more modes may exist") + "\n")
	}

	if len(b.neff) > 1 {
		chart := asciigraph.Plot(b.neff, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("n_eff by mode"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	np := b.set.IndexProfile().NPoints()
	z, _ := b.field()
	s.WriteString(st.label.Render("x cut") + st.FieldCut(z[(np/2)*np:(np/2+1)*np], 24) + "\n")

	s.WriteString(helpStyle.Render(st.Rule(30) + "\n" + st.hint.Render("j/k:mode n:group c:component\nt:theme o:outline a:axes ?:help q:quit")))
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(b.draw()), statsStyle.Render(s.String()))
	if b.showHelp {
		return helpText + "\n" + body
	}
	return body
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  j/k, ↑/↓  - Previous/next mode      ║
║  g/G       - First/last mode         ║
║  n, Tab    - Next degenerate group   ║
║  c         - Intensity/real/imag     ║
║  t         - Cycle themes            ║
║  o         - Toggle core outline     ║
║  a         - Toggle axes             ║
║  ?         - Toggle this help        ║
║  q         - Quit                    ║
╚══════════════════════════════════════╝
`

// RunBrowser opens the browser in the alternate screen.
func RunBrowser(set *modes.ModeSet, tol float64, theme string) error {
	if set.Number() == 0 {
		return modes.ErrNoModes
	}
	_, err := tea.NewProgram(NewBrowser(set, tol).WithTheme(theme), tea.WithAltScreen()).Run()
	return err
}
