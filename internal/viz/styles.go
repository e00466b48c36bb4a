package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cutoffB is the normalized propagation constant below which a mode is
// flagged as weakly guided.
const cutoffB = 0.1

var levels = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// panelStyles are the stats panel styles derived from a theme.
type panelStyles struct {
	label  lipgloss.Style
	value  lipgloss.Style
	metric lipgloss.Style
	accent lipgloss.Style
	subtle lipgloss.Style
	hint   lipgloss.Style
	warn   lipgloss.Style
	pos    lipgloss.Style
	neg    lipgloss.Style
}

func newPanelStyles(t Theme) panelStyles {
	return panelStyles{
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(8),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		metric: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		accent: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		subtle: lipgloss.NewStyle().Foreground(t.Muted),
		hint:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		warn:   lipgloss.NewStyle().Foreground(t.Secondary),
		pos:    lipgloss.NewStyle().Foreground(t.Positive),
		neg:    lipgloss.NewStyle().Foreground(t.Negative),
	}
}

// GuidanceBar draws the normalized propagation constant b in [0, 1]. Modes
// close to cutoff are drawn in the warning color.
func (st panelStyles) GuidanceBar(b float64, width int) string {
	filled := int(math.Round(b * float64(width)))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled)
	rest := st.subtle.Render(strings.Repeat("░", width-filled))
	if b < cutoffB {
		return st.warn.Render(bar) + rest
	}
	return st.metric.Render(bar) + rest
}

// FieldCut renders a line cut through a real field. Glyph height follows
// |v| relative to the peak and color follows the sign.
func (st panelStyles) FieldCut(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		peak = 1
	}

	var out strings.Builder
	for i := 0; i < width; i++ {
		v := values[i*len(values)/width]
		idx := int(math.Abs(v) / peak * float64(len(levels)-1))
		g := string(levels[max(0, min(idx, len(levels)-1))])
		if v < 0 {
			out.WriteString(st.neg.Render(g))
		} else {
			out.WriteString(st.pos.Render(g))
		}
	}
	return out.String()
}

// Rule draws a horizontal divider of the given width.
func (st panelStyles) Rule(width int) string {
	return st.subtle.Render(strings.Repeat("─", max(width, 0)))
}
