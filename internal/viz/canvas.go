package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// bayer holds ordered-dither thresholds, scaled to (0, 1) on use.
var bayer = [4][4]float64{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	// Sign accumulates the sign of the field under each cell.
	Sign [][]float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Sign:   make([][]float64, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Sign[i] = make([]float64, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
			c.Sign[i][j] = 0
		}
	}
}

// side is the edge of the square drawing area in sub-pixels.
func (c *Canvas) side() int {
	return min(c.Width*2, c.Height*4)
}

// sample maps a sub-pixel to a grid sample of an np×np field. Row 0 of the
// canvas is the top of the window, the largest y.
func (c *Canvas) sample(x, y, np int) int {
	s := c.side()
	col := x * np / s
	row := np - 1 - y*np/s
	return row*np + col
}

// DrawField dithers |z|/scale onto the canvas. z is row-major np×np.
func (c *Canvas) DrawField(z []float64, np int, scale float64) {
	if scale <= 0 || np == 0 {
		return
	}
	s := c.side()
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			v := z[c.sample(x, y, np)]
			level := math.Abs(v) / scale
			if level > (bayer[y%4][x%4]+0.5)/16 {
				c.Set(x, y)
				c.Sign[y/4][x/2] += v
			}
		}
	}
}

// Outline marks sub-pixels where the index field changes value between
// neighbouring samples.
func (c *Canvas) Outline(n []float64, np int) {
	s := c.side()
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			i := c.sample(x, y, np)
			if x+1 < s && n[c.sample(x+1, y, np)] != n[i] {
				c.Set(x, y)
			}
			if y+1 < s && n[c.sample(x, y+1, np)] != n[i] {
				c.Set(x, y)
			}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Axes draws the x and y axes through the window centre.
func (c *Canvas) Axes() {
	s := c.side()
	c.DrawLine(0, s/2, s-1, s/2)
	c.DrawLine(s/2, 0, s/2, s-1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colours each cell by the sign of the field drawn under it.
func (c *Canvas) Render(pos, neg lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			switch {
			case c.Sign[i][j] > 0:
				b.WriteString(pos.Render(string(r)))
			case c.Sign[i][j] < 0:
				b.WriteString(neg.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
