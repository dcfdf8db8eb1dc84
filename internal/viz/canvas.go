package viz

import (
	"math"
	"strings"
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

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// SetPixel sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// PlotSeries draws values left to right as a polyline scaled to the full
// canvas height, with a dotted zero line when zero is in range.
func (c *Canvas) PlotSeries(values []float64) {
	if len(values) < 2 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}

	w, h := c.Width*2, c.Height*4
	y := func(v float64) int {
		if math.IsNaN(v) {
			v = lo
		}
		v = math.Max(lo, math.Min(hi, v))
		return int(math.Round((hi - v) / (hi - lo) * float64(h-1)))
	}
	if lo < 0 && hi > 0 {
		for x := 0; x < w; x += 3 {
			c.Set(x, y(0))
		}
	}

	px, py := 0, y(values[0])
	for i := 1; i < len(values); i++ {
		x := i * (w - 1) / (len(values) - 1)
		yy := y(values[i])
		c.DrawLine(px, py, x, yy)
		px, py = x, yy
	}
}

// PlotChain draws a chain of nodes between two walls. Node i sits at its
// rest position, offset vertically by u[i*dim] scaled so that amplitude
// fills half the canvas height.
func (c *Canvas) PlotChain(u []float64, dim int, amplitude float64) {
	if dim < 1 || len(u) < dim {
		return
	}
	n := len(u) / dim
	w, h := c.Width*2, c.Height*4
	mid := h / 2
	if amplitude <= 0 {
		amplitude = 1
	}

	for y := mid - 4; y <= mid+4; y++ {
		c.Set(0, y)
		c.Set(w-1, y)
	}

	px, py := 0, mid
	for i := 0; i < n; i++ {
		x := (i + 1) * (w - 1) / (n + 1)
		off := u[i*dim] / amplitude * float64(h/2-1)
		if math.IsNaN(off) {
			off = 0
		}
		y := mid - int(math.Round(math.Max(-float64(mid), math.Min(float64(mid), off))))
		c.DrawLine(px, py, x, y)
		c.Set(x-1, y)
		c.Set(x+1, y)
		c.Set(x, y-1)
		c.Set(x, y+1)
		px, py = x, y
	}
	c.DrawLine(px, py, w-1, mid)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
