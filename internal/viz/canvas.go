package viz

import "strings"

// Braille cells pack 2x4 sub-pixels per terminal character, offset from
// U+2800. Dot bit layout:
//
//	1 4
//	2 5
//	3 6
//	7 8
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-pixel drawing surface. Coordinates passed to Set
// and DrawLine are sub-pixels: (Cols*2) x (Rows*4).
type Canvas struct {
	Cols, Rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{Cols: cols, Rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

// PixelSize returns the drawable area in sub-pixels.
func (c *Canvas) PixelSize() (w, h int) {
	return c.Cols * 2, c.Rows * 4
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Cols || row >= c.Rows {
		return
	}
	c.cells[row*c.Cols+col] |= brailleBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = 0x2800
	}
}

// DrawLine rasterizes a sub-pixel line with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
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
	b.Grow((c.Cols + 1) * c.Rows)
	for row := 0; row < c.Rows; row++ {
		b.WriteString(string(c.cells[row*c.Cols : (row+1)*c.Cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
