package render

import (
	"math"
	"strings"

	"glsandbox/internal/scene"
)

const (
	blank = ' '
	ink   = '#'
)

// Canvas is a character grid the wireframe is rasterized into
type Canvas struct {
	cols, rows int
	cells      []rune
}

// NewCanvas allocates a blank canvas; non-positive sizes become 1
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	c := &Canvas{cols: cols, rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Clear blanks every cell
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// At returns the rune in a cell, or blank outside the grid
func (c *Canvas) At(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return blank
	}
	return c.cells[row*c.cols+col]
}

// Set writes r into a cell; out-of-range cells are ignored
func (c *Canvas) Set(col, row int, r rune) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = r
}

// Filled counts non-blank cells
func (c *Canvas) Filled() int {
	n := 0
	for _, r := range c.cells {
		if r != blank {
			n++
		}
	}
	return n
}

// Draw rasterizes every segment of a frame
func (c *Canvas) Draw(frame scene.Frame) {
	for _, s := range frame.Segments {
		c.Line(s.A, s.B)
	}
}

// Line draws a segment given in normalized device coordinates. The part
// outside [-1, 1] on either axis is clipped away.
func (c *Canvas) Line(a, b scene.Vec2) {
	a, b, ok := clip(a, b)
	if !ok {
		return
	}
	x0, y0 := c.toCell(a)
	x1, y1 := c.toCell(b)
	c.bresenham(x0, y0, x1, y1)
}

// String renders the grid as newline-separated rows
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow((c.cols + 1) * c.rows)
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(c.cells[row*c.cols : (row+1)*c.cols]))
	}
	return sb.String()
}

func (c *Canvas) toCell(p scene.Vec2) (int, int) {
	col := (p.X + 1) / 2 * float64(c.cols-1)
	row := (1 - p.Y) / 2 * float64(c.rows-1)
	return int(math.Round(col)), int(math.Round(row))
}

func (c *Canvas) bresenham(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, ink)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clip is Liang-Barsky against the [-1, 1] square
func clip(a, b scene.Vec2) (scene.Vec2, scene.Vec2, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X + 1},
		{dx, 1 - a.X},
		{-dy, a.Y + 1},
		{dy, 1 - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return scene.Vec2{X: a.X + t0*dx, Y: a.Y + t0*dy},
		scene.Vec2{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
