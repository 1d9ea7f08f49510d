package viz

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/transform"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid where every cell holds 2x4 braille sub-pixels.
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
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the sub-pixel at (x, y). Out of range coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
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

// Plane maps the XY plane of a bounding box onto a canvas, Y up.
type Plane struct {
	Bounds transform.Box
	W, H   int
}

func NewPlane(bounds transform.Box, c *Canvas) Plane {
	w, h := c.Dots()
	return Plane{Bounds: bounds, W: w, H: h}
}

// Project returns the sub-pixel for p, ignoring its Z coordinate.
func (pl Plane) Project(p mgl64.Vec3) (int, int, bool) {
	size := pl.Bounds.Size()
	if size.X() <= 0 || size.Y() <= 0 {
		return 0, 0, false
	}
	u := (p.X() - pl.Bounds.Min.X()) / size.X()
	v := (pl.Bounds.Max.Y() - p.Y()) / size.Y()
	x := int(u * float64(pl.W-1))
	y := int(v * float64(pl.H-1))
	return x, y, x >= 0 && x < pl.W && y >= 0 && y < pl.H
}

// Polyline projects consecutive points and joins the visible pairs.
func (c *Canvas) Polyline(points []mgl64.Vec3, project func(mgl64.Vec3) (int, int, bool)) {
	var px, py int
	var prev bool
	for _, p := range points {
		x, y, ok := project(p)
		if ok && prev {
			c.DrawLine(px, py, x, y)
		} else if ok {
			c.Set(x, y)
		}
		px, py, prev = x, y, ok
	}
}

// Marker draws a small cross centred on (x, y).
func (c *Canvas) Marker(x, y int) {
	for d := -1; d <= 1; d++ {
		c.Set(x+d, y)
		c.Set(x, y+d)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
