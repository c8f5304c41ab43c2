package demo

import (
	"image"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/grid"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
)

// Paint draws with the left button and erases with the right. Dragging
// fills every cell between two motion samples, so fast strokes stay solid.
type Paint struct {
	grid.BaseHandler

	Theme     palette.Theme
	Color     palette.Color
	Animation anim.Spec

	button input.Button
	last   image.Point
}

func NewPaint(th palette.Theme, spec anim.Spec) *Paint {
	return &Paint{Theme: th, Color: th.Cell, Animation: spec}
}

func (p *Paint) OnPointerDown(c grid.Canvas, x, y int, b input.Button) {
	if b != input.ButtonLeft && b != input.ButtonRight {
		return
	}
	p.button = b
	p.last = image.Pt(x, y)
	p.apply(c, x, y)
}

func (p *Paint) OnPointerUp(_ grid.Canvas, _, _ int, b input.Button) {
	if b == p.button {
		p.button = input.ButtonNone
	}
}

func (p *Paint) OnPointerMoved(c grid.Canvas, x, y int) {
	if p.button == input.ButtonNone {
		return
	}
	for _, pt := range Line(p.last, image.Pt(x, y))[1:] {
		p.apply(c, pt.X, pt.Y)
	}
	p.last = image.Pt(x, y)
}

// OnKeyDown: 0 picks the theme cell color, 1-6 the accents, c clears.
func (p *Paint) OnKeyDown(c grid.Canvas, k input.Key) {
	switch {
	case k == "c":
		c.Clear()
	case k == "0":
		p.Color = p.Theme.Cell
	case len(k) == 1 && k[0] >= '1' && k[0] <= '9':
		accents := p.Theme.Accents()
		if i := int(k[0] - '1'); i < len(accents) {
			p.Color = accents[i]
		}
	}
}

func (p *Paint) apply(c grid.Canvas, x, y int) {
	switch p.button {
	case input.ButtonLeft:
		if cur, ok := c.Cell(x, y, false); ok && cur == p.Color {
			return
		}
		c.DrawCell(x, y, p.Color, p.Animation)
	case input.ButtonRight:
		c.EraseCell(x, y, p.Animation)
	}
}

// Line returns the cells from a to b inclusive, stepping one cell at a time.
func Line(a, b image.Point) []image.Point {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy

	pts := make([]image.Point, 0, max(dx, -dy)+1)
	for p := a; ; {
		pts = append(pts, p)
		if p == b {
			return pts
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
