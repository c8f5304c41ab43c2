// Package render keeps a framebuffer in sync with the cell store and the
// viewport.
//
// Zoom and resize repaint everything. A pan scrolls the existing pixels and
// repaints only the columns and rows that moved into view, then restores
// the separator lines: whole lines for the new rows and columns, and for
// every other row or column just the segment crossing the new strip.
package render

import (
	"image"

	"github.com/san-kum/cellgrid/internal/cellstore"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/viewport"
)

// CellSource is the read side of the cell store.
type CellSource interface {
	Row(y, chunkStart, chunkEnd int) []cellstore.Cell
	Column(x, chunkStart, chunkEnd int) []cellstore.Cell
	ChunkSize() int
}

// AxisPatch describes what a pan did along one axis. Start and Span are in
// cells and name the columns (or rows) that were repainted.
type AxisPatch struct {
	Traversed int
	Exposed   int
	Start     int
	Span      int
}

func (p AxisPatch) contains(i int) bool { return i >= p.Start && i < p.Start+p.Span }

type PanResult struct {
	X, Y AxisPatch
	Full bool
}

type Renderer struct {
	fb    *Framebuffer
	vp    *viewport.Viewport
	cells CellSource

	bg   palette.Color
	grid palette.Color
	line palette.Color
}

func New(fb *Framebuffer, vp *viewport.Viewport, cells CellSource, bg, grid palette.Color) *Renderer {
	r := &Renderer{fb: fb, vp: vp, cells: cells}
	r.SetColors(bg, grid)
	return r
}

// SetColors changes background and grid colors. Callers redraw afterwards.
func (r *Renderer) SetColors(bg, grid palette.Color) {
	r.bg, r.grid = bg, grid
	r.refreshLine()
}

// refreshLine pre-blends the grid color so that drawing a line twice gives
// the same pixels as drawing it once.
func (r *Renderer) refreshLine() {
	r.line = palette.Blend(r.bg, r.grid, r.vp.Grid().Alpha)
}

func (r *Renderer) Background() palette.Color   { return r.bg }
func (r *Renderer) Framebuffer() *Framebuffer   { return r.fb }
func (r *Renderer) Viewport() *viewport.Viewport { return r.vp }

// Redraw clears the framebuffer and paints every visible cell and line.
func (r *Renderer) Redraw() {
	r.fb.Resize(r.vp.Width, r.vp.Height)
	r.refreshLine()
	r.fb.Fill(r.fb.Bounds(), r.bg)

	cs := r.cells.ChunkSize()
	c0, c1 := r.vp.ChunkRangeX(cs)
	for y := r.vp.FirstRow; y < r.vp.FirstRow+r.vp.Rows; y++ {
		for _, c := range r.cells.Row(y, c0, c1) {
			r.fill(c.X, c.Y, c.Color)
		}
	}
	if !r.vp.Grid().Visible() {
		return
	}
	for y := r.vp.FirstRow; y < r.vp.FirstRow+r.vp.Rows; y++ {
		r.rowLine(y, 0, r.vp.Width)
	}
	for x := r.vp.FirstColumn; x < r.vp.FirstColumn+r.vp.Columns; x++ {
		r.columnLine(x, 0, r.vp.Height)
	}
}

// Pan patches the framebuffer after the viewport origin moved by (dx, dy)
// whole pixels. The viewport must already hold the new position.
func (r *Renderer) Pan(dx, dy int) PanResult {
	if dx == 0 && dy == 0 {
		return PanResult{}
	}
	w, h := r.vp.Width, r.vp.Height
	if abs(dx) >= w || abs(dy) >= h {
		r.Redraw()
		return PanResult{Full: true}
	}
	r.fb.Scroll(-dx, -dy)

	ox, oy := r.vp.Origin()
	cs := r.vp.CellSize
	res := PanResult{
		X: axisPatch(ox, dx, w, cs),
		Y: axisPatch(oy, dy, h, cs),
	}

	if dx != 0 {
		r.paintColumns(res.X)
	}
	if dy != 0 {
		r.paintRows(res.Y)
	}
	if r.vp.Grid().Visible() {
		r.panLines(res)
	}
	return res
}

// axisPatch computes pan accounting for one axis given the new origin o,
// the delta d and the window extent size.
func axisPatch(o, d, size, cs int) AxisPatch {
	old := o - d
	div := cellstore.FloorDiv
	switch {
	case d > 0:
		start := div(old+size, cs)
		return AxisPatch{
			Traversed: div(o, cs) - div(old, cs),
			Exposed:   div(o+size, cs) - div(old+size, cs),
			Start:     start,
			Span:      div(o+size-1, cs) - start + 1,
		}
	case d < 0:
		start := div(o, cs)
		return AxisPatch{
			Traversed: div(old+size-1, cs) - div(o+size-1, cs),
			Exposed:   div(old-1, cs) - div(o-1, cs),
			Start:     start,
			Span:      div(old-1, cs) - start + 1,
		}
	}
	return AxisPatch{}
}

func (r *Renderer) paintColumns(p AxisPatch) {
	cs := r.vp.CellSize
	x0, _ := r.vp.CellOrigin(p.Start, 0)
	r.fb.Fill(image.Rect(x0, 0, x0+p.Span*cs, r.vp.Height), r.bg)

	c0, c1 := r.vp.ChunkRangeY(r.cells.ChunkSize())
	for x := p.Start; x < p.Start+p.Span; x++ {
		for _, c := range r.cells.Column(x, c0, c1) {
			r.fill(c.X, c.Y, c.Color)
		}
	}
}

func (r *Renderer) paintRows(p AxisPatch) {
	cs := r.vp.CellSize
	_, y0 := r.vp.CellOrigin(0, p.Start)
	r.fb.Fill(image.Rect(0, y0, r.vp.Width, y0+p.Span*cs), r.bg)

	c0, c1 := r.vp.ChunkRangeX(r.cells.ChunkSize())
	for y := p.Start; y < p.Start+p.Span; y++ {
		for _, c := range r.cells.Row(y, c0, c1) {
			r.fill(c.X, c.Y, c.Color)
		}
	}
}

func (r *Renderer) panLines(res PanResult) {
	cs := r.vp.CellSize

	// horizontal: whole lines for new rows, strip segments for the rest
	var sx0, sx1 int
	if res.X.Span > 0 {
		sx0, _ = r.vp.CellOrigin(res.X.Start, 0)
		sx1 = sx0 + res.X.Span*cs
	}
	for y := r.vp.FirstRow; y < r.vp.FirstRow+r.vp.Rows; y++ {
		switch {
		case res.Y.contains(y):
			r.rowLine(y, 0, r.vp.Width)
		case res.X.Span > 0:
			r.rowLine(y, sx0, sx1)
		}
	}

	var sy0, sy1 int
	if res.Y.Span > 0 {
		_, sy0 = r.vp.CellOrigin(0, res.Y.Start)
		sy1 = sy0 + res.Y.Span*cs
	}
	for x := r.vp.FirstColumn; x < r.vp.FirstColumn+r.vp.Columns; x++ {
		switch {
		case res.X.contains(x):
			r.columnLine(x, 0, r.vp.Height)
		case res.Y.Span > 0:
			r.columnLine(x, sy0, sy1)
		}
	}
}

// rowLine draws the bottom separator of row y between pixels x0 and x1.
func (r *Renderer) rowLine(y, x0, x1 int) {
	t := r.vp.Grid().Thickness
	_, top := r.vp.CellOrigin(0, y)
	bottom := top + r.vp.CellSize
	r.fb.Fill(image.Rect(x0, bottom-t, x1, bottom), r.line)
}

// columnLine draws the right separator of column x between pixels y0 and y1.
func (r *Renderer) columnLine(x, y0, y1 int) {
	t := r.vp.Grid().Thickness
	left, _ := r.vp.CellOrigin(x, 0)
	right := left + r.vp.CellSize
	r.fb.Fill(image.Rect(right-t, y0, right, y1), r.line)
}

func (r *Renderer) fill(x, y int, c palette.Color) {
	r.fb.Fill(r.vp.CellRect(x, y), c)
}

// PaintCell draws one cell with its own right and bottom separators.
func (r *Renderer) PaintCell(x, y int, c palette.Color) {
	r.fill(x, y, c)
	r.cellLines(x, y)
}

// PaintInset draws the cell in outer with a centred square of inner whose
// side is frac of the cell size.
func (r *Renderer) PaintInset(x, y int, outer, inner palette.Color, frac float64) {
	rect := r.vp.CellRect(x, y)
	r.fb.Fill(rect, outer)
	cs := r.vp.CellSize
	side := int(float64(cs)*frac + 0.5)
	if side > 0 {
		pad := (cs - side) / 2
		at := rect.Min.Add(image.Pt(pad, pad))
		r.fb.Fill(image.Rectangle{Min: at, Max: at.Add(image.Pt(side, side))}, inner)
	}
	r.cellLines(x, y)
}

func (r *Renderer) cellLines(x, y int) {
	if !r.vp.Grid().Visible() {
		return
	}
	t := r.vp.Grid().Thickness
	rect := r.vp.CellRect(x, y)
	r.fb.Fill(image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y), r.line)
	r.fb.Fill(image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), r.line)
}

// Visible reports whether any pixel of the cell is on screen.
func (r *Renderer) Visible(x, y int) bool {
	return r.vp.CellRect(x, y).Overlaps(r.vp.Bounds())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
