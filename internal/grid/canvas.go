package grid

import (
	"time"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/sched"
)

// Canvas is the drawing surface handed to collaborators.
type Canvas interface {
	// DrawCell colors a cell. An optional animation spec is honoured only
	// where animations are allowed.
	DrawCell(x, y int, c palette.Color, spec ...anim.Spec)
	// EraseCell removes a cell. Erasing an empty cell does nothing.
	EraseCell(x, y int, spec ...anim.Spec)
	// Cell looks a cell up. With useBackground, empty cells report the
	// background color and true.
	Cell(x, y int, useBackground bool) (palette.Color, bool)
	Clear()
	Background() palette.Color
	SetTickDuration(d time.Duration)
	StartTicking(threaded bool)
	StopTicking()
}

// Strategy names the draw path a Canvas uses.
type Strategy int

const (
	// Threadless paints immediately on the render goroutine and may animate.
	Threadless Strategy = iota
	// Threaded is the worker's path: store writes plus queued paints.
	Threaded
	// Mixed paints immediately on the render goroutine while a worker runs.
	// Animations are off so nothing animated races the worker's writes.
	Mixed
)

func (s Strategy) String() string {
	switch s {
	case Threaded:
		return "threaded"
	case Mixed:
		return "mixed"
	}
	return "threadless"
}

func specOf(spec []anim.Spec) anim.Spec {
	if len(spec) == 0 {
		return anim.Spec{}
	}
	return spec[0]
}

// shared holds what every strategy does the same way.
type shared struct{ e *Engine }

func (s shared) Cell(x, y int, useBackground bool) (palette.Color, bool) {
	if c, ok := s.e.store.Get(x, y); ok {
		return c, true
	}
	if useBackground {
		return s.e.bg, true
	}
	return palette.Color{}, false
}

func (s shared) Background() palette.Color { return s.e.bg }

func (s shared) SetTickDuration(d time.Duration) { s.e.sched.SetDuration(d) }

func (s shared) StopTicking() { s.e.sched.Stop() }

type threadlessCanvas struct{ shared }

func (c threadlessCanvas) DrawCell(x, y int, col palette.Color, spec ...anim.Spec) {
	c.e.anims.Animate(x, y, col, specOf(spec), false)
}

func (c threadlessCanvas) EraseCell(x, y int, spec ...anim.Spec) {
	if _, ok := c.e.store.Get(x, y); !ok && !c.e.anims.Active(x, y) {
		return
	}
	c.e.anims.Animate(x, y, c.e.bg, specOf(spec), true)
}

func (c threadlessCanvas) Clear() {
	c.e.anims.Reset()
	c.e.store.Clear()
	c.e.redraw()
}

func (c threadlessCanvas) StartTicking(threaded bool) { c.e.startTicking(threaded) }

type mixedCanvas struct{ shared }

func (c mixedCanvas) DrawCell(x, y int, col palette.Color, _ ...anim.Spec) {
	c.e.store.Set(x, y, col)
	c.e.screen.PaintCell(x, y, col)
}

func (c mixedCanvas) EraseCell(x, y int, _ ...anim.Spec) {
	if _, ok := c.e.store.Get(x, y); !ok {
		return
	}
	c.e.store.Remove(x, y)
	c.e.screen.PaintCell(x, y, c.e.bg)
}

// Clear also drops queued worker draws; they describe cells that are gone.
func (c mixedCanvas) Clear() {
	c.e.sched.Discard()
	c.e.store.Clear()
	c.e.redraw()
}

func (c mixedCanvas) StartTicking(threaded bool) { c.e.startTicking(threaded) }

// workerCanvas is used by OnTick on the worker goroutine. It never touches
// the framebuffer.
type workerCanvas struct{ shared }

func (c workerCanvas) DrawCell(x, y int, col palette.Color, _ ...anim.Spec) {
	c.e.store.Set(x, y, col)
	if c.e.zone.Load().Contains(x, y) {
		c.e.sched.Enqueue(sched.Op{Kind: sched.Paint, X: x, Y: y, Color: col})
	}
}

func (c workerCanvas) EraseCell(x, y int, _ ...anim.Spec) {
	if _, ok := c.e.store.Get(x, y); !ok {
		return
	}
	c.e.store.Remove(x, y)
	if c.e.zone.Load().Contains(x, y) {
		c.e.sched.Enqueue(sched.Op{Kind: sched.Erase, X: x, Y: y})
	}
}

func (c workerCanvas) Clear() {
	c.e.store.Clear()
	c.e.sched.Enqueue(sched.Op{Kind: sched.Redraw})
}

// StartTicking from inside a tick is meaningless: ticking is already on.
func (c workerCanvas) StartTicking(bool) {}
