package sched

import (
	"sync"

	"github.com/san-kum/cellgrid/internal/palette"
)

type OpKind uint8

const (
	// Paint draws Color at X, Y.
	Paint OpKind = iota
	// Erase draws the background at X, Y.
	Erase
	// Redraw repaints the whole view from the store.
	Redraw
)

// Op is one queued framebuffer update produced by a worker tick.
type Op struct {
	Kind  OpKind
	X, Y  int
	Color palette.Color
}

// OpPool recycles queue backing arrays between ticks.
type OpPool struct {
	pool sync.Pool
	size int
}

func NewOpPool(capacity int) *OpPool {
	p := &OpPool{size: capacity}
	p.pool.New = func() any {
		s := make([]Op, 0, p.size)
		return &s
	}
	return p
}

func (p *OpPool) Get() []Op {
	return (*p.pool.Get().(*[]Op))[:0]
}

func (p *OpPool) Put(s []Op) {
	if cap(s) == 0 {
		return
	}
	s = s[:0]
	p.pool.Put(&s)
}
