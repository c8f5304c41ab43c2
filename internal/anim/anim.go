// Package anim runs per-cell color transitions on the render goroutine.
//
// A cell has at most one animation. While it runs, the store holds the
// color the cell is currently showing; when it finishes the store holds
// the target (or the cell is removed for animated erases).
package anim

import (
	"fmt"
	"time"

	"github.com/san-kum/cellgrid/internal/palette"
)

type Kind int

const (
	None Kind = iota
	Fade
	GrowIn
	GrowOut
)

var kindNames = map[Kind]string{
	None:    "none",
	Fade:    "fade",
	GrowIn:  "grow_in",
	GrowOut: "grow_out",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("anim: unknown animation kind %q", s)
}

// Spec selects how a draw is animated.
type Spec struct {
	Kind     Kind
	Duration time.Duration
}

func (s Spec) Immediate() bool { return s.Kind == None || s.Duration <= 0 }

// Cells is the store the engine commits to.
type Cells interface {
	Get(x, y int) (palette.Color, bool)
	Set(x, y int, c palette.Color)
	Remove(x, y int)
}

// Painter draws animation frames.
type Painter interface {
	PaintCell(x, y int, c palette.Color)
	PaintInset(x, y int, outer, inner palette.Color, frac float64)
}

type key struct{ x, y int }

// Record is the state of one running transition.
type Record struct {
	X, Y             int
	Kind             Kind
	Original         palette.Color
	Current          palette.Color
	Target           palette.Color
	Elapsed          time.Duration
	Duration         time.Duration
	DeleteOnComplete bool
}

func (r *Record) progress() float64 {
	if r.Duration <= 0 {
		return 1
	}
	return min(1, float64(r.Elapsed)/float64(r.Duration))
}

type Engine struct {
	cells   Cells
	painter Painter
	bg      palette.Color

	byCell map[key]*Record
	order  []*Record
}

func New(cells Cells, painter Painter, background palette.Color) *Engine {
	return &Engine{
		cells:   cells,
		painter: painter,
		bg:      background,
		byCell:  make(map[key]*Record),
	}
}

func (e *Engine) SetBackground(c palette.Color) { e.bg = c }

func (e *Engine) Len() int { return len(e.byCell) }

func (e *Engine) Active(x, y int) bool {
	_, ok := e.byCell[key{x, y}]
	return ok
}

// Get returns the record for a cell, if any.
func (e *Engine) Get(x, y int) (Record, bool) {
	r, ok := e.byCell[key{x, y}]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Animate moves (x, y) towards target. Requesting the in-flight original
// again cancels the transition and commits at once; any other retarget
// restarts from the color currently shown.
func (e *Engine) Animate(x, y int, target palette.Color, spec Spec, deleteOnComplete bool) {
	k := key{x, y}
	if r, ok := e.byCell[k]; ok {
		if target == r.Original || spec.Immediate() {
			e.drop(k)
			e.commit(x, y, target, deleteOnComplete)
			return
		}
		r.Original = r.Current
		r.Target = target
		r.Kind = spec.Kind
		r.Elapsed = 0
		r.Duration = spec.Duration
		r.DeleteOnComplete = deleteOnComplete
		return
	}

	current, ok := e.cells.Get(x, y)
	if !ok {
		current = e.bg
	}
	if spec.Immediate() || current == target {
		e.commit(x, y, target, deleteOnComplete)
		return
	}
	r := &Record{
		X: x, Y: y,
		Kind:             spec.Kind,
		Original:         current,
		Current:          current,
		Target:           target,
		Duration:         spec.Duration,
		DeleteOnComplete: deleteOnComplete,
	}
	e.byCell[k] = r
	e.order = append(e.order, r)
}

// Cancel drops the animation on (x, y) without committing anything.
func (e *Engine) Cancel(x, y int) bool {
	return e.drop(key{x, y})
}

// Step advances every animation by dt in creation order.
func (e *Engine) Step(dt time.Duration) {
	if len(e.order) == 0 {
		return
	}
	live := e.order[:0]
	for _, r := range e.order {
		if e.byCell[key{r.X, r.Y}] != r {
			continue
		}
		r.Elapsed += dt
		p := r.progress()
		if p >= 1 {
			delete(e.byCell, key{r.X, r.Y})
			e.commit(r.X, r.Y, r.Target, r.DeleteOnComplete)
			continue
		}
		e.frame(r, p)
		live = append(live, r)
	}
	clear(e.order[len(live):])
	e.order = live
}

func (e *Engine) frame(r *Record, p float64) {
	switch r.Kind {
	case GrowIn:
		r.Current = dominant(r.Original, r.Target, p)
		e.painter.PaintInset(r.X, r.Y, r.Original, r.Target, p)
	case GrowOut:
		r.Current = dominant(r.Original, r.Target, p)
		e.painter.PaintInset(r.X, r.Y, r.Target, r.Original, 1-p)
	default:
		r.Current = palette.Mix(r.Original, r.Target, p)
		e.painter.PaintCell(r.X, r.Y, r.Current)
	}
	e.cells.Set(r.X, r.Y, r.Current)
}

// dominant is the color covering most of a grow frame.
func dominant(orig, target palette.Color, p float64) palette.Color {
	if p < 0.5 {
		return orig
	}
	return target
}

// FlushAll resolves every animation to its terminal state and returns how
// many there were.
func (e *Engine) FlushAll() int {
	n := len(e.byCell)
	for _, r := range e.order {
		if e.byCell[key{r.X, r.Y}] != r {
			continue
		}
		e.commit(r.X, r.Y, r.Target, r.DeleteOnComplete)
	}
	e.Reset()
	return n
}

// Reset forgets every animation without touching the store.
func (e *Engine) Reset() {
	clear(e.byCell)
	clear(e.order)
	e.order = e.order[:0]
}

func (e *Engine) drop(k key) bool {
	if _, ok := e.byCell[k]; !ok {
		return false
	}
	delete(e.byCell, k)
	return true
}

func (e *Engine) commit(x, y int, target palette.Color, remove bool) {
	if remove {
		e.cells.Remove(x, y)
		e.painter.PaintCell(x, y, e.bg)
		return
	}
	e.cells.Set(x, y, target)
	e.painter.PaintCell(x, y, target)
}
