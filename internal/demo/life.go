package demo

import (
	"image"
	"sync"
	"time"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/grid"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
)

// speed is one entry of the digit-selected speed table. Fast speeds keep a
// short delay and run several generations per tick; the odd counts avoid
// the two-step flicker of common oscillators.
type speed struct {
	delay       time.Duration
	generations int
}

var speeds = []speed{
	{time.Second, 1},
	{500 * time.Millisecond, 1},
	{250 * time.Millisecond, 1},
	{100 * time.Millisecond, 1},
	{50 * time.Millisecond, 1},
	{40 * time.Millisecond, 3},
	{40 * time.Millisecond, 5},
	{40 * time.Millisecond, 11},
	{50 * time.Millisecond, 15},
}

const defaultSpeed = 3

// Life runs Conway's game of life. Generations run on the tick worker;
// while paused the left button adds cells and the right removes them.
// Space toggles, 1-9 set the speed, delete resets.
type Life struct {
	grid.BaseHandler

	Color     palette.Color
	Animation anim.Spec
	// Threaded runs generations on the tick worker. Set before Run.
	Threaded  bool

	mu         sync.Mutex
	paused     bool
	held       input.Button
	last       image.Point
	speed      int
	alive      map[image.Point]struct{}
	neighbours map[image.Point]int
	changed    []image.Point
	generation int
}

func NewLife(c palette.Color, spec anim.Spec) *Life {
	l := &Life{Color: c, Animation: spec, speed: defaultSpeed, Threaded: true}
	l.reset()
	return l
}

func (l *Life) reset() {
	l.paused = true
	l.held = input.ButtonNone
	l.alive = make(map[image.Point]struct{})
	l.neighbours = make(map[image.Point]int)
	l.changed = nil
	l.generation = 0
}

// OnStart draws seeded cells.
func (l *Life) OnStart(c grid.Canvas) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c.SetTickDuration(speeds[l.speed].delay)
	for p := range l.alive {
		c.DrawCell(p.X, p.Y, l.Color)
	}
}

func (l *Life) OnPointerDown(c grid.Canvas, x, y int, b input.Button) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held, l.last = b, image.Pt(x, y)
	l.edit(c, l.last)
}

func (l *Life) OnPointerUp(_ grid.Canvas, _, _ int, b input.Button) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b == l.held {
		l.held = input.ButtonNone
	}
}

func (l *Life) OnPointerMoved(c grid.Canvas, x, y int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == input.ButtonNone {
		return
	}
	for _, p := range Line(l.last, image.Pt(x, y))[1:] {
		l.edit(c, p)
	}
	l.last = image.Pt(x, y)
}

func (l *Life) edit(c grid.Canvas, p image.Point) {
	if !l.paused {
		return
	}
	_, on := l.alive[p]
	switch {
	case l.held == input.ButtonLeft && !on:
		l.add(p)
		c.DrawCell(p.X, p.Y, l.Color, l.Animation)
	case l.held == input.ButtonRight && on:
		l.remove(p)
		c.EraseCell(p.X, p.Y, l.Animation)
	}
}

// OnKeyDown never calls into the scheduler with mu held: starting joins a
// stopping worker, which may be waiting for mu in OnTick.
func (l *Life) OnKeyDown(c grid.Canvas, k input.Key) {
	switch {
	case k == "space":
		l.mu.Lock()
		wasPaused := l.paused
		start := wasPaused && len(l.changed) > 0
		if start || !wasPaused {
			l.paused = !wasPaused
		}
		l.mu.Unlock()
		switch {
		case start:
			c.StartTicking(l.Threaded)
		case !wasPaused:
			c.StopTicking()
		}
	case len(k) == 1 && k[0] >= '1' && k[0] <= '9':
		l.mu.Lock()
		l.speed = int(k[0] - '1')
		d := speeds[l.speed].delay
		l.mu.Unlock()
		c.SetTickDuration(d)
	case k == "delete" || k == "backspace":
		l.mu.Lock()
		l.paused = true
		l.mu.Unlock()
		c.StopTicking()
		c.Clear()
		l.mu.Lock()
		l.reset()
		l.mu.Unlock()
	}
}

// OnTick runs on the worker when Threaded.
func (l *Life) OnTick(c grid.Canvas, _ int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}
	for range speeds[l.speed].generations {
		l.step(c)
	}
}

func (l *Life) step(c grid.Canvas) {
	born, died := l.next()
	l.changed = l.changed[:0]
	for _, p := range born {
		l.add(p)
		c.DrawCell(p.X, p.Y, l.Color)
	}
	for _, p := range died {
		l.remove(p)
		c.EraseCell(p.X, p.Y)
	}
	l.generation++
}

// next evaluates only the neighbourhoods of cells that changed last
// generation.
func (l *Life) next() (born, died []image.Point) {
	seen := make(map[image.Point]struct{})
	for _, cp := range l.changed {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				p := image.Pt(cp.X+dx, cp.Y+dy)
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				n := l.neighbours[p]
				if _, on := l.alive[p]; on {
					if n < 2 || n > 3 {
						died = append(died, p)
					}
				} else if n == 3 {
					born = append(born, p)
				}
			}
		}
	}
	return born, died
}

func (l *Life) add(p image.Point) {
	l.alive[p] = struct{}{}
	l.changed = append(l.changed, p)
	l.touch(p, 1)
}

func (l *Life) remove(p image.Point) {
	delete(l.alive, p)
	l.changed = append(l.changed, p)
	l.touch(p, -1)
}

func (l *Life) touch(p image.Point, d int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			q := image.Pt(p.X+dx, p.Y+dy)
			if n := l.neighbours[q] + d; n == 0 {
				delete(l.neighbours, q)
			} else {
				l.neighbours[q] = n
			}
		}
	}
}

// Seed makes cells alive without drawing them.
func (l *Life) Seed(pts ...image.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range pts {
		if _, on := l.alive[p]; !on {
			l.add(p)
		}
	}
}

func (l *Life) Alive() []image.Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	pts := make([]image.Point, 0, len(l.alive))
	for p := range l.alive {
		pts = append(pts, p)
	}
	return pts
}

func (l *Life) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

func (l *Life) Generation() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}
