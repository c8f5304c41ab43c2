package grid

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/cellstore"
	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/pan"
	"github.com/san-kum/cellgrid/internal/render"
	"github.com/san-kum/cellgrid/internal/sched"
	"github.com/san-kum/cellgrid/internal/viewport"
)

// Engine is the grid. It also implements Canvas for use on the render
// goroutine, dispatching to the strategy that fits the scheduler state.
type Engine struct {
	opts    Options
	handler Handler
	clock   clock.Clock

	store *cellstore.Store
	vp    *viewport.Viewport
	fb    *render.Framebuffer
	rend  *render.Renderer
	anims *anim.Engine
	pan   *pan.Controller
	sched *sched.Scheduler

	screen     painter
	threadless threadlessCanvas
	mixed      mixedCanvas
	worker     workerCanvas

	// zone is written by the render goroutine and read by the worker.
	zone atomic.Pointer[viewport.Zone]

	bg    palette.Color
	dirty bool

	pointerX, pointerY int
	moved              bool
	lastCell           image.Point
	hasLastCell        bool

	frame   int
	started bool
	quit    bool
	closed  bool
}

func New(h Handler, opts Options) (*Engine, error) {
	if h == nil {
		return nil, ErrNoHandler
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	vp, err := viewport.New(opts.viewportConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	e := &Engine{
		opts:    opts,
		handler: h,
		clock:   opts.Clock,
		store:   cellstore.New(opts.ChunkSize),
		vp:      vp,
		fb:      render.NewFramebuffer(vp.Width, vp.Height),
		bg:      opts.Background,
	}
	e.rend = render.New(e.fb, vp, e.store, opts.Background, opts.GridColor)
	e.screen = painter{e}
	e.anims = anim.New(e.store, e.screen, opts.Background)
	e.pan = pan.New(e)
	e.pan.Friction = opts.Friction
	e.pan.MinVelocity = opts.MinVelocity
	e.threadless = threadlessCanvas{shared{e}}
	e.mixed = mixedCanvas{shared{e}}
	e.worker = workerCanvas{shared{e}}
	e.sched = sched.New(e.onTick, e.onTickEnded,
		sched.WithWorkerTick(e.onWorkerTick),
		sched.WithClock(opts.Clock),
		sched.WithBatchSize(opts.DrawBatch),
		sched.WithDuration(opts.TickDuration),
		sched.WithDiscardOnStop(opts.DiscardOnStop),
		sched.WithFlush(e.flushAnimations),
		sched.WithApply(e.apply),
	)
	e.publishZone()
	return e, nil
}

// painter paints onto the framebuffer, skipping off-screen cells and
// marking the frame dirty.
type painter struct{ e *Engine }

func (p painter) PaintCell(x, y int, c palette.Color) {
	if !p.e.rend.Visible(x, y) {
		return
	}
	p.e.rend.PaintCell(x, y, c)
	p.e.dirty = true
}

func (p painter) PaintInset(x, y int, outer, inner palette.Color, frac float64) {
	if !p.e.rend.Visible(x, y) {
		return
	}
	p.e.rend.PaintInset(x, y, outer, inner, frac)
	p.e.dirty = true
}

func (e *Engine) Options() Options               { return e.opts }
func (e *Engine) Viewport() *viewport.Viewport   { return e.vp }
func (e *Engine) Store() *cellstore.Store        { return e.store }
func (e *Engine) Scheduler() *sched.Scheduler    { return e.sched }
func (e *Engine) Animations() *anim.Engine       { return e.anims }
func (e *Engine) Image() *image.RGBA             { return e.fb.Image() }
func (e *Engine) PanController() *pan.Controller { return e.pan }

// Strategy returns the draw path used on the render goroutine right now.
func (e *Engine) Strategy() Strategy {
	if e.sched.Threaded() {
		return Mixed
	}
	return Threadless
}

func (e *Engine) canvas() Canvas {
	if e.Strategy() == Mixed {
		return e.mixed
	}
	return e.threadless
}

func (e *Engine) DrawCell(x, y int, c palette.Color, spec ...anim.Spec) {
	e.canvas().DrawCell(x, y, c, spec...)
}

func (e *Engine) EraseCell(x, y int, spec ...anim.Spec) { e.canvas().EraseCell(x, y, spec...) }

func (e *Engine) Cell(x, y int, useBackground bool) (palette.Color, bool) {
	return e.threadless.Cell(x, y, useBackground)
}

func (e *Engine) Clear()                          { e.canvas().Clear() }
func (e *Engine) Background() palette.Color       { return e.bg }
func (e *Engine) SetTickDuration(d time.Duration) { e.sched.SetDuration(d) }
func (e *Engine) StartTicking(threaded bool)      { e.startTicking(threaded) }
func (e *Engine) StopTicking()                    { e.sched.Stop() }

func (e *Engine) startTicking(threaded bool) {
	Logger().Info("grid: ticking", "threaded", threaded, "duration", e.sched.Duration())
	e.sched.Start(threaded)
}

func (e *Engine) onTick(n int)       { e.handler.OnTick(e.threadless, n) }
func (e *Engine) onWorkerTick(n int) { e.handler.OnTick(e.worker, n) }

func (e *Engine) onTickEnded() {
	Logger().Info("grid: ticking ended", "ticks", e.sched.Ticks())
	e.handler.OnTickEnded(e.canvas())
}

func (e *Engine) flushAnimations() {
	if n := e.anims.FlushAll(); n > 0 {
		Logger().Debug("grid: flushed animations", "count", n)
	}
}

// Start draws the first frame and calls OnStart. Run calls it; drive it
// directly together with Frame when not using a Backend.
func (e *Engine) Start() {
	if e.started {
		return
	}
	e.started = true
	e.rend.Redraw()
	e.dirty = true
	Logger().Info("grid: start", "width", e.vp.Width, "height", e.vp.Height, "cell_size", e.vp.CellSize)
	e.handler.OnStart(e.threadless)
}

// HandleEvent applies one input event. Pointer motion is only recorded
// here; Frame processes it once per frame.
func (e *Engine) HandleEvent(ev input.Event) {
	switch ev.Kind {
	case input.PointerDown:
		e.pointerDown(ev.X, ev.Y, ev.Button)
	case input.PointerUp:
		e.pointerUp(ev.X, ev.Y, ev.Button)
	case input.PointerMove:
		e.pointerX, e.pointerY = ev.X, ev.Y
		e.moved = true
	case input.Scroll:
		if !e.opts.AllowZoom || ev.Wheel == 0 {
			return
		}
		if ev.Wheel > 0 {
			e.pan.ZoomIn(ev.X, ev.Y)
		} else {
			e.pan.ZoomOut(ev.X, ev.Y)
		}
	case input.KeyDown:
		e.handler.OnKeyDown(e.canvas(), ev.Key)
	case input.KeyUp:
		e.handler.OnKeyUp(e.canvas(), ev.Key)
	case input.Resize:
		if err := e.Resize(ev.Width, ev.Height); err != nil {
			Logger().Warn("grid: resize ignored", "err", err)
		}
	case input.Expose:
		e.dirty = true
	case input.Close:
		e.quit = true
	}
}

func (e *Engine) pointerDown(x, y int, b input.Button) {
	if b == e.opts.PanButton && e.opts.AllowPan {
		e.pointerX, e.pointerY = x, y
		e.pan.Begin(x, y, e.clock.Now())
		return
	}
	cx, cy := e.vp.CellAtPoint(x, y)
	e.handler.OnPointerDown(e.canvas(), cx, cy, b)
}

func (e *Engine) pointerUp(x, y int, b input.Button) {
	if b == e.opts.PanButton && e.opts.AllowPan {
		moving := e.moved
		e.handleMotion()
		e.pan.End(moving)
		return
	}
	cx, cy := e.vp.CellAtPoint(x, y)
	e.handler.OnPointerUp(e.canvas(), cx, cy, b)
}

// handleMotion consumes the latest pointer position of this frame.
func (e *Engine) handleMotion() {
	if !e.moved {
		return
	}
	e.moved = false
	if e.pan.Panning() {
		e.pan.Drag(e.pointerX, e.pointerY, e.clock.Now())
		return
	}
	cx, cy := e.vp.CellAtPoint(e.pointerX, e.pointerY)
	cell := image.Pt(cx, cy)
	if e.hasLastCell && cell == e.lastCell {
		return
	}
	e.lastCell, e.hasLastCell = cell, true
	e.handler.OnPointerMoved(e.canvas(), cx, cy)
}

// Pan moves the view by a pixel amount and patches the framebuffer.
func (e *Engine) Pan(dx, dy float64) {
	ox, oy := e.vp.Shift(dx, dy)
	if ox == 0 && oy == 0 {
		return
	}
	if res := e.rend.Pan(ox, oy); res.Full {
		Logger().Debug("grid: pan redraw", "dx", ox, "dy", oy)
	}
	e.publishZone()
	e.dirty = true
	// the cell under a resting pointer changed
	if !e.pan.Panning() {
		e.moved = true
	}
}

// Zoom rescales around a screen point and redraws everything.
func (e *Engine) Zoom(x, y int, factor float64) bool {
	if !e.vp.Zoom(x, y, factor) {
		return false
	}
	Logger().Debug("grid: zoom", "cell_size", e.vp.CellSize, "x", x, "y", y)
	e.redraw()
	e.publishZone()
	return true
}

func (e *Engine) Resize(w, h int) error {
	if !e.opts.AllowResize {
		return nil
	}
	if err := e.vp.Resize(w, h); err != nil {
		return err
	}
	Logger().Debug("grid: resize", "width", w, "height", h)
	e.redraw()
	e.publishZone()
	return nil
}

// SetColors changes the background and grid colors and redraws.
func (e *Engine) SetColors(bg, grid palette.Color) {
	e.bg = bg
	e.rend.SetColors(bg, grid)
	e.anims.SetBackground(bg)
	e.redraw()
}

func (e *Engine) redraw() {
	e.rend.Redraw()
	e.dirty = true
}

func (e *Engine) publishZone() {
	z := e.vp.RenderZone()
	e.zone.Store(&z)
}

// TakeDirty reports whether the framebuffer changed since the last call.
func (e *Engine) TakeDirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}

// Quit reports whether a close event arrived.
func (e *Engine) Quit() bool { return e.quit }

// apply paints a queued worker draw. Paints and erases repaint the cell
// from the store, which render-side draws may have changed since the op
// was queued.
func (e *Engine) apply(op sched.Op) {
	switch op.Kind {
	case sched.Paint, sched.Erase:
		c, ok := e.store.Get(op.X, op.Y)
		if !ok {
			c = e.bg
		}
		e.screen.PaintCell(op.X, op.Y, c)
	case sched.Redraw:
		e.redraw()
	}
}

// Frame advances the engine by dt: pointer motion, coasting, animations,
// queued worker draws and the tick cadence, in that order.
func (e *Engine) Frame(dt time.Duration) FrameStats {
	start := e.clock.Now()
	e.frame++

	e.handleMotion()
	e.pan.Coast(dt.Seconds())
	e.anims.Step(dt)

	drained := 0
	if e.sched.Pending() > 0 {
		budget := e.opts.FrameDelta() * 9 / 10
		drained = e.sched.Drain(start.Add(budget), e.apply)
		Logger().Debug("grid: drained queued draws", "count", drained, "pending", e.sched.Pending())
	}
	e.sched.Update(dt)

	st := FrameStats{
		Frame:      e.frame,
		Delta:      dt,
		Elapsed:    e.clock.Now().Sub(start),
		Drained:    drained,
		Pending:    e.sched.Pending(),
		Animations: e.anims.Len(),
		Ticks:      e.sched.Ticks(),
		Changed:    e.dirty,
	}
	if e.opts.Observer != nil {
		e.opts.Observer.ObserveFrame(st)
	}
	return st
}

// Run opens the backend and runs frames at the configured rate until the
// window closes or ctx is done. A running worker is joined before Run
// returns.
func (e *Engine) Run(ctx context.Context, b Backend) (err error) {
	if e.closed {
		return ErrClosed
	}
	if err := b.Open(e.vp.Width, e.vp.Height, e.opts.Title, e.opts.AllowResize); err != nil {
		return &BackendError{Op: "open", Wrapped: err}
	}
	defer func() {
		e.Close()
		if cerr := b.Close(); cerr != nil && err == nil {
			err = &BackendError{Op: "close", Frame: e.frame, Wrapped: cerr}
		}
	}()

	e.Start()
	ticker := time.NewTicker(e.opts.FrameDelta())
	defer ticker.Stop()

	last := e.clock.Now()
	for {
		events, err := b.Poll()
		if err != nil {
			return &BackendError{Op: "poll", Frame: e.frame, Wrapped: err}
		}
		for _, ev := range events {
			e.HandleEvent(ev)
		}
		if e.quit {
			Logger().Info("grid: window closed", "frames", e.frame)
			return nil
		}

		now := e.clock.Now()
		e.Frame(now.Sub(last))
		last = now

		if err := b.Present(e.fb.Image(), e.TakeDirty()); err != nil {
			return &BackendError{Op: "present", Frame: e.frame, Wrapped: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops ticking and waits for a running worker. OnTickEnded is not
// called.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.sched.Close()
	Logger().Info("grid: closed", "frames", e.frame, slog.Int64("ticks", e.sched.Ticks()))
}
