package grid

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/backend/headless"
	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/sched"
)

var (
	red  = palette.RGB(224, 108, 117)
	blue = palette.RGB(97, 175, 239)
	fade = anim.Spec{Kind: anim.Fade, Duration: 100 * time.Millisecond}
)

// recorder is a Handler that remembers every callback. Tick callbacks may
// run on the worker, so everything is behind mu.
type recorder struct {
	BaseHandler

	mu      sync.Mutex
	started int
	ended   int
	ticks   []int
	moved   []image.Point
	downs   []image.Point
	ups     []image.Point
	keys    []input.Key

	tick func(c Canvas, n int)
	down func(c Canvas, x, y int)
}

func (r *recorder) OnStart(Canvas) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recorder) OnTick(c Canvas, n int) {
	r.mu.Lock()
	r.ticks = append(r.ticks, n)
	fn := r.tick
	r.mu.Unlock()
	if fn != nil {
		fn(c, n)
	}
}

func (r *recorder) OnTickEnded(Canvas) {
	r.mu.Lock()
	r.ended++
	r.mu.Unlock()
}

func (r *recorder) OnPointerDown(c Canvas, x, y int, _ input.Button) {
	r.mu.Lock()
	r.downs = append(r.downs, image.Pt(x, y))
	r.mu.Unlock()
	if r.down != nil {
		r.down(c, x, y)
	}
}

func (r *recorder) OnPointerUp(_ Canvas, x, y int, _ input.Button) {
	r.mu.Lock()
	r.ups = append(r.ups, image.Pt(x, y))
	r.mu.Unlock()
}

func (r *recorder) OnPointerMoved(_ Canvas, x, y int) {
	r.mu.Lock()
	r.moved = append(r.moved, image.Pt(x, y))
	r.mu.Unlock()
}

func (r *recorder) OnKeyDown(_ Canvas, k input.Key) {
	r.mu.Lock()
	r.keys = append(r.keys, k)
	r.mu.Unlock()
}

func (r *recorder) tickCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

func (r *recorder) endedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

func (r *recorder) movedCells() []image.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]image.Point(nil), r.moved...)
}

type failingBackend struct{ headless.Backend }

func (*failingBackend) Open(int, int, string, bool) error { return errors.New("no display") }

var _ = Describe("Engine", func() {
	var (
		m *clock.Mock
		r *recorder
		e *Engine
	)

	// pixel returns the color inside cell (cx, cy) with the view at the
	// origin and 40px cells.
	pixel := func(cx, cy int) color.RGBA {
		return e.Image().RGBAAt(cx*40+5, cy*40+5)
	}

	cellAt := func(x, y int) palette.Color {
		c, _ := e.Cell(x, y, false)
		return c
	}

	// pump runs frames until cond holds.
	pump := func(cond func() bool) {
		Eventually(func() bool {
			e.Frame(time.Millisecond)
			return cond()
		}, 2*time.Second, time.Millisecond).Should(BeTrue())
	}

	BeforeEach(func() {
		m = clock.NewMock(time.Unix(1000, 0))
		r = &recorder{}
		opts := DefaultOptions()
		opts.Width, opts.Height = 800, 600
		opts.Clock = m
		opts.TickDuration = 100 * time.Millisecond

		var err error
		e, err = New(r, opts)
		Expect(err).NotTo(HaveOccurred())
		e.Start()
		e.TakeDirty()
	})

	AfterEach(func() {
		e.Close()
	})

	It("calls OnStart once and paints the background", func() {
		e.Start()
		Expect(r.started).To(Equal(1))
		Expect(pixel(3, 3)).To(Equal(e.Background().RGBA()))
	})

	Describe("threadless drawing", func() {
		It("paints immediate draws at once", func() {
			e.DrawCell(1, 2, red)
			Expect(pixel(1, 2)).To(Equal(red.RGBA()))
			Expect(cellAt(1, 2)).To(Equal(red))
			Expect(e.TakeDirty()).To(BeTrue())
		})

		It("reports the background for empty cells only when asked", func() {
			c, ok := e.Cell(7, 7, false)
			Expect(ok).To(BeFalse())
			Expect(c).To(Equal(palette.Color{}))
			c, ok = e.Cell(7, 7, true)
			Expect(ok).To(BeTrue())
			Expect(c).To(Equal(e.Background()))
		})

		It("ignores erasing an empty cell", func() {
			e.EraseCell(3, 3)
			Expect(e.TakeDirty()).To(BeFalse())
			Expect(e.Store().Len()).To(BeZero())
		})

		It("replaces an in-flight animation and lands exactly on the new target", func() {
			e.DrawCell(5, 5, blue, fade)
			e.Frame(40 * time.Millisecond)
			mid, ok := e.Cell(5, 5, false)
			Expect(ok).To(BeTrue())
			Expect(mid).NotTo(Equal(blue))

			e.DrawCell(5, 5, red, fade)
			rec, ok := e.Animations().Get(5, 5)
			Expect(ok).To(BeTrue())
			Expect(rec.Original).To(Equal(mid))
			Expect(rec.Target).To(Equal(red))

			e.Frame(100 * time.Millisecond)
			Expect(e.Animations().Len()).To(BeZero())
			Expect(cellAt(5, 5)).To(Equal(red))
			Expect(pixel(5, 5)).To(Equal(red.RGBA()))
		})

		It("removes an animated erase only when it completes", func() {
			e.DrawCell(2, 2, red)
			e.EraseCell(2, 2, fade)
			e.Frame(50 * time.Millisecond)
			_, ok := e.Cell(2, 2, false)
			Expect(ok).To(BeTrue())

			e.Frame(60 * time.Millisecond)
			_, ok = e.Cell(2, 2, false)
			Expect(ok).To(BeFalse())
			Expect(pixel(2, 2)).To(Equal(e.Background().RGBA()))
		})

		It("clears cells and animations", func() {
			e.DrawCell(1, 1, red)
			e.DrawCell(2, 2, blue, fade)
			e.Clear()
			Expect(e.Store().Len()).To(BeZero())
			Expect(e.Animations().Len()).To(BeZero())
			Expect(pixel(1, 1)).To(Equal(e.Background().RGBA()))
		})
	})

	Describe("pointer input", func() {
		It("reports clicks in cell coordinates", func() {
			e.HandleEvent(input.Down(85, 45, input.ButtonLeft))
			e.HandleEvent(input.Up(85, 45, input.ButtonLeft))
			Expect(r.downs).To(Equal([]image.Point{{2, 1}}))
			Expect(r.ups).To(Equal([]image.Point{{2, 1}}))
		})

		It("reports motion once per frame and only on entering a new cell", func() {
			e.HandleEvent(input.Move(10, 10))
			e.HandleEvent(input.Move(12, 12))
			e.Frame(time.Millisecond)
			e.HandleEvent(input.Move(20, 20))
			e.Frame(time.Millisecond)
			e.HandleEvent(input.Move(50, 10))
			e.Frame(time.Millisecond)
			Expect(r.movedCells()).To(Equal([]image.Point{{0, 0}, {1, 0}}))
		})

		It("pans with the pan button instead of reporting it", func() {
			e.HandleEvent(input.Down(400, 300, input.ButtonMiddle))
			e.HandleEvent(input.Move(359, 300))
			e.Frame(time.Millisecond)
			Expect(e.Viewport().FirstColumn).To(Equal(1))
			Expect(e.Viewport().LeftOffset).To(Equal(1))
			Expect(e.TakeDirty()).To(BeTrue())

			e.HandleEvent(input.Up(359, 300, input.ButtonMiddle))
			Expect(r.downs).To(BeEmpty())
			Expect(r.ups).To(BeEmpty())
			Expect(e.PanController().Coasting()).To(BeFalse())
		})

		It("coasts after a flick released mid-motion", func() {
			e.HandleEvent(input.Down(400, 300, input.ButtonMiddle))
			for i := 1; i <= 4; i++ {
				m.Advance(10 * time.Millisecond)
				e.HandleEvent(input.Move(400-10*i, 300))
				e.Frame(10 * time.Millisecond)
			}
			m.Advance(10 * time.Millisecond)
			e.HandleEvent(input.Move(350, 300))
			e.HandleEvent(input.Up(350, 300, input.ButtonMiddle))

			pc := e.PanController()
			Expect(pc.Coasting()).To(BeTrue())
			Expect(pc.VelX).To(BeNumerically("~", 1000, 1e-6))

			before := e.Viewport().PosX
			e.Frame(16 * time.Millisecond)
			Expect(e.Viewport().PosX).To(BeNumerically(">", before))
		})

		It("zooms on scroll around the pointer", func() {
			e.HandleEvent(input.Wheel(400, 300, 1))
			Expect(e.Viewport().CellSize).To(Equal(44))
			Expect(e.TakeDirty()).To(BeTrue())
			e.HandleEvent(input.Wheel(400, 300, -1))
			Expect(e.Viewport().CellSize).To(Equal(39))
		})

		It("ignores scroll when zoom is off", func() {
			e.opts.AllowZoom = false
			e.HandleEvent(input.Wheel(400, 300, 1))
			Expect(e.Viewport().CellSize).To(Equal(40))
		})

		It("forwards keys", func() {
			e.HandleEvent(input.Press("space"))
			Expect(r.keys).To(Equal([]input.Key{"space"}))
		})
	})

	Describe("window events", func() {
		It("resizes the framebuffer", func() {
			e.HandleEvent(input.Resized(400, 200))
			Expect(e.Image().Bounds()).To(Equal(image.Rect(0, 0, 400, 200)))
			Expect(e.Viewport().Columns).To(Equal(10))
		})

		It("marks the frame dirty on expose", func() {
			e.HandleEvent(input.Event{Kind: input.Expose})
			Expect(e.TakeDirty()).To(BeTrue())
			Expect(e.TakeDirty()).To(BeFalse())
		})

		It("records a close request", func() {
			e.HandleEvent(input.Event{Kind: input.Close})
			Expect(e.Quit()).To(BeTrue())
		})
	})

	Describe("unthreaded ticking", func() {
		It("runs catch-up ticks inline with a count", func() {
			e.StartTicking(false)
			e.Frame(250 * time.Millisecond)
			Expect(r.ticks).To(Equal([]int{2}))
			e.StopTicking()
			Expect(r.endedCount()).To(Equal(1))
		})

		It("lets tick callbacks animate", func() {
			r.tick = func(c Canvas, _ int) { c.DrawCell(0, 0, red, fade) }
			e.StartTicking(false)
			e.Frame(100 * time.Millisecond)
			Expect(e.Animations().Len()).To(Equal(1))
		})
	})

	Describe("threaded ticking", func() {
		BeforeEach(func() {
			e.SetTickDuration(time.Hour)
		})

		It("applies one tick's draws in the order they were made", func() {
			r.tick = func(c Canvas, _ int) {
				for x := range 10 {
					c.DrawCell(x, 0, blue)
				}
				c.DrawCell(0, 0, red)
				c.DrawCell(5000, 5000, blue)
			}
			e.StartTicking(true)
			Expect(e.Strategy()).To(Equal(Mixed))

			drained := 0
			Eventually(func() int {
				drained += e.Frame(0).Drained
				return drained
			}, 2*time.Second, time.Millisecond).Should(BeNumerically(">=", 11))
			Expect(drained).To(Equal(11))
			Expect(pixel(0, 0)).To(Equal(red.RGBA()))
			Expect(pixel(9, 0)).To(Equal(blue.RGBA()))
			Expect(e.Store().Len()).To(Equal(11))
		})

		It("ends after the in-flight tick when stopped right after starting", func() {
			e.StartTicking(true)
			e.StopTicking()
			Expect(e.Scheduler().State()).To(Equal(sched.Ending))

			pump(func() bool { return e.Scheduler().State() == sched.Inactive })
			Expect(r.tickCount()).To(Equal(1))
			Expect(r.endedCount()).To(Equal(1))

			for range 5 {
				e.Frame(time.Millisecond)
			}
			Expect(r.endedCount()).To(Equal(1))
			Expect(e.Strategy()).To(Equal(Threadless))
		})

		It("can be stopped from inside a tick", func() {
			r.tick = func(c Canvas, _ int) { c.StopTicking() }
			e.StartTicking(true)
			pump(func() bool { return e.Scheduler().State() == sched.Inactive })
			Expect(r.endedCount()).To(Equal(1))
		})

		It("settles animations before the worker starts", func() {
			e.DrawCell(1, 1, red, fade)
			Expect(e.Animations().Len()).To(Equal(1))
			e.StartTicking(true)
			Expect(e.Animations().Len()).To(BeZero())
			Expect(cellAt(1, 1)).To(Equal(red))
		})

		It("paints render-side draws immediately and without animation", func() {
			e.StartTicking(true)
			e.DrawCell(2, 2, red, fade)
			Expect(e.Animations().Len()).To(BeZero())
			Expect(pixel(2, 2)).To(Equal(red.RGBA()))
		})

		It("orders a worker clear with the queued draws", func() {
			e.DrawCell(3, 3, blue)
			r.tick = func(c Canvas, _ int) {
				c.DrawCell(1, 1, red)
				c.Clear()
			}
			e.StartTicking(true)
			pump(func() bool { return e.Store().Len() == 0 && e.Scheduler().Pending() == 0 && !e.Scheduler().Busy() })
			Expect(pixel(1, 1)).To(Equal(e.Background().RGBA()))
			Expect(pixel(3, 3)).To(Equal(e.Background().RGBA()))
		})

		It("keeps a render-side draw over an older queued worker draw", func() {
			r.tick = func(c Canvas, _ int) { c.DrawCell(0, 0, red) }
			e.StartTicking(true)
			Eventually(e.Scheduler().Busy).Should(BeFalse())
			Expect(e.Scheduler().Pending()).To(Equal(1))

			e.DrawCell(0, 0, blue)
			Expect(e.Frame(0).Drained).To(Equal(1))
			Expect(cellAt(0, 0)).To(Equal(blue))
			Expect(pixel(0, 0)).To(Equal(blue.RGBA()))
		})

		It("leaves no stale pixels when cleared after stopping", func() {
			r.tick = func(c Canvas, _ int) { c.DrawCell(1, 1, red) }
			e.StartTicking(true)
			Eventually(e.Scheduler().Busy).Should(BeFalse())

			e.StopTicking()
			Eventually(func() sched.State {
				e.Scheduler().Update(0)
				return e.Scheduler().State()
			}, 2*time.Second, time.Millisecond).Should(Equal(sched.Inactive))
			e.Clear()
			Expect(e.Scheduler().Pending()).To(Equal(1))

			Expect(e.Frame(0).Drained).To(Equal(1))
			Expect(e.Store().Len()).To(BeZero())
			Expect(pixel(1, 1)).To(Equal(e.Background().RGBA()))
		})

		It("joins the worker on close without the tick-ended callback", func() {
			e.StartTicking(true)
			e.Close()
			Expect(e.Scheduler().State()).To(Equal(sched.Inactive))
			Expect(r.tickCount()).To(Equal(1))
			Expect(r.endedCount()).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("plays a backend script until it closes", func() {
			r.down = func(c Canvas, x, y int) { c.DrawCell(x, y, red) }
			b := headless.New([]input.Event{input.Down(45, 45, input.ButtonLeft)}, nil)

			Expect(e.Run(context.Background(), b)).To(Succeed())
			Expect(b.Closed()).To(BeTrue())
			w, h, _, resizable := b.Window()
			Expect([]int{w, h}).To(Equal([]int{800, 600}))
			Expect(resizable).To(BeTrue())

			total, changed := b.Presents()
			Expect(total).To(Equal(2))
			Expect(changed).To(BeNumerically(">=", 1))
			Expect(b.Last().RGBAAt(45, 45)).To(Equal(red.RGBA()))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := e.Run(ctx, headless.Idle(100))
			Expect(err).To(MatchError(context.Canceled))
		})

		It("wraps backend failures", func() {
			err := e.Run(context.Background(), &failingBackend{})
			var be *BackendError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Op).To(Equal("open"))
		})

		It("refuses to run after close", func() {
			e.Close()
			Expect(e.Run(context.Background(), headless.Idle(1))).To(MatchError(ErrClosed))
		})
	})
})
