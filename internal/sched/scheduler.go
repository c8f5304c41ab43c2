// Package sched paces simulation ticks independently of the frame rate.
//
// A Scheduler is Inactive, Active or Ending. Unthreaded, ticks run inline
// from Update on the render goroutine. Threaded, a single worker goroutine
// runs each tick, collects the draws it makes into its own queue and hands
// that queue to the render goroutine with one swap; the render goroutine
// applies it with Drain in batches, inside a time budget.
//
// Stop may be called from any goroutine. A threaded stop only moves to
// Ending; the render goroutine finalizes to Inactive when Update sees the
// worker's done channel close, and the tick-ended callback fires there.
package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/crash"
)

type State int

const (
	Inactive State = iota
	Active
	Ending
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Ending:
		return "ending"
	}
	return "inactive"
}

const (
	DefaultBatchSize = 100
	DefaultDuration  = time.Second
)

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option { return func(s *Scheduler) { s.clock = c } }

func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batch = n
		}
	}
}

// WithFlush sets the hook run on the render goroutine right before a
// worker starts, used to settle animations.
func WithFlush(fn func()) Option { return func(s *Scheduler) { s.flush = fn } }

// WithApply sets where Start lands draws left over from a previous threaded
// run, so a new worker always hands off into an empty queue. Without it
// those draws are dropped.
func WithApply(fn func(Op)) Option { return func(s *Scheduler) { s.apply = fn } }

// WithDiscardOnStop drops undrained draws when ticking ends.
func WithDiscardOnStop(v bool) Option { return func(s *Scheduler) { s.discardOnStop = v } }

func WithDuration(d time.Duration) Option { return func(s *Scheduler) { s.SetDuration(d) } }

// WithWorkerTick sets a separate tick callback for the worker goroutine.
// Without it the worker calls the same callback as inline ticking.
func WithWorkerTick(fn func(ticks int)) Option { return func(s *Scheduler) { s.workerTick = fn } }

type Scheduler struct {
	onTick     func(ticks int)
	workerTick func(ticks int)
	onEnded    func()
	flush      func()
	apply      func(Op)
	clock      clock.Clock
	batch      int

	duration atomic.Int64
	progress time.Duration
	total    atomic.Int64

	mu            sync.Mutex
	state         State
	threaded      bool
	discardOnStop bool

	quit chan struct{}
	wake chan struct{}
	done chan struct{}
	busy atomic.Bool
	n    atomic.Int64

	pool    *OpPool
	next    []Op // worker only
	active  []Op
	head    int
	scratch []Op
}

// New creates a scheduler that calls onTick with the number of elapsed
// durations and onEnded once each time ticking stops.
func New(onTick func(ticks int), onEnded func(), opts ...Option) *Scheduler {
	s := &Scheduler{
		onTick:  onTick,
		onEnded: onEnded,
		clock:   clock.Real{},
		batch:   DefaultBatchSize,
		pool:    NewOpPool(256),
	}
	s.duration.Store(int64(DefaultDuration))
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Threaded reports whether a worker goroutine owns the ticks.
func (s *Scheduler) Threaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threaded && s.state != Inactive
}

func (s *Scheduler) Busy() bool { return s.busy.Load() }

// Ticks returns the total number of ticks reported so far.
func (s *Scheduler) Ticks() int64 { return s.total.Load() }

func (s *Scheduler) Duration() time.Duration { return time.Duration(s.duration.Load()) }

// SetDuration changes the tick cadence. Safe from any goroutine.
func (s *Scheduler) SetDuration(d time.Duration) {
	if d <= 0 {
		d = time.Nanosecond
	}
	s.duration.Store(int64(d))
}

// Start begins ticking. Starting an Active scheduler does nothing; starting
// an Ending one waits for the worker and finalizes first. Render goroutine
// only.
func (s *Scheduler) Start(threaded bool) {
	if s.State() == Ending {
		<-s.done
		s.finish()
	}

	s.mu.Lock()
	if s.state != Inactive {
		s.mu.Unlock()
		return
	}
	s.progress = 0
	s.state = Active
	s.threaded = threaded
	if !threaded {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.flush != nil {
		s.flush()
	}
	s.settle()

	quit, wake, done := make(chan struct{}), make(chan struct{}, 1), make(chan struct{})
	s.mu.Lock()
	s.quit, s.wake, s.done = quit, wake, done
	s.mu.Unlock()

	s.n.Store(1)
	s.busy.Store(true)
	s.next = s.pool.Get()
	crash.Go(func() { s.run(quit, wake, done) })
}

func (s *Scheduler) run(quit, wake, done chan struct{}) {
	defer close(done)
	tick := s.onTick
	if s.workerTick != nil {
		tick = s.workerTick
	}
	for {
		n := int(s.n.Load())
		s.total.Add(int64(n))
		tick(n)
		s.swap()
		s.busy.Store(false)

		select {
		case <-quit:
			return
		case <-wake:
		}
		select {
		case <-quit:
			return
		default:
		}
	}
}

// swap hands the worker's queue to the render goroutine. The worker is only
// woken once the previous hand-off is drained and Start settles leftovers,
// so active is always empty here.
func (s *Scheduler) swap() {
	s.mu.Lock()
	if s.active != nil {
		s.pool.Put(s.active)
	}
	s.active, s.head = s.next, 0
	s.next = s.pool.Get()
	s.mu.Unlock()
}

// settle empties the active queue before a worker starts.
func (s *Scheduler) settle() {
	if s.apply == nil {
		s.Discard()
		return
	}
	for batch := s.take(); len(batch) > 0; batch = s.take() {
		for _, op := range batch {
			s.apply(op)
		}
	}
}

// Stop ends ticking. It never blocks and is a no-op unless Active.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return
	}
	if s.threaded {
		s.state = Ending
		close(s.quit)
		s.mu.Unlock()
		return
	}
	s.state = Inactive
	if s.discardOnStop {
		s.discardLocked()
	}
	s.mu.Unlock()
	if s.onEnded != nil {
		s.onEnded()
	}
}

// finish completes a threaded stop after the worker exited.
func (s *Scheduler) finish() {
	s.mu.Lock()
	if s.state != Ending {
		s.mu.Unlock()
		return
	}
	s.state = Inactive
	s.threaded = false
	if s.discardOnStop {
		s.discardLocked()
	}
	s.mu.Unlock()
	if s.onEnded != nil {
		s.onEnded()
	}
}

// Update advances the cadence by dt. Render goroutine only.
func (s *Scheduler) Update(dt time.Duration) {
	s.mu.Lock()
	state, threaded, done := s.state, s.threaded, s.done
	s.mu.Unlock()

	switch state {
	case Inactive:
		return
	case Ending:
		select {
		case <-done:
			s.finish()
		default:
		}
		return
	}

	s.progress += dt
	d := s.Duration()
	if s.progress < d {
		return
	}
	// wait for the previous tick's draws to land before the next one
	if s.busy.Load() || s.Pending() > 0 {
		return
	}
	n := int(s.progress / d)
	s.progress %= d

	if !threaded {
		s.total.Add(int64(n))
		s.onTick(n)
		return
	}
	s.n.Store(int64(n))
	s.busy.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Enqueue appends to the worker's queue. Worker goroutine only.
func (s *Scheduler) Enqueue(op Op) {
	s.next = append(s.next, op)
}

// Pending is the number of undrained draws handed to the render goroutine.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) - s.head
}

// Drain applies queued draws in order, a batch at a time, until the queue
// is empty or deadline has passed. It returns the number applied.
func (s *Scheduler) Drain(deadline time.Time, apply func(Op)) int {
	applied := 0
	for {
		batch := s.take()
		if len(batch) == 0 {
			return applied
		}
		for _, op := range batch {
			apply(op)
		}
		applied += len(batch)
		if !s.clock.Now().Before(deadline) {
			return applied
		}
	}
}

func (s *Scheduler) take() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(s.batch, len(s.active)-s.head)
	s.scratch = append(s.scratch[:0], s.active[s.head:s.head+n]...)
	s.head += n
	if s.head == len(s.active) && s.active != nil {
		s.pool.Put(s.active)
		s.active, s.head = nil, 0
	}
	return s.scratch
}

// Discard drops every undrained draw.
func (s *Scheduler) Discard() {
	s.mu.Lock()
	s.discardLocked()
	s.mu.Unlock()
}

func (s *Scheduler) discardLocked() {
	if s.active != nil {
		s.pool.Put(s.active)
	}
	s.active, s.head = nil, 0
}

// Close stops a worker and waits for it without firing the tick-ended
// callback. Used on shutdown.
func (s *Scheduler) Close() {
	s.mu.Lock()
	state, done := s.state, s.done
	if state == Active && s.threaded {
		close(s.quit)
	}
	s.state = Inactive
	s.threaded = false
	s.mu.Unlock()

	if done != nil && state != Inactive {
		<-done
	}
}
