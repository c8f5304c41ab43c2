package sched

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/palette"
)

const frame = 16 * time.Millisecond

// pump calls Update like the render loop would until cond holds.
func pump(s *Scheduler, cond func() bool) {
	Eventually(func() bool {
		s.Update(frame)
		return cond()
	}, 2*time.Second, time.Millisecond).Should(BeTrue())
}

func drainAll(s *Scheduler) []Op {
	var got []Op
	s.Drain(time.Now().Add(time.Hour), func(op Op) { got = append(got, op) })
	return got
}

var _ = Describe("Scheduler", func() {
	var (
		ticks []int
		ended int
		s     *Scheduler
	)

	BeforeEach(func() {
		ticks = nil
		ended = 0
	})

	Context("unthreaded", func() {
		BeforeEach(func() {
			s = New(func(n int) { ticks = append(ticks, n) }, func() { ended++ },
				WithDuration(100*time.Millisecond))
		})

		It("ticks once the duration has elapsed", func() {
			s.Start(false)
			Expect(s.State()).To(Equal(Active))
			s.Update(60 * time.Millisecond)
			Expect(ticks).To(BeEmpty())
			s.Update(60 * time.Millisecond)
			Expect(ticks).To(Equal([]int{1}))
		})

		It("reports catch-up ticks as a count", func() {
			s.Start(false)
			s.Update(350 * time.Millisecond)
			Expect(ticks).To(Equal([]int{3}))
			s.Update(50 * time.Millisecond)
			Expect(ticks).To(Equal([]int{3, 1}))
			Expect(s.Ticks()).To(BeEquivalentTo(4))
		})

		It("stops straight to inactive and fires tick-ended", func() {
			s.Start(false)
			s.Stop()
			Expect(s.State()).To(Equal(Inactive))
			Expect(ended).To(Equal(1))
			s.Update(time.Second)
			Expect(ticks).To(BeEmpty())
		})

		It("treats stopping an inactive scheduler as a no-op", func() {
			s.Stop()
			s.Stop()
			Expect(s.State()).To(Equal(Inactive))
			Expect(ended).To(BeZero())
		})

		It("ignores a second start", func() {
			s.Start(false)
			s.Update(80 * time.Millisecond)
			s.Start(false)
			s.Update(30 * time.Millisecond)
			Expect(ticks).To(Equal([]int{1}))
		})

		It("lets a tick stop the scheduler", func() {
			s = New(func(n int) { s.Stop() }, func() { ended++ }, WithDuration(10*time.Millisecond))
			s.Start(false)
			s.Update(20 * time.Millisecond)
			Expect(s.State()).To(Equal(Inactive))
			Expect(ended).To(Equal(1))
		})
	})

	Context("threaded", func() {
		var (
			mu      sync.Mutex
			flushed int
		)

		BeforeEach(func() {
			flushed = 0
		})

		AfterEach(func() {
			s.Close()
		})

		It("flushes before the worker starts and runs the first tick immediately", func() {
			var count atomic.Int32
			s = New(func(n int) { count.Add(1) }, func() {},
				WithFlush(func() { flushed++ }), WithDuration(time.Hour))
			s.Start(true)
			Expect(flushed).To(Equal(1))
			Eventually(count.Load).Should(BeEquivalentTo(1))
			Eventually(s.Busy).Should(BeFalse())
			Expect(s.Threaded()).To(BeTrue())
		})

		It("hands a tick's draws over in order, before the next tick's", func() {
			var tick atomic.Int32
			s = New(func(n int) {
				t := int(tick.Add(1))
				for i := 0; i < 250; i++ {
					s.Enqueue(Op{X: i, Y: t, Color: palette.RGB(uint8(t), 0, 0)})
				}
			}, func() {}, WithDuration(frame))
			s.Start(true)

			var applied []Op
			Eventually(func() int {
				s.Update(frame)
				s.Drain(time.Now().Add(time.Hour), func(op Op) { applied = append(applied, op) })
				return len(applied)
			}, 2*time.Second, time.Millisecond).Should(BeNumerically(">=", 750))

			for i, op := range applied {
				Expect(op.Y).To(Equal(i/250 + 1))
				Expect(op.X).To(Equal(i % 250))
			}
		})

		It("waits for the in-flight tick before going inactive", func() {
			release := make(chan struct{})
			started := make(chan struct{})
			s = New(func(n int) {
				close(started)
				<-release
			}, func() {
				mu.Lock()
				ended++
				mu.Unlock()
			}, WithDuration(time.Hour))

			s.Start(true)
			<-started
			s.Stop()
			Expect(s.State()).To(Equal(Ending))

			for i := 0; i < 5; i++ {
				s.Update(frame)
			}
			Expect(s.State()).To(Equal(Ending))
			Expect(ended).To(BeZero())

			close(release)
			pump(s, func() bool { return s.State() == Inactive })
			s.Update(frame)
			s.Stop()
			mu.Lock()
			defer mu.Unlock()
			Expect(ended).To(Equal(1))
		})

		It("accepts a stop from inside a worker tick", func() {
			s = New(func(n int) {
				s.Enqueue(Op{X: 1})
				s.Stop()
			}, func() { ended++ }, WithDuration(time.Hour))
			s.Start(true)
			pump(s, func() bool { return s.State() == Inactive })
			Expect(ended).To(Equal(1))
			Expect(drainAll(s)).To(HaveLen(1))
		})

		It("discards undrained draws when configured to", func() {
			s = New(func(n int) {
				s.Enqueue(Op{X: 1})
				s.Enqueue(Op{X: 2})
				s.Stop()
			}, func() { ended++ }, WithDuration(time.Hour), WithDiscardOnStop(true))
			s.Start(true)
			pump(s, func() bool { return s.State() == Inactive })
			Expect(s.Pending()).To(BeZero())
		})

		It("restarts after an ending run", func() {
			var count atomic.Int32
			s = New(func(n int) { count.Add(1) }, func() { ended++ }, WithDuration(time.Hour))
			s.Start(true)
			Eventually(count.Load).Should(BeEquivalentTo(1))
			s.Stop()
			s.Start(true)
			Expect(ended).To(Equal(1))
			Eventually(count.Load).Should(BeEquivalentTo(2))
			Expect(s.State()).To(Equal(Active))
		})

		It("applies leftover draws before a restarted worker hands off", func() {
			var run atomic.Int32
			var settled []Op
			s = New(func(n int) {
				r := int(run.Add(1))
				s.Enqueue(Op{X: r, Y: 1})
				s.Enqueue(Op{X: r, Y: 2})
				s.Stop()
			}, func() { ended++ }, WithDuration(time.Hour),
				WithApply(func(op Op) { settled = append(settled, op) }))
			s.Start(true)
			pump(s, func() bool { return s.State() == Inactive })
			Expect(s.Pending()).To(Equal(2))

			s.Start(true)
			Expect(settled).To(Equal([]Op{{X: 1, Y: 1}, {X: 1, Y: 2}}))
			pump(s, func() bool { return s.State() == Inactive })
			Expect(drainAll(s)).To(Equal([]Op{{X: 2, Y: 1}, {X: 2, Y: 2}}))
		})

		It("drops leftover draws on restart without an apply func", func() {
			var run atomic.Int32
			s = New(func(n int) {
				s.Enqueue(Op{X: int(run.Add(1))})
				s.Stop()
			}, func() { ended++ }, WithDuration(time.Hour))
			s.Start(true)
			pump(s, func() bool { return s.State() == Inactive })
			Expect(s.Pending()).To(Equal(1))

			s.Start(true)
			pump(s, func() bool { return s.State() == Inactive })
			Expect(drainAll(s)).To(Equal([]Op{{X: 2}}))
		})

		It("does not wake the worker while draws are pending", func() {
			var count atomic.Int32
			s = New(func(n int) {
				count.Add(1)
				s.Enqueue(Op{})
			}, func() {}, WithDuration(frame))
			s.Start(true)
			Eventually(s.Busy).Should(BeFalse())

			for i := 0; i < 10; i++ {
				s.Update(frame)
			}
			Consistently(count.Load, 50*time.Millisecond).Should(BeEquivalentTo(1))
			Expect(drainAll(s)).To(HaveLen(1))

			pump(s, func() bool { return count.Load() == 2 })
		})

		It("joins the worker on close", func() {
			var inTick atomic.Bool
			s = New(func(n int) {
				inTick.Store(true)
				time.Sleep(20 * time.Millisecond)
				inTick.Store(false)
			}, func() { ended++ }, WithDuration(time.Hour))
			s.Start(true)
			Eventually(inTick.Load).Should(BeTrue())
			s.Close()
			Expect(inTick.Load()).To(BeFalse())
			Expect(s.State()).To(Equal(Inactive))
			Expect(ended).To(BeZero())
		})
	})

	Context("draining", func() {
		It("stops at the deadline between batches", func() {
			mock := clock.NewMock(time.Unix(0, 0))
			s = New(func(int) {
				for i := 0; i < 350; i++ {
					s.Enqueue(Op{X: i})
				}
			}, func() {}, WithClock(mock), WithBatchSize(100), WithDuration(time.Hour))
			s.Start(true)
			Eventually(s.Busy).Should(BeFalse())
			Expect(s.Pending()).To(Equal(350))

			deadline := mock.Now().Add(10 * time.Millisecond)
			n := s.Drain(deadline, func(Op) { mock.Advance(time.Millisecond) })
			Expect(n).To(Equal(100))

			n = s.Drain(mock.Now().Add(time.Hour), func(Op) {})
			Expect(n).To(Equal(250))
			Expect(s.Pending()).To(BeZero())
			s.Close()
		})
	})
})

var _ = Describe("OpPool", func() {
	It("hands back empty slices", func() {
		p := NewOpPool(8)
		q := p.Get()
		Expect(q).To(BeEmpty())
		q = append(q, Op{X: 1}, Op{X: 2})
		p.Put(q)
		Expect(p.Get()).To(BeEmpty())
	})
})
