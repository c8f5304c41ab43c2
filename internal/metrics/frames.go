package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/san-kum/cellgrid/internal/grid"
)

// FrameTimes tracks how long Frame took, in milliseconds. Value is the
// mean.
type FrameTimes struct {
	name    string
	samples []float64
	total   float64
	max     float64
}

func NewFrameTimes() *FrameTimes {
	return &FrameTimes{name: "frame_ms"}
}

func (f *FrameTimes) Name() string { return f.name }

func (f *FrameTimes) ObserveFrame(st grid.FrameStats) {
	ms := float64(st.Elapsed) / float64(time.Millisecond)
	f.samples = append(f.samples, ms)
	f.total += ms
	f.max = math.Max(f.max, ms)
}

func (f *FrameTimes) Value() float64 {
	if len(f.samples) == 0 {
		return 0
	}
	return f.total / float64(len(f.samples))
}

func (f *FrameTimes) Max() float64 { return f.max }

// Percentile returns the p-th percentile (0-100) by nearest rank.
func (f *FrameTimes) Percentile(p float64) float64 {
	if len(f.samples) == 0 {
		return 0
	}
	sorted := slices.Clone(f.samples)
	slices.Sort(sorted)
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}

func (f *FrameTimes) P95() float64 { return f.Percentile(95) }

func (f *FrameTimes) Samples() []float64 { return f.samples }

func (f *FrameTimes) Reset() {
	f.samples = f.samples[:0]
	f.total = 0
	f.max = 0
}

// TickRate is ticks per second of simulated frame time.
type TickRate struct {
	name    string
	first   int64
	last    int64
	elapsed time.Duration
	samples int
}

func NewTickRate() *TickRate {
	return &TickRate{name: "ticks_per_sec"}
}

func (r *TickRate) Name() string { return r.name }

func (r *TickRate) ObserveFrame(st grid.FrameStats) {
	if r.samples == 0 {
		r.first = st.Ticks
	} else {
		r.elapsed += st.Delta
	}
	r.last = st.Ticks
	r.samples++
}

func (r *TickRate) Value() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.last-r.first) / r.elapsed.Seconds()
}

func (r *TickRate) Reset() {
	r.first, r.last = 0, 0
	r.elapsed = 0
	r.samples = 0
}

// QueueDepth is the largest number of worker draws left waiting after a
// frame.
type QueueDepth struct {
	name string
	max  int
}

func NewQueueDepth() *QueueDepth {
	return &QueueDepth{name: "max_pending"}
}

func (q *QueueDepth) Name() string { return q.name }

func (q *QueueDepth) ObserveFrame(st grid.FrameStats) {
	q.max = max(q.max, st.Pending)
}

func (q *QueueDepth) Value() float64 { return float64(q.max) }

func (q *QueueDepth) Reset() { q.max = 0 }
