// Package metrics measures engine frames. Every metric is a grid.Observer,
// so it can be plugged into grid.Options directly or through a Set.
package metrics

import (
	"github.com/san-kum/cellgrid/internal/grid"
)

type Metric interface {
	Name() string
	ObserveFrame(st grid.FrameStats)
	Value() float64
	Reset()
}

// Set fans frame stats out to several metrics.
type Set []Metric

func (s Set) ObserveFrame(st grid.FrameStats) {
	for _, m := range s {
		m.ObserveFrame(st)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Summary maps metric names to their current values.
func (s Set) Summary() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Trace keeps every frame's stats. Value is the number of frames.
type Trace struct {
	frames []grid.FrameStats
}

func NewTrace() *Trace { return &Trace{} }

func (t *Trace) Name() string                    { return "frames" }
func (t *Trace) ObserveFrame(st grid.FrameStats) { t.frames = append(t.frames, st) }
func (t *Trace) Value() float64                  { return float64(len(t.frames)) }
func (t *Trace) Reset()                          { t.frames = t.frames[:0] }
func (t *Trace) Frames() []grid.FrameStats       { return t.frames }
