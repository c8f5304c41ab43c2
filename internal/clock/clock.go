// Package clock supplies the time source used for frame pacing, drag
// sampling and draw-queue budgets.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real reads the monotonic system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Mock is a controllable time source for tests.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the mock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
