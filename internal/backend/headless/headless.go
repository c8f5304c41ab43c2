// Package headless is a scripted backend. Each Poll returns the next
// scripted batch of events; once the script runs out it reports a close.
// Used by tests and by the bench command.
package headless

import (
	"errors"
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/input"
)

var ErrNotOpen = errors.New("headless: backend not open")

type Backend struct {
	mu sync.Mutex

	script [][]input.Event
	next   int

	clock *clock.Mock
	step  time.Duration

	open      bool
	closed    bool
	width     int
	height    int
	title     string
	resizable bool

	presents int
	changed  int
	last     *image.RGBA
}

// New returns a backend that plays script, one element per frame.
func New(script ...[]input.Event) *Backend {
	return &Backend{script: script}
}

// Idle returns a backend that runs n frames without input.
func Idle(n int) *Backend {
	return New(make([][]input.Event, n)...)
}

// WithClock advances m by step on every Poll, so frame deltas are exact.
func (b *Backend) WithClock(m *clock.Mock, step time.Duration) *Backend {
	b.clock, b.step = m, step
	return b
}

func (b *Backend) Open(w, h int, title string, resizable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open, b.closed = true, false
	b.width, b.height, b.title, b.resizable = w, h, title, resizable
	return nil
}

func (b *Backend) Poll() ([]input.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil, ErrNotOpen
	}
	if b.clock != nil {
		b.clock.Advance(b.step)
	}
	if b.next >= len(b.script) {
		return []input.Event{{Kind: input.Close}}, nil
	}
	evs := b.script[b.next]
	b.next++
	return evs, nil
}

// Present keeps a copy of the last changed frame.
func (b *Backend) Present(img *image.RGBA, changed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return ErrNotOpen
	}
	b.presents++
	if !changed {
		return nil
	}
	b.changed++
	if b.last == nil || b.last.Rect != img.Rect {
		b.last = image.NewRGBA(img.Rect)
	}
	draw.Draw(b.last, img.Rect, img, img.Rect.Min, draw.Src)
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.closed = true
	return nil
}

// Presents returns how many frames were presented and how many of them
// were marked changed.
func (b *Backend) Presents() (total, changed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presents, b.changed
}

// Last returns a copy of the most recent changed frame, or nil.
func (b *Backend) Last() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Window returns the parameters Open was called with.
func (b *Backend) Window() (w, h int, title string, resizable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height, b.title, b.resizable
}

func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
