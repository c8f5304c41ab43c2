package grid

import (
	"image"
	"time"

	"github.com/san-kum/cellgrid/internal/input"
)

// Backend is a window system: it delivers input and shows frames.
type Backend interface {
	Open(width, height int, title string, resizable bool) error
	// Poll returns the events received since the last call without
	// blocking.
	Poll() ([]input.Event, error)
	// Present shows img. changed is false when nothing was drawn since the
	// previous call; backends may skip the upload then.
	Present(img *image.RGBA, changed bool) error
	Close() error
}

// FrameStats describes one call to Engine.Frame.
type FrameStats struct {
	Frame      int
	Delta      time.Duration
	Elapsed    time.Duration
	Drained    int
	Pending    int
	Animations int
	Ticks      int64
	Changed    bool
}

// Observer receives per-frame statistics.
type Observer interface {
	ObserveFrame(FrameStats)
}
