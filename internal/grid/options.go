package grid

import (
	"fmt"
	"time"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/cellstore"
	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/pan"
	"github.com/san-kum/cellgrid/internal/sched"
	"github.com/san-kum/cellgrid/internal/viewport"
)

const (
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultCellSize    = 40
	DefaultMinCellSize = 4
	DefaultMaxCellSize = 1000
	DefaultFPS         = 60
	DefaultFraction    = 0.1
	DefaultAnimation   = 100 * time.Millisecond
)

// Options configure an Engine. Zero Width/Height with non-zero Rows and
// Columns sizes the window to fit that many cells.
type Options struct {
	Title string

	Rows, Columns int
	Width, Height int

	CellSize    int
	MinCellSize int
	MaxCellSize int
	ChunkSize   int

	Background palette.Color
	GridColor  palette.Color

	GridFraction      float64
	GridDisappearSize int
	GridFadeSteps     int

	// Animation is the spec collaborators use when they want "the" animation.
	Animation anim.Spec

	PanButton   input.Button
	AllowPan    bool
	AllowZoom   bool
	AllowResize bool
	Friction    float64
	MinVelocity float64

	FPS           int
	DrawBatch     int
	TickDuration  time.Duration
	DiscardOnStop bool

	Clock    clock.Clock
	Observer Observer
}

func DefaultOptions() Options {
	th := palette.DefaultTheme
	return Options{
		Title:             "cellgrid",
		Rows:              20,
		Columns:           20,
		CellSize:          DefaultCellSize,
		MinCellSize:       DefaultMinCellSize,
		MaxCellSize:       DefaultMaxCellSize,
		ChunkSize:         cellstore.DefaultChunkSize,
		Background:        th.Background,
		GridColor:         th.Grid,
		GridFraction:      DefaultFraction,
		GridDisappearSize: 5,
		GridFadeSteps:     25,
		Animation:         anim.Spec{Kind: anim.Fade, Duration: DefaultAnimation},
		PanButton:         input.ButtonMiddle,
		AllowPan:          true,
		AllowZoom:         true,
		AllowResize:       true,
		Friction:          pan.DefaultFriction,
		MinVelocity:       pan.DefaultMinVelocity,
		FPS:               DefaultFPS,
		DrawBatch:         sched.DefaultBatchSize,
		TickDuration:      sched.DefaultDuration,
	}
}

// WindowSize resolves the pixel size: explicit size first, then enough room
// for Rows x Columns cells (minus the trailing line), then 800x600.
func (o Options) WindowSize() (int, int) {
	if o.Width > 0 && o.Height > 0 {
		return o.Width, o.Height
	}
	if o.Rows > 0 && o.Columns > 0 {
		t := viewport.BaseThickness(o.CellSize, o.GridFraction)
		return o.Columns*o.CellSize - t, o.Rows*o.CellSize - t
	}
	return DefaultWidth, DefaultHeight
}

func (o Options) Validate() error {
	switch {
	case o.Rows < 0 || o.Columns < 0:
		return fmt.Errorf("%w: negative grid dimensions %dx%d", ErrInvalidOptions, o.Columns, o.Rows)
	case o.Width < 0 || o.Height < 0:
		return fmt.Errorf("%w: negative window size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidOptions, o.FPS)
	case o.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidOptions, o.ChunkSize)
	case o.Friction < 0 || o.MinVelocity < 0:
		return fmt.Errorf("%w: friction and min velocity must not be negative", ErrInvalidOptions)
	case o.TickDuration <= 0:
		return fmt.Errorf("%w: tick duration must be positive, got %v", ErrInvalidOptions, o.TickDuration)
	}
	if err := o.viewportConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

func (o Options) viewportConfig() viewport.Config {
	w, h := o.WindowSize()
	return viewport.Config{
		Width:             w,
		Height:            h,
		CellSize:          o.CellSize,
		MinCellSize:       o.MinCellSize,
		MaxCellSize:       o.MaxCellSize,
		GridFraction:      o.GridFraction,
		GridDisappearSize: o.GridDisappearSize,
		GridFadeSteps:     o.GridFadeSteps,
	}
}

// FrameDelta is the target time between frames.
func (o Options) FrameDelta() time.Duration {
	return time.Second / time.Duration(o.FPS)
}
