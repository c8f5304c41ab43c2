// Package viewport maps between world positions, lattice cells and screen
// pixels.
//
// Positions are measured in cells. The on-screen origin is the absolute pixel
// P = floor(PosX * CellSize); every derived value (offsets, first and last
// visible cell, visible counts) is computed from it in Recompute, which is
// the only place those fields change.
package viewport

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/san-kum/cellgrid/internal/cellstore"
)

var (
	ErrCellSizeBounds = errors.New("viewport: cell size bounds invalid")
	ErrWindowSize     = errors.New("viewport: window size must be positive")
	ErrGridFraction   = errors.New("viewport: grid fraction must be in [0, 1)")
)

// Config holds the geometry inputs of a viewport.
type Config struct {
	Width, Height     int
	CellSize          int
	MinCellSize       int
	MaxCellSize       int
	GridFraction      float64
	GridDisappearSize int
	GridFadeSteps     int
}

func (c Config) Validate() error {
	if c.MinCellSize <= 0 || c.MaxCellSize <= 0 || c.MinCellSize > c.MaxCellSize {
		return fmt.Errorf("%w: min %d max %d", ErrCellSizeBounds, c.MinCellSize, c.MaxCellSize)
	}
	if c.CellSize < c.MinCellSize || c.CellSize > c.MaxCellSize {
		return fmt.Errorf("%w: cell size %d outside [%d, %d]", ErrCellSizeBounds, c.CellSize, c.MinCellSize, c.MaxCellSize)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrWindowSize, c.Width, c.Height)
	}
	if c.GridFraction < 0 || c.GridFraction >= 1 || math.IsNaN(c.GridFraction) {
		return fmt.Errorf("%w: %v", ErrGridFraction, c.GridFraction)
	}
	return nil
}

type Viewport struct {
	PosX, PosY float64
	CellSize   int
	Width      int
	Height     int

	MinCellSize int
	MaxCellSize int

	// Derived by Recompute.
	LeftOffset   int
	TopOffset    int
	RightOffset  int
	BottomOffset int
	Columns      int
	Rows         int
	FirstColumn  int
	FirstRow     int
	originX      int
	originY      int

	grid GridStyle
	cfg  Config
}

func New(cfg Config) (*Viewport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := &Viewport{
		CellSize:    cfg.CellSize,
		Width:       cfg.Width,
		Height:      cfg.Height,
		MinCellSize: cfg.MinCellSize,
		MaxCellSize: cfg.MaxCellSize,
		cfg:         cfg,
	}
	v.Recompute()
	return v, nil
}

// Recompute refreshes offsets, visible counts and grid line style.
func (v *Viewport) Recompute() {
	cs := v.CellSize
	v.originX = pixelFloor(v.PosX * float64(cs))
	v.originY = pixelFloor(v.PosY * float64(cs))

	v.FirstColumn = cellstore.FloorDiv(v.originX, cs)
	v.LeftOffset = cellstore.Mod(v.originX, cs)
	lastCol := cellstore.FloorDiv(v.originX+v.Width-1, cs)
	v.Columns = lastCol - v.FirstColumn + 1
	v.RightOffset = (lastCol+1)*cs - (v.originX + v.Width)

	v.FirstRow = cellstore.FloorDiv(v.originY, cs)
	v.TopOffset = cellstore.Mod(v.originY, cs)
	lastRow := cellstore.FloorDiv(v.originY+v.Height-1, cs)
	v.Rows = lastRow - v.FirstRow + 1
	v.BottomOffset = (lastRow+1)*cs - (v.originY + v.Height)

	v.grid = gridStyle(v.cfg, cs)
}

// Origin returns the absolute pixel of the screen's top-left corner.
func (v *Viewport) Origin() (int, int) { return v.originX, v.originY }

func (v *Viewport) CellAtPoint(px, py int) (int, int) {
	return cellstore.FloorDiv(v.originX+px, v.CellSize), cellstore.FloorDiv(v.originY+py, v.CellSize)
}

// WorldPosAtPoint returns the continuous world position under a pixel.
func (v *Viewport) WorldPosAtPoint(px, py float64) (float64, float64) {
	cs := float64(v.CellSize)
	return v.PosX + px/cs, v.PosY + py/cs
}

// CellOrigin returns the screen pixel of the top-left corner of a cell.
func (v *Viewport) CellOrigin(cx, cy int) (int, int) {
	return cx*v.CellSize - v.originX, cy*v.CellSize - v.originY
}

func (v *Viewport) CellRect(cx, cy int) image.Rectangle {
	x, y := v.CellOrigin(cx, cy)
	return image.Rect(x, y, x+v.CellSize, y+v.CellSize)
}

func (v *Viewport) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// ChunkRangeX returns the half-open chunk span covering visible columns.
func (v *Viewport) ChunkRangeX(chunkSize int) (int, int) {
	return cellstore.FloorDiv(v.FirstColumn, chunkSize),
		cellstore.FloorDiv(v.FirstColumn+v.Columns-1, chunkSize) + 1
}

func (v *Viewport) ChunkRangeY(chunkSize int) (int, int) {
	return cellstore.FloorDiv(v.FirstRow, chunkSize),
		cellstore.FloorDiv(v.FirstRow+v.Rows-1, chunkSize) + 1
}

// Shift moves the viewport by a pixel amount and returns the change of the
// on-screen origin in whole pixels. Sub-pixel moves return 0, 0.
func (v *Viewport) Shift(dx, dy float64) (int, int) {
	ox, oy := v.originX, v.originY
	cs := float64(v.CellSize)
	v.PosX += dx / cs
	v.PosY += dy / cs
	v.Recompute()
	return v.originX - ox, v.originY - oy
}

// Zoom scales the cell size by factor keeping the world point under (px, py)
// fixed on screen. It reports whether the cell size changed.
func (v *Viewport) Zoom(px, py int, factor float64) bool {
	if factor <= 0 || factor == 1 {
		return false
	}
	size := v.CellSize
	if factor > 1 {
		if size >= v.MaxCellSize {
			return false
		}
		size = min(int(math.Ceil(float64(size)*factor)), v.MaxCellSize)
	} else {
		if size <= v.MinCellSize {
			return false
		}
		size = max(int(math.Floor(float64(size)*factor)), v.MinCellSize)
	}

	wx, wy := v.WorldPosAtPoint(float64(px), float64(py))
	v.CellSize = size
	nx, ny := v.WorldPosAtPoint(float64(px), float64(py))
	v.PosX += wx - nx
	v.PosY += wy - ny
	v.Recompute()
	return true
}

func (v *Viewport) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrWindowSize, w, h)
	}
	v.Width, v.Height = w, h
	v.Recompute()
	return nil
}

// SetPosition places the top-left corner at a world position.
func (v *Viewport) SetPosition(x, y float64) {
	v.PosX, v.PosY = x, y
	v.Recompute()
}

func (v *Viewport) Grid() GridStyle { return v.grid }

// pixelFloor floors a pixel coordinate, absorbing the rounding error that
// comes from storing positions in cells.
func pixelFloor(p float64) int {
	return int(math.Floor(p + 1e-7))
}
