package viewport

import "math"

// GridStyle describes the separator lines at the current zoom level.
// Lines sit on the right and bottom edge of each cell, Thickness pixels
// wide, drawn with Alpha over the background.
type GridStyle struct {
	Thickness int
	Alpha     uint8
}

func (g GridStyle) Visible() bool { return g.Thickness > 0 && g.Alpha > 0 }

// BaseThickness is the line width at full opacity for a cell size.
func BaseThickness(cellSize int, fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	return max(int(math.Ceil(float64(cellSize)*fraction)), 1)
}

// gridStyle fades lines out as cells shrink: at or below the disappear size
// there are none, and over the next GridFadeSteps sizes alpha and thickness
// ramp back up linearly.
func gridStyle(cfg Config, cellSize int) GridStyle {
	base := BaseThickness(cellSize, cfg.GridFraction)
	if base == 0 || cellSize <= cfg.GridDisappearSize {
		return GridStyle{}
	}
	fadeStart := cfg.GridDisappearSize + cfg.GridFadeSteps
	if cfg.GridFadeSteps <= 0 || cellSize > fadeStart {
		return GridStyle{Thickness: base, Alpha: 255}
	}
	idx := fadeStart - cellSize
	steps := float64(cfg.GridFadeSteps)
	return GridStyle{
		Thickness: int(math.Ceil(float64(base) * (steps - float64(idx)) / steps)),
		Alpha:     uint8(255 - int(float64(idx)/steps*255)),
	}
}
