package viewport

import "math"

// Zone is a snapshot of the region, in cells, where worker-side draws are
// still worth painting. It extends the window by a fifth on every side.
type Zone struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

const zoneMargin = 0.2

func (v *Viewport) RenderZone() Zone {
	cs := float64(v.CellSize)
	w, h := float64(v.Width)/cs, float64(v.Height)/cs
	return Zone{
		MinX: v.PosX - w*zoneMargin,
		MaxX: v.PosX + w*(1+zoneMargin),
		MinY: v.PosY - h*zoneMargin,
		MaxY: v.PosY + h*(1+zoneMargin),
	}
}

// Contains reports whether the cell's top-left corner falls strictly
// inside the zone.
func (z Zone) Contains(cx, cy int) bool {
	x, y := float64(cx), float64(cy)
	return x > z.MinX && x < z.MaxX && y > z.MinY && y < z.MaxY
}

// Everywhere is a zone that accepts every cell.
func Everywhere() Zone {
	return Zone{MinX: math.Inf(-1), MinY: math.Inf(-1), MaxX: math.Inf(1), MaxY: math.Inf(1)}
}
