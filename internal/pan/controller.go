// Package pan turns pointer drags into viewport motion: direct panning
// while the pan button is held, a flick velocity on release, and friction
// damped coasting afterwards. It also applies cursor anchored zoom steps.
package pan

import (
	"math"
	"time"
)

const (
	Samples         = 5
	DefaultFriction = 5.0
	// below this speed (px/s) motion is visibly one pixel at a time
	DefaultMinVelocity = 30.0
	ZoomInFactor       = 1.1
	ZoomOutFactor      = 0.9
)

// Target receives the motion produced by the controller.
type Target interface {
	// Pan moves the view by a pixel amount.
	Pan(dx, dy float64)
	// Zoom rescales around a screen point and reports whether it did.
	Zoom(x, y int, factor float64) bool
}

type sample struct {
	x, y int
	t    time.Time
}

type Controller struct {
	Friction    float64
	MinVelocity float64

	target  Target
	ring    [Samples]sample
	head    int // index of the oldest sample
	dirX    int
	dirY    int
	lastX   int
	lastY   int
	panning bool

	VelX, VelY float64
}

func New(target Target) *Controller {
	return &Controller{
		Friction:    DefaultFriction,
		MinVelocity: DefaultMinVelocity,
		target:      target,
	}
}

func (c *Controller) Panning() bool { return c.panning }

// Coasting reports whether a flick is still moving the view.
func (c *Controller) Coasting() bool { return c.VelX != 0 || c.VelY != 0 }

// Begin starts a drag at (x, y), stopping any coast.
func (c *Controller) Begin(x, y int, t time.Time) {
	for i := range c.ring {
		c.ring[i] = sample{x: x, y: y, t: t}
	}
	c.head = 0
	c.dirX, c.dirY = 0, 0
	c.lastX, c.lastY = x, y
	c.VelX, c.VelY = 0, 0
	c.panning = true
}

// Drag records the pointer at (x, y) and pans the target opposite to the
// pointer motion. It returns the pointer delta.
func (c *Controller) Drag(x, y int, t time.Time) (int, int) {
	if !c.panning {
		return 0, 0
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y

	// a reversal invalidates that axis of the history
	if d := sign(dx); d != 0 && d != c.dirX {
		if c.dirX != 0 {
			for i := range c.ring {
				c.ring[i].x = x
			}
		}
		c.dirX = d
	}
	if d := sign(dy); d != 0 && d != c.dirY {
		if c.dirY != 0 {
			for i := range c.ring {
				c.ring[i].y = y
			}
		}
		c.dirY = d
	}

	c.ring[c.head] = sample{x: x, y: y, t: t}
	c.head = (c.head + 1) % Samples
	c.VelX, c.VelY = 0, 0

	if dx != 0 || dy != 0 {
		c.target.Pan(float64(-dx), float64(-dy))
	}
	return dx, dy
}

// End finishes the drag. When the pointer was still moving at release the
// buffered samples become the coast velocity.
func (c *Controller) End(moving bool) {
	if !c.panning {
		return
	}
	c.panning = false
	if moving {
		c.VelX, c.VelY = c.Trajectory()
	}
}

// Trajectory returns the velocity in px/s between the oldest and newest
// buffered samples. Identical timestamps give zero.
func (c *Controller) Trajectory() (float64, float64) {
	oldest := c.ring[c.head]
	newest := c.ring[(c.head+Samples-1)%Samples]
	dt := newest.t.Sub(oldest.t).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return float64(oldest.x-newest.x) / dt, float64(oldest.y-newest.y) / dt
}

// Coast advances inertial motion by dt seconds. Both axes stop together
// once both are slower than MinVelocity.
func (c *Controller) Coast(dt float64) {
	if !c.Coasting() || dt <= 0 {
		return
	}
	panX, panY := c.VelX*dt, c.VelY*dt

	keep := math.Max(0, 1-c.Friction*dt)
	c.VelX *= keep
	c.VelY *= keep
	if math.Abs(c.VelX) < c.MinVelocity && math.Abs(c.VelY) < c.MinVelocity {
		c.VelX, c.VelY = 0, 0
	}
	c.target.Pan(panX, panY)
}

// Stop cancels any coast.
func (c *Controller) Stop() { c.VelX, c.VelY = 0, 0 }

func (c *Controller) ZoomIn(x, y int) bool  { return c.target.Zoom(x, y, ZoomInFactor) }
func (c *Controller) ZoomOut(x, y int) bool { return c.target.Zoom(x, y, ZoomOutFactor) }

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
