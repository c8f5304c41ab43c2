package grid

import "github.com/san-kum/cellgrid/internal/input"

// Handler receives engine callbacks. Every callback gets the Canvas that is
// valid on the goroutine it runs on; keep using that one, not a stored copy.
type Handler interface {
	OnStart(c Canvas)
	// OnTick runs once per elapsed tick duration. ticks is more than one
	// when the engine fell behind and is catching up.
	OnTick(c Canvas, ticks int)
	OnPointerDown(c Canvas, x, y int, b input.Button)
	OnPointerUp(c Canvas, x, y int, b input.Button)
	// OnPointerMoved fires when the pointer enters a new cell.
	OnPointerMoved(c Canvas, x, y int)
	OnKeyDown(c Canvas, k input.Key)
	OnKeyUp(c Canvas, k input.Key)
	// OnTickEnded fires on the render goroutine once ticking fully stopped.
	OnTickEnded(c Canvas)
}

// BaseHandler implements Handler with no-ops. Embed it and override what
// you need.
type BaseHandler struct{}

func (BaseHandler) OnStart(Canvas)                               {}
func (BaseHandler) OnTick(Canvas, int)                           {}
func (BaseHandler) OnPointerDown(Canvas, int, int, input.Button) {}
func (BaseHandler) OnPointerUp(Canvas, int, int, input.Button)   {}
func (BaseHandler) OnPointerMoved(Canvas, int, int)              {}
func (BaseHandler) OnKeyDown(Canvas, input.Key)                  {}
func (BaseHandler) OnKeyUp(Canvas, input.Key)                    {}
func (BaseHandler) OnTickEnded(Canvas)                           {}
