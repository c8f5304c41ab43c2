// Package input defines the window-system events the grid engine consumes.
// Backends translate their native events into these.
package input

import "fmt"

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

var buttonNames = []string{"none", "left", "middle", "right"}

func (b Button) String() string {
	if int(b) < len(buttonNames) && b >= 0 {
		return buttonNames[b]
	}
	return fmt.Sprintf("button(%d)", int(b))
}

func ParseButton(s string) (Button, error) {
	for i, name := range buttonNames {
		if name == s && i != 0 {
			return Button(i), nil
		}
	}
	return ButtonNone, fmt.Errorf("input: unknown button %q", s)
}

// Key names a keyboard key the way terminal libraries spell it: "a", "space",
// "up", "ctrl+c", "delete".
type Key string

type Kind int

const (
	PointerDown Kind = iota + 1
	PointerUp
	PointerMove
	Scroll
	KeyDown
	KeyUp
	Resize
	Expose
	Close
)

type Event struct {
	Kind   Kind
	X, Y   int
	Button Button
	// Wheel is positive when scrolling up (zoom in).
	Wheel  float64
	Key    Key
	Width  int
	Height int
}

func Down(x, y int, b Button) Event { return Event{Kind: PointerDown, X: x, Y: y, Button: b} }
func Up(x, y int, b Button) Event   { return Event{Kind: PointerUp, X: x, Y: y, Button: b} }
func Move(x, y int) Event           { return Event{Kind: PointerMove, X: x, Y: y} }

func Wheel(x, y int, amount float64) Event {
	return Event{Kind: Scroll, X: x, Y: y, Wheel: amount}
}

func Press(k Key) Event   { return Event{Kind: KeyDown, Key: k} }
func Release(k Key) Event { return Event{Kind: KeyUp, Key: k} }

func Resized(w, h int) Event { return Event{Kind: Resize, Width: w, Height: h} }
