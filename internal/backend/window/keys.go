package window

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/cellgrid/internal/input"
)

var namedKeys = map[int32]input.Key{
	rl.KeySpace:     "space",
	rl.KeyEnter:     "enter",
	rl.KeyEscape:    "escape",
	rl.KeyBackspace: "backspace",
	rl.KeyDelete:    "delete",
	rl.KeyTab:       "tab",
	rl.KeyUp:        "up",
	rl.KeyDown:      "down",
	rl.KeyLeft:      "left",
	rl.KeyRight:     "right",
	rl.KeyMinus:     "-",
	rl.KeyEqual:     "=",
}

// keyName maps a raylib key code to the names used by input.Key. Letters
// are lower case. Unknown keys map to "".
func keyName(code int32) input.Key {
	switch {
	case code >= rl.KeyA && code <= rl.KeyZ:
		return input.Key(rune('a' + code - rl.KeyA))
	case code >= rl.KeyZero && code <= rl.KeyNine:
		return input.Key(rune('0' + code - rl.KeyZero))
	}
	return namedKeys[code]
}
