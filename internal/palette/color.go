package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrBadHex is returned for color strings that are not #rrggbb.
var ErrBadHex = errors.New("palette: invalid hex color")

// Color is an opaque 8-bit RGB cell color.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// ParseHex parses "#rrggbb" (the leading # is optional).
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] != '#' {
		s = "#" + s
	}
	if len(s) != 7 || strings.Trim(s[1:], "0123456789abcdefABCDEF") != "" {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// MustHex is ParseHex for package-level tables.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Colorful converts to a go-colorful value for perceptual operations.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// IsDark reports whether c has low perceived lightness.
func (c Color) IsDark() bool {
	l, _, _ := c.Colorful().Lab()
	return l < 0.5
}

// Mix interpolates channel-wise from a to b. Channels are truncated, so
// Mix(a, b, 0) == a and Mix(a, b, 1) == b exactly.
func Mix(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t)
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// Blend composites fg over bg with the given 0-255 alpha.
func Blend(bg, fg Color, alpha uint8) Color {
	return Mix(bg, fg, float64(alpha)/255)
}
