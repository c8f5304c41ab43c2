// Package window is the desktop backend, a raylib window showing the
// engine's framebuffer as one streamed texture.
package window

import (
	"errors"
	"image"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/cellgrid/internal/input"
)

var ErrNotOpen = errors.New("window: not open")

var buttons = []struct {
	rl  rl.MouseButton
	btn input.Button
}{
	{rl.MouseLeftButton, input.ButtonLeft},
	{rl.MouseMiddleButton, input.ButtonMiddle},
	{rl.MouseRightButton, input.ButtonRight},
}

type Backend struct {
	open    bool
	tex     rl.Texture2D
	texSize image.Point

	mouse  image.Point
	width  int
	height int
	down   map[int32]input.Key
}

func New() *Backend {
	return &Backend{down: make(map[int32]input.Key)}
}

func (b *Backend) Open(w, h int, title string, resizable bool) error {
	if resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(w), int32(h), title)
	if !rl.IsWindowReady() {
		return errors.New("window: raylib could not open a window")
	}
	rl.SetExitKey(0)
	b.width, b.height = w, h
	b.open = true
	return nil
}

// Poll reads the input state raylib collected during the last EndDrawing.
func (b *Backend) Poll() ([]input.Event, error) {
	if !b.open {
		return nil, ErrNotOpen
	}
	var evs []input.Event
	if rl.WindowShouldClose() {
		return append(evs, input.Event{Kind: input.Close}), nil
	}
	if rl.IsWindowResized() {
		b.width, b.height = rl.GetScreenWidth(), rl.GetScreenHeight()
		evs = append(evs, input.Resized(b.width, b.height))
	}

	p := rl.GetMousePosition()
	pos := image.Pt(int(p.X), int(p.Y))
	if pos != b.mouse {
		b.mouse = pos
		evs = append(evs, input.Move(pos.X, pos.Y))
	}
	for _, m := range buttons {
		if rl.IsMouseButtonPressed(m.rl) {
			evs = append(evs, input.Down(pos.X, pos.Y, m.btn))
		}
		if rl.IsMouseButtonReleased(m.rl) {
			evs = append(evs, input.Up(pos.X, pos.Y, m.btn))
		}
	}
	if w := rl.GetMouseWheelMove(); w != 0 {
		evs = append(evs, input.Wheel(pos.X, pos.Y, float64(w)))
	}

	for code := rl.GetKeyPressed(); code != 0; code = rl.GetKeyPressed() {
		k := keyName(code)
		if k == "" {
			continue
		}
		b.down[code] = k
		evs = append(evs, input.Press(k))
	}
	for code, k := range b.down {
		if rl.IsKeyReleased(code) {
			delete(b.down, code)
			evs = append(evs, input.Release(k))
		}
	}
	return evs, nil
}

// Present uploads img when it changed and shows it.
func (b *Backend) Present(img *image.RGBA, changed bool) error {
	if !b.open {
		return ErrNotOpen
	}
	size := img.Rect.Size()
	if size != b.texSize {
		b.reloadTexture(size)
		changed = true
	}
	if changed && len(img.Pix) > 0 {
		pix := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&img.Pix[0])), len(img.Pix)/4)
		rl.UpdateTexture(b.tex, pix)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	rl.DrawTexture(b.tex, 0, 0, rl.White)
	rl.EndDrawing()
	return nil
}

func (b *Backend) reloadTexture(size image.Point) {
	if b.texSize != (image.Point{}) {
		rl.UnloadTexture(b.tex)
	}
	blank := rl.GenImageColor(size.X, size.Y, rl.Black)
	b.tex = rl.LoadTextureFromImage(blank)
	rl.UnloadImage(blank)
	b.texSize = size
}

func (b *Backend) Close() error {
	if !b.open {
		return nil
	}
	if b.texSize != (image.Point{}) {
		rl.UnloadTexture(b.tex)
		b.texSize = image.Point{}
	}
	rl.CloseWindow()
	b.open = false
	return nil
}
