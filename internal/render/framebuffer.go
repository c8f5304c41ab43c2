package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/san-kum/cellgrid/internal/palette"
)

// Framebuffer is the persistent RGBA surface the renderer patches.
type Framebuffer struct {
	img *image.RGBA
}

func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (f *Framebuffer) Image() *image.RGBA      { return f.img }
func (f *Framebuffer) Bounds() image.Rectangle { return f.img.Rect }

// Resize replaces the surface. Contents are discarded.
func (f *Framebuffer) Resize(w, h int) {
	if f.img.Rect.Dx() == w && f.img.Rect.Dy() == h {
		return
	}
	f.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Fill paints r (clipped to the surface) with c.
func (f *Framebuffer) Fill(r image.Rectangle, c palette.Color) {
	r = r.Intersect(f.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(f.img, r, image.NewUniform(c.RGBA()), image.Point{}, draw.Src)
}

// Scroll translates the contents by (dx, dy). The strip left uncovered keeps
// stale pixels until the caller repaints it.
func (f *Framebuffer) Scroll(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	b := f.img.Rect
	dst := b.Intersect(b.Add(image.Pt(dx, dy)))
	if dst.Empty() {
		return
	}
	draw.Draw(f.img, dst, f.img, dst.Min.Sub(image.Pt(dx, dy)), draw.Src)
}

// At returns the pixel at (x, y) as a cell color.
func (f *Framebuffer) At(x, y int) palette.Color {
	c := f.img.RGBAAt(x, y)
	return palette.RGB(c.R, c.G, c.B)
}
