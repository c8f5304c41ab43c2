package term

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cellgrid/internal/palette"
)

const halfBlock = "▀"

type pair struct{ top, bottom palette.Color }

// Render turns img into lines of half blocks, two pixel rows per line.
// Runs of equal pixel pairs share one style.
func Render(img *image.RGBA) string {
	r := img.Rect
	var sb strings.Builder
	styles := make(map[pair]lipgloss.Style)

	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		if y > r.Min.Y {
			sb.WriteByte('\n')
		}
		x := r.Min.X
		for x < r.Max.X {
			p := pairAt(img, x, y)
			n := 1
			for x+n < r.Max.X && pairAt(img, x+n, y) == p {
				n++
			}
			st, ok := styles[p]
			if !ok {
				st = lipgloss.NewStyle().
					Foreground(lipgloss.Color(p.top.Hex())).
					Background(lipgloss.Color(p.bottom.Hex()))
				styles[p] = st
			}
			sb.WriteString(st.Render(strings.Repeat(halfBlock, n)))
			x += n
		}
	}
	return sb.String()
}

func pairAt(img *image.RGBA, x, y int) pair {
	top := img.RGBAAt(x, y)
	p := pair{top: palette.RGB(top.R, top.G, top.B)}
	if y+1 < img.Rect.Max.Y {
		bot := img.RGBAAt(x, y+1)
		p.bottom = palette.RGB(bot.R, bot.G, bot.B)
	} else {
		p.bottom = p.top
	}
	return p
}
