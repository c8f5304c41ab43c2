// Package term shows the grid in a terminal. Each character cell is two
// framebuffer pixels stacked with an upper half block, the top pixel as
// foreground and the bottom one as background.
package term

import (
	"errors"
	"image"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/image/draw"

	"github.com/san-kum/cellgrid/internal/crash"
	"github.com/san-kum/cellgrid/internal/input"
)

const DefaultScale = 8

type Backend struct {
	// Scale is how many framebuffer pixels one terminal column stands for.
	Scale int

	prog    *tea.Program
	opts    []tea.ProgramOption
	done    chan struct{}
	restore func()

	mu        sync.Mutex
	pending   []input.Event
	runErr    error
	cols      int
	rows      int
	width     int
	height    int
	resizable bool
	pressed   input.Button

	small *image.RGBA
}

// New returns a terminal backend. opts are passed to the bubbletea program
// after the alt screen and mouse options.
func New(scale int, opts ...tea.ProgramOption) *Backend {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Backend{Scale: scale, opts: opts}
}

func (b *Backend) Open(w, h int, _ string, resizable bool) error {
	b.mu.Lock()
	b.width, b.height, b.resizable = w, h, resizable
	b.mu.Unlock()

	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, b.opts...)
	b.prog = tea.NewProgram(model{b: b}, opts...)
	b.done = make(chan struct{})
	b.restore = crash.OnCrash(func() { _ = b.prog.RestoreTerminal() })

	prog, done := b.prog, b.done
	crash.Go(func() {
		_, err := prog.Run()
		b.mu.Lock()
		b.runErr = err
		b.mu.Unlock()
		close(done)
	})
	return nil
}

func (b *Backend) push(evs ...input.Event) {
	b.mu.Lock()
	b.pending = append(b.pending, evs...)
	b.mu.Unlock()
}

// Poll returns what the terminal reported since the last call. Once the
// program has exited it reports a close.
func (b *Backend) Poll() ([]input.Event, error) {
	if b.done != nil {
		select {
		case <-b.done:
			return []input.Event{{Kind: input.Close}}, nil
		default:
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	evs := b.pending
	b.pending = nil
	return evs, nil
}

func (b *Backend) Present(img *image.RGBA, changed bool) error {
	b.mu.Lock()
	cols, rows := b.cols, b.rows
	b.width, b.height = img.Rect.Dx(), img.Rect.Dy()
	b.mu.Unlock()
	if cols == 0 || rows == 0 {
		return nil
	}

	sized := b.small != nil && b.small.Rect.Dx() == cols && b.small.Rect.Dy() == rows*2
	if !changed && sized {
		return nil
	}
	if !sized {
		b.small = image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	}
	draw.NearestNeighbor.Scale(b.small, b.small.Rect, img, img.Rect, draw.Src, nil)
	if b.prog != nil {
		b.prog.Send(frameMsg(Render(b.small)))
	}
	return nil
}

func (b *Backend) Close() error {
	if b.prog == nil {
		return nil
	}
	b.prog.Quit()
	<-b.done
	b.restore()
	b.prog = nil

	b.mu.Lock()
	defer b.mu.Unlock()
	if errors.Is(b.runErr, tea.ErrProgramKilled) {
		return nil
	}
	return b.runErr
}

// resized records the terminal size. A resizable grid is asked to match it
// at Scale pixels per column.
func (b *Backend) resized(cols, rows int) {
	b.mu.Lock()
	b.cols, b.rows = cols, rows
	resizable := b.resizable
	b.mu.Unlock()
	if resizable && cols > 0 && rows > 0 {
		b.push(input.Resized(cols*b.Scale, rows*2*b.Scale))
	}
}

// toPixel maps a terminal cell to the framebuffer pixel at its centre.
func (b *Backend) toPixel(col, row int) (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cols == 0 || b.rows == 0 {
		return col, row
	}
	return (2*col + 1) * b.width / (2 * b.cols), (2*row + 1) * b.height / (2 * b.rows)
}

func (b *Backend) mouse(msg tea.MouseMsg) {
	x, y := b.toPixel(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		b.push(input.Move(x, y))
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			b.push(input.Wheel(x, y, 1))
		case tea.MouseButtonWheelDown:
			b.push(input.Wheel(x, y, -1))
		default:
			btn := button(msg.Button)
			if btn == input.ButtonNone {
				return
			}
			b.mu.Lock()
			b.pressed = btn
			b.mu.Unlock()
			b.push(input.Move(x, y), input.Down(x, y, btn))
		}
	case tea.MouseActionRelease:
		btn := button(msg.Button)
		b.mu.Lock()
		// some terminals do not say which button was released
		if btn == input.ButtonNone {
			btn = b.pressed
		}
		b.pressed = input.ButtonNone
		b.mu.Unlock()
		if btn != input.ButtonNone {
			b.push(input.Up(x, y, btn))
		}
	}
}

func button(b tea.MouseButton) input.Button {
	switch b {
	case tea.MouseButtonLeft:
		return input.ButtonLeft
	case tea.MouseButtonMiddle:
		return input.ButtonMiddle
	case tea.MouseButtonRight:
		return input.ButtonRight
	}
	return input.ButtonNone
}
