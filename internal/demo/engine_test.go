package demo

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/backend/headless"
	"github.com/san-kum/cellgrid/internal/clock"
	"github.com/san-kum/cellgrid/internal/grid"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
)

func TestPaintThroughEngine(t *testing.T) {
	p := NewPaint(palette.ThemeOneDark, anim.Spec{})
	e, err := grid.New(p, grid.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	b := headless.New(
		[]input.Event{input.Down(45, 45, input.ButtonLeft)},
		[]input.Event{input.Move(125, 45)},
		[]input.Event{input.Up(125, 45, input.ButtonLeft)},
	)
	if err := e.Run(context.Background(), b); err != nil {
		t.Fatalf("run: %v", err)
	}

	for x := 1; x <= 3; x++ {
		if c, ok := e.Store().Get(x, 1); !ok || c != palette.ThemeOneDark.Cell {
			t.Errorf("cell (%d, 1) = %v, %v", x, c, ok)
		}
	}
	if e.Store().Len() != 3 {
		t.Errorf("expected 3 cells, got %d", e.Store().Len())
	}
}

func TestLifeThroughEngine(t *testing.T) {
	m := clock.NewMock(time.Unix(1000, 0))
	opts := grid.DefaultOptions()
	opts.Clock = m

	l := NewLife(palette.RGB(200, 200, 200), anim.Spec{})
	l.Threaded = false
	l.Seed(image.Pt(0, 1), image.Pt(1, 1), image.Pt(2, 1))

	e, err := grid.New(l, opts)
	if err != nil {
		t.Fatal(err)
	}
	// 60ms frames against the default 100ms tick: one generation
	b := headless.New(
		[]input.Event{input.Press("space")},
		nil,
		nil,
	).WithClock(m, 60*time.Millisecond)
	if err := e.Run(context.Background(), b); err != nil {
		t.Fatalf("run: %v", err)
	}

	if l.Generation() != 1 {
		t.Fatalf("expected 1 generation, got %d", l.Generation())
	}
	for y := 0; y <= 2; y++ {
		if _, ok := e.Store().Get(1, y); !ok {
			t.Errorf("cell (1, %d) should be alive", y)
		}
	}
	if _, ok := e.Store().Get(0, 1); ok {
		t.Error("cell (0, 1) should have died")
	}
}
