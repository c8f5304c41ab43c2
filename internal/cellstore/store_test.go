package cellstore

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/san-kum/cellgrid/internal/palette"
)

var (
	red  = palette.RGB(255, 0, 0)
	blue = palette.RGB(0, 0, 255)
)

// checkDual asserts that the row and column indexes describe the same set.
func checkDual(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for y, l := range s.rows {
		for ci, ch := range l {
			if len(ch) == 0 {
				t.Fatalf("empty chunk left behind in row %d chunk %d", y, ci)
			}
			for x, c := range ch {
				count++
				if FloorDiv(x, s.chunkSize) != ci {
					t.Fatalf("cell %d,%d filed under wrong chunk %d", x, y, ci)
				}
				cc, ok := s.cols[x][FloorDiv(y, s.chunkSize)][y]
				if !ok || cc != c {
					t.Fatalf("column index disagrees at %d,%d: %v %v vs %v", x, y, ok, cc, c)
				}
			}
		}
	}
	colCount := 0
	for x, l := range s.cols {
		for _, ch := range l {
			for y, c := range ch {
				colCount++
				rc, ok := s.rows[y][FloorDiv(x, s.chunkSize)][x]
				if !ok || rc != c {
					t.Fatalf("row index disagrees at %d,%d", x, y)
				}
			}
		}
	}
	if count != colCount || count != s.n {
		t.Fatalf("counts differ: rows=%d cols=%d n=%d", count, colCount, s.n)
	}
}

func TestGetSetRemove(t *testing.T) {
	s := New(16)

	if _, ok := s.Get(0, 0); ok {
		t.Error("empty store should report absent")
	}

	s.Set(3, -7, red)
	c, ok := s.Get(3, -7)
	if !ok || c != red {
		t.Errorf("expected red at 3,-7, got %v %v", c, ok)
	}

	s.Set(3, -7, blue)
	if c, _ := s.Get(3, -7); c != blue {
		t.Errorf("overwrite failed, got %v", c)
	}
	if s.Len() != 1 {
		t.Errorf("expected len 1, got %d", s.Len())
	}

	s.Remove(3, -7)
	if _, ok := s.Get(3, -7); ok {
		t.Error("cell should be gone")
	}
	s.Remove(3, -7)
	s.Remove(1000000, -1000000)
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	checkDual(t, s)
}

func TestFarCoordinates(t *testing.T) {
	s := New(16)
	s.Set(1<<40, -(1 << 40), red)
	if c, ok := s.Get(1<<40, -(1 << 40)); !ok || c != red {
		t.Error("far cell lost")
	}
	if _, ok := s.Get(-(1 << 50), 1<<50); ok {
		t.Error("far lookup should be absent, not an error")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, q, m int }{
		{0, 16, 0, 0},
		{15, 16, 0, 15},
		{16, 16, 1, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
		{41, 40, 1, 1},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.q {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.q)
		}
		if got := Mod(tt.a, tt.b); got != tt.m {
			t.Errorf("Mod(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.m)
		}
	}
}

func TestRowAndColumnRanges(t *testing.T) {
	s := New(4)
	for x := -10; x <= 10; x++ {
		s.Set(x, 2, red)
	}
	s.Set(0, 3, blue)

	// chunks [-1, 1) cover x in [-4, 4)
	got := s.Row(2, -1, 1)
	xs := make([]int, 0, len(got))
	for _, c := range got {
		if c.Y != 2 || c.Color != red {
			t.Fatalf("unexpected cell %+v", c)
		}
		xs = append(xs, c.X)
	}
	sort.Ints(xs)
	want := []int{-4, -3, -2, -1, 0, 1, 2, 3}
	if len(xs) != len(want) {
		t.Fatalf("expected %v, got %v", want, xs)
	}
	for i := range want {
		if xs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, xs)
		}
	}

	col := s.Column(0, -100, 100)
	if len(col) != 2 {
		t.Errorf("expected 2 cells in column 0, got %d", len(col))
	}
	if len(s.Row(99, -100, 100)) != 0 {
		t.Error("empty row should yield nothing")
	}
	if len(s.Row(2, 5, 5)) != 0 {
		t.Error("empty chunk span should yield nothing")
	}
}

func TestDualIndexRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(16)
	colors := []palette.Color{red, blue, palette.RGB(1, 2, 3)}

	for i := 0; i < 5000; i++ {
		x := rng.Intn(200) - 100
		y := rng.Intn(200) - 100
		if rng.Intn(3) == 0 {
			s.Remove(x, y)
		} else {
			s.Set(x, y, colors[rng.Intn(len(colors))])
		}
		if i%250 == 0 {
			checkDual(t, s)
		}
	}
	checkDual(t, s)

	s.Clear()
	if s.Len() != 0 || len(s.Cells()) != 0 {
		t.Error("clear should empty the store")
	}
	checkDual(t, s)
}

func TestConcurrentRangeReads(t *testing.T) {
	s := New(16)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			x, y := i%64, (i/64)%64
			if i%2 == 0 {
				s.Set(x, y, red)
			} else {
				s.Remove(x, y)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		for _, c := range s.Row(i%64, 0, 4) {
			if c.Color != red {
				t.Fatalf("torn read: %+v", c)
			}
		}
		for _, c := range s.Column(i%64, 0, 4) {
			if c.Color != red {
				t.Fatalf("torn read: %+v", c)
			}
		}
	}
	close(stop)
	wg.Wait()
	checkDual(t, s)
}
