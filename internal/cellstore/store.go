// Package cellstore holds the sparse, unbounded lattice of colored cells.
//
// Every cell is indexed twice: by row (rows[y][chunk(x)][x]) and by column
// (cols[x][chunk(y)][y]). Range reads walk only the chunks that intersect
// the requested span, so the cost of drawing a strip is proportional to the
// visible cells and not to the size of the populated lattice.
//
// # Thread Safety
//
// A Store may be written by one goroutine while others read it. Row and
// Column copy each chunk under the read lock before handing cells back, so a
// caller never sees a cell whose two index entries disagree.
package cellstore

import (
	"sync"

	"github.com/san-kum/cellgrid/internal/palette"
)

const DefaultChunkSize = 16

// Cell is a present lattice cell.
type Cell struct {
	X, Y  int
	Color palette.Color
}

type chunk map[int]palette.Color

// line maps chunk index to chunk for one row or column.
type line map[int]chunk

type Store struct {
	mu        sync.RWMutex
	chunkSize int
	rows      map[int]line
	cols      map[int]line
	n         int
}

func New(chunkSize int) *Store {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Store{
		chunkSize: chunkSize,
		rows:      make(map[int]line),
		cols:      make(map[int]line),
	}
}

func (s *Store) ChunkSize() int { return s.chunkSize }

// ChunkOf returns the chunk index for a coordinate, flooring negatives.
func (s *Store) ChunkOf(v int) int {
	return FloorDiv(v, s.chunkSize)
}

// Get returns the color at (x, y) and whether the cell is present.
func (s *Store) Get(x, y int) (palette.Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[y][s.ChunkOf(x)][x]
	return c, ok
}

func (s *Store) Set(x, y int, c palette.Color) {
	s.mu.Lock()
	s.put(x, y, c)
	s.mu.Unlock()
}

// Remove deletes (x, y). Removing an absent cell does nothing.
func (s *Store) Remove(x, y int) {
	s.mu.Lock()
	s.del(x, y)
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.rows = make(map[int]line)
	s.cols = make(map[int]line)
	s.n = 0
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

// put and del are the only mutation paths; both indexes change together.
func (s *Store) put(x, y int, c palette.Color) {
	if !insert(s.rows, y, s.ChunkOf(x), x, c) {
		s.n++
	}
	insert(s.cols, x, s.ChunkOf(y), y, c)
}

func (s *Store) del(x, y int) {
	if remove(s.rows, y, s.ChunkOf(x), x) {
		s.n--
	}
	remove(s.cols, x, s.ChunkOf(y), y)
}

func insert(idx map[int]line, major, ci, minor int, c palette.Color) bool {
	l, ok := idx[major]
	if !ok {
		l = make(line)
		idx[major] = l
	}
	ch, ok := l[ci]
	if !ok {
		ch = make(chunk, 4)
		l[ci] = ch
	}
	_, existed := ch[minor]
	ch[minor] = c
	return existed
}

func remove(idx map[int]line, major, ci, minor int) bool {
	l, ok := idx[major]
	if !ok {
		return false
	}
	ch, ok := l[ci]
	if !ok {
		return false
	}
	if _, ok := ch[minor]; !ok {
		return false
	}
	delete(ch, minor)
	if len(ch) == 0 {
		delete(l, ci)
		if len(l) == 0 {
			delete(idx, major)
		}
	}
	return true
}

// Row returns every present cell of row y whose chunk index lies in
// [chunkStart, chunkEnd). Order within the result is unspecified.
func (s *Store) Row(y, chunkStart, chunkEnd int) []Cell {
	return s.scan(s.rows, y, chunkStart, chunkEnd, func(minor int, c palette.Color) Cell {
		return Cell{X: minor, Y: y, Color: c}
	})
}

// Column is Row for column x.
func (s *Store) Column(x, chunkStart, chunkEnd int) []Cell {
	return s.scan(s.cols, x, chunkStart, chunkEnd, func(minor int, c palette.Color) Cell {
		return Cell{X: x, Y: minor, Color: c}
	})
}

func (s *Store) scan(idx map[int]line, major, chunkStart, chunkEnd int, mk func(int, palette.Color) Cell) []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := idx[major]
	if !ok {
		return nil
	}
	var out []Cell
	// sparse lines are cheaper to walk by present chunk than by span
	if len(l) < chunkEnd-chunkStart {
		for ci, ch := range l {
			if ci < chunkStart || ci >= chunkEnd {
				continue
			}
			for minor, c := range ch {
				out = append(out, mk(minor, c))
			}
		}
		return out
	}
	for ci := chunkStart; ci < chunkEnd; ci++ {
		for minor, c := range l[ci] {
			out = append(out, mk(minor, c))
		}
	}
	return out
}

// Cells returns a snapshot of every present cell.
func (s *Store) Cells() []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Cell, 0, s.n)
	for y, l := range s.rows {
		for _, ch := range l {
			for x, c := range ch {
				out = append(out, Cell{X: x, Y: y, Color: c})
			}
		}
	}
	return out
}

// FloorDiv is integer division rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod is the non-negative remainder matching FloorDiv.
func Mod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
