package bitgrid

import (
	"fmt"
	"strings"
)

const (
	glyphOccupied = '#'
	glyphEmpty    = '.'
)

// Shape describes the fixed capacity of a Grid.
type Shape struct {
	Rows   int
	Chunks int
}

// Grid is a rows × cols occupancy bitmap stored row-major, one Row of Chunks
// words per line. Every operation that produces a Grid allocates a new one;
// receivers are never modified except through Set and Clear.
type Grid[W Word] struct {
	rows   int
	chunks int
	words  []W
}

// New allocates an empty grid with at least cols columns. The column count is
// rounded up to a whole number of words.
func New[W Word](rows, cols int) *Grid[W] {
	b := Bits[W]()
	chunks := (cols + b - 1) / b
	if rows <= 0 || cols <= 0 {
		panic(&ShapeError{Op: "New", Want: Shape{Rows: 1, Chunks: 1}, Got: Shape{Rows: rows, Chunks: chunks}})
	}
	return &Grid[W]{rows: rows, chunks: chunks, words: make([]W, rows*chunks)}
}

// FromWords builds a grid over a copy of words laid out row-major.
func FromWords[W Word](rows, chunks int, words []W) (*Grid[W], error) {
	if rows <= 0 || chunks <= 0 || len(words) != rows*chunks {
		return nil, fmt.Errorf("bitgrid: %d words do not fill %d rows of %d chunks", len(words), rows, chunks)
	}
	g := &Grid[W]{rows: rows, chunks: chunks, words: make([]W, len(words))}
	copy(g.words, words)
	return g, nil
}

// Rows returns the row capacity.
func (g *Grid[W]) Rows() int { return g.rows }

// Cols returns the column capacity.
func (g *Grid[W]) Cols() int { return g.chunks * Bits[W]() }

// Shape returns the grid's capacity in rows and words per row.
func (g *Grid[W]) Shape() Shape { return Shape{Rows: g.rows, Chunks: g.chunks} }

// Words exposes the backing storage, row-major.
func (g *Grid[W]) Words() []W { return g.words }

// Row returns a view of row i sharing storage with g.
func (g *Grid[W]) Row(i int) Row[W] {
	return Row[W](g.words[i*g.chunks : (i+1)*g.chunks : (i+1)*g.chunks])
}

// Set marks the cell at (row, col) as occupied.
func (g *Grid[W]) Set(row, col int) { g.Row(row).Set(col) }

// Clear marks the cell at (row, col) as empty.
func (g *Grid[W]) Clear(row, col int) { g.Row(row).Clear(col) }

// IsSet reports whether the cell at (row, col) is occupied.
func (g *Grid[W]) IsSet(row, col int) bool { return g.Row(row).IsSet(col) }

// Clone returns a deep copy of g.
func (g *Grid[W]) Clone() *Grid[W] {
	out := g.blank()
	copy(out.words, g.words)
	return out
}

func (g *Grid[W]) blank() *Grid[W] {
	return &Grid[W]{rows: g.rows, chunks: g.chunks, words: make([]W, len(g.words))}
}

// OffsetRight moves every occupied cell one column right.
func (g *Grid[W]) OffsetRight() *Grid[W] {
	out := g.blank()
	for i := 0; i < g.rows; i++ {
		shiftRightInto(out.Row(i), g.Row(i))
	}
	return out
}

// OffsetLeft moves every occupied cell one column left.
func (g *Grid[W]) OffsetLeft() *Grid[W] {
	out := g.blank()
	for i := 0; i < g.rows; i++ {
		shiftLeftInto(out.Row(i), g.Row(i))
	}
	return out
}

// OffsetUp moves every occupied cell one row up. Row zero is dropped and the
// last row comes back empty.
func (g *Grid[W]) OffsetUp() *Grid[W] {
	out := g.blank()
	copy(out.words, g.words[g.chunks:])
	return out
}

// OffsetDown moves every occupied cell one row down. The last row is dropped
// and row zero comes back empty.
func (g *Grid[W]) OffsetDown() *Grid[W] {
	out := g.blank()
	copy(out.words[g.chunks:], g.words[:len(g.words)-g.chunks])
	return out
}

// And returns the cells occupied in both g and o.
func (g *Grid[W]) And(o *Grid[W]) *Grid[W] {
	g.mustMatch("Grid.And", o)
	out := g.blank()
	for i, w := range g.words {
		out.words[i] = w & o.words[i]
	}
	return out
}

// Or returns the cells occupied in either g or o.
func (g *Grid[W]) Or(o *Grid[W]) *Grid[W] {
	g.mustMatch("Grid.Or", o)
	out := g.blank()
	for i, w := range g.words {
		out.words[i] = w | o.words[i]
	}
	return out
}

// Xor returns the cells occupied in exactly one of g and o.
func (g *Grid[W]) Xor(o *Grid[W]) *Grid[W] {
	g.mustMatch("Grid.Xor", o)
	out := g.blank()
	for i, w := range g.words {
		out.words[i] = w ^ o.words[i]
	}
	return out
}

// AndNot returns the cells occupied in g but not in o. It is equivalent to
// g.And(o.Not()) without the intermediate grid.
func (g *Grid[W]) AndNot(o *Grid[W]) *Grid[W] {
	g.mustMatch("Grid.AndNot", o)
	out := g.blank()
	for i, w := range g.words {
		out.words[i] = w &^ o.words[i]
	}
	return out
}

// Not returns the complement of g over its whole capacity.
func (g *Grid[W]) Not() *Grid[W] {
	out := g.blank()
	for i, w := range g.words {
		out.words[i] = ^w
	}
	return out
}

// Union ORs any number of same-shaped grids into a new grid.
func Union[W Word](first *Grid[W], rest ...*Grid[W]) *Grid[W] {
	out := first.Clone()
	for _, o := range rest {
		out.mustMatch("Union", o)
		for i, w := range o.words {
			out.words[i] |= w
		}
	}
	return out
}

// Equal reports whether g and o have the same shape and the same cells.
func (g *Grid[W]) Equal(o *Grid[W]) bool {
	if g.rows != o.rows || g.chunks != o.chunks {
		return false
	}
	for i, w := range g.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (g *Grid[W]) Count() int {
	n := 0
	for _, w := range g.words {
		n += onesCount(w)
	}
	return n
}

// IsEmpty reports whether no cell is occupied.
func (g *Grid[W]) IsEmpty() bool {
	for _, w := range g.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (g *Grid[W]) mustMatch(op string, o *Grid[W]) {
	if g.rows != o.rows || g.chunks != o.chunks {
		panic(&ShapeError{Op: op, Want: g.Shape(), Got: o.Shape()})
	}
}

// String renders the full capacity, one line per row.
func (g *Grid[W]) String() string {
	var b strings.Builder
	for i := 0; i < g.rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(g.Row(i).String())
	}
	return b.String()
}

// Fill writes the top-left w × h window of g into dst as 0/1 bytes, row-major.
// Cells outside the grid's capacity are written as 0.
func (g *Grid[W]) Fill(dst []uint8, w, h int) {
	cols := g.Cols()
	for y := 0; y < h; y++ {
		line := dst[y*w : (y+1)*w]
		if y >= g.rows {
			clear(line)
			continue
		}
		row := g.Row(y)
		for x := range line {
			line[x] = 0
			if x < cols && row.IsSet(x) {
				line[x] = 1
			}
		}
	}
}
