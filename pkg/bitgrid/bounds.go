package bitgrid

import "strings"

// Bounds is the smallest rectangle containing every occupied cell. All four
// edges are inclusive.
type Bounds struct {
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Height returns the number of rows spanned.
func (b Bounds) Height() int { return b.MaxRow - b.MinRow + 1 }

// Width returns the number of columns spanned.
func (b Bounds) Width() int { return b.MaxCol - b.MinCol + 1 }

// Area returns the number of cells inside the rectangle.
func (b Bounds) Area() int { return b.Height() * b.Width() }

// Contains reports whether (row, col) lies inside the rectangle.
func (b Bounds) Contains(row, col int) bool {
	return row >= b.MinRow && row <= b.MaxRow && col >= b.MinCol && col <= b.MaxCol
}

// Bounds returns the occupied rectangle. ok is false when the grid is empty.
// The scan works a word at a time rather than a cell at a time.
func (g *Grid[W]) Bounds() (b Bounds, ok bool) {
	width := Bits[W]()
	b = Bounds{MinRow: g.rows, MinCol: g.Cols(), MaxRow: -1, MaxCol: -1}
	for r := 0; r < g.rows; r++ {
		row := g.Row(r)
		for i, w := range row {
			if w == 0 {
				continue
			}
			ok = true
			b.MinRow = min(b.MinRow, r)
			b.MaxRow = r
			b.MinCol = min(b.MinCol, i*width+lowestSet(w))
			b.MaxCol = max(b.MaxCol, i*width+highestSet(w))
		}
	}
	if !ok {
		return Bounds{}, false
	}
	return b, true
}

// CountEmptyInBounds returns the occupied rectangle together with the number
// of empty cells inside it. Every occupied cell lies inside its own bounds, so
// the empty count is the rectangle's area minus the population. An empty grid
// reports zero.
func (g *Grid[W]) CountEmptyInBounds() (Bounds, int) {
	b, ok := g.Bounds()
	if !ok {
		return b, 0
	}
	return b, b.Area() - g.Count()
}

// Render draws the cells inside b, one line per row.
func (g *Grid[W]) Render(b Bounds) string {
	var sb strings.Builder
	sb.Grow(b.Height() * (b.Width() + 1))
	for r := b.MinRow; r <= b.MaxRow; r++ {
		if r > b.MinRow {
			sb.WriteByte('\n')
		}
		row := g.Row(r)
		for c := b.MinCol; c <= b.MaxCol; c++ {
			if row.IsSet(c) {
				sb.WriteByte(glyphOccupied)
			} else {
				sb.WriteByte(glyphEmpty)
			}
		}
	}
	return sb.String()
}
