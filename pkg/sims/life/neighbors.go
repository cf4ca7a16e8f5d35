package life

import "grove-ca/pkg/bitgrid"

// Neighbors is a bit-sliced count of the live Moore neighbors of every cell.
// The count is kept modulo eight, so a cell with eight neighbors reads as
// zero.
type Neighbors struct {
	s0, s1, s2 *bitgrid.Grid[uint64]
}

// CountNeighbors sums the eight shifted copies of g. Cells beyond the grid
// count as dead.
func CountNeighbors(g *bitgrid.Grid[uint64]) Neighbors {
	east, west := g.OffsetRight(), g.OffsetLeft()

	s0 := bitgrid.New[uint64](g.Rows(), g.Cols())
	s1, s2 := s0, s0
	for _, n := range []*bitgrid.Grid[uint64]{
		east, west,
		g.OffsetUp(), east.OffsetUp(), west.OffsetUp(),
		g.OffsetDown(), east.OffsetDown(), west.OffsetDown(),
	} {
		c0 := s0.And(n)
		s0 = s0.Xor(n)
		c1 := s1.And(c0)
		s1 = s1.Xor(c0)
		s2 = s2.Xor(c1)
	}
	return Neighbors{s0: s0, s1: s1, s2: s2}
}

// Exactly returns the cells with k live neighbors, k in [0, 7].
func (n Neighbors) Exactly(k int) *bitgrid.Grid[uint64] {
	out := n.s0.Or(n.s0.Not())
	for i, plane := range []*bitgrid.Grid[uint64]{n.s0, n.s1, n.s2} {
		if k>>i&1 == 1 {
			out = out.And(plane)
		} else {
			out = out.AndNot(plane)
		}
	}
	return out
}
