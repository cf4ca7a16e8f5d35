package life

import (
	"grove-ca/internal/core"
	"grove-ca/pkg/bitgrid"
)

// Life implements Conway's Game of Life on a packed grid. Cells beyond the
// board are always dead.
type Life struct {
	w, h    int
	density float64
	cur     *bitgrid.Grid[uint64]
	field   *bitgrid.Grid[uint64]
	display *core.ByteGrid
}

// New returns a Life simulation with the provided dimensions.
func New(w, h int) *Life {
	cur := bitgrid.New[uint64](h, w)
	field := bitgrid.New[uint64](h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field.Set(y, x)
		}
	}
	return &Life{
		w: w, h: h,
		density: DefaultConfig().Density,
		cur:     cur,
		field:   field,
		display: core.NewByteGrid(w, h),
	}
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.w, H: l.h} }

// Cells renders the board into the display buffer.
func (l *Life) Cells() []uint8 {
	l.cur.Fill(l.display.Cells(), l.w, l.h)
	return l.display.Cells()
}

// Set brings the cell at (x, y) to life.
func (l *Life) Set(x, y int) { l.cur.Set(y, x) }

// Alive reports whether the cell at (x, y) is alive.
func (l *Life) Alive(x, y int) bool { return l.cur.IsSet(y, x) }

// Population returns the number of live cells.
func (l *Life) Population() int { return l.cur.Count() }

// Reset randomizes the board using the provided seed.
func (l *Life) Reset(seed int64) {
	rng := core.NewRNG(seed)
	l.cur = bitgrid.New[uint64](l.h, l.w)
	for y := 0; y < l.h; y++ {
		for x := 0; x < l.w; x++ {
			if rng.Chance(l.density) {
				l.cur.Set(y, x)
			}
		}
	}
}

// Step advances the simulation by one generation.
func (l *Life) Step() {
	n := CountNeighbors(l.cur)
	l.cur = n.Exactly(3).Or(n.Exactly(2).And(l.cur)).And(l.field)
}

func init() {
	core.Register("life", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		l := New(c.Width, c.Height)
		l.density = c.Density
		return l
	})
}
