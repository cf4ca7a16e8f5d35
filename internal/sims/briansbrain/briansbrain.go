// Package briansbrain runs Brian's Brain on two packed planes: cells that are
// firing and cells that are recovering. Cells beyond the board stay off.
package briansbrain

import (
	"strconv"

	"grove-ca/internal/core"
	"grove-ca/pkg/bitgrid"
	"grove-ca/pkg/sims/life"
)

const (
	stateOn    = 1
	stateDying = 2
)

// Brain implements Brian's Brain cellular automaton.
type Brain struct {
	w, h    int
	odds    int
	firing  *bitgrid.Grid[uint64]
	dying   *bitgrid.Grid[uint64]
	field   *bitgrid.Grid[uint64]
	display *core.ByteGrid
}

// New creates a Brain simulation with the provided dimensions.
func New(w, h int) *Brain {
	field := bitgrid.New[uint64](h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field.Set(y, x)
		}
	}
	return &Brain{
		w: w, h: h,
		odds:    8,
		firing:  bitgrid.New[uint64](h, w),
		dying:   bitgrid.New[uint64](h, w),
		field:   field,
		display: core.NewByteGrid(w, h),
	}
}

// Name identifies the simulation.
func (b *Brain) Name() string { return "briansbrain" }

// Size returns the grid dimensions.
func (b *Brain) Size() core.Size { return core.Size{W: b.w, H: b.h} }

// Cells renders 0 for off, 1 for firing and 2 for dying.
func (b *Brain) Cells() []uint8 {
	cells := b.display.Cells()
	b.firing.Fill(cells, b.w, b.h)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if b.dying.IsSet(y, x) {
				cells[b.display.Index(x, y)] = stateDying
			}
		}
	}
	return cells
}

// Fire switches the cell at (x, y) to firing.
func (b *Brain) Fire(x, y int) {
	b.dying.Clear(y, x)
	b.firing.Set(y, x)
}

// Firing returns the number of firing cells.
func (b *Brain) Firing() int { return b.firing.Count() }

// Reset fires one cell in odds at random and clears the rest.
func (b *Brain) Reset(seed int64) {
	rng := core.NewRNG(seed).Source()
	b.firing = bitgrid.New[uint64](b.h, b.w)
	b.dying = bitgrid.New[uint64](b.h, b.w)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if rng.IntN(b.odds) == 0 {
				b.firing.Set(y, x)
			}
		}
	}
}

// Step advances the automaton by one tick. Firing cells start dying, dying
// cells switch off, and off cells with exactly two firing neighbors fire.
func (b *Brain) Step() {
	n := life.CountNeighbors(b.firing)
	born := n.Exactly(2).AndNot(b.firing).AndNot(b.dying).And(b.field)
	b.dying = b.firing
	b.firing = born
}

func init() {
	core.Register("briansbrain", func(cfg map[string]string) core.Sim {
		c := life.FromMap(cfg)
		b := New(c.Width, c.Height)
		if v, err := strconv.Atoi(cfg["odds"]); err == nil && v > 0 {
			b.odds = v
		}
		return b
	})
}
