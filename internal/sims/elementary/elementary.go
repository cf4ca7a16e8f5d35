package elementary

import (
	"strconv"

	"grove-ca/internal/core"
	"grove-ca/pkg/bitgrid"
)

// Config holds parameters for the elementary cellular automaton.
type Config struct {
	Width  int
	Height int
	Rule   uint8
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Width: 256, Height: 256, Rule: 110}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 255 {
			c.Rule = uint8(parsed)
		}
	}
	return c
}

// Elementary implements a one-dimensional Wolfram code projected vertically.
// Row zero holds the newest generation; older rows scroll downwards. Cells
// past either end of a row are dead.
type Elementary struct {
	w, h    int
	rule    uint8
	cur     *bitgrid.Grid[uint64]
	field   bitgrid.Row[uint64]
	display *core.ByteGrid
}

// New creates an automaton with the given dimensions and rule.
func New(w, h int, rule uint8) *Elementary {
	cur := bitgrid.New[uint64](h, w)
	field := bitgrid.NewRow[uint64](cur.Shape().Chunks)
	for x := 0; x < w; x++ {
		field.Set(x)
	}
	return &Elementary{w: w, h: h, rule: rule, cur: cur, field: field, display: core.NewByteGrid(w, h)}
}

// Name returns the simulation identifier.
func (e *Elementary) Name() string { return "elementary" }

// Size returns the simulation grid dimensions.
func (e *Elementary) Size() core.Size { return core.Size{W: e.w, H: e.h} }

// Cells renders the history into the display buffer.
func (e *Elementary) Cells() []uint8 {
	e.cur.Fill(e.display.Cells(), e.w, e.h)
	return e.display.Cells()
}

// Reset clears the grid and seeds the top row with a single active cell.
func (e *Elementary) Reset(seed int64) {
	e.cur = bitgrid.New[uint64](e.h, e.w)
	e.cur.Set(0, e.w/2)
}

// Next computes the generation that follows top.
func (e *Elementary) Next(top bitgrid.Row[uint64]) bitgrid.Row[uint64] {
	left := top.ShiftRight()
	right := top.ShiftLeft()
	planes := [2][3]bitgrid.Row[uint64]{
		{left.Not(), top.Not(), right.Not()},
		{left, top, right},
	}
	next := bitgrid.NewRow[uint64](len(top))
	for idx := 0; idx < 8; idx++ {
		if (e.rule>>idx)&1 == 0 {
			continue
		}
		match := planes[idx>>2&1][0].And(planes[idx>>1&1][1]).And(planes[idx&1][2])
		next = next.Or(match)
	}
	return next.And(e.field)
}

// Step computes the next generation and scrolls history downwards.
func (e *Elementary) Step() {
	next := e.Next(e.cur.Row(0))
	e.cur = e.cur.OffsetDown()
	copy(e.cur.Row(0), next)
}

func init() {
	core.Register("elementary", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		return New(c.Width, c.Height, c.Rule)
	})
}
