package ui

import (
	"fmt"
	"strings"

	"grove-ca/internal/core"
)

// MaskSource is implemented by sims that expose per-round debug layers as
// 0/1 cell buffers of the same shape as Cells.
type MaskSource interface {
	MaskNames() []string
	Mask(i int) []uint8
}

// Layers tracks which mask layers the overlay shows.
type Layers struct {
	on []bool
}

// NewLayers returns n layers, all hidden.
func NewLayers(n int) *Layers {
	return &Layers{on: make([]bool, n)}
}

// Toggle flips layer i and returns its new state. Out of range is ignored.
func (l *Layers) Toggle(i int) bool {
	if i < 0 || i >= len(l.on) {
		return false
	}
	l.on[i] = !l.on[i]
	return l.on[i]
}

// Enabled reports whether layer i is shown.
func (l *Layers) Enabled(i int) bool {
	return i >= 0 && i < len(l.on) && l.on[i]
}

// Any reports whether at least one layer is shown.
func (l *Layers) Any() bool {
	for _, on := range l.on {
		if on {
			return true
		}
	}
	return false
}

// Collect fetches the shown layers from src. Hidden layers are nil so that
// indices keep matching the palette.
func (l *Layers) Collect(src MaskSource) [][]uint8 {
	out := make([][]uint8, len(l.on))
	for i, on := range l.on {
		if on {
			out[i] = src.Mask(i)
		}
	}
	return out
}

// Legend describes each layer with its toggle key.
func (l *Layers) Legend(names []string) []string {
	out := make([]string, 0, len(names))
	for i, name := range names {
		mark := " "
		if l.Enabled(i) {
			mark = "x"
		}
		out = append(out, fmt.Sprintf("[%s] %d %s", mark, i+1, name))
	}
	return out
}

// PanelLines flattens a parameter snapshot into the text rows of the HUD.
func PanelLines(title string, snap core.ParameterSnapshot) []string {
	lines := []string{title}
	for _, g := range snap.Groups {
		lines = append(lines, "", strings.ToUpper(g.Name))
		for _, p := range g.Params {
			value := p.Value
			if value == "" {
				value = "--"
			}
			lines = append(lines, fmt.Sprintf("%-12s %s", p.Label, value))
		}
	}
	return lines
}
