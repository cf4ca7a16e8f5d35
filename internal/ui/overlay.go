//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"grove-ca/internal/core"
	"grove-ca/internal/render"
)

var layerKeys = []ebiten.Key{
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyDigit4,
	ebiten.KeyDigit5,
}

// Overlay tints the last round's mask layers on top of the grid.
type Overlay struct {
	src     MaskSource
	layers  *Layers
	painter *render.GridPainter
	scale   int
}

// NewOverlay constructs an overlay for sim. Sims without mask layers get an
// overlay that draws nothing.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{scale: scale}
	src, ok := sim.(MaskSource)
	if !ok {
		return o
	}
	size := sim.Size()
	o.src = src
	o.layers = NewLayers(len(src.MaskNames()))
	o.painter = render.NewGridPainter(size.W, size.H)
	return o
}

// Update toggles layers on the digit keys.
func (o *Overlay) Update() {
	if o.src == nil {
		return
	}
	for i, k := range layerKeys {
		if inpututil.IsKeyJustPressed(k) {
			o.layers.Toggle(i)
		}
	}
}

// Legend returns the layer list for the HUD.
func (o *Overlay) Legend() []string {
	if o.src == nil {
		return nil
	}
	return o.layers.Legend(o.src.MaskNames())
}

// Draw renders the shown layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.src == nil || !o.layers.Any() {
		return
	}
	o.painter.BlitLayers(screen, o.layers.Collect(o.src), o.scale)
}
