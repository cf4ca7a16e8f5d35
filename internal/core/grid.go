package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order. Sims
// backed by packed storage use it as their display buffer.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// Resize reallocates the buffer when the dimensions change and clears it.
func (g *ByteGrid) Resize(w, h int) {
	if w == g.W && h == g.H {
		g.Clear()
		return
	}
	*g = *NewByteGrid(w, h)
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	clear(g.data)
}
