package bitgrid

// Row is one horizontal line of a Grid. Its length in words is fixed for the
// lifetime of the Grid that owns it.
type Row[W Word] []W

// NewRow allocates an empty row holding chunks words.
func NewRow[W Word](chunks int) Row[W] {
	if chunks <= 0 {
		panic(&ShapeError{Op: "NewRow", Want: Shape{Rows: 1, Chunks: 1}, Got: Shape{Rows: 1, Chunks: chunks}})
	}
	return make(Row[W], chunks)
}

// Cols returns the number of addressable columns.
func (r Row[W]) Cols() int { return len(r) * Bits[W]() }

func (r Row[W]) locate(col int) (int, W) {
	b := Bits[W]()
	return col / b, W(1) << uint(col%b)
}

// Set marks col as occupied.
func (r Row[W]) Set(col int) {
	chunk, bit := r.locate(col)
	r[chunk] |= bit
}

// Clear marks col as empty.
func (r Row[W]) Clear(col int) {
	chunk, bit := r.locate(col)
	r[chunk] &^= bit
}

// IsSet reports whether col is occupied.
func (r Row[W]) IsSet(col int) bool {
	chunk, bit := r.locate(col)
	return r[chunk]&bit != 0
}

// ShiftRight returns a copy of r with every bit moved one column right. The
// bit in the last column is dropped.
func (r Row[W]) ShiftRight() Row[W] {
	out := make(Row[W], len(r))
	shiftRightInto(out, r)
	return out
}

// ShiftLeft returns a copy of r with every bit moved one column left. The bit
// in column zero is dropped.
func (r Row[W]) ShiftLeft() Row[W] {
	out := make(Row[W], len(r))
	shiftLeftInto(out, r)
	return out
}

func shiftRightInto[W Word](dst, src Row[W]) {
	low := LowBit[W]()
	var carry W
	for i, chunk := range src {
		chunk = RotateLeft(chunk)
		wrapped := chunk & low
		chunk ^= wrapped
		chunk |= carry
		dst[i] = chunk
		carry = wrapped
	}
}

func shiftLeftInto[W Word](dst, src Row[W]) {
	high := HighBit[W]()
	var carry W
	for i := len(src) - 1; i >= 0; i-- {
		chunk := RotateRight(src[i])
		wrapped := chunk & high
		chunk ^= wrapped
		chunk |= carry
		dst[i] = chunk
		carry = wrapped
	}
}

// And returns the intersection of r and o.
func (r Row[W]) And(o Row[W]) Row[W] {
	checkRows("Row.And", r, o)
	out := make(Row[W], len(r))
	for i := range r {
		out[i] = r[i] & o[i]
	}
	return out
}

// Or returns the union of r and o.
func (r Row[W]) Or(o Row[W]) Row[W] {
	checkRows("Row.Or", r, o)
	out := make(Row[W], len(r))
	for i := range r {
		out[i] = r[i] | o[i]
	}
	return out
}

// Xor returns the symmetric difference of r and o.
func (r Row[W]) Xor(o Row[W]) Row[W] {
	checkRows("Row.Xor", r, o)
	out := make(Row[W], len(r))
	for i := range r {
		out[i] = r[i] ^ o[i]
	}
	return out
}

// Not returns the complement of r.
func (r Row[W]) Not() Row[W] {
	out := make(Row[W], len(r))
	for i := range r {
		out[i] = ^r[i]
	}
	return out
}

// Equal reports whether r and o hold the same bits. Rows of different length
// are never equal.
func (r Row[W]) Equal(o Row[W]) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// Count returns the number of occupied columns.
func (r Row[W]) Count() int {
	n := 0
	for _, w := range r {
		n += onesCount(w)
	}
	return n
}

// String renders the row using '#' for occupied and '.' for empty columns.
func (r Row[W]) String() string {
	buf := make([]byte, r.Cols())
	for c := range buf {
		buf[c] = glyphEmpty
		if r.IsSet(c) {
			buf[c] = glyphOccupied
		}
	}
	return string(buf)
}

func checkRows[W Word](op string, a, b Row[W]) {
	if len(a) != len(b) {
		panic(&ShapeError{Op: op, Want: Shape{Rows: 1, Chunks: len(a)}, Got: Shape{Rows: 1, Chunks: len(b)}})
	}
}
