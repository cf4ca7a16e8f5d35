package bitgrid

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when parsing input that holds no rows.
	ErrEmpty = errors.New("bitgrid: empty input")
	// ErrRagged is returned when input lines differ in length.
	ErrRagged = errors.New("bitgrid: input lines differ in length")
)

// SyntaxError reports an unexpected glyph in parsed input. Line and Col are
// 1-based.
type SyntaxError struct {
	Line  int
	Col   int
	Glyph rune
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bitgrid: unexpected glyph %q at %d:%d (want '#' or '.')", e.Glyph, e.Line, e.Col)
}

type lineLengthError struct {
	line      int
	want, got int
}

func (e *lineLengthError) Error() string {
	return fmt.Sprintf("%v: line %d has %d glyphs, want %d", ErrRagged, e.line, e.got, e.want)
}

func (e *lineLengthError) Unwrap() error { return ErrRagged }

// ShapeError is the panic value raised when grids or rows of different
// capacity are combined, or a grid is allocated with no cells.
type ShapeError struct {
	Op   string
	Want Shape
	Got  Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("bitgrid: %s: shape mismatch: want %dx%d words, got %dx%d",
		e.Op, e.Want.Rows, e.Want.Chunks, e.Got.Rows, e.Got.Chunks)
}
