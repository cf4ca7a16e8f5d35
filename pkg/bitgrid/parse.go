package bitgrid

import "strings"

// PaddingFor returns the minimum padding needed on each side of an input so
// that rounds rounds of one-cell moves can never reach the capacity edge.
// The extra cell keeps every occupant's neighborhood inside the grid.
func PaddingFor(rounds int) int {
	if rounds < 0 {
		rounds = 0
	}
	return rounds + 1
}

// Parse reads a block of '#' and '.' lines into a new grid whose capacity
// exceeds the input by padding cells on every side. The input is centered in
// that capacity. Trailing blank lines and carriage returns are ignored.
func Parse[W Word](text string, padding int) (*Grid[W], error) {
	lines := splitLines(text)
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, ErrEmpty
	}
	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			return nil, &lineLengthError{line: i + 1, want: width, got: len(line)}
		}
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case glyphOccupied, glyphEmpty:
			default:
				return nil, &SyntaxError{Line: i + 1, Col: j + 1, Glyph: rune(line[j])}
			}
		}
	}

	if padding < 0 {
		padding = 0
	}
	g := New[W](len(lines)+2*padding, width+2*padding)
	rowOffset := (g.Rows() - len(lines)) / 2
	colOffset := (g.Cols() - width) / 2
	for i, line := range lines {
		row := g.Row(i + rowOffset)
		for j := 0; j < len(line); j++ {
			if line[j] == glyphOccupied {
				row.Set(j + colOffset)
			}
		}
	}
	return g, nil
}

// MustParse is like Parse but panics on malformed input. It is intended for
// fixtures and tests.
func MustParse[W Word](text string, padding int) *Grid[W] {
	g, err := Parse[W](text, padding)
	if err != nil {
		panic(err)
	}
	return g
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSuffix(l, "\r"))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
