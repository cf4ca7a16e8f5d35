package diffusion

import (
	"fmt"
	"strings"

	"grove-ca/pkg/bitgrid"
)

// Direction is one of the four cardinal moves an agent may propose.
type Direction uint8

const (
	North Direction = iota
	South
	West
	East
)

var directionNames = [...]string{North: "north", South: "south", West: "west", East: "east"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Letter returns the single-letter abbreviation of d.
func (d Direction) Letter() byte {
	return strings.ToUpper(d.String())[0]
}

// Opposite returns the direction pointing back the way d came.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

// ParseDirection accepts a full name or its first letter, in any case.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// shift moves every cell of g one step towards d.
func shift[W bitgrid.Word](g *bitgrid.Grid[W], d Direction) *bitgrid.Grid[W] {
	switch d {
	case North:
		return g.OffsetUp()
	case South:
		return g.OffsetDown()
	case West:
		return g.OffsetLeft()
	default:
		return g.OffsetRight()
	}
}

// Rules is the priority order in which agents consider the four directions.
type Rules [4]Direction

// DefaultRules returns the initial order: north, south, west, east.
func DefaultRules() Rules {
	return Rules{North, South, West, East}
}

// Rotate returns the order used for the following round: the first direction
// moves to the back.
func (r Rules) Rotate() Rules {
	return Rules{r[1], r[2], r[3], r[0]}
}

// RotateBy applies Rotate n times.
func (r Rules) RotateBy(n int) Rules {
	n %= len(r)
	if n < 0 {
		n += len(r)
	}
	for ; n > 0; n-- {
		r = r.Rotate()
	}
	return r
}

// Offset reports how many rotations separate r from the default order, or -1
// if r is not a rotation of it.
func (r Rules) Offset() int {
	base := DefaultRules()
	for i := 0; i < len(base); i++ {
		if base.RotateBy(i) == r {
			return i
		}
	}
	return -1
}

// Valid reports whether every direction appears exactly once.
func (r Rules) Valid() bool {
	var seen [4]bool
	for _, d := range r {
		if int(d) >= len(seen) || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// String renders the order as letters, for example "NSWE".
func (r Rules) String() string {
	var b [4]byte
	for i, d := range r {
		b[i] = d.Letter()
	}
	return string(b[:])
}

// ParseRules reads an order written as letters ("NSWE") or a list of names.
// Each direction must appear exactly once.
func ParseRules(s string) (Rules, error) {
	var fields []string
	if strings.ContainsAny(s, ", ") {
		fields = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	} else {
		for _, c := range s {
			fields = append(fields, string(c))
		}
	}
	return RulesFrom(fields)
}

// RulesFrom builds an order from four direction names.
func RulesFrom(names []string) (Rules, error) {
	var r Rules
	if len(names) != len(r) {
		return r, fmt.Errorf("priority order needs 4 directions, got %d", len(names))
	}
	var seen [4]bool
	for i, name := range names {
		d, err := ParseDirection(name)
		if err != nil {
			return r, err
		}
		if seen[d] {
			return r, fmt.Errorf("direction %s listed twice", d)
		}
		seen[d] = true
		r[i] = d
	}
	return r, nil
}
