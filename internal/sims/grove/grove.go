// Package grove is the per-agent reference engine for diffusion rounds. Every
// agent is a position in a set and every round visits each one, so it is slow
// but has no capacity limit. It backs the naive engine of cmd/diffuse and the
// agreement tests of the bit-parallel engine.
package grove

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Point is a cell position. Rows grow southwards, columns eastwards.
type Point struct {
	Row, Col int
}

func (p Point) add(o Point) Point { return Point{Row: p.Row + o.Row, Col: p.Col + o.Col} }

// Order lists the directions an agent tries, as the letters N, S, W and E.
type Order [4]byte

// DefaultOrder is north, south, west, east.
var DefaultOrder = Order{'N', 'S', 'W', 'E'}

// ParseOrder reads a four-letter order such as "NSWE".
func ParseOrder(s string) (Order, error) {
	var o Order
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != len(o) {
		return o, fmt.Errorf("grove: order %q must have 4 letters", s)
	}
	seen := map[byte]bool{}
	for i := range o {
		if _, ok := steps[s[i]]; !ok || seen[s[i]] {
			return o, fmt.Errorf("grove: order %q must list N, S, W and E once each", s)
		}
		seen[s[i]] = true
		o[i] = s[i]
	}
	return o, nil
}

func (o Order) rotate() Order { return Order{o[1], o[2], o[3], o[0]} }

func (o Order) String() string { return string(o[:]) }

type look struct {
	step  Point
	sides [2]Point
}

var steps = map[byte]look{
	'N': {step: Point{-1, 0}, sides: [2]Point{{-1, -1}, {-1, 1}}},
	'S': {step: Point{1, 0}, sides: [2]Point{{1, -1}, {1, 1}}},
	'W': {step: Point{0, -1}, sides: [2]Point{{-1, -1}, {1, -1}}},
	'E': {step: Point{0, 1}, sides: [2]Point{{-1, 1}, {1, 1}}},
}

var ring = [8]Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Grove is a set of occupied positions plus the order for the next round.
type Grove struct {
	agents map[Point]struct{}
	order  Order
	round  int
}

// ErrEmpty is returned by Parse when the input has no lines.
var ErrEmpty = errors.New("grove: empty input")

// Parse reads '#' (agent) and '.' (empty) glyphs. Row 0 col 0 is the first
// glyph of the first line.
func Parse(text string) (*Grove, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, ErrEmpty
	}
	g := New(nil)
	for r, line := range lines {
		if len(line) != len(lines[0]) {
			return nil, fmt.Errorf("grove: line %d has %d glyphs, want %d", r+1, len(line), len(lines[0]))
		}
		for c := 0; c < len(line); c++ {
			switch line[c] {
			case '#':
				g.agents[Point{Row: r, Col: c}] = struct{}{}
			case '.':
			default:
				return nil, fmt.Errorf("grove: line %d col %d: unexpected glyph %q", r+1, c+1, line[c])
			}
		}
	}
	return g, nil
}

// New builds a grove from a list of positions using the default order.
func New(points []Point) *Grove {
	g := &Grove{agents: make(map[Point]struct{}, len(points)), order: DefaultOrder}
	for _, p := range points {
		g.agents[p] = struct{}{}
	}
	return g
}

// SetOrder replaces the order used by the next round.
func (g *Grove) SetOrder(o Order) { g.order = o }

// Order returns the order used by the next round.
func (g *Grove) Order() Order { return g.order }

// Round returns the number of rounds played.
func (g *Grove) Round() int { return g.round }

// Len returns the number of agents.
func (g *Grove) Len() int { return len(g.agents) }

func (g *Grove) occupied(p Point) bool {
	_, ok := g.agents[p]
	return ok
}

func (g *Grove) crowded(p Point) bool {
	for _, d := range ring {
		if g.occupied(p.add(d)) {
			return true
		}
	}
	return false
}

func (g *Grove) propose(p Point) (Point, bool) {
	for _, letter := range g.order {
		l := steps[letter]
		if g.occupied(p.add(l.step)) || g.occupied(p.add(l.sides[0])) || g.occupied(p.add(l.sides[1])) {
			continue
		}
		return p.add(l.step), true
	}
	return p, false
}

// Step plays one round and reports how many agents moved.
func (g *Grove) Step() int {
	targets := make(map[Point]Point, len(g.agents))
	claims := make(map[Point]int, len(g.agents))
	for p := range g.agents {
		if !g.crowded(p) {
			continue
		}
		if dst, ok := g.propose(p); ok {
			targets[p] = dst
			claims[dst]++
		}
	}

	next := make(map[Point]struct{}, len(g.agents))
	moved := 0
	for p := range g.agents {
		dst, ok := targets[p]
		if ok && claims[dst] == 1 {
			next[dst] = struct{}{}
			moved++
			continue
		}
		next[p] = struct{}{}
	}
	g.agents = next
	g.order = g.order.rotate()
	g.round++
	return moved
}

// RunFixed plays rounds rounds.
func (g *Grove) RunFixed(rounds int) {
	for i := 0; i < rounds; i++ {
		g.Step()
	}
}

// RunUntilStable plays rounds until one moves no agent and returns that
// round's number.
func (g *Grove) RunUntilStable() int {
	for {
		if g.Step() == 0 {
			return g.round
		}
	}
}

// Bounds returns the smallest rectangle holding every agent. ok is false for
// an empty grove.
func (g *Grove) Bounds() (lo, hi Point, ok bool) {
	for p := range g.agents {
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo.Row = min(lo.Row, p.Row)
		lo.Col = min(lo.Col, p.Col)
		hi.Row = max(hi.Row, p.Row)
		hi.Col = max(hi.Col, p.Col)
	}
	return lo, hi, ok
}

// EmptyInBounds counts the unoccupied cells of the bounding rectangle.
func (g *Grove) EmptyInBounds() int {
	lo, hi, ok := g.Bounds()
	if !ok {
		return 0
	}
	return (hi.Row-lo.Row+1)*(hi.Col-lo.Col+1) - len(g.agents)
}

// Points returns the agents sorted by row then column.
func (g *Grove) Points() []Point {
	out := make([]Point, 0, len(g.agents))
	for p := range g.agents {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// String renders the bounding rectangle with '#' and '.'.
func (g *Grove) String() string {
	lo, hi, ok := g.Bounds()
	if !ok {
		return ""
	}
	var b strings.Builder
	for r := lo.Row; r <= hi.Row; r++ {
		if r > lo.Row {
			b.WriteByte('\n')
		}
		for c := lo.Col; c <= hi.Col; c++ {
			if g.occupied(Point{Row: r, Col: c}) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
