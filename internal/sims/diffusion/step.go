package diffusion

import (
	"errors"
	"fmt"

	"grove-ca/pkg/bitgrid"
)

// ErrCapacityExhausted is returned by the checked drivers when an agent sits
// on the outermost row or column, where a proposal could leave the grid.
var ErrCapacityExhausted = errors.New("diffusion: occupied cells reached the grid capacity edge")

// Step runs one full round on g with the given priority order and returns the
// next grid. The caller rotates rules before the following round.
func Step[W bitgrid.Word](g *bitgrid.Grid[W], rules Rules) *bitgrid.Grid[W] {
	return Compose(Plan(g, rules))
}

// StepChecked is Step with capacity enforcement. Agents on the capacity edge
// would have proposals silently dropped by the shift operators, so the round
// is refused instead.
func StepChecked[W bitgrid.Word](g *bitgrid.Grid[W], rules Rules) (*bitgrid.Grid[W], error) {
	if err := CheckCapacity(g); err != nil {
		return g, err
	}
	return Step(g, rules), nil
}

// CheckCapacity reports ErrCapacityExhausted when an occupied cell lies on
// the first or last row or column of g.
func CheckCapacity[W bitgrid.Word](g *bitgrid.Grid[W]) error {
	b, ok := g.Bounds()
	if !ok {
		return nil
	}
	if b.MinRow == 0 || b.MinCol == 0 || b.MaxRow == g.Rows()-1 || b.MaxCol == g.Cols()-1 {
		return fmt.Errorf("%w: bounds rows %d-%d cols %d-%d in %dx%d",
			ErrCapacityExhausted, b.MinRow, b.MaxRow, b.MinCol, b.MaxCol, g.Rows(), g.Cols())
	}
	return nil
}

// RunFixed applies exactly rounds rounds starting from the default priority
// order and returns the final grid.
func RunFixed[W bitgrid.Word](g *bitgrid.Grid[W], rounds int) *bitgrid.Grid[W] {
	rules := DefaultRules()
	for i := 0; i < rounds; i++ {
		g = Step(g, rules)
		rules = rules.Rotate()
	}
	return g
}

// RunUntilStable steps g from the default priority order until a round leaves
// the grid unchanged. It returns the 1-based index of that round and the
// fixpoint grid.
func RunUntilStable[W bitgrid.Word](g *bitgrid.Grid[W]) (int, *bitgrid.Grid[W]) {
	rules := DefaultRules()
	for round := 1; ; round++ {
		next := Step(g, rules)
		if next.Equal(g) {
			return round, next
		}
		g = next
		rules = rules.Rotate()
	}
}
