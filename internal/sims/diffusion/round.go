package diffusion

import "grove-ca/pkg/bitgrid"

// Round carries the named masks of one diffusion round from stage to stage.
// Each stage takes a Round by value and returns an updated copy; the grids it
// points at are never modified once stored.
type Round[W bitgrid.Word] struct {
	Base  *bitgrid.Grid[W]
	Rules Rules

	// NorthSouthBlocked marks cells that may not be entered moving north or
	// south: occupied cells and cells with an occupant directly east or west.
	NorthSouthBlocked *bitgrid.Grid[W]
	// EastWestBlocked is the east/west counterpart of NorthSouthBlocked.
	EastWestBlocked *bitgrid.Grid[W]

	// Stationary holds agents that stay put: isolated agents, and after
	// Resolve, agents whose proposal collided.
	Stationary *bitgrid.Grid[W]
	// Willing holds agents with a neighbor that have not yet had a proposal
	// accepted.
	Willing *bitgrid.Grid[W]
	// Movers is the value of Willing before any proposal was made.
	Movers *bitgrid.Grid[W]

	// Proposed holds accepted destinations indexed by Direction.
	Proposed [4]*bitgrid.Grid[W]
	// NorthSouthConflict and EastWestConflict hold destinations claimed from
	// both opposite sides; both claims were cancelled.
	NorthSouthConflict *bitgrid.Grid[W]
	EastWestConflict   *bitgrid.Grid[W]
}

// Identify classifies every agent of base by its 8-neighborhood and builds the
// masks that gate north/south and east/west proposals.
func Identify[W bitgrid.Word](base *bitgrid.Grid[W]) Round[W] {
	east := base.OffsetRight()
	west := base.OffsetLeft()
	north := base.OffsetUp()
	south := base.OffsetDown()

	horizontal := east.Or(west)
	vertical := north.Or(south)
	neighbors := bitgrid.Union(horizontal, vertical, horizontal.OffsetUp(), horizontal.OffsetDown())

	movers := base.And(neighbors)
	return Round[W]{
		Base:              base,
		NorthSouthBlocked: horizontal.Or(base),
		EastWestBlocked:   vertical.Or(base),
		Stationary:        base.AndNot(neighbors),
		Willing:           movers,
		Movers:            movers,
	}
}

func (r Round[W]) blocked(d Direction) *bitgrid.Grid[W] {
	if d == North || d == South {
		return r.NorthSouthBlocked
	}
	return r.EastWestBlocked
}

// Propose tries each direction in rules order. An agent's first direction
// whose destination is not blocked becomes its proposal and it is withdrawn
// from Willing, so no agent proposes twice in one round.
func Propose[W bitgrid.Word](r Round[W], rules Rules) Round[W] {
	r.Rules = rules
	for _, d := range rules {
		accepted := shift(r.Willing, d).AndNot(r.blocked(d))
		r.Proposed[d] = accepted
		r.Willing = r.Willing.AndNot(shift(accepted, d.Opposite()))
	}
	return r
}

// Resolve cancels every pair of proposals that meet head-on and returns the
// proposers to Stationary. Proposals from perpendicular directions can never
// share a destination because the blocked masks already forbid it.
func Resolve[W bitgrid.Word](r Round[W]) Round[W] {
	ns := r.Proposed[North].And(r.Proposed[South])
	r.Proposed[North] = r.Proposed[North].AndNot(ns)
	r.Proposed[South] = r.Proposed[South].AndNot(ns)

	ew := r.Proposed[East].And(r.Proposed[West])
	r.Proposed[East] = r.Proposed[East].AndNot(ew)
	r.Proposed[West] = r.Proposed[West].AndNot(ew)

	r.NorthSouthConflict = ns
	r.EastWestConflict = ew
	r.Stationary = bitgrid.Union(r.Stationary,
		ns.OffsetUp(), ns.OffsetDown(),
		ew.OffsetLeft(), ew.OffsetRight())
	return r
}

// Compose assembles the next grid from the resolved masks.
func Compose[W bitgrid.Word](r Round[W]) *bitgrid.Grid[W] {
	return bitgrid.Union(r.Stationary, r.Willing,
		r.Proposed[North], r.Proposed[South],
		r.Proposed[East], r.Proposed[West])
}

// Plan runs Identify, Propose and Resolve for base.
func Plan[W bitgrid.Word](base *bitgrid.Grid[W], rules Rules) Round[W] {
	return Resolve(Propose(Identify(base), rules))
}

// Conflicts returns the agents sent back to their cell by a head-on collision.
func (r Round[W]) Conflicts() *bitgrid.Grid[W] {
	return bitgrid.Union(r.NorthSouthConflict.OffsetUp(), r.NorthSouthConflict.OffsetDown(),
		r.EastWestConflict.OffsetLeft(), r.EastWestConflict.OffsetRight())
}

// Moved returns the number of agents that changed cell this round.
func (r Round[W]) Moved() int {
	n := 0
	for _, p := range r.Proposed {
		n += p.Count()
	}
	return n
}
