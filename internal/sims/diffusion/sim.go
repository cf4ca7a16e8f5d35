package diffusion

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"grove-ca/internal/core"
	"grove-ca/internal/persistence/snapshot"
	"grove-ca/pkg/bitgrid"
)

// ErrRoundLimit is returned by RunUntilStable when the limit is reached
// before a fixpoint.
var ErrRoundLimit = errors.New("diffusion: round limit reached before the grid settled")

// Runner is the width-independent view of a Simulation.
type Runner interface {
	core.Sim
	core.ParameterProvider

	Round() int
	Rules() Rules
	WordBits() int
	Population() int
	StableRound() (int, bool)
	Err() error

	RunFor(rounds int) error
	RunUntilStable(limit int) (int, error)
	EmptyInBounds() (bitgrid.Bounds, int)
	Render() string

	MaskNames() []string
	Mask(i int) []uint8

	Snapshot(name string) snapshot.SnapshotV1
}

// Simulation holds a grid together with the state carried between rounds:
// the priority order, the round counter and the masks of the last round.
type Simulation[W bitgrid.Word] struct {
	cfg   Config
	grid  *bitgrid.Grid[W]
	rules Rules
	round int

	last   *Round[W]
	stable int
	err    error

	display *core.ByteGrid
}

// NewSimulation builds a simulation over words of type W and loads its
// initial layout.
func NewSimulation[W bitgrid.Word](cfg Config) (*Simulation[W], error) {
	cfg.WordBits = bitgrid.Bits[W]()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation[W]{cfg: cfg, display: core.NewByteGrid(1, 1)}
	if err := s.load(cfg.Seed); err != nil {
		return nil, err
	}
	return s, nil
}

// FromGrid wraps an existing grid. The simulation starts at round zero with
// cfg.Rules.
func FromGrid[W bitgrid.Word](g *bitgrid.Grid[W], cfg Config) *Simulation[W] {
	cfg.WordBits = bitgrid.Bits[W]()
	if !cfg.Rules.Valid() {
		cfg.Rules = DefaultRules()
	}
	s := &Simulation[W]{cfg: cfg, display: core.NewByteGrid(1, 1)}
	s.setGrid(g.Clone())
	return s
}

// NewSim picks the word width named by cfg.WordBits.
func NewSim(cfg Config) (Runner, error) {
	switch cfg.WordBits {
	case 8:
		return asRunner(NewSimulation[uint8](cfg))
	case 16:
		return asRunner(NewSimulation[uint16](cfg))
	case 32:
		return asRunner(NewSimulation[uint32](cfg))
	case 64:
		return asRunner(NewSimulation[uint64](cfg))
	}
	return nil, fmt.Errorf("%w: got %d", ErrUnknownWordBits, cfg.WordBits)
}

func asRunner[W bitgrid.Word](s *Simulation[W], err error) (Runner, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation[W]) load(seed int64) error {
	var g *bitgrid.Grid[W]
	if s.cfg.Layout != "" {
		parsed, err := bitgrid.Parse[W](s.cfg.Layout, s.cfg.EffectivePadding())
		if err != nil {
			return fmt.Errorf("diffusion: layout: %w", err)
		}
		g = parsed
	} else {
		g = scatter[W](s.cfg, seed)
	}
	s.setGrid(g)
	return nil
}

func (s *Simulation[W]) setGrid(g *bitgrid.Grid[W]) {
	s.grid = g
	s.rules = s.cfg.Rules
	s.round = 0
	s.last = nil
	s.stable = 0
	s.err = nil
	s.display.Resize(g.Cols(), g.Rows())
}

// scatter fills a centered Extent × Extent square with agents at the
// configured density.
func scatter[W bitgrid.Word](cfg Config, seed int64) *bitgrid.Grid[W] {
	pad := cfg.EffectivePadding()
	g := bitgrid.New[W](cfg.Extent+2*pad, cfg.Extent+2*pad)
	top := (g.Rows() - cfg.Extent) / 2
	left := (g.Cols() - cfg.Extent) / 2
	rng := core.NewRNG(seed)
	for r := 0; r < cfg.Extent; r++ {
		for c := 0; c < cfg.Extent; c++ {
			if rng.Chance(cfg.Density) {
				g.Set(top+r, left+c)
			}
		}
	}
	return g
}

// Name identifies the simulation.
func (s *Simulation[W]) Name() string { return "diffusion" }

// Size returns the full grid capacity.
func (s *Simulation[W]) Size() core.Size {
	return core.Size{W: s.grid.Cols(), H: s.grid.Rows()}
}

// Reset reloads the configured layout, or scatters a fresh random layout from
// seed. A zero seed uses the configured one.
func (s *Simulation[W]) Reset(seed int64) {
	if seed == 0 {
		seed = s.cfg.Seed
	}
	if err := s.load(seed); err != nil {
		s.err = err
		Logger().Error("reset failed", zap.Error(err))
	}
}

// Step advances one round. In strict mode a grid touching its capacity edge
// is not stepped; the error is kept and reported by Err.
func (s *Simulation[W]) Step() {
	if s.err != nil {
		return
	}
	if s.cfg.Strict {
		if err := CheckCapacity(s.grid); err != nil {
			s.err = err
			Logger().Warn("capacity exhausted", zap.Int("round", s.round), zap.Error(err))
			return
		}
	}

	plan := Plan(s.grid, s.rules)
	next := Compose(plan)
	s.round++
	if s.stable == 0 && next.Equal(s.grid) {
		s.stable = s.round
		Logger().Info("fixpoint reached", zap.Int("round", s.round))
	}
	Logger().Debug("round",
		zap.Int("round", s.round),
		zap.Stringer("order", plan.Rules),
		zap.Int("movers", plan.Movers.Count()),
		zap.Int("conflicts", plan.NorthSouthConflict.Count()+plan.EastWestConflict.Count()),
		zap.Int("moved", plan.Moved()))

	s.last = &plan
	s.grid = next
	s.rules = s.rules.Rotate()
}

// Cells renders the grid into the display buffer.
func (s *Simulation[W]) Cells() []uint8 {
	s.grid.Fill(s.display.Cells(), s.display.W, s.display.H)
	return s.display.Cells()
}

// Grid returns the current grid. Callers must not modify it.
func (s *Simulation[W]) Grid() *bitgrid.Grid[W] { return s.grid }

// LastRound returns the masks computed by the most recent Step.
func (s *Simulation[W]) LastRound() (Round[W], bool) {
	if s.last == nil {
		return Round[W]{}, false
	}
	return *s.last, true
}

// Round returns the number of rounds played since the last reset.
func (s *Simulation[W]) Round() int { return s.round }

// Rules returns the priority order for the next round.
func (s *Simulation[W]) Rules() Rules { return s.rules }

// WordBits returns the width of the grid's storage words.
func (s *Simulation[W]) WordBits() int { return bitgrid.Bits[W]() }

// Population returns the number of agents.
func (s *Simulation[W]) Population() int { return s.grid.Count() }

// StableRound returns the first round whose output equalled its input.
func (s *Simulation[W]) StableRound() (int, bool) { return s.stable, s.stable > 0 }

// Err returns the error that halted the simulation, if any.
func (s *Simulation[W]) Err() error { return s.err }

// RunFor plays rounds rounds, stopping early on error.
func (s *Simulation[W]) RunFor(rounds int) error {
	for i := 0; i < rounds; i++ {
		s.Step()
		if s.err != nil {
			return s.err
		}
	}
	return nil
}

// RunUntilStable plays rounds until one leaves the grid unchanged and returns
// its index. A positive limit caps the number of rounds played by this call.
func (s *Simulation[W]) RunUntilStable(limit int) (int, error) {
	for played := 0; limit <= 0 || played < limit; played++ {
		if round, ok := s.StableRound(); ok {
			return round, nil
		}
		s.Step()
		if s.err != nil {
			return 0, s.err
		}
	}
	if round, ok := s.StableRound(); ok {
		return round, nil
	}
	return 0, fmt.Errorf("%w after %d rounds", ErrRoundLimit, s.round)
}

// EmptyInBounds returns the occupied rectangle and its empty cell count.
func (s *Simulation[W]) EmptyInBounds() (bitgrid.Bounds, int) {
	return s.grid.CountEmptyInBounds()
}

// Render draws the occupied rectangle.
func (s *Simulation[W]) Render() string {
	b, ok := s.grid.Bounds()
	if !ok {
		return ""
	}
	return s.grid.Render(b)
}

var maskNames = []string{"north", "south", "west", "east", "conflicts"}

// MaskNames lists the layers available through Mask.
func (s *Simulation[W]) MaskNames() []string { return maskNames }

// Mask renders layer i of the last round as a 0/1 buffer the size of the
// grid: the accepted destinations of one direction, or the agents returned by
// a collision. It returns nil before the first round.
func (s *Simulation[W]) Mask(i int) []uint8 {
	if s.last == nil || i < 0 || i >= len(maskNames) {
		return nil
	}
	var g *bitgrid.Grid[W]
	if i < 4 {
		g = s.last.Proposed[Direction(i)]
	} else {
		g = s.last.Conflicts()
	}
	buf := make([]uint8, s.display.W*s.display.H)
	g.Fill(buf, s.display.W, s.display.H)
	return buf
}

// Parameters reports the simulation's status for viewers.
func (s *Simulation[W]) Parameters() core.ParameterSnapshot {
	b, empty := s.EmptyInBounds()
	stable, _ := s.StableRound()
	round := []core.Parameter{
		core.IntParam("round", "Round", s.round),
		core.TextParam("order", "Next order", s.rules.String()),
		core.IntParam("stable_round", "Settled at", stable),
	}
	if s.err != nil {
		round = append(round, core.TextParam("error", "Error", s.err.Error()))
	}
	agents := []core.Parameter{
		core.IntParam("population", "Agents", s.Population()),
	}
	if s.last != nil {
		agents = append(agents,
			core.IntParam("movers", "Crowded", s.last.Movers.Count()),
			core.IntParam("moved", "Moved", s.last.Moved()),
			core.IntParam("conflicts", "Collisions", s.last.NorthSouthConflict.Count()+s.last.EastWestConflict.Count()),
		)
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Round", Params: round},
		{Name: "Agents", Params: agents},
		{Name: "Bounds", Params: []core.Parameter{
			core.TextParam("bounds", "Size", fmt.Sprintf("%dx%d", b.Height(), b.Width())),
			core.IntParam("empty", "Empty", empty),
		}},
		{Name: "Capacity", Params: []core.Parameter{
			core.IntParam("word_bits", "Word bits", s.WordBits()),
			core.TextParam("capacity", "Grid", fmt.Sprintf("%dx%d", s.grid.Rows(), s.grid.Cols())),
			core.BoolParam("strict", "Strict", s.cfg.Strict),
		}},
	}}
}

func init() {
	core.Register("diffusion", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		sim, err := NewSim(c)
		if err != nil {
			Logger().Warn("falling back to a random layout", zap.Error(err))
			d := DefaultConfig()
			d.Seed = c.Seed
			sim, err = NewSim(d)
			if err != nil {
				panic(err)
			}
		}
		return sim
	})
}
