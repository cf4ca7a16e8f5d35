package diffusion

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove-ca/internal/core"
	"grove-ca/internal/persistence/snapshot"
)

func layoutConfig(t *testing.T, name string, word int) Config {
	cfg := DefaultConfig()
	cfg.Layout = readLayout(t, name)
	cfg.WordBits = word
	cfg.Rounds = 30
	return cfg
}

func TestSimulationRunFor(t *testing.T) {
	cfg := layoutConfig(t, "small.txt", 16)
	cfg.Rounds = 10
	sim, err := NewSim(cfg)
	require.NoError(t, err)
	assert.Equal(t, "diffusion", sim.Name())
	assert.Equal(t, 16, sim.WordBits())

	require.NoError(t, sim.RunFor(10))
	_, empty := sim.EmptyInBounds()
	assert.Equal(t, 25, empty)
	assert.Equal(t, 10, sim.Round())
	assert.Equal(t, "WENS", sim.Rules().String())
	assert.Equal(t, 5, sim.Population())

	round, ok := sim.StableRound()
	assert.True(t, ok)
	assert.Equal(t, 4, round)
	assert.Equal(t, "..#..\n....#\n#....\n....#\n.....\n..#..", sim.Render())

	v, ok := sim.Parameters().Lookup("round")
	require.True(t, ok)
	assert.Equal(t, "10", v)
	v, _ = sim.Parameters().Lookup("empty")
	assert.Equal(t, "25", v)
}

func TestSimulationRunUntilStable(t *testing.T) {
	for _, word := range []int{8, 16, 32, 64} {
		sim, err := NewSim(layoutConfig(t, "larger.txt", word))
		require.NoError(t, err)
		round, err := sim.RunUntilStable(0)
		require.NoError(t, err, "word %d", word)
		assert.Equal(t, 20, round, "word %d", word)
		assert.Equal(t, 20, sim.Round())

		// A settled simulation answers without playing further rounds.
		round, err = sim.RunUntilStable(1)
		require.NoError(t, err)
		assert.Equal(t, 20, round)
		assert.Equal(t, 20, sim.Round())
	}
}

func TestSimulationRoundLimit(t *testing.T) {
	sim, err := NewSim(layoutConfig(t, "larger.txt", 64))
	require.NoError(t, err)
	_, err = sim.RunUntilStable(5)
	assert.ErrorIs(t, err, ErrRoundLimit)
	assert.Equal(t, 5, sim.Round())
	assert.NoError(t, sim.Err(), "a round limit does not halt the simulation")
}

func TestSimulationStrictCapacity(t *testing.T) {
	cfg := layoutConfig(t, "larger.txt", 8)
	cfg.Padding = 1

	sim, err := NewSim(cfg)
	require.NoError(t, err)
	err = sim.RunFor(10)
	require.ErrorIs(t, err, ErrCapacityExhausted)
	assert.ErrorIs(t, sim.Err(), ErrCapacityExhausted)
	assert.Less(t, sim.Round(), 10)

	halted := sim.Round()
	sim.Step()
	assert.Equal(t, halted, sim.Round(), "a halted simulation does not step")
	v, ok := sim.Parameters().Lookup("error")
	assert.True(t, ok)
	assert.NotEmpty(t, v)

	sim.Reset(0)
	assert.NoError(t, sim.Err())
	assert.Equal(t, 0, sim.Round())

	cfg.Strict = false
	loose, err := NewSim(cfg)
	require.NoError(t, err)
	assert.NoError(t, loose.RunFor(10))
	assert.Equal(t, 22, loose.Population(), "agents pressed against the edge are kept")
}

func TestSimulationReset(t *testing.T) {
	sim, err := NewSim(layoutConfig(t, "larger.txt", 32))
	require.NoError(t, err)
	start := sim.Render()
	require.NoError(t, sim.RunFor(7))
	assert.NotEqual(t, start, sim.Render())

	sim.Reset(0)
	assert.Equal(t, start, sim.Render())
	assert.Equal(t, 0, sim.Round())
	assert.Equal(t, "NSWE", sim.Rules().String())
	_, ok := sim.StableRound()
	assert.False(t, ok)
}

func TestSimulationRandomLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extent = 10
	cfg.Density = 0.5
	cfg.Seed = 7
	cfg.Rounds = 5

	a, err := NewSim(cfg)
	require.NoError(t, err)
	b, err := NewSim(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Render(), b.Render(), "same seed, same layout")
	assert.Positive(t, a.Population())

	size := a.Size()
	assert.Equal(t, 10+2*6, size.H)
	assert.Equal(t, 64, size.W)

	b.Reset(cfg.Seed)
	assert.Equal(t, a.Render(), b.Render())
}

func TestSimulationCellsAndMasks(t *testing.T) {
	sim, err := NewSim(layoutConfig(t, "larger.txt", 16))
	require.NoError(t, err)

	size := sim.Size()
	cells := sim.Cells()
	require.Len(t, cells, size.W*size.H)
	assert.Equal(t, sim.Population(), sum(cells))

	assert.Nil(t, sim.Mask(0), "no masks before the first round")
	sim.Step()

	names := sim.MaskNames()
	require.Len(t, names, 5)
	moved := 0
	for i := 0; i < 4; i++ {
		mask := sim.Mask(i)
		require.Len(t, mask, size.W*size.H, names[i])
		moved += sum(mask)
	}
	v, ok := sim.Parameters().Lookup("moved")
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(moved), v)
	assert.Nil(t, sim.Mask(len(names)))
}

func sum(cells []uint8) int {
	n := 0
	for _, c := range cells {
		n += int(c)
	}
	return n
}

func TestSnapshotRestore(t *testing.T) {
	sim, err := NewSim(layoutConfig(t, "larger.txt", 8))
	require.NoError(t, err)
	require.NoError(t, sim.RunFor(9))

	path := filepath.Join(t.TempDir(), "larger.snap")
	require.NoError(t, snapshot.WriteSnapshot(path, sim.Snapshot("larger")))

	snap, err := snapshot.ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "larger", snap.Header.Name)
	assert.Equal(t, 9, snap.Header.Round)
	assert.Equal(t, "SWEN", snap.Order)

	restored, err := Restore(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 8, restored.WordBits())
	assert.Equal(t, sim.Render(), restored.Render())
	assert.Equal(t, 9, restored.Round())

	require.NoError(t, restored.RunFor(1))
	_, empty := restored.EmptyInBounds()
	assert.Equal(t, 110, empty)

	round, err := restored.RunUntilStable(0)
	require.NoError(t, err)
	assert.Equal(t, 20, round)
}

func TestRestoreRejectsBadOrder(t *testing.T) {
	sim, err := NewSim(layoutConfig(t, "small.txt", 64))
	require.NoError(t, err)
	snap := sim.Snapshot("small")
	snap.Order = "NNSW"
	_, err = Restore(snap, DefaultConfig())
	assert.Error(t, err)
}

func TestNewSimRejectsUnknownWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WordBits = 12
	_, err := NewSim(cfg)
	assert.ErrorIs(t, err, ErrUnknownWordBits)

	cfg = DefaultConfig()
	cfg.Layout = "#?"
	_, err = NewSim(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Extent = 0
	_, err = NewSim(cfg)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	factory, ok := core.Sims()["diffusion"]
	require.True(t, ok)

	sim := factory(map[string]string{"layout": readLayout(t, "small.txt"), "word": "8", "rounds": "10"})
	runner, ok := sim.(Runner)
	require.True(t, ok)
	assert.Equal(t, 8, runner.WordBits())
	assert.Equal(t, 5, runner.Population())

	fallback := factory(map[string]string{"word": "7"})
	assert.Equal(t, "diffusion", fallback.Name())
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"rounds":  "12",
		"padding": "3",
		"word":    "32",
		"strict":  "false",
		"order":   "ENSW",
		"seed":    "99",
		"extent":  "-1",
		"density": "2",
	})
	assert.Equal(t, 12, cfg.Rounds)
	assert.Equal(t, 3, cfg.EffectivePadding())
	assert.Equal(t, 32, cfg.WordBits)
	assert.False(t, cfg.Strict)
	assert.Equal(t, "ENSW", cfg.Rules.String())
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, DefaultConfig().Extent, cfg.Extent, "invalid extent is ignored")
	assert.Equal(t, DefaultConfig().Density, cfg.Density, "invalid density is ignored")

	assert.Equal(t, DefaultConfig(), FromMap(nil))
	assert.Equal(t, 101, DefaultConfig().EffectivePadding())
}
