package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove-ca/internal/sims/diffusion"
)

const smallLayout = ".....\n..##.\n..#..\n.....\n..##.\n.....\n"

func newModel(t *testing.T) Model {
	t.Helper()
	cfg := diffusion.DefaultConfig()
	cfg.Layout = smallLayout
	cfg.Rounds = 10
	sim, err := diffusion.NewSim(cfg)
	require.NoError(t, err)
	return New(sim, "small", 20)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestStepKey(t *testing.T) {
	m := newModel(t)
	assert.Nil(t, m.Init())
	assert.Equal(t, 50*time.Millisecond, m.interval)

	m, cmd := update(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.sim.Round())
	assert.Contains(t, m.View(), "##")
}

func TestPlayPauseAndTicks(t *testing.T) {
	m := newModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.Playing())
	assert.NotNil(t, cmd, "starting playback schedules a tick")

	m, cmd = update(t, m, tickMsg(time.Now()))
	assert.Equal(t, 1, m.sim.Round())
	assert.NotNil(t, cmd)

	m, _ = update(t, m, runes("p"))
	assert.False(t, m.Playing())
	m, cmd = update(t, m, tickMsg(time.Now()))
	assert.Nil(t, cmd, "ticks arriving while paused are dropped")
	assert.Equal(t, 1, m.sim.Round())
}

func TestPlaybackStopsWhenSettled(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	for i := 0; i < 10 && m.Playing(); i++ {
		m, _ = update(t, m, tickMsg(time.Now()))
	}
	assert.False(t, m.Playing())
	assert.Equal(t, 4, m.sim.Round())
	assert.Contains(t, m.View(), "settled at round 4")
}

func TestSettleAndReset(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, runes("s"))
	round, ok := m.sim.StableRound()
	require.True(t, ok)
	assert.Equal(t, 4, round)
	assert.Equal(t, "settled at round 4", m.status)

	m, _ = update(t, m, runes("r"))
	assert.Equal(t, 0, m.sim.Round())
	assert.Equal(t, "reset", m.status)
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestViewListsParameters(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	view := m.View()
	for _, want := range []string{"small", "Round", "Agents", "Next order:", "NSWE", "quit"} {
		assert.Contains(t, view, want)
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "ab\nde", clip("abc\ndef\nghi", 2, 2))
	assert.Equal(t, "abc", clip("abc", 0, 0))
	assert.Equal(t, "", clip("", 3, 3))
}
