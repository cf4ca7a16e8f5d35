// Package tui is a terminal viewer for a running diffusion simulation.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grove-ca/internal/core"
	"grove-ca/internal/sims/diffusion"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E7D32")).
			Padding(0, 1)

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4CAF50")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// SettleLimit caps the rounds played by a single "run until stable" request.
const SettleLimit = 10000

type tickMsg time.Time

// Model drives a diffusion.Runner from the keyboard.
type Model struct {
	sim      diffusion.Runner
	title    string
	interval time.Duration
	playing  bool
	status   string

	keys keyMap
	help help.Model

	width, height int
}

// New builds a viewer stepping sim at roundsPerSecond while playing.
func New(sim diffusion.Runner, title string, roundsPerSecond int) Model {
	pace := core.NewFixedStep(roundsPerSecond)
	return Model{
		sim:      sim,
		title:    title,
		interval: pace.Interval(),
		keys:     defaultKeys(),
		help:     help.New(),
	}
}

// Playing reports whether rounds advance on every tick.
func (m Model) Playing() bool { return m.playing }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Play):
			m.playing = !m.playing
			if m.playing {
				return m, m.tick()
			}

		case key.Matches(msg, m.keys.Step):
			m.playing = false
			m.advance()

		case key.Matches(msg, m.keys.Settle):
			m.playing = false
			round, err := m.sim.RunUntilStable(SettleLimit)
			if err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("settled at round %d", round)
			}

		case key.Matches(msg, m.keys.Reset):
			m.playing = false
			m.sim.Reset(0)
			m.status = "reset"
		}

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		m.advance()
		if !m.playing {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

// advance plays one round and pauses once the grid settles or halts.
func (m *Model) advance() {
	m.sim.Step()
	if err := m.sim.Err(); err != nil {
		m.playing = false
		m.status = err.Error()
		return
	}
	if round, ok := m.sim.StableRound(); ok {
		m.playing = false
		m.status = fmt.Sprintf("settled at round %d", round)
		return
	}
	m.status = ""
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	grid := clip(m.sim.Render(), m.width-4, m.height-12)
	if grid == "" {
		grid = "(empty)"
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		gridStyle.Render(grid),
		"  ",
		renderParameters(m.sim.Parameters()),
	))
	b.WriteString("\n")

	if m.status != "" {
		style := labelStyle
		if m.sim.Err() != nil {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderParameters(snap core.ParameterSnapshot) string {
	var b strings.Builder
	for i, g := range snap.Groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(groupStyle.Render(g.Name))
		b.WriteString("\n")
		for _, p := range g.Params {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(p.Label+":"), p.Value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// clip trims text to at most w columns and h lines. Non-positive limits leave
// that dimension alone.
func clip(text string, w, h int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if h > 0 && len(lines) > h {
		lines = lines[:h]
	}
	if w > 0 {
		for i, l := range lines {
			if len(l) > w {
				lines[i] = l[:w]
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Run opens the viewer on the terminal and blocks until the user quits.
func Run(sim diffusion.Runner, title string, roundsPerSecond int) error {
	_, err := tea.NewProgram(New(sim, title, roundsPerSecond), tea.WithAltScreen()).Run()
	return err
}
