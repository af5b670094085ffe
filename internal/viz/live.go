package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 30
	historyCapacity = 600
	frameInterval   = time.Second / 30
	maxStepsPerTick = 256
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model advances a simulator a few steps per frame and draws the box.
type Model struct {
	sim          *sim.Simulator
	canvas       *Canvas
	running      bool
	showCells    bool
	stepsPerTick int
	last         sim.StepInfo
	haveStep     bool
	stepMillis   float64
	total        []float64
	kinetic      []float64
	err          error
}

func NewModel(s *sim.Simulator, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return Model{
		sim:          s,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		running:      true,
		stepsPerTick: stepsPerTick,
		total:        make([]float64, 0, historyCapacity),
		kinetic:      make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "m":
			m.toggleMode()
		case "g":
			m.showCells = !m.showCells
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) toggleMode() {
	next := config.ModeCells
	if m.sim.Mode() == config.ModeCells {
		next = config.ModeFlat
	}
	if err := m.sim.SetMode(next); err != nil {
		m.err = err
	}
}

func (m *Model) advance() {
	elapsed := 0.0
	for i := 0; i < m.stepsPerTick; i++ {
		info, err := m.sim.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last = info
		m.haveStep = true
		elapsed += float64(info.Elapsed.Microseconds()) / 1000
	}
	m.stepMillis = elapsed / float64(m.stepsPerTick)

	e := m.last.Energetics
	m.total = appendCapped(m.total, e.Total)
	m.kinetic = appendCapped(m.kinetic, e.Kinetic)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusFailed.Render("FAILED")
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	if m.showCells && m.sim.CellSide() > 1 {
		m.canvas.DrawCells(m.sim.CellSide())
	}
	m.canvas.DrawParticles(m.sim.Particles(), m.sim.BoxWidth())
	canvasView := canvasStyle.Render(strings.TrimRight(m.canvas.String(), "\n"))

	var s strings.Builder
	s.WriteString(headerStyle.Render("LENNARD-JONES 2D") + "\n")
	s.WriteString(m.status() + "\n\n")

	mode := m.sim.Mode()
	if side := m.sim.CellSide(); side > 0 {
		mode = fmt.Sprintf("%s (%dx%d)", mode, side, side)
	}
	s.WriteString(statLine("Particles", fmt.Sprintf("%d", len(m.sim.Particles()))))
	s.WriteString(statLine("Box width", fmt.Sprintf("%.4f", m.sim.BoxWidth())))
	s.WriteString(statLine("Mode", mode))
	s.WriteString(statLine("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick)))

	if m.haveStep {
		e := m.last.Energetics
		s.WriteString(statLine("Step", fmt.Sprintf("%d", m.last.Step)))
		s.WriteString(statLine("Time", fmt.Sprintf("%.4f", m.last.Time)))
		s.WriteString(statLine("Kinetic", fmt.Sprintf("%.6f", e.Kinetic)))
		s.WriteString(statLine("Potential", fmt.Sprintf("%.6f", e.Potential)))
		s.WriteString(statLine("Total", fmt.Sprintf("%.6f", e.Total)))
		s.WriteString(statLine("Temperature", fmt.Sprintf("%.3f", e.Temperature)))
		s.WriteString(statLine("Step time", fmt.Sprintf("%.2f ms", m.stepMillis)))
	}
	if m.err != nil {
		s.WriteString("\n" + statusFailed.Render(m.err.Error()) + "\n")
	}

	if chart := EnergyChart(m.total, 36, 5, "total energy"); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(separator(36) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause  M:Mode  G:Grid\n+/-:Speed Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run blocks until the user quits.
func Run(s *sim.Simulator, stepsPerTick int) error {
	p := tea.NewProgram(NewModel(s, stepsPerTick), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
