package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/vec"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("unexpected cell %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) || c.IsSet(9, 9) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.Grid[0][0] != blank || c.Grid[0][1] != blank {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasDrawParticles(t *testing.T) {
	c := NewCanvas(10, 5)
	ps := []particle.Particle{
		{Center: vec.New(0, 0)},
		{Center: vec.New(9.99, 9.99)},
	}
	c.DrawParticles(ps, 10)

	pw, ph := c.PixelSize()
	if !c.IsSet(0, ph-1) {
		t.Error("origin should be bottom-left")
	}
	if !c.IsSet(pw-1, 0) {
		t.Error("far corner should be top-right")
	}
}

func TestCanvasDrawCells(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawCells(2)

	pw, ph := c.PixelSize()
	for y := 0; y < ph; y++ {
		if !c.IsSet(pw/2, y) {
			t.Fatalf("vertical divider missing at y=%d", y)
		}
	}
	for x := 0; x < pw; x++ {
		if !c.IsSet(x, ph/2) {
			t.Fatalf("horizontal divider missing at x=%d", x)
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len([]rune(lines[0])) != 3 {
		t.Errorf("expected 3 runes per line, got %d", len([]rune(lines[0])))
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ParticlesSide = 5
	cfg.Seed = 3
	cfg.RadiusCutOff = 2.5
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, 4)
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelTickSteps(t *testing.T) {
	m := newTestModel(t)
	m = update(m, TickMsg{})

	if !m.haveStep || m.last.Step != 3 {
		t.Errorf("expected 4 steps, last step %d", m.last.Step)
	}
	if len(m.total) != 1 {
		t.Errorf("expected one history point, got %d", len(m.total))
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.running {
		t.Fatal("expected paused")
	}

	m = update(m, TickMsg{})
	if m.haveStep {
		t.Error("paused model must not step")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show paused status")
	}
}

func TestModelToggleMode(t *testing.T) {
	m := newTestModel(t)
	if m.sim.Mode() != config.ModeCells {
		t.Fatalf("expected cells, got %s", m.sim.Mode())
	}

	m = update(m, runeKey('m'))
	if m.sim.Mode() != config.ModeFlat {
		t.Errorf("expected flat, got %s", m.sim.Mode())
	}
	m = update(m, runeKey('m'))
	if m.sim.Mode() != config.ModeCells {
		t.Errorf("expected cells, got %s", m.sim.Mode())
	}
}

func TestModelSpeed(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runeKey('+'))
	if m.stepsPerTick != 8 {
		t.Errorf("expected 8, got %d", m.stepsPerTick)
	}
	for i := 0; i < 10; i++ {
		m = update(m, runeKey('-'))
	}
	if m.stepsPerTick != 1 {
		t.Errorf("expected 1, got %d", m.stepsPerTick)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m = update(m, runeKey('g'))
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})

	view := m.View()
	for _, want := range []string{"RUNNING", "Particles", "Kinetic", "total energy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEnergyChartShortSeries(t *testing.T) {
	if EnergyChart([]float64{1}, 10, 3, "x") != "" {
		t.Error("expected empty chart for a single point")
	}
}
