package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/vec"
)

func testConfig(mode string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ParticlesSide = 6
	cfg.Steps = 50
	cfg.Seed = 11
	cfg.Mode = mode
	cfg.RadiusCutOff = 2.5
	cfg.LogEvery = 10
	return cfg
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) add(level, format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Debugf(format string, v ...any) { r.add("DEBUG", format, v...) }
func (r *recordingLogger) Infof(format string, v ...any)  { r.add("INFO", format, v...) }
func (r *recordingLogger) Warnf(format string, v ...any)  { r.add("WARN", format, v...) }
func (r *recordingLogger) Errorf(format string, v ...any) { r.add("ERROR", format, v...) }

func (r *recordingLogger) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestSimulatorRun(t *testing.T) {
	s, err := New(testConfig(config.ModeFlat))
	require.NoError(t, err)
	for _, m := range DefaultMetrics() {
		s.AddMetric(m)
	}

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, result.Steps)
	assert.Len(t, result.Samples, 50)
	assert.Len(t, result.Particles, 36)
	assert.Equal(t, int64(11), result.Seed)
	assert.Equal(t, 50, result.Summary.Samples)
	assert.Equal(t, 0, result.Samples[0].Step)
	assert.Equal(t, 49, result.Samples[49].Step)
	assert.Equal(t, 50, s.StepCount())

	for _, name := range []string{"mean_energy", "mean_temperature", "energy_drift", "momentum_drift"} {
		assert.Contains(t, result.Metrics, name)
	}
	assert.InDelta(t, result.Summary.MeanEnergy, result.Metrics["mean_energy"], 1e-12)
	assert.Less(t, result.Metrics["momentum_drift"], 1e-9)
}

func TestSimulatorDeterministicForSeed(t *testing.T) {
	run := func() *Result {
		s, err := New(testConfig(config.ModeCells))
		require.NoError(t, err)
		r, err := s.Run(context.Background())
		require.NoError(t, err)
		return r
	}

	a, b := run(), run()
	require.Len(t, b.Samples, len(a.Samples))
	for i := range a.Samples {
		assert.Equal(t, a.Samples[i].Energetics, b.Samples[i].Energetics)
	}
	assert.Equal(t, a.Particles, b.Particles)
}

func TestSimulatorOneCellMatchesFlat(t *testing.T) {
	flatCfg := testConfig(config.ModeFlat)
	cellCfg := testConfig(config.ModeCells)
	cellCfg.RadiusCutOff = 1000

	flat, err := New(flatCfg)
	require.NoError(t, err)
	cells, err := New(cellCfg)
	require.NoError(t, err)
	assert.Equal(t, 1, cells.CellSide())
	assert.Equal(t, 0, flat.CellSide())

	fr, err := flat.Run(context.Background())
	require.NoError(t, err)
	cr, err := cells.Run(context.Background())
	require.NoError(t, err)

	for i := range fr.Samples {
		assert.Equal(t, fr.Samples[i].Energetics, cr.Samples[i].Energetics, "step %d", i)
	}
}

func TestSimulatorWarnsOnCoarseGrid(t *testing.T) {
	log := &recordingLogger{}
	cfg := testConfig(config.ModeCells)
	cfg.RadiusCutOff = 1000

	_, err := New(cfg, WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, 1, log.count("WARN"))
}

func TestSimulatorLogsAtCadence(t *testing.T) {
	log := &recordingLogger{}
	s, err := New(testConfig(config.ModeFlat), WithLogger(log))
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, log.count("INFO step"))
}

func TestSimulatorInvalidConfig(t *testing.T) {
	cfg := testConfig(config.ModeFlat)
	cfg.Density = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestSimulatorCanceled(t *testing.T) {
	s, err := New(testConfig(config.ModeFlat))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Steps)
}

func TestSimulatorObserverError(t *testing.T) {
	s, err := New(testConfig(config.ModeFlat))
	require.NoError(t, err)

	boom := errors.New("disk full")
	calls := 0
	s.AddObserver(ObserverFunc(func(info StepInfo) error {
		calls++
		if info.Step == 3 {
			return boom
		}
		return nil
	}))

	result, err := s.Run(context.Background())
	require.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 3, stepErr.Step)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, result.Steps)
}

func TestSimulatorObserverSeesLiveState(t *testing.T) {
	s, err := New(testConfig(config.ModeCells))
	require.NoError(t, err)

	s.AddObserver(ObserverFunc(func(info StepInfo) error {
		assert.Len(t, info.Particles, 36)
		assert.InDelta(t, float64(info.Step+1)*0.001, info.Time, 1e-15)
		assert.Equal(t, s.BoxWidth(), info.BoxWidth)
		return nil
	}))

	_, err = s.RunSteps(context.Background(), 5)
	require.NoError(t, err)
}

func TestSimulatorRestart(t *testing.T) {
	first, err := New(testConfig(config.ModeCells))
	require.NoError(t, err)
	r1, err := first.RunSteps(context.Background(), 20)
	require.NoError(t, err)

	second, err := New(testConfig(config.ModeCells), WithParticles(r1.Particles, 20))
	require.NoError(t, err)
	assert.Equal(t, 20, second.StepCount())

	r2, err := second.RunSteps(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 20, r2.Samples[0].Step)

	// continuing the first run must reproduce the restarted one
	r3, err := first.RunSteps(context.Background(), 5)
	require.NoError(t, err)
	for i := range r2.Samples {
		assert.Equal(t, r3.Samples[i].Energetics, r2.Samples[i].Energetics)
	}
}

func TestSimulatorRestartErrors(t *testing.T) {
	cfg := testConfig(config.ModeFlat)

	_, err := New(cfg, WithParticles([]particle.Particle{}, 0))
	assert.ErrorIs(t, err, ErrNoParticles)

	outside := []particle.Particle{
		{ID: 0, Center: vec.New(-1, 0), Mass: 1},
		{ID: 1, Center: vec.New(1, 1), Mass: 1},
	}
	_, err = New(cfg, WithParticles(outside, 0))
	assert.ErrorIs(t, err, md.ErrOutOfDomain)
}

func TestSimulatorCoincidentStepError(t *testing.T) {
	ps := []particle.Particle{
		{ID: 0, Center: vec.New(1, 1), Mass: 1},
		{ID: 1, Center: vec.New(1, 1), Mass: 1},
	}
	s, err := New(testConfig(config.ModeFlat), WithParticles(ps, 7))
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.ErrorIs(t, err, md.ErrCoincident)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 7, stepErr.Step)
}

func TestSimulatorSetMode(t *testing.T) {
	s, err := New(testConfig(config.ModeFlat))
	require.NoError(t, err)

	_, err = s.RunSteps(context.Background(), 5)
	require.NoError(t, err)
	before := particle.Clone(s.Particles())

	require.NoError(t, s.SetMode(config.ModeCells))
	assert.Equal(t, config.ModeCells, s.Mode())
	assert.Equal(t, before, s.Particles())

	assert.Error(t, s.SetMode("tree"))
	assert.Equal(t, config.ModeCells, s.Mode())
}
