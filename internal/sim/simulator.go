package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/particle"
)

// Simulator owns one particle system and the integrator that advances it.
// It is not safe for concurrent use.
type Simulator struct {
	cfg        *config.Config
	seed       int64
	integrator *md.Integrator
	set        md.ParticleSet
	mode       string
	log        logging.Logger
	metrics    []Metric
	observers  []Observer
	step       int
}

type options struct {
	log       logging.Logger
	particles []particle.Particle
	startStep int
}

type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithParticles starts from a saved snapshot instead of a fresh lattice.
// Step numbering continues from startStep.
func WithParticles(ps []particle.Particle, startStep int) Option {
	return func(o *options) {
		o.particles = ps
		o.startStep = startStep
	}
}

func New(cfg *config.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{log: logging.NewNoOp()}
	for _, opt := range opts {
		opt(&o)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var ps []particle.Particle
	if o.particles != nil {
		if len(o.particles) == 0 {
			return nil, ErrNoParticles
		}
		ps = particle.Clone(o.particles)
	} else {
		width := md.BoxWidth(cfg.NumParticles(), cfg.Density)
		rng := rand.New(rand.NewSource(seed))
		var err error
		ps, err = particle.Lattice(particle.NewSequence(0), width, cfg.ParticlesSide, cfg.VelocityMul, rng)
		if err != nil {
			return nil, err
		}
	}

	integrator, err := md.NewIntegrator(len(ps), cfg.Density, cfg.Dt, md.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}

	box := integrator.Box()
	for i := range ps {
		if !box.Contains(ps[i].Center) {
			return nil, fmt.Errorf("%w: particle %d at %v, box width %g",
				md.ErrOutOfDomain, ps[i].ID, ps[i].Center, box.Width)
		}
	}

	s := &Simulator{
		cfg:        cfg.Clone(),
		seed:       seed,
		integrator: integrator,
		set:        md.FlatSet(ps),
		mode:       config.ModeFlat,
		log:        o.log,
		step:       o.startStep,
	}
	if err := s.SetMode(cfg.Mode); err != nil {
		return nil, err
	}

	s.log.Infof("simulator ready: %d particles, box width %.4f, mode %s, seed %d, workers %d",
		len(ps), box.Width, s.mode, seed, integrator.Workers())
	return s, nil
}

// SetMode switches between all-pairs and cell-list force evaluation,
// carrying the current particle state over.
func (s *Simulator) SetMode(mode string) error {
	ps := s.set.Particles()

	switch mode {
	case config.ModeFlat:
		s.set = md.FlatSet(ps)
	case config.ModeCells:
		g, err := md.BuildCellGrid(ps, s.integrator.BoxWidth(), s.cfg.RadiusCutOff)
		if err != nil {
			return err
		}
		if g.Side() < 3 {
			s.log.Warnf("cell grid has %d cells per side (box width %.4f, radius_cut_off %g): every cell neighbors every other",
				g.Side(), g.Box().Width, s.cfg.RadiusCutOff)
		}
		s.set = g
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	s.mode = mode
	return nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() *config.Config { return s.cfg }

func (s *Simulator) Seed() int64 { return s.seed }

func (s *Simulator) Mode() string { return s.mode }

func (s *Simulator) BoxWidth() float64 { return s.integrator.BoxWidth() }

// StepCount is the index the next step will carry.
func (s *Simulator) StepCount() int { return s.step }

// CellSide returns the grid side count, or 0 in flat mode.
func (s *Simulator) CellSide() int {
	if g, ok := s.set.(*md.CellGrid); ok {
		return g.Side()
	}
	return 0
}

// Particles aliases the live particle storage.
func (s *Simulator) Particles() []particle.Particle { return s.set.Particles() }

// Step advances one time step and measures the result.
func (s *Simulator) Step() (StepInfo, error) {
	start := time.Now()
	if err := s.integrator.Step(s.set); err != nil {
		return StepInfo{}, &StepError{Step: s.step, Err: err}
	}
	elapsed := time.Since(start)

	ps := s.set.Particles()
	info := StepInfo{
		Step:       s.step,
		Time:       float64(s.step+1) * s.integrator.DeltaTime(),
		Elapsed:    elapsed,
		Energetics: metrics.Measure(ps),
		Particles:  ps,
		BoxWidth:   s.integrator.BoxWidth(),
	}
	s.step++

	if !info.Energetics.IsFinite() {
		return info, &StepError{Step: info.Step, Err: ErrNonFinite}
	}
	return info, nil
}

// Run executes the configured number of steps.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	return s.RunSteps(ctx, s.cfg.Steps)
}

// RunSteps executes n steps, notifying metrics and observers after each.
// On cancellation or failure the partial result is returned with the error.
func (s *Simulator) RunSteps(ctx context.Context, n int) (*Result, error) {
	result := &Result{
		Seed:     s.seed,
		Mode:     s.mode,
		BoxWidth: s.integrator.BoxWidth(),
		CellSide: s.CellSide(),
		Samples:  make([]Sample, 0, n),
		Metrics:  make(map[string]float64),
	}
	tracker := metrics.NewTracker(n)

	for _, m := range s.metrics {
		m.Reset()
	}

	began := time.Now()
	finish := func(err error) (*Result, error) {
		result.Elapsed = time.Since(began)
		result.Summary = tracker.Summary()
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		result.Particles = particle.Clone(s.set.Particles())
		return result, err
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			s.log.Warnf("run canceled after %d steps: %v", result.Steps, ctx.Err())
			return finish(ctx.Err())
		default:
		}

		info, err := s.Step()
		if err != nil {
			s.log.Errorf("%v", err)
			return finish(err)
		}
		result.Steps++

		result.Samples = append(result.Samples, Sample{
			Step:       info.Step,
			Energetics: info.Energetics,
			StepMillis: float64(info.Elapsed.Microseconds()) / 1000,
		})
		tracker.Add(info.Energetics)

		for _, m := range s.metrics {
			m.Observe(info.Step, info.Energetics, info.Particles)
		}
		for _, obs := range s.observers {
			if err := obs.OnStep(info); err != nil {
				return finish(&StepError{Step: info.Step, Err: err})
			}
		}

		e := info.Energetics
		if (info.Step+1)%s.cfg.LogEvery == 0 {
			s.log.Infof("step %d: kinetic %.6f potential %.6f total %.6f temperature %.3f (%.2f ms)",
				info.Step, e.Kinetic, e.Potential, e.Total, e.Temperature,
				float64(info.Elapsed.Microseconds())/1000)
		} else {
			s.log.Debugf("step %d: total %.6f", info.Step, e.Total)
		}
	}

	return finish(nil)
}

// DefaultMetrics returns the metrics reported for every run.
func DefaultMetrics() []Metric {
	return []Metric{
		metrics.NewMeanEnergy(),
		metrics.NewMeanTemperature(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
	}
}
