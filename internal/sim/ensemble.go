package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/logging"
)

// Ensemble runs independent copies of one configuration with consecutive
// seeds.
type Ensemble struct {
	cfg       *config.Config
	numRuns   int
	seedStart int64
	limit     int
	log       logging.Logger
}

// NewEnsemble uses seeds seedStart, seedStart+1, ... A zero seedStart begins
// at 1 since seed 0 selects a time-based seed.
func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64) *Ensemble {
	if seedStart == 0 {
		seedStart = 1
	}
	return &Ensemble{
		cfg:       cfg.Clone(),
		numRuns:   numRuns,
		seedStart: seedStart,
		log:       logging.NewNoOp(),
	}
}

// SetLimit caps the number of runs in flight. Zero means unlimited.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) SetLogger(l logging.Logger) { e.log = l }

func (e *Ensemble) Seeds() []int64 {
	seeds := make([]int64, e.numRuns)
	for i := range seeds {
		seeds[i] = e.seedStart + int64(i)
	}
	return seeds
}

// Run returns one result per seed, in seed order. The first failure cancels
// the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, seed := range e.Seeds() {
		i, seed := i, seed
		g.Go(func() error {
			cfg := e.cfg.Clone()
			cfg.Seed = seed

			s, err := New(cfg, WithLogger(e.log))
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, seed, err)
			}
			for _, m := range DefaultMetrics() {
				s.AddMetric(m)
			}

			res, err := s.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
