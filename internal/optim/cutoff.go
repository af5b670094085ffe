// Package optim searches cell-list cutoffs for the fastest setting whose
// energy trajectory stays close to the exact all-pairs run.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/sim"
)

var ErrNoCandidate = errors.New("no cutoff within tolerance")

// Trial is the outcome of one cutoff.
type Trial struct {
	CutOff     float64 `json:"cut_off"`
	CellSide   int     `json:"cell_side"`
	Deviation  float64 `json:"deviation"`
	StepMillis float64 `json:"step_ms"`
}

type CutoffSearch struct {
	cutoffs   []float64
	tolerance float64
	log       logging.Logger
}

func NewCutoffSearch(cutoffs []float64, tolerance float64) *CutoffSearch {
	cs := append([]float64(nil), cutoffs...)
	sort.Float64s(cs)
	return &CutoffSearch{cutoffs: cs, tolerance: tolerance, log: logging.NewNoOp()}
}

func (c *CutoffSearch) SetLogger(l logging.Logger) { c.log = l }

// Search runs the flat reference once, then every cutoff in cells mode with
// the same seed. It returns all trials and the fastest one whose deviation is
// within tolerance.
func (c *CutoffSearch) Search(ctx context.Context, base *config.Config) ([]Trial, Trial, error) {
	if len(c.cutoffs) == 0 {
		return nil, Trial{}, fmt.Errorf("no cutoffs given")
	}
	cfg := base.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	refCfg := cfg.Clone()
	refCfg.Mode = config.ModeFlat
	ref, err := c.run(ctx, refCfg)
	if err != nil {
		return nil, Trial{}, fmt.Errorf("reference run: %w", err)
	}
	refTotal := ref.Total()

	trials := make([]Trial, 0, len(c.cutoffs))
	best := Trial{StepMillis: math.Inf(1)}
	found := false

	for _, rc := range c.cutoffs {
		if err := ctx.Err(); err != nil {
			return trials, Trial{}, err
		}
		tc := cfg.Clone()
		tc.Mode = config.ModeCells
		tc.RadiusCutOff = rc

		res, err := c.run(ctx, tc)
		if err != nil {
			c.log.Warnf("cutoff %g failed: %v", rc, err)
			continue
		}
		t := Trial{
			CutOff:     rc,
			CellSide:   res.CellSide,
			Deviation:  Deviation(refTotal, res.Total()),
			StepMillis: meanStepMillis(res),
		}
		trials = append(trials, t)
		c.log.Debugf("cutoff %g: side %d deviation %.3e step %.3fms", rc, t.CellSide, t.Deviation, t.StepMillis)

		if t.Deviation <= c.tolerance && t.StepMillis < best.StepMillis {
			best = t
			found = true
		}
	}

	if !found {
		return trials, Trial{}, ErrNoCandidate
	}
	return trials, best, nil
}

func (c *CutoffSearch) run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	s, err := sim.New(cfg, sim.WithLogger(logging.NewNoOp()))
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Deviation is the largest per-step difference between two total-energy
// series, relative to the first reference value. Series of unequal length are
// compared over the shorter one.
func Deviation(ref, got []float64) float64 {
	n := min(len(ref), len(got))
	if n == 0 {
		return math.Inf(1)
	}
	scale := math.Abs(ref[0])
	if scale == 0 {
		scale = 1
	}
	worst := 0.0
	for i := 0; i < n; i++ {
		worst = math.Max(worst, math.Abs(got[i]-ref[i])/scale)
	}
	return worst
}

func meanStepMillis(r *sim.Result) float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.Samples {
		sum += s.StepMillis
	}
	return sum / float64(len(r.Samples))
}
