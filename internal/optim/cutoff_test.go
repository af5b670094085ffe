package optim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mdsim/internal/config"
)

func searchConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ParticlesSide = 6
	cfg.Density = 0.7
	cfg.Steps = 20
	cfg.Seed = 7
	cfg.LogEvery = 10
	return cfg
}

func TestDeviation(t *testing.T) {
	assert.Equal(t, 0.0, Deviation([]float64{-2, -2}, []float64{-2, -2}))
	assert.InDelta(t, 0.25, Deviation([]float64{-2, -2, -2}, []float64{-2, -1.5}), 1e-12)
	assert.True(t, math.IsInf(Deviation(nil, []float64{1}), 1))
	// zero reference falls back to absolute differences
	assert.InDelta(t, 0.5, Deviation([]float64{0, 0}, []float64{0.5, 0}), 1e-12)
}

func TestCutoffSearchSingleCellMatchesFlat(t *testing.T) {
	cs := NewCutoffSearch([]float64{1000, 3}, 1e-9)
	trials, best, err := cs.Search(context.Background(), searchConfig())
	require.NoError(t, err)
	require.Len(t, trials, 2)

	// sorted ascending
	assert.Equal(t, 3.0, trials[0].CutOff)
	assert.Equal(t, 1000.0, trials[1].CutOff)

	assert.Equal(t, 1, trials[1].CellSide)
	assert.Less(t, trials[1].Deviation, 1e-9)
	assert.LessOrEqual(t, best.Deviation, 1e-9)
}

func TestCutoffSearchNoCandidate(t *testing.T) {
	cs := NewCutoffSearch([]float64{1000}, -1)
	trials, _, err := cs.Search(context.Background(), searchConfig())
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.Len(t, trials, 1)
}

func TestCutoffSearchRequiresCandidates(t *testing.T) {
	_, _, err := NewCutoffSearch(nil, 1).Search(context.Background(), searchConfig())
	assert.Error(t, err)
}

func TestCutoffSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewCutoffSearch([]float64{1000}, 1).Search(ctx, searchConfig())
	assert.Error(t, err)
}
