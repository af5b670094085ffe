package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mdsim/internal/config"
)

func TestEnsembleRun(t *testing.T) {
	cfg := testConfig(config.ModeCells)
	cfg.Steps = 20

	e := NewEnsemble(cfg, 3, 0)
	e.SetLimit(2)
	assert.Equal(t, []int64{1, 2, 3}, e.Seeds())

	results, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, int64(i+1), r.Seed)
		assert.Equal(t, 20, r.Steps)
		assert.Contains(t, r.Metrics, "mean_energy")
	}
	assert.NotEqual(t, results[0].Summary.MeanEnergy, results[1].Summary.MeanEnergy)

	// each member matches a standalone run with the same seed
	single := cfg.Clone()
	single.Seed = 2
	s, err := New(single)
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, r.Summary.MeanEnergy, results[1].Summary.MeanEnergy)
}

func TestEnsembleInvalidConfig(t *testing.T) {
	cfg := testConfig(config.ModeFlat)
	cfg.Dt = -1

	_, err := NewEnsemble(cfg, 2, 5).Run(context.Background())
	assert.Error(t, err)
}

func TestEnsembleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnsemble(testConfig(config.ModeFlat), 2, 1).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
