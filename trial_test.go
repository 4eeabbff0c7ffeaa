package exclusivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxSampleSize(t *testing.T) {
	tests := []struct {
		population, index, trials int
		want                      int
	}{
		{10, 1, 30, 2},     // floor(10/30) = 0, raised to 2
		{10, 6, 30, 2},     // floor(60/30) = 2
		{10, 15, 30, 5},    // floor(150/30) = 5
		{100, 30, 30, 100}, // last trial may use the whole population
		{7, 1, 2, 3},       // floor(7/2) = 3
	}

	for _, tt := range tests {
		got := MaxSampleSize(tt.population, tt.index, tt.trials)
		assert.Equal(t, tt.want, got, "MaxSampleSize(%d, %d, %d)", tt.population, tt.index, tt.trials)
	}
}

func TestNewTrial(t *testing.T) {
	cfg := Config{TrialsPerPopulation: 4, IterationsPerTrial: 7}

	trial, err := NewTrial(cfg, 3, 40, TrialSeed(99, 40, 3))
	require.NoError(t, err)

	assert.Equal(t, 40, trial.Population)
	assert.Equal(t, 3, trial.Index)
	assert.Equal(t, 7, trial.Iterations)
	assert.Equal(t, 4, trial.TrialsPerPopulation)
	assert.Equal(t, Fingerprint(40, trial.Sequence), trial.Fingerprint)
	AssertValidSequence(t, trial.Sequence, 40, MaxSampleSize(40, 3, 4))
}

func TestNewTrial_InfeasiblePopulation(t *testing.T) {
	cfg := Config{TrialsPerPopulation: 1, IterationsPerTrial: 1}
	_, err := NewTrial(cfg, 1, 2, TrialSeed(1, 2, 1))
	assert.ErrorIs(t, err, ErrInfeasiblePopulation)
}

func TestTrialSeed_Reproducible(t *testing.T) {
	cfg := Config{TrialsPerPopulation: 10, IterationsPerTrial: 1}

	a, err := NewTrial(cfg, 5, 200, TrialSeed(17, 200, 5))
	require.NoError(t, err)
	b, err := NewTrial(cfg, 5, 200, TrialSeed(17, 200, 5))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(10, []int{1, 2}), Fingerprint(10, []int{1, 2}))
	assert.NotEqual(t, Fingerprint(10, []int{1, 2}), Fingerprint(10, []int{2, 1}))
	assert.NotEqual(t, Fingerprint(10, []int{1, 2}), Fingerprint(11, []int{1, 2}))
}
