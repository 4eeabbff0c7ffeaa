package exclusivity

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSequence_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 10_000; i++ {
		population := MinPopulation + rng.IntN(200)
		maxValue := 1 + rng.IntN(population)

		seq, err := GenerateSequence(rng, population, maxValue)
		require.NoError(t, err)
		AssertValidSequence(t, seq, population, maxValue)
		if t.Failed() {
			t.Fatalf("invariant broken at run %d (N=%d, M=%d)", i, population, maxValue)
		}
	}
}

func TestGenerateSequence_SmallestPopulation(t *testing.T) {
	// [1, 1] is the only legal sequence for N=3.
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 100; i++ {
		seq, err := GenerateSequence(rng, 3, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1}, seq)
	}
}

func TestGenerateSequence_CapOfOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	seq, err := GenerateSequence(rng, 50, 1)
	require.NoError(t, err)
	for _, v := range seq {
		assert.Equal(t, 1, v)
	}
	AssertValidSequence(t, seq, 50, 1)
}

func TestGenerateSequence_Deterministic(t *testing.T) {
	a, err := GenerateSequence(rand.New(rand.NewPCG(42, 0)), 500, 120)
	require.NoError(t, err)
	b, err := GenerateSequence(rand.New(rand.NewPCG(42, 0)), 500, 120)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateSequence_InvalidParams(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	tests := []struct {
		name       string
		population int
		maxValue   int
		want       error
	}{
		{"population 2", 2, 2, ErrInfeasiblePopulation},
		{"population 0", 0, 2, ErrInfeasiblePopulation},
		{"max value 0", 10, 0, ErrInvalidMaxValue},
		{"max value negative", 10, -3, ErrInvalidMaxValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSequence(rng, tt.population, tt.maxValue)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidSequenceParams)
		})
	}
}

func TestIndexOfMax_FirstOccurrence(t *testing.T) {
	assert.Equal(t, 1, indexOfMax([]int{3, 5, 5, 1}))
	assert.Equal(t, 0, indexOfMax([]int{9}))
	assert.Equal(t, 0, indexOfMax([]int{2, 2, 2}))
}
