package exclusivity

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrInvalidSequenceParams is the parent of every GenerateSequence
	// parameter error.
	ErrInvalidSequenceParams = errors.New("exclusivity: invalid sequence parameters")

	// ErrInfeasiblePopulation means no sequence of two or more positive sizes
	// sums below the population (N < 3).
	ErrInfeasiblePopulation = fmt.Errorf("%w: population too small", ErrInvalidSequenceParams)

	// ErrInvalidMaxValue means the per-element cap is below 1.
	ErrInvalidMaxValue = fmt.Errorf("%w: max value must be at least 1", ErrInvalidSequenceParams)
)

// MinPopulation is the smallest population for which a valid sequence exists.
const MinPopulation = 3

// GenerateSequence draws a random sequence of sample sizes such that
//
//	len(A) >= 2, 1 <= a <= maxValue for every a, sum(A) < population
//
// Values are appended one at a time. When the running sum reaches the
// population the first occurrence of the largest value is removed and growth
// continues from there. After each step the loop stops with probability
// sum/population once at least two values are present, so sequences fill a
// larger share of the population as it grows.
//
// Termination is probabilistic; there is no iteration cap.
func GenerateSequence(rng *rand.Rand, population, maxValue int) ([]int, error) {
	if population < MinPopulation {
		return nil, fmt.Errorf("generate sequence (population=%d): %w", population, ErrInfeasiblePopulation)
	}
	if maxValue < 1 {
		return nil, fmt.Errorf("generate sequence (max=%d): %w", maxValue, ErrInvalidMaxValue)
	}

	seq := make([]int, 0, 4)
	sum := 0
	for {
		observed := sum
		if sum >= population {
			i := indexOfMax(seq)
			sum -= seq[i]
			seq = append(seq[:i], seq[i+1:]...)
		}

		// The stop chance uses the sum seen before any repair, so an overflow
		// that was just repaired ends the sequence once two values remain.
		stop := float64(observed) / float64(population)
		if rng.Float64() < stop && len(seq) >= 2 {
			return seq, nil
		}

		v := 1 + rng.IntN(maxValue)
		seq = append(seq, v)
		sum += v
	}
}

// indexOfMax returns the index of the first occurrence of the largest value.
func indexOfMax(seq []int) int {
	best := 0
	for i, v := range seq {
		if v > seq[best] {
			best = i
		}
	}
	return best
}
