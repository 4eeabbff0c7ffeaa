package exclusivity

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/zeebo/xxh3"
)

// Trial is one generated input: a population and the sample sizes drawn from
// it, evaluated against every variant. Trials are never mutated after
// NewTrial returns.
type Trial struct {
	Population          int    `json:"population"`
	Sequence            []int  `json:"sequence"`
	Index               int    `json:"index"`
	Iterations          int    `json:"iterations"`
	TrialsPerPopulation int    `json:"trials_per_population"`
	Fingerprint         uint64 `json:"fingerprint"`
}

// MaxSampleSize is the largest sample size a trial may draw. Later indices
// for the same population allow larger samples, grading difficulty across the
// trials of one population:
//
//	max(2, floor(population * index / trialsPerPopulation))
func MaxSampleSize(population, index, trialsPerPopulation int) int {
	return max(2, population*index/trialsPerPopulation)
}

// NewTrial builds trial number index (1-based) for population.
func NewTrial(cfg Config, index, population int, rng *rand.Rand) (Trial, error) {
	limit := MaxSampleSize(population, index, cfg.TrialsPerPopulation)
	seq, err := GenerateSequence(rng, population, limit)
	if err != nil {
		return Trial{}, fmt.Errorf("trial %d for population %d: %w", index, population, err)
	}
	return Trial{
		Population:          population,
		Sequence:            seq,
		Index:               index,
		Iterations:          cfg.IterationsPerTrial,
		TrialsPerPopulation: cfg.TrialsPerPopulation,
		Fingerprint:         Fingerprint(population, seq),
	}, nil
}

// TrialSeed returns the random source for one trial. It depends only on the
// run seed and the trial's coordinates, so the same seed reproduces the same
// trials in any execution mode.
func TrialSeed(seed uint64, population, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(population)<<32|uint64(uint32(index))))
}

// Fingerprint hashes a (population, sequence) pair. Identical inputs across a
// run share a fingerprint.
func Fingerprint(population int, seq []int) uint64 {
	buf := make([]byte, 0, 8*(len(seq)+1))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(population))
	for _, v := range seq {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
	return xxh3.Hash(buf)
}
