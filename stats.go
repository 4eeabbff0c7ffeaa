package exclusivity

import (
	"math"
	"slices"
	"time"
)

// Statistics summarizes a set of durations.
type Statistics struct {
	Count  int
	Mean   time.Duration
	Stddev time.Duration
	Min    time.Duration
	Max    time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// CalculateStatistics computes mean, spread and percentiles of samples.
func CalculateStatistics(samples []time.Duration) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	// Mean
	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	mean := sum / time.Duration(len(sorted))

	// Standard deviation
	var variance float64
	for _, d := range sorted {
		diff := float64(d - mean)
		variance += diff * diff
	}
	stddev := time.Duration(math.Sqrt(variance / float64(len(sorted))))

	return Statistics{
		Count:  len(sorted),
		Mean:   mean,
		Stddev: stddev,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P50:    sorted[len(sorted)*50/100],
		P95:    sorted[len(sorted)*95/100],
		P99:    sorted[len(sorted)*99/100],
	}
}

// VariantSummary aggregates one variant over a set of trial results.
type VariantSummary struct {
	Algorithm string
	Trials    int
	Failures  int
	// PerCall describes the mean time of one call in each successful trial.
	PerCall Statistics
	// MaxDeviation is the largest absolute difference from the reference
	// (first) variant's probability on the same trial.
	MaxDeviation float64
}

// Summarize aggregates results per variant, in the order variants first
// appear.
func Summarize(results []TrialResult) []VariantSummary {
	var (
		order   []string
		byName  = map[string]*VariantSummary{}
		perCall = map[string][]time.Duration{}
	)

	for _, tr := range results {
		ref, hasRef := referenceProbability(tr)
		for _, r := range tr.Results {
			s, ok := byName[r.Algorithm()]
			if !ok {
				s = &VariantSummary{Algorithm: r.Algorithm()}
				byName[r.Algorithm()] = s
				order = append(order, r.Algorithm())
			}
			s.Trials++

			o, ok := r.Outcome()
			if !ok {
				s.Failures++
				continue
			}
			perCall[s.Algorithm] = append(perCall[s.Algorithm], r.PerCall(tr.Trial.Iterations))
			if hasRef && !math.IsNaN(o.Probability) {
				s.MaxDeviation = math.Max(s.MaxDeviation, math.Abs(o.Probability-ref))
			}
		}
	}

	out := make([]VariantSummary, 0, len(order))
	for _, name := range order {
		s := byName[name]
		s.PerCall = CalculateStatistics(perCall[name])
		out = append(out, *s)
	}
	return out
}

func referenceProbability(tr TrialResult) (float64, bool) {
	if len(tr.Results) == 0 {
		return 0, false
	}
	o, ok := tr.Results[0].Outcome()
	if !ok || math.IsNaN(o.Probability) {
		return 0, false
	}
	return o.Probability, true
}
