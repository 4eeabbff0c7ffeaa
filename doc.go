// Package exclusivity computes and benchmarks the exclusivity probability:
// given samples of sizes A = (a_1, ..., a_k) each drawn without replacement
// from a population of N values, how likely is it that some value appears in
// more than one sample?
//
// # The quantity
//
// The chance that the samples are pairwise disjoint is
//
//	Π_i C(N - (a_1+...+a_{i-1}), a_i) / C(N, a_i)
//
// and every variant in this package returns one minus that product. Inputs
// must satisfy len(A) >= 2, a_i >= 1 and sum(A) < N.
//
// # Three formulations
//
// The package carries three implementations of the same number, each a
// correctness-preserving rewrite of the previous one:
//
//   - [Naive]: the binomial ratios above, one per sample.
//   - [AlgebraicallyOptimized]: the ratios collapse into falling factorials
//     (the H function, H(N, a) = N·(N-1)···(N-a+1)):
//
//     1 - H(N, sum(A)) / Π_i H(N, a_i)
//
//   - [FullyOptimized]: the same fraction, with the samples sorted so each
//     H(N, a_i) extends the previous one and every factor is multiplied once.
//
// All intermediate products are math/big integers. Products over windows of
// the population overflow 64 bits for small N, so only the final ratio is
// converted to float64.
//
// # Benchmarking
//
// An [Experiment] sweeps a population range. For each population it builds
// TrialsPerPopulation trials with [NewTrial]; trial i may draw samples up to
// max(2, N·i/TrialsPerPopulation), so later trials are harder. Sequences come
// from [GenerateSequence], a randomized grow-and-repair procedure that stops
// with probability proportional to the share of the population used.
//
// Every trial times each variant over IterationsPerTrial calls:
//
//	exp, err := exclusivity.NewExperiment(exclusivity.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for res, err := range exp.Run(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, r := range res.Results {
//	        fmt.Println(r.Algorithm(), r.OK())
//	    }
//	}
//
// With Workers > 1 trials run on a bounded worker pool and arrive in
// completion order. A variant that panics is recorded as a failed
// [AlgorithmResult] and the trial still completes; failures outside a variant
// end the run.
//
// # Observing a run
//
// [Observer] implementations receive population and trial events. A
// [RuntimeTracker] keeps recent per-call runtimes per variant; [Summarize]
// aggregates a finished run.
//
// # Testing
//
// [AssertVariantsAgree], [AssertValidSequence] and [AssertTrialResult] check
// the package's invariants from tests.
package exclusivity
