package exclusivity

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// AssertionConfig contains thresholds for the correctness assertions.
type AssertionConfig struct {
	// Tolerance bounds the disagreement between variants, applied as an
	// absolute or relative error, whichever is larger.
	Tolerance float64
}

// DefaultAssertionConfig returns the tolerance the variants are held to for
// moderate populations.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		Tolerance: 1e-9,
	}
}

// WithinTolerance reports whether a and b agree to tol, absolute or relative.
func WithinTolerance(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	if diff <= tol {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= tol*scale
}

// AssertVariantsAgree verifies every variant returns the reference (first)
// variant's probability for (samples, population).
func AssertVariantsAgree(t testing.TB, variants []Variant, samples []int, population int, cfg AssertionConfig) {
	t.Helper()

	if len(variants) == 0 {
		t.Fatalf("no variants to compare")
	}

	ref, err := variants[0].Evaluate(samples, population)
	if err != nil {
		t.Fatalf("%s(%v, %d) failed: %v", variants[0].Name, samples, population, err)
	}
	if ref < 0 || ref > 1 {
		t.Errorf("%s(%v, %d) = %v, outside [0, 1]", variants[0].Name, samples, population, ref)
	}

	var failures []string
	for _, v := range variants[1:] {
		got, err := v.Evaluate(samples, population)
		if err != nil {
			failures = append(failures, fmt.Sprintf("  %s: %v", v.Name, err))
			continue
		}
		if !WithinTolerance(ref, got, cfg.Tolerance) {
			failures = append(failures, fmt.Sprintf("  %s = %.17g, %s = %.17g (diff %.3g)",
				v.Name, got, variants[0].Name, ref, math.Abs(got-ref)))
		}
	}

	if len(failures) > 0 {
		t.Errorf("variants disagree on A=%v N=%d:\n%s", samples, population, strings.Join(failures, "\n"))
	}
}

// AssertValidSequence verifies seq is a legal sample-size sequence for
// population with elements capped at maxValue.
func AssertValidSequence(t testing.TB, seq []int, population, maxValue int) {
	t.Helper()

	if len(seq) < 2 {
		t.Errorf("sequence %v has %d elements, want at least 2", seq, len(seq))
	}
	sum := 0
	for i, v := range seq {
		if v < 1 || v > maxValue {
			t.Errorf("sequence %v: element %d = %d outside [1, %d]", seq, i, v, maxValue)
		}
		sum += v
	}
	if sum >= population {
		t.Errorf("sequence %v sums to %d, want < %d", seq, sum, population)
	}
}

// AssertTrialResult verifies result has one AlgorithmResult per variant, in
// variant order, each carrying exactly one of an outcome or a failure.
func AssertTrialResult(t testing.TB, result TrialResult, variants []Variant) {
	t.Helper()

	if len(result.Results) != len(variants) {
		t.Fatalf("trial result has %d algorithm results, want %d", len(result.Results), len(variants))
	}
	for i, r := range result.Results {
		if r.Algorithm() != variants[i].Name {
			t.Errorf("result %d is %q, want %q", i, r.Algorithm(), variants[i].Name)
		}
		_, hasOutcome := r.Outcome()
		_, hasFailure := r.Failure()
		if hasOutcome == hasFailure {
			t.Errorf("result %q: outcome=%v failure=%v, want exactly one", r.Algorithm(), hasOutcome, hasFailure)
		}
	}
}
