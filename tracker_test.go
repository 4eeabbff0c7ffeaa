package exclusivity

import (
	"sync"
	"testing"
	"time"
)

func TestRuntimeTracker_DominatedAverage(t *testing.T) {
	tracker := NewRuntimeTracker(100)

	// 98 small populations at 1ms per call, 2 huge ones at 10s.
	for range 98 {
		tracker.Record(NameNaive, time.Millisecond)
	}
	for range 2 {
		tracker.Record(NameNaive, 10*time.Second)
	}

	p50 := tracker.Percentile(NameNaive, 0.50)
	p99 := tracker.Percentile(NameNaive, 0.99)
	if p50 != time.Millisecond {
		t.Errorf("P50: expected 1ms, got %v", p50)
	}
	if p99 != 10*time.Second {
		t.Errorf("P99 should capture the huge populations, got %v", p99)
	}
	if ratio := tracker.TailRatio(NameNaive); ratio < 1000 {
		t.Errorf("expected tail ratio >= 1000, got %.0f", ratio)
	}

	stats := tracker.Snapshot()
	if len(stats) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(stats))
	}
	// (98*1ms + 2*10s) / 100
	if want := 200980 * time.Microsecond; stats[0].Mean != want {
		t.Errorf("Mean: expected %v, got %v", want, stats[0].Mean)
	}

	t.Logf("mean=%v p50=%v p99=%v ratio=%.0fx", stats[0].Mean, stats[0].P50, stats[0].P99, stats[0].TailRatio)
}

func TestRuntimeTracker_RingKeepsRecentSamples(t *testing.T) {
	tracker := NewRuntimeTracker(10)

	for range 10 {
		tracker.Record(NameFullyOptimized, time.Second)
	}
	// Overwrites the whole window.
	for range 10 {
		tracker.Record(NameFullyOptimized, time.Millisecond)
	}

	if p99 := tracker.Percentile(NameFullyOptimized, 0.99); p99 != time.Millisecond {
		t.Errorf("old samples should be evicted, P99=%v", p99)
	}
	if n := tracker.Snapshot()[0].SampleCount; n != 20 {
		t.Errorf("SampleCount counts every record: expected 20, got %d", n)
	}
}

func TestRuntimeTracker_Observer(t *testing.T) {
	tracker := NewRuntimeTracker(0)
	var _ Observer = tracker

	result := TrialResult{
		Trial: Trial{Population: 50, Sequence: []int{3, 4}, Iterations: 4},
		Results: []AlgorithmResult{
			Succeeded(NameNaive, Outcome{Elapsed: 40 * time.Microsecond, Probability: 0.4}),
			Failed(NameAlgebraicallyOptimized, Failure{Message: "boom"}),
			Succeeded(NameFullyOptimized, Outcome{Elapsed: 8 * time.Microsecond, Probability: 0.4}),
		},
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.TrialCompleted(result)
		}()
	}
	wg.Wait()

	if n := tracker.Trials(); n != 8 {
		t.Errorf("expected 8 trials, got %d", n)
	}

	stats := tracker.Snapshot()
	if len(stats) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(stats))
	}
	if stats[0].Algorithm != NameNaive || stats[2].Algorithm != NameFullyOptimized {
		t.Errorf("variants should keep first-seen order, got %s..%s", stats[0].Algorithm, stats[2].Algorithm)
	}
	if stats[1].Failures != 8 || stats[1].SampleCount != 0 {
		t.Errorf("failed variant: expected 8 failures and no samples, got %d/%d", stats[1].Failures, stats[1].SampleCount)
	}
	if stats[0].P50 != 10*time.Microsecond {
		t.Errorf("naive per-call P50: expected 10µs, got %v", stats[0].P50)
	}
	if s := tracker.Speedup(NameNaive, NameFullyOptimized); s != 5 {
		t.Errorf("expected 5x speedup, got %.2f", s)
	}
}

func TestRuntimeTracker_Unknown(t *testing.T) {
	tracker := NewRuntimeTracker(10)

	if p := tracker.Percentile("missing", 0.5); p != 0 {
		t.Errorf("expected 0 for unknown variant, got %v", p)
	}
	if r := tracker.TailRatio("missing"); r != 1.0 {
		t.Errorf("expected neutral ratio, got %.2f", r)
	}
	if s := tracker.Speedup(NameNaive, "missing"); s != 0 {
		t.Errorf("expected 0 speedup without samples, got %.2f", s)
	}
}
