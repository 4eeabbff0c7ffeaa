package exclusivity

import (
	"slices"
	"sync"
	"time"
)

// RuntimeTracker follows per-call runtimes of each variant while a run is in
// progress. It keeps the most recent samples per variant in a fixed-size ring
// buffer, so percentiles describe the recent part of the sweep.
//
// It implements Observer:
//
//	tracker := NewRuntimeTracker(1000)
//	exp, _ := NewExperiment(cfg, WithObserver(tracker))
//	for res, err := range exp.Run(ctx) { ... }
//	p50 := tracker.Percentile(NameFullyOptimized, 0.50)
type RuntimeTracker struct {
	mu         sync.Mutex
	maxSamples int
	rings      map[string]*ring
	order      []string // variants in first-seen order
	trials     int64
}

type ring struct {
	samples     []time.Duration
	writeIndex  int
	sampleCount int64 // total recorded (monotonic)
	failures    int64
}

// NewRuntimeTracker creates a tracker keeping maxSamples per variant.
func NewRuntimeTracker(maxSamples int) *RuntimeTracker {
	if maxSamples <= 0 {
		maxSamples = 1000 // Default
	}
	return &RuntimeTracker{
		maxSamples: maxSamples,
		rings:      make(map[string]*ring),
	}
}

// PopulationStarted implements Observer.
func (t *RuntimeTracker) PopulationStarted(int) {}

// TrialCompleted implements Observer.
func (t *RuntimeTracker) TrialCompleted(result TrialResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.trials++
	for _, r := range result.Results {
		rg := t.ringLocked(r.Algorithm())
		if !r.OK() {
			rg.failures++
			continue
		}
		rg.record(r.PerCall(result.Trial.Iterations), t.maxSamples)
	}
}

// Record adds one per-call runtime sample for algorithm.
func (t *RuntimeTracker) Record(algorithm string, perCall time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ringLocked(algorithm).record(perCall, t.maxSamples)
}

func (t *RuntimeTracker) ringLocked(algorithm string) *ring {
	rg, ok := t.rings[algorithm]
	if !ok {
		rg = &ring{samples: make([]time.Duration, t.maxSamples)}
		t.rings[algorithm] = rg
		t.order = append(t.order, algorithm)
	}
	return rg
}

func (r *ring) record(d time.Duration, maxSamples int) {
	r.samples[r.writeIndex] = d
	r.writeIndex = (r.writeIndex + 1) % maxSamples
	r.sampleCount++
}

func (r *ring) effective(maxSamples int) []time.Duration {
	if r.sampleCount < int64(maxSamples) {
		return r.samples[:r.sampleCount]
	}
	return r.samples
}

// Trials returns the number of completed trials observed.
func (t *RuntimeTracker) Trials() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trials
}

// Percentile returns the p-th percentile (0 < p < 1) of recent per-call
// runtimes for algorithm, or 0 when nothing was recorded.
func (t *RuntimeTracker) Percentile(algorithm string, p float64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	rg, ok := t.rings[algorithm]
	if !ok {
		return 0
	}
	return percentile(rg.effective(t.maxSamples), p)
}

// TailRatio returns P99/P50 for algorithm. A high ratio means a few trials
// (usually the largest populations) dominate the runtime.
func (t *RuntimeTracker) TailRatio(algorithm string) float64 {
	p50 := t.Percentile(algorithm, 0.50)
	p99 := t.Percentile(algorithm, 0.99)
	if p50 == 0 {
		return 1.0 // Not enough samples
	}
	return float64(p99) / float64(p50)
}

// Speedup returns how many times faster other's median is than base's.
func (t *RuntimeTracker) Speedup(base, other string) float64 {
	b := t.Percentile(base, 0.50)
	o := t.Percentile(other, 0.50)
	if o == 0 {
		return 0
	}
	return float64(b) / float64(o)
}

// TailStats is a snapshot of one variant's recent runtimes.
type TailStats struct {
	Algorithm   string
	SampleCount int64
	Failures    int64
	Mean        time.Duration
	P50         time.Duration
	P99         time.Duration
	TailRatio   float64
}

// Snapshot returns stats for every variant in first-seen order.
func (t *RuntimeTracker) Snapshot() []TailStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TailStats, 0, len(t.order))
	for _, name := range t.order {
		rg := t.rings[name]
		samples := rg.effective(t.maxSamples)
		st := TailStats{
			Algorithm:   name,
			SampleCount: rg.sampleCount,
			Failures:    rg.failures,
			Mean:        mean(samples),
			P50:         percentile(samples, 0.50),
			P99:         percentile(samples, 0.99),
			TailRatio:   1.0,
		}
		if st.P50 > 0 {
			st.TailRatio = float64(st.P99) / float64(st.P50)
		}
		out = append(out, st)
	}
	return out
}

func mean(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, d := range samples {
		sum += int64(d)
	}
	return time.Duration(sum / int64(len(samples)))
}

// percentile sorts a copy of samples and picks the p-th element.
func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	index := int(float64(len(sorted)-1) * p)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
