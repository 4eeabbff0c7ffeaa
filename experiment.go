package exclusivity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrWorkerFailed means a parallel worker died outside of a variant call.
	// It ends the run.
	ErrWorkerFailed = errors.New("exclusivity: worker failed")

	// ErrAlreadyRunning is returned by Run while another Run of the same
	// Experiment is in progress.
	ErrAlreadyRunning = errors.New("exclusivity: experiment already running")
)

// DefaultBatchSize caps how many trials one worker dispatch carries.
const DefaultBatchSize = 50

// Option configures an Experiment.
type Option func(*Experiment)

// WithVariants replaces the benchmarked variants. Results list them in the
// given order.
func WithVariants(variants ...Variant) Option {
	return func(e *Experiment) { e.variants = slices.Clone(variants) }
}

// WithObserver adds an observer for run events.
func WithObserver(o Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithBatchSize sets the dispatch batch cap for parallel runs.
func WithBatchSize(n int) Option {
	return func(e *Experiment) {
		if n > 0 {
			e.batchCap = n
		}
	}
}

// Experiment sweeps a population range, generates trials and times every
// variant on each of them. An Experiment owns its run; it is not re-entrant.
type Experiment struct {
	cfg       Config
	variants  []Variant
	observers Observers
	logger    *slog.Logger
	batchCap  int
	exec      func(Trial, []Variant) TrialResult
	running   atomic.Bool
}

// NewExperiment normalizes cfg and returns an experiment ready to Run.
// Configuration errors are returned here, before any work starts.
func NewExperiment(cfg Config, opts ...Option) (*Experiment, error) {
	return newExperiment(cfg, runtime.NumCPU(), opts...)
}

func newExperiment(cfg Config, hostMax int, opts ...Option) (*Experiment, error) {
	cfg, err := cfg.normalize(hostMax)
	if err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:      cfg,
		variants: Variants(),
		logger:   slog.New(slog.DiscardHandler),
		batchCap: DefaultBatchSize,
		exec:     ExecuteTrial,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.variants) == 0 {
		return nil, fmt.Errorf("%w: no variants", ErrInvalidConfig)
	}
	return e, nil
}

// Config returns the resolved configuration.
func (e *Experiment) Config() Config { return e.cfg }

// Variants returns the benchmarked variants in result order.
func (e *Experiment) Variants() []Variant { return slices.Clone(e.variants) }

// TotalAlgorithmTrials is the number of (trial, variant) pairs in the run.
func (e *Experiment) TotalAlgorithmTrials() int {
	return len(e.variants) * e.cfg.TotalTrials()
}

// Trials enumerates the run's trials: populations in sweep order, and for
// each population indices 1..TrialsPerPopulation. Generation stops at the
// first error.
func (e *Experiment) Trials() iter.Seq2[Trial, error] {
	return func(yield func(Trial, error) bool) {
		for _, n := range e.cfg.Populations() {
			e.observers.PopulationStarted(n)
			for i := 1; i <= e.cfg.TrialsPerPopulation; i++ {
				t, err := NewTrial(e.cfg, i, n, TrialSeed(e.cfg.Seed, n, i))
				if err != nil {
					yield(Trial{}, err)
					return
				}
				if !yield(t, nil) {
					return
				}
			}
		}
	}
}

// ExecuteTrial times every variant against t, in order. Each variant runs
// t.Iterations calls and only the call loop is timed. A variant that panics
// gets a failed result; the remaining variants still run.
func ExecuteTrial(t Trial, variants []Variant) TrialResult {
	results := make([]AlgorithmResult, 0, len(variants))
	for _, v := range variants {
		results = append(results, timeVariant(v, t))
	}
	return TrialResult{Trial: t, Results: results}
}

// timeVariant runs v.Compute t.Iterations times on a private copy of the
// sequence.
func timeVariant(v Variant, t Trial) (res AlgorithmResult) {
	samples := slices.Clone(t.Sequence)
	defer func() {
		if r := recover(); r != nil {
			res = Failed(v.Name, Failure{
				Message: fmt.Sprintf("panic: %v", r),
				Stack:   string(debug.Stack()),
			})
		}
	}()

	var p float64
	start := time.Now()
	for range t.Iterations {
		p = v.Compute(samples, t.Population)
	}
	elapsed := time.Since(start)

	return Succeeded(v.Name, Outcome{Elapsed: elapsed, Probability: p})
}

// Run executes the experiment and yields trial results as they complete.
//
// With one worker trials run serially in submission order. With more, trials
// are dispatched in batches to a pool of Workers goroutines and yielded in
// completion order. The sequence is single pass; stopping early cancels
// dispatch and waits for in-flight trials.
//
// A run-level failure (trial generation, worker failure, ctx cancellation) is
// yielded last as a zero TrialResult with a non-nil error. Results yielded
// before it are complete.
func (e *Experiment) Run(ctx context.Context) iter.Seq2[TrialResult, error] {
	return func(yield func(TrialResult, error) bool) {
		if !e.running.CompareAndSwap(false, true) {
			yield(TrialResult{}, ErrAlreadyRunning)
			return
		}
		defer e.running.Store(false)

		e.logger.Info("run starting",
			"populations", e.cfg.TotalPopulations(),
			"trials", e.cfg.TotalTrials(),
			"algotrials", e.TotalAlgorithmTrials(),
			"workers", e.cfg.Workers,
			"seed", e.cfg.Seed)

		var (
			completed int
			failed    error
			start     = time.Now()
		)
		counted := func(r TrialResult, err error) bool {
			if err != nil {
				failed = err
			} else {
				completed++
			}
			return yield(r, err)
		}

		if e.cfg.Workers <= 1 {
			e.serial(ctx, counted)
		} else {
			e.parallel(ctx, counted)
		}

		if failed != nil {
			e.logger.Error("run aborted", "completed", completed, "elapsed", time.Since(start), "error", failed)
			return
		}
		e.logger.Info("run finished", "completed", completed, "elapsed", time.Since(start))
	}
}

func (e *Experiment) serial(ctx context.Context, yield func(TrialResult, error) bool) {
	for t, err := range e.Trials() {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			yield(TrialResult{}, err)
			return
		}
		res, err := e.execute(t)
		if err != nil {
			yield(TrialResult{}, err)
			return
		}
		e.observers.TrialCompleted(res)
		if !yield(res, nil) {
			return
		}
	}
}

func (e *Experiment) parallel(parent context.Context, yield func(TrialResult, error) bool) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	results := make(chan TrialResult, e.cfg.Workers)
	var runErr error

	go func() {
		defer close(results)
		genErr := e.dispatch(gctx, g, results)
		if genErr != nil {
			cancel()
		}
		waitErr := g.Wait()
		runErr = cmp.Or(genErr, waitErr, parent.Err())
	}()

	for res := range results {
		e.observers.TrialCompleted(res)
		if !yield(res, nil) {
			cancel()
			for range results {
			}
			return
		}
	}
	if runErr != nil {
		yield(TrialResult{}, runErr)
	}
}

// batchSize splits the run evenly across workers, capped at batchCap.
func (e *Experiment) batchSize() int {
	total := e.cfg.TotalTrials()
	perWorker := (total + e.cfg.Workers - 1) / e.cfg.Workers
	return max(1, min(e.batchCap, perWorker))
}

// dispatch generates trials and hands them to g in batches. It blocks while
// every worker is busy. It returns only generation errors; worker errors
// surface through g.Wait.
func (e *Experiment) dispatch(ctx context.Context, g *errgroup.Group, results chan<- TrialResult) error {
	size := e.batchSize()
	batch := make([]Trial, 0, size)
	for t, err := range e.Trials() {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		batch = append(batch, t)
		if len(batch) == size {
			e.submit(ctx, g, batch, results)
			batch = make([]Trial, 0, size)
		}
	}
	if len(batch) > 0 {
		e.submit(ctx, g, batch, results)
	}
	return nil
}

func (e *Experiment) submit(ctx context.Context, g *errgroup.Group, batch []Trial, results chan<- TrialResult) {
	e.logger.Debug("dispatching batch", "size", len(batch), "first_population", batch[0].Population)
	g.Go(func() error {
		for _, t := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.execute(t)
			if err != nil {
				return err
			}
			select {
			case results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}

// execute runs one trial. Variant panics are already absorbed by
// ExecuteTrial, so a panic reaching here is an infrastructure failure.
func (e *Experiment) execute(t Trial) (res TrialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: trial %d for population %d: panic: %v\n%s",
				ErrWorkerFailed, t.Index, t.Population, r, debug.Stack())
		}
	}()
	return e.exec(t, e.variants), nil
}
