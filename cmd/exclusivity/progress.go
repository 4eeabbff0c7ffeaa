package main

import (
	"log/slog"
	"sync"

	"github.com/alexshd/exclusivity"
)

// progressLogger logs a line every tenth of the run, with the recent median
// per-call runtime of each variant.
type progressLogger struct {
	logger  *slog.Logger
	tracker *exclusivity.RuntimeTracker
	total   int

	mu       sync.Mutex
	done     int
	failures int
	nextStep int // next tenth to report, 1..10
}

func newProgressLogger(logger *slog.Logger, tracker *exclusivity.RuntimeTracker, total int) *progressLogger {
	return &progressLogger{logger: logger, tracker: tracker, total: total, nextStep: 1}
}

func (p *progressLogger) PopulationStarted(population int) {
	p.logger.Debug("population started", "n", population)
}

func (p *progressLogger) TrialCompleted(result exclusivity.TrialResult) {
	p.mu.Lock()
	p.done++
	p.failures += len(result.Failed())
	var report bool
	for p.nextStep <= 10 && p.done*10 >= p.nextStep*p.total {
		p.nextStep++
		report = true
	}
	done, failures := p.done, p.failures
	p.mu.Unlock()

	if !report {
		return
	}
	attrs := []any{
		"trials", done,
		"of", p.total,
		"percent", done * 100 / max(p.total, 1),
		"failures", failures,
	}
	for _, s := range p.tracker.Snapshot() {
		attrs = append(attrs, s.Algorithm+"_p50", s.P50)
	}
	p.logger.Info("progress", attrs...)
}
