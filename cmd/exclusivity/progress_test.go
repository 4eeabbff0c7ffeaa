package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexshd/exclusivity"
)

func TestProgressLogger_EveryTenth(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tracker := exclusivity.NewRuntimeTracker(10)
	p := newProgressLogger(logger, tracker, 25)

	trial := exclusivity.TrialResult{Trial: exclusivity.Trial{Iterations: 1}}
	for range 25 {
		tracker.TrialCompleted(trial)
		p.TrialCompleted(trial)
	}

	// 25 trials cross each tenth once: 3,5,8,10,13,15,18,20,23,25.
	assert.Equal(t, 10, strings.Count(buf.String(), "msg=progress"))
	assert.Contains(t, buf.String(), "percent=100")
}

func TestProgressLogger_SmallRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := newProgressLogger(logger, exclusivity.NewRuntimeTracker(10), 3)

	for range 3 {
		p.TrialCompleted(exclusivity.TrialResult{})
	}

	// Several tenths can pass in one trial; each trial logs at most once.
	assert.Equal(t, 3, strings.Count(buf.String(), "msg=progress"))
}
