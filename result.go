package exclusivity

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Outcome is a successful timed variant run.
type Outcome struct {
	Elapsed     time.Duration // total over every iteration
	Probability float64
}

// Failure is a variant run that panicked or otherwise could not produce a
// probability.
type Failure struct {
	Message string
	Stack   string
}

// AlgorithmResult records one variant's run on one trial. It holds either an
// Outcome or a Failure, never both; use Succeeded or Failed to build one.
type AlgorithmResult struct {
	algorithm string
	outcome   *Outcome
	failure   *Failure
}

// Succeeded returns a result carrying o.
func Succeeded(algorithm string, o Outcome) AlgorithmResult {
	return AlgorithmResult{algorithm: algorithm, outcome: &o}
}

// Failed returns a result carrying f.
func Failed(algorithm string, f Failure) AlgorithmResult {
	return AlgorithmResult{algorithm: algorithm, failure: &f}
}

// Algorithm is the variant name.
func (r AlgorithmResult) Algorithm() string { return r.algorithm }

// OK reports whether the variant produced a probability.
func (r AlgorithmResult) OK() bool { return r.outcome != nil }

// Outcome returns the outcome, if any.
func (r AlgorithmResult) Outcome() (Outcome, bool) {
	if r.outcome == nil {
		return Outcome{}, false
	}
	return *r.outcome, true
}

// Failure returns the failure, if any.
func (r AlgorithmResult) Failure() (Failure, bool) {
	if r.failure == nil {
		return Failure{}, false
	}
	return *r.failure, true
}

// PerCall is the mean duration of one call, or 0 for a failed result.
func (r AlgorithmResult) PerCall(iterations int) time.Duration {
	if r.outcome == nil || iterations < 1 {
		return 0
	}
	return r.outcome.Elapsed / time.Duration(iterations)
}

// algorithmResultJSON is the persisted shape. Runtime is in seconds.
type algorithmResultJSON struct {
	Algorithm string   `json:"algorithm"`
	Runtime   *float64 `json:"runtime"`
	Result    *float64 `json:"result"`
	Error     *string  `json:"error"`
}

// MarshalJSON implements json.Marshaler.
func (r AlgorithmResult) MarshalJSON() ([]byte, error) {
	out := algorithmResultJSON{Algorithm: r.algorithm}
	if r.outcome != nil {
		secs := r.outcome.Elapsed.Seconds()
		p := r.outcome.Probability
		out.Runtime = &secs
		if !math.IsNaN(p) && !math.IsInf(p, 0) {
			out.Result = &p
		}
	}
	if r.failure != nil {
		msg := r.failure.Message
		if r.failure.Stack != "" {
			msg += "\n" + r.failure.Stack
		}
		out.Error = &msg
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *AlgorithmResult) UnmarshalJSON(data []byte) error {
	var in algorithmResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Error != nil && (in.Result != nil || in.Runtime != nil):
		return errors.New("exclusivity: algorithm result has both a value and an error")
	case in.Error != nil:
		*r = Failed(in.Algorithm, Failure{Message: *in.Error})
	case in.Runtime != nil:
		o := Outcome{Elapsed: time.Duration(*in.Runtime * float64(time.Second)), Probability: math.NaN()}
		if in.Result != nil {
			o.Probability = *in.Result
		}
		*r = Succeeded(in.Algorithm, o)
	default:
		return errors.New("exclusivity: algorithm result has neither a value nor an error")
	}
	return nil
}

// TrialResult is a trial together with one AlgorithmResult per variant, in
// variant order.
type TrialResult struct {
	Trial   Trial             `json:"trial"`
	Results []AlgorithmResult `json:"results"`
}

// Failed returns the results of variants that failed.
func (t TrialResult) Failed() []AlgorithmResult {
	var out []AlgorithmResult
	for _, r := range t.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// MaxDeviation is the largest pairwise difference between the probabilities
// of the successful variants. It is 0 when fewer than two succeeded.
func (t TrialResult) MaxDeviation() float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, r := range t.Results {
		o, ok := r.Outcome()
		if !ok {
			continue
		}
		lo = math.Min(lo, o.Probability)
		hi = math.Max(hi, o.Probability)
		n++
	}
	if n < 2 {
		return 0
	}
	return hi - lo
}
