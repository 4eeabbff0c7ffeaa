package exclusivity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidConfig marks a configuration that cannot start a run.
	ErrInvalidConfig = errors.New("exclusivity: invalid config")

	// ErrTooManyWorkers means more workers were requested than the host has
	// execution units.
	ErrTooManyWorkers = errors.New("exclusivity: worker count exceeds host maximum")
)

// configValidate is shared by every Config.Validate call.
var configValidate = validator.New()

// Range is an inclusive range of population sizes.
type Range struct {
	Low  int `json:"low" yaml:"low" validate:"gte=3"`
	High int `json:"high" yaml:"high" validate:"gtefield=Low"`
}

// Normalize returns the range with Low <= High.
func (r Range) Normalize() Range {
	if r.Low > r.High {
		return Range{Low: r.High, High: r.Low}
	}
	return r
}

// Config controls an experiment run. It is immutable once a run starts and
// fully determines the amount of work.
type Config struct {
	TrialsPerPopulation int   `json:"trials_per_population" yaml:"trials_per_population" validate:"gte=1"`
	IterationsPerTrial  int   `json:"iterations_per_trial" yaml:"iterations_per_trial" validate:"gte=1"`
	Range               Range `json:"range" yaml:"range"`
	// Workers: 0 runs serially, negative uses every CPU.
	Workers   int  `json:"workers" yaml:"workers" validate:"gte=1"`
	Ascending bool `json:"ascending" yaml:"ascending"`
	// Seed drives trial generation. Zero picks a random seed on Normalize.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TrialsPerPopulation: 30,
		IterationsPerTrial:  30,
		Range:               Range{Low: 10, High: 100},
		Workers:             -1,
		Ascending:           false,
	}
}

// ResolveWorkers maps a requested worker count onto the host: 0 becomes 1
// (serial), a negative value becomes hostMax, and anything above hostMax is
// rejected.
func ResolveWorkers(requested, hostMax int) (int, error) {
	switch {
	case requested == 0:
		return 1, nil
	case requested < 0:
		return hostMax, nil
	case requested > hostMax:
		return 0, fmt.Errorf("%w: %w: requested %d, must be in [-1, %d]",
			ErrInvalidConfig, ErrTooManyWorkers, requested, hostMax)
	}
	return requested, nil
}

// Normalize resolves the config against this host and validates it.
func (c Config) Normalize() (Config, error) {
	return c.normalize(runtime.NumCPU())
}

func (c Config) normalize(hostMax int) (Config, error) {
	c.Range = c.Range.Normalize()

	workers, err := ResolveWorkers(c.Workers, hostMax)
	if err != nil {
		return Config{}, err
	}
	c.Workers = workers

	if c.Seed == 0 {
		c.Seed = rand.Uint64() | 1
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks a normalized config.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, describeValidation(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	fe := verrs[0]
	switch fe.StructNamespace() {
	case "Config.Range.Low":
		return fmt.Sprintf("population range must start at %d or above, got %v", MinPopulation, fe.Value())
	case "Config.Range.High":
		return fmt.Sprintf("population range high %v is below low", fe.Value())
	}
	return fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
}

// TotalPopulations is the number of population sizes in the sweep.
func (c Config) TotalPopulations() int {
	return max(c.Range.High-c.Range.Low+1, 0)
}

// TotalTrials is the number of trials in the run.
func (c Config) TotalTrials() int {
	return c.TotalPopulations() * c.TrialsPerPopulation
}

// TotalAlgorithmTrials is the number of (trial, variant) pairs in the run.
func (c Config) TotalAlgorithmTrials() int {
	return len(Variants()) * c.TotalTrials()
}

// Populations returns the sweep in configured order.
func (c Config) Populations() []int {
	out := make([]int, 0, c.TotalPopulations())
	if c.Ascending {
		for n := c.Range.Low; n <= c.Range.High; n++ {
			out = append(out, n)
		}
		return out
	}
	for n := c.Range.High; n >= c.Range.Low; n-- {
		out = append(out, n)
	}
	return out
}
