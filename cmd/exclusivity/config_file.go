package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/alexshd/exclusivity"
)

// loadConfigFile reads a YAML experiment config. Keys missing from the file
// keep their DefaultConfig values.
func loadConfigFile(path string) (exclusivity.Config, error) {
	cfg := exclusivity.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// benchmarkConfig builds the experiment config: defaults, then the config
// file if one is given, then every flag the user set explicitly.
func benchmarkConfig(flags *pflag.FlagSet, opts *benchmarkOptions) (exclusivity.Config, error) {
	cfg := exclusivity.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = loadConfigFile(opts.configPath); err != nil {
			return cfg, err
		}
	}

	if flags.Changed("trials") {
		cfg.TrialsPerPopulation = opts.trials
	}
	if flags.Changed("iterations") {
		cfg.IterationsPerTrial = opts.iterations
	}
	if flags.Changed("cores") {
		cfg.Workers = opts.cores
	}
	if flags.Changed("ascending") {
		cfg.Ascending = opts.ascending
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("range") {
		if len(opts.bounds) != 2 {
			return cfg, fmt.Errorf("%w: --range takes exactly two values, got %d",
				exclusivity.ErrInvalidConfig, len(opts.bounds))
		}
		cfg.Range = exclusivity.Range{Low: opts.bounds[0], High: opts.bounds[1]}
	}
	return cfg, nil
}
