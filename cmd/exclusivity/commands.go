package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexshd/exclusivity"
)

// app carries what every subcommand shares.
type app struct {
	logger   *slog.Logger
	logLevel string
}

type benchmarkOptions struct {
	trials      int
	iterations  int
	cores       int
	bounds      []int
	ascending   bool
	seed        uint64
	configPath  string
	outDir      string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "exclusivity",
		Short: "Benchmark formulations of the exclusivity probability",
		Long: `exclusivity computes the probability that samples drawn without
replacement from one population share at least one value, using three
formulations, and benchmarks them across a sweep of population sizes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(a.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			a.logger = newLogger(os.Stderr, level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newBenchmarkCmd(a),
		newProbabilityCmd(),
		newSummarizeCmd(),
	)
	return root
}

func newBenchmarkCmd(a *app) *cobra.Command {
	opts := &benchmarkOptions{}

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run the benchmark sweep and save the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := benchmarkConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBenchmark(ctx, a.logger, cmd.OutOrStdout(), cfg, opts)
		},
	}

	bindBenchmarkFlags(cmd.Flags(), opts)
	return cmd
}

func bindBenchmarkFlags(f *pflag.FlagSet, opts *benchmarkOptions) {
	def := exclusivity.DefaultConfig()
	f.IntVarP(&opts.trials, "trials", "T", def.TrialsPerPopulation, "trials per population size")
	f.IntSliceVarP(&opts.bounds, "range", "R", []int{def.Range.Low, def.Range.High}, "population range as low,high (inclusive)")
	f.IntVarP(&opts.iterations, "iterations", "I", def.IterationsPerTrial, "timed calls per algorithm per trial")
	f.IntVarP(&opts.cores, "cores", "C", def.Workers, "worker count: 0 for serial, negative for all CPUs")
	f.BoolVar(&opts.ascending, "ascending", def.Ascending, "sweep populations from low to high")
	f.Uint64Var(&opts.seed, "seed", 0, "run seed (0 picks one at random)")
	f.StringVar(&opts.configPath, "config", "", "YAML experiment config; flags override it")
	f.StringVar(&opts.outDir, "out", "Results", "directory for results files")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
}

func runBenchmark(ctx context.Context, logger *slog.Logger, out io.Writer, cfg exclusivity.Config, opts *benchmarkOptions) error {
	cfg, err := cfg.Normalize()
	if err != nil {
		return err
	}

	// The tracker must see a trial before the progress logger reads it.
	tracker := exclusivity.NewRuntimeTracker(1000)
	options := []exclusivity.Option{
		exclusivity.WithLogger(logger),
		exclusivity.WithObserver(tracker),
		exclusivity.WithObserver(newProgressLogger(logger, tracker, cfg.TotalTrials())),
	}

	var metrics *runMetrics
	if opts.metricsFile != "" {
		metrics = newRunMetrics()
		options = append(options, exclusivity.WithObserver(metrics))
	}

	exp, err := exclusivity.NewExperiment(cfg, options...)
	if err != nil {
		return err
	}

	doc := newRunDocument(cfg, time.Now())
	var runErr error
	for res, err := range exp.Run(ctx) {
		if err != nil {
			runErr = err
			break
		}
		doc.Results = append(doc.Results, res)
	}
	doc.finish(time.Now(), runErr)

	path, writeErr := writeRunDocument(opts.outDir, doc)
	if writeErr == nil {
		logger.Info("results saved", "path", path, "run_id", doc.Meta.RunID, "trials", len(doc.Results))
	}

	var metricsErr error
	if metrics != nil {
		if metricsErr = metrics.WriteTextfile(opts.metricsFile); metricsErr == nil {
			logger.Info("metrics saved", "path", opts.metricsFile)
		}
	}

	fmt.Fprint(out, renderSummary(exclusivity.Summarize(doc.Results)))
	return errors.Join(runErr, writeErr, metricsErr)
}

func newProbabilityCmd() *cobra.Command {
	var (
		population int
		variants   []string
	)

	cmd := &cobra.Command{
		Use:   "probability --population N a1 a2 [a3...]",
		Short: "Compute the exclusivity probability for one sequence of sample sizes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := parseSamples(args, population)
			if err != nil {
				return err
			}
			selected, err := selectVariants(variants)
			if err != nil {
				return err
			}
			for _, v := range selected {
				p, err := v.Evaluate(samples, population)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s error: %v\n", v.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %.17g\n", v.Name, p)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&population, "population", "N", 0, "population size")
	cmd.Flags().StringSliceVar(&variants, "variant", nil, "variants to run (default all)")
	_ = cmd.MarkFlagRequired("population")
	return cmd
}

// parseSamples checks the input domain every variant assumes: at least two
// sizes, each positive, summing below the population.
func parseSamples(args []string, population int) ([]int, error) {
	samples := make([]int, 0, len(args))
	sum := 0
	for _, arg := range args {
		a, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("sample size %q: %w", arg, err)
		}
		if a < 1 {
			return nil, fmt.Errorf("sample size %d: must be at least 1", a)
		}
		samples = append(samples, a)
		sum += a
	}
	if sum >= population {
		return nil, fmt.Errorf("sample sizes sum to %d, need less than the population %d", sum, population)
	}
	return samples, nil
}

func selectVariants(names []string) ([]exclusivity.Variant, error) {
	all := exclusivity.Variants()
	if len(names) == 0 {
		return all, nil
	}
	var out []exclusivity.Variant
	for _, name := range names {
		i := slices.IndexFunc(all, func(v exclusivity.Variant) bool { return v.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown variant %q", name)
		}
		out = append(out, all[i])
	}
	return out, nil
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <results.json.xz>",
		Short: "Print a per-algorithm summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readRunDocument(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run %s  %s  populations %d..%d  %d trials\n",
				doc.Meta.RunID, doc.Meta.Begin.Format(time.DateTime),
				doc.Params.Range.Low, doc.Params.Range.High, len(doc.Results))
			if doc.Meta.Error != "" {
				fmt.Fprintln(w, failStyle.Render("run ended early: "+doc.Meta.Error))
			}
			fmt.Fprint(w, renderSummary(exclusivity.Summarize(doc.Results)))
			return nil
		},
	}
}
