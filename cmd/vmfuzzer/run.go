package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/config"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coordinator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/logging"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/mutator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/obsmetrics"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/ui"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the fuzzing loop",
	Long: `Run spawns nb_threads workers against the configured contract and drives
the fuzzing loop until interrupted (SIGINT/SIGTERM) or the UI requests exit.
In stateless mode (the default) every worker targets a single function named
by --target-function; in stateful mode (--functions given) every worker
stresses randomized call sequences over the named functions plus any
discovered fuzz_-prefixed helpers.`,
	RunE: runFuzzer,
}

func init() {
	runCmd.Flags().String("target-function", "", "target function for stateless mode")
	runCmd.Flags().StringSlice("detectors", nil, "detector tags to enable (overrides config)")
	runCmd.Flags().StringSlice("functions", nil, "stateful mode: target functions to stress")
}

func runFuzzer(cmd *cobra.Command, _ []string) error {
	targetFunction, _ := cmd.Flags().GetString("target-function")
	detectorFlags, _ := cmd.Flags().GetStringSlice("detectors")
	functions, _ := cmd.Flags().GetStringSlice("functions")

	stateful := len(functions) > 0
	if !stateful && targetFunction == "" {
		return fmt.Errorf("--target-function is required unless --functions is given")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if stateful && cfg.Sandbox.Enabled {
		return fmt.Errorf("stateful mode requires an in-process Runner (sandbox.Runner has no Setup hook)")
	}

	logLevel := logging.LogLevel(cfg.Logging.Level)
	if verbose {
		logLevel = logging.LogLevelDebug
	}
	logger := logging.NewLogger(logging.LoggerConfig{
		Level:  logLevel,
		Format: logging.LogFormat(cfg.Logging.Format),
		Output: os.Stdout,
	})
	logger.Info("vmfuzzer starting", "version", version, "nb_threads", cfg.NbThreads)

	detectorTags := cfg.Detectors
	if len(detectorFlags) > 0 {
		detectorTags = detectorFlags
	}
	tags := make([]detector.Tag, len(detectorTags))
	for i, t := range detectorTags {
		tags[i] = detector.Tag(t)
	}
	detectors := detector.Resolve(tags)

	reporter := ui.NewLineUI(os.Stdout)

	coord, err := coordinator.New(cfg.CorpusDir, cfg.CrashesDir, reporter, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coordinator: %w", err)
	}

	var exporter *obsmetrics.Exporter
	if cfg.MetricsAddr != "" {
		exporter = obsmetrics.New()
		if err := exporter.Serve(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		logger.Info("metrics exporter listening", "addr", cfg.MetricsAddr)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var closersMu sync.Mutex
	var closers []func()

	coord.Spawn(cfg.NbThreads, cfg.Seed, func(index int, seed int64, ch *events.Channel, st *stats.Stats, initial *coverage.Set) {
		r, closeRunner, err := buildRunner(cfg)
		if err != nil {
			logger.Error("failed to build runner for worker", "index", index, "error", err.Error())
			return
		}
		closersMu.Lock()
		closers = append(closers, closeRunner)
		closersMu.Unlock()

		src := rng.NewFromSeed(seed)
		m := mutator.NewDefaultMutator(src)

		wg.Add(1)
		if stateful {
			runStatefulWorker(&wg, r, m, src, st, ch, detectors, initial, cfg, functions, logger, index, stop)
			return
		}
		runStatelessWorker(&wg, r, m, src, st, ch, detectors, initial, cfg, targetFunction, index, stop)
	})

	drive(coord, reporter, exporter, stop)

	close(stop)
	wg.Wait()
	closersMu.Lock()
	for _, c := range closers {
		c()
	}
	closersMu.Unlock()

	logger.Info("vmfuzzer stopped")
	return nil
}

func runStatelessWorker(wg *sync.WaitGroup, r runner.Runner, m mutator.Mutator, src *rng.Source, st *stats.Stats, ch *events.Channel, detectors []detector.Detector, initial *coverage.Set, cfg *config.Config, targetFunction string, index int, stop <-chan struct{}) {
	r.SetTargetFunction(typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: targetFunction}))
	w := worker.NewStateless(index, r, m, src, st, ch, detectors, initial, cfg.ExecsBeforeCovUpdate)
	go func() {
		defer wg.Done()
		w.Run(stop)
	}()
}

func runStatefulWorker(wg *sync.WaitGroup, r runner.Runner, m mutator.Mutator, src *rng.Source, st *stats.Stats, ch *events.Channel, detectors []detector.Detector, initial *coverage.Set, cfg *config.Config, functions []string, logger *logging.Logger, index int, stop <-chan struct{}) {
	sr, ok := r.(runner.StatefulRunner)
	if !ok {
		logger.Error("worker runner does not support stateful mode", "index", index)
		wg.Done()
		return
	}

	targets := make([]typedvalue.Value, len(functions))
	for i, name := range functions {
		targets[i] = typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: name})
	}

	vm := newDemoVM(cfg)
	named := make(map[string]bool, len(functions))
	for _, n := range functions {
		named[n] = true
	}
	var helpers []typedvalue.Value
	for _, name := range fuzzHelperNames(vm, cfg.FuzzFunctionsPrefix) {
		if !named[name] {
			helpers = append(helpers, typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: name}))
		}
	}

	w := worker.NewStateful(index, sr, m, src, st, ch, detectors, initial, cfg.ExecsBeforeCovUpdate, targets, helpers, cfg.MaxCallSequenceSize)
	go func() {
		defer wg.Done()
		if err := w.Run(stop); err != nil {
			logger.Error("stateful worker exited with error", "index", index, "error", err.Error())
		}
	}()
}

func drive(coord *coordinator.Coordinator, reporter ui.UI, exporter *obsmetrics.Exporter, stop chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var lastExecs uint64
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			if exporter != nil {
				_ = exporter.Shutdown(context.Background())
			}
			return
		case <-ticker.C:
			coord.Tick()
			snap := coord.GlobalStats()
			if exporter != nil {
				exporter.Update(snap)
			}
			if ui.HeartbeatDue(lastExecs, snap.Execs) {
				reporter.ReportHeartbeat(snap)
			}
			lastExecs = snap.Execs
			if reporter.ShouldExit() {
				if exporter != nil {
					_ = exporter.Shutdown(context.Background())
				}
				return
			}
		}
	}
}
