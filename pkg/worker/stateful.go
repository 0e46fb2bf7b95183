package worker

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/mutator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

// Stateful drives randomized sequences of calls over a shared on-chain
// world reconstructed between sequences. fuzz_init is never part of the
// call sequence itself: it runs exclusively as a side effect of
// Runner.Setup, once before the first sequence and once after every
// subsequent sequence.
type Stateful struct {
	*base

	runnerStateful runner.StatefulRunner
	targetModule   string

	targets             []typedvalue.Value // user-named functions to stress
	fuzzHelpers         []typedvalue.Value // fuzz_* helpers, excluding fuzz_init
	maxCallSequenceSize int
}

// NewStateful builds a Stateful worker.
func NewStateful(index int, r runner.StatefulRunner, m mutator.Mutator, src *rng.Source, st *stats.Stats, ch *events.Channel, detectors []detector.Detector, initialCoverage *coverage.Set, execsBeforeCovUpdate uint64, targets, fuzzHelpers []typedvalue.Value, maxCallSequenceSize int) *Stateful {
	return &Stateful{
		base:                newBase(index, r, m, src, st, ch, detectors, initialCoverage, execsBeforeCovUpdate),
		runnerStateful:      r,
		targetModule:        r.GetTargetModule(),
		targets:             targets,
		fuzzHelpers:         fuzzHelpers,
		maxCallSequenceSize: maxCallSequenceSize,
	}
}

// buildSequence assembles the full set of target functions concatenated
// with the fuzz_* helpers, extended with k duplicated entries, then
// shuffled.
func (w *Stateful) buildSequence() []typedvalue.Value {
	base := make([]typedvalue.Value, 0, len(w.targets)+len(w.fuzzHelpers))
	base = append(base, w.targets...)
	base = append(base, w.fuzzHelpers...)
	if len(base) == 0 {
		return nil
	}

	k := 1
	if w.maxCallSequenceSize > 1 {
		k = 1 + w.rng.Intn(w.maxCallSequenceSize)
	}

	seq := append([]typedvalue.Value(nil), base...)
	for i := 0; i < k; i++ {
		seq = append(seq, base[w.rng.Intn(len(base))])
	}

	w.shuffle(seq)
	return seq
}

// shuffle performs an in-place Fisher-Yates shuffle using the worker's own
// RNG, so sequence order is reproducible given the same seed.
func (w *Stateful) shuffle(seq []typedvalue.Value) {
	for i := len(seq) - 1; i > 0; i-- {
		j := w.rng.Intn(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
}

// RunSequences executes n call sequences, calling Setup before the first
// and after every sequence.
func (w *Stateful) RunSequences(n int) error {
	if err := w.runnerStateful.Setup(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		w.runSequence()
		if err := w.runnerStateful.Setup(); err != nil {
			return err
		}
	}
	return nil
}

// Run executes call sequences until stop is closed.
func (w *Stateful) Run(stop <-chan struct{}) error {
	if err := w.runnerStateful.Setup(); err != nil {
		return err
	}
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		w.runSequence()
		if err := w.runnerStateful.Setup(); err != nil {
			return err
		}
	}
}

// runSequence executes one call sequence end to end.
func (w *Stateful) runSequence() {
	seq := w.buildSequence()
	for _, f := range seq {
		w.runner.SetTargetFunction(f)
		fnName := ""
		if desc := f.Function(); desc != nil {
			fnName = desc.Name
		}

		schema := w.runner.GetTargetParameters()
		inputs := seedInputs(schema)
		inputs = w.mutator.Mutate(inputs, mutateOpsPerIteration)

		w.execute(w.targetModule, fnName, inputs)
		w.maybeRequestCoverageUpdate()
		w.drainReplies()
	}
}
