package worker

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/mutator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
)

// Stateless drives a single target function in isolation, steering input
// selection by the coverage it observes.
type Stateless struct {
	*base

	targetModule   string
	targetFunction string
}

// NewStateless builds a Stateless worker. The runner must already have its
// target function set.
func NewStateless(index int, r runner.Runner, m mutator.Mutator, src *rng.Source, st *stats.Stats, ch *events.Channel, detectors []detector.Detector, initialCoverage *coverage.Set, execsBeforeCovUpdate uint64) *Stateless {
	return &Stateless{
		base:           newBase(index, r, m, src, st, ch, detectors, initialCoverage, execsBeforeCovUpdate),
		targetModule:   r.GetTargetModule(),
		targetFunction: r.GetTargetFunction().Function().Name,
	}
}

// RunN executes exactly n iterations of the stateless loop. Run (the
// unbounded form used in production) is RunN with an unbounded count
// driven by a stop channel instead; tests use RunN directly for
// determinism.
func (w *Stateless) RunN(n int) {
	schema := w.runner.GetTargetParameters()
	inputs := seedInputs(schema)

	for i := 0; i < n; i++ {
		w.execute(w.targetModule, w.targetFunction, inputs)
		w.maybeRequestCoverageUpdate()
		w.drainReplies()

		if w.localCoverage.Len() > 0 {
			seed := w.pickSeedInputs(inputs)
			inputs = w.mutator.Mutate(seed, mutateOpsPerIteration)
		}
	}
}

// Run executes the stateless loop until stop is closed.
func (w *Stateless) Run(stop <-chan struct{}) {
	schema := w.runner.GetTargetParameters()
	inputs := seedInputs(schema)

	for {
		select {
		case <-stop:
			return
		default:
		}

		w.execute(w.targetModule, w.targetFunction, inputs)
		w.maybeRequestCoverageUpdate()
		w.drainReplies()

		if w.localCoverage.Len() > 0 {
			seed := w.pickSeedInputs(inputs)
			inputs = w.mutator.Mutate(seed, mutateOpsPerIteration)
		}
	}
}
