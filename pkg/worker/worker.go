// Package worker implements the per-target feedback loop: input selection,
// typed mutation, VM invocation, coverage/crash classification, and
// detector dispatch, in both the stateless and stateful variants.
package worker

import (
	"time"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/mutator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// mutateOpsPerIteration is the fixed N in "mutate with N=4" applied before
// each execution.
const mutateOpsPerIteration = 4

// base holds the state every worker variant shares: its private coverage
// and crash sets, RNG, stats, runner, mutator, channel, and detectors.
type base struct {
	index     int
	runner    runner.Runner
	mutator   mutator.Mutator
	rng       *rng.Source
	stats     *stats.Stats
	channel   *events.Channel
	detectors []detector.Detector

	localCoverage *coverage.Set
	localCrashes  *coverage.CrashSet

	execsBeforeCovUpdate uint64
	execsSinceUpdate     uint64

	lastTick time.Time
}

// newBase builds a worker base seeded from the coordinator's initial
// coverage set snapshot.
func newBase(index int, r runner.Runner, m mutator.Mutator, src *rng.Source, st *stats.Stats, ch *events.Channel, detectors []detector.Detector, initialCoverage *coverage.Set, execsBeforeCovUpdate uint64) *base {
	return &base{
		index:                index,
		runner:               r,
		mutator:              m,
		rng:                  src,
		stats:                st,
		channel:              ch,
		detectors:            detectors,
		localCoverage:        initialCoverage.Clone(),
		localCrashes:         coverage.NewCrashSet(),
		execsBeforeCovUpdate: execsBeforeCovUpdate,
		lastTick:             time.Now(),
	}
}

// tickStats recomputes execs_per_sec and advances secs_since_last_cov once
// per elapsed wall-clock second.
func (b *base) tickStats() {
	if time.Since(b.lastTick) >= time.Second {
		b.stats.Tick()
		b.lastTick = time.Now()
	}
}

// execute runs one invocation against the given typed inputs, classifying
// the outcome: detector dispatch, coverage novelty tracking, and crash
// emission. targetModule/targetFunction label any NewCrash event raised.
func (b *base) execute(targetModule, targetFunction string, inputs []typedvalue.Value) {
	result := b.runner.Execute(inputs)
	b.stats.IncExecs()
	b.tickStats()

	var cov *coverage.Coverage
	var execErr *vmerror.Error
	if result.Ok() {
		cov = result.Coverage
	} else {
		cov = result.Coverage
		execErr = result.Err
	}

	if cov != nil {
		for _, d := range b.detectors {
			triggered, msg := d.Detect(*cov, execErr)
			if triggered {
				b.channel.SendToCoordinator(events.NewDetectorTriggeredEvent(d.Type(), msg))
			}
		}
	}

	if execErr == nil {
		if cov != nil && b.localCoverage.Insert(*cov) {
			b.stats.ClearSecsSinceLastCov()
			b.stats.SetCoverageSize(b.localCoverage.Len())
		}
		return
	}

	b.stats.IncCrashes()
	if cov == nil {
		return
	}
	if b.localCoverage.Insert(*cov) {
		b.stats.ClearSecsSinceLastCov()
		b.stats.SetCoverageSize(b.localCoverage.Len())
		crash := coverage.NewCrash(targetModule, targetFunction, inputs, *execErr)
		if b.localCrashes.Insert(crash) {
			b.channel.SendToCoordinator(events.NewCrashEvent(targetModule, targetFunction, inputs, *execErr))
		}
	}
}

// drainReplies is a non-blocking receive that merges a CoverageUpdateResponse
// delta or adopts a broadcast NewUniqueCrash.
func (b *base) drainReplies() {
	for {
		e, ok := b.channel.TryRecvFromCoordinator()
		if !ok {
			return
		}
		switch e.Kind {
		case events.CoverageUpdateResponse:
			for _, c := range e.Delta {
				b.localCoverage.Insert(c)
			}
			b.stats.SetCoverageSize(b.localCoverage.Len())
		case events.NewUniqueCrash:
			b.localCrashes.Insert(e.Crash)
		}
	}
}

// maybeRequestCoverageUpdate emits a reconciliation request every
// execsBeforeCovUpdate executions.
func (b *base) maybeRequestCoverageUpdate() {
	b.execsSinceUpdate++
	if b.execsBeforeCovUpdate == 0 || b.execsSinceUpdate < b.execsBeforeCovUpdate {
		return
	}
	b.execsSinceUpdate = 0
	b.channel.SendToCoordinator(events.NewCoverageUpdateRequest(b.localCoverage.Clone()))
}

// seedInputs derives the initial argument vector from the target's schema.
func seedInputs(schema []typedvalue.Value) []typedvalue.Value {
	out := make([]typedvalue.Value, len(schema))
	for i, s := range schema {
		out[i] = s.SchemaDefault()
	}
	return out
}

// pickSeedInputs picks a retained input vector uniformly at random if the
// local coverage set is non-empty; otherwise it keeps the current inputs.
func (b *base) pickSeedInputs(current []typedvalue.Value) []typedvalue.Value {
	all := b.localCoverage.All()
	if len(all) == 0 {
		return current
	}
	idx := b.rng.Intn(len(all))
	return all[idx].Inputs
}
