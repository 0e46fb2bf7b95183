package coordinator

import (
	"io"
	"testing"
	"time"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/logging"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/ui"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// fakeUI records every reported event instead of printing, for assertions.
type fakeUI struct {
	coverageUpdates int
	newCrashes      int
	dupCrashes      int
	detectorHits    int
}

func (f *fakeUI) ReportCoverageUpdate(delta, total int) { f.coverageUpdates++ }
func (f *fakeUI) ReportCrash(c coverage.Crash, isNew bool) {
	if isNew {
		f.newCrashes++
	} else {
		f.dupCrashes++
	}
}
func (f *fakeUI) ReportDetectorTriggered(tag detector.Tag, message string) { f.detectorHits++ }
func (f *fakeUI) ReportHeartbeat(s stats.Snapshot)                        {}
func (f *fakeUI) ShouldExit() bool                                        { return false }

func newTestCoordinator(t *testing.T, reporter ui.UI) *Coordinator {
	t.Helper()
	corpusDir := t.TempDir()
	crashesDir := t.TempDir()
	logger := logging.NewLogger(logging.LoggerConfig{Level: logging.LogLevelError, Output: io.Discard})
	c, err := New(corpusDir, crashesDir, reporter, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func trace(data ...coverage.PC) coverage.Coverage {
	return coverage.New(nil, data)
}

func TestSpawnDerivesDistinctSeedsAndClonesCoverage(t *testing.T) {
	c := newTestCoordinator(t, ui.NewLineUI(io.Discard))
	c.global.Insert(trace(1, 2, 3))

	var seeds []int64
	var cloneSizes []int
	c.Spawn(3, 42, func(index int, seed int64, ch *events.Channel, st *stats.Stats, initial *coverage.Set) {
		seeds = append(seeds, seed)
		cloneSizes = append(cloneSizes, initial.Len())
	})

	if len(seeds) != 3 {
		t.Fatalf("expected 3 spawned workers, got %d", len(seeds))
	}
	if seeds[0] == seeds[1] || seeds[1] == seeds[2] {
		t.Fatalf("expected distinct derived seeds, got %v", seeds)
	}
	for _, n := range cloneSizes {
		if n != 1 {
			t.Fatalf("expected each worker handed a clone containing the 1 existing trace, got %d", n)
		}
	}
}

func TestTickReconcilesCoverageBothDirections(t *testing.T) {
	c := newTestCoordinator(t, ui.NewLineUI(io.Discard))
	c.global.Insert(trace(1, 2))
	c.global.Insert(trace(4, 5))

	ch := events.NewChannel()
	c.channels = append(c.channels, ch)
	c.workerStats = append(c.workerStats, stats.New())

	local := coverage.NewSet()
	local.Insert(trace(1, 2))
	local.Insert(trace(9, 9, 9))
	ch.SendToCoordinator(events.NewCoverageUpdateRequest(local))

	c.Tick()

	if c.global.Len() != 3 {
		t.Fatalf("expected coordinator to adopt the novel trace, global len = %d", c.global.Len())
	}

	reply, ok := ch.TryRecvFromCoordinator()
	if !ok {
		t.Fatal("expected a CoverageUpdateResponse reply")
	}
	if reply.Kind != events.CoverageUpdateResponse {
		t.Fatalf("expected CoverageUpdateResponse, got %v", reply.Kind)
	}
	if len(reply.Delta) != 1 {
		t.Fatalf("expected exactly the trace missing from the worker in the reply, got %d entries", len(reply.Delta))
	}
}

func TestTickSuppressesDuplicateCrashAndStillNotifiesUI(t *testing.T) {
	f := &fakeUI{}
	c := newTestCoordinator(t, f)

	ch := events.NewChannel()
	c.channels = append(c.channels, ch)
	c.workerStats = append(c.workerStats, stats.New())

	err := vmerror.New(vmerror.Abort, "boom")
	v := typedvalue.NewUint(typedvalue.KindU64, 0xDEAD)

	ch.SendToCoordinator(events.NewCrashEvent("m", "f", []typedvalue.Value{v}, err))
	c.Tick()
	if f.newCrashes != 1 || f.dupCrashes != 0 {
		t.Fatalf("expected first crash reported as new, got new=%d dup=%d", f.newCrashes, f.dupCrashes)
	}

	ch.SendToCoordinator(events.NewCrashEvent("m", "f", []typedvalue.Value{v}, err))
	c.Tick()
	if f.dupCrashes != 1 {
		t.Fatalf("expected second identical crash reported as duplicate, got dup=%d", f.dupCrashes)
	}
	if c.GlobalUniqueCrashes() != 1 {
		t.Fatalf("expected exactly one unique crash retained, got %d", c.GlobalUniqueCrashes())
	}
}

func TestTickBroadcastsNewUniqueCrashToEveryWorker(t *testing.T) {
	c := newTestCoordinator(t, ui.NewLineUI(io.Discard))

	chA := events.NewChannel()
	chB := events.NewChannel()
	c.channels = append(c.channels, chA, chB)
	c.workerStats = append(c.workerStats, stats.New(), stats.New())

	v := typedvalue.NewUint(typedvalue.KindU64, 1)
	chA.SendToCoordinator(events.NewCrashEvent("m", "f", []typedvalue.Value{v}, vmerror.New(vmerror.Abort, "x")))

	c.Tick()

	for i, ch := range []*events.Channel{chA, chB} {
		e, ok := ch.TryRecvFromCoordinator()
		if !ok {
			t.Fatalf("worker %d: expected a broadcast NewUniqueCrash event", i)
		}
		if e.Kind != events.NewUniqueCrash {
			t.Fatalf("worker %d: expected NewUniqueCrash, got %v", i, e.Kind)
		}
	}
}

func TestGlobalStatsAggregatesWorkers(t *testing.T) {
	c := newTestCoordinator(t, ui.NewLineUI(io.Discard))
	c.Spawn(2, 1, func(index int, seed int64, ch *events.Channel, st *stats.Stats, initial *coverage.Set) {
		st.IncExecs()
		st.IncExecs()
	})
	// Let a tiny bit of wall-clock pass so TimeRunning is nonzero for Aggregate.
	time.Sleep(time.Millisecond)

	snap := c.GlobalStats()
	if snap.Execs != 4 {
		t.Fatalf("expected 4 total execs across 2 workers, got %d", snap.Execs)
	}
}
