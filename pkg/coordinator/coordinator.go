// Package coordinator implements the shared-corpus/crash bookkeeping that
// sits above the workers: thread lifecycle, coverage/crash merging and
// broadcast, and persistence.
package coordinator

import (
	"time"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/logging"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/persistence"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/ui"
)

// SpawnFunc starts one worker's thread of execution. It is handed its
// index, derived seed, event channel, stats handle, and a clone of the
// coordinator's coverage set at spawn time; it must not block.
type SpawnFunc func(index int, seed int64, ch *events.Channel, st *stats.Stats, initialCoverage *coverage.Set)

// Coordinator owns the global coverage/crash sets, drives reconciliation
// with every worker, and persists novel entries.
type Coordinator struct {
	channels    []*events.Channel
	workerStats []*stats.Stats

	global        *coverage.Set
	globalCrashes *coverage.CrashSet

	corpus  *persistence.CorpusStore
	crashes *persistence.CrashStore
	ui      ui.UI
	logger  *logging.Logger

	now func() time.Time
}

// New builds a Coordinator, loading any persisted corpus/crash entries as
// the initial global sets. logger is used to report persistence failures
// that must not interrupt the fuzzing loop.
func New(corpusDir, crashesDir string, reporter ui.UI, logger *logging.Logger) (*Coordinator, error) {
	corpus := persistence.NewCorpusStore(corpusDir)
	crashes := persistence.NewCrashStore(crashesDir)

	global, err := corpus.LoadAll()
	if err != nil {
		return nil, err
	}
	globalCrashes, err := crashes.LoadAll()
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		global:        global,
		globalCrashes: globalCrashes,
		corpus:        corpus,
		crashes:       crashes,
		ui:            reporter,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Spawn starts nbThreads workers via spawn, each seeded deterministically
// from baseSeed and handed a clone of the coordinator's coverage set at
// this moment: a snapshot of the loaded coverage set, not a shared reference.
func (c *Coordinator) Spawn(nbThreads int, baseSeed int64, spawn SpawnFunc) {
	for i := 0; i < nbThreads; i++ {
		ch := events.NewChannel()
		st := stats.New()
		seed := rng.DeriveSeed(baseSeed, i)

		c.channels = append(c.channels, ch)
		c.workerStats = append(c.workerStats, st)

		spawn(i, seed, ch, st, c.global.Clone())
	}
}

// GlobalStats aggregates every worker's Stats snapshot. UniqueCrashes and
// CoverageSize are taken from the coordinator's own global sets rather than
// summed over the workers.
func (c *Coordinator) GlobalStats() stats.Snapshot {
	snaps := make([]stats.Snapshot, len(c.workerStats))
	for i, st := range c.workerStats {
		snaps[i] = st.Snapshot()
	}
	agg := stats.Aggregate(snaps)
	agg.UniqueCrashes = uint64(c.globalCrashes.Len())
	agg.CoverageSize = c.global.Len()
	return agg
}

// Tick drains every worker channel exactly once and broadcasts
// NewUniqueCrash to every worker if a new crash was observed this tick. It
// is the coordinator's single unit of forward progress and is meant to be
// called in a loop by the caller (e.g. cmd/vmfuzzer's run loop), which also
// owns the UI's own cadence (heartbeats, exit polling).
func (c *Coordinator) Tick() {
	var broadcastCrash *coverage.Crash

	for _, ch := range c.channels {
		for {
			e, ok := ch.TryRecvFromWorker()
			if !ok {
				break
			}
			switch e.Kind {
			case events.CoverageUpdateRequest:
				c.handleCoverageUpdateRequest(ch, e)
			case events.NewCrash:
				if nc := c.handleNewCrash(e); nc != nil {
					broadcastCrash = nc
				}
			case events.DetectorTriggered:
				c.ui.ReportDetectorTriggered(e.Tag, e.Message)
			}
		}
	}

	if broadcastCrash != nil {
		for _, ch := range c.channels {
			ch.SendToWorker(events.NewUniqueCrashEvent(*broadcastCrash))
		}
	}
}

func (c *Coordinator) handleCoverageUpdateRequest(ch *events.Channel, e events.Event) {
	remote := e.LocalSet
	if remote == nil {
		remote = coverage.NewSet()
	}

	toSend := c.global.Diff(remote)
	if len(toSend) > 0 {
		ch.SendToWorker(events.NewCoverageUpdateResponse(toSend))
	}

	toAdopt := remote.Diff(c.global)
	for _, entry := range toAdopt {
		if !c.global.Insert(entry) {
			continue
		}
		if _, err := c.corpus.Save(entry, c.now()); err != nil {
			// the in-memory set remains authoritative on a write failure.
			c.logger.Error("failed to persist corpus entry", "error", err.Error())
		}
		c.ui.ReportCoverageUpdate(1, c.global.Len())
	}
}

func (c *Coordinator) handleNewCrash(e events.Event) *coverage.Crash {
	crash := coverage.NewCrash(e.TargetModule, e.TargetFunction, e.Inputs, e.Error)

	if c.globalCrashes.Contains(crash) {
		c.ui.ReportCrash(crash, false)
		return nil
	}

	c.globalCrashes.Insert(crash)
	if _, err := c.crashes.Save(crash, c.now()); err != nil {
		c.logger.Error("failed to persist crash entry", "error", err.Error())
	}
	c.ui.ReportCrash(crash, true)
	return &crash
}

// GlobalCoverageLen returns the size of the global coverage set, for tests
// and progress reporting.
func (c *Coordinator) GlobalCoverageLen() int { return c.global.Len() }

// GlobalUniqueCrashes returns the size of the global unique-crash set.
func (c *Coordinator) GlobalUniqueCrashes() int { return c.globalCrashes.Len() }
