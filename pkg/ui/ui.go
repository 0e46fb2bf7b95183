// Package ui defines the UI abstraction the coordinator reports events
// through, plus a line-printing fallback used whenever a full terminal
// dashboard is not requested.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
)

// heartbeatInterval is the periodic summary cadence: every 100,000
// executions.
const heartbeatInterval = 100_000

// UI is implemented by any fuzzer front end. The real terminal dashboard
// (reading `q` to request shutdown) is out of scope; only this contract and
// the LineUI fallback are implemented here.
type UI interface {
	ReportCoverageUpdate(delta int, totalSize int)
	ReportCrash(c coverage.Crash, isNew bool)
	ReportDetectorTriggered(tag detector.Tag, message string)
	ReportHeartbeat(snapshot stats.Snapshot)
	// ShouldExit reports whether the user requested a clean shutdown.
	// The LineUI fallback never requests shutdown from input; it always
	// returns false.
	ShouldExit() bool
}

// LineUI prints one line per event plus the periodic heartbeat, the
// fallback used whenever use_ui=false.
type LineUI struct {
	out io.Writer
}

// NewLineUI builds a LineUI writing to out.
func NewLineUI(out io.Writer) *LineUI {
	return &LineUI{out: out}
}

// ReportCoverageUpdate implements UI.
func (l *LineUI) ReportCoverageUpdate(delta int, totalSize int) {
	fmt.Fprintf(l.out, "[COVERAGE] +%d new traces (total %d)\n", delta, totalSize)
}

// ReportCrash implements UI.
func (l *LineUI) ReportCrash(c coverage.Crash, isNew bool) {
	if isNew {
		fmt.Fprintf(l.out, "[CRASH] new: %s::%s — %s\n", c.TargetModule, c.TargetFunction, c.Error)
		return
	}
	fmt.Fprintf(l.out, "[CRASH] already exists, skipping: %s::%s — %s\n", c.TargetModule, c.TargetFunction, c.Error)
}

// ReportDetectorTriggered implements UI.
func (l *LineUI) ReportDetectorTriggered(tag detector.Tag, message string) {
	fmt.Fprintf(l.out, "[DETECTOR] %s: %s\n", tag, message)
}

// ReportHeartbeat implements UI.
func (l *LineUI) ReportHeartbeat(s stats.Snapshot) {
	fmt.Fprintf(l.out, "[HEARTBEAT] time=%s execs=%d execs/s=%.1f unique_crashes=%d coverage_size=%d\n",
		s.TimeRunning.Round(time.Second), s.Execs, s.ExecsPerSec, s.UniqueCrashes, s.CoverageSize)
}

// ShouldExit implements UI.
func (l *LineUI) ShouldExit() bool { return false }

// HeartbeatDue reports whether execs has just crossed a heartbeat boundary,
// guarding against re-triggering on every subsequent execution.
func HeartbeatDue(execsBefore, execsAfter uint64) bool {
	return execsBefore/heartbeatInterval != execsAfter/heartbeatInterval
}
