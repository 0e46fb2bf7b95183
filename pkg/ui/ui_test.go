package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

func TestLineUIReportsNewVsDuplicateCrash(t *testing.T) {
	var buf bytes.Buffer
	l := NewLineUI(&buf)
	c := coverage.NewCrash("m", "f", nil, vmerror.New(vmerror.Abort, "boom"))

	l.ReportCrash(c, true)
	if !strings.Contains(buf.String(), "new:") {
		t.Fatalf("expected 'new:' marker, got %q", buf.String())
	}
	buf.Reset()
	l.ReportCrash(c, false)
	if !strings.Contains(buf.String(), "already exists, skipping") {
		t.Fatalf("expected duplicate marker, got %q", buf.String())
	}
}

func TestHeartbeatDueOnBoundaryCrossing(t *testing.T) {
	if !HeartbeatDue(99_999, 100_000) {
		t.Fatal("expected heartbeat due when crossing 100,000")
	}
	if HeartbeatDue(100_001, 100_002) {
		t.Fatal("expected no heartbeat mid-interval")
	}
}

func TestLineUIHeartbeatFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLineUI(&buf)
	l.ReportHeartbeat(stats.Snapshot{Execs: 100000, UniqueCrashes: 2, CoverageSize: 50})
	out := buf.String()
	for _, want := range []string{"execs=100000", "unique_crashes=2", "coverage_size=50"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected heartbeat line to contain %q, got %q", want, out)
		}
	}
}

func TestLineUIDetectorLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewLineUI(&buf)
	l.ReportDetectorTriggered(detector.BasicOpCodeDetector, "looks like a loop")
	if !strings.Contains(buf.String(), "looks like a loop") {
		t.Fatal("expected detector message in output")
	}
}
