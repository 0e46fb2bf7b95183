package stats

import "testing"

func TestIncExecsAndSnapshot(t *testing.T) {
	s := New()
	s.IncExecs()
	s.IncExecs()
	snap := s.Snapshot()
	if snap.Execs != 2 {
		t.Fatalf("expected 2 execs, got %d", snap.Execs)
	}
}

func TestClearSecsSinceLastCov(t *testing.T) {
	s := New()
	s.Tick()
	s.Tick()
	if s.Snapshot().SecsSinceLastCov != 2 {
		t.Fatalf("expected 2 ticks accumulated, got %d", s.Snapshot().SecsSinceLastCov)
	}
	s.ClearSecsSinceLastCov()
	if s.Snapshot().SecsSinceLastCov != 0 {
		t.Fatal("expected reset to zero")
	}
}

func TestAggregateNoDivisionByZero(t *testing.T) {
	agg := Aggregate(nil)
	if agg.ExecsPerSec != 0 {
		t.Fatalf("expected zero execs_per_sec for empty snapshot set, got %f", agg.ExecsPerSec)
	}
}

func TestAggregateSumsCounters(t *testing.T) {
	a := Snapshot{Execs: 10, Crashes: 1, UniqueCrashes: 1, CoverageSize: 3}
	b := Snapshot{Execs: 20, Crashes: 2, UniqueCrashes: 0, CoverageSize: 4}
	agg := Aggregate([]Snapshot{a, b})
	if agg.Execs != 30 || agg.Crashes != 3 || agg.UniqueCrashes != 1 || agg.CoverageSize != 7 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
}
