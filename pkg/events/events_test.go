package events

import (
	"testing"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

func TestNonBlockingReceiveOnEmptyChannel(t *testing.T) {
	ch := NewChannel()
	if _, ok := ch.TryRecvFromWorker(); ok {
		t.Fatal("expected no event on empty channel")
	}
}

func TestFireAndForgetSendIsObservable(t *testing.T) {
	ch := NewChannel()
	ch.SendToCoordinator(NewCrashEvent("m", "f", nil, vmerror.New(vmerror.Abort, "boom")))
	e, ok := ch.TryRecvFromWorker()
	if !ok {
		t.Fatal("expected to observe the sent event")
	}
	if e.Kind != NewCrash || e.TargetFunction != "f" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestBroadcastRoundTrip(t *testing.T) {
	ch := NewChannel()
	ch.SendToWorker(NewCoverageUpdateResponse(nil))
	e, ok := ch.TryRecvFromCoordinator()
	if !ok || e.Kind != CoverageUpdateResponse {
		t.Fatal("expected to receive the coverage update response")
	}
}
