// Package events defines the WorkerEvent variants exchanged between a
// worker and the coordinator, and the bidirectional, non-blocking channel
// pair that carries them.
package events

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/detector"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// Kind tags a WorkerEvent variant.
type Kind uint8

const (
	CoverageUpdateRequest Kind = iota
	CoverageUpdateResponse
	NewCrash
	NewUniqueCrash
	DetectorTriggered
)

// Event is the envelope for every message crossing a worker/coordinator
// channel. Only the field(s) relevant to Kind are populated.
type Event struct {
	Kind Kind

	// CoverageUpdateRequest: the worker's full local set, sent so the
	// coordinator can diff it against the global set.
	LocalSet *coverage.Set

	// CoverageUpdateResponse: the coordinator's to_send delta.
	Delta []coverage.Coverage

	// NewCrash: raised by a worker.
	TargetModule   string
	TargetFunction string
	Inputs         []typedvalue.Value
	Error          vmerror.Error

	// NewUniqueCrash: broadcast by the coordinator.
	Crash coverage.Crash

	// DetectorTriggered.
	Tag     detector.Tag
	Message string
}

// NewCoverageUpdateRequest builds the worker->coordinator reconciliation
// request.
func NewCoverageUpdateRequest(local *coverage.Set) Event {
	return Event{Kind: CoverageUpdateRequest, LocalSet: local}
}

// NewCoverageUpdateResponse builds the coordinator->worker reconciliation
// reply.
func NewCoverageUpdateResponse(delta []coverage.Coverage) Event {
	return Event{Kind: CoverageUpdateResponse, Delta: delta}
}

// NewCrashEvent builds a worker->coordinator crash report.
func NewCrashEvent(targetModule, targetFunction string, inputs []typedvalue.Value, err vmerror.Error) Event {
	return Event{
		Kind:           NewCrash,
		TargetModule:   targetModule,
		TargetFunction: targetFunction,
		Inputs:         inputs,
		Error:          err,
	}
}

// NewUniqueCrashEvent builds the coordinator->worker broadcast of a
// newly-unique crash.
func NewUniqueCrashEvent(c coverage.Crash) Event {
	return Event{Kind: NewUniqueCrash, Crash: c}
}

// NewDetectorTriggeredEvent builds a worker->coordinator detector hit.
func NewDetectorTriggeredEvent(tag detector.Tag, message string) Event {
	return Event{Kind: DetectorTriggered, Tag: tag, Message: message}
}

// channelBuffer is the capacity of each direction of a Channel. Messages are
// never dropped; a send blocks only while this many events are pending
// unread in that direction.
const channelBuffer = 4096

// Channel is the bidirectional pair linking one worker to the coordinator.
type Channel struct {
	ToCoordinator chan Event
	ToWorker      chan Event
}

// NewChannel builds a buffered Channel pair.
func NewChannel() *Channel {
	return &Channel{
		ToCoordinator: make(chan Event, channelBuffer),
		ToWorker:      make(chan Event, channelBuffer),
	}
}

// SendToCoordinator is a fire-and-forget send from the worker side.
func (c *Channel) SendToCoordinator(e Event) {
	c.ToCoordinator <- e
}

// SendToWorker is a fire-and-forget send from the coordinator side.
func (c *Channel) SendToWorker(e Event) {
	c.ToWorker <- e
}

// TryRecvFromWorker performs a non-blocking receive on the coordinator
// side.
func (c *Channel) TryRecvFromWorker() (Event, bool) {
	select {
	case e := <-c.ToCoordinator:
		return e, true
	default:
		return Event{}, false
	}
}

// TryRecvFromCoordinator performs a non-blocking receive on the worker
// side.
func (c *Channel) TryRecvFromCoordinator() (Event, bool) {
	select {
	case e := <-c.ToWorker:
		return e, true
	default:
		return Event{}, false
	}
}
