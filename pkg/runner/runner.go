// Package runner defines the Runner external contract: invoking a target
// function on the embedded VM and reporting back coverage and/or a
// classified error. The concrete VM and module loader are out of scope —
// this package only specifies the contract and the fixed VM-status
// classification it rests on.
package runner

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// ExecResult is the outcome of one Runner.Execute call: on success Coverage
// is set and Err is nil; on failure Err is set and Coverage may still carry
// partial trace data gathered before the fault.
type ExecResult struct {
	Coverage *coverage.Coverage
	Err      *vmerror.Error
}

// Ok reports whether the execution succeeded.
func (r ExecResult) Ok() bool { return r.Err == nil }

// Runner is the external contract a concrete VM/module loader implements.
type Runner interface {
	// Execute runs the current target with the given arguments.
	Execute(inputs []typedvalue.Value) ExecResult

	// SetTargetFunction points subsequent Execute calls at f.
	SetTargetFunction(f typedvalue.Value)

	// GetTargetParameters returns the schema vector for the current
	// target: default/zero-valued variants declaring the expected shape.
	GetTargetParameters() []typedvalue.Value

	// GetTargetModule returns the module name hosting the current target.
	GetTargetModule() string

	// GetTargetFunction returns the current target as a Function
	// descriptor value.
	GetTargetFunction() typedvalue.Value

	// GetMaxCoverage returns an upper bound on reachable PCs, used only
	// as a progress denominator. Zero means unknown.
	GetMaxCoverage() uint64
}

// StatefulRunner extends Runner with the world-reset operation stateful
// fuzzing requires between call sequences.
type StatefulRunner interface {
	Runner

	// Setup republishes the module and re-runs fuzz_init, producing a
	// fresh world and object handles.
	Setup() error
}
