// Package fakevm is a reference Runner implementation used by tests and the
// bundled demo target. It does not execute real bytecode; it evaluates a
// small set of named target behaviors in Go, enough to exercise the
// coverage/crash/detector pipeline end to end.
package fakevm

import (
	"fmt"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// Behavior computes the outcome of invoking one function with its inputs,
// in terms of a PC trace plus an optional VM status/detail on failure.
type Behavior func(inputs []typedvalue.Value) (trace []coverage.PC, status vmerror.VMStatus, detail string)

// Target describes one callable entry point: its name, parameter schema,
// and behavior.
type Target struct {
	Name     string
	Params   []typedvalue.Value
	Behavior Behavior
}

// VM is a table-driven fake Runner. ModuleName identifies the module; the
// internal world counter is reset by Setup for stateful fuzzing.
type VM struct {
	ModuleName string
	Targets    map[string]Target

	current string
	world   int // a trivial piece of mutable world state, reset by Setup
}

// New builds a fake VM hosting the given module and targets.
func New(moduleName string, targets []Target) *VM {
	m := make(map[string]Target, len(targets))
	for _, t := range targets {
		m[t.Name] = t
	}
	return &VM{ModuleName: moduleName, Targets: m}
}

// SetTargetFunction implements runner.Runner.
func (v *VM) SetTargetFunction(f typedvalue.Value) {
	if f.Function() != nil {
		v.current = f.Function().Name
	}
}

// GetTargetParameters implements runner.Runner.
func (v *VM) GetTargetParameters() []typedvalue.Value {
	t, ok := v.Targets[v.current]
	if !ok {
		return nil
	}
	return t.Params
}

// GetTargetModule implements runner.Runner.
func (v *VM) GetTargetModule() string { return v.ModuleName }

// GetTargetFunction implements runner.Runner.
func (v *VM) GetTargetFunction() typedvalue.Value {
	t, ok := v.Targets[v.current]
	if !ok {
		return typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: v.current})
	}
	return typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: t.Name, Params: t.Params})
}

// GetMaxCoverage implements runner.Runner. The fake VM has no static
// reachability analysis, so it reports zero (unknown).
func (v *VM) GetMaxCoverage() uint64 { return 0 }

// Execute implements runner.Runner.
func (v *VM) Execute(inputs []typedvalue.Value) runner.ExecResult {
	t, ok := v.Targets[v.current]
	if !ok {
		e := vmerror.New(vmerror.Unknown, fmt.Sprintf("no such target %q", v.current))
		return runner.ExecResult{Err: &e}
	}
	trace, status, detail := t.Behavior(inputs)
	cov := coverage.New(inputs, trace)
	if status == "" {
		return runner.ExecResult{Coverage: &cov}
	}
	e := vmerror.Classify(status, t.Name, detail)
	return runner.ExecResult{Coverage: &cov, Err: &e}
}

// Setup implements runner.StatefulRunner: resets the fake world counter.
func (v *VM) Setup() error {
	v.world = 0
	return nil
}

// DeadbeefAssertTarget builds the scenario-A demo target: a single u64
// parameter, aborting whenever the input equals 0xDEAD.
func DeadbeefAssertTarget(name string) Target {
	return Target{
		Name:   name,
		Params: []typedvalue.Value{typedvalue.NewUint(typedvalue.KindU64, 0)},
		Behavior: func(inputs []typedvalue.Value) ([]coverage.PC, vmerror.VMStatus, string) {
			x := inputs[0].AsUint64()
			trace := []coverage.PC{1, 2}
			if x == 0xDEAD {
				return trace, vmerror.StatusAborted, "assertion failed: x != 0xDEAD"
			}
			trace = append(trace, coverage.PC(3+x%7))
			return trace, "", ""
		},
	}
}

// LoopOverByteTarget builds the scenario-B demo target: loops n + (x mod 8)
// times, where x is the input byte's value, producing a trace dominated by
// one repeated PC (exercising the hot-opcode detector).
func LoopOverByteTarget(name string, n int) Target {
	return Target{
		Name:   name,
		Params: []typedvalue.Value{typedvalue.NewUint(typedvalue.KindU8, 0)},
		Behavior: func(inputs []typedvalue.Value) ([]coverage.PC, vmerror.VMStatus, string) {
			x := int(inputs[0].AsUint64())
			trace := make([]coverage.PC, 0, n+1)
			trace = append(trace, 0)
			for i := 0; i < n+x%8; i++ {
				trace = append(trace, 1)
			}
			return trace, "", ""
		},
	}
}
