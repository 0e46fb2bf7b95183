package fakevm

import (
	"testing"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

func TestDeadbeefAssertAbortsOnMatch(t *testing.T) {
	target := DeadbeefAssertTarget("check")
	vm := New("demo", []Target{target})
	vm.SetTargetFunction(typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: "check"}))

	res := vm.Execute([]typedvalue.Value{typedvalue.NewUint(typedvalue.KindU64, 0xDEAD)})
	if res.Ok() {
		t.Fatal("expected abort on 0xDEAD")
	}
	if res.Err.Kind != vmerror.Abort {
		t.Fatalf("expected Abort, got %s", res.Err.Kind)
	}
}

func TestDeadbeefAssertSucceedsOtherwise(t *testing.T) {
	target := DeadbeefAssertTarget("check")
	vm := New("demo", []Target{target})
	vm.SetTargetFunction(typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: "check"}))

	res := vm.Execute([]typedvalue.Value{typedvalue.NewUint(typedvalue.KindU64, 7)})
	if !res.Ok() {
		t.Fatalf("expected success, got error %v", res.Err)
	}
	if res.Coverage == nil || len(res.Coverage.Data) == 0 {
		t.Fatal("expected non-empty coverage")
	}
}

func TestLoopOverByteProducesDominantPC(t *testing.T) {
	target := LoopOverByteTarget("spin", 100)
	vm := New("demo", []Target{target})
	vm.SetTargetFunction(typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: "spin"}))

	res := vm.Execute([]typedvalue.Value{typedvalue.NewUint(typedvalue.KindU8, 3)})
	if !res.Ok() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	freq := res.Coverage.FrequencyTable()
	if freq[0].Count < 100 {
		t.Fatalf("expected dominant PC with >=100 occurrences, got %d", freq[0].Count)
	}
}

func TestSetupResetsWorld(t *testing.T) {
	vm := New("demo", nil)
	vm.world = 42
	if err := vm.Setup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.world != 0 {
		t.Fatal("expected world reset to zero")
	}
}
