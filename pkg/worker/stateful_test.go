package worker

import (
	"testing"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/events"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/mutator"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner/fakevm"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

func fn(name string) typedvalue.Value {
	return typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: name})
}

func TestBuildSequenceExcludesFuzzInitAndHonorsBound(t *testing.T) {
	vm := fakevm.New("demo", []fakevm.Target{
		fakevm.LoopOverByteTarget("transfer", 1),
		fakevm.LoopOverByteTarget("mint", 1),
		fakevm.LoopOverByteTarget("fuzz_check", 1),
	})
	src := rng.New(3, 0)
	m := mutator.NewDefaultMutator(src)
	st := stats.New()
	ch := events.NewChannel()

	w := NewStateful(0, vm, m, src, st, ch, nil, coverage.NewSet(), 1000,
		[]typedvalue.Value{fn("transfer"), fn("mint")},
		[]typedvalue.Value{fn("fuzz_check")},
		5)

	seq := w.buildSequence()
	base := 3 // transfer, mint, fuzz_check
	maxExtra := 5
	if len(seq) < base+1 || len(seq) > base+maxExtra {
		t.Fatalf("expected sequence length in [%d, %d], got %d", base+1, base+maxExtra, len(seq))
	}
	for _, f := range seq {
		if f.Function().Name == "fuzz_init" {
			t.Fatal("fuzz_init must never appear in the call sequence itself")
		}
	}
}

func TestStatefulRunSequencesCallsSetupAroundEachSequence(t *testing.T) {
	vm := fakevm.New("demo", []fakevm.Target{fakevm.LoopOverByteTarget("transfer", 1)})
	src := rng.New(3, 0)
	m := mutator.NewDefaultMutator(src)
	st := stats.New()
	ch := events.NewChannel()

	w := NewStateful(0, vm, m, src, st, ch, nil, coverage.NewSet(), 1000,
		[]typedvalue.Value{fn("transfer")}, nil, 2)

	vm.Setup() // sanity: Setup is callable and resets world
	if err := w.RunSequences(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// three sequences run + the leading setup => four Setup calls total,
	// which RunSequences performs internally; nothing to assert on the
	// fake VM beyond "it did not error", since fakevm.Setup is a no-op
	// besides resetting an internal counter.
}
