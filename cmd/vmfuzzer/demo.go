package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/config"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner/fakevm"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner/sandbox"
)

// newDemoVM builds the bundled reference target: the deadbeef-assert and
// loop-over-byte scenarios plus one fuzz_-prefixed stateful helper, hosted
// under cfg.Contract.
func newDemoVM(cfg *config.Config) *fakevm.VM {
	prefix := cfg.FuzzFunctionsPrefix
	if prefix == "" {
		prefix = "fuzz_"
	}
	return fakevm.New(cfg.Contract, []fakevm.Target{
		fakevm.DeadbeefAssertTarget("deadbeef_assert"),
		fakevm.LoopOverByteTarget("loop_over_byte", 200),
		fakevm.LoopOverByteTarget(prefix+"touch_world", 1),
	})
}

// buildRunner constructs the Runner a run/replay invocation will drive:
// either the in-process demo VM, or a sandboxed container when
// cfg.Sandbox.Enabled (the latter supports only stateless mode, since it
// has no Setup hook).
func buildRunner(cfg *config.Config) (runner.Runner, func(), error) {
	if !cfg.Sandbox.Enabled {
		return newDemoVM(cfg), func() {}, nil
	}

	ctx := context.Background()
	r, err := sandbox.New(ctx, sandbox.Config{
		Image:      cfg.Sandbox.Image,
		Entrypoint: []string{"/vm-entrypoint"},
		Module:     cfg.Contract,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sandbox: %w", err)
	}
	return r, func() { _ = r.Close(ctx) }, nil
}

// fuzzHelperNames returns the names of targets on vm matching prefix,
// excluding fuzz_init (which is invoked only through Setup, never listed as
// a callable sequence member).
func fuzzHelperNames(vm *fakevm.VM, prefix string) []string {
	var out []string
	for name := range vm.Targets {
		if name == "fuzz_init" {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}
