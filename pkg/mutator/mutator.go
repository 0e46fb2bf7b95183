// Package mutator defines the Mutator external contract: producing a
// mutated copy of a typed argument vector, and drawing inclusive-range
// integers for callers (e.g. the stateful worker's call-sequence length).
package mutator

import "github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"

// Mutator is implemented by any strategy for perturbing typed argument
// vectors. Implementations must be deterministic given the RNG state they
// own.
type Mutator interface {
	// Mutate produces a mutated copy of inputs, applying up to n
	// byte-level operations per element.
	Mutate(inputs []typedvalue.Value, n uint) []typedvalue.Value

	// GenerateNumber draws an inclusive-range integer in [min, max].
	GenerateNumber(min, max uint64) uint64
}
