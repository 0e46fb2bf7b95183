// Package detector defines the Detector external contract: a pluggable
// post-execution analyzer over a (Coverage, Error?) pair, plus the built-in
// hot-opcode detector.
package detector

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// Tag identifies a detector implementation in config and CLI flags.
type Tag string

const (
	// All selects every registered detector.
	All Tag = "All"
	// BasicOpCodeDetector is the built-in hot-opcode detector.
	BasicOpCodeDetector Tag = "BasicOpCodeDetector"
)

// Detector is implemented by any post-execution analyzer.
type Detector interface {
	// Detect inspects a single execution's coverage and optional
	// classified error, reporting whether it triggered and an optional
	// human-readable explanation.
	Detect(cov coverage.Coverage, err *vmerror.Error) (triggered bool, message string)

	// Type returns this detector's tag.
	Type() Tag
}

// Resolve builds the Detector set named by tags, expanding All to the full
// registry. Unknown tags are ignored.
func Resolve(tags []Tag) []Detector {
	want := make(map[Tag]bool, len(tags))
	all := false
	for _, t := range tags {
		if t == All {
			all = true
		}
		want[t] = true
	}
	registry := []Detector{NewHotOpcodeDetector()}
	if all {
		return registry
	}
	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		if want[d.Type()] {
			out = append(out, d)
		}
	}
	return out
}
