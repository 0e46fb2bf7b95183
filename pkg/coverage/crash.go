package coverage

import (
	"fmt"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// Crash records a distinct failure: the module/function that raised it, the
// inputs that triggered it, and the classified error. Hash and equality are
// over (error, target_function) only — different inputs (or different
// modules) reaching the same abort site in the same function fingerprint
// identically.
type Crash struct {
	TargetModule   string
	TargetFunction string
	Inputs         []typedvalue.Value
	Error          vmerror.Error
}

// NewCrash builds a Crash record.
func NewCrash(targetModule, targetFunction string, inputs []typedvalue.Value, err vmerror.Error) Crash {
	return Crash{
		TargetModule:   targetModule,
		TargetFunction: targetFunction,
		Inputs:         append([]typedvalue.Value(nil), inputs...),
		Error:          err,
	}
}

// Fingerprint returns the dedup key: (target_function, error.Kind,
// error.Message).
func (c Crash) Fingerprint() string {
	return fmt.Sprintf("%s\x00%d\x00%s", c.TargetFunction, c.Error.Kind, c.Error.Message)
}

// Equal reports fingerprint equality.
func (c Crash) Equal(o Crash) bool {
	return c.Fingerprint() == o.Fingerprint()
}

// CrashSet is a deduplicating collection of Crash records keyed by
// fingerprint.
type CrashSet struct {
	byKey map[string]Crash
}

// NewCrashSet builds an empty CrashSet.
func NewCrashSet() *CrashSet {
	return &CrashSet{byKey: make(map[string]Crash)}
}

// Len returns the number of distinct crash fingerprints retained.
func (s *CrashSet) Len() int { return len(s.byKey) }

// Contains reports whether an equivalent crash is already retained.
func (s *CrashSet) Contains(c Crash) bool {
	_, ok := s.byKey[c.Fingerprint()]
	return ok
}

// Insert adds c if its fingerprint is novel. Reports whether it was novel.
func (s *CrashSet) Insert(c Crash) bool {
	key := c.Fingerprint()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = c
	return true
}

// All returns every retained Crash record, in no particular order.
func (s *CrashSet) All() []Crash {
	out := make([]Crash, 0, len(s.byKey))
	for _, c := range s.byKey {
		out = append(out, c)
	}
	return out
}
