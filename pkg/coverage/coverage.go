// Package coverage implements the Coverage and Crash records produced by a
// Runner execution, along with the deduplicating sets the worker and
// coordinator maintain over them.
package coverage

import (
	"sort"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

// PC is an unsigned trace token, e.g. a bytecode offset.
type PC uint64

// Coverage pairs the inputs that produced a trace with the trace itself.
// Equality and hashing are over the trace (Data) only: identical trace
// classes collapse regardless of which concrete input produced them.
type Coverage struct {
	Inputs []typedvalue.Value
	Data   []PC
}

// New builds a Coverage record.
func New(inputs []typedvalue.Value, data []PC) Coverage {
	return Coverage{Inputs: append([]typedvalue.Value(nil), inputs...), Data: append([]PC(nil), data...)}
}

// Key returns the dedup key: a string encoding of the trace, suitable as a
// map key. Two Coverage records with the same Data produce the same Key
// regardless of Inputs.
func (c Coverage) Key() string {
	buf := make([]byte, 0, len(c.Data)*9)
	for _, pc := range c.Data {
		buf = append(buf, byte(pc), byte(pc>>8), byte(pc>>16), byte(pc>>24),
			byte(pc>>32), byte(pc>>40), byte(pc>>48), byte(pc>>56), '|')
	}
	return string(buf)
}

// Equal reports trace equality, ignoring Inputs.
func (c Coverage) Equal(o Coverage) bool {
	if len(c.Data) != len(o.Data) {
		return false
	}
	for i := range c.Data {
		if c.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// Size returns the number of distinct PCs touched by this trace.
func (c Coverage) Size() int {
	seen := make(map[PC]struct{}, len(c.Data))
	for _, pc := range c.Data {
		seen[pc] = struct{}{}
	}
	return len(seen)
}

// FrequencyTable returns the distinct PCs touched by this trace sorted by
// descending occurrence count, the input the hot-opcode detector sorts over.
func (c Coverage) FrequencyTable() []PCFrequency {
	counts := make(map[PC]int, len(c.Data))
	for _, pc := range c.Data {
		counts[pc]++
	}
	out := make([]PCFrequency, 0, len(counts))
	for pc, n := range counts {
		out = append(out, PCFrequency{PC: pc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].PC < out[j].PC
	})
	return out
}

// PCFrequency is one entry of a Coverage's frequency table.
type PCFrequency struct {
	PC    PC
	Count int
}

// Set is a deduplicating collection of Coverage records keyed by trace
// equality. The zero value is not usable; use NewSet.
type Set struct {
	byKey map[string]Coverage
}

// NewSet builds an empty coverage Set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]Coverage)}
}

// Len returns the number of distinct traces retained.
func (s *Set) Len() int { return len(s.byKey) }

// Contains reports whether an equivalent trace is already retained.
func (s *Set) Contains(c Coverage) bool {
	_, ok := s.byKey[c.Key()]
	return ok
}

// Insert adds c if its trace is novel, retaining the first-observed
// inputs for that trace class. Reports whether it was novel.
func (s *Set) Insert(c Coverage) bool {
	key := c.Key()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = c
	return true
}

// All returns every retained Coverage record, in no particular order.
func (s *Set) All() []Coverage {
	out := make([]Coverage, 0, len(s.byKey))
	for _, c := range s.byKey {
		out = append(out, c)
	}
	return out
}

// Diff returns the records in s whose key is absent from other — the
// reconciliation protocol's set-subtraction step.
func (s *Set) Diff(other *Set) []Coverage {
	out := make([]Coverage, 0)
	for key, c := range s.byKey {
		if _, ok := other.byKey[key]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep-enough copy (new map, shared Coverage values — these
// are treated as immutable once inserted).
func (s *Set) Clone() *Set {
	out := NewSet()
	for k, v := range s.byKey {
		out.byKey[k] = v
	}
	return out
}
