package mutator

import (
	"github.com/FuzzingLabs/sui-fuzzer/pkg/rng"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

// DefaultMutator applies byte-level mutations biased toward the 0x00 and
// 0xFF boundary byte values.
type DefaultMutator struct {
	rng *rng.Source
}

// NewDefaultMutator builds a DefaultMutator drawing from src.
func NewDefaultMutator(src *rng.Source) *DefaultMutator {
	return &DefaultMutator{rng: src}
}

// GenerateNumber draws an inclusive-range integer in [min, max].
func (m *DefaultMutator) GenerateNumber(min, max uint64) uint64 {
	return m.rng.GenerateNumber(min, max)
}

// Mutate implements Mutator.
func (m *DefaultMutator) Mutate(inputs []typedvalue.Value, n uint) []typedvalue.Value {
	out := make([]typedvalue.Value, len(inputs))
	for i, v := range inputs {
		out[i] = m.mutateValue(v, n)
	}
	return out
}

func (m *DefaultMutator) mutateValue(v typedvalue.Value, n uint) typedvalue.Value {
	switch v.Kind() {
	case typedvalue.KindU8, typedvalue.KindU16, typedvalue.KindU32, typedvalue.KindU64, typedvalue.KindU128:
		buf := v.Bytes()
		m.mutateBytes(buf, n)
		return typedvalue.FromBytes(v.Kind(), buf)
	case typedvalue.KindBool:
		b := v.AsBool()
		for i := uint(0); i < n; i++ {
			if m.randomByte() != 0 {
				b = !b
			}
		}
		return typedvalue.NewBool(b)
	case typedvalue.KindVector:
		elems := v.Elements()
		if isIntegerKind(v.ElementKind()) && len(elems) > 0 {
			return m.mutateIntegerVector(v, n)
		}
		mutated := make([]typedvalue.Value, len(elems))
		for i, e := range elems {
			mutated[i] = m.mutateValue(e, n)
		}
		return typedvalue.NewVector(v.ElementKind(), mutated)
	case typedvalue.KindStruct:
		fields := v.Elements()
		mutated := make([]typedvalue.Value, len(fields))
		for i, f := range fields {
			mutated[i] = m.mutateValue(f, n)
		}
		return typedvalue.NewStruct(mutated)
	case typedvalue.KindRef, typedvalue.KindFunction:
		return v
	default:
		return v
	}
}

func isIntegerKind(k typedvalue.Kind) bool {
	switch k {
	case typedvalue.KindU8, typedvalue.KindU16, typedvalue.KindU32, typedvalue.KindU64, typedvalue.KindU128:
		return true
	default:
		return false
	}
}

// mutateIntegerVector flattens the element byte encodings into one buffer,
// mutates across the whole buffer, then re-encodes element-wise at the same
// per-element width.
func (m *DefaultMutator) mutateIntegerVector(v typedvalue.Value, n uint) typedvalue.Value {
	elems := v.Elements()
	width := len(elems[0].Bytes())
	buf := make([]byte, 0, width*len(elems))
	for _, e := range elems {
		buf = append(buf, e.Bytes()...)
	}
	m.mutateBytes(buf, n)
	out := make([]typedvalue.Value, len(elems))
	for i := range elems {
		out[i] = typedvalue.FromBytes(v.ElementKind(), buf[i*width:(i+1)*width])
	}
	return typedvalue.NewVector(v.ElementKind(), out)
}

// mutateBytes applies up to n in-place byte mutations to buf, biasing a
// fraction of them toward the 0x00/0xFF boundary values.
func (m *DefaultMutator) mutateBytes(buf []byte, n uint) {
	if len(buf) == 0 {
		return
	}
	for i := uint(0); i < n; i++ {
		idx := m.rng.Intn(len(buf))
		buf[idx] = m.sampleBoundaryBiasedByte()
	}
}

// sampleBoundaryBiasedByte draws a byte: with probability 1/4 one of the
// 0x00/0xFF extremes (each equally likely), otherwise a uniform random byte.
func (m *DefaultMutator) sampleBoundaryBiasedByte() byte {
	if m.rng.Float64() < 0.25 {
		if m.rng.Float64() < 0.5 {
			return 0x00
		}
		return 0xFF
	}
	return m.randomByte()
}

func (m *DefaultMutator) randomByte() byte {
	var b [1]byte
	m.rng.Bytes(b[:])
	return b[0]
}
