// Package typedvalue implements the algebraic value model that crosses the
// worker/VM boundary: unsigned integers of widths 8 through 128, booleans,
// homogeneous vectors, anonymous structs, mutable/immutable references, and
// function descriptors. Equality, hashing, and display are all structural.
package typedvalue

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/holiman/uint256"
)

// Kind tags the variant carried by a Value.
type Kind uint8

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindU128
	KindBool
	KindVector
	KindStruct
	KindRef
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindRef:
		return "ref"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// FunctionDescriptor names a callable target: its parameter schema and an
// optional return-value schema.
type FunctionDescriptor struct {
	Name   string
	Params []Value
	Return *Value
}

// Value is the tagged union. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Value struct {
	kind Kind

	u128 uint256.Int // also backs u8/u16/u32/u64 (the low bits hold the value)
	b    bool

	elemKind Kind    // vector element witness
	elems    []Value // vector elements, or struct fields

	refMutable bool
	refValue   *Value

	fn *FunctionDescriptor
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Width returns the bit width of an unsigned-integer variant, or 0 otherwise.
func (v Value) Width() int {
	switch v.kind {
	case KindU8:
		return 8
	case KindU16:
		return 16
	case KindU32:
		return 32
	case KindU64:
		return 64
	case KindU128:
		return 128
	default:
		return 0
	}
}

func widthMask(kind Kind) *uint256.Int {
	bits := Value{kind: kind}.Width()
	if bits <= 0 || bits >= 256 {
		return uint256.NewInt(0).Not(uint256.NewInt(0))
	}
	one := uint256.NewInt(1)
	shifted := new(uint256.Int).Lsh(one, uint(bits))
	return new(uint256.Int).Sub(shifted, uint256.NewInt(1))
}

func truncate(kind Kind, x *uint256.Int) uint256.Int {
	var out uint256.Int
	out.And(x, widthMask(kind))
	return out
}

// NewUint builds an unsigned-integer Value of the given kind from a uint64,
// truncating to the declared width (the TypedValue invariant: a widened
// integer always fits its declared width).
func NewUint(kind Kind, x uint64) Value {
	u := uint256.NewInt(x)
	t := truncate(kind, u)
	return Value{kind: kind, u128: t}
}

// NewUint128 builds a u128 Value from a *uint256.Int, truncated to 128 bits.
func NewUint128(x *uint256.Int) Value {
	t := truncate(KindU128, x)
	return Value{kind: KindU128, u128: t}
}

// NewUintFromBig builds an unsigned-integer Value of the given kind from a
// full-width *uint256.Int, truncating to the declared width. Used by the
// persistence layer, which round-trips arbitrary-width decimal strings.
func NewUintFromBig(kind Kind, x *uint256.Int) Value {
	t := truncate(kind, x)
	return Value{kind: kind, u128: t}
}

// NewBool builds a boolean Value.
func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NewVector builds a homogeneous vector Value carrying its element-type
// witness. elems must all share elemKind (not enforced at construction —
// callers that violate it get undefined Display/mutation behavior).
func NewVector(elemKind Kind, elems []Value) Value {
	return Value{kind: KindVector, elemKind: elemKind, elems: append([]Value(nil), elems...)}
}

// NewBytes is a convenience constructor for a vector of u8 from a raw byte
// slice.
func NewBytes(data []byte) Value {
	elems := make([]Value, len(data))
	for i, b := range data {
		elems[i] = NewUint(KindU8, uint64(b))
	}
	return NewVector(KindU8, elems)
}

// NewStruct builds an anonymous ordered struct from its fields.
func NewStruct(fields []Value) Value {
	return Value{kind: KindStruct, elems: append([]Value(nil), fields...)}
}

// NewRef builds a reference Value.
func NewRef(mutable bool, referent Value) Value {
	r := referent
	return Value{kind: KindRef, refMutable: mutable, refValue: &r}
}

// NewFunction builds a function-descriptor Value.
func NewFunction(fn FunctionDescriptor) Value {
	return Value{kind: KindFunction, fn: &fn}
}

// AsUint64 returns the low 64 bits of an unsigned-integer variant.
func (v Value) AsUint64() uint64 {
	return v.u128.Uint64()
}

// AsUint256 returns the full-width backing integer (valid for any u8..u128
// variant).
func (v Value) AsUint256() uint256.Int { return v.u128 }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// Elements returns the vector elements or struct fields.
func (v Value) Elements() []Value { return v.elems }

// ElementKind returns the vector's element-type witness.
func (v Value) ElementKind() Kind { return v.elemKind }

// RefMutable reports whether a reference variant is mutable.
func (v Value) RefMutable() bool { return v.refMutable }

// Referent returns the value behind a reference variant.
func (v Value) Referent() Value { return *v.refValue }

// Function returns the function descriptor payload.
func (v Value) Function() *FunctionDescriptor { return v.fn }

// Bytes encodes an unsigned-integer variant as its native-width
// little-endian byte buffer, the representation the Mutator contract
// operates on.
func (v Value) Bytes() []byte {
	bits := v.Width()
	if bits == 0 {
		return nil
	}
	n := bits / 8
	full := v.u128.Bytes32() // big-endian, 32 bytes
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = full[31-i]
	}
	return buf
}

// FromBytes decodes a native-width little-endian byte buffer back into an
// unsigned-integer variant of kind, truncating/padding to the declared
// width.
func FromBytes(kind Kind, buf []byte) Value {
	var u uint256.Int
	var be [32]byte
	n := len(buf)
	for i := 0; i < n && i < 32; i++ {
		be[31-i] = buf[i]
	}
	u.SetBytes32(be[:])
	return Value{kind: kind, u128: truncate(kind, &u)}
}

// SchemaDefault derives the zero-initialized argument vector from a schema
// Value: unsigned integers become zero, booleans become true,
// vectors/structs recurse element-wise, references keep their mutability
// flag and recurse into the referent, function descriptors recurse into
// their parameters.
func (v Value) SchemaDefault() Value {
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		return NewUint(v.kind, 0)
	case KindBool:
		return NewBool(true)
	case KindVector:
		elems := make([]Value, len(v.elems))
		for i, e := range v.elems {
			elems[i] = e.SchemaDefault()
		}
		return NewVector(v.elemKind, elems)
	case KindStruct:
		fields := make([]Value, len(v.elems))
		for i, e := range v.elems {
			fields[i] = e.SchemaDefault()
		}
		return NewStruct(fields)
	case KindRef:
		return NewRef(v.refMutable, v.refValue.SchemaDefault())
	case KindFunction:
		params := make([]Value, len(v.fn.Params))
		for i, p := range v.fn.Params {
			params[i] = p.SchemaDefault()
		}
		return NewFunction(FunctionDescriptor{Name: v.fn.Name, Params: params, Return: v.fn.Return})
	default:
		return v
	}
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		return v.u128.Eq(&o.u128)
	case KindBool:
		return v.b == o.b
	case KindVector:
		if v.elemKind != o.elemKind || len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindRef:
		return v.refMutable == o.refMutable && v.refValue.Equal(*o.refValue)
	case KindFunction:
		if v.fn.Name != o.fn.Name || len(v.fn.Params) != len(o.fn.Params) {
			return false
		}
		for i := range v.fn.Params {
			if !v.fn.Params[i].Equal(o.fn.Params[i]) {
				return false
			}
		}
		if (v.fn.Return == nil) != (o.fn.Return == nil) {
			return false
		}
		if v.fn.Return != nil && !v.fn.Return.Equal(*o.fn.Return) {
			return false
		}
		return true
	default:
		return false
	}
}

// Hash returns a structural hash consistent with Equal.
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	v.writeHash(h)
	return h.Sum64()
}

func (v Value) writeHash(h interface{ Write([]byte) (int, error) }) {
	writeByte := func(b byte) { h.Write([]byte{b}) }
	writeByte(byte(v.kind))
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		b := v.u128.Bytes32()
		h.Write(b[:])
	case KindBool:
		if v.b {
			writeByte(1)
		} else {
			writeByte(0)
		}
	case KindVector:
		writeByte(byte(v.elemKind))
		for _, e := range v.elems {
			e.writeHash(h)
		}
	case KindStruct:
		for _, e := range v.elems {
			e.writeHash(h)
		}
	case KindRef:
		if v.refMutable {
			writeByte(1)
		} else {
			writeByte(0)
		}
		v.refValue.writeHash(h)
	case KindFunction:
		h.Write([]byte(v.fn.Name))
		for _, p := range v.fn.Params {
			p.writeHash(h)
		}
		if v.fn.Return != nil {
			v.fn.Return.writeHash(h)
		}
	}
}

// isPrintableASCII reports whether every byte is in the printable ASCII
// range, the condition under which a u8 vector renders as a raw string.
func isPrintableASCII(bs []byte) bool {
	if len(bs) == 0 {
		return false
	}
	for _, b := range bs {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

// String renders the deterministic Display form.
func (v Value) String() string {
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64:
		return fmt.Sprintf("%d", v.u128.Uint64())
	case KindU128:
		return v.u128.Dec()
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindVector:
		if v.elemKind == KindU8 {
			raw := make([]byte, len(v.elems))
			for i, e := range v.elems {
				raw[i] = byte(e.AsUint64())
			}
			if isPrintableASCII(raw) {
				return fmt.Sprintf("%q", string(raw))
			}
			var sb strings.Builder
			sb.WriteString("0x")
			for _, b := range raw {
				fmt.Fprintf(&sb, "%02x", b)
			}
			return sb.String()
		}
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindStruct:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRef:
		if v.refMutable {
			return "&mut " + v.refValue.String()
		}
		return "&" + v.refValue.String()
	case KindFunction:
		parts := make([]string, len(v.fn.Params))
		for i, p := range v.fn.Params {
			parts[i] = p.String()
		}
		sig := fmt.Sprintf("%s(%s)", v.fn.Name, strings.Join(parts, ", "))
		if v.fn.Return != nil {
			sig += " -> " + v.fn.Return.String()
		}
		return sig
	default:
		return "<invalid>"
	}
}
