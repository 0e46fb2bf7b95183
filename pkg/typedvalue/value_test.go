package typedvalue

import "testing"

func TestUintTruncation(t *testing.T) {
	v := NewUint(KindU8, 0x1FF)
	if v.AsUint64() != 0xFF {
		t.Fatalf("expected truncation to 0xFF, got %#x", v.AsUint64())
	}
}

func TestBytesRoundTrip(t *testing.T) {
	v := NewUint(KindU32, 0xDEADBEEF)
	buf := v.Bytes()
	if len(buf) != 4 {
		t.Fatalf("expected 4-byte buffer, got %d", len(buf))
	}
	got := FromBytes(KindU32, buf)
	if !got.Equal(v) {
		t.Fatalf("round trip mismatch: got %s, want %s", got, v)
	}
}

func TestEqualStructural(t *testing.T) {
	a := NewStruct([]Value{NewUint(KindU8, 1), NewBool(true)})
	b := NewStruct([]Value{NewUint(KindU8, 1), NewBool(true)})
	c := NewStruct([]Value{NewUint(KindU8, 2), NewBool(true)})
	if !a.Equal(b) {
		t.Fatal("expected equal structs")
	}
	if a.Equal(c) {
		t.Fatal("expected unequal structs")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("expected equal hashes for equal structs")
	}
}

func TestDisplayPrintableBytes(t *testing.T) {
	v := NewBytes([]byte("hello"))
	if v.String() != `"hello"` {
		t.Fatalf("expected quoted string, got %s", v.String())
	}
	nonPrintable := NewBytes([]byte{0x00, 0xff, 0x10})
	if nonPrintable.String() != "0x00ff10" {
		t.Fatalf("expected hex string, got %s", nonPrintable.String())
	}
}

func TestSchemaDefault(t *testing.T) {
	schema := NewStruct([]Value{
		NewUint(KindU64, 42),
		NewBool(false),
		NewVector(KindU8, []Value{NewUint(KindU8, 7)}),
	})
	def := schema.SchemaDefault()
	fields := def.Elements()
	if fields[0].AsUint64() != 0 {
		t.Fatalf("expected zero int default, got %d", fields[0].AsUint64())
	}
	if !fields[1].AsBool() {
		t.Fatal("expected bool default to be true")
	}
	if len(fields[2].Elements()) != 1 || fields[2].Elements()[0].AsUint64() != 0 {
		t.Fatal("expected vector element default to be zero")
	}
}

func TestRefEquality(t *testing.T) {
	r1 := NewRef(true, NewUint(KindU16, 5))
	r2 := NewRef(true, NewUint(KindU16, 5))
	r3 := NewRef(false, NewUint(KindU16, 5))
	if !r1.Equal(r2) {
		t.Fatal("expected equal refs")
	}
	if r1.Equal(r3) {
		t.Fatal("expected mutability to affect equality")
	}
}
