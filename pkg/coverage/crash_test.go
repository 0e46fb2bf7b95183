package coverage

import (
	"testing"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

func TestCrashFingerprintIgnoresInputs(t *testing.T) {
	a := NewCrash("m", "f", []typedvalue.Value{typedvalue.NewUint(typedvalue.KindU8, 1)}, vmerror.New(vmerror.Abort, "x != 0xDEAD"))
	b := NewCrash("m", "f", []typedvalue.Value{typedvalue.NewUint(typedvalue.KindU8, 2)}, vmerror.New(vmerror.Abort, "x != 0xDEAD"))
	if !a.Equal(b) {
		t.Fatal("expected fingerprint equality despite differing inputs")
	}
}

func TestCrashFingerprintIgnoresModule(t *testing.T) {
	a := NewCrash("m1", "f", nil, vmerror.New(vmerror.Abort, "boom"))
	b := NewCrash("m2", "f", nil, vmerror.New(vmerror.Abort, "boom"))
	if !a.Equal(b) {
		t.Fatal("expected fingerprint equality despite differing target modules")
	}
}

func TestCrashSetDedup(t *testing.T) {
	s := NewCrashSet()
	c := NewCrash("m", "f", nil, vmerror.New(vmerror.Abort, "boom"))
	if !s.Insert(c) {
		t.Fatal("expected first insert to be novel")
	}
	if s.Insert(c) {
		t.Fatal("expected duplicate insert to be rejected")
	}
	if s.Len() != 1 {
		t.Fatalf("expected one retained crash, got %d", s.Len())
	}
}

func TestCrashSetDistinguishesFunctions(t *testing.T) {
	s := NewCrashSet()
	s.Insert(NewCrash("m", "f1", nil, vmerror.New(vmerror.Abort, "boom")))
	s.Insert(NewCrash("m", "f2", nil, vmerror.New(vmerror.Abort, "boom")))
	if s.Len() != 2 {
		t.Fatalf("expected two distinct crashes, got %d", s.Len())
	}
}
