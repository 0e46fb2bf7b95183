package vmerror

import "testing"

func TestDisplayElidesMessage(t *testing.T) {
	e := New(OutOfGas, "gas exhausted at pc 12")
	if e.String() != "OutOfGas" {
		t.Fatalf("expected message elided, got %q", e.String())
	}
	a := New(Abort, "assertion failed")
	if a.String() != "Abort: assertion failed" {
		t.Fatalf("expected message included, got %q", a.String())
	}
}

func TestClassifyMapping(t *testing.T) {
	cases := []struct {
		status VMStatus
		kind   Kind
	}{
		{StatusAborted, Abort},
		{StatusArithmeticError, ArithmeticError},
		{StatusMemoryLimitExceeded, MemoryLimitExceeded},
		{StatusOutOfGas, OutOfGas},
		{StatusOutOfBoundAccess, OutOfBound},
		{StatusRuntimeFault, Runtime},
		{VMStatus("SOMETHING_ELSE"), Unknown},
	}
	for _, c := range cases {
		got := Classify(c.status, "my_fn", "detail")
		if got.Kind != c.kind {
			t.Errorf("Classify(%s) = %s, want %s", c.status, got.Kind, c.kind)
		}
	}
}

func TestClassifyMissingLocation(t *testing.T) {
	e := Classify(StatusAborted, "", "")
	if e.Message != "Unknown function" {
		t.Fatalf("expected default location message, got %q", e.Message)
	}
}

func TestErrorEqual(t *testing.T) {
	a := New(Abort, "x")
	b := New(Abort, "x")
	c := New(Abort, "y")
	if !a.Equal(b) {
		t.Fatal("expected equal errors")
	}
	if a.Equal(c) {
		t.Fatal("expected unequal errors")
	}
}
