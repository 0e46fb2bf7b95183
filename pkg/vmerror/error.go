// Package vmerror implements the closed taxonomy of VM failure kinds that
// crosses the Runner boundary: every execution either succeeds or fails with
// exactly one of these variants.
package vmerror

import "fmt"

// Kind is the closed set of failure variants.
type Kind uint8

const (
	Abort Kind = iota
	Runtime
	OutOfBound
	OutOfGas
	ArithmeticError
	MemoryLimitExceeded
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Abort:
		return "Abort"
	case Runtime:
		return "Runtime"
	case OutOfBound:
		return "OutOfBound"
	case OutOfGas:
		return "OutOfGas"
	case ArithmeticError:
		return "ArithmeticError"
	case MemoryLimitExceeded:
		return "MemoryLimitExceeded"
	case Unknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// Error is a classified VM failure: a closed Kind plus a human-readable
// message. It satisfies the standard error interface so it composes with
// ordinary Go error handling, but identity for dedup purposes (Crash
// fingerprinting) is (Kind, Message) structural equality, not pointer
// identity.
type Error struct {
	Kind    Kind
	Message string
}

// New builds an Error of the given kind and message.
func New(kind Kind, message string) Error {
	return Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e Error) Error() string { return e.String() }

// String renders the Display form: Abort/Unknown/Runtime include the
// message, the others elide it.
func (e Error) String() string {
	switch e.Kind {
	case Abort, Unknown, Runtime:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// Equal reports whether two errors carry the same kind and message — the
// basis of Crash fingerprinting.
func (e Error) Equal(o Error) bool {
	return e.Kind == o.Kind && e.Message == o.Message
}

// VMStatus is the raw status code a Runner observes from the embedded VM,
// prior to classification.
type VMStatus string

const (
	StatusAborted              VMStatus = "ABORTED"
	StatusArithmeticError      VMStatus = "ARITHMETIC_ERROR"
	StatusMemoryLimitExceeded  VMStatus = "MEMORY_LIMIT_EXCEEDED"
	StatusOutOfGas             VMStatus = "OUT_OF_GAS"
	StatusOutOfBoundAccess     VMStatus = "OUT_OF_BOUND_ACCESS"
	StatusRuntimeFault         VMStatus = "RUNTIME_FAULT"
)

// Classify applies the fixed VM-status-to-Error mapping. The message is
// detail when non-empty, otherwise the location; a missing location
// defaults to "Unknown function".
func Classify(status VMStatus, location string, detail string) Error {
	if location == "" {
		location = "Unknown function"
	}
	message := detail
	if message == "" {
		message = location
	}
	switch status {
	case StatusAborted:
		return New(Abort, message)
	case StatusArithmeticError:
		return New(ArithmeticError, message)
	case StatusMemoryLimitExceeded:
		return New(MemoryLimitExceeded, message)
	case StatusOutOfGas:
		return New(OutOfGas, message)
	case StatusOutOfBoundAccess:
		return New(OutOfBound, message)
	case StatusRuntimeFault:
		return New(Runtime, message)
	default:
		return New(Unknown, message)
	}
}
