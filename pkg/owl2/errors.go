// Package owl2 implements an OWL 2 DL tableaux reasoner: a completion-graph
// based decision procedure for ontology consistency, class satisfiability,
// subsumption, and instance classification, together with EL/QL/RL profile
// validators.
package owl2

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the reason a reasoning API call failed.
// Clashes are not errors: they drive backjumping inside the expansion
// engine and, when unrecoverable, surface as a boolean UNSAT answer plus
// an optional ClashWitness. An ErrorKind is only returned when the call
// itself could not be completed.
type ErrorKind int

const (
	// ErrParseInput marks a malformed axiom or class expression fed into
	// the ingestion contract.
	ErrParseInput ErrorKind = iota
	// ErrInvalidEntity marks an IRI that resolves to the wrong entity kind
	// (e.g. a class IRI used where a property was expected).
	ErrInvalidEntity
	// ErrResourceExhausted marks a memory manager abort: an arena hit its
	// configured cap before the expansion engine could reach a fixed point.
	ErrResourceExhausted
	// ErrTimeout marks a soft deadline observed by the expansion loop.
	ErrTimeout
	// ErrCancelled marks an externally cancelled context observed by the
	// expansion loop.
	ErrCancelled
	// ErrInternalInvariant marks a failed guarded assertion about graph,
	// dependency, or equality state. It indicates a bug in the reasoner,
	// not a problem with the input.
	ErrInternalInvariant
)

// String returns a stable, lower-case name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrParseInput:
		return "parse_input"
	case ErrInvalidEntity:
		return "invalid_entity"
	case ErrResourceExhausted:
		return "resource_exhausted"
	case ErrTimeout:
		return "timeout"
	case ErrCancelled:
		return "cancelled"
	case ErrInternalInvariant:
		return "internal_invariant"
	default:
		return "unknown"
	}
}

// ReasonerError is the concrete error type returned by every reasoning API.
// It pairs an ErrorKind with a human-readable message and, for
// ErrInternalInvariant, a stable code identifying which guarded assertion
// failed so that reports from the field can be triaged without a debugger.
type ReasonerError struct {
	Kind ErrorKind
	Code string // non-empty only for ErrInternalInvariant
	Msg  string
	Err  error // wrapped cause, if any
}

// Error implements the error interface.
func (e *ReasonerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("owl2: %s [%s]: %s", e.Kind, e.Code, e.Msg)
	}
	return fmt.Sprintf("owl2: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *ReasonerError) Unwrap() error { return e.Err }

// Is reports whether target is a *ReasonerError with the same Kind, so that
// callers can write errors.Is(err, owl2.NewTimeoutError("")) style checks
// using the constructors below.
func (e *ReasonerError) Is(target error) bool {
	var other *ReasonerError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func newError(kind ErrorKind, format string, args ...interface{}) *ReasonerError {
	return &ReasonerError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewParseInputError reports malformed ingestion input.
func NewParseInputError(format string, args ...interface{}) *ReasonerError {
	return newError(ErrParseInput, format, args...)
}

// NewInvalidEntityError reports an IRI resolving to the wrong entity kind.
func NewInvalidEntityError(format string, args ...interface{}) *ReasonerError {
	return newError(ErrInvalidEntity, format, args...)
}

// NewResourceExhaustedError reports a memory manager abort.
func NewResourceExhaustedError(format string, args ...interface{}) *ReasonerError {
	return newError(ErrResourceExhausted, format, args...)
}

// NewTimeoutError reports a soft deadline exceeded.
func NewTimeoutError(format string, args ...interface{}) *ReasonerError {
	return newError(ErrTimeout, format, args...)
}

// NewCancelledError reports an externally cancelled context.
func NewCancelledError(format string, args ...interface{}) *ReasonerError {
	return newError(ErrCancelled, format, args...)
}

// NewInternalInvariantError reports a failed guarded assertion. code should
// be a short, stable identifier (e.g. "graph/label-clash-on-merge") so that
// occurrences can be grepped for across versions.
func NewInternalInvariantError(code, format string, args ...interface{}) *ReasonerError {
	return &ReasonerError{Kind: ErrInternalInvariant, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// wrap attaches a wrapped cause to a ReasonerError, returning a new value.
func wrap(base *ReasonerError, cause error) *ReasonerError {
	cp := *base
	cp.Err = cause
	return &cp
}

// ParseError describes a single malformed-input diagnostic from the
// ingestion contract (§6): the parser surface that feeds an Ontology to
// the reasoner. It is distinct from ReasonerError because a parse failure
// belongs to the external parser, not to a reasoning call; the reasoner
// only observes ParseErrors already attached to an Ontology's diagnostics.
type ParseError struct {
	Kind    string // parser-defined kind, e.g. "unexpected-token"
	Line    int
	Column  int
	Snippet string
}

// Error implements the error interface.
func (p *ParseError) Error() string {
	return fmt.Sprintf("parse error (%s) at %d:%d: %s", p.Kind, p.Line, p.Column, p.Snippet)
}
