package incrtab

import (
	"errors"
	"fmt"
)

// Error taxonomy. Configuration errors reject the triggering call
// synchronously and are not retried. ErrInvariant indicates a falsecount or
// state mismatch detected internally; it aborts the operation because the
// correctness of lazy re-evaluation depends entirely on falsecount accuracy.
var (
	// ErrUnknownPredicate is returned when an operation names a predicate
	// that was never declared.
	ErrUnknownPredicate = errors.New("incrtab: unknown predicate")

	// ErrArityMismatch is returned when a fact or call pattern does not
	// match the declared arity of its predicate.
	ErrArityMismatch = errors.New("incrtab: arity mismatch")

	// ErrConflictingDeclaration is returned when a predicate is re-declared
	// with a different arity or mode.
	ErrConflictingDeclaration = errors.New("incrtab: conflicting declaration")

	// ErrInvariant is returned when the core detects an internal
	// falsecount/state inconsistency.
	ErrInvariant = errors.New("incrtab: invariant violation")
)

// unknownPredicate builds an ErrUnknownPredicate with the offending name.
func unknownPredicate(name string, arity int) error {
	return fmt.Errorf("%w: %s/%d", ErrUnknownPredicate, name, arity)
}

// arityMismatch builds an ErrArityMismatch naming the predicate and the
// actual argument count.
func arityMismatch(name string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrArityMismatch, name, want, got)
}
