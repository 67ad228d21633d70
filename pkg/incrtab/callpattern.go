package incrtab

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CallPattern identifies a distinct table: a relation plus a binding pattern
// describing which argument positions are bound to constants. Two queries
// with the same predicate and the same bound constants share one table.
//
// CallPattern is immutable after creation.
type CallPattern struct {
	pred *Predicate
	args Tuple // Free for unbound positions, a constant otherwise
	key  uint64
	str  string
}

// NewCallPattern builds a call pattern for the given predicate. Each
// argument is either a constant or Free; the argument count must match the
// predicate's arity.
func NewCallPattern(pred *Predicate, args []string) (*CallPattern, error) {
	if pred == nil {
		return nil, unknownPredicate("", len(args))
	}
	if len(args) != pred.arity {
		return nil, arityMismatch(pred.name, pred.arity, len(args))
	}

	t := make(Tuple, len(args))
	copy(t, args)

	d := xxhash.New()
	d.WriteString(pred.ID())
	for _, a := range t {
		d.WriteString("\x00")
		d.WriteString(a)
	}

	return &CallPattern{
		pred: pred,
		args: t,
		key:  d.Sum64(),
		str:  pred.name + "(" + strings.Join(t, ", ") + ")",
	}, nil
}

// Predicate returns the relation this pattern calls.
func (cp *CallPattern) Predicate() *Predicate { return cp.pred }

// Args returns the binding pattern. The returned tuple must not be mutated.
func (cp *CallPattern) Args() Tuple { return cp.args }

// Key returns the pre-computed hash used for table lookup.
func (cp *CallPattern) Key() uint64 { return cp.key }

// String returns a form like "connected(a, _)".
func (cp *CallPattern) String() string { return cp.str }

// HasBoundArgs reports whether any argument position is bound to a constant.
func (cp *CallPattern) HasBoundArgs() bool {
	for _, a := range cp.args {
		if a != Free {
			return true
		}
	}
	return false
}

// Equal reports whether two patterns identify the same table.
func (cp *CallPattern) Equal(other *CallPattern) bool {
	if other == nil {
		return false
	}
	return cp.pred == other.pred && cp.args.Equal(other.args)
}

// Matches reports whether a ground tuple is admissible for this pattern:
// every bound position must carry the pattern's constant.
func (cp *CallPattern) Matches(t Tuple) bool {
	if len(t) != len(cp.args) {
		return false
	}
	for i, a := range cp.args {
		if a != Free && a != t[i] {
			return false
		}
	}
	return true
}
