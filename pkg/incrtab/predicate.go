package incrtab

import "fmt"

// Mode selects the table-maintenance strategy for a relation's tables and
// for changes to its dynamic facts.
type Mode int

const (
	// ModeNone disables maintenance: tables over the relation are memoized
	// but never invalidated, and changes to its facts are not tracked.
	ModeNone Mode = iota

	// ModeIncremental maintains tables by invalidation and lazy
	// re-evaluation.
	ModeIncremental

	// ModeMonotonic maintains tables by eager additive propagation of new
	// facts; retracts fall back to incremental invalidation.
	ModeMonotonic

	// ModeMonotonicLazy queues new facts in a pending delta per table and
	// replays them on the next query instead of propagating eagerly.
	ModeMonotonicLazy
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeIncremental:
		return "incremental"
	case ModeMonotonic:
		return "monotonic"
	case ModeMonotonicLazy:
		return "monotonic-lazy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// isMonotonic reports whether the mode uses additive propagation for asserts.
func (m Mode) isMonotonic() bool {
	return m == ModeMonotonic || m == ModeMonotonicLazy
}

// Predicate is a declared relation identified by name and arity. It owns the
// current extension of its dynamic facts and carries the maintenance mode
// inherited by its tables. Predicates are created at declaration time and
// never destroyed during a session.
type Predicate struct {
	name  string
	arity int
	mode  Mode
	facts *AnswerSet
}

func newPredicate(name string, arity int, mode Mode) *Predicate {
	return &Predicate{
		name:  name,
		arity: arity,
		mode:  mode,
		facts: NewAnswerSet(),
	}
}

// Name returns the predicate's name.
func (p *Predicate) Name() string { return p.name }

// Arity returns the predicate's arity.
func (p *Predicate) Arity() int { return p.arity }

// Mode returns the declared maintenance mode.
func (p *Predicate) Mode() Mode { return p.mode }

// ID returns the canonical "name/arity" identifier.
func (p *Predicate) ID() string {
	return fmt.Sprintf("%s/%d", p.name, p.arity)
}

// FactCount returns the number of facts currently in the extension.
func (p *Predicate) FactCount() int {
	return p.facts.Len()
}

// nodeKey implements Node. Predicates and tables share the IDG node
// namespace; the prefix keeps the two kinds disjoint.
func (p *Predicate) nodeKey() string {
	return "p:" + p.ID()
}

// nodeLabel implements Node.
func (p *Predicate) nodeLabel() string {
	return p.ID()
}
