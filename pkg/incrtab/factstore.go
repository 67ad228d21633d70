package incrtab

import (
	"fmt"

	"go.uber.org/zap"
)

// ChangeKind discriminates fact-change events.
type ChangeKind int

const (
	// FactAdded marks an assert that actually extended a predicate.
	FactAdded ChangeKind = iota

	// FactRemoved marks a retract that actually shrank a predicate.
	FactRemoved
)

// String returns a human-readable kind name.
func (k ChangeKind) String() string {
	switch k {
	case FactAdded:
		return "added"
	case FactRemoved:
		return "removed"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// FactChange describes one effective mutation of a dynamic predicate's
// extension. No-op asserts and retracts produce no FactChange.
type FactChange struct {
	Predicate *Predicate
	Fact      Tuple
	Kind      ChangeKind
}

// FactStore holds the declared predicates and the current extension of each
// dynamic predicate. Assert and Retract are idempotent: asserting a fact
// already present, or retracting one absent, mutates nothing and emits no
// change event.
//
// FactStore is not safe for concurrent use on its own; the owning Database
// serializes all access.
type FactStore struct {
	preds  map[string]*Predicate // keyed by "name/arity"
	byName map[string]*Predicate // keyed by name, for arity-free lookup
	logger *zap.Logger
}

// NewFactStore creates an empty fact store. A nil logger defaults to no-op.
func NewFactStore(logger *zap.Logger) *FactStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FactStore{
		preds:  make(map[string]*Predicate),
		byName: make(map[string]*Predicate),
		logger: logger,
	}
}

// Declare registers a predicate with its arity and maintenance mode.
// Re-declaring an existing predicate with identical arity and mode returns
// the existing predicate; a conflicting re-declaration is a configuration
// error.
func (fs *FactStore) Declare(name string, arity int, mode Mode) (*Predicate, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty predicate name", ErrConflictingDeclaration)
	}
	if arity <= 0 {
		return nil, fmt.Errorf("%w: %s declared with non-positive arity %d", ErrConflictingDeclaration, name, arity)
	}
	id := fmt.Sprintf("%s/%d", name, arity)
	if existing, ok := fs.preds[id]; ok {
		if existing.mode != mode {
			return nil, fmt.Errorf("%w: %s already declared with mode %s", ErrConflictingDeclaration, id, existing.mode)
		}
		return existing, nil
	}
	if other, ok := fs.byName[name]; ok && other.arity != arity {
		return nil, fmt.Errorf("%w: %s already declared with arity %d", ErrConflictingDeclaration, name, other.arity)
	}
	p := newPredicate(name, arity, mode)
	fs.preds[id] = p
	fs.byName[name] = p
	fs.logger.Debug("predicate declared",
		zap.String("predicate", id),
		zap.String("mode", mode.String()))
	return p, nil
}

// Lookup returns the predicate with the given name, or nil if none was
// declared.
func (fs *FactStore) Lookup(name string) *Predicate {
	return fs.byName[name]
}

// Assert adds a ground fact to the predicate's extension. It returns the
// resulting change event, or nil if the fact was already present. Unknown
// predicates and arity mismatches are configuration errors.
func (fs *FactStore) Assert(name string, fact Tuple) (*FactChange, error) {
	p, err := fs.resolve(name, fact)
	if err != nil {
		return nil, err
	}
	if !p.facts.Add(fact) {
		return nil, nil // idempotent: already present
	}
	fs.logger.Debug("fact asserted",
		zap.String("predicate", p.ID()),
		zap.String("fact", fact.String()))
	return &FactChange{Predicate: p, Fact: fact.clone(), Kind: FactAdded}, nil
}

// Retract removes a ground fact from the predicate's extension. It returns
// the resulting change event, or nil if the fact was absent.
func (fs *FactStore) Retract(name string, fact Tuple) (*FactChange, error) {
	p, err := fs.resolve(name, fact)
	if err != nil {
		return nil, err
	}
	if !p.facts.Has(fact) {
		return nil, nil // idempotent: not present
	}
	p.facts = removeTuple(p.facts, fact)
	fs.logger.Debug("fact retracted",
		zap.String("predicate", p.ID()),
		zap.String("fact", fact.String()))
	return &FactChange{Predicate: p, Fact: fact.clone(), Kind: FactRemoved}, nil
}

// Facts returns the current extension of the named predicate in insertion
// order.
func (fs *FactStore) Facts(name string) ([]Tuple, error) {
	p := fs.byName[name]
	if p == nil {
		return nil, unknownPredicate(name, 0)
	}
	return p.facts.Tuples(), nil
}

func (fs *FactStore) resolve(name string, fact Tuple) (*Predicate, error) {
	p := fs.byName[name]
	if p == nil {
		return nil, unknownPredicate(name, len(fact))
	}
	if len(fact) != p.arity {
		return nil, arityMismatch(name, p.arity, len(fact))
	}
	return p, nil
}

// removeTuple rebuilds an answer set without the given tuple. Extensions are
// small relative to tables and retracts are rare compared to lookups, so the
// rebuild keeps AnswerSet free of tombstone bookkeeping.
func removeTuple(s *AnswerSet, t Tuple) *AnswerSet {
	out := NewAnswerSet()
	drop := t.Key()
	for _, f := range s.Tuples() {
		if f.Key() == drop {
			continue
		}
		out.Add(f)
	}
	return out
}
