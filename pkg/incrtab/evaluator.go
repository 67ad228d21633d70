package incrtab

import "context"

// Evaluator is the resolution collaborator: it computes the answer set of a
// relation for a call pattern, given the current extensions of the
// relation's dependencies. The tabling core never interprets rules itself.
//
// During Evaluate the evaluator must report, through env, every predicate
// and table it consults, once per distinct dependency. For dependencies of
// monotonic relations it may additionally supply a propagation function.
//
// Querying a relation with no matching rule or facts is not an error: the
// evaluator returns an empty answer set, which the core records as a valid
// complete table.
type Evaluator interface {
	Evaluate(ctx context.Context, call *CallPattern, env Env) (*AnswerSet, error)
}

// Env is the view of the database an evaluator sees during one evaluation of
// one table. It grants read access to dependency extensions and collects the
// dependency edges discovered along the way.
type Env interface {
	// Self returns the table under evaluation, in state evaluating. Its
	// answer set is partial until Evaluate returns.
	Self() *Table

	// Facts returns the named dynamic predicate and its current extension.
	Facts(name string) (*Predicate, []Tuple, error)

	// Answers evaluates another call pattern through the table store
	// (memoization, re-evaluation and pending-delta replay included) and
	// returns its table. A re-entrant call on a table currently evaluating
	// returns that table with its partial answers; cycle resolution is the
	// evaluator's responsibility.
	Answers(ctx context.Context, call *CallPattern) (*Table, []Tuple, error)

	// DependsOn records a dependency edge from the table under evaluation
	// to the given node. The edge mode follows the dependency relation's
	// declared mode: monotonic when the relation is monotonic and a
	// propagation function is supplied, incremental otherwise.
	// Dependencies on ModeNone relations are not tracked.
	DependsOn(node Node, fn PropagationFunc)

	// Pattern builds a call pattern for a declared relation; args are
	// constants or Free.
	Pattern(name string, args ...string) (*CallPattern, error)

	// Reader returns a handle for reading current extensions after the
	// evaluation has finished. Propagation functions must use the reader,
	// not env itself, because they run during later assert operations.
	Reader() Reader
}

// Reader is the durable read-only view captured by propagation functions.
// Its methods reflect the state current at call time.
type Reader interface {
	// FactsOf returns the current extension of a dynamic predicate.
	FactsOf(p *Predicate) []Tuple

	// AnswersOf returns the current answer set of a table without
	// triggering evaluation.
	AnswersOf(t *Table) []Tuple
}
