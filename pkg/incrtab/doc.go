// Package incrtab maintains memoization tables for recursive relations over a
// dynamic fact base, keeping those tables consistent as facts are asserted and
// retracted without recomputing everything from scratch.
//
// # What is Incremental Tabling?
//
// Tabling caches the answer set of a relation call so repeated calls are served
// from cache. Incremental tabling extends this with change tracking:
//   - A dependency graph (IDG) records which predicates and tables each table
//     was computed from.
//   - Asserting or retracting a fact marks the affected tables invalid instead
//     of discarding them.
//   - Invalid tables are lazily recomputed on their next lookup, and tables
//     whose recomputation turns out content-identical release their dependents
//     without recomputing them (falsecount discipline).
//
// Monotonic tabling is the additive fast path: when a relation's answers can
// only grow as facts are added, a newly asserted fact is pushed through
// per-edge propagation functions, growing dependent tables to a fixpoint
// instead of invalidating them.
//
// # Architecture
//
// The package is organized leaf-first:
//   - FactStore: current extension of each dynamic predicate, idempotent
//     assert/retract emitting change events.
//   - TableStore: memoized answer set plus lifecycle state per call pattern.
//   - IDG: directed dependency graph between tables and dynamic predicates,
//     edges annotated incremental or monotonic.
//   - Invalidation walk, lazy re-evaluation, and the monotonic propagator,
//     all driven from a single Database instance.
//
// The resolution engine itself is an external collaborator supplied through
// the Evaluator interface; RuleEvaluator provides a small Datalog-style
// reference implementation sufficient for recursive relations over ground
// facts.
//
// # Usage
//
//	ev := incrtab.NewRuleEvaluator()
//	ev.AddRule(incrtab.NewRule(
//	    incrtab.L("connected", "X", "Z"),
//	    incrtab.L("link", "X", "Z"),
//	))
//	ev.AddRule(incrtab.NewRule(
//	    incrtab.L("connected", "X", "Z"),
//	    incrtab.L("connected", "X", "Y"), incrtab.L("link", "Y", "Z"),
//	))
//
//	db, _ := incrtab.NewDatabase(ev, nil)
//	db.Declare("link", 2, incrtab.ModeMonotonic)
//	db.Declare("connected", 2, incrtab.ModeMonotonic)
//
//	db.Assert("link", "a", "b")
//	answers, _ := db.Query(context.Background(), "connected", "a", incrtab.Free)
//	db.Assert("link", "b", "c") // grows the table additively, no recompute
//
// # Concurrency
//
// A Database serializes all operations behind a single mutex: falsecount and
// worklist accounting require that each change event is fully classified
// before the next mutation is applied. Evaluation and propagation always run
// to completion before control returns; there is no cancellation model beyond
// the context passed to the evaluator.
package incrtab
