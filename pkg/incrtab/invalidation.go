package incrtab

import (
	"go.uber.org/zap"

	"github.com/gitrdm/incrtab/internal/worklist"
)

// applyChange classifies one effective fact change against the dependency
// graph. Per edge into the changed predicate:
//   - monotonic edge, fact added: the change is routed to the propagator.
//   - otherwise (incremental edge, or any retract): the dependent is
//     invalidated, and the invalidation wave walks outward.
//
// The wave runs to completion before propagation starts, so the propagator
// observes final table states and skips tables that are about to be
// recomputed anyway.
func (db *Database) applyChange(ch *FactChange) error {
	p := ch.Predicate
	if p.mode == ModeNone {
		return nil // untracked: ModeNone relations are never maintained
	}

	inval := worklist.New[*Table]()
	prop := worklist.New[propItem]()
	for _, e := range db.idg.DependentsOf(p) {
		if e.mode == EdgeMonotonic && ch.Kind == FactAdded {
			prop.Push(propItem{edge: e, fact: ch.Fact})
		} else {
			db.bumpEdge(e, inval)
		}
	}

	db.invalidateWave(inval)
	return db.runPropagation(prop)
}

// bumpEdge increments the dependent's falsecount. A table transitioning
// complete -> invalid is pushed onto the wave queue so the "subtree invalid"
// signal reaches its own dependents; a table already invalid only counts the
// additional unresolved dependency and is not re-walked.
func (db *Database) bumpEdge(e *Edge, q *worklist.Queue[*Table]) {
	t := e.dependent
	t.falsecount++
	if t.state == StateComplete {
		t.state = StateInvalid
		db.statTablesInvalidated.Add(1)
		db.logger.Debug("table invalidated",
			zap.String("table", t.pattern.String()),
			zap.String("dependency", e.dependency.nodeLabel()),
			zap.Int("falsecount", t.falsecount))
		q.Push(t)
	}
}

// signalDependents bumps every dependent edge of the node. Once a table has
// transitioned to invalid, the signal carried onward is "this subtree is
// invalid", which applies to all of its in-edges regardless of mode: the
// monotonic propagator only reacts to concrete new facts, never to an
// invalidation. Self-loop edges (recursive relations) are skipped: a table
// cannot invalidate itself, and counting the loop would skew its falsecount.
func (db *Database) signalDependents(n Node, q *worklist.Queue[*Table]) {
	for _, e := range db.idg.DependentsOf(n) {
		if e.dependent == n {
			continue
		}
		db.bumpEdge(e, q)
	}
}

// invalidateWave drains the queue of freshly invalidated tables, signalling
// each one's dependents in turn. Termination: a table is pushed only on its
// complete -> invalid transition, which happens at most once per wave, so
// the walk is bounded by the size of the dependent set even when the graph
// contains cycles. Every non-empty wave is counted, whichever engine stage
// started it.
func (db *Database) invalidateWave(q *worklist.Queue[*Table]) {
	if q.Len() > 0 {
		db.statInvalidationWalks.Add(1)
	}
	for {
		t, ok := q.Pop()
		if !ok {
			return
		}
		db.signalDependents(t, q)
	}
}
