package incrtab

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/incrtab/internal/worklist"
)

// propItem is one unit of monotonic propagation work: a new fact of the
// edge's dependency, to be pushed through the edge's propagation function
// into the dependent table.
type propItem struct {
	edge *Edge
	fact Tuple

	// drain marks items replayed from a table's own pending delta; they
	// bypass the lazy queueing that produced them.
	drain bool
}

// runPropagation drives the additive fixpoint cascade. For each item, the
// edge's propagation function turns the single new fact into candidate
// answers for the dependent table; genuinely new answers (set membership is
// the idempotence check) are inserted and cascaded onward through the
// table's own in-edges. The loop terminates when the worklist drains:
// answers only grow within a finite universe and are never re-added.
//
// Cascade rules per in-edge of a table that just grew:
//   - monotonic edge: push the new answer as a further work item.
//   - incremental edge: the dependent cannot absorb a delta, so it is
//     invalidated through the regular wave.
func (db *Database) runPropagation(q *worklist.Queue[propItem]) error {
	steps := 0
	for {
		it, ok := q.Pop()
		if !ok {
			return nil
		}
		steps++
		if limit := db.config.MaxPropagationSteps; limit > 0 && steps > limit {
			return fmt.Errorf("incrtab: propagation exceeded %d steps without reaching fixpoint", limit)
		}
		db.statPropagationSteps.Add(1)

		t := it.edge.dependent
		if t.state == StateInvalid {
			continue // will be fully recomputed on next lookup
		}
		if t.Mode() == ModeMonotonicLazy && !it.drain {
			t.pending = append(t.pending, it)
			continue
		}
		if it.edge.propagate == nil {
			continue
		}

		for _, answer := range it.edge.propagate(it.fact) {
			if !t.pattern.Matches(answer) {
				continue
			}
			if !t.answers.Add(answer) {
				continue // already derived
			}
			db.statPropagatedAnswers.Add(1)
			db.logger.Debug("answer propagated",
				zap.String("table", t.pattern.String()),
				zap.String("answer", answer.String()),
				zap.String("from", it.edge.dependency.nodeLabel()))

			inval := worklist.New[*Table]()
			for _, e2 := range db.idg.DependentsOf(t) {
				if e2.mode == EdgeMonotonic {
					q.Push(propItem{edge: e2, fact: answer})
				} else if e2.dependent != t {
					db.bumpEdge(e2, inval)
				}
			}
			db.invalidateWave(inval)
		}
	}
}

// drainPending replays a lazy-monotonic table's queued fact changes through
// the same cascade the eager model uses. Cascaded answers landing back on
// the same table (self-recursive relations) re-enter the pending list and
// are drained by the outer loop until the table reaches its fixpoint.
func (db *Database) drainPending(t *Table) error {
	for len(t.pending) > 0 {
		items := t.pending
		t.pending = nil
		q := worklist.New[propItem]()
		for _, it := range items {
			it.drain = true
			q.Push(it)
		}
		db.logger.Debug("draining pending delta",
			zap.String("table", t.pattern.String()),
			zap.Int("items", len(items)))
		if err := db.runPropagation(q); err != nil {
			return err
		}
	}
	return nil
}
