package incrtab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/incrtab/internal/worklist"
)

// evaluate runs a fresh evaluation of a newly created table: state
// evaluating, evaluator invoked, answers populated, dependency edges
// recorded through the env, then complete with falsecount 0.
func (db *Database) evaluate(ctx context.Context, t *Table) error {
	t.state = StateEvaluating
	if err := db.invokeEvaluator(ctx, t); err != nil {
		return err
	}
	t.state = StateComplete
	t.falsecount = 0
	return nil
}

// reevaluate recomputes an invalid table exactly as a fresh evaluation:
// outgoing edges are cleared and re-discovered, the old answer set is
// snapshotted for comparison.
//
// If the new answers equal the old ones the change had no externally visible
// effect: dependents are released through the falsecount-decrement walk
// without being recomputed. Otherwise the change is confirmed visible and
// dependents are invalidated through the regular wave.
func (db *Database) reevaluate(ctx context.Context, t *Table) error {
	old := t.answers
	db.idg.ClearOutgoing(t)
	t.pending = nil
	t.state = StateEvaluating

	db.logger.Debug("re-evaluating table",
		zap.String("table", t.pattern.String()),
		zap.Int("falsecount", t.falsecount))

	if err := db.invokeEvaluator(ctx, t); err != nil {
		// The table stays invalid; its edges were cleared, so a later
		// query retries the evaluation from scratch.
		t.state = StateInvalid
		if t.falsecount == 0 {
			t.falsecount = 1
		}
		return err
	}
	t.state = StateComplete
	t.falsecount = 0

	if t.answers.Equal(old) {
		db.logger.Debug("re-evaluation unchanged, releasing dependents",
			zap.String("table", t.pattern.String()))
		return db.confirmUnchanged(t)
	}

	q := worklist.New[*Table]()
	db.signalDependents(t, q)
	db.invalidateWave(q)
	return nil
}

// invokeEvaluator calls the external evaluator for the table's pattern. The
// table's answer set is reset first so that re-entrant lookups during the
// evaluation observe the partial new answers, matching the fresh-evaluation
// contract. A nil result from the evaluator stands for an empty answer set:
// "no match" is a legitimate fixpoint, not an error.
func (db *Database) invokeEvaluator(ctx context.Context, t *Table) error {
	t.answers = NewAnswerSet()
	db.statEvaluatorCalls.Add(1)

	env := &evalEnv{db: db, self: t}
	res, err := db.evaluator.Evaluate(ctx, t.pattern, env)
	if err != nil {
		return fmt.Errorf("incrtab: evaluating %s: %w", t.pattern, err)
	}
	if res != nil && res != t.answers {
		for _, a := range res.Tuples() {
			if t.pattern.Matches(a) {
				t.answers.Add(a)
			}
		}
	}
	return nil
}

// confirmUnchanged releases the dependents of a table whose re-evaluation
// produced content-identical answers. The walk is breadth-first outward from
// the table: each in-edge accounts for exactly one falsecount decrement,
// mirroring the one increment its invalid-transition charged earlier. A
// dependent reaching falsecount 0 becomes complete without recomputation and
// the release continues through it; the visited set guarantees each table is
// finalized at most once even when converging paths report separately.
func (db *Database) confirmUnchanged(root *Table) error {
	q := worklist.New[*Table]()
	visited := map[*Table]struct{}{root: {}}
	q.Push(root)
	for {
		n, ok := q.Pop()
		if !ok {
			return nil
		}
		for _, e := range db.idg.DependentsOf(n) {
			t := e.dependent
			if t.state != StateInvalid {
				continue // already re-evaluated through another path
			}
			t.falsecount--
			if t.falsecount < 0 {
				return fmt.Errorf("%w: falsecount underflow on %s during release from %s",
					ErrInvariant, t.pattern, root.pattern)
			}
			if t.falsecount == 0 {
				t.state = StateComplete
				db.statNoopCompletions.Add(1)
				db.logger.Debug("table released without recompute",
					zap.String("table", t.pattern.String()))
				if _, seen := visited[t]; !seen {
					visited[t] = struct{}{}
					q.Push(t)
				}
			}
		}
	}
}
