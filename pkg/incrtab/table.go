package incrtab

import "fmt"

// TableState is the lifecycle state of a memoized table.
type TableState int

const (
	// StateComplete means the answer set is current and may be served
	// directly.
	StateComplete TableState = iota

	// StateInvalid means at least one dependency changed since the table
	// was computed; the table is recomputed lazily on its next lookup.
	StateInvalid

	// StateEvaluating means an evaluation is in progress. A re-entrant
	// lookup during this window sees the partial answer set; cycle
	// resolution is the evaluator's responsibility.
	StateEvaluating
)

// String returns a human-readable state name.
func (s TableState) String() string {
	switch s {
	case StateComplete:
		return "complete"
	case StateInvalid:
		return "invalid"
	case StateEvaluating:
		return "evaluating"
	default:
		return fmt.Sprintf("TableState(%d)", int(s))
	}
}

// Table is the memoized answer set for one call pattern, together with its
// lifecycle state, falsecount (number of currently-unresolved invalidating
// dependencies), and, for lazy-monotonic relations, the queued delta of fact
// changes awaiting replay.
//
// Invariant: state == StateInvalid iff falsecount > 0, checked after every
// invalidation wave and re-evaluation.
type Table struct {
	pattern    *CallPattern
	answers    *AnswerSet
	state      TableState
	falsecount int
	pending    []propItem // lazy-monotonic delta, drained on next query
}

func newTable(pattern *CallPattern) *Table {
	return &Table{
		pattern: pattern,
		answers: NewAnswerSet(),
		state:   StateEvaluating,
	}
}

// Pattern returns the call pattern keying this table.
func (t *Table) Pattern() *CallPattern { return t.pattern }

// Answers returns the current answer set. Callers outside an evaluation must
// treat it as read-only.
func (t *Table) Answers() *AnswerSet { return t.answers }

// State returns the lifecycle state.
func (t *Table) State() TableState { return t.state }

// Falsecount returns the number of unresolved invalidating dependencies.
func (t *Table) Falsecount() int { return t.falsecount }

// Mode returns the maintenance mode inherited from the table's relation.
func (t *Table) Mode() Mode { return t.pattern.pred.mode }

// PendingLen returns the number of queued lazy-monotonic delta entries.
func (t *Table) PendingLen() int { return len(t.pending) }

// nodeKey implements Node.
func (t *Table) nodeKey() string {
	return fmt.Sprintf("t:%d", t.pattern.key)
}

// nodeLabel implements Node.
func (t *Table) nodeLabel() string {
	return t.pattern.String()
}

// checkInvariant verifies the falsecount/state correspondence.
func (t *Table) checkInvariant() error {
	if t.falsecount < 0 {
		return fmt.Errorf("%w: table %s has negative falsecount %d", ErrInvariant, t.pattern, t.falsecount)
	}
	switch t.state {
	case StateInvalid:
		if t.falsecount == 0 {
			return fmt.Errorf("%w: table %s is invalid with falsecount 0", ErrInvariant, t.pattern)
		}
	case StateComplete:
		if t.falsecount != 0 {
			return fmt.Errorf("%w: table %s is complete with falsecount %d", ErrInvariant, t.pattern, t.falsecount)
		}
	}
	return nil
}

// TableStore holds all tables keyed by call pattern.
type TableStore struct {
	tables map[uint64]*Table
}

// NewTableStore creates an empty table store.
func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[uint64]*Table)}
}

// Lookup returns the table for the pattern in any state, or nil if none
// exists. Lookup never triggers evaluation.
func (ts *TableStore) Lookup(pattern *CallPattern) *Table {
	return ts.tables[pattern.Key()]
}

// getOrCreate returns the table for the pattern, creating it in state
// evaluating if absent. The second result reports whether it was created.
func (ts *TableStore) getOrCreate(pattern *CallPattern) (*Table, bool) {
	if t, ok := ts.tables[pattern.Key()]; ok {
		return t, false
	}
	t := newTable(pattern)
	ts.tables[pattern.Key()] = t
	return t, true
}

// All returns every table in the store, in unspecified order.
func (ts *TableStore) All() []*Table {
	out := make([]*Table, 0, len(ts.tables))
	for _, t := range ts.tables {
		out = append(out, t)
	}
	return out
}

// Len returns the number of tables.
func (ts *TableStore) Len() int { return len(ts.tables) }

// Clear drops every table. The caller must also drop the dependency graph;
// Database.ClearTables does both.
func (ts *TableStore) Clear() {
	ts.tables = make(map[uint64]*Table)
}
