package incrtab

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds tuning knobs for a Database.
type Config struct {
	// Logger receives debug-level maintenance events (invalidations,
	// releases, propagation). Nil disables logging.
	Logger *zap.Logger

	// MaxPropagationSteps bounds a single monotonic propagation cascade as
	// a safety net against a misbehaving propagation function. 0 means the
	// default bound.
	MaxPropagationSteps int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxPropagationSteps: 1_000_000,
	}
}

// Stats is a snapshot of engine counters. EvaluatorCalls is the
// instrumentation hook for verifying that unaffected tables are not
// recomputed.
type Stats struct {
	EvaluatorCalls    int64
	CacheHits         int64
	CacheMisses       int64
	TablesCreated     int64
	InvalidationWalks int64
	TablesInvalidated int64
	NoopCompletions   int64
	PropagatedAnswers int64
	PropagationSteps  int64
}

// Database is one self-contained tabling instance: fact store, table store,
// and dependency graph, maintained against a single external evaluator.
// Multiple independent instances can coexist; there is no process-wide
// state.
//
// All operations are serialized behind one mutex. The falsecount and
// worklist protocols require that each change event is fully classified
// before the next mutation is applied, and that two re-evaluations of the
// same call pattern never interleave.
type Database struct {
	id        uuid.UUID
	mu        sync.Mutex
	facts     *FactStore
	tables    *TableStore
	idg       *IDG
	evaluator Evaluator
	config    *Config
	logger    *zap.Logger

	statEvaluatorCalls    atomic.Int64
	statCacheHits         atomic.Int64
	statCacheMisses       atomic.Int64
	statTablesCreated     atomic.Int64
	statInvalidationWalks atomic.Int64
	statTablesInvalidated atomic.Int64
	statNoopCompletions   atomic.Int64
	statPropagatedAnswers atomic.Int64
	statPropagationSteps  atomic.Int64
}

// NewDatabase creates a database instance bound to the given evaluator.
// A nil config uses DefaultConfig.
func NewDatabase(evaluator Evaluator, config *Config) (*Database, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("incrtab: evaluator cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	logger = logger.With(zap.String("database", id.String()))
	return &Database{
		id:        id,
		facts:     NewFactStore(logger),
		tables:    NewTableStore(),
		idg:       NewIDG(),
		evaluator: evaluator,
		config:    config,
		logger:    logger,
	}, nil
}

// ID returns the instance identifier used in log output.
func (db *Database) ID() uuid.UUID { return db.id }

// Declare registers a relation with its arity and maintenance mode. Both
// dynamic predicates and rule-defined relations must be declared before use;
// the mode governs how the relation's tables are maintained and how changes
// to its facts are classified.
func (db *Database) Declare(name string, arity int, mode Mode) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.facts.Declare(name, arity, mode)
	return err
}

// Assert adds a ground fact and applies the resulting maintenance:
// invalidation of dependents for incremental relations, additive propagation
// for monotonic ones. Asserting a fact already present is a no-op.
func (db *Database) Assert(name string, fact ...string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	ch, err := db.facts.Assert(name, Tuple(fact))
	if err != nil {
		return err
	}
	if ch == nil {
		return nil
	}
	return db.applyChange(ch)
}

// Retract removes a ground fact. Retracts always follow the incremental
// path: dependents are invalidated and lazily recomputed, even for
// monotonic relations (the monotonic fast path only applies to growth).
// Retracting an absent fact is a no-op.
func (db *Database) Retract(name string, fact ...string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	ch, err := db.facts.Retract(name, Tuple(fact))
	if err != nil {
		return err
	}
	if ch == nil {
		return nil
	}
	return db.applyChange(ch)
}

// Query returns the answer set for the relation under the given binding
// pattern (constants or Free per argument). The table is created and
// evaluated on first use, served from cache while complete, re-evaluated
// when invalid, and has its pending delta replayed when lazy-monotonic.
func (db *Database) Query(ctx context.Context, name string, args ...string) ([]Tuple, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cp, err := db.pattern(name, args...)
	if err != nil {
		return nil, err
	}
	t, err := db.getOrEvaluate(ctx, cp)
	if err != nil {
		return nil, err
	}
	return t.answers.Tuples(), nil
}

// Lookup returns the table for the pattern in whatever state it is in, or
// nil if the pattern was never queried. Lookup never triggers evaluation.
func (db *Database) Lookup(name string, args ...string) (*Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cp, err := db.pattern(name, args...)
	if err != nil {
		return nil, err
	}
	return db.tables.Lookup(cp), nil
}

// Facts returns the current extension of a dynamic predicate.
func (db *Database) Facts(name string) ([]Tuple, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.facts.Facts(name)
}

// Stats returns a snapshot of the engine counters.
func (db *Database) Stats() Stats {
	return Stats{
		EvaluatorCalls:    db.statEvaluatorCalls.Load(),
		CacheHits:         db.statCacheHits.Load(),
		CacheMisses:       db.statCacheMisses.Load(),
		TablesCreated:     db.statTablesCreated.Load(),
		InvalidationWalks: db.statInvalidationWalks.Load(),
		TablesInvalidated: db.statTablesInvalidated.Load(),
		NoopCompletions:   db.statNoopCompletions.Load(),
		PropagatedAnswers: db.statPropagatedAnswers.Load(),
		PropagationSteps:  db.statPropagationSteps.Load(),
	}
}

// ClearTables drops every table and dependency edge while keeping predicate
// declarations and fact extensions. Subsequent queries rebuild tables from
// scratch.
func (db *Database) ClearTables() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables.Clear()
	db.idg.Clear()
	db.logger.Debug("tables cleared")
}

// CheckInvariants verifies the falsecount/state correspondence of every
// table. It returns an ErrInvariant the moment a mismatch is found; a
// mismatch indicates a core bug, not a recoverable condition.
func (db *Database) CheckInvariants() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, t := range db.tables.All() {
		if err := t.checkInvariant(); err != nil {
			return err
		}
	}
	return nil
}

// pattern resolves a declared relation and builds a call pattern for it.
func (db *Database) pattern(name string, args ...string) (*CallPattern, error) {
	p := db.facts.Lookup(name)
	if p == nil {
		return nil, unknownPredicate(name, len(args))
	}
	return NewCallPattern(p, args)
}

// getOrEvaluate is the primary query entry point (mutex already held).
func (db *Database) getOrEvaluate(ctx context.Context, cp *CallPattern) (*Table, error) {
	t, created := db.tables.getOrCreate(cp)
	switch {
	case created:
		db.statTablesCreated.Add(1)
		db.statCacheMisses.Add(1)
		if err := db.evaluate(ctx, t); err != nil {
			// Drop the half-built table so a later query retries cleanly.
			db.idg.ClearOutgoing(t)
			delete(db.tables.tables, cp.Key())
			return nil, err
		}
	case t.state == StateEvaluating:
		// Re-entrant call on a table mid-evaluation: surface the partial
		// answers; cycle resolution belongs to the evaluator.
		return t, nil
	case t.state == StateInvalid:
		db.statCacheMisses.Add(1)
		if err := db.reevaluate(ctx, t); err != nil {
			return nil, err
		}
	default:
		db.statCacheHits.Add(1)
	}

	// Draining pending deltas can invalidate the table being served: a
	// replayed delta grows a dependency, and the cascade bumps this table
	// through an incremental in-edge. Loop until the table survives a drain
	// in the complete state; re-evaluation leaves the replayed dependencies
	// caught up, so a second pass through the loop finds nothing to drain.
	for {
		if err := db.drainLazy(t); err != nil {
			return nil, err
		}
		if t.state != StateInvalid {
			return t, nil
		}
		db.statCacheMisses.Add(1)
		if err := db.reevaluate(ctx, t); err != nil {
			return nil, err
		}
	}
}

// drainLazy replays pending deltas before a table is served, dependencies
// first: a table whose answers flow in from another table (a bound pattern
// filtering its relation's canonical table, say) is only current once that
// table has caught up, and the catch-up cascade may land further items on the
// queried table itself. The visited set bounds the walk on cyclic graphs.
func (db *Database) drainLazy(t *Table) error {
	visited := make(map[*Table]struct{})
	var walk func(x *Table) error
	walk = func(x *Table) error {
		if _, seen := visited[x]; seen {
			return nil
		}
		visited[x] = struct{}{}
		for _, e := range db.idg.OutgoingOf(x) {
			if dep, ok := e.dependency.(*Table); ok {
				if err := walk(dep); err != nil {
					return err
				}
			}
		}
		if len(x.pending) > 0 {
			return db.drainPending(x)
		}
		return nil
	}
	return walk(t)
}

// evalEnv is the Env handed to the evaluator for one evaluation. It runs
// with the database mutex held; nested Answers calls re-enter the table
// store on the same goroutine.
type evalEnv struct {
	db   *Database
	self *Table
}

func (e *evalEnv) Self() *Table { return e.self }

func (e *evalEnv) Facts(name string) (*Predicate, []Tuple, error) {
	p := e.db.facts.Lookup(name)
	if p == nil {
		return nil, nil, unknownPredicate(name, 0)
	}
	return p, p.facts.Tuples(), nil
}

func (e *evalEnv) Answers(ctx context.Context, call *CallPattern) (*Table, []Tuple, error) {
	t, err := e.db.getOrEvaluate(ctx, call)
	if err != nil {
		return nil, nil, err
	}
	return t, t.answers.Tuples(), nil
}

func (e *evalEnv) DependsOn(node Node, fn PropagationFunc) {
	var depMode Mode
	switch n := node.(type) {
	case *Predicate:
		depMode = n.mode
	case *Table:
		depMode = n.Mode()
	default:
		return
	}
	if depMode == ModeNone {
		return // plain relations are never tracked in the IDG
	}
	mode := EdgeIncremental
	if depMode.isMonotonic() && e.self.Mode().isMonotonic() && fn != nil {
		mode = EdgeMonotonic
	}
	e.db.idg.Record(e.self, node, mode, fn)
}

func (e *evalEnv) Pattern(name string, args ...string) (*CallPattern, error) {
	return e.db.pattern(name, args...)
}

func (e *evalEnv) Reader() Reader { return dbReader{db: e.db} }

// dbReader reads extensions at propagation time. Propagation runs under the
// database mutex, so plain field access is safe.
type dbReader struct {
	db *Database
}

func (r dbReader) FactsOf(p *Predicate) []Tuple { return p.facts.Tuples() }

func (r dbReader) AnswersOf(t *Table) []Tuple { return t.answers.Tuples() }
