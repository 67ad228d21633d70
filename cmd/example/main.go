// This example walks through the core incremental tabling workflow:
// declaring relations, asserting facts, querying memoized tables, and
// watching invalidation and re-evaluation react to changes.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gitrdm/incrtab/pkg/incrtab"
)

func main() {
	fmt.Println("=== Incremental Tabling Examples ===")
	fmt.Println()

	basicMemoization()
	incrementalMaintenance()
	monotonicGrowth()
}

// basicMemoization shows tables being created once and served from cache.
func basicMemoization() {
	fmt.Println("1. Basic Memoization:")

	db := ancestryDB()
	ctx := context.Background()

	answers, err := db.Query(ctx, "ancestor", "ann", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   ancestor(ann, _) => %v\n", answers)

	// The second query is a pure cache hit.
	if _, err := db.Query(ctx, "ancestor", "ann", incrtab.Free); err != nil {
		log.Fatal(err)
	}
	st := db.Stats()
	fmt.Printf("   evaluator calls: %d, cache hits: %d\n", st.EvaluatorCalls, st.CacheHits)
	fmt.Println()
}

// incrementalMaintenance shows a retract invalidating a table and the next
// query recomputing it.
func incrementalMaintenance() {
	fmt.Println("2. Incremental Maintenance:")

	db := ancestryDB()
	ctx := context.Background()

	before, err := db.Query(ctx, "ancestor", "ann", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   before retract: %v\n", before)

	if err := db.Retract("parent", "bea", "cal"); err != nil {
		log.Fatal(err)
	}
	tbl, err := db.Lookup("ancestor", "ann", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   after retract:  table state=%s falsecount=%d\n", tbl.State(), tbl.Falsecount())

	after, err := db.Query(ctx, "ancestor", "ann", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   requeried:      %v\n", after)
	fmt.Println()
}

// monotonicGrowth shows new facts flowing into existing tables through delta
// propagation, without any re-evaluation.
func monotonicGrowth() {
	fmt.Println("3. Monotonic Growth:")

	re := incrtab.NewRuleEvaluator()
	re.MustAddRule(incrtab.NewRule(
		incrtab.L("reach", "X", "Z"),
		incrtab.L("edge", "X", "Z")))
	re.MustAddRule(incrtab.NewRule(
		incrtab.L("reach", "X", "Z"),
		incrtab.L("reach", "X", "Y"),
		incrtab.L("edge", "Y", "Z")))

	db, err := incrtab.NewDatabase(re, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range []string{"edge", "reach"} {
		if err := db.Declare(name, 2, incrtab.ModeMonotonic); err != nil {
			log.Fatal(err)
		}
	}
	if err := db.Assert("edge", "a", "b"); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	answers, err := db.Query(ctx, "reach", "a", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   reach(a, _) = %v\n", answers)
	calls := db.Stats().EvaluatorCalls

	if err := db.Assert("edge", "b", "c"); err != nil {
		log.Fatal(err)
	}
	answers, err = db.Query(ctx, "reach", "a", incrtab.Free)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   after edge(b, c): reach(a, _) = %v\n", answers)
	fmt.Printf("   extra evaluator calls: %d (propagation only)\n", db.Stats().EvaluatorCalls-calls)
	fmt.Println()
}

// ancestryDB builds a small incremental family database.
func ancestryDB() *incrtab.Database {
	re := incrtab.NewRuleEvaluator()
	re.MustAddRule(incrtab.NewRule(
		incrtab.L("ancestor", "X", "Y"),
		incrtab.L("parent", "X", "Y")))
	re.MustAddRule(incrtab.NewRule(
		incrtab.L("ancestor", "X", "Z"),
		incrtab.L("ancestor", "X", "Y"),
		incrtab.L("parent", "Y", "Z")))

	db, err := incrtab.NewDatabase(re, nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Declare("parent", 2, incrtab.ModeIncremental); err != nil {
		log.Fatal(err)
	}
	if err := db.Declare("ancestor", 2, incrtab.ModeIncremental); err != nil {
		log.Fatal(err)
	}
	for _, p := range [][2]string{{"ann", "bea"}, {"bea", "cal"}, {"cal", "dot"}} {
		if err := db.Assert("parent", p[0], p[1]); err != nil {
			log.Fatal(err)
		}
	}
	return db
}
