package incrtab

import (
	"context"
	"errors"
	"testing"
)

func TestAddRuleValidation(t *testing.T) {
	re := NewRuleEvaluator()

	if err := re.AddRule(NewRule(L("", "X"))); err == nil {
		t.Fatalf("empty head predicate accepted")
	}
	if err := re.AddRule(NewRule(L("p", "X"), L("q", "Y"))); err == nil {
		t.Fatalf("non-range-restricted rule accepted")
	}
	if err := re.AddRule(NewRule(L("p", Free), L("q", "X"))); err == nil {
		t.Fatalf("anonymous variable in head accepted")
	}
	if err := re.AddRule(NewRule(L("p", "X"), L("q", "X"))); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	if err := re.AddRule(NewRule(L("p", "X", "Y"), L("q", "X"), L("q", "Y"))); !errors.Is(err, ErrConflictingDeclaration) {
		t.Fatalf("arity conflict err = %v", err)
	}

	// Constants in the head are fine without body support.
	if err := re.AddRule(NewRule(L("flag", "on"), L("q", "X"))); err != nil {
		t.Fatalf("constant head rejected: %v", err)
	}
}

func TestMustAddRulePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustAddRule did not panic on invalid rule")
		}
	}()
	NewRuleEvaluator().MustAddRule(NewRule(L("p", "X"), L("q", "Y")))
}

func TestRuleStrings(t *testing.T) {
	r := NewRule(L("connected", "X", "Z"), L("connected", "X", "Y"), L("link", "Y", "Z"))
	want := "connected(X, Z) :- connected(X, Y), link(Y, Z)"
	if r.String() != want {
		t.Fatalf("String = %q, want %q", r.String(), want)
	}
	fact := NewRule(L("link", "a", "b"))
	if fact.String() != "link(a, b)" {
		t.Fatalf("bodyless String = %q", fact.String())
	}
}

func TestRuleJoinAcrossPredicates(t *testing.T) {
	ctx := context.Background()
	re := NewRuleEvaluator()
	re.MustAddRule(NewRule(L("grandparent", "X", "Z"), L("parent", "X", "Y"), L("parent", "Y", "Z")))

	db, err := NewDatabase(re, nil)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	mustDeclare(t, db, "parent", 2, ModeIncremental)
	mustDeclare(t, db, "grandparent", 2, ModeIncremental)
	mustAssert(t, db, "parent", "ann", "bea")
	mustAssert(t, db, "parent", "bea", "cal")
	mustAssert(t, db, "parent", "bea", "dot")

	answers, err := db.Query(ctx, "grandparent", "ann", Free)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("answers = %v, want ann's two grandchildren", answers)
	}
	for _, a := range answers {
		if a[0] != "ann" {
			t.Fatalf("answer %v escapes the bound pattern", a)
		}
	}
}

func TestRuleConstantsInBody(t *testing.T) {
	ctx := context.Background()
	re := NewRuleEvaluator()
	re.MustAddRule(NewRule(L("flagged", "X"), L("item", "X", "bad")))

	db, err := NewDatabase(re, nil)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	mustDeclare(t, db, "item", 2, ModeIncremental)
	mustDeclare(t, db, "flagged", 1, ModeIncremental)
	mustAssert(t, db, "item", "a", "good")
	mustAssert(t, db, "item", "b", "bad")

	answers, err := db.Query(ctx, "flagged", Free)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(answers) != 1 || !answers[0].Equal(Tuple{"b"}) {
		t.Fatalf("answers = %v, want [(b)]", answers)
	}
}

func TestRuleRelationOwnFactsContribute(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase(transitiveClosure(), nil)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	mustDeclare(t, db, "link", 2, ModeIncremental)
	mustDeclare(t, db, "connected", 2, ModeIncremental)
	mustAssert(t, db, "link", "a", "b")
	mustAssert(t, db, "connected", "island", "x")

	answers, err := db.Query(ctx, "connected", Free, Free)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	found := false
	for _, a := range answers {
		if a.Equal(Tuple{"island", "x"}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("direct fact missing from %v", answers)
	}
}

func TestRuleArityMismatchWithDeclaration(t *testing.T) {
	ctx := context.Background()
	re := NewRuleEvaluator()
	re.MustAddRule(NewRule(L("p", "X"), L("q", "X")))

	db, err := NewDatabase(re, nil)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	mustDeclare(t, db, "q", 1, ModeIncremental)
	mustDeclare(t, db, "p", 2, ModeIncremental) // rules say arity 1

	if _, err := db.Query(ctx, "p", Free, Free); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("err = %v, want ErrArityMismatch", err)
	}
}

func TestIsRuleVar(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"X", true},
		{"Xyz", true},
		{"x", false},
		{"_", false},
		{"", false},
		{"1", false},
	}
	for _, tc := range cases {
		if got := isRuleVar(tc.in); got != tc.want {
			t.Errorf("isRuleVar(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
