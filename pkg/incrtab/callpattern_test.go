package incrtab

import (
	"errors"
	"testing"
)

func TestCallPatternArityChecked(t *testing.T) {
	p := newPredicate("link", 2, ModeIncremental)
	if _, err := NewCallPattern(p, []string{"a"}); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("err = %v, want ErrArityMismatch", err)
	}
	if _, err := NewCallPattern(nil, []string{"a"}); !errors.Is(err, ErrUnknownPredicate) {
		t.Fatalf("err = %v, want ErrUnknownPredicate", err)
	}
}

func TestCallPatternMatches(t *testing.T) {
	p := newPredicate("link", 2, ModeIncremental)
	cp, err := NewCallPattern(p, []string{"a", Free})
	if err != nil {
		t.Fatalf("NewCallPattern: %v", err)
	}

	cases := []struct {
		tuple Tuple
		want  bool
	}{
		{Tuple{"a", "b"}, true},
		{Tuple{"a", "c"}, true},
		{Tuple{"b", "c"}, false},
		{Tuple{"a"}, false},
	}
	for _, tc := range cases {
		if got := cp.Matches(tc.tuple); got != tc.want {
			t.Errorf("Matches(%v) = %v, want %v", tc.tuple, got, tc.want)
		}
	}
}

func TestCallPatternIdentity(t *testing.T) {
	p := newPredicate("link", 2, ModeIncremental)
	a, _ := NewCallPattern(p, []string{"a", Free})
	b, _ := NewCallPattern(p, []string{"a", Free})
	c, _ := NewCallPattern(p, []string{Free, Free})

	if !a.Equal(b) || a.Key() != b.Key() {
		t.Fatalf("same pattern does not share identity")
	}
	if a.Equal(c) {
		t.Fatalf("distinct patterns reported equal")
	}
	if a.Equal(nil) {
		t.Fatalf("pattern equals nil")
	}
}

func TestCallPatternHasBoundArgs(t *testing.T) {
	p := newPredicate("link", 2, ModeIncremental)
	bound, _ := NewCallPattern(p, []string{"a", Free})
	free, _ := NewCallPattern(p, []string{Free, Free})
	if !bound.HasBoundArgs() {
		t.Fatalf("bound pattern reported free")
	}
	if free.HasBoundArgs() {
		t.Fatalf("all-free pattern reported bound")
	}
}

func TestCallPatternString(t *testing.T) {
	p := newPredicate("connected", 2, ModeIncremental)
	cp, _ := NewCallPattern(p, []string{"a", Free})
	if cp.String() != "connected(a, _)" {
		t.Fatalf("String = %q", cp.String())
	}
}
