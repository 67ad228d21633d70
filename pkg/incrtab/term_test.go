package incrtab

import "testing"

func TestTupleKeyBoundaries(t *testing.T) {
	// Length-prefixing must keep concatenation-equal tuples distinct.
	a := Tuple{"ab", "c"}
	b := Tuple{"a", "bc"}
	if a.Key() == b.Key() {
		t.Fatalf("tuples %v and %v collide", a, b)
	}
	if a.Key() != (Tuple{"ab", "c"}).Key() {
		t.Fatalf("equal tuples hash differently")
	}
}

func TestTupleEqual(t *testing.T) {
	if !(Tuple{"a", "b"}).Equal(Tuple{"a", "b"}) {
		t.Fatalf("identical tuples not equal")
	}
	if (Tuple{"a", "b"}).Equal(Tuple{"a"}) {
		t.Fatalf("different lengths reported equal")
	}
	if (Tuple{"a", "b"}).Equal(Tuple{"a", "c"}) {
		t.Fatalf("different values reported equal")
	}
}

func TestTupleString(t *testing.T) {
	got := Tuple{"a", "b"}.String()
	if got != "(a, b)" {
		t.Fatalf("String = %q, want %q", got, "(a, b)")
	}
}
