package incrtab

import "testing"

func TestAnswerSetAddIdempotent(t *testing.T) {
	s := NewAnswerSet()
	if !s.Add(Tuple{"a", "b"}) {
		t.Fatalf("first Add returned false")
	}
	if s.Add(Tuple{"a", "b"}) {
		t.Fatalf("duplicate Add returned true")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if !s.Has(Tuple{"a", "b"}) {
		t.Fatalf("Has = false for present tuple")
	}
	if s.Has(Tuple{"a", "c"}) {
		t.Fatalf("Has = true for absent tuple")
	}
}

func TestAnswerSetTuplesAreCopies(t *testing.T) {
	s := NewAnswerSet()
	s.Add(Tuple{"a", "b"})
	out := s.Tuples()
	out[0][0] = "mutated"
	if !s.Has(Tuple{"a", "b"}) {
		t.Fatalf("mutating Tuples() result leaked into the set")
	}
}

func TestAnswerSetEqualIgnoresOrder(t *testing.T) {
	a := NewAnswerSet()
	a.Add(Tuple{"x"})
	a.Add(Tuple{"y"})
	b := NewAnswerSet()
	b.Add(Tuple{"y"})
	b.Add(Tuple{"x"})
	if !a.Equal(b) {
		t.Fatalf("sets with same content in different order not equal")
	}
	b.Add(Tuple{"z"})
	if a.Equal(b) {
		t.Fatalf("sets with different content reported equal")
	}
}

func TestAnswerSetEqualNil(t *testing.T) {
	empty := NewAnswerSet()
	if !empty.Equal(nil) {
		t.Fatalf("empty set should equal nil")
	}
	nonEmpty := NewAnswerSet()
	nonEmpty.Add(Tuple{"a"})
	if nonEmpty.Equal(nil) {
		t.Fatalf("non-empty set should not equal nil")
	}
}

func TestAnswerSetCloneIndependent(t *testing.T) {
	a := NewAnswerSet()
	a.Add(Tuple{"x"})
	c := a.Clone()
	c.Add(Tuple{"y"})
	if a.Has(Tuple{"y"}) {
		t.Fatalf("mutation of clone leaked into original")
	}
	if !c.Has(Tuple{"x"}) {
		t.Fatalf("clone missing original tuple")
	}
}
