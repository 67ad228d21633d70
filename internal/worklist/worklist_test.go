package worklist

import "testing"

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	if q.Len() != 5 {
		t.Fatalf("expected len 5, got %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("unexpected empty queue at %d", i)
		}
		if v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestQueueInterleaved(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Push("b")
	if v, _ := q.Pop(); v != "a" {
		t.Fatalf("expected a, got %s", v)
	}
	q.Push("c")
	want := []string{"b", "c"}
	for _, w := range want {
		v, ok := q.Pop()
		if !ok || v != w {
			t.Fatalf("expected %s, got %s (ok=%v)", w, v, ok)
		}
	}
}

func TestQueueCompaction(t *testing.T) {
	q := New[int]()
	// Push and pop enough to trigger compaction several times.
	next := 0
	for round := 0; round < 10; round++ {
		for i := 0; i < 100; i++ {
			q.Push(next + i)
		}
		for i := 0; i < 100; i++ {
			v, ok := q.Pop()
			if !ok {
				t.Fatalf("queue drained early at round %d item %d", round, i)
			}
			if v != next+i {
				t.Fatalf("order broken: expected %d, got %d", next+i, v)
			}
		}
		next += 100
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, len %d", q.Len())
	}
}
