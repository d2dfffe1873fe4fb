package ring

import "testing"

func TestBufferEvictsOldest(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	if b.Len() != 3 || b.Cap() != 3 {
		t.Fatalf("expected len 3 cap 3, got %d %d", b.Len(), b.Cap())
	}

	got := b.Last(10)
	want := []int{5, 4, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if last := b.Last(1); len(last) != 1 || last[0] != 5 {
		t.Errorf("unexpected Last(1): %v", last)
	}
}

func TestBufferPartial(t *testing.T) {
	b := New[string](4)
	if b.Last(2) != nil {
		t.Error("expected nil from empty buffer")
	}
	b.Push("a")
	b.Push("b")
	got := b.Last(4)
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("unexpected Last(4): %v", got)
	}
	if b.Last(0) != nil {
		t.Error("expected nil for Last(0)")
	}
}

func TestBufferCopies(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	got := b.Last(1)
	got[0] = 99
	if b.Last(1)[0] != 1 {
		t.Error("Last shares memory with the buffer")
	}
}

func TestNewRaisesCapacity(t *testing.T) {
	b := New[int](0)
	b.Push(1)
	b.Push(2)
	if b.Cap() != 1 || b.Last(5)[0] != 2 {
		t.Errorf("expected single-slot buffer holding 2, got cap %d %v", b.Cap(), b.Last(5))
	}
}
