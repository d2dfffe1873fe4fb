package view

import (
	"testing"

	"github.com/zappabad/memex/internal/activity"
)

func TestFeedWrap(t *testing.T) {
	f := NewFeed(3)
	for i := 1; i <= 5; i++ {
		f.Apply(Event{Entry: activity.Entry{ID: activity.EntryID(i)}})
	}
	if f.Count() != 3 {
		t.Fatalf("expected 3 entries, got %d", f.Count())
	}

	got := f.Latest(10)
	want := []activity.EntryID{5, 4, 3}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}

	last := f.Latest(1)
	if len(last) != 1 || last[0].ID != 5 {
		t.Errorf("expected newest entry, got %+v", last)
	}
	if f.Latest(0) != nil {
		t.Error("expected nil for Latest(0)")
	}
}

func TestFeedDefaultCapacity(t *testing.T) {
	f := NewFeed(0)
	for i := 1; i <= 150; i++ {
		f.Apply(Event{Entry: activity.Entry{ID: activity.EntryID(i)}})
	}
	if f.Count() != 100 || f.Latest(1)[0].ID != 150 {
		t.Errorf("expected 100 entries ending at 150, got %d", f.Count())
	}
}
