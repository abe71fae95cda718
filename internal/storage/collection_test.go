package storage

import "testing"

func TestCollectionReplaceNotMerge(t *testing.T) {
	c := NewCollection[string]()

	seq1 := c.Begin()
	c.Apply(seq1, []string{"P1", "P2"})

	seq2 := c.Begin()
	c.Apply(seq2, []string{"P2", "P3"})

	got := c.Items()
	if len(got) != 2 || got[0] != "P2" || got[1] != "P3" {
		t.Errorf("after second cycle items = %v, want [P2 P3]", got)
	}
}

func TestCollectionStaleResponseDiscarded(t *testing.T) {
	c := NewCollection[string]()

	seq1 := c.Begin()
	seq2 := c.Begin()

	// Newer request resolves first
	if !c.Apply(seq2, []string{"new"}) {
		t.Fatal("newest response must apply")
	}
	// Older, slower response arrives after
	if c.Apply(seq1, []string{"old"}) {
		t.Error("stale response must be discarded")
	}

	got := c.Items()
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("items = %v, want [new]", got)
	}
}

func TestCollectionItemsReturnsCopy(t *testing.T) {
	c := NewCollection[int]()
	c.Apply(c.Begin(), []int{1, 2, 3})

	items := c.Items()
	items[0] = 99

	if c.Items()[0] != 1 {
		t.Error("mutating the returned slice must not affect the collection")
	}
}

func TestMemoryStorageBasics(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	s.Set("a", 1)
	s.Set("b", 2)

	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v,%v", v, ok)
	}
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
	if !s.Delete("a") {
		t.Error("Delete(a) should report true")
	}
	if s.Delete("a") {
		t.Error("second Delete(a) should report false")
	}
	if len(s.GetAllValues()) != 1 {
		t.Error("one value should remain")
	}
}
