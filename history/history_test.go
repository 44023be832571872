package history

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func TestAppendListNewestFirst(t *testing.T) {
	s := newStore(t)
	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.Append(text); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	want := []string{"third", "second", "first"}
	for i, r := range recs {
		if r.Text != want[i] {
			t.Errorf("recs[%d] = %q, want %q", i, r.Text, want[i])
		}
		if r.ID == uuid.Nil {
			t.Errorf("recs[%d] has nil id", i)
		}
	}
	if !recs[0].Timestamp.After(recs[2].Timestamp) {
		t.Error("timestamps not descending")
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	a, _ := s.Append("keep")
	b, _ := s.Append("drop")

	if err := s.Delete(b.ID); err != nil {
		t.Fatal(err)
	}
	recs, _ := s.List()
	if len(recs) != 1 || recs[0].ID != a.ID {
		t.Errorf("after delete: %v", recs)
	}
	if err := s.Delete(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestClear(t *testing.T) {
	s := newStore(t)
	s.Append("a")
	s.Append("b")

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	recs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("len = %d after clear", len(recs))
	}
}

func TestOpenOnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	r, err := s.Append("persisted")
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	recs, _ := s.List()
	if len(recs) != 1 || recs[0].ID != r.ID || recs[0].Text != "persisted" {
		t.Errorf("reopened store = %v", recs)
	}
}
