package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "manifest.db")); err != nil {
		t.Errorf("manifest.db should exist: %v", err)
	}
}

func TestOpenCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	s.Close()
}

func TestRecordAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.Record(ctx, Case{
			Group:   "tiny",
			Index:   i,
			Path:    filepath.Join("tiny", "0.in"),
			Seed:    42,
			Sheets:  3,
			Queries: 3,
			SHA256:  "abc",
		})
		if err != nil {
			t.Fatalf("Record(%d) error: %v", i, err)
		}
	}

	count, err := s.Count(ctx, "tiny")
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Count(tiny) = %d, want 3", count)
	}

	count, err = s.Count(ctx, "small")
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 0 {
		t.Errorf("Count(small) = %d, want 0", count)
	}
}

func TestRecordUpsertsSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := Case{Group: "tiny", Index: 0, Path: "tiny/0.in", SHA256: "old"}
	if err := s.Record(ctx, first); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	second := first
	second.SHA256 = "new"
	second.Seed = 7
	if err := s.Record(ctx, second); err != nil {
		t.Fatalf("Record() upsert error: %v", err)
	}

	cases, err := s.List(ctx, "tiny")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("List() returned %d cases, want 1", len(cases))
	}
	if cases[0].SHA256 != "new" || cases[0].Seed != 7 {
		t.Errorf("slot not replaced: %+v", cases[0])
	}
}

func TestRecordValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Case{Group: "", Index: 0}); err == nil {
		t.Error("Record() accepted an empty group")
	}
	if err := s.Record(ctx, Case{Group: "tiny", Index: -1}); err == nil {
		t.Error("Record() accepted a negative index")
	}
}

func TestListOrdersByIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, i := range []int{2, 0, 1} {
		if err := s.Record(ctx, Case{Group: "g", Index: i, Path: "p", SHA256: "h"}); err != nil {
			t.Fatalf("Record(%d) error: %v", i, err)
		}
	}

	cases, err := s.List(ctx, "g")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for i, c := range cases {
		if c.Index != i {
			t.Errorf("cases[%d].Index = %d, want %d", i, c.Index, i)
		}
	}
}

func TestCreatedAtRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	if err := s.Record(ctx, Case{Group: "g", Index: 0, CreatedAt: ts}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	cases, err := s.List(ctx, "g")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if !cases[0].CreatedAt.Equal(ts) {
		t.Errorf("CreatedAt = %v, want %v", cases[0].CreatedAt, ts)
	}
}

func TestGroupStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.Record(ctx, Case{Group: "tiny", Index: i}); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	if err := s.Record(ctx, Case{Group: "small", Index: 0}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	stats, err := s.GroupStats(ctx)
	if err != nil {
		t.Fatalf("GroupStats() error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("GroupStats() returned %d groups, want 2", len(stats))
	}
	// Ordered by group name: small before tiny.
	if stats[0].Group != "small" || stats[0].Count != 1 {
		t.Errorf("stats[0] = %+v, want small/1", stats[0])
	}
	if stats[1].Group != "tiny" || stats[1].Count != 2 {
		t.Errorf("stats[1] = %+v, want tiny/2", stats[1])
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Record(ctx, Case{Group: "g", Index: 0}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()

	count, err := s2.Count(ctx, "g")
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after reopen = %d, want 1", count)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.in")
	if err := os.WriteFile(path, []byte("1 0\nP 0 0 1 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}

	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if h1 != h2 {
		t.Error("hashing the same file twice gave different digests")
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("HashFile() should fail on a missing file")
	}
}
