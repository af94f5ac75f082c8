package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: %v", err)
	}

	if err := s.Put(ctx, "k", []byte(`{"tokens":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", []byte(`{"tokens":2}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"tokens":2}` {
		t.Fatalf("Get = %s, want the second write", got)
	}

	if err := s.Put(ctx, "other", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: %v", err)
	}
	if b, err := s.Get(ctx, "other"); err != nil || string(b) != "x" {
		t.Fatalf("Delete removed the wrong key: %s %v", b, err)
	}

	// deleting a missing key is not an error
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saves.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// saves survive a reopen
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if b, err := s.Get(context.Background(), "other"); err != nil || string(b) != "x" {
		t.Fatalf("reopened store lost data: %s %v", b, err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Put(context.Background(), "k", buf)
	buf[0] = 'z'
	got, _ := m.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("stored blob aliased caller buffer: %s", got)
	}
}
