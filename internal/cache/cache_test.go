package cache

import (
	"path/filepath"
	"testing"

	"github.com/horizonanalytic/stratum/internal/vm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundles.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashIsStableAndContentSensitive(t *testing.T) {
	a := Hash([]byte("let x = 1"))
	b := Hash([]byte("let x = 1"))
	c := Hash([]byte("let x = 2"))
	if a != b {
		t.Fatalf("identical source hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different source hashed identically")
	}
}

func TestLookupMissReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Lookup(Hash([]byte("nothing cached")))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatalf("expected a cache miss")
	}
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	s := openTestStore(t)
	src := []byte("let x = 1\nx")
	hash := Hash(src)
	bundle := &vm.Bundle{SourceFile: "main.strat", Main: &vm.FunctionObj{Name: "<module>", Chunk: vm.NewChunk()}}

	if err := s.Store(hash, "main.strat", bundle); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok, err := s.Lookup(hash)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit after Store")
	}
	if got.SourceFile != "main.strat" {
		t.Errorf("got source file %q, want %q", got.SourceFile, "main.strat")
	}
	if got.Main.Name != "<module>" {
		t.Errorf("got main name %q, want %q", got.Main.Name, "<module>")
	}
}

func TestStoreReplacesExistingEntry(t *testing.T) {
	s := openTestStore(t)
	hash := Hash([]byte("v1"))
	first := &vm.Bundle{SourceFile: "a.strat", Main: &vm.FunctionObj{Name: "first", Chunk: vm.NewChunk()}}
	second := &vm.Bundle{SourceFile: "b.strat", Main: &vm.FunctionObj{Name: "second", Chunk: vm.NewChunk()}}

	if err := s.Store(hash, "a.strat", first); err != nil {
		t.Fatalf("Store first: %v", err)
	}
	if err := s.Store(hash, "b.strat", second); err != nil {
		t.Fatalf("Store second: %v", err)
	}
	got, ok, err := s.Lookup(hash)
	if err != nil || !ok {
		t.Fatalf("Lookup after replace: ok=%v err=%v", ok, err)
	}
	if got.SourceFile != "b.strat" {
		t.Errorf("got source file %q, want the replaced %q", got.SourceFile, "b.strat")
	}
}

func TestListAndClear(t *testing.T) {
	s := openTestStore(t)
	for i, src := range []string{"one.strat", "two.strat"} {
		hash := Hash([]byte(src))
		b := &vm.Bundle{SourceFile: src, Main: &vm.FunctionObj{Name: "m", Chunk: vm.NewChunk()}}
		if err := s.Store(hash, src, b); err != nil {
			t.Fatalf("Store %d: %v", i, err)
		}
	}
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err = s.List()
	if err != nil {
		t.Fatalf("List after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries after Clear, want 0", len(entries))
	}
}
