package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBoltStoreRoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	store, err := openBolt(path)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("abc"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := store.Put("abc", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("def", []byte(`{"b":2}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get("abc")
	if err != nil || !ok || string(got) != `{"a":1}` {
		t.Fatalf("unexpected get %q ok=%v err=%v", got, ok, err)
	}

	n, err := store.Clear()
	if err != nil || n != 2 {
		t.Fatalf("Clear removed %d err=%v", n, err)
	}
	if _, ok, _ := store.Get("abc"); ok {
		t.Fatalf("expected key removed after clear")
	}
	if n, _ := store.Clear(); n != 0 {
		t.Fatalf("second clear removed %d", n)
	}
}

func TestBoltStoreReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := openBolt(path)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if err := store.Put("k1", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.Close()

	store, err = openBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if got, ok, _ := store.Get("k1"); !ok || string(got) != "v1" {
		t.Fatalf("expected persisted value, got %q ok=%v", got, ok)
	}
}

func TestFileStoreRoundTripAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store, err := NewStore("file", Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("expected missing, ok=%v err=%v", ok, err)
	}
	if err := store.Put("k1", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("k1", []byte("uno")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Put("k2", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get("k1")
	if err != nil || !ok || string(got) != "uno" {
		t.Fatalf("unexpected get %q ok=%v err=%v", got, ok, err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	// unrelated files are not counted or removed
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := store.Clear()
	if err != nil || n != 2 {
		t.Fatalf("Clear removed %d err=%v", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
	if _, ok, _ := store.Get("k2"); ok {
		t.Fatalf("expected k2 gone after clear")
	}
}

func TestFileStoreClearOnMissingDir(t *testing.T) {
	store, _ := NewStore("file", Options{Dir: filepath.Join(t.TempDir(), "never-created")})
	n, err := store.Clear()
	if err != nil || n != 0 {
		t.Fatalf("expected zero removals, got %d err=%v", n, err)
	}
}

func TestStoresRejectUnsafeKeys(t *testing.T) {
	store, _ := NewStore("file", Options{Dir: t.TempDir()})
	if err := store.Put("../escape", []byte("x")); err == nil {
		t.Fatalf("expected error for path traversal key")
	}
	if _, _, err := store.Get("a/b"); err == nil {
		t.Fatalf("expected error for key with separator")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("noop put: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Fatalf("noop store should never report a hit")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore("bbolt", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
	if _, err := NewStore("file", Options{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
	if _, err := NewStore("redis", Options{Dir: "x"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	store, err := NewStore(" BBolt ", Options{BoltPath: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	store.Close()
}
