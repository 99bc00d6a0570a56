package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFile_SaveAndLoad(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nested"), LookupFile, time.Hour)

	if _, ok, err := f.Load(time.Now()); ok || err != nil {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := f.Save([]byte(`{"N1":{}}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, ok, err := f.Load(time.Now())
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"N1":{}}` {
		t.Errorf("unexpected data %s", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(f.Path))
	if len(entries) != 1 {
		t.Errorf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestFile_Expiry(t *testing.T) {
	f := New(t.TempDir(), SnapshotFile, DefaultSnapshotTTL)
	if err := f.Save([]byte("{}")); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-DefaultSnapshotTTL - time.Second)
	if err := os.Chtimes(f.Path, old, old); err != nil {
		t.Fatal(err)
	}
	if f.Fresh(time.Now()) {
		t.Error("expected file older than TTL to be stale")
	}
	if _, ok, _ := f.Load(time.Now()); ok {
		t.Error("stale file should not load")
	}

	// Seen from just after the write, the same file is fresh.
	if !f.Fresh(old.Add(time.Second)) {
		t.Error("expected file to be fresh within TTL")
	}
}

func TestFile_ZeroTTLDisablesCache(t *testing.T) {
	f := New(t.TempDir(), LookupFile, 0)
	if err := f.Save([]byte("{}")); err != nil {
		t.Fatal(err)
	}
	if f.Fresh(time.Now()) {
		t.Error("zero TTL should never be fresh")
	}
}
