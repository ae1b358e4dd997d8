package deviceinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prefs")
	store := NewFileStore(dir)

	prefs, err := store.Open("PREF_UNIQUE_ID")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := prefs.GetString("PREF_UNIQUE_ID"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on empty store, got %v", err)
	}
	if err := prefs.PutString("PREF_UNIQUE_ID", "abc"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := prefs.PutString("other", "xyz"); err != nil {
		t.Fatalf("PutString: %v", err)
	}

	reopened, err := NewFileStore(dir).Open("PREF_UNIQUE_ID")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for key, want := range map[string]string{"PREF_UNIQUE_ID": "abc", "other": "xyz"} {
		got, err := reopened.GetString(key)
		if err != nil || got != want {
			t.Errorf("GetString(%q) = %q, %v; want %q", key, got, err, want)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestFileStoreNamespacesIsolated(t *testing.T) {
	store := NewFileStore(t.TempDir())
	a, _ := store.Open("a")
	b, _ := store.Open("b")
	if err := a.PutString("k", "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetString("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("namespace b sees a's key: %v", err)
	}
}

func TestFileStoreBadInput(t *testing.T) {
	for _, ns := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := NewFileStore(t.TempDir()).Open(ns); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Open(%q) err = %v", ns, err)
		}
	}
	if _, err := NewFileStore("").Open("x"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty dir err = %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	prefs, err := NewFileStore(dir).Open("x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := prefs.GetString("k"); err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if err := prefs.PutString("k", "v"); err == nil {
		t.Fatal("PutString should not overwrite a corrupt file")
	}
}

func TestFileStoreWatchReset(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	prefs, _ := store.Open("ns")
	if err := prefs.PutString("k", "v"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 4)
	if err := store.WatchReset(ctx, "ns", func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("WatchReset: %v", err)
	}

	// 写入其他命名空间和覆盖写都不算清除
	other, _ := store.Open("other")
	if err := other.PutString("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := prefs.PutString("k", "v2"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
		t.Fatal("reset fired on a normal write")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.Remove(filepath.Join(dir, "ns.json")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reset not observed")
	}
}
