package deviceinfo

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGetOrCreateUUIDStable(t *testing.T) {
	store := newMemStore()
	p := New(Host{Preferences: store}, nil)

	first := p.GetOrCreateUUID()
	second := p.GetOrCreateUUID()
	if first != second {
		t.Fatalf("uuid changed between calls: %s vs %s", first, second)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("invalid uuid %q: %v", first, err)
	}

	prefs := store.space(DefaultNamespace)
	if got := prefs.values[DefaultKey]; got != first {
		t.Fatalf("persisted %q, returned %q", got, first)
	}
	if prefs.puts != 1 {
		t.Fatalf("expected a single write, got %d", prefs.puts)
	}
}

func TestGetOrCreateUUIDReturnsExisting(t *testing.T) {
	store := newMemStore()
	store.space(DefaultNamespace).values[DefaultKey] = "legacy-id-from-previous-install"
	p := New(Host{Preferences: store}, nil)

	if got := p.GetOrCreateUUID(); got != "legacy-id-from-previous-install" {
		t.Fatalf("got %q, want stored value unchanged", got)
	}
	if puts := store.space(DefaultNamespace).puts; puts != 0 {
		t.Fatalf("existing id must not be rewritten, got %d writes", puts)
	}
}

func TestGetOrCreateUUIDCustomNamespace(t *testing.T) {
	store := newMemStore()
	p := New(Host{Preferences: store}, &Options{Namespace: "install", Key: "id"})

	id := p.GetOrCreateUUID()
	if got := store.space("install").values["id"]; got != id {
		t.Fatalf("persisted %q under custom key, returned %q", got, id)
	}
	if len(store.space(DefaultNamespace).values) != 0 {
		t.Fatal("default namespace should stay empty")
	}
}

func TestGetOrCreateUUIDStorageFailure(t *testing.T) {
	for name, store := range map[string]PreferenceStore{
		"open fails":  failingStore{},
		"write fails": readOnlyStore{},
		"no store":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			p := New(Host{Preferences: store}, nil)
			a := p.GetOrCreateUUID()
			b := p.GetOrCreateUUID()
			for _, id := range []string{a, b} {
				if _, err := uuid.Parse(id); err != nil {
					t.Fatalf("invalid fallback uuid %q: %v", id, err)
				}
			}
			if a == b {
				t.Fatalf("fallback uuid should not be cached, got %s twice", a)
			}
		})
	}
}

func TestGetOrCreateUUIDPersistsAcrossProviders(t *testing.T) {
	dir := t.TempDir()
	first := New(Host{Preferences: NewFileStore(dir)}, nil).GetOrCreateUUID()
	second := New(Host{Preferences: NewFileStore(dir)}, nil).GetOrCreateUUID()
	if first != second {
		t.Fatalf("uuid not persisted: %s vs %s", first, second)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultNamespace+".json")); err != nil {
		t.Fatalf("preferences file missing: %v", err)
	}
}

func TestWatchStoreForgetsUUIDOnReset(t *testing.T) {
	dir := t.TempDir()
	p := New(Host{Preferences: NewFileStore(dir)}, nil)
	before := p.GetOrCreateUUID()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resets := make(chan struct{}, 1)
	if err := p.WatchStore(ctx, func() {
		select {
		case resets <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("WatchStore: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, DefaultNamespace+".json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	select {
	case <-resets:
	case <-time.After(5 * time.Second):
		t.Fatal("reset was not observed")
	}

	after := p.GetOrCreateUUID()
	if after == before {
		t.Fatal("expected a new uuid after the store was cleared")
	}
}

// waitForNewUUID 轮询直到 Provider 返回与 old 不同的标识
func waitForNewUUID(t *testing.T, p *Provider, old string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if id := p.GetOrCreateUUID(); id != old {
			return id
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("uuid %s still returned after the store was cleared", old)
	return ""
}

func TestWatchStoreSurvivesRepeatedDirRemoval(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prefs")
	p := New(Host{Preferences: NewFileStore(dir)}, nil)
	first := p.GetOrCreateUUID()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var resets atomic.Int32
	if err := p.WatchStore(ctx, func() { resets.Add(1) }); err != nil {
		t.Fatalf("WatchStore: %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	second := waitForNewUUID(t, p, first)
	if _, err := os.Stat(filepath.Join(dir, DefaultNamespace+".json")); err != nil {
		t.Fatalf("new uuid not persisted: %v", err)
	}

	// 等待上一轮清除的剩余事件处理完
	time.Sleep(200 * time.Millisecond)
	afterFirst := resets.Load()
	if afterFirst == 0 {
		t.Fatal("first clear not observed")
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	third := waitForNewUUID(t, p, second)
	if third == first {
		t.Fatal("uuid reused across clears")
	}
	time.Sleep(50 * time.Millisecond)
	if resets.Load() <= afterFirst {
		t.Fatalf("second clear not observed, resets = %d", resets.Load())
	}
}

func TestWatchStoreUnsupported(t *testing.T) {
	p := New(Host{Preferences: newMemStore()}, nil)
	if err := p.WatchStore(context.Background(), nil); err != nil {
		t.Fatalf("WatchStore on plain store: %v", err)
	}
}
