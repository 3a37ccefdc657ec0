package cache

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "layout:k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "layout:k"); hit || data != nil || err != nil {
		t.Errorf("Get = (%q, %v, %v), want clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, "layout:k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "layout:abc"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte(`[1,2,3]`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `[1,2,3]` {
		t.Errorf("Get = %s, want [1,2,3]", data)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheTruncatedEntry(t *testing.T) {
	ctx := context.Background()
	fc := &FileCache{dir: t.TempDir()}
	path := fc.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := fc.Get(ctx, "k"); hit || err != nil {
		t.Errorf("truncated entry = hit %v, err %v; want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("truncated entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(fc.Dir(), "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := fc.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(fc.Dir())
	if len(entries) != 1 || entries[0].Name() != "notes.txt" {
		t.Errorf("cache dir after Clear = %v, want only notes.txt", entries)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if len(h) != 64 {
		t.Errorf("len(Hash) = %d, want 64 hex chars", len(h))
	}
	if h != Hash([]byte("hello")) || h == Hash([]byte("world")) {
		t.Error("Hash must be deterministic and input-sensitive")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	page := AtlasKeyOpts{PageWidth: 2048, PageHeight: 2048, Shards: 1}
	svg := ArtifactKeyOpts{VizType: "flame", Format: "svg", PxPerMS: 1}

	tests := []struct {
		name   string
		a, b   string
		prefix string
		same   bool
	}{
		{"layout stable", k.LayoutKey("h"), k.LayoutKey("h"), "layout:", true},
		{"layout per trace", k.LayoutKey("h"), k.LayoutKey("g"), "layout:", false},
		{"atlas page size", k.AtlasKey("h", page), k.AtlasKey("h", AtlasKeyOpts{PageWidth: 1024, PageHeight: 256, Shards: 1}), "atlas:", false},
		{"atlas shards", k.AtlasKey("h", page), k.AtlasKey("h", AtlasKeyOpts{PageWidth: 2048, PageHeight: 2048, Shards: 4}), "atlas:", false},
		{"artifact format", k.ArtifactKey("h", svg), k.ArtifactKey("h", ArtifactKeyOpts{VizType: "flame", Format: "png", PxPerMS: 1}), "artifact:", false},
		{"artifact scale", k.ArtifactKey("h", svg), k.ArtifactKey("h", ArtifactKeyOpts{VizType: "flame", Format: "svg", PxPerMS: 2}), "artifact:", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.a, tt.prefix) {
				t.Errorf("key %q lacks prefix %q", tt.a, tt.prefix)
			}
			if (tt.a == tt.b) != tt.same {
				t.Errorf("keys %q and %q: same = %v, want %v", tt.a, tt.b, tt.a == tt.b, tt.same)
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	if got, want := scoped.LayoutKey("h"), "tenant:123:"+inner.LayoutKey("h"); got != want {
		t.Errorf("ScopedKeyer LayoutKey = %s, want %s", got, want)
	}

	atlasKey := scoped.AtlasKey("h", AtlasKeyOpts{})
	if !strings.HasPrefix(atlasKey, "tenant:123:atlas:") {
		t.Errorf("ScopedKeyer AtlasKey should be prefixed: %s", atlasKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "prefix:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}

	base := stderrors.New("busy")
	err := Transient(base)
	if !IsTransient(err) {
		t.Error("wrapped error should be transient")
	}
	if !stderrors.Is(err, base) {
		t.Error("Transient should keep the cause reachable")
	}
	if IsTransient(base) {
		t.Error("plain error should not be transient")
	}
}

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}
	errBusy := stderrors.New("busy")
	errFatal := stderrors.New("fatal")

	tests := []struct {
		name      string
		fails     int
		transient bool
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, true, 1, nil},
		{"recovers", 2, true, 3, nil},
		{"gives up", 5, true, 3, errBusy},
		{"permanent", 5, false, 1, errFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(ctx, func() error {
				calls++
				if calls > tt.fails {
					return nil
				}
				if tt.transient {
					return Transient(errBusy)
				}
				return errFatal
			})
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultBackoff().Do(ctx, func() error {
		return Transient(stderrors.New("busy"))
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRedisCacheUnreachableIsDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1" // nothing listens here

	c := NewRedisCache(ctx, cfg, nil)
	defer c.Close()

	if c.Available() {
		t.Fatal("cache should be disabled when Redis is unreachable")
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get on disabled cache = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Errorf("Set on disabled cache error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete on disabled cache error: %v", err)
	}
}
