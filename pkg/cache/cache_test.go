package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Roundtrip
	if err := c.Set(ctx, "a", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get returned %q", data)
	}

	// Overwrite
	if err := c.Set(ctx, "a", []byte("updated"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, _, _ := c.Get(ctx, "a"); string(data) != "updated" {
		t.Errorf("after overwrite Get returned %q", data)
	}

	// Delete, including a missing key
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, err := c.Get(ctx, "short"); err != nil || hit {
		t.Errorf("expired entry: hit=%v err=%v", hit, err)
	}
	// The expired file must be gone, not just skipped.
	if _, statErr := os.Stat(c.path("short")); !os.IsNotExist(statErr) {
		t.Errorf("expired entry still on disk: %v", statErr)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "bad", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}
	if _, hit, err := c.Get(ctx, "bad"); err != nil || hit {
		t.Errorf("corrupt entry should be a clean miss: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheStatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, key := range []string{"one", "two"} {
		if err := c.Set(ctx, key, []byte("data"), 0); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}
	entries, size, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 2 || size == 0 {
		t.Errorf("Stats = %d entries, %d bytes", entries, size)
	}
	removed, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear removed %d entries, want 2", removed)
	}
	if entries, _, _ := c.Stats(); entries != 0 {
		t.Errorf("after Clear: %d entries remain", entries)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ResultKeyOpts{Mode: "hugr"}

	key := k.ResultKey("abc123", base)
	if len(key) != len("result:")+64 || key[:7] != "result:" {
		t.Errorf("ResultKey unexpected form: %s", key)
	}

	// Any option that changes the output must change the key.
	variants := []ResultKeyOpts{
		{Mode: "mermaid"},
		{Mode: "hugr", Compress: true},
		{Mode: "hugr", Direction: "LR"},
		{Mode: "hugr", Types: true},
		{Mode: "hugr", Gates: map[string]string{"cphase": "ext.CPhase"}},
	}
	for _, opts := range variants {
		if k.ResultKey("abc123", opts) == key {
			t.Errorf("opts %+v should produce a different key", opts)
		}
	}
	if k.ResultKey("other", base) == key {
		t.Error("different input hashes should produce different keys")
	}
	if k.ResultKey("abc123", ResultKeyOpts{Mode: "hugr"}) != key {
		t.Error("equal inputs should produce equal keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:42:")
	key := scoped.ResultKey("abc", ResultKeyOpts{Mode: "hugr"})
	if key[:10] != "tenant:42:" {
		t.Errorf("ScopedKeyer key should be prefixed: %s", key)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if k := fallback.ResultKey("abc", ResultKeyOpts{}); k[:2] != "p:" {
		t.Errorf("unexpected key with nil inner: %s", k)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	base := errors.New("backend down")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should see the wrapper")
	}
	if err.Error() != base.Error() {
		t.Errorf("message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}
	if IsRetryable(base) {
		t.Error("unwrapped errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	}); err != nil {
		t.Errorf("should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("should call once: %d", calls)
	}

	permanent := errors.New("bad address")
	calls = 0
	if err := RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	}); !errors.Is(err, permanent) {
		t.Errorf("should return the permanent error: %v", err)
	}
	if calls != 1 {
		t.Errorf("should not retry a permanent error: %d", calls)
	}

	calls = 0
	if err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("transient"))
		}
		return nil
	}); err != nil {
		t.Errorf("should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("transient"))
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
