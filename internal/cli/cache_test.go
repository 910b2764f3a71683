package cli

import (
	"path/filepath"
	"testing"

	"github.com/hugrlab/jeffc/pkg/cache"
)

func TestCacheStatsAndClear(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeContainer(t, dir, "ok.jeff")

	// Prime the cache with one conversion.
	if err := runRootWithCache(t, cacheDir, "convert", path); err != nil {
		t.Fatalf("convert: %v", err)
	}
	assertEntryCount(t, cacheDir, 1)

	if err := runRootWithCache(t, cacheDir, "cache", "stats"); err != nil {
		t.Fatalf("cache stats: %v", err)
	}

	if err := runRootWithCache(t, cacheDir, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	assertEntryCount(t, cacheDir, 0)
}

func assertEntryCount(t *testing.T, dir string, want int) {
	t.Helper()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer fc.Close()

	entries, _, err := fc.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if entries != want {
		t.Errorf("cache holds %d entries, want %d", entries, want)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
