package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugrlab/jeffc/pkg/buildinfo"
	"github.com/hugrlab/jeffc/pkg/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"exit error", &exitError{code: 2, msg: "unreadable"}, 2},
		{"wrapped exit error", fmt.Errorf("check: %w", &exitError{code: 1, msg: "invalid"}), 1},
		{"cancelled", context.Canceled, 130},
		{"wrapped cancelled", fmt.Errorf("convert: %w", context.Canceled), 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "jeffc.toml", []byte("[convert]\ncompress = true\n\n[render]\ndirection = \"LR\"\n"))

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Convert.Compress {
		t.Error("expected compress from file")
	}
	if cfg.Render.Direction != "LR" {
		t.Errorf("direction = %q, want LR", cfg.Render.Direction)
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %v, want load config failure", err)
	}
}

func TestConfigContextRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "none"

	ctx := withConfig(context.Background(), cfg)
	if got := configFromContext(ctx); got.Cache.Backend != "none" {
		t.Errorf("backend = %q, want none", got.Cache.Backend)
	}

	// Without the root command's PreRun the defaults apply.
	if got := configFromContext(context.Background()); got.Cache.Backend != "file" {
		t.Errorf("fallback backend = %q, want file", got.Cache.Backend)
	}
}

func TestFileCacheDir(t *testing.T) {
	if got := fileCacheDir(config.CacheConfig{Dir: "/tmp/custom"}); got != "/tmp/custom" {
		t.Errorf("dir = %q, want /tmp/custom", got)
	}
	if got := fileCacheDir(config.CacheConfig{}); got == "" {
		t.Error("expected a default cache directory")
	}
}

func TestRootVersion(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"--version"})
	root.SetOut(&out)
	root.SetErr(&out)

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), buildinfo.Version) {
		t.Errorf("output %q missing version %q", out.String(), buildinfo.Version)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	if err := runRoot(t, "frobnicate"); err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestConfigFlagReachesCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir, "jeffc.toml", []byte("[render]\ndirection = \"LR\"\n"))
	path := writeContainer(t, dir, "ok.jeff")
	out := filepath.Join(dir, "ok.mmd")

	if err := runRoot(t, "render", path, "-o", out, "--config", cfgPath); err != nil {
		t.Fatalf("render: %v", err)
	}
	if chart := readText(t, out); !strings.HasPrefix(chart, "flowchart LR") {
		t.Errorf("chart starts with %q, want configured LR direction", firstLine(chart))
	}
}
