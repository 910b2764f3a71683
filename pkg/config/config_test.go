package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jeffc.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != "file" {
		t.Errorf("default cache backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Std() != 24*time.Hour {
		t.Errorf("default ttl = %v", cfg.Cache.TTL.Std())
	}
	if cfg.Render.Direction != "TD" {
		t.Errorf("default direction = %q", cfg.Render.Direction)
	}
	if cfg.Convert.Compress {
		t.Error("compression should default off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
[convert]
compress = true

[render]
direction = "LR"
types = true

[cache]
backend = "redis"
redis_addr = "localhost:6379"
namespace = "jeffc:test:"
ttl = "90m"

[gates]
CPhase = "ext.CPhase"
sx = "tket.SX"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Convert.Compress {
		t.Error("compress not loaded")
	}
	if cfg.Render.Direction != "LR" || !cfg.Render.Types {
		t.Errorf("render section = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache section = %+v", cfg.Cache)
	}
	if cfg.Cache.Namespace != "jeffc:test:" {
		t.Errorf("namespace = %q", cfg.Cache.Namespace)
	}
	if cfg.Cache.TTL.Std() != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL.Std())
	}
	// Gate names are normalized to lower case at load time.
	if got := cfg.Gates["cphase"]; got != "ext.CPhase" {
		t.Errorf("gates[cphase] = %q", got)
	}
	if _, ok := cfg.Gates["CPhase"]; ok {
		t.Error("mixed-case gate key should have been normalized away")
	}
	if got := cfg.Gates["sx"]; got != "tket.SX" {
		t.Errorf("gates[sx] = %q", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[convert]
compress = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Convert.Compress {
		t.Error("compress not loaded")
	}
	if cfg.Cache.Backend != "file" || cfg.Render.Direction != "TD" {
		t.Errorf("defaults lost: cache=%+v render=%+v", cfg.Cache, cfg.Render)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !os.IsNotExist(err) {
		t.Errorf("Load of missing file: %v", err)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, "[convert\ncompress = yes")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load of bad TOML: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "redis_addr"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration(-time.Hour) }, "ttl"},
		{"bad direction", func(c *Config) { c.Render.Direction = "sideways" }, "direction"},
		{"empty gate target", func(c *Config) { c.Gates = map[string]string{"h": ""} }, "gate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("36h")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Std() != 36*time.Hour {
		t.Errorf("parsed %v", d.Std())
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("garbage duration should fail")
	}
}
