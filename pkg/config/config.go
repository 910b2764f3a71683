// Package config loads jeffc configuration from TOML files.
//
// Configuration is optional: every field has a default, the CLI flags
// override the file, and a missing file is not an error unless the user
// asked for a specific path. The [gates] table extends the encoder's
// builtin gate mapping with extension-specific targets.
//
// A full file looks like:
//
//	[convert]
//	compress = true
//
//	[render]
//	direction = "LR"
//	types = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	namespace = "jeffc:prod:"
//	ttl = "48h"
//
//	[gates]
//	cphase = "ext.CPhase"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hugrlab/jeffc/pkg/cache"
)

// Config is the full jeffc configuration.
type Config struct {
	Convert ConvertConfig     `toml:"convert"`
	Render  RenderConfig      `toml:"render"`
	Cache   CacheConfig       `toml:"cache"`
	Gates   map[string]string `toml:"gates"`
}

// ConvertConfig controls envelope encoding.
type ConvertConfig struct {
	// Compress enables zstd compression of the envelope payload.
	Compress bool `toml:"compress"`
}

// RenderConfig controls the diagram renderers.
type RenderConfig struct {
	// Direction is the flowchart/rankdir direction: TD, LR, BT, RL.
	Direction string `toml:"direction"`
	// Types labels edges with the value types they carry.
	Types bool `toml:"types"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "none".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means the platform
	// user cache directory.
	Dir string `toml:"dir"`
	// TTL is how long results stay cached, as a duration string.
	TTL Duration `toml:"ttl"`
	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`
	// Namespace prefixes every cache key; deployments sharing one
	// Redis use it to stay isolated.
	Namespace string `toml:"namespace"`
}

// Duration decodes TOML strings like "90m" or "48h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Render: RenderConfig{Direction: "TD"},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration(cache.DefaultTTL),
		},
	}
}

// Load reads and validates the TOML file at path, on top of the
// defaults. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Gates) > 0 {
		// Gate names match case-insensitively; normalize once here so
		// the encoder can do plain map lookups.
		normalized := make(map[string]string, len(cfg.Gates))
		for name, target := range cfg.Gates {
			normalized[strings.ToLower(name)] = target
		}
		cfg.Gates = normalized
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the first config file present in the default
// locations (./jeffc.toml, then the user config directory), or the
// empty string when none exists.
func Discover() string {
	candidates := []string{"jeffc.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "jeffc", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultCacheDir is the file cache location when [cache] dir is unset.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".jeffc-cache"
	}
	return filepath.Join(base, "jeffc")
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return fmt.Errorf("cache backend %q is not one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New("cache backend redis requires redis_addr")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	switch c.Render.Direction {
	case "", "TD", "LR", "BT", "RL":
	default:
		return fmt.Errorf("render direction %q is not one of TD, LR, BT, RL", c.Render.Direction)
	}
	for name, target := range c.Gates {
		if name == "" || target == "" {
			return errors.New("gate table entries need both a name and a target")
		}
	}
	return nil
}
