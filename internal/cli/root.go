package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hugrlab/jeffc/pkg/buildinfo"
	"github.com/hugrlab/jeffc/pkg/cache"
	"github.com/hugrlab/jeffc/pkg/config"
	"github.com/hugrlab/jeffc/pkg/pipeline"
)

// rootOpts holds the persistent flags shared by every command.
type rootOpts struct {
	verbose    bool   // debug-level logging
	configPath string // explicit config file, overrides discovery
	noCache    bool   // disable the result cache entirely
	cacheDir   string // file cache directory override
}

// Execute runs the jeffc CLI under ctx and returns an error if any
// command fails. This is the main entry point for the CLI application.
//
// The root command loads the configuration, attaches a logger to the
// context, and dispatches to the subcommands. Cancelling ctx (for
// example from a signal handler) stops in-flight conversions at the
// next stage boundary.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts rootOpts

	root := &cobra.Command{
		Use:           "jeffc",
		Short:         "jeffc converts quantum program containers into Hugr envelopes",
		Long:          `jeffc is a CLI tool for converting binary quantum program containers into Hugr graph envelopes, and for rendering, checking, and serving those conversions.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.cacheDir != "" {
				cfg.Cache.Dir = opts.cacheDir
			}
			if opts.noCache {
				cfg.Cache.Backend = "none"
			}
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	pf := root.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./jeffc.toml, then the user config dir)")
	pf.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	pf.StringVar(&opts.cacheDir, "cache-dir", "", "result cache directory")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// loadConfig loads the explicit path when one was given, otherwise the
// first discovered default location, otherwise the built-in defaults.
// A missing explicit path is an error; missing defaults are not.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = config.Discover()
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withConfig returns a new context with the resolved configuration
// attached.
func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the configuration from ctx, falling back
// to the defaults when the root command did not run.
func configFromContext(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// newRunner assembles the pipeline runner the context's configuration
// calls for: cache backend, key namespace, and TTL.
func newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := configFromContext(ctx)

	backend, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Namespace)
	}
	runner := pipeline.NewRunner(backend, keyer, loggerFromContext(ctx))
	runner.TTL = cfg.Cache.TTL.Std()
	return runner, nil
}

// openCache opens the configured cache backend.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return c, nil
	default:
		c, err := cache.NewFileCache(fileCacheDir(cfg))
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		return c, nil
	}
}

// fileCacheDir resolves the file backend's directory.
func fileCacheDir(cfg config.CacheConfig) string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return config.DefaultCacheDir()
}

// exitError carries a specific process exit code through cobra.
// Commands return it when a failed run must map to a documented code
// rather than the generic 1.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// ExitCode maps an error returned by Execute to the process exit code:
// 0 for nil, the carried code for exit errors, 130 for cancellation
// (the shell convention for SIGINT), and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
