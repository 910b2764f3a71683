package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hugrlab/jeffc/pkg/cache"
	"github.com/hugrlab/jeffc/pkg/observability"
)

// Runner executes conversions with result caching. Both the CLI and
// the HTTP service use it so neither duplicates the caching logic.
//
// The Runner is stateless except for the cache and logger; it stores
// no conversion results itself. Multiple goroutines can safely share
// one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL bounds how long results stay cached. Zero means
	// cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the default keyer; a nil cache disables
// caching via the null backend.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Convert runs the pipeline on one input, consulting the result cache
// first. Check mode always runs the pipeline: its value is fresh
// diagnostics, and it produces no output worth storing.
func (r *Runner) Convert(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}

	hooks := observability.Pipeline()
	hooks.OnConvertStart(ctx, opts.RequestID, opts.Mode, len(input))
	start := time.Now()
	result, err := r.convert(ctx, input, opts)
	hooks.OnConvertComplete(ctx, opts.RequestID, opts.Mode, time.Since(start), err)
	return result, err
}

func (r *Runner) convert(ctx context.Context, input []byte, opts Options) (*Result, error) {
	logger := opts.Logger.With("request_id", opts.RequestID)
	cacheHooks := observability.Cache()

	cacheable := opts.Mode != ModeCheck
	inputHash := cache.Hash(input)
	key := r.Keyer.ResultKey(inputHash, opts.keyOpts())

	if cacheable && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			cacheHooks.OnCacheError(ctx, "get", err)
			logger.Debug("result cache get failed", "error", err)
		case hit:
			cacheHooks.OnCacheHit(ctx, "result")
			logger.Debug("result cache hit", "bytes", len(data))
			return &Result{Output: data, InputHash: inputHash, CacheHit: true}, nil
		default:
			cacheHooks.OnCacheMiss(ctx, "result")
		}
	}

	result, err := Convert(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	if cacheable && len(result.Output) > 0 {
		if err := r.Cache.Set(ctx, key, result.Output, r.ttl()); err != nil {
			cacheHooks.OnCacheError(ctx, "set", err)
			logger.Debug("result cache set failed", "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "result", len(result.Output))
		}
	}
	return result, nil
}

// ConvertAll converts inputs concurrently, bounded at limit workers
// (non-positive means GOMAXPROCS). Results are ordered like the
// inputs. The first error cancels the remaining conversions.
func (r *Runner) ConvertAll(ctx context.Context, inputs [][]byte, opts Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	results := make([]*Result, len(inputs))
	for i, input := range inputs {
		eg.Go(func() error {
			result, err := r.Convert(ctx, input, opts)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.DefaultTTL
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
