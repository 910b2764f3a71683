// Package pipeline provides the core conversion pipeline for jeffc.
//
// This package implements the complete decode, build, validate, encode
// or render pipeline that the CLI and the HTTP service share. By
// centralizing this logic, both entry points behave identically and
// cache each other's results.
//
// # Architecture
//
// Every conversion runs the same front half:
//
//  1. Decode: parse the container framing into flat records
//  2. Build: assemble the records into a hierarchical program graph
//  3. Validate: check region structure, edges, boundaries, linearity
//
// and then one output stage selected by mode: the envelope encoder for
// "hugr", a diagram renderer for "mermaid", "dot", and "svg", or
// nothing at all for "check", which exists for the diagnostics alone.
//
// # Usage
//
// Create a Runner and convert:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Convert(ctx, input, pipeline.Options{
//	    Mode:     pipeline.ModeHugr,
//	    Compress: true,
//	})
//	if err != nil {
//	    var vf *pipeline.ValidationFailed
//	    if errors.As(err, &vf) {
//	        // semantic errors, one per finding
//	    }
//	    return err
//	}
//	envelope := result.Output
//
// [Convert] runs the pipeline once without caching; the Runner adds
// content-addressed result caching and batch execution on top.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hugrlab/jeffc/pkg/cache"
	"github.com/hugrlab/jeffc/pkg/graph"
)

// =============================================================================
// Modes and Stages
// =============================================================================

// Mode constants select the pipeline's output stage.
const (
	ModeHugr    = "hugr"
	ModeMermaid = "mermaid"
	ModeDOT     = "dot"
	ModeSVG     = "svg"
	ModeCheck   = "check"
)

// ValidModes is the set of supported conversion modes.
var ValidModes = map[string]bool{
	ModeHugr:    true,
	ModeMermaid: true,
	ModeDOT:     true,
	ModeSVG:     true,
	ModeCheck:   true,
}

// Stage names used in stats, logs, and observability events.
const (
	StageDecode   = "decode"
	StageBuild    = "build"
	StageValidate = "validate"
	StageEncode   = "encode"
	StageRender   = "render"
)

// DefaultDirection is the default diagram direction.
const DefaultDirection = "TD"

// ValidateMode checks that a mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return fmt.Errorf("invalid mode: %q (must be one of: hugr, mermaid, dot, svg, check)", mode)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one conversion. The struct
// supports JSON serialization for API requests.
type Options struct {
	// Mode selects the output: hugr, mermaid, dot, svg, or check.
	// Empty means hugr.
	Mode string `json:"mode,omitempty"`

	// Encode options
	Compress bool              `json:"compress,omitempty"`
	Gates    map[string]string `json:"gates,omitempty"`

	// Render options
	Direction string `json:"direction,omitempty"`
	Types     bool   `json:"types,omitempty"`

	// Refresh bypasses the cache for this conversion.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger `json:"-"`
	RequestID string      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and applies defaults. The
// method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = ModeHugr
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// keyOpts returns the cache key fingerprint for these options. Refresh
// is not part of the key: a refreshed result replaces the cached one.
func (o *Options) keyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Mode:      o.Mode,
		Compress:  o.Compress,
		Direction: o.Direction,
		Types:     o.Types,
		Gates:     o.Gates,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of one conversion.
type Result struct {
	// Output is the produced artifact: the envelope for hugr mode,
	// diagram text or SVG for the render modes, nil for check mode and
	// for cache hits in check mode.
	Output []byte

	// Graph is the validated program graph. It is nil when the result
	// came from the cache, which stores only output bytes.
	Graph *graph.Graph

	// InputHash is the SHA-256 content hash of the input.
	InputHash string

	// CacheHit reports whether Output came from the cache.
	CacheHit bool

	// Stats contains sizes and per-stage timings.
	Stats Stats
}

// Stats contains conversion statistics.
type Stats struct {
	Nodes   int
	Edges   int
	Regions int

	DecodeTime   time.Duration
	BuildTime    time.Duration
	ValidateTime time.Duration
	EncodeTime   time.Duration
	RenderTime   time.Duration
	TotalTime    time.Duration
}

// =============================================================================
// Errors
// =============================================================================

// ValidationFailed reports that the input decoded and built but is not
// a well-formed program. Errors holds every finding in deterministic
// order.
type ValidationFailed struct {
	Errors []graph.ValidationError
}

func (e *ValidationFailed) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("validation failed with %d errors (first: %s)", len(e.Errors), e.Errors[0])
}
