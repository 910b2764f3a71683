package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hugrlab/jeffc/pkg/cache"
	"github.com/hugrlab/jeffc/pkg/graph"
	"github.com/hugrlab/jeffc/pkg/hugr"
	"github.com/hugrlab/jeffc/pkg/jeff"
	"github.com/hugrlab/jeffc/pkg/observability"
	"github.com/hugrlab/jeffc/pkg/render/dot"
	"github.com/hugrlab/jeffc/pkg/render/mermaid"
)

// Convert runs the full pipeline on one input without caching. The
// context is checked between stages; a conversion that has started a
// stage finishes it before noticing cancellation.
func Convert(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	hooks := observability.Pipeline()
	total := time.Now()

	result := &Result{InputHash: cache.Hash(input)}

	// Stage 1: Decode
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, opts.RequestID, StageDecode)
	stageStart := time.Now()
	records, err := jeff.Decode(input)
	result.Stats.DecodeTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, opts.RequestID, StageDecode, result.Stats.DecodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	logger.Debug("decoded container",
		"nodes", len(records.Nodes),
		"edges", len(records.Edges),
		"regions", len(records.Regions),
		"duration", result.Stats.DecodeTime)

	// Stage 2: Build
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, opts.RequestID, StageBuild)
	stageStart = time.Now()
	g, err := graph.Build(records)
	result.Stats.BuildTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, opts.RequestID, StageBuild, result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.Nodes = g.NodeCount()
	result.Stats.Edges = g.EdgeCount()
	result.Stats.Regions = g.RegionCount()
	logger.Debug("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 3: Validate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, opts.RequestID, StageValidate)
	stageStart = time.Now()
	verrs := graph.Validate(g)
	result.Stats.ValidateTime = time.Since(stageStart)
	var verr error
	if len(verrs) > 0 {
		verr = &ValidationFailed{Errors: verrs}
	}
	hooks.OnStageComplete(ctx, opts.RequestID, StageValidate, result.Stats.ValidateTime, verr)
	if verr != nil {
		return nil, verr
	}
	logger.Debug("validated graph", "duration", result.Stats.ValidateTime)

	// Stage 4: Encode or Render
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch opts.Mode {
	case ModeCheck:
		// Diagnostics only; there is no output artifact.

	case ModeHugr:
		hooks.OnStageStart(ctx, opts.RequestID, StageEncode)
		stageStart = time.Now()
		out, err := hugr.Encode(g, hugr.Options{Compress: opts.Compress, Gates: opts.Gates})
		result.Stats.EncodeTime = time.Since(stageStart)
		hooks.OnStageComplete(ctx, opts.RequestID, StageEncode, result.Stats.EncodeTime, err)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		result.Output = out
		logger.Debug("encoded envelope",
			"bytes", len(out),
			"compressed", opts.Compress,
			"duration", result.Stats.EncodeTime)

	default:
		hooks.OnStageStart(ctx, opts.RequestID, StageRender)
		stageStart = time.Now()
		out, err := renderOutput(ctx, g, opts)
		result.Stats.RenderTime = time.Since(stageStart)
		hooks.OnStageComplete(ctx, opts.RequestID, StageRender, result.Stats.RenderTime, err)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Output = out
		logger.Debug("rendered diagram",
			"mode", opts.Mode,
			"bytes", len(out),
			"duration", result.Stats.RenderTime)
	}

	result.Stats.TotalTime = time.Since(total)
	return result, nil
}

// renderOutput produces the diagram artifact for the render modes.
func renderOutput(ctx context.Context, g *graph.Graph, opts Options) ([]byte, error) {
	switch opts.Mode {
	case ModeMermaid:
		mopts := []mermaid.Option{mermaid.WithDirection(opts.Direction)}
		if opts.Types {
			mopts = append(mopts, mermaid.WithTypes())
		}
		return []byte(mermaid.Render(g, mopts...)), nil

	case ModeDOT:
		return []byte(dot.ToDOT(g, dotOptions(opts))), nil

	case ModeSVG:
		src := dot.ToDOT(g, dotOptions(opts))
		return dot.RenderSVG(ctx, src)
	}
	return nil, fmt.Errorf("mode %q has no renderer", opts.Mode)
}

func dotOptions(opts Options) dot.Options {
	return dot.Options{Direction: dotDirection(opts.Direction), Types: opts.Types}
}

// dotDirection translates the flowchart direction vocabulary into
// Graphviz rankdir; they agree except for top-down.
func dotDirection(dir string) string {
	if dir == "TD" {
		return "TB"
	}
	return dir
}
