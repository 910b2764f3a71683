// Package pkg provides the core libraries for jeffc program conversion.
//
// # Overview
//
// jeffc converts hybrid quantum/classical programs from the jeff binary
// interchange format into Hugr graph envelopes, and renders diagrams of
// the programs it reads. The pkg directory is organized into four areas:
//
//  1. [jeff], [graph], [hugr] - The conversion core (decode, build,
//     validate, encode)
//  2. [render] - Diagram backends (Mermaid, Graphviz DOT/SVG)
//  3. [pipeline] - Orchestration (stage order, caching, batch fan-out)
//  4. [cache], [config], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow through jeffc:
//
//	.jeff container bytes
//	         ↓
//	    [jeff] package (decode into flat records)
//	         ↓
//	    [graph] package (build + validate hierarchical graph)
//	         ↓
//	    [hugr] package (encode envelope)   [render] packages (diagrams)
//
// # Quick Start
//
// Convert a container through the pipeline:
//
//	import (
//	    "context"
//	    "github.com/hugrlab/jeffc/pkg/pipeline"
//	)
//
//	result, err := pipeline.Convert(context.Background(), input, pipeline.Options{
//	    Mode:     pipeline.ModeHugr,
//	    Compress: true,
//	})
//
// Or drive the stages directly:
//
//	rec, err := jeff.Decode(input)
//	g, err := graph.Build(rec)
//	if errs := graph.Validate(g); errs != nil { ... }
//	envelope, err := hugr.Encode(g, hugr.Options{})
//
// # Main Packages
//
// ## Conversion Core
//
// [jeff] - The source container codec. Decode turns bytes into flat
// record slices with every framing violation reported at its byte
// offset; Writer and Encode produce canonical containers, so decode and
// encode round-trip.
//
// [graph] - The in-memory program graph: arena-backed regions, nodes,
// ports, and edges addressed by integer IDs. Build resolves record
// cross-references in two passes; Validate collects every structural
// violation (region tree shape, edge scoping, boundary signatures,
// linearity) without stopping at the first.
//
// [hugr] - The target encoder. Walks a validated graph once, in arena
// order, and emits a deterministic envelope: type and gate mapping
// tables, Input/Output boundary nodes, Const/LoadConstant expansion,
// call links, optional zstd payload compression.
//
// ## Visualization
//
// [render/mermaid] - Mermaid flowcharts with nested subgraph blocks per
// region, emitted as a restartable line sequence.
//
// [render/dot] - Graphviz DOT with one cluster per region, plus
// in-process SVG rasterization.
//
// ## Orchestration
//
// [pipeline] - Runs decode → build → validate → encode/render with
// short-circuit on failure, cancellation at stage boundaries, and
// per-stage timings. Runner adds content-addressed result caching and
// bounded parallel batch conversion.
//
// ## Infrastructure
//
// [cache] - Result cache backends: sharded file store, Redis, and a
// no-op null cache, behind one small interface.
//
// [config] - TOML configuration with defaults and validation, including
// the user-extensible gate mapping table.
//
// [observability] - Pluggable pipeline/cache/HTTP hooks with no-op
// defaults.
//
// [buildinfo] - Version, commit, and build date injected via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/graph/...        # Specific package
//	go test -run Golden ./pkg/...  # Golden-file tests
//
// [jeff]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/jeff
// [graph]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/graph
// [hugr]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/hugr
// [render]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/render
// [render/mermaid]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/render/mermaid
// [render/dot]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/cache
// [config]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/config
// [observability]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/hugrlab/jeffc/pkg/buildinfo
package pkg
