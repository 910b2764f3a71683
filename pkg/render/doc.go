// Package render hosts the diagram backends for converted program graphs.
//
// # Overview
//
// Rendering is read-only: every backend walks a validated program graph
// and emits text, leaving the graph untouched. Two backends exist:
//
//   - Mermaid flowcharts (in [mermaid] subpackage)
//   - Graphviz DOT, with SVG rasterization (in [dot] subpackage)
//
// # Mermaid
//
// The [mermaid] subpackage emits flowchart source line by line. Nested
// regions become subgraph blocks, boundary ports become in/out
// terminals, and edges can optionally carry type labels.
//
//	chart := mermaid.Render(g, mermaid.WithDirection("LR"))
//
// # DOT and SVG
//
// The [dot] subpackage emits the same structure as Graphviz clusters and
// can rasterize the result in process.
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Both backends render any structurally valid graph; malformed names are
// escaped, never rejected.
//
// [mermaid]: github.com/hugrlab/jeffc/pkg/render/mermaid
// [dot]: github.com/hugrlab/jeffc/pkg/render/dot
package render
