// Package dot renders a program graph as a Graphviz node-link diagram.
//
// # Overview
//
// [ToDOT] produces Graphviz DOT source: one box per operation, one
// cluster per region, arrows for dataflow edges. The region hierarchy
// maps onto nested clusters, with the owning node drawn dashed next to
// its clusters so edges in the enclosing region have a box to attach
// to. Region boundaries appear as small ellipse terminals inside their
// cluster.
//
// # SVG Rendering
//
// [RenderSVG] runs Graphviz in process via [github.com/goccy/go-graphviz]
// and rewrites the resulting viewBox so the image scales cleanly when
// embedded. The DOT source can also be saved as-is and processed with
// external Graphviz tools.
package dot
