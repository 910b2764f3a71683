package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/hugrlab/jeffc/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Direction is the Graphviz rankdir ("TB", "LR", "BT", "RL").
	// Empty means top-to-bottom.
	Direction string
	// Types labels every edge with the type of the value it carries.
	Types bool
}

// ToDOT converts a program graph to Graphviz DOT source. Regions become
// cluster_<n> subgraphs, boundary ports become ellipse terminals, and
// nodes that own regions are drawn dashed alongside their clusters. The
// result can be rendered with [RenderSVG] or saved for external tools.
func ToDOT(g *graph.Graph, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}
	var buf bytes.Buffer
	buf.WriteString("digraph jeff {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := dotWriter{g: g, buf: &buf}
	if g.Root() != graph.NoRegion {
		w.region(g.Root(), 1)
	}

	buf.WriteString("\n")
	for i := 0; i < g.EdgeCount(); i++ {
		e := g.Edge(graph.EdgeID(i))
		if !portInRange(g, e.Src) || !portInRange(g, e.Dst) {
			continue
		}
		src, dst := endpoint(g, e.Src), endpoint(g, e.Dst)
		if opts.Types {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", src, dst, g.PortType(e.Src).String())
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", src, dst)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	g   *graph.Graph
	buf *bytes.Buffer
}

// region declares one region's terminals and nodes. Child regions nest
// as clusters; edges are emitted flat afterwards since Graphviz scopes
// membership by declaration, not by edge placement.
func (w *dotWriter) region(id graph.RegionID, depth int) {
	r := w.g.Region(id)
	pad := strings.Repeat("  ", depth)
	if len(r.Sources) > 0 {
		fmt.Fprintf(w.buf, "%s%q [label=\"in\", shape=ellipse, margin=\"0.1,0.05\"];\n", pad, terminal(id, "in"))
	}
	if len(r.Results) > 0 {
		fmt.Fprintf(w.buf, "%s%q [label=\"out\", shape=ellipse, margin=\"0.1,0.05\"];\n", pad, terminal(id, "out"))
	}
	for _, nid := range r.Nodes {
		w.node(nid, depth)
	}
}

func (w *dotWriter) node(id graph.NodeID, depth int) {
	n := w.g.Node(id)
	pad := strings.Repeat("  ", depth)
	if len(n.Children) == 0 {
		fmt.Fprintf(w.buf, "%s%q [label=%q];\n", pad, nodeID(id), label(n))
		return
	}
	fmt.Fprintf(w.buf, "%s%q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", pad, nodeID(id), label(n))
	for slot, child := range n.Children {
		fmt.Fprintf(w.buf, "%ssubgraph cluster_%d {\n", pad, child)
		fmt.Fprintf(w.buf, "%s  label=%q;\n", pad, clusterLabel(n, slot))
		fmt.Fprintf(w.buf, "%s  style=rounded;\n", pad)
		w.region(child, depth+1)
		fmt.Fprintf(w.buf, "%s}\n", pad)
	}
}

func nodeID(id graph.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func terminal(id graph.RegionID, side string) string {
	return fmt.Sprintf("r%d_%s", id, side)
}

func endpoint(g *graph.Graph, id graph.PortID) string {
	p := g.Port(id)
	if !p.Boundary() {
		return nodeID(p.Node)
	}
	if p.Dir == graph.DirOut {
		return terminal(p.Region, "in")
	}
	return terminal(p.Region, "out")
}

func portInRange(g *graph.Graph, id graph.PortID) bool {
	return int(id) >= 0 && int(id) < g.PortCount()
}

func label(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.Op.String()
}

// clusterLabel names the cluster of one child region. Single-region
// owners lend the cluster their own label; multi-region owners qualify
// it with the region's role.
func clusterLabel(n *graph.Node, slot int) string {
	if len(n.Children) == 1 {
		return label(n)
	}
	switch n.Op {
	case graph.OpSwitch:
		return fmt.Sprintf("%s: case %d", label(n), slot)
	case graph.OpWhile, graph.OpDoWhile:
		if slot == 0 {
			return label(n) + ": body"
		}
		return label(n) + ": condition"
	}
	return fmt.Sprintf("%s: region %d", label(n), slot)
}

// RenderSVG renders DOT source to SVG with an in-process Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element so the viewBox starts
// at the origin and the width and height match it. Graphviz emits point
// units and offsets that scale badly when the SVG is embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
