package mermaid

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/hugrlab/jeffc/pkg/graph"
)

// =============================================================================
// OPTIONS
// =============================================================================

type settings struct {
	direction string
	types     bool
}

// Option adjusts how the flowchart is rendered.
type Option func(*settings)

// WithDirection sets the flowchart direction ("TD", "LR", "BT", "RL").
// The empty string keeps the default top-down layout.
func WithDirection(dir string) Option {
	return func(s *settings) {
		if dir != "" {
			s.direction = dir
		}
	}
}

// WithTypes labels every edge with the type of the value it carries.
func WithTypes() Option {
	return func(s *settings) { s.types = true }
}

// =============================================================================
// RENDERING
// =============================================================================

// Render returns the whole flowchart as one newline-terminated string.
func Render(g *graph.Graph, opts ...Option) string {
	var sb strings.Builder
	for line := range Lines(g, opts...) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines yields the flowchart one line at a time, without trailing
// newlines. The sequence is finite and restartable; every pass over the
// same graph yields the same lines.
func Lines(g *graph.Graph, opts ...Option) iter.Seq[string] {
	s := settings{direction: "TD"}
	for _, o := range opts {
		o(&s)
	}
	return func(yield func(string) bool) {
		if !yield("flowchart " + s.direction) {
			return
		}
		if g.Root() == graph.NoRegion {
			return
		}
		w := walker{g: g, settings: s, ids: assignIDs(g), edges: edgesByScope(g)}
		w.region(g.Root(), 1, yield)
	}
}

type walker struct {
	g *graph.Graph
	settings
	ids   []string
	edges [][]graph.EdgeID
}

// region emits the contents of one region: boundary terminals first,
// then nodes in arena order, then the edges scoped to it.
func (w *walker) region(id graph.RegionID, depth int, yield func(string) bool) bool {
	r := w.g.Region(id)
	pad := indent(depth)
	if len(r.Sources) > 0 {
		if !yield(fmt.Sprintf(`%sr%d_in(["in"])`, pad, id)) {
			return false
		}
	}
	if len(r.Results) > 0 {
		if !yield(fmt.Sprintf(`%sr%d_out(["out"])`, pad, id)) {
			return false
		}
	}
	for _, nid := range r.Nodes {
		if !w.node(nid, depth, yield) {
			return false
		}
	}
	for _, eid := range w.edges[id] {
		if !w.edge(eid, depth, yield) {
			return false
		}
	}
	return true
}

// node emits a declaration line, or a subgraph block when the node owns
// regions. A single child region collapses into the node's own block; a
// node with several children nests one labeled block per region.
func (w *walker) node(id graph.NodeID, depth int, yield func(string) bool) bool {
	n := w.g.Node(id)
	pad := indent(depth)
	if len(n.Children) == 0 {
		return yield(fmt.Sprintf(`%s%s["%s"]`, pad, w.ids[id], nodeLabel(n)))
	}
	if !yield(fmt.Sprintf(`%ssubgraph %s["%s"]`, pad, w.ids[id], nodeLabel(n))) {
		return false
	}
	if len(n.Children) == 1 {
		if !w.region(n.Children[0], depth+1, yield) {
			return false
		}
	} else {
		inner := indent(depth + 1)
		for slot, child := range n.Children {
			if !yield(fmt.Sprintf(`%ssubgraph r%d["%s"]`, inner, child, regionLabel(n.Op, slot))) {
				return false
			}
			if !w.region(child, depth+2, yield) {
				return false
			}
			if !yield(inner + "end") {
				return false
			}
		}
	}
	return yield(pad + "end")
}

func (w *walker) edge(id graph.EdgeID, depth int, yield func(string) bool) bool {
	e := w.g.Edge(id)
	src, dst := w.portRef(e.Src), w.portRef(e.Dst)
	if w.types {
		return yield(fmt.Sprintf(`%s%s -->|"%s"| %s`, indent(depth), src, w.g.PortType(e.Src), dst))
	}
	return yield(fmt.Sprintf("%s%s --> %s", indent(depth), src, dst))
}

// portRef names the chart element an edge endpoint attaches to: the
// owning node for node ports, the region's terminal for boundary ports.
func (w *walker) portRef(id graph.PortID) string {
	p := w.g.Port(id)
	if !p.Boundary() {
		return w.ids[p.Node]
	}
	if p.Dir == graph.DirOut {
		return fmt.Sprintf("r%d_in", p.Region)
	}
	return fmt.Sprintf("r%d_out", p.Region)
}

func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

// edgesByScope groups edge IDs by region, keeping arena order within
// each group. Edges with out-of-range endpoints or scopes are skipped
// rather than drawn.
func edgesByScope(g *graph.Graph) [][]graph.EdgeID {
	byScope := make([][]graph.EdgeID, g.RegionCount())
	for i := 0; i < g.EdgeCount(); i++ {
		e := g.Edge(graph.EdgeID(i))
		if int(e.Scope) < 0 || int(e.Scope) >= g.RegionCount() {
			continue
		}
		if !portInRange(g, e.Src) || !portInRange(g, e.Dst) {
			continue
		}
		byScope[e.Scope] = append(byScope[e.Scope], e.ID)
	}
	return byScope
}

func portInRange(g *graph.Graph, id graph.PortID) bool {
	return int(id) >= 0 && int(id) < g.PortCount()
}

// =============================================================================
// IDENTIFIERS AND LABELS
// =============================================================================

var (
	idScrub     = regexp.MustCompile(`[^A-Za-z0-9_]`)
	arenaShaped = regexp.MustCompile(`^[nr][0-9]+$`)
)

// assignIDs picks one chart identifier per node. A sanitized node name
// is used when it is unique across the graph and cannot collide with an
// arena-derived identifier; every other node gets n<arena index>.
func assignIDs(g *graph.Graph) []string {
	n := g.NodeCount()
	named := make([]string, n)
	count := make(map[string]int, n)
	for i := 0; i < n; i++ {
		s := sanitizeID(g.Node(graph.NodeID(i)).Name)
		if s == "" || arenaShaped.MatchString(s) {
			continue
		}
		named[i] = s
		count[s]++
	}
	ids := make([]string, n)
	for i := range ids {
		if named[i] != "" && count[named[i]] == 1 {
			ids[i] = named[i]
		} else {
			ids[i] = fmt.Sprintf("n%d", i)
		}
	}
	return ids
}

// sanitizeID reduces a node name to Mermaid-safe identifier characters.
// Names that start with a digit get an "n_" prefix so the identifier
// never begins with a number.
func sanitizeID(name string) string {
	s := idScrub.ReplaceAllString(strings.TrimSpace(name), "_")
	if s == "" {
		return ""
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "n_" + s
	}
	return s
}

var labelEscaper = strings.NewReplacer(`"`, "#quot;", "[", "#91;", "]", "#93;")

// nodeLabel is the display text: the node's name when set, its
// operation name otherwise, with quote and bracket characters escaped
// as Mermaid entities.
func nodeLabel(n *graph.Node) string {
	if n.Name != "" {
		return labelEscaper.Replace(n.Name)
	}
	return labelEscaper.Replace(n.Op.String())
}

// regionLabel names the nested blocks of a multi-region node.
func regionLabel(op graph.OpKind, slot int) string {
	switch op {
	case graph.OpSwitch:
		return fmt.Sprintf("case %d", slot)
	case graph.OpWhile, graph.OpDoWhile:
		if slot == 0 {
			return "body"
		}
		return "condition"
	}
	return fmt.Sprintf("region %d", slot)
}
