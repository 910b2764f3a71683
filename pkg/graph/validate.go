package graph

import "fmt"

// ValidationKind classifies a structural violation.
type ValidationKind uint8

const (
	RegionCycle ValidationKind = iota + 1
	RegionOrphan
	MultipleRoots
	EdgeDirection
	UnknownPort
	ScopeViolation
	BoundaryArity
	BoundaryType
	LinearityViolation
)

func (k ValidationKind) String() string {
	switch k {
	case RegionCycle:
		return "region-cycle"
	case RegionOrphan:
		return "region-orphan"
	case MultipleRoots:
		return "multiple-roots"
	case EdgeDirection:
		return "edge-direction"
	case UnknownPort:
		return "unknown-port"
	case ScopeViolation:
		return "scope-violation"
	case BoundaryArity:
		return "boundary-arity"
	case BoundaryType:
		return "boundary-type"
	case LinearityViolation:
		return "linearity"
	}
	return fmt.Sprintf("validation-%d", uint8(k))
}

// ValidationError is one structural violation. The ID fields locate the
// offending element where applicable and hold the No* sentinels
// otherwise.
type ValidationError struct {
	Kind   ValidationKind
	Region RegionID
	Node   NodeID
	Edge   EdgeID
	Port   PortID
	Msg    string
}

func (e ValidationError) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

func verr(kind ValidationKind, format string, args ...any) ValidationError {
	return ValidationError{
		Kind:   kind,
		Region: NoRegion,
		Node:   NoNode,
		Edge:   NoEdge,
		Port:   NoPort,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// Validate checks the graph's structure and returns every violation it
// finds, in deterministic arena order. It never mutates the graph and
// never stops at the first problem; a nil result means the graph is
// structurally sound.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRegionTree(g)...)
	errs = append(errs, validateEdges(g)...)
	errs = append(errs, validateBoundaries(g)...)
	errs = append(errs, validateLinearity(g)...)
	return errs
}

// =============================================================================
// REGION TREE
// =============================================================================

// validateRegionTree checks that region ownership forms a tree with a
// single root and that every region hangs off it.
func validateRegionTree(g *Graph) []ValidationError {
	if len(g.regions) == 0 {
		return nil
	}
	var errs []ValidationError

	var roots []RegionID
	for i := range g.regions {
		if g.regions[i].Owner == NoNode {
			roots = append(roots, RegionID(i))
		}
	}
	switch {
	case len(roots) == 0:
		errs = append(errs, verr(MultipleRoots, "graph has no root region"))
	case len(roots) > 1:
		for _, id := range roots[1:] {
			e := verr(MultipleRoots, "region %d is a second root (root is region %d)", id, roots[0])
			e.Region = id
			errs = append(errs, e)
		}
	}

	reachable := make([]bool, len(g.regions))
	if len(roots) > 0 {
		stack := []RegionID{roots[0]}
		reachable[roots[0]] = true
		for len(stack) > 0 {
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nid := range g.regions[r].Nodes {
				for _, child := range g.nodes[nid].Children {
					if !reachable[child] {
						reachable[child] = true
						stack = append(stack, child)
					}
				}
			}
		}
	}
	for i := range g.regions {
		if reachable[i] || g.regions[i].Owner == NoNode {
			continue
		}
		id := RegionID(i)
		if onOwnershipCycle(g, id) {
			e := verr(RegionCycle, "region %d participates in an ownership cycle", id)
			e.Region = id
			errs = append(errs, e)
		} else {
			e := verr(RegionOrphan, "region %d is not reachable from the root region", id)
			e.Region = id
			errs = append(errs, e)
		}
	}
	return errs
}

// onOwnershipCycle walks the ownership chain upward. Revisiting the
// start, or walking longer than the region count without reaching a
// root, means the chain never terminates.
func onOwnershipCycle(g *Graph, id RegionID) bool {
	r := id
	for steps := 0; steps <= len(g.regions); steps++ {
		owner := g.regions[r].Owner
		if owner == NoNode {
			return false
		}
		r = g.nodes[owner].Region
		if r == NoRegion {
			return false
		}
		if r == id {
			return true
		}
	}
	return true
}

// =============================================================================
// EDGES
// =============================================================================

// validateEdges checks that every edge endpoint exists, runs from an
// output to an input, and is visible in the edge's region.
func validateEdges(g *Graph) []ValidationError {
	var errs []ValidationError
	for i := range g.edges {
		e := &g.edges[i]
		id := EdgeID(i)

		srcOK := g.validPort(e.Src)
		if !srcOK {
			ve := verr(UnknownPort, "edge %d source port %d does not exist", id, e.Src)
			ve.Edge = id
			errs = append(errs, ve)
		}
		dstOK := g.validPort(e.Dst)
		if !dstOK {
			ve := verr(UnknownPort, "edge %d target port %d does not exist", id, e.Dst)
			ve.Edge = id
			errs = append(errs, ve)
		}
		if !g.validRegion(e.Scope) {
			ve := verr(ScopeViolation, "edge %d region %d does not exist", id, e.Scope)
			ve.Edge = id
			errs = append(errs, ve)
			continue
		}

		if srcOK {
			src := g.Port(e.Src)
			if src.Dir != DirOut {
				ve := verr(EdgeDirection, "edge %d source port %d is an input port", id, e.Src)
				ve.Edge, ve.Port = id, e.Src
				errs = append(errs, ve)
			}
			if !visibleIn(g, src, e.Scope) {
				ve := verr(ScopeViolation, "edge %d source port %d is not visible in region %d", id, e.Src, e.Scope)
				ve.Edge, ve.Port = id, e.Src
				errs = append(errs, ve)
			}
		}
		if dstOK {
			dst := g.Port(e.Dst)
			if dst.Dir != DirIn {
				ve := verr(EdgeDirection, "edge %d target port %d is an output port", id, e.Dst)
				ve.Edge, ve.Port = id, e.Dst
				errs = append(errs, ve)
			}
			if !visibleIn(g, dst, e.Scope) {
				ve := verr(ScopeViolation, "edge %d target port %d is not visible in region %d", id, e.Dst, e.Scope)
				ve.Edge, ve.Port = id, e.Dst
				errs = append(errs, ve)
			}
		}
	}
	return errs
}

// visibleIn reports whether a port can terminate an edge scoped to the
// given region: node ports of that region, or the region's own boundary
// ports. Boundary ports of nested regions are not visible; values cross
// levels only through them from the inside.
func visibleIn(g *Graph, p *Port, scope RegionID) bool {
	if p.Node != NoNode {
		return g.nodes[p.Node].Region == scope
	}
	return p.Region == scope
}

// =============================================================================
// BOUNDARIES
// =============================================================================

// validateBoundaries checks every child region's boundary ports against
// the signature its owning node expects: arity first, then types
// position by position. An arity mismatch reports once per side.
func validateBoundaries(g *Graph) []ValidationError {
	var errs []ValidationError
	for i := range g.nodes {
		n := &g.nodes[i]
		for ci, child := range n.Children {
			r := g.Region(child)
			wantSources, wantResults := regionSignature(g, n, ci)
			errs = append(errs, checkBoundary(g, n, r, r.Sources, wantSources, "source")...)
			errs = append(errs, checkBoundary(g, n, r, r.Results, wantResults, "result")...)
		}
	}
	return errs
}

func checkBoundary(g *Graph, n *Node, r *Region, ports []PortID, want []TypeDesc, side string) []ValidationError {
	if len(ports) != len(want) {
		e := verr(BoundaryArity, "region %d declares %d %s ports but node %s expects %d",
			r.ID, len(ports), side, nodeRef(n), len(want))
		e.Region, e.Node = r.ID, n.ID
		return []ValidationError{e}
	}
	var errs []ValidationError
	for i, pid := range ports {
		got := g.PortType(pid)
		if got != want[i] {
			e := verr(BoundaryType, "region %d %s port %d is %s but node %s expects %s",
				r.ID, side, i, got, nodeRef(n), want[i])
			e.Region, e.Node, e.Port = r.ID, n.ID, pid
			errs = append(errs, e)
		}
	}
	return errs
}

// regionSignature derives the boundary signature a child region must
// declare from its owning node's ports. Plain containers mirror the
// node's signature; control-flow kinds adjust it the way their
// semantics prescribe.
func regionSignature(g *Graph, n *Node, child int) (sources, results []TypeDesc) {
	ins := portTypes(g, n.Inputs)
	outs := portTypes(g, n.Outputs)
	switch n.Op {
	case OpSwitch:
		// Branches see every input except the leading selector.
		if len(ins) > 0 {
			return ins[1:], outs
		}
		return ins, outs
	case OpWhile, OpDoWhile:
		// Child 0 is the body (state to state), child 1 the condition
		// (state to a one-bit verdict).
		if child == 1 {
			return ins, []TypeDesc{{Kind: KindInt, Param: 1}}
		}
		return ins, ins
	case OpFor:
		// The body sees the counter and the loop state; start, stop,
		// and step stay outside.
		if len(ins) >= 3 {
			sig := append([]TypeDesc{ins[0]}, ins[3:]...)
			return sig, ins[3:]
		}
		return ins, outs
	default:
		return ins, outs
	}
}

func portTypes(g *Graph, ids []PortID) []TypeDesc {
	ts := make([]TypeDesc, len(ids))
	for i, id := range ids {
		ts[i] = g.PortType(id)
	}
	return ts
}

func nodeRef(n *Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%q", n.Name)
	}
	return fmt.Sprintf("%d (%s)", n.ID, n.Op)
}

// =============================================================================
// LINEARITY
// =============================================================================

// validateLinearity counts edges per port and flags linear ports wired
// more than once. Non-linear ports may fan out freely.
func validateLinearity(g *Graph) []ValidationError {
	degree := make(map[PortID]int)
	for i := range g.edges {
		e := &g.edges[i]
		if g.validPort(e.Src) {
			degree[e.Src]++
		}
		if g.validPort(e.Dst) {
			degree[e.Dst]++
		}
	}
	var errs []ValidationError
	for i := range g.ports {
		id := PortID(i)
		p := &g.ports[i]
		if p.Linear && degree[id] > 1 {
			e := verr(LinearityViolation, "linear port %d (%s) has %d connected edges", id, g.Type(p.Type), degree[id])
			e.Port = id
			errs = append(errs, e)
		}
	}
	return errs
}
