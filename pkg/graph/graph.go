package graph

// Arena identifiers. IDs index into the owning Graph's arenas and stay
// stable for the life of the graph; the sentinels mark absent links.
type (
	NodeID   int
	PortID   int
	EdgeID   int
	RegionID int
	TypeID   int
)

const (
	NoNode   NodeID   = -1
	NoPort   PortID   = -1
	NoEdge   EdgeID   = -1
	NoRegion RegionID = -1
)

// Direction tells which way a port faces. Boundary ports carry the
// direction they present to the inside of their region.
type Direction uint8

const (
	DirIn  Direction = 0
	DirOut Direction = 1
)

func (d Direction) String() string {
	if d == DirOut {
		return "out"
	}
	return "in"
}

// Node is one operation in a region. Inputs and Outputs are ordered by
// port index; Children lists owned regions ordered by slot.
type Node struct {
	ID       NodeID
	Op       OpKind
	Name     string
	Attrs    Attrs
	Region   RegionID
	Inputs   []PortID
	Outputs  []PortID
	Children []RegionID
}

// Port is a typed connection point on a node or on a region boundary.
// Exactly one of Node and Region is set. The type descriptor is carried
// verbatim from the source; nothing in this package reinterprets it.
type Port struct {
	ID     PortID
	Node   NodeID   // owning node, or NoNode for a boundary port
	Region RegionID // owning region for boundary ports, else NoRegion
	Dir    Direction
	Index  int
	Type   TypeID
	Linear bool
}

// Boundary reports whether the port sits on a region boundary.
func (p *Port) Boundary() bool { return p.Node == NoNode }

// Edge connects one output port to one input port inside Scope.
type Edge struct {
	ID    EdgeID
	Scope RegionID
	Src   PortID
	Dst   PortID
}

// Region is one level of the hierarchy: an ordered list of nodes plus
// the boundary ports that mediate values crossing in and out. Owner is
// NoNode for the module root.
type Region struct {
	ID      RegionID
	Owner   NodeID
	Slot    int
	Nodes   []NodeID
	Sources []PortID // boundary, face inward as outputs
	Results []PortID // boundary, face inward as inputs
}

// Graph is the hierarchical program graph. Build one with [Build] or
// assemble it directly with the Add methods; either way it is read-only
// once handed to the validator, encoder, or renderers.
type Graph struct {
	nodes   []Node
	ports   []Port
	edges   []Edge
	regions []Region
	types   []TypeDesc
	typeIDs map[TypeDesc]TypeID
	root    RegionID
	meta    map[string]string
}

// New returns an empty graph with no root region.
func New() *Graph {
	return &Graph{
		typeIDs: make(map[TypeDesc]TypeID),
		root:    NoRegion,
		meta:    make(map[string]string),
	}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// AddType interns a type descriptor and returns its ID. Identical
// descriptors share one ID.
func (g *Graph) AddType(t TypeDesc) TypeID {
	if id, ok := g.typeIDs[t]; ok {
		return id
	}
	id := TypeID(len(g.types))
	g.types = append(g.types, t)
	g.typeIDs[t] = id
	return id
}

// AddRegion appends a region owned by owner (NoNode for the root) and
// links it as the owner's next child. The first ownerless region becomes
// the graph root.
func (g *Graph) AddRegion(owner NodeID, slot int) RegionID {
	id := RegionID(len(g.regions))
	g.regions = append(g.regions, Region{ID: id, Owner: owner, Slot: slot})
	if owner == NoNode {
		if g.root == NoRegion {
			g.root = id
		}
	} else {
		n := g.Node(owner)
		n.Children = append(n.Children, id)
	}
	return id
}

// AddNode appends a node to region and returns its ID.
func (g *Graph) AddNode(region RegionID, op OpKind, name string) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		ID:     id,
		Op:     op,
		Name:   name,
		Attrs:  DefaultAttrs(),
		Region: region,
	})
	r := g.Region(region)
	r.Nodes = append(r.Nodes, id)
	return id
}

// AddInput appends an input port to a node.
func (g *Graph) AddInput(n NodeID, t TypeID, linear bool) PortID {
	node := g.Node(n)
	id := g.addPort(Port{Node: n, Region: NoRegion, Dir: DirIn, Index: len(node.Inputs), Type: t, Linear: linear})
	node.Inputs = append(node.Inputs, id)
	return id
}

// AddOutput appends an output port to a node.
func (g *Graph) AddOutput(n NodeID, t TypeID, linear bool) PortID {
	node := g.Node(n)
	id := g.addPort(Port{Node: n, Region: NoRegion, Dir: DirOut, Index: len(node.Outputs), Type: t, Linear: linear})
	node.Outputs = append(node.Outputs, id)
	return id
}

// AddSource appends a boundary source port to a region. Sources feed
// values in, so they face the interior as outputs.
func (g *Graph) AddSource(r RegionID, t TypeID, linear bool) PortID {
	region := g.Region(r)
	id := g.addPort(Port{Node: NoNode, Region: r, Dir: DirOut, Index: len(region.Sources), Type: t, Linear: linear})
	region.Sources = append(region.Sources, id)
	return id
}

// AddResult appends a boundary result port to a region. Results carry
// values out, so they face the interior as inputs.
func (g *Graph) AddResult(r RegionID, t TypeID, linear bool) PortID {
	region := g.Region(r)
	id := g.addPort(Port{Node: NoNode, Region: r, Dir: DirIn, Index: len(region.Results), Type: t, Linear: linear})
	region.Results = append(region.Results, id)
	return id
}

func (g *Graph) addPort(p Port) PortID {
	p.ID = PortID(len(g.ports))
	g.ports = append(g.ports, p)
	return p.ID
}

// AddEdge appends an edge without checking its endpoints; dangling or
// misdirected endpoints are the validator's to report.
func (g *Graph) AddEdge(scope RegionID, src, dst PortID) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{ID: id, Scope: scope, Src: src, Dst: dst})
	return id
}

// SetMeta records one module metadata pair.
func (g *Graph) SetMeta(key, value string) {
	g.meta[key] = value
}

// =============================================================================
// ACCESS
// =============================================================================

// Root returns the root region, or NoRegion for an empty graph.
func (g *Graph) Root() RegionID { return g.root }

// Node returns the node with the given ID. IDs come from this graph's
// arena; anything else panics.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Port returns the port with the given ID.
func (g *Graph) Port(id PortID) *Port { return &g.ports[id] }

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id EdgeID) *Edge { return &g.edges[id] }

// Region returns the region with the given ID.
func (g *Graph) Region(id RegionID) *Region { return &g.regions[id] }

// Type returns the interned type descriptor for id.
func (g *Graph) Type(id TypeID) TypeDesc { return g.types[id] }

// PortType returns the type descriptor of a port.
func (g *Graph) PortType(id PortID) TypeDesc { return g.types[g.ports[id].Type] }

func (g *Graph) NodeCount() int   { return len(g.nodes) }
func (g *Graph) PortCount() int   { return len(g.ports) }
func (g *Graph) EdgeCount() int   { return len(g.edges) }
func (g *Graph) RegionCount() int { return len(g.regions) }
func (g *Graph) TypeCount() int   { return len(g.types) }

// Meta returns the module metadata map.
func (g *Graph) Meta() map[string]string { return g.meta }

// Functions lists the function nodes of the root region in order. The
// position in this list is the function index call nodes refer to.
func (g *Graph) Functions() []NodeID {
	if g.root == NoRegion {
		return nil
	}
	var fns []NodeID
	for _, id := range g.regions[g.root].Nodes {
		switch g.nodes[id].Op {
		case OpFuncDefn, OpFuncDecl:
			fns = append(fns, id)
		}
	}
	return fns
}

// validPort reports whether id indexes the port arena.
func (g *Graph) validPort(id PortID) bool {
	return id >= 0 && int(id) < len(g.ports)
}

// validRegion reports whether id indexes the region arena.
func (g *Graph) validRegion(id RegionID) bool {
	return id >= 0 && int(id) < len(g.regions)
}
