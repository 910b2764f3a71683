package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/hugrlab/jeffc/pkg/jeff"
)

// BuildErrorKind classifies a build failure.
type BuildErrorKind uint8

const (
	// DuplicateKey means one key was declared twice in the same namespace.
	DuplicateKey BuildErrorKind = iota + 1
	// DanglingReference means a record referenced a key nothing declares.
	DanglingReference
)

func (k BuildErrorKind) String() string {
	switch k {
	case DuplicateKey:
		return "duplicate key"
	case DanglingReference:
		return "dangling reference"
	}
	return fmt.Sprintf("build error %d", uint8(k))
}

// BuildError reports why records could not be assembled into a graph.
// Key is the offending key and Context names the declaring or referring
// record. Builds fail on the first error; the validator is the layer
// that collects everything.
type BuildError struct {
	Kind    BuildErrorKind
	Key     uint32
	Context string
}

func (e *BuildError) Error() string {
	switch e.Kind {
	case DuplicateKey:
		return fmt.Sprintf("graph: duplicate %s key %d", e.Context, e.Key)
	case DanglingReference:
		return fmt.Sprintf("graph: %s references unknown key %d", e.Context, e.Key)
	}
	return fmt.Sprintf("graph: build failed on key %d (%s)", e.Key, e.Context)
}

func duplicate(context string, key uint32) *BuildError {
	return &BuildError{Kind: DuplicateKey, Key: key, Context: context}
}

func dangling(context string, key uint32) *BuildError {
	return &BuildError{Kind: DanglingReference, Key: key, Context: context}
}

// Build assembles decoded records into a graph. The first pass creates
// every region, node, and port and records key-to-ID mappings; the
// second resolves all cross-references through those mappings and
// orders everything by its explicit position fields. Build performs no
// structural validation beyond resolvability.
func Build(rec *jeff.Records) (*Graph, error) {
	g := New()

	typeMap := make([]TypeID, len(rec.Types))
	for i, t := range rec.Types {
		typeMap[i] = g.AddType(TypeDesc{Kind: TypeKind(t.Kind), Param: t.Param})
	}

	// Pass 1: instantiate arenas and key maps.
	regionIDs := make(map[uint32]RegionID, len(rec.Regions))
	for _, rr := range rec.Regions {
		if _, dup := regionIDs[rr.Key]; dup {
			return nil, duplicate("region", rr.Key)
		}
		id := RegionID(len(g.regions))
		g.regions = append(g.regions, Region{ID: id, Owner: NoNode, Slot: int(rr.Slot)})
		regionIDs[rr.Key] = id
	}

	nodeIDs := make(map[uint32]NodeID, len(rec.Nodes))
	for _, nr := range rec.Nodes {
		if _, dup := nodeIDs[nr.Key]; dup {
			return nil, duplicate("node", nr.Key)
		}
		name, _ := rec.Lookup(nr.NameRef)
		id := NodeID(len(g.nodes))
		g.nodes = append(g.nodes, Node{
			ID:     id,
			Op:     OpKind(nr.Opcode),
			Name:   name,
			Attrs:  decodeAttrs(rec, nr.Attrs),
			Region: NoRegion,
		})
		nodeIDs[nr.Key] = id
	}

	portIDs := make(map[uint32]PortID, len(rec.Ports))
	for _, pr := range rec.Ports {
		if _, dup := portIDs[pr.Key]; dup {
			return nil, duplicate("port", pr.Key)
		}
		if int(pr.TypeRef) >= len(typeMap) {
			return nil, dangling(fmt.Sprintf("port %d type", pr.Key), pr.TypeRef)
		}
		t := typeMap[pr.TypeRef]
		id := PortID(len(g.ports))
		g.ports = append(g.ports, Port{
			ID:     id,
			Node:   NoNode,
			Region: NoRegion,
			Dir:    Direction(pr.Dir),
			Index:  int(pr.Index),
			Type:   t,
			Linear: pr.Linear() || g.types[t].Linear(),
		})
		portIDs[pr.Key] = id
	}

	// Pass 2: resolve cross-references.
	for _, rr := range rec.Regions {
		id := regionIDs[rr.Key]
		if rr.OwnerNode == jeff.NoKey {
			if g.root == NoRegion {
				g.root = id
			}
			// Extra ownerless regions stay as they are; the validator
			// reports them as additional roots.
			continue
		}
		owner, ok := nodeIDs[rr.OwnerNode]
		if !ok {
			return nil, dangling(fmt.Sprintf("region %d owner", rr.Key), rr.OwnerNode)
		}
		g.regions[id].Owner = owner
		g.nodes[owner].Children = append(g.nodes[owner].Children, id)
	}

	nodePos := make(map[NodeID]uint32, len(rec.Nodes))
	for _, nr := range rec.Nodes {
		region, ok := regionIDs[nr.RegionKey]
		if !ok {
			return nil, dangling(fmt.Sprintf("node %d region", nr.Key), nr.RegionKey)
		}
		id := nodeIDs[nr.Key]
		g.nodes[id].Region = region
		g.regions[region].Nodes = append(g.regions[region].Nodes, id)
		nodePos[id] = nr.Position
	}

	for _, pr := range rec.Ports {
		id := portIDs[pr.Key]
		p := &g.ports[id]
		switch pr.OwnerKind {
		case jeff.OwnerNode:
			owner, ok := nodeIDs[pr.OwnerKey]
			if !ok {
				return nil, dangling(fmt.Sprintf("port %d owner node", pr.Key), pr.OwnerKey)
			}
			p.Node = owner
			if p.Dir == DirIn {
				g.nodes[owner].Inputs = append(g.nodes[owner].Inputs, id)
			} else {
				g.nodes[owner].Outputs = append(g.nodes[owner].Outputs, id)
			}
		case jeff.OwnerRegion:
			owner, ok := regionIDs[pr.OwnerKey]
			if !ok {
				return nil, dangling(fmt.Sprintf("port %d owner region", pr.Key), pr.OwnerKey)
			}
			p.Region = owner
			if p.Dir == DirOut {
				g.regions[owner].Sources = append(g.regions[owner].Sources, id)
			} else {
				g.regions[owner].Results = append(g.regions[owner].Results, id)
			}
		}
	}

	edgeKeys := make(map[uint32]struct{}, len(rec.Edges))
	for _, er := range rec.Edges {
		if _, dup := edgeKeys[er.Key]; dup {
			return nil, duplicate("edge", er.Key)
		}
		edgeKeys[er.Key] = struct{}{}
		scope, ok := regionIDs[er.RegionKey]
		if !ok {
			return nil, dangling(fmt.Sprintf("edge %d region", er.Key), er.RegionKey)
		}
		src, ok := portIDs[er.SrcPort]
		if !ok {
			return nil, dangling(fmt.Sprintf("edge %d source port", er.Key), er.SrcPort)
		}
		dst, ok := portIDs[er.DstPort]
		if !ok {
			return nil, dangling(fmt.Sprintf("edge %d target port", er.Key), er.DstPort)
		}
		g.AddEdge(scope, src, dst)
	}

	for _, mr := range rec.Meta {
		key, ok := rec.Lookup(mr.KeyRef)
		if !ok {
			return nil, dangling("metadata key", mr.KeyRef)
		}
		value, ok := rec.Lookup(mr.ValueRef)
		if !ok {
			return nil, dangling("metadata value", mr.ValueRef)
		}
		g.meta[key] = value
	}

	// Explicit positions win; declaration order only breaks ties.
	for ri := range g.regions {
		r := &g.regions[ri]
		sort.SliceStable(r.Nodes, func(a, b int) bool { return nodePos[r.Nodes[a]] < nodePos[r.Nodes[b]] })
		sortPortsByIndex(g, r.Sources)
		sortPortsByIndex(g, r.Results)
	}
	for ni := range g.nodes {
		n := &g.nodes[ni]
		sortPortsByIndex(g, n.Inputs)
		sortPortsByIndex(g, n.Outputs)
		sort.SliceStable(n.Children, func(a, b int) bool {
			return g.regions[n.Children[a]].Slot < g.regions[n.Children[b]].Slot
		})
	}

	return g, nil
}

func sortPortsByIndex(g *Graph, ids []PortID) {
	sort.SliceStable(ids, func(a, b int) bool { return g.ports[ids[a]].Index < g.ports[ids[b]].Index })
}

// decodeAttrs interprets a node's attribute list. Unknown tags are
// skipped so newer producers stay readable.
func decodeAttrs(rec *jeff.Records, attrs []jeff.Attr) Attrs {
	a := DefaultAttrs()
	for _, at := range attrs {
		switch at.Tag {
		case jeff.AttrGateName:
			if s, ok := rec.Lookup(at.StrRef()); ok {
				a.Gate.Name = s
			}
		case jeff.AttrGateQubits:
			a.Gate.Qubits = uint32(at.Scalar())
		case jeff.AttrGateParams:
			a.Gate.Params = uint32(at.Scalar())
		case jeff.AttrGateControls:
			a.Gate.Controls = uint32(at.Scalar())
		case jeff.AttrGateAdjoint:
			a.Gate.Adjoint = at.Scalar() != 0
		case jeff.AttrGatePower:
			a.Gate.Power = int64(at.Scalar())
		case jeff.AttrIntValue:
			a.IntValue = at.Scalar()
		case jeff.AttrFloatValue:
			a.FloatValue = math.Float64frombits(at.Scalar())
		case jeff.AttrValues:
			a.Values = at.Array()
		case jeff.AttrFuncIndex:
			a.FuncIndex = int(at.Scalar())
		}
	}
	return a
}
