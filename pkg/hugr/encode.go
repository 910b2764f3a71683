package hugr

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/hugrlab/jeffc/pkg/graph"
	"github.com/hugrlab/jeffc/pkg/jeff"
)

// Options control envelope emission.
type Options struct {
	// Compress zstd-compresses the payload and sets the header flag.
	// Output stays byte-deterministic either way.
	Compress bool

	// Gates extends the built-in gate table. Keys are lowercased gate
	// names, values target operation names; entries shadow built-in
	// rows and apply regardless of arity.
	Gates map[string]string
}

// EncodeError reports a construct the target cannot express. Node and
// Op locate the source operation; Node is graph.NoNode when the error
// is not tied to one.
type EncodeError struct {
	Node graph.NodeID
	Op   string
	Msg  string
}

func (e *EncodeError) Error() string {
	if e.Node != graph.NoNode {
		return fmt.Sprintf("hugr: node %d (%s): %s", e.Node, e.Op, e.Msg)
	}
	return "hugr: " + e.Msg
}

// Encode emits the envelope for a graph. The graph is expected to have
// passed [graph.Validate]; Encode adds no structural checking of its
// own and fails only on constructs with no target equivalent.
//
// Emission is a single walk in arena order with no map iteration, so
// identical graphs and options yield identical bytes across runs and
// processes.
func Encode(g *graph.Graph, opts Options) ([]byte, error) {
	e := &encoder{
		g:       g,
		gates:   opts.Gates,
		strIdx:  make(map[string]uint32),
		typeIdx: make(map[typeRec]uint32),
		nodeEnv: make([]uint32, g.NodeCount()),
		portMap: make([]portAddr, g.PortCount()),
	}

	module := e.addNode(OpModule, NoParent, nil, nil, nil)
	if root := g.Root(); root != graph.NoRegion {
		if err := e.emitRegion(root, module); err != nil {
			return nil, err
		}
	}
	if err := e.resolveCalls(); err != nil {
		return nil, err
	}
	e.emitEdges()

	payload := e.payload()
	var flags uint16
	if opts.Compress {
		flags |= FlagZstd
		var err error
		if payload, err = compress(payload); err != nil {
			return nil, err
		}
	}

	c := &coder{}
	c.raw([]byte(Magic))
	c.u16(Version)
	c.u16(flags)
	c.u32(uint32(len(payload)))
	c.raw(payload)
	return c.buf, nil
}

// =============================================================================
// WALK
// =============================================================================

// portAddr is the envelope address of a graph port: node index plus
// port position within the node's direction.
type portAddr struct {
	node uint32
	port uint16
}

type envNode struct {
	op     uint32 // string ref
	parent uint32
	ins    []uint32 // type refs
	outs   []uint32
	attrs  []jeff.Attr
}

type envEdge struct {
	srcNode uint32
	srcPort uint16
	dstNode uint32
	dstPort uint16
}

type envLink struct {
	src, dst uint32
	kind     uint8
}

type pendingCall struct {
	env    uint32
	caller graph.NodeID
	index  int
}

type encoder struct {
	g     *graph.Graph
	gates map[string]string

	strings []string
	strIdx  map[string]uint32
	types   []typeRec
	typeIdx map[typeRec]uint32

	nodes []envNode
	edges []envEdge
	links []envLink

	nodeEnv []uint32 // graph node -> envelope node
	portMap []portAddr
	calls   []pendingCall
}

func (e *encoder) emitRegion(rid graph.RegionID, parent uint32) error {
	r := e.g.Region(rid)
	if len(r.Sources) > 0 || len(r.Results) > 0 {
		srcTypes, err := e.typeRefs(r.Sources, r.Owner, OpInput)
		if err != nil {
			return err
		}
		resTypes, err := e.typeRefs(r.Results, r.Owner, OpOutput)
		if err != nil {
			return err
		}
		in := e.addNode(OpInput, parent, nil, srcTypes, nil)
		e.mapBoundary(r.Sources, in)
		out := e.addNode(OpOutput, parent, resTypes, nil, nil)
		e.mapBoundary(r.Results, out)
	}
	for _, nid := range r.Nodes {
		if err := e.emitNode(nid, parent); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) emitNode(nid graph.NodeID, parent uint32) error {
	n := e.g.Node(nid)
	op := n.Op.String()
	ins, err := e.typeRefs(n.Inputs, nid, op)
	if err != nil {
		return err
	}
	outs, err := e.typeRefs(n.Outputs, nid, op)
	if err != nil {
		return err
	}

	var idx uint32
	switch {
	case n.Op.Const():
		def := e.addNode(OpConst, parent, nil, outs, constAttrs(n))
		idx = e.addNode(OpLoadConstant, parent, ins, outs, nil)
		e.links = append(e.links, envLink{src: def, dst: idx, kind: LinkStatic})
	case n.Op == graph.OpCall:
		if n.Attrs.FuncIndex < 0 {
			return &EncodeError{Node: nid, Op: op, Msg: "call has no callee index"}
		}
		attrs := []jeff.Attr{jeff.ScalarAttr(jeff.AttrFuncIndex, uint64(n.Attrs.FuncIndex))}
		idx = e.addNode(OpCall, parent, ins, outs, attrs)
		e.calls = append(e.calls, pendingCall{env: idx, caller: nid, index: n.Attrs.FuncIndex})
	case n.Op == graph.OpGate:
		name, generic := resolveGate(n.Attrs.Gate, e.gates)
		var attrs []jeff.Attr
		if generic {
			attrs = e.gateAttrs(n.Attrs.Gate)
		}
		idx = e.addNode(name, parent, ins, outs, attrs)
	case n.Op.Hierarchical():
		idx = e.addNode(containerOps[n.Op], parent, ins, outs, nil)
	default:
		name, ok := leafOps[n.Op]
		if !ok {
			return &EncodeError{Node: nid, Op: op, Msg: "operation has no target equivalent"}
		}
		idx = e.addNode(name, parent, ins, outs, nil)
	}
	e.nodeEnv[nid] = idx
	e.mapNodePorts(n, idx)

	for _, child := range n.Children {
		wrap := idx
		switch n.Op {
		case graph.OpSwitch:
			r := e.g.Region(child)
			srcTypes, err := e.typeRefs(r.Sources, nid, op)
			if err != nil {
				return err
			}
			resTypes, err := e.typeRefs(r.Results, nid, op)
			if err != nil {
				return err
			}
			wrap = e.addNode(OpCase, idx, srcTypes, resTypes, nil)
		case graph.OpWhile, graph.OpDoWhile, graph.OpFor:
			r := e.g.Region(child)
			srcTypes, err := e.typeRefs(r.Sources, nid, op)
			if err != nil {
				return err
			}
			resTypes, err := e.typeRefs(r.Results, nid, op)
			if err != nil {
				return err
			}
			wrap = e.addNode(OpDFG, idx, srcTypes, resTypes, nil)
		}
		if err := e.emitRegion(child, wrap); err != nil {
			return err
		}
	}
	return nil
}

// resolveCalls turns recorded call sites into static links now that
// every function node has an envelope index.
func (e *encoder) resolveCalls() error {
	fns := e.g.Functions()
	for _, c := range e.calls {
		if c.index >= len(fns) {
			return &EncodeError{
				Node: c.caller,
				Op:   e.g.Node(c.caller).Op.String(),
				Msg:  fmt.Sprintf("callee index %d out of range (module has %d functions)", c.index, len(fns)),
			}
		}
		e.links = append(e.links, envLink{src: c.env, dst: e.nodeEnv[fns[c.index]], kind: LinkStatic})
	}
	return nil
}

// emitEdges re-addresses every graph edge to envelope nodes, in edge
// arena order.
func (e *encoder) emitEdges() {
	for i := 0; i < e.g.EdgeCount(); i++ {
		ed := e.g.Edge(graph.EdgeID(i))
		src := e.portMap[ed.Src]
		dst := e.portMap[ed.Dst]
		e.edges = append(e.edges, envEdge{
			srcNode: src.node, srcPort: src.port,
			dstNode: dst.node, dstPort: dst.port,
		})
	}
}

func (e *encoder) mapNodePorts(n *graph.Node, idx uint32) {
	for _, pid := range n.Inputs {
		e.portMap[pid] = portAddr{node: idx, port: uint16(e.g.Port(pid).Index)}
	}
	for _, pid := range n.Outputs {
		e.portMap[pid] = portAddr{node: idx, port: uint16(e.g.Port(pid).Index)}
	}
}

func (e *encoder) mapBoundary(ports []graph.PortID, idx uint32) {
	for _, pid := range ports {
		e.portMap[pid] = portAddr{node: idx, port: uint16(e.g.Port(pid).Index)}
	}
}

// =============================================================================
// TABLES
// =============================================================================

func (e *encoder) addNode(op string, parent uint32, ins, outs []uint32, attrs []jeff.Attr) uint32 {
	idx := uint32(len(e.nodes))
	e.nodes = append(e.nodes, envNode{
		op:     e.intern(op),
		parent: parent,
		ins:    ins,
		outs:   outs,
		attrs:  attrs,
	})
	return idx
}

// intern returns the string-table index for s, interning in first-use
// order.
func (e *encoder) intern(s string) uint32 {
	if idx, ok := e.strIdx[s]; ok {
		return idx
	}
	idx := uint32(len(e.strings))
	e.strings = append(e.strings, s)
	e.strIdx[s] = idx
	return idx
}

func (e *encoder) typeRef(t typeRec) uint32 {
	if idx, ok := e.typeIdx[t]; ok {
		return idx
	}
	idx := uint32(len(e.types))
	e.types = append(e.types, t)
	e.typeIdx[t] = idx
	return idx
}

// typeRefs maps a port list to envelope type references, attributing
// mapping failures to the given node and operation.
func (e *encoder) typeRefs(ports []graph.PortID, nid graph.NodeID, op string) ([]uint32, error) {
	refs := make([]uint32, len(ports))
	for i, pid := range ports {
		t, err := mapType(e.g.PortType(pid))
		if err != nil {
			return nil, &EncodeError{Node: nid, Op: op, Msg: err.Error()}
		}
		refs[i] = e.typeRef(t)
	}
	return refs, nil
}

func (e *encoder) gateAttrs(a graph.GateAttrs) []jeff.Attr {
	attrs := []jeff.Attr{
		jeff.StrRefAttr(jeff.AttrGateName, e.intern(a.Name)),
		jeff.ScalarAttr(jeff.AttrGateQubits, uint64(a.Qubits)),
		jeff.ScalarAttr(jeff.AttrGateParams, uint64(a.Params)),
		jeff.ScalarAttr(jeff.AttrGateControls, uint64(a.Controls)),
	}
	if a.Adjoint {
		attrs = append(attrs, jeff.ScalarAttr(jeff.AttrGateAdjoint, 1))
	}
	if a.Power != 1 {
		attrs = append(attrs, jeff.ScalarAttr(jeff.AttrGatePower, uint64(a.Power)))
	}
	return attrs
}

func constAttrs(n *graph.Node) []jeff.Attr {
	switch n.Op {
	case graph.OpIntConst:
		return []jeff.Attr{jeff.ScalarAttr(jeff.AttrIntValue, n.Attrs.IntValue)}
	case graph.OpFloatConst:
		return []jeff.Attr{jeff.ScalarAttr(jeff.AttrFloatValue, math.Float64bits(n.Attrs.FloatValue))}
	case graph.OpArrayConst:
		return []jeff.Attr{jeff.ArrayAttr(jeff.AttrValues, n.Attrs.Values)}
	}
	return nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

func (e *encoder) payload() []byte {
	c := &coder{}

	c.u32(uint32(len(e.strings)))
	for _, s := range e.strings {
		c.str(s)
	}

	c.u32(uint32(len(e.types)))
	for _, t := range e.types {
		c.u8(t.kind)
		c.u8(t.param)
	}

	c.u32(uint32(len(e.nodes)))
	for _, n := range e.nodes {
		c.u32(n.op)
		c.u32(n.parent)
		c.u16(uint16(len(n.ins)))
		for _, t := range n.ins {
			c.u32(t)
		}
		c.u16(uint16(len(n.outs)))
		for _, t := range n.outs {
			c.u32(t)
		}
		c.u16(uint16(len(n.attrs)))
		for _, a := range n.attrs {
			c.u8(a.Tag)
			c.u32(uint32(len(a.Data)))
			c.raw(a.Data)
		}
	}

	c.u32(uint32(len(e.edges)))
	for _, ed := range e.edges {
		c.u32(ed.srcNode)
		c.u16(ed.srcPort)
		c.u32(ed.dstNode)
		c.u16(ed.dstPort)
	}

	c.u32(uint32(len(e.links)))
	for _, l := range e.links {
		c.u32(l.src)
		c.u32(l.dst)
		c.u8(l.kind)
	}
	return c.buf
}

func compress(payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		return nil, fmt.Errorf("hugr: compressor: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(payload, nil), nil
}

// coder appends little-endian fields to a growing buffer.
type coder struct {
	buf []byte
}

func (c *coder) u8(v uint8)   { c.buf = append(c.buf, v) }
func (c *coder) u16(v uint16) { c.buf = binary.LittleEndian.AppendUint16(c.buf, v) }
func (c *coder) u32(v uint32) { c.buf = binary.LittleEndian.AppendUint32(c.buf, v) }
func (c *coder) raw(p []byte) { c.buf = append(c.buf, p...) }

func (c *coder) str(s string) {
	c.u32(uint32(len(s)))
	c.buf = append(c.buf, s...)
}
