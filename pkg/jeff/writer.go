package jeff

// Writer builds records programmatically. It hands out region, node, port,
// and edge keys, interns strings, deduplicates type descriptors, and tracks
// per-region node positions and per-owner port indices so callers declare
// things in the order they mean them. The zero Writer is not usable; call
// NewWriter.
type Writer struct {
	rec     Records
	strings map[string]uint32
	types   map[TypeRecord]uint32

	nextRegion uint32
	nextNode   uint32
	nextPort   uint32
	nextEdge   uint32

	nodePos   map[uint32]uint32    // region key -> next node position
	portIndex map[portOwner]uint16 // owner+direction -> next port index
}

type portOwner struct {
	kind uint8
	key  uint32
	dir  uint8
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{
		strings:   make(map[string]uint32),
		types:     make(map[TypeRecord]uint32),
		nodePos:   make(map[uint32]uint32),
		portIndex: make(map[portOwner]uint16),
	}
}

// Intern adds s to the string table if absent and returns its index.
func (w *Writer) Intern(s string) uint32 {
	if ref, ok := w.strings[s]; ok {
		return ref
	}
	ref := uint32(len(w.rec.Strings))
	w.rec.Strings = append(w.rec.Strings, s)
	w.strings[s] = ref
	return ref
}

// Type adds a type descriptor if absent and returns its table index.
func (w *Writer) Type(kind, param uint8) uint32 {
	t := TypeRecord{Kind: kind, Param: param}
	if ref, ok := w.types[t]; ok {
		return ref
	}
	ref := uint32(len(w.rec.Types))
	w.rec.Types = append(w.rec.Types, t)
	w.types[t] = ref
	return ref
}

// Root declares the module root region and returns its key.
func (w *Writer) Root() uint32 {
	return w.Region(NoKey, 0)
}

// Region declares a region under owner (NoKey for the root). Slot orders
// sibling regions of one owner.
func (w *Writer) Region(owner, slot uint32) uint32 {
	key := w.nextRegion
	w.nextRegion++
	w.rec.Regions = append(w.rec.Regions, RegionRecord{Key: key, OwnerNode: owner, Slot: slot})
	return key
}

// Node declares a node in region with the next free position there. An
// empty name writes NoKey as the name reference.
func (w *Writer) Node(region uint32, opcode uint16, name string, attrs ...Attr) uint32 {
	key := w.nextNode
	w.nextNode++
	nameRef := NoKey
	if name != "" {
		nameRef = w.Intern(name)
	}
	pos := w.nodePos[region]
	w.nodePos[region] = pos + 1
	w.rec.Nodes = append(w.rec.Nodes, NodeRecord{
		Key:       key,
		Opcode:    opcode,
		NameRef:   nameRef,
		RegionKey: region,
		Position:  pos,
		Attrs:     attrs,
	})
	return key
}

// Input declares the next input port on a node.
func (w *Writer) Input(node, typeRef uint32) uint32 {
	return w.port(OwnerNode, node, DirIn, typeRef)
}

// Output declares the next output port on a node.
func (w *Writer) Output(node, typeRef uint32) uint32 {
	return w.port(OwnerNode, node, DirOut, typeRef)
}

// Source declares the next boundary source port on a region. Sources feed
// values into the region, so they face inward as outputs.
func (w *Writer) Source(region, typeRef uint32) uint32 {
	return w.port(OwnerRegion, region, DirOut, typeRef)
}

// Result declares the next boundary result port on a region. Results carry
// values out, so they face inward as inputs.
func (w *Writer) Result(region, typeRef uint32) uint32 {
	return w.port(OwnerRegion, region, DirIn, typeRef)
}

func (w *Writer) port(ownerKind uint8, ownerKey uint32, dir uint8, typeRef uint32) uint32 {
	key := w.nextPort
	w.nextPort++
	owner := portOwner{kind: ownerKind, key: ownerKey, dir: dir}
	idx := w.portIndex[owner]
	w.portIndex[owner] = idx + 1
	var flags uint8
	if int(typeRef) < len(w.rec.Types) {
		switch w.rec.Types[typeRef].Kind {
		case TypeQubit, TypeQubitRegister:
			flags |= FlagLinear
		}
	}
	w.rec.Ports = append(w.rec.Ports, PortRecord{
		Key:       key,
		OwnerKind: ownerKind,
		OwnerKey:  ownerKey,
		Dir:       dir,
		Index:     idx,
		TypeRef:   typeRef,
		Flags:     flags,
	})
	return key
}

// Edge connects src to dst inside region and returns the edge key.
func (w *Writer) Edge(region, src, dst uint32) uint32 {
	key := w.nextEdge
	w.nextEdge++
	w.rec.Edges = append(w.rec.Edges, EdgeRecord{Key: key, RegionKey: region, SrcPort: src, DstPort: dst})
	return key
}

// SetMeta appends one module metadata pair.
func (w *Writer) SetMeta(key, value string) {
	w.rec.Meta = append(w.rec.Meta, MetaRecord{KeyRef: w.Intern(key), ValueRef: w.Intern(value)})
}

// GateAttrs assembles the attribute list for a custom gate node.
func (w *Writer) GateAttrs(name string, qubits, params, controls uint32, adjoint bool, power int64) []Attr {
	attrs := []Attr{
		StrRefAttr(AttrGateName, w.Intern(name)),
		ScalarAttr(AttrGateQubits, uint64(qubits)),
		ScalarAttr(AttrGateParams, uint64(params)),
		ScalarAttr(AttrGateControls, uint64(controls)),
	}
	if adjoint {
		attrs = append(attrs, ScalarAttr(AttrGateAdjoint, 1))
	}
	if power != 1 {
		attrs = append(attrs, ScalarAttr(AttrGatePower, uint64(power)))
	}
	return attrs
}

// Records returns the accumulated records. The Writer keeps ownership;
// callers must not keep mutating the Writer while using the result.
func (w *Writer) Records() *Records {
	return &w.rec
}

// Encode serializes the accumulated records to container bytes.
func (w *Writer) Encode() []byte {
	return w.rec.Encode()
}
