package jeff

import "encoding/binary"

// Records holds the flat contents of a decoded container: one slice per
// record kind, in file order. Cross-references between records are raw
// integer keys (or positional indices for types and strings); nothing is
// resolved beyond the framing itself.
type Records struct {
	Strings []string
	Types   []TypeRecord
	Regions []RegionRecord
	Nodes   []NodeRecord
	Ports   []PortRecord
	Edges   []EdgeRecord
	Meta    []MetaRecord
}

// TypeRecord describes one entry of the positional type table.
type TypeRecord struct {
	Kind  uint8
	Param uint8
}

// RegionRecord declares a region. OwnerNode is the key of the node the
// region hangs under, or NoKey for the module root. Slot orders sibling
// regions under one owner.
type RegionRecord struct {
	Key       uint32
	OwnerNode uint32
	Slot      uint32
}

// NodeRecord declares an operation node inside a region. NameRef indexes
// the string table, or NoKey for unnamed nodes. Position orders nodes
// within their region and always wins over declaration order.
type NodeRecord struct {
	Key       uint32
	Opcode    uint16
	NameRef   uint32
	RegionKey uint32
	Position  uint32
	Attrs     []Attr
}

// PortRecord declares a typed port on a node or on a region boundary.
// Index orders ports of the same owner and direction.
type PortRecord struct {
	Key       uint32
	OwnerKind uint8
	OwnerKey  uint32
	Dir       uint8
	Index     uint16
	TypeRef   uint32
	Flags     uint8
}

// Linear reports whether the port's linearity flag is set.
func (p PortRecord) Linear() bool { return p.Flags&FlagLinear != 0 }

// EdgeRecord connects a source port to a target port inside one region.
type EdgeRecord struct {
	Key       uint32
	RegionKey uint32
	SrcPort   uint32
	DstPort   uint32
}

// MetaRecord is one module-level key/value pair, both string references.
type MetaRecord struct {
	KeyRef   uint32
	ValueRef uint32
}

// Lookup resolves a string-table reference. It returns false for NoKey and
// for references outside the table.
func (r *Records) Lookup(ref uint32) (string, bool) {
	if ref == NoKey || int(ref) >= len(r.Strings) {
		return "", false
	}
	return r.Strings[ref], true
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

// Attr is one tag-length-value attribute on a node record. Data holds the
// raw payload; the accessor methods interpret it per the tag conventions
// in this package's attribute constants. Unknown tags pass through decode
// and encode untouched.
type Attr struct {
	Tag  uint8
	Data []byte
}

// FindAttr returns the first attribute with the given tag.
func FindAttr(attrs []Attr, tag uint8) (Attr, bool) {
	for _, a := range attrs {
		if a.Tag == tag {
			return a, true
		}
	}
	return Attr{}, false
}

// ScalarAttr builds a scalar attribute.
func ScalarAttr(tag uint8, v uint64) Attr {
	return Attr{Tag: tag, Data: binary.LittleEndian.AppendUint64(nil, v)}
}

// StrRefAttr builds a string-reference attribute.
func StrRefAttr(tag uint8, ref uint32) Attr {
	return Attr{Tag: tag, Data: binary.LittleEndian.AppendUint32(nil, ref)}
}

// ArrayAttr builds a packed uint64 array attribute.
func ArrayAttr(tag uint8, vs []uint64) Attr {
	data := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		data = binary.LittleEndian.AppendUint64(data, v)
	}
	return Attr{Tag: tag, Data: data}
}

// Scalar reads the payload as a uint64, zero-padding short payloads.
func (a Attr) Scalar() uint64 {
	var b [8]byte
	copy(b[:], a.Data)
	return binary.LittleEndian.Uint64(b[:])
}

// StrRef reads the payload as a string-table reference. Payloads shorter
// than four bytes read as NoKey.
func (a Attr) StrRef() uint32 {
	if len(a.Data) < 4 {
		return NoKey
	}
	return binary.LittleEndian.Uint32(a.Data)
}

// Array reads the payload as packed uint64s, dropping any trailing rest.
func (a Attr) Array() []uint64 {
	n := len(a.Data) / 8
	if n == 0 {
		return nil
	}
	vs := make([]uint64, n)
	for i := range vs {
		vs[i] = binary.LittleEndian.Uint64(a.Data[8*i:])
	}
	return vs
}
