package jeff

// Magic identifies a jeff container. It occupies the first four bytes.
const Magic = "JEFF"

// Version is the container format version this package reads and writes.
const Version uint16 = 1

// Segment tags, in the order segments must appear in a container.
const (
	SegStrings uint8 = 0x01
	SegTypes   uint8 = 0x02
	SegRegions uint8 = 0x03
	SegNodes   uint8 = 0x04
	SegPorts   uint8 = 0x05
	SegEdges   uint8 = 0x06
	SegMeta    uint8 = 0x07
)

// NoKey marks an absent key or reference. The root region uses it as its
// owner, and unnamed nodes use it as their name reference.
const NoKey uint32 = 0xFFFFFFFF

// Type descriptor kinds. The param byte carries the bit width for integer
// kinds and the precision (32 or 64) for float kinds; it is unused otherwise.
const (
	TypeQubit         uint8 = 0x01
	TypeInt           uint8 = 0x02
	TypeFloat         uint8 = 0x03
	TypeQubitRegister uint8 = 0x04
	TypeIntArray      uint8 = 0x05
	TypeFloatArray    uint8 = 0x06
)

// Port owner kinds. Ports either belong to a node or form part of a
// region's boundary.
const (
	OwnerNode   uint8 = 0
	OwnerRegion uint8 = 1
)

// Port directions. Boundary ports carry the direction they present to the
// inside of their region: sources are outputs, results are inputs.
const (
	DirIn  uint8 = 0
	DirOut uint8 = 1
)

// FlagLinear marks a port whose value admits at most one connected edge.
const FlagLinear uint8 = 0x01

// Attribute tags for node records. Payload shapes: string-reference
// attributes hold a uint32 index into the string table, scalar attributes
// hold a uint64, and array attributes hold packed uint64s.
const (
	AttrGateName     uint8 = 0x01 // string ref
	AttrGateQubits   uint8 = 0x02 // scalar
	AttrGateParams   uint8 = 0x03 // scalar
	AttrGateControls uint8 = 0x04 // scalar
	AttrGateAdjoint  uint8 = 0x05 // scalar, 0 or 1
	AttrGatePower    uint8 = 0x06 // scalar, two's-complement int64
	AttrIntValue     uint8 = 0x07 // scalar
	AttrFloatValue   uint8 = 0x08 // scalar, IEEE 754 bits
	AttrValues       uint8 = 0x09 // array
	AttrFuncIndex    uint8 = 0x0A // scalar
)
