package hugr

// Envelope framing.
const (
	// Magic opens every envelope.
	Magic = "HUGR"

	// Version is the envelope revision this package writes.
	Version uint16 = 1

	// FlagZstd marks a zstd-compressed payload.
	FlagZstd uint16 = 0x0001

	// NoParent is the parent reference of the root module node.
	NoParent uint32 = 0xFFFFFFFF
)

// Type kinds in the envelope's type table. Param carries the integer
// log-width for TypeInt, element bits for TypeIntReg, and element
// precision for TypeFloatReg; it is zero otherwise.
const (
	TypeQubit    uint8 = 0x01
	TypeBool     uint8 = 0x02
	TypeInt      uint8 = 0x03
	TypeFloat64  uint8 = 0x04
	TypeQureg    uint8 = 0x05
	TypeIntReg   uint8 = 0x06
	TypeFloatReg uint8 = 0x07
)

// Link kinds. Links connect nodes outside the dataflow: a constant
// definition to its load, a call site to its callee.
const (
	LinkStatic uint8 = 0x01
)

// Structural operation names. These carry the graph's shape; everything
// else in the node table is a leaf operation resolved through the
// operation and gate tables.
const (
	OpModule       = "core.Module"
	OpInput        = "core.Input"
	OpOutput       = "core.Output"
	OpFuncDefn     = "core.FuncDefn"
	OpFuncDecl     = "core.FuncDecl"
	OpConditional  = "core.Conditional"
	OpCase         = "core.Case"
	OpDFG          = "core.DFG"
	OpConst        = "core.Const"
	OpLoadConstant = "core.LoadConstant"
	OpCall         = "core.Call"
	OpWhile        = "jeff.While"
	OpDoWhile      = "jeff.DoWhile"
	OpFor          = "jeff.For"

	// GateGeneric is the parametric fallback for gates outside the
	// gate table; it carries the full gate attributes.
	GateGeneric = "jeff.QGate"
)
