package graph

import "fmt"

// OpKind identifies a node's operation. The numeric values are the wire
// opcodes of the container format; decoding never rejects an unknown
// opcode, so an OpKind outside the named set flows through the graph and
// only fails when a consumer needs a meaning for it.
type OpKind uint16

// Structural operations.
const (
	OpFuncDefn OpKind = 0x0001 // function definition, owns a body region
	OpFuncDecl OpKind = 0x0002 // external function declaration
	OpCall     OpKind = 0x0003 // call by function index attribute
	OpSwitch   OpKind = 0x0010 // branch regions plus default, selector first input
	OpWhile    OpKind = 0x0011 // body and condition regions, checked before
	OpDoWhile  OpKind = 0x0012 // body and condition regions, checked after
	OpFor      OpKind = 0x0013 // body region; inputs are start, stop, step, state
)

// Qubit operations.
const (
	OpQubitAlloc     OpKind = 0x0100
	OpQubitFree      OpKind = 0x0101
	OpQubitFreeZero  OpKind = 0x0102
	OpQubitMeasure   OpKind = 0x0103 // consumes the qubit
	OpQubitMeasureND OpKind = 0x0104 // non-destructive
	OpQubitReset     OpKind = 0x0105
	OpGate           OpKind = 0x0106 // named gate, attributes describe it
)

// Float operations.
const (
	OpFloatConst OpKind = 0x0200
	OpFloatAdd   OpKind = 0x0201
	OpFloatSub   OpKind = 0x0202
	OpFloatMul   OpKind = 0x0203
	OpFloatDiv   OpKind = 0x0204
	OpFloatPow   OpKind = 0x0205
	OpFloatEq    OpKind = 0x0206
	OpFloatNeq   OpKind = 0x0207
	OpFloatLt    OpKind = 0x0208
	OpFloatLte   OpKind = 0x0209
	OpFloatGt    OpKind = 0x020A
	OpFloatGte   OpKind = 0x020B
	OpFloatAbs   OpKind = 0x020C
	OpFloatCeil  OpKind = 0x020D
	OpFloatFloor OpKind = 0x020E
	OpFloatExp   OpKind = 0x020F
	OpFloatLog   OpKind = 0x0210
	OpFloatSqrt  OpKind = 0x0211
	OpFloatSin   OpKind = 0x0212
	OpFloatCos   OpKind = 0x0213
	OpFloatTan   OpKind = 0x0214
	OpFloatMax   OpKind = 0x0215
	OpFloatMin   OpKind = 0x0216
)

// Integer operations.
const (
	OpIntConst OpKind = 0x0300 // width comes from the result port type
	OpIntAdd   OpKind = 0x0301
	OpIntSub   OpKind = 0x0302
	OpIntMul   OpKind = 0x0303
	OpIntAnd   OpKind = 0x0304
	OpIntOr    OpKind = 0x0305
	OpIntXor   OpKind = 0x0306
	OpIntShl   OpKind = 0x0307
	OpIntShr   OpKind = 0x0308
	OpIntEq    OpKind = 0x0309
	OpIntLt    OpKind = 0x030A
	OpIntLte   OpKind = 0x030B
)

// Integer array operations.
const (
	OpArrayCreate OpKind = 0x0400
	OpArrayGet    OpKind = 0x0401
	OpArraySet    OpKind = 0x0402
	OpArrayZero   OpKind = 0x0403
	OpArrayLength OpKind = 0x0404
	OpArrayConst  OpKind = 0x0405
)

// Qubit register operations.
const (
	OpQuregAlloc        OpKind = 0x0500
	OpQuregFree         OpKind = 0x0501
	OpQuregFreeZero     OpKind = 0x0502
	OpQuregExtractIndex OpKind = 0x0503
	OpQuregInsertIndex  OpKind = 0x0504
	OpQuregExtractSlice OpKind = 0x0505
	OpQuregInsertSlice  OpKind = 0x0506
	OpQuregSplit        OpKind = 0x0507
	OpQuregJoin         OpKind = 0x0508
	OpQuregLength       OpKind = 0x0509
	OpQuregCreate       OpKind = 0x050A
)

var opNames = map[OpKind]string{
	OpFuncDefn: "func",
	OpFuncDecl: "func.decl",
	OpCall:     "call",
	OpSwitch:   "switch",
	OpWhile:    "while",
	OpDoWhile:  "do_while",
	OpFor:      "for",

	OpQubitAlloc:     "qubit.alloc",
	OpQubitFree:      "qubit.free",
	OpQubitFreeZero:  "qubit.free_zero",
	OpQubitMeasure:   "qubit.measure",
	OpQubitMeasureND: "qubit.measure_nd",
	OpQubitReset:     "qubit.reset",
	OpGate:           "qubit.gate",

	OpFloatConst: "float.const",
	OpFloatAdd:   "float.add",
	OpFloatSub:   "float.sub",
	OpFloatMul:   "float.mul",
	OpFloatDiv:   "float.div",
	OpFloatPow:   "float.pow",
	OpFloatEq:    "float.eq",
	OpFloatNeq:   "float.neq",
	OpFloatLt:    "float.lt",
	OpFloatLte:   "float.lte",
	OpFloatGt:    "float.gt",
	OpFloatGte:   "float.gte",
	OpFloatAbs:   "float.abs",
	OpFloatCeil:  "float.ceil",
	OpFloatFloor: "float.floor",
	OpFloatExp:   "float.exp",
	OpFloatLog:   "float.log",
	OpFloatSqrt:  "float.sqrt",
	OpFloatSin:   "float.sin",
	OpFloatCos:   "float.cos",
	OpFloatTan:   "float.tan",
	OpFloatMax:   "float.max",
	OpFloatMin:   "float.min",

	OpIntConst: "int.const",
	OpIntAdd:   "int.add",
	OpIntSub:   "int.sub",
	OpIntMul:   "int.mul",
	OpIntAnd:   "int.and",
	OpIntOr:    "int.or",
	OpIntXor:   "int.xor",
	OpIntShl:   "int.shl",
	OpIntShr:   "int.shr",
	OpIntEq:    "int.eq",
	OpIntLt:    "int.lt",
	OpIntLte:   "int.lte",

	OpArrayCreate: "array.create",
	OpArrayGet:    "array.get",
	OpArraySet:    "array.set",
	OpArrayZero:   "array.zero",
	OpArrayLength: "array.length",
	OpArrayConst:  "array.const",

	OpQuregAlloc:        "qureg.alloc",
	OpQuregFree:         "qureg.free",
	OpQuregFreeZero:     "qureg.free_zero",
	OpQuregExtractIndex: "qureg.extract_index",
	OpQuregInsertIndex:  "qureg.insert_index",
	OpQuregExtractSlice: "qureg.extract_slice",
	OpQuregInsertSlice:  "qureg.insert_slice",
	OpQuregSplit:        "qureg.split",
	OpQuregJoin:         "qureg.join",
	OpQuregLength:       "qureg.length",
	OpQuregCreate:       "qureg.create",
}

func (op OpKind) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(0x%04x)", uint16(op))
}

// Known reports whether the opcode belongs to the named operation set.
func (op OpKind) Known() bool {
	_, ok := opNames[op]
	return ok
}

// Hierarchical reports whether nodes of this kind own child regions.
func (op OpKind) Hierarchical() bool {
	switch op {
	case OpFuncDefn, OpSwitch, OpWhile, OpDoWhile, OpFor:
		return true
	}
	return false
}

// Const reports whether the operation materializes a constant value.
func (op OpKind) Const() bool {
	switch op {
	case OpFloatConst, OpIntConst, OpArrayConst:
		return true
	}
	return false
}

// =============================================================================
// NODE ATTRIBUTES
// =============================================================================

// Attrs carries the operation payload decoded from a node's attribute
// list. Fields are meaningful only for the op kinds that use them.
type Attrs struct {
	Gate       GateAttrs
	IntValue   uint64
	FloatValue float64
	Values     []uint64
	FuncIndex  int // callee position among module functions, -1 when absent
}

// GateAttrs describes a named gate application.
type GateAttrs struct {
	Name     string
	Qubits   uint32
	Params   uint32
	Controls uint32
	Adjoint  bool
	Power    int64
}

// DefaultAttrs returns the attribute zero state: no callee and gate
// power one.
func DefaultAttrs() Attrs {
	return Attrs{FuncIndex: -1, Gate: GateAttrs{Power: 1}}
}
