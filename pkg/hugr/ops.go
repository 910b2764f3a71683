package hugr

import (
	"strings"

	"github.com/hugrlab/jeffc/pkg/graph"
)

// leafOps maps source opcodes with a direct target operation. Constants,
// calls, gates, and hierarchical kinds take their own paths in the
// encoder; an opcode absent here and there has no target equivalent.
var leafOps = map[graph.OpKind]string{
	graph.OpFuncDecl: OpFuncDecl,

	graph.OpQubitAlloc:     "tket.QAlloc",
	graph.OpQubitFree:      "tket.QFree",
	graph.OpQubitFreeZero:  "tket.QFreeZero",
	graph.OpQubitMeasure:   "tket.MeasureFree",
	graph.OpQubitMeasureND: "tket.Measure",
	graph.OpQubitReset:     "tket.Reset",

	graph.OpFloatAdd:   "arith.fadd",
	graph.OpFloatSub:   "arith.fsub",
	graph.OpFloatMul:   "arith.fmul",
	graph.OpFloatPow:   "arith.fpow",
	graph.OpFloatEq:    "arith.feq",
	graph.OpFloatLt:    "arith.flt",
	graph.OpFloatLte:   "arith.fle",
	graph.OpFloatAbs:   "arith.fabs",
	graph.OpFloatCeil:  "arith.fceil",
	graph.OpFloatFloor: "arith.ffloor",
	graph.OpFloatMax:   "arith.fmax",
	graph.OpFloatMin:   "arith.fmin",

	graph.OpIntAdd: "arith.iadd",
	graph.OpIntSub: "arith.isub",
	graph.OpIntMul: "arith.imul",
	graph.OpIntAnd: "arith.iand",
	graph.OpIntOr:  "arith.ior",
	graph.OpIntXor: "arith.ixor",
	graph.OpIntShl: "arith.ishl",
	graph.OpIntShr: "arith.ishr",
	graph.OpIntEq:  "arith.ieq",
	graph.OpIntLt:  "arith.ilt",
	graph.OpIntLte: "arith.ile",

	graph.OpArrayCreate: "jeff.IntArrayCreate",
	graph.OpArrayGet:    "jeff.IntArrayGet",
	graph.OpArraySet:    "jeff.IntArraySet",
	graph.OpArrayZero:   "jeff.IntArrayZero",
	graph.OpArrayLength: "jeff.IntArrayLength",

	graph.OpQuregAlloc:        "jeff.QuregAlloc",
	graph.OpQuregFree:         "jeff.QuregFree",
	graph.OpQuregFreeZero:     "jeff.QuregFreeZero",
	graph.OpQuregExtractIndex: "jeff.QuregExtractIndex",
	graph.OpQuregInsertIndex:  "jeff.QuregInsertIndex",
	graph.OpQuregExtractSlice: "jeff.QuregExtractSlice",
	graph.OpQuregInsertSlice:  "jeff.QuregInsertSlice",
	graph.OpQuregSplit:        "jeff.QuregSplit",
	graph.OpQuregJoin:         "jeff.QuregJoin",
	graph.OpQuregLength:       "jeff.QuregLength",
	graph.OpQuregCreate:       "jeff.QuregCreate",
}

// containerOps maps hierarchical source opcodes to their container
// operation.
var containerOps = map[graph.OpKind]string{
	graph.OpFuncDefn: OpFuncDefn,
	graph.OpSwitch:   OpConditional,
	graph.OpWhile:    OpWhile,
	graph.OpDoWhile:  OpDoWhile,
	graph.OpFor:      OpFor,
}

// gateKey identifies one row of the gate table. Arity is part of the
// key: an "h" gate over two qubits is not a Hadamard.
type gateKey struct {
	name           string
	qubits, params int
}

// gateTable maps well-known gates to their tket operations. Lookup is
// by lowercased name plus arity; everything else, swap included, falls
// back to [GateGeneric] with its attributes carried along.
var gateTable = map[gateKey]string{
	{"h", 1, 0}:        "tket.H",
	{"hadamard", 1, 0}: "tket.H",
	{"cx", 2, 0}:       "tket.CX",
	{"cnot", 2, 0}:     "tket.CX",
	{"cy", 2, 0}:       "tket.CY",
	{"cz", 2, 0}:       "tket.CZ",
	{"crz", 2, 1}:      "tket.CRz",
	{"t", 1, 0}:        "tket.T",
	{"tdg", 1, 0}:      "tket.Tdg",
	{"s", 1, 0}:        "tket.S",
	{"sdg", 1, 0}:      "tket.Sdg",
	{"x", 1, 0}:        "tket.X",
	{"y", 1, 0}:        "tket.Y",
	{"z", 1, 0}:        "tket.Z",
	{"rx", 1, 1}:       "tket.Rx",
	{"ry", 1, 1}:       "tket.Ry",
	{"rz", 1, 1}:       "tket.Rz",
	{"toffoli", 3, 0}:  "tket.Toffoli",
}

// resolveGate picks the target operation for a gate application. Extra
// entries extend and shadow the built-in table by name alone. Modified
// gates (adjoint, powered, or with extra controls) always go generic,
// since the named tket operations cannot carry modifiers.
func resolveGate(a graph.GateAttrs, extra map[string]string) (name string, generic bool) {
	if a.Adjoint || a.Power != 1 || a.Controls != 0 {
		return GateGeneric, true
	}
	lower := strings.ToLower(a.Name)
	if t, ok := extra[lower]; ok {
		return t, false
	}
	if t, ok := gateTable[gateKey{lower, int(a.Qubits), int(a.Params)}]; ok {
		return t, false
	}
	return GateGeneric, true
}
